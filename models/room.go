package models

import (
	"sync"
	"time"
)

// RoomState is the lifecycle phase of a room's game.
type RoomState int

const (
	StateWaiting RoomState = iota
	StateRoundActive
	StateRoundReveal
	StateFinished
)

func (s RoomState) String() string {
	switch s {
	case StateWaiting:
		return "waiting"
	case StateRoundActive:
		return "round_active"
	case StateRoundReveal:
		return "round_reveal"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Room is one game session. All fields except Code are guarded by Mu;
// every read or mutation of a room happens under its lock, so rooms
// operate fully in parallel with each other.
type Room struct {
	Mu sync.Mutex

	Code            string
	Players         []*Player // insertion order, scanned in order for host failover
	State           RoomState
	CurrentRound    int // 0-based, only meaningful while State != StateWaiting
	TotalRounds     int
	Questions       []Question
	TimeLeftSeconds int

	// Starting guards the window where startGame has released the lock
	// to fetch questions but has not yet installed them.
	Starting bool

	// Deleted marks a room removed from the registry. Operations that
	// released the lock before the removal must not revive it.
	Deleted bool

	// TimerGen identifies the live timed task for this room. A scheduled
	// task captures the generation it was started with and becomes a no-op
	// once the room has moved on. Incrementing it is how timers are
	// cancelled; exactly one task per room is live at a time.
	TimerGen    uint64
	TimerCancel chan struct{}

	// FinalStandings is the sorted roster snapshot of the last finished
	// game, retained after scores reset so late leaderboard requests
	// still see the result.
	FinalStandings []PlayerView

	CreatedAt time.Time
}

// GameStarted reports whether a game is in progress, in the shape the
// room-updated payload uses.
func (r *Room) GameStarted() bool {
	return r.State != StateWaiting
}

// FindPlayer returns the roster entry with the given name, or nil.
// Names are the durable player identity; lookups are case-sensitive.
func (r *Room) FindPlayer(name string) *Player {
	for _, p := range r.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// FindSession returns the roster entry currently bound to sessionID, or nil.
func (r *Room) FindSession(sessionID string) *Player {
	for _, p := range r.Players {
		if p.SessionID == sessionID {
			return p
		}
	}
	return nil
}

// HasConnectedHost reports whether a reachable player currently holds
// the host role.
func (r *Room) HasConnectedHost() bool {
	for _, p := range r.Players {
		if p.IsHost && p.Connected {
			return true
		}
	}
	return false
}

// RemovePlayer drops the named entry from the roster, preserving the
// order of the rest.
func (r *Room) RemovePlayer(name string) {
	dst := r.Players[:0]
	for _, p := range r.Players {
		if p.Name == name {
			continue
		}
		dst = append(dst, p)
	}
	r.Players = dst
}

// ConnectedCount counts players reachable right now.
func (r *Room) ConnectedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

// AllConnectedAnswered reports whether every connected player has
// answered the current round. False when nobody is connected.
func (r *Room) AllConnectedAnswered() bool {
	any := false
	for _, p := range r.Players {
		if !p.Connected {
			continue
		}
		any = true
		if !p.HasAnswered {
			return false
		}
	}
	return any
}

// CurrentQuestion returns the active round's question, or nil when no
// round is active.
func (r *Room) CurrentQuestion() *Question {
	if r.State != StateRoundActive || r.CurrentRound >= len(r.Questions) {
		return nil
	}
	return &r.Questions[r.CurrentRound]
}

// RosterView renders the roster in wire shape, insertion order preserved.
func (r *Room) RosterView() []PlayerView {
	views := make([]PlayerView, 0, len(r.Players))
	for _, p := range r.Players {
		views = append(views, p.View())
	}
	return views
}
