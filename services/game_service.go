package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Chaitanyahoon/bestguess-delta/models"
)

const (
	defaultTotalRounds  = 5
	defaultRoundSeconds = 30
	defaultRevealDelay  = 5 * time.Second
	maxNameLength       = 20
)

// Broadcaster delivers orchestrator output. Sends are fire-and-forget;
// a dead session must never block delivery to the rest of the room.
type Broadcaster interface {
	ToRoom(code string, event string, payload any)
	ToSession(sessionID string, event string, payload any)
}

// GameService is the player session manager and round orchestrator. It
// owns the per-room timed tasks and the session-to-room reverse index;
// all room mutation happens under the room's own lock.
type GameService struct {
	registry *RoomRegistry
	builder  *QuestionBuilder
	bus      Broadcaster

	// Timing knobs, overridable in tests. RoundSeconds is the countdown
	// start value, TickInterval the countdown resolution, RevealDelay
	// the pause between reveal and the next round.
	RoundSeconds int
	TickInterval time.Duration
	RevealDelay  time.Duration

	mu       sync.Mutex
	sessions map[string]string // sessionID -> room code
}

func NewGameService(registry *RoomRegistry, builder *QuestionBuilder, bus Broadcaster) *GameService {
	return &GameService{
		registry:     registry,
		builder:      builder,
		bus:          bus,
		RoundSeconds: defaultRoundSeconds,
		TickInterval: time.Second,
		RevealDelay:  defaultRevealDelay,
		sessions:     make(map[string]string),
	}
}

// JoinRoom handles join-room: create-on-first-host-join, rejoin by name,
// or append a new player. On success the full roster is broadcast to the
// room.
func (gs *GameService) JoinRoom(code, sessionID, name string, isHost bool) error {
	code = NormalizeCode(code)
	name = strings.TrimSpace(name)

	if code == "" || name == "" {
		return ErrNameRequired
	}
	if !ValidCode(code) {
		return ErrInvalidRoomCode
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}

	room, err := gs.registry.GetRoom(code)
	if err != nil {
		if !isHost {
			return ErrRoomNotFound
		}
		room, err = gs.registry.CreateRoom(code)
		if err == ErrRoomExists {
			room, err = gs.registry.GetRoom(code)
		}
		if err != nil {
			return err
		}
		log.Info().Str("room", code).Msg("created new room")
	}

	room.Mu.Lock()

	if room.Deleted {
		// Torn down between the registry lookup and here; the client
		// retries and the create path takes over.
		room.Mu.Unlock()
		return ErrRoomNotFound
	}

	existing := room.FindPlayer(name)
	if existing == nil && room.State != models.StateWaiting {
		room.Mu.Unlock()
		return ErrGameInProgress
	}

	var staleSession string
	if existing != nil {
		if existing.Connected && existing.SessionID != sessionID {
			room.Mu.Unlock()
			return ErrNameTaken
		}
		// Rejoin: rebind the roster entry to the new session, keeping
		// score, correct-answer count and host status.
		staleSession = existing.SessionID
		existing.SessionID = sessionID
		existing.Connected = true
	} else {
		// A self-declared host joining a room that already has a
		// connected host does not become one; host status is derived
		// from creation order and failover only.
		wantHost := isHost && !room.HasConnectedHost()
		room.Players = append(room.Players, &models.Player{
			SessionID: sessionID,
			Name:      name,
			IsHost:    wantHost,
			Connected: true,
		})
	}

	// Index the session before broadcasting so the joiner receives the
	// roster update too.
	gs.mu.Lock()
	if staleSession != "" && staleSession != sessionID {
		delete(gs.sessions, staleSession)
	}
	gs.sessions[sessionID] = code
	gs.mu.Unlock()

	gs.broadcastRosterLocked(room)
	room.Mu.Unlock()

	log.Info().Str("room", code).Str("player", name).Bool("host", isHost).Msg("player joined")
	return nil
}

// Disconnect handles a transport-level disconnect: players are removed
// outright before a game starts and soft-marked disconnected during one,
// the host role fails over, and an abandoned room is torn down.
func (gs *GameService) Disconnect(sessionID string) {
	gs.mu.Lock()
	code, ok := gs.sessions[sessionID]
	delete(gs.sessions, sessionID)
	gs.mu.Unlock()

	if !ok {
		return
	}

	room, err := gs.registry.GetRoom(code)
	if err != nil {
		return
	}

	room.Mu.Lock()

	player := room.FindSession(sessionID)
	if player == nil {
		// A rejoin already rebound this name to a newer session.
		room.Mu.Unlock()
		return
	}

	wasHost := player.IsHost
	if room.State == models.StateWaiting {
		room.RemovePlayer(player.Name)
	} else {
		player.Connected = false
	}

	if wasHost {
		player.IsHost = false
		for _, p := range room.Players {
			if p.Connected {
				p.IsHost = true
				break
			}
		}
	}

	if len(room.Players) == 0 || room.ConnectedCount() == 0 {
		room.Mu.Unlock()
		gs.registry.DeleteRoom(code)
		log.Info().Str("room", code).Msg("removed empty room")
		return
	}

	// A departure can leave every remaining connected player answered,
	// which completes the round.
	if room.State == models.StateRoundActive && room.AllConnectedAnswered() {
		gs.endRoundLocked(room)
	}

	gs.broadcastRosterLocked(room)
	room.Mu.Unlock()

	log.Info().Str("room", code).Str("player", player.Name).Msg("player disconnected")
}

// StartGame handles start-game. Only the host may call it, at least two
// players must be present, and question building happens off the room
// lock with the lock reacquired to install the result.
func (gs *GameService) StartGame(ctx context.Context, code, sessionID string) error {
	room, err := gs.registry.GetRoom(NormalizeCode(code))
	if err != nil {
		return ErrRoomNotFound
	}

	room.Mu.Lock()
	caller := room.FindSession(sessionID)
	if caller == nil || !caller.IsHost {
		room.Mu.Unlock()
		return ErrNotHost
	}
	if room.State != models.StateWaiting || room.Starting {
		room.Mu.Unlock()
		return ErrGameInProgress
	}
	if len(room.Players) < 2 {
		room.Mu.Unlock()
		return ErrInsufficientPlayers
	}
	total := room.TotalRounds
	room.Starting = true
	room.Mu.Unlock()

	questions := gs.builder.Build(ctx, total)

	room.Mu.Lock()
	defer room.Mu.Unlock()
	room.Starting = false

	// The room may have been torn down or the roster shrunk while the
	// lock was released for the build; a deleted room must never enter
	// a round.
	if room.Deleted {
		return ErrRoomNotFound
	}
	if room.State != models.StateWaiting {
		return ErrGameInProgress
	}
	if len(room.Players) < 2 {
		return ErrInsufficientPlayers
	}

	room.Questions = questions
	room.CurrentRound = 0
	gs.bus.ToRoom(room.Code, "game-started", nil)
	gs.startRoundLocked(room)

	log.Info().Str("room", room.Code).Int("rounds", total).Msg("game started")
	return nil
}

// SubmitAnswer records a player's answer at most once per round, acks
// the submitting session privately, and reveals early when the last
// connected player has answered.
func (gs *GameService) SubmitAnswer(code, playerName string, optionIndex int) error {
	room, err := gs.registry.GetRoom(NormalizeCode(code))
	if err != nil {
		return ErrRoomNotFound
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if !room.GameStarted() {
		return ErrGameNotActive
	}
	question := room.CurrentQuestion()
	if question == nil {
		return ErrNoActiveQuestion
	}

	player := room.FindPlayer(playerName)
	if player == nil {
		return ErrPlayerNotFound
	}

	// Duplicate submissions are a silent no-op so client retries and
	// double-clicks cannot double-score.
	if player.HasAnswered {
		return nil
	}
	player.HasAnswered = true

	correct := optionIndex == question.CorrectIndex
	points := 0
	if correct {
		points = ComputePoints(room.TimeLeftSeconds)
		player.Score += points
		player.CorrectAnswers++
	}

	gs.bus.ToSession(player.SessionID, "answer-result", gin.H{
		"correct":  correct,
		"points":   points,
		"timeLeft": room.TimeLeftSeconds,
	})

	log.Debug().Str("room", room.Code).Str("player", playerName).
		Bool("correct", correct).Int("points", points).Msg("answer submitted")

	if room.AllConnectedAnswered() {
		gs.endRoundLocked(room)
	}
	return nil
}

// RoomState handles get-room-state: the current roster re-emitted to the
// requester only.
func (gs *GameService) RoomState(code, sessionID string) error {
	room, err := gs.registry.GetRoom(NormalizeCode(code))
	if err != nil {
		return ErrRoomNotFound
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	gs.bus.ToSession(sessionID, "room-updated", gin.H{
		"roomId":      room.Code,
		"players":     room.RosterView(),
		"gameStarted": room.GameStarted(),
	})
	return nil
}

// FinalScores handles get-final-scores: the last finished game's sorted
// standings, or the current roster sorted by score when no game has
// finished yet.
func (gs *GameService) FinalScores(code, sessionID string) error {
	room, err := gs.registry.GetRoom(NormalizeCode(code))
	if err != nil {
		return ErrRoomNotFound
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	standings := room.FinalStandings
	if standings == nil {
		standings = sortedStandings(room)
	}
	gs.bus.ToSession(sessionID, "final-scores", gin.H{"players": standings})
	return nil
}

// RoomSessions returns the session IDs currently indexed to a room; the
// hub uses it to resolve broadcast audiences.
func (gs *GameService) RoomSessions(code string) []string {
	code = NormalizeCode(code)

	gs.mu.Lock()
	defer gs.mu.Unlock()

	var sessions []string
	for sid, c := range gs.sessions {
		if c == code {
			sessions = append(sessions, sid)
		}
	}
	return sessions
}

// startRoundLocked begins the round at room.CurrentRound: answer flags
// reset, question broadcast with answer withheld, countdown armed.
func (gs *GameService) startRoundLocked(room *models.Room) {
	question := room.Questions[room.CurrentRound]

	for _, p := range room.Players {
		p.HasAnswered = false
	}
	room.TimeLeftSeconds = gs.RoundSeconds
	room.State = models.StateRoundActive

	gs.bus.ToRoom(room.Code, "new-question", gin.H{
		"round": room.CurrentRound + 1,
		"question": gin.H{
			"id":            question.ID,
			"mediaUrl":      question.MediaURL,
			"options":       question.Options,
			"correctAnswer": nil,
			"artist":        nil,
		},
	})

	gen, cancel := newTimerGenLocked(room)
	go gs.runCountdown(room, gen, cancel)

	log.Info().Str("room", room.Code).Int("round", room.CurrentRound+1).Msg("round started")
}

// runCountdown ticks the active round's clock. The generation check
// makes a superseded countdown a no-op even if it was already waiting on
// the room lock when it was cancelled.
func (gs *GameService) runCountdown(room *models.Room, gen uint64, cancel <-chan struct{}) {
	ticker := time.NewTicker(gs.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			room.Mu.Lock()
			if room.TimerGen != gen || room.State != models.StateRoundActive {
				room.Mu.Unlock()
				return
			}

			room.TimeLeftSeconds--
			gs.bus.ToRoom(room.Code, "timer-update", room.TimeLeftSeconds)

			if room.TimeLeftSeconds <= 0 {
				gs.endRoundLocked(room)
				room.Mu.Unlock()
				return
			}
			room.Mu.Unlock()
		}
	}
}

// endRoundLocked performs the single RoundActive -> RoundReveal
// transition: countdown cancelled, reveal broadcast, advance scheduled.
// Reached either by the countdown hitting zero or by the last connected
// player answering, whichever comes first.
func (gs *GameService) endRoundLocked(room *models.Room) {
	cancelTimerLocked(room)
	room.State = models.StateRoundReveal

	question := room.Questions[room.CurrentRound]
	gs.bus.ToRoom(room.Code, "round-results", gin.H{
		"correctAnswer": question.CorrectIndex,
		"correctSong":   question.Options[question.CorrectIndex],
		"artist":        question.Artist,
		"players":       room.RosterView(),
	})

	gen, cancel := newTimerGenLocked(room)
	go gs.runRevealDelay(room, gen, cancel)

	log.Info().Str("room", room.Code).Int("round", room.CurrentRound+1).Msg("round ended")
}

// runRevealDelay waits out the reveal pause, then either starts the next
// round or finishes the game.
func (gs *GameService) runRevealDelay(room *models.Room, gen uint64, cancel <-chan struct{}) {
	timer := time.NewTimer(gs.RevealDelay)
	defer timer.Stop()

	select {
	case <-cancel:
		return
	case <-timer.C:
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.TimerGen != gen || room.State != models.StateRoundReveal {
		return
	}

	if room.CurrentRound+1 < room.TotalRounds {
		room.CurrentRound++
		gs.startRoundLocked(room)
		return
	}
	gs.finishGameLocked(room)
}

// finishGameLocked delivers the final standings and resets the room to
// Waiting for a rematch: scores zeroed, questions dropped, roster and
// host kept.
func (gs *GameService) finishGameLocked(room *models.Room) {
	cancelTimerLocked(room)

	standings := sortedStandings(room)
	room.FinalStandings = standings
	room.State = models.StateFinished

	gs.bus.ToRoom(room.Code, "game-ended", gin.H{"players": standings})

	room.State = models.StateWaiting
	room.CurrentRound = 0
	room.Questions = nil
	room.TimeLeftSeconds = 0
	for _, p := range room.Players {
		p.Score = 0
		p.CorrectAnswers = 0
		p.HasAnswered = false
	}

	log.Info().Str("room", room.Code).Msg("game ended")
}

// sortedStandings returns the roster sorted by score descending,
// insertion order preserved on ties.
func sortedStandings(room *models.Room) []models.PlayerView {
	standings := room.RosterView()
	sort.SliceStable(standings, func(i, j int) bool {
		return standings[i].Score > standings[j].Score
	})
	return standings
}

func (gs *GameService) broadcastRosterLocked(room *models.Room) {
	gs.bus.ToRoom(room.Code, "room-updated", gin.H{
		"roomId":      room.Code,
		"players":     room.RosterView(),
		"gameStarted": room.GameStarted(),
	})
}

// ComputePoints awards a correct answer: a 100-point base plus a speed
// bonus proportional to the time remaining. Answering with the full 30
// seconds left yields 199, at the buzzer 100.
func ComputePoints(timeLeftSeconds int) int {
	if timeLeftSeconds < 0 {
		timeLeftSeconds = 0
	}
	return 100 + int(float64(timeLeftSeconds)*3.33)
}
