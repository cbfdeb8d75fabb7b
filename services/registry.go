package services

import (
	"strings"
	"sync"
	"time"

	"github.com/Chaitanyahoon/bestguess-delta/models"
)

const roomCodeLength = 6

// RoomRegistry owns every Room. Its mutex guards only insertion and
// removal of entries; in-room state is serialized by each room's own
// lock.
type RoomRegistry struct {
	mu    sync.RWMutex
	rooms map[string]*models.Room

	// TotalRounds is stamped onto each new room.
	TotalRounds int
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		rooms:       make(map[string]*models.Room),
		TotalRounds: defaultTotalRounds,
	}
}

// NormalizeCode uppercases a client-supplied room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidCode reports whether code is exactly six uppercase alphanumerics.
func ValidCode(code string) bool {
	if len(code) != roomCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}

// CreateRoom inserts a fresh waiting room under code.
func (reg *RoomRegistry) CreateRoom(code string) (*models.Room, error) {
	if !ValidCode(code) {
		return nil, ErrInvalidRoomCode
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.rooms[code]; ok {
		return nil, ErrRoomExists
	}

	room := &models.Room{
		Code:        code,
		State:       models.StateWaiting,
		TotalRounds: reg.TotalRounds,
		CreatedAt:   time.Now(),
	}
	reg.rooms[code] = room
	return room, nil
}

func (reg *RoomRegistry) GetRoom(code string) (*models.Room, error) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	room, ok := reg.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return room, nil
}

// DeleteRoom removes a room, first cancelling any timed task still
// scheduled against it. Idempotent.
func (reg *RoomRegistry) DeleteRoom(code string) {
	reg.mu.Lock()
	room, ok := reg.rooms[code]
	delete(reg.rooms, code)
	reg.mu.Unlock()

	if !ok {
		return
	}

	room.Mu.Lock()
	room.Deleted = true
	cancelTimerLocked(room)
	room.Mu.Unlock()
}

// RoomCount is used by the health endpoint only.
func (reg *RoomRegistry) RoomCount() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// PlayerCount totals roster sizes across all rooms, for the health
// endpoint only.
func (reg *RoomRegistry) PlayerCount() int {
	reg.mu.RLock()
	rooms := make([]*models.Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.RUnlock()

	total := 0
	for _, room := range rooms {
		room.Mu.Lock()
		total += len(room.Players)
		room.Mu.Unlock()
	}
	return total
}

// cancelTimerLocked invalidates the room's live timed task, if any.
// Callers must hold the room lock. Starting any new timed task goes
// through newTimerGenLocked, so at most one task is ever live.
func cancelTimerLocked(room *models.Room) {
	room.TimerGen++
	if room.TimerCancel != nil {
		close(room.TimerCancel)
		room.TimerCancel = nil
	}
}

// newTimerGenLocked cancels the previous task and arms a new generation,
// returning the generation number and its cancel channel. Callers must
// hold the room lock.
func newTimerGenLocked(room *models.Room) (uint64, chan struct{}) {
	cancelTimerLocked(room)
	room.TimerCancel = make(chan struct{})
	return room.TimerGen, room.TimerCancel
}
