package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chaitanyahoon/bestguess-delta/models"
)

func TestValidCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"ABC123", true},
		{"ZZZZZZ", true},
		{"000000", true},
		{"abc123", false}, // normalization happens before validation
		{"ABC12", false},
		{"ABC1234", false},
		{"AB C12", false},
		{"ABC12!", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCode(tt.code))
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "ABC123", NormalizeCode(" abc123 "))
}

func TestCreateRoom(t *testing.T) {
	reg := NewRoomRegistry()

	room, err := reg.CreateRoom("ABC123")
	require.NoError(t, err)
	assert.Equal(t, models.StateWaiting, room.State)
	assert.Equal(t, 5, room.TotalRounds)
	assert.Empty(t, room.Players)

	_, err = reg.CreateRoom("ABC123")
	assert.ErrorIs(t, err, ErrRoomExists)

	_, err = reg.CreateRoom("bad")
	assert.ErrorIs(t, err, ErrInvalidRoomCode)
}

func TestGetRoomNotFound(t *testing.T) {
	reg := NewRoomRegistry()
	_, err := reg.GetRoom("ABC123")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestDeleteRoomIdempotentAndCancelsTimer(t *testing.T) {
	reg := NewRoomRegistry()

	room, err := reg.CreateRoom("ABC123")
	require.NoError(t, err)

	room.Mu.Lock()
	gen, cancel := newTimerGenLocked(room)
	room.Mu.Unlock()

	reg.DeleteRoom("ABC123")
	reg.DeleteRoom("ABC123") // idempotent

	select {
	case <-cancel:
	default:
		t.Fatal("pending timer not cancelled on delete")
	}

	room.Mu.Lock()
	assert.True(t, room.Deleted)
	assert.Greater(t, room.TimerGen, gen, "generation advanced past the cancelled task")
	room.Mu.Unlock()

	_, err = reg.GetRoom("ABC123")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestCancelBeforeSchedule(t *testing.T) {
	reg := NewRoomRegistry()
	room, err := reg.CreateRoom("ABC123")
	require.NoError(t, err)

	room.Mu.Lock()
	gen1, cancel1 := newTimerGenLocked(room)
	gen2, cancel2 := newTimerGenLocked(room)
	room.Mu.Unlock()

	assert.Greater(t, gen2, gen1)

	// Arming the second task must have cancelled the first.
	select {
	case <-cancel1:
	default:
		t.Fatal("first timer still live after second was scheduled")
	}
	select {
	case <-cancel2:
		t.Fatal("second timer cancelled prematurely")
	default:
	}
}

func TestRegistryCounts(t *testing.T) {
	reg := NewRoomRegistry()
	assert.Equal(t, 0, reg.RoomCount())
	assert.Equal(t, 0, reg.PlayerCount())

	roomA, err := reg.CreateRoom("AAAAAA")
	require.NoError(t, err)
	roomB, err := reg.CreateRoom("BBBBBB")
	require.NoError(t, err)

	roomA.Mu.Lock()
	roomA.Players = append(roomA.Players, &models.Player{Name: "Alice"}, &models.Player{Name: "Bob"})
	roomA.Mu.Unlock()
	roomB.Mu.Lock()
	roomB.Players = append(roomB.Players, &models.Player{Name: "Carol"})
	roomB.Mu.Unlock()

	assert.Equal(t, 2, reg.RoomCount())
	assert.Equal(t, 3, reg.PlayerCount())
}
