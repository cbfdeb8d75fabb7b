package services

import "errors"

// Room-scoped errors. These are delivered to the requesting session as
// room-error events and never broadcast; none of them mutate state.
var (
	ErrInvalidRoomCode     = errors.New("invalid room code format")
	ErrNameRequired        = errors.New("room ID and player name are required")
	ErrNameTooLong         = errors.New("player name too long (max 20 characters)")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomExists          = errors.New("room already exists")
	ErrGameInProgress      = errors.New("game already in progress")
	ErrNameTaken           = errors.New("player name already taken")
	ErrNotHost             = errors.New("only the host can start the game")
	ErrInsufficientPlayers = errors.New("need at least 2 players to start")
	ErrGameNotActive       = errors.New("game has not started")
	ErrNoActiveQuestion    = errors.New("no active question")
	ErrPlayerNotFound      = errors.New("player not found")
)
