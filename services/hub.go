package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Message is the inbound wire envelope.
type Message struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// OutMessage is the outbound wire envelope.
type OutMessage struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

// Hub is the gateway between WebSocket connections and the game service.
// It translates inbound client events into service calls and implements
// Broadcaster for the service's outbound traffic.
type Hub struct {
	clients     map[*Client]bool
	register    chan *Client
	unregister  chan *Client
	mutex       sync.RWMutex
	gameService *GameService
}

// Client is one WebSocket connection. Its id doubles as the session ID
// the game service tracks.
type Client struct {
	hub    *Hub
	id     string
	socket *websocket.Conn
	send   chan []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Bind attaches the game service. Done after construction because the
// service broadcasts through the hub.
func (h *Hub) Bind(gs *GameService) {
	h.gameService = gs
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			log.Info().Str("session", client.id).Int("total", total).Msg("client registered")

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()

			// Room membership, host failover and teardown all live in
			// the game service.
			if h.gameService != nil {
				h.gameService.Disconnect(client.id)
			}
			log.Info().Str("session", client.id).Int("total", total).Msg("client unregistered")
		}
	}
}

// ToRoom sends an event to every session joined to the room. Delivery is
// fire-and-forget; a session with a full buffer is dropped rather than
// blocking the rest of the room.
func (h *Hub) ToRoom(code string, event string, payload any) {
	data, err := json.Marshal(OutMessage{Event: event, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal broadcast")
		return
	}

	members := h.roomSessions(code)

	h.mutex.Lock()
	for client := range h.clients {
		if !members[client.id] {
			continue
		}
		select {
		case client.send <- data:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
	h.mutex.Unlock()
}

// ToSession sends an event to a single session, if still connected.
func (h *Hub) ToSession(sessionID string, event string, payload any) {
	data, err := json.Marshal(OutMessage{Event: event, Payload: payload})
	if err != nil {
		log.Error().Err(err).Str("event", event).Msg("marshal send")
		return
	}

	h.mutex.Lock()
	for client := range h.clients {
		if client.id != sessionID {
			continue
		}
		select {
		case client.send <- data:
		default:
			delete(h.clients, client)
			close(client.send)
		}
		break
	}
	h.mutex.Unlock()
}

// roomSessions asks the game service which sessions belong to the room.
func (h *Hub) roomSessions(code string) map[string]bool {
	members := make(map[string]bool)
	if h.gameService == nil {
		return members
	}
	for _, sid := range h.gameService.RoomSessions(code) {
		members[sid] = true
	}
	return members
}

// RegisterClient adopts an upgraded connection and starts its pumps.
func (h *Hub) RegisterClient(conn *websocket.Conn) *Client {
	client := &Client{
		hub:    h,
		id:     uuid.NewString(),
		socket: conn,
		send:   make(chan []byte, 256),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	for {
		_, raw, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Str("session", c.id).Msg("websocket read error")
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(raw, &msg); err != nil {
			log.Debug().Err(err).Str("session", c.id).Msg("malformed message")
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		w, err := c.socket.NextWriter(websocket.TextMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
}

type joinRoomPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	IsHost     bool   `json:"isHost"`
}

type roomPayload struct {
	RoomID string `json:"roomId"`
}

type submitAnswerPayload struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
	Answer     int    `json:"answer"`
}

// handleMessage dispatches one inbound client event. Service errors go
// back to this session only as room-error; nothing here can take down
// another room.
func (c *Client) handleMessage(msg Message) {
	gs := c.hub.gameService
	if gs == nil {
		return
	}

	switch msg.Event {
	case "ping":
		c.hub.ToSession(c.id, "pong", nil)

	case "join-room":
		var p joinRoomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError(ErrNameRequired)
			return
		}
		if err := gs.JoinRoom(p.RoomID, c.id, p.PlayerName, p.IsHost); err != nil {
			c.sendError(err)
		}

	case "start-game":
		var p roomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError(ErrRoomNotFound)
			return
		}
		if err := gs.StartGame(context.Background(), p.RoomID, c.id); err != nil {
			c.sendError(err)
		}

	case "submit-answer":
		var p submitAnswerPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError(ErrNoActiveQuestion)
			return
		}
		if err := gs.SubmitAnswer(p.RoomID, p.PlayerName, p.Answer); err != nil {
			c.sendError(err)
		}

	case "get-room-state":
		var p roomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError(ErrRoomNotFound)
			return
		}
		if err := gs.RoomState(p.RoomID, c.id); err != nil {
			c.sendError(err)
		}

	case "get-final-scores":
		var p roomPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			c.sendError(ErrRoomNotFound)
			return
		}
		if err := gs.FinalScores(p.RoomID, c.id); err != nil {
			c.sendError(err)
		}

	default:
		log.Debug().Str("event", msg.Event).Str("session", c.id).Msg("unknown event")
	}
}

func (c *Client) sendError(err error) {
	c.hub.ToSession(c.id, "room-error", gin.H{"message": err.Error()})
}
