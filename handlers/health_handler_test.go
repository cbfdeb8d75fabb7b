package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chaitanyahoon/bestguess-delta/models"
	"github.com/Chaitanyahoon/bestguess-delta/services"
)

func setupRouter(registry *services.RoomRegistry) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHealthHandler(registry)
	router := gin.New()
	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	return router
}

func TestHealth(t *testing.T) {
	registry := services.NewRoomRegistry()
	room, err := registry.CreateRoom("ABC123")
	require.NoError(t, err)
	room.Mu.Lock()
	room.Players = append(room.Players,
		&models.Player{Name: "Alice", Connected: true},
		&models.Player{Name: "Bob", Connected: true},
	)
	room.Mu.Unlock()

	router := setupRouter(registry)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status    string  `json:"status"`
		Uptime    float64 `json:"uptime"`
		Timestamp int64   `json:"timestamp"`
		Rooms     int     `json:"rooms"`
		Players   int     `json:"players"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))

	assert.Equal(t, "OK", body.Status)
	assert.GreaterOrEqual(t, body.Uptime, 0.0)
	assert.NotZero(t, body.Timestamp)
	assert.Equal(t, 1, body.Rooms)
	assert.Equal(t, 2, body.Players)
}

func TestRoot(t *testing.T) {
	router := setupRouter(services.NewRoomRegistry())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "running")
}
