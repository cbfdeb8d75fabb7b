package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/Chaitanyahoon/bestguess-delta/handlers"
	"github.com/Chaitanyahoon/bestguess-delta/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // the CORS story lives in middleware, not the upgrade
	},
}

func SetupRoutes(router *gin.Engine, healthHandler *handlers.HealthHandler, hub *services.Hub) {
	// Monitoring surface
	router.GET("/", healthHandler.Root)
	router.GET("/health", healthHandler.Health)

	// All game traffic flows over one WebSocket endpoint; the client
	// identifies rooms and players in its event payloads.
	router.GET("/ws", func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Error().Err(err).Msg("websocket upgrade failed")
			return
		}
		hub.RegisterClient(conn)
	})
}
