package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Chaitanyahoon/bestguess-delta/config"
	"github.com/Chaitanyahoon/bestguess-delta/handlers"
	"github.com/Chaitanyahoon/bestguess-delta/middleware"
	"github.com/Chaitanyahoon/bestguess-delta/routes"
	"github.com/Chaitanyahoon/bestguess-delta/services"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()

	// Load configuration
	cfg := config.Load()

	// Initialize Redis (catalog cache; the server runs fine without it)
	redisClient := config.InitRedis(cfg)

	// Initialize content provider and question builder
	var provider services.ContentProvider
	if cfg.SpotifyClientID != "" && cfg.SpotifySecret != "" {
		provider = services.NewSpotifyCatalog(context.Background(),
			cfg.SpotifyClientID, cfg.SpotifySecret, cfg.SpotifyPlaylistID, redisClient)
	} else {
		log.Warn().Msg("no spotify credentials, serving the static catalog")
		provider = services.StaticCatalog{}
	}
	builder := services.NewQuestionBuilder(provider)

	// Initialize room registry and game service behind the WebSocket hub
	registry := services.NewRoomRegistry()
	registry.TotalRounds = cfg.TotalRounds
	hub := services.NewHub()
	gameService := services.NewGameService(registry, builder, hub)
	gameService.RoundSeconds = cfg.RoundSeconds
	hub.Bind(gameService)
	go hub.Run()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(registry)

	// Setup Gin router
	router := gin.Default()

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Setup routes
	routes.SetupRoutes(router, healthHandler, hub)

	// Start server
	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := router.Run(cfg.BindAddress + ":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}
