package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Port              string
	BindAddress       string
	RedisHost         string
	RedisPort         string
	SpotifyClientID   string
	SpotifySecret     string
	SpotifyPlaylistID string
	TotalRounds       int
	RoundSeconds      int
}

func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		BindAddress:     getEnv("BIND_ADDRESS", "0.0.0.0"),
		RedisHost:       getEnv("REDIS_HOST", "localhost"),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		SpotifyClientID: getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifySecret:   getEnv("SPOTIFY_CLIENT_SECRET", ""),
		// Global Top 50
		SpotifyPlaylistID: getEnv("SPOTIFY_PLAYLIST_ID", "37i9dQZEVXbMDoHDwVN2tF"),
		TotalRounds:       getEnvInt("TOTAL_ROUNDS", 5),
		RoundSeconds:      getEnvInt("ROUND_SECONDS", 30),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}

func InitRedis(cfg *Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: "", // no password set
		DB:       0,  // use default DB
	})

	return client
}
