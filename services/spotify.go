package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/Chaitanyahoon/bestguess-delta/models"
)

const catalogCacheTTL = 2 * time.Hour

// SpotifyCatalog pulls playable tracks from a Spotify playlist using the
// client-credentials flow. Fetched tracks are cached in Redis so a burst
// of game starts hits the API at most once per TTL; a nil or unreachable
// Redis simply means every fetch goes to the API.
type SpotifyCatalog struct {
	client     *spotify.Client
	redis      *redis.Client
	playlistID string
}

func NewSpotifyCatalog(ctx context.Context, clientID, clientSecret, playlistID string, redisClient *redis.Client) *SpotifyCatalog {
	creds := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	// The oauth2 client refreshes its own token, so no refresh loop here.
	httpClient := creds.Client(ctx)

	return &SpotifyCatalog{
		client:     spotify.New(httpClient),
		redis:      redisClient,
		playlistID: playlistID,
	}
}

func (s *SpotifyCatalog) FetchPlayableItems(ctx context.Context, count int) ([]models.Track, error) {
	if cached := s.cachedTracks(ctx); len(cached) > 0 {
		return limitTracks(cached, count), nil
	}

	page, err := s.client.GetPlaylistItems(ctx, spotify.ID(s.playlistID), spotify.Limit(50))
	if err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(page.Items))
	for _, item := range page.Items {
		full := item.Track.Track
		if full == nil || full.PreviewURL == "" {
			continue
		}
		artist := ""
		if len(full.Artists) > 0 {
			artist = full.Artists[0].Name
		}
		tracks = append(tracks, models.Track{
			ID:         string(full.ID),
			Title:      full.Name,
			Artist:     artist,
			PreviewURL: full.PreviewURL,
		})
	}

	s.storeTracks(ctx, tracks)
	return limitTracks(tracks, count), nil
}

func (s *SpotifyCatalog) cachedTracks(ctx context.Context) []models.Track {
	if s.redis == nil {
		return nil
	}

	data, err := s.redis.Get(ctx, s.cacheKey()).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("catalog cache read failed")
		}
		return nil
	}

	var tracks []models.Track
	if err := json.Unmarshal([]byte(data), &tracks); err != nil {
		log.Warn().Err(err).Msg("catalog cache entry corrupt")
		return nil
	}
	return tracks
}

func (s *SpotifyCatalog) storeTracks(ctx context.Context, tracks []models.Track) {
	if s.redis == nil || len(tracks) == 0 {
		return
	}

	data, err := json.Marshal(tracks)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, s.cacheKey(), data, catalogCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("catalog cache write failed")
	}
}

func (s *SpotifyCatalog) cacheKey() string {
	return "catalog:" + s.playlistID
}

func limitTracks(tracks []models.Track, count int) []models.Track {
	if count > 0 && count < len(tracks) {
		return tracks[:count]
	}
	return tracks
}
