package services

import (
	"context"

	"github.com/Chaitanyahoon/bestguess-delta/models"
)

// ContentProvider supplies playable catalog items for question building.
// Implementations may return fewer items than requested; the question
// builder decides whether that is enough.
type ContentProvider interface {
	FetchPlayableItems(ctx context.Context, count int) ([]models.Track, error)
}

// StaticCatalog is the baked-in fallback used whenever the live provider
// fails or comes up short. It always has enough entries for a default
// game plus distractors.
type StaticCatalog struct{}

// FetchPlayableItems returns up to count tracks; count <= 0 means all.
func (StaticCatalog) FetchPlayableItems(_ context.Context, count int) ([]models.Track, error) {
	tracks := staticTracks()
	if count > 0 && count < len(tracks) {
		return tracks[:count], nil
	}
	return tracks, nil
}

func staticTracks() []models.Track {
	return []models.Track{
		{ID: "static-1", Title: "Bohemian Rhapsody", Artist: "Queen", PreviewURL: "https://p.scdn.co/mp3-preview/5a12483aa3b51331aba1fbe5f59ecf4af5d9290b"},
		{ID: "static-2", Title: "Billie Jean", Artist: "Michael Jackson", PreviewURL: "https://p.scdn.co/mp3-preview/f504e6b8e037771318656394f532dede4f9bcaea"},
		{ID: "static-3", Title: "Smells Like Teen Spirit", Artist: "Nirvana", PreviewURL: "https://p.scdn.co/mp3-preview/5a12483aa3b51331aba1fbe5f59ecf4af5d9290b"},
		{ID: "static-4", Title: "Sweet Child O' Mine", Artist: "Guns N' Roses", PreviewURL: "https://p.scdn.co/mp3-preview/f504e6b8e037771318656394f532dede4f9bcaea"},
		{ID: "static-5", Title: "Hotel California", Artist: "Eagles", PreviewURL: "https://p.scdn.co/mp3-preview/5a12483aa3b51331aba1fbe5f59ecf4af5d9290b"},
		{ID: "static-6", Title: "Imagine", Artist: "John Lennon", PreviewURL: "https://p.scdn.co/mp3-preview/f504e6b8e037771318656394f532dede4f9bcaea"},
		{ID: "static-7", Title: "Stairway to Heaven", Artist: "Led Zeppelin", PreviewURL: "https://p.scdn.co/mp3-preview/5a12483aa3b51331aba1fbe5f59ecf4af5d9290b"},
		{ID: "static-8", Title: "Yesterday", Artist: "The Beatles", PreviewURL: "https://p.scdn.co/mp3-preview/f504e6b8e037771318656394f532dede4f9bcaea"},
		{ID: "static-9", Title: "Like a Rolling Stone", Artist: "Bob Dylan", PreviewURL: "https://p.scdn.co/mp3-preview/5a12483aa3b51331aba1fbe5f59ecf4af5d9290b"},
		{ID: "static-10", Title: "Purple Haze", Artist: "Jimi Hendrix", PreviewURL: "https://p.scdn.co/mp3-preview/f504e6b8e037771318656394f532dede4f9bcaea"},
	}
}
