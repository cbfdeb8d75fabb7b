package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chaitanyahoon/bestguess-delta/models"
)

type stubProvider struct {
	tracks []models.Track
	err    error
	calls  int
}

func (s *stubProvider) FetchPlayableItems(_ context.Context, count int) ([]models.Track, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if count > 0 && count < len(s.tracks) {
		return s.tracks[:count], nil
	}
	return s.tracks, nil
}

func makeTracks(n int) []models.Track {
	tracks := make([]models.Track, 0, n)
	for i := 0; i < n; i++ {
		tracks = append(tracks, models.Track{
			ID:         fmt.Sprintf("t%d", i),
			Title:      fmt.Sprintf("Song %d", i),
			Artist:     fmt.Sprintf("Artist %d", i),
			PreviewURL: fmt.Sprintf("https://example.com/%d.mp3", i),
		})
	}
	return tracks
}

func TestBuildQuestions(t *testing.T) {
	provider := &stubProvider{tracks: makeTracks(12)}
	builder := NewQuestionBuilder(provider).WithSeed(7)

	questions := builder.Build(context.Background(), 5)
	require.Len(t, questions, 5)

	for _, q := range questions {
		require.Len(t, q.Options, 4)

		// Options are distinct.
		seen := map[string]bool{}
		for _, o := range q.Options {
			assert.False(t, seen[o], "duplicate option %q", o)
			seen[o] = true
		}

		// The recorded index points at the question's own track.
		require.GreaterOrEqual(t, q.CorrectIndex, 0)
		require.Less(t, q.CorrectIndex, 4)
		assert.Contains(t, q.Options[q.CorrectIndex], q.Artist)
		assert.NotEmpty(t, q.MediaURL)
	}
}

func TestBuildFallsBackOnProviderError(t *testing.T) {
	provider := &stubProvider{err: errors.New("upstream down")}
	builder := NewQuestionBuilder(provider).WithSeed(7)

	questions := builder.Build(context.Background(), 5)
	require.Len(t, questions, 5)
	for _, q := range questions {
		assert.Len(t, q.Options, 4)
	}
}

func TestBuildFallsBackOnShortCatalog(t *testing.T) {
	// Two usable tracks cannot cover five rounds of four options.
	provider := &stubProvider{tracks: makeTracks(2)}
	builder := NewQuestionBuilder(provider).WithSeed(7)

	questions := builder.Build(context.Background(), 5)
	require.Len(t, questions, 5)
	for _, q := range questions {
		assert.Len(t, q.Options, 4)
	}
}

func TestBuildFallsBackOnDuplicateLabels(t *testing.T) {
	// Plenty of playable items but only two distinct labels among them,
	// so a full option set cannot be drawn from the live catalog.
	tracks := make([]models.Track, 0, 10)
	for i := 0; i < 10; i++ {
		title := "Same Song"
		if i%2 == 0 {
			title = "Other Song"
		}
		tracks = append(tracks, models.Track{
			ID:         fmt.Sprintf("d%d", i),
			Title:      title,
			Artist:     "Same Artist",
			PreviewURL: fmt.Sprintf("https://example.com/%d.mp3", i),
		})
	}
	provider := &stubProvider{tracks: tracks}
	builder := NewQuestionBuilder(provider).WithSeed(7)

	questions := builder.Build(context.Background(), 5)
	require.Len(t, questions, 5)
	for _, q := range questions {
		require.Len(t, q.Options, 4)
		seen := map[string]bool{}
		for _, o := range q.Options {
			assert.False(t, seen[o], "duplicate option %q", o)
			seen[o] = true
		}
	}
}

func TestBuildFiltersUnplayableTracks(t *testing.T) {
	tracks := makeTracks(12)
	for i := range tracks {
		if i%2 == 0 {
			tracks[i].PreviewURL = ""
		}
	}
	provider := &stubProvider{tracks: tracks}
	builder := NewQuestionBuilder(provider).WithSeed(7)

	questions := builder.Build(context.Background(), 5)
	require.Len(t, questions, 5)
	for _, q := range questions {
		assert.NotEmpty(t, q.MediaURL, "only playable tracks become questions")
	}
}

func TestStaticCatalogAlwaysSufficient(t *testing.T) {
	tracks, err := StaticCatalog{}.FetchPlayableItems(context.Background(), 0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(tracks), 5+4, "fallback covers a default game plus distractors")
	for _, tr := range tracks {
		assert.True(t, tr.Playable())
	}
}

func TestBuildShuffleIsSeedStable(t *testing.T) {
	provider := &stubProvider{tracks: makeTracks(12)}

	a := NewQuestionBuilder(provider).WithSeed(99).Build(context.Background(), 5)
	b := NewQuestionBuilder(provider).WithSeed(99).Build(context.Background(), 5)
	assert.Equal(t, a, b)
}
