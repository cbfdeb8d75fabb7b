package services

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Chaitanyahoon/bestguess-delta/models"
)

const (
	optionsPerQuestion = 4
	// Extra candidates requested beyond the round count so every question
	// has distractors to draw from.
	distractorHeadroom = 15
)

// QuestionBuilder turns provider catalog items into shuffled four-option
// questions. Provider failure or a short catalog falls back to the
// static list; building never fails beyond that.
type QuestionBuilder struct {
	provider ContentProvider
	fallback StaticCatalog

	mu  sync.Mutex
	rng *rand.Rand
}

func NewQuestionBuilder(provider ContentProvider) *QuestionBuilder {
	return &QuestionBuilder{
		provider: provider,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithSeed pins the shuffle order, for deterministic tests.
func (b *QuestionBuilder) WithSeed(seed int64) *QuestionBuilder {
	b.mu.Lock()
	b.rng = rand.New(rand.NewSource(seed))
	b.mu.Unlock()
	return b
}

// Build produces count questions, each with one correct option and three
// distractors in uniformly random order.
func (b *QuestionBuilder) Build(ctx context.Context, count int) []models.Question {
	tracks := b.usableTracks(ctx, count)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.rng.Shuffle(len(tracks), func(i, j int) {
		tracks[i], tracks[j] = tracks[j], tracks[i]
	})

	questions := make([]models.Question, 0, count)
	for i := 0; i < count; i++ {
		track := tracks[i%len(tracks)]
		questions = append(questions, b.buildOneLocked(track, tracks))
	}
	return questions
}

// usableTracks fetches candidates and enforces the fallback rule: the
// live catalog must cover the round count and leave enough distinct
// labels for a full option set.
func (b *QuestionBuilder) usableTracks(ctx context.Context, count int) []models.Track {
	candidates, err := b.provider.FetchPlayableItems(ctx, count+distractorHeadroom)
	if err != nil {
		log.Warn().Err(err).Msg("content provider failed, using static catalog")
		candidates = nil
	}

	usable := candidates[:0]
	labels := make(map[string]bool)
	for _, t := range candidates {
		if t.Playable() {
			usable = append(usable, t)
			labels[t.Label()] = true
		}
	}

	// Distinct labels, not raw items, decide sufficiency: a catalog of
	// near-duplicates cannot fill a four-option question.
	if len(usable) < count || len(labels) < optionsPerQuestion {
		if err == nil {
			log.Warn().Int("usable", len(usable)).Int("labels", len(labels)).Int("needed", count).
				Msg("content provider returned too few playable items, using static catalog")
		}
		usable, _ = b.fallback.FetchPlayableItems(ctx, 0)
	}
	return usable
}

func (b *QuestionBuilder) buildOneLocked(track models.Track, pool []models.Track) models.Question {
	correct := track.Label()

	seen := map[string]bool{correct: true}
	distractors := make([]string, 0, optionsPerQuestion-1)
	for _, i := range b.rng.Perm(len(pool)) {
		if len(distractors) == optionsPerQuestion-1 {
			break
		}
		label := pool[i].Label()
		if seen[label] {
			continue
		}
		seen[label] = true
		distractors = append(distractors, label)
	}

	options := append([]string{correct}, distractors...)
	perm := b.rng.Perm(len(options))
	shuffled := make([]string, len(options))
	correctIndex := 0
	for from, to := range perm {
		shuffled[to] = options[from]
		if from == 0 {
			correctIndex = to
		}
	}

	return models.Question{
		ID:           track.ID,
		MediaURL:     track.PreviewURL,
		Options:      shuffled,
		CorrectIndex: correctIndex,
		Artist:       track.Artist,
	}
}
