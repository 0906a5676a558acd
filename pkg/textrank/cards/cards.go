package cards

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/textrank/pkg/textrank/phrase"
	"github.com/cognicore/textrank/pkg/textrank/store"
	"github.com/cognicore/textrank/pkg/textrank/summarize"
)

// Builder constructs explainable result cards
type Builder struct {
	entropy *ulid.MonotonicEntropy
}

// New creates a new card builder
func New() *Builder {
	return &Builder{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Card is a keyphrase headline with its summary sentences
type Card struct {
	ID             string
	DocKey         string
	Title          string
	Bullets        []string
	ScoreBreakdown map[string]float64
	Explain        Explain
}

// Explain lists which top phrases each bullet covers
type Explain struct {
	TopPhrases []string   `json:"top_phrases"`
	Covered    [][]string `json:"covered"`
}

// Build creates a card from ranked phrases and the selected summary
// sentences. Only the first limit phrases are scored.
func (b *Builder) Build(docKey string, phrases []phrase.Phrase, summary []summarize.Sentence, limit int) Card {
	if limit <= 0 || limit > len(phrases) {
		limit = len(phrases)
	}
	top := phrases[:limit]

	card := Card{
		ID:             ulid.MustNew(ulid.Now(), b.entropy).String(),
		DocKey:         docKey,
		Title:          docKey,
		Bullets:        make([]string, 0, len(summary)),
		ScoreBreakdown: make(map[string]float64, len(top)),
		Explain: Explain{
			TopPhrases: make([]string, 0, len(top)),
			Covered:    make([][]string, 0, len(summary)),
		},
	}
	if len(top) > 0 {
		card.Title = top[0].Text
	}

	for _, p := range top {
		card.ScoreBreakdown[p.Text] = p.Rank
		card.Explain.TopPhrases = append(card.Explain.TopPhrases, p.Text)
	}

	for _, sent := range summary {
		card.Bullets = append(card.Bullets, sent.Text)
		covered := []string{}
		for _, idx := range sent.Phrases {
			if idx >= 0 && idx < len(top) {
				covered = append(covered, top[idx].Text)
			}
		}
		card.Explain.Covered = append(card.Explain.Covered, covered)
	}

	return card
}

// Record converts the card into its stored form
func (c Card) Record() (store.Card, error) {
	payload := struct {
		Scores  map[string]float64 `json:"scores"`
		Explain Explain            `json:"explain"`
	}{c.ScoreBreakdown, c.Explain}

	data, err := json.Marshal(payload)
	if err != nil {
		return store.Card{}, err
	}
	return store.Card{
		ID:        c.ID,
		DocKey:    c.DocKey,
		Title:     c.Title,
		Bullets:   append([]string(nil), c.Bullets...),
		ScoreJSON: string(data),
	}, nil
}

// Persist stores a ranking run and its card. It returns the result ID and
// the card.
func (b *Builder) Persist(ctx context.Context, st store.Store, run store.Result, summary []summarize.Sentence, limit int) (string, Card, error) {
	run.Summary = make([]string, len(summary))
	for i, s := range summary {
		run.Summary[i] = s.Text
	}

	id, err := st.SaveResult(ctx, run)
	if err != nil {
		return "", Card{}, fmt.Errorf("save result: %w", err)
	}

	card := b.Build(run.DocKey, run.Phrases, summary, limit)
	rec, err := card.Record()
	if err != nil {
		return "", Card{}, fmt.Errorf("encode card: %w", err)
	}
	if err := st.UpsertCard(ctx, rec); err != nil {
		return "", Card{}, fmt.Errorf("save card: %w", err)
	}
	return id, card, nil
}
