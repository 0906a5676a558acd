package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/textrank/pkg/textrank/annotate"
	"github.com/cognicore/textrank/pkg/textrank/internalerr"
	"github.com/cognicore/textrank/pkg/textrank/phrase"
	"github.com/cognicore/textrank/pkg/textrank/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	results map[string]store.Result
	cards   map[string]store.Card
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		results: make(map[string]store.Result),
		cards:   make(map[string]store.Card),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveResult inserts or replaces a result, assigning an ID when missing.
func (s *Store) SaveResult(ctx context.Context, r store.Result) (string, error) {
	if r.DocKey == "" {
		return "", fmt.Errorf("save result: empty doc key: %w", internalerr.ErrInvalidInput)
	}
	r = store.Prepare(r)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.ID] = copyResult(r)
	return r.ID, nil
}

// GetResult returns a result by ID.
func (s *Store) GetResult(ctx context.Context, id string) (store.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.results[id]
	if !ok {
		return store.Result{}, fmt.Errorf("result %s: %w", id, internalerr.ErrNotFound)
	}
	return copyResult(r), nil
}

// ResultsByDoc returns the results of one document, newest first.
func (s *Store) ResultsByDoc(ctx context.Context, docKey string) ([]store.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Result
	for _, r := range s.results {
		if r.DocKey == docKey {
			out = append(out, copyResult(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// DocsWithPhrase lists the documents whose results contain a phrase text.
func (s *Store) DocsWithPhrase(ctx context.Context, text string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, r := range s.results {
		for _, p := range r.Phrases {
			if p.Text == text {
				seen[r.DocKey] = struct{}{}
				break
			}
		}
	}

	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// UpsertCard stores a card by ID.
func (s *Store) UpsertCard(ctx context.Context, c store.Card) error {
	if c.ID == "" {
		return fmt.Errorf("upsert card: empty id: %w", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	c.Bullets = append([]string(nil), c.Bullets...)
	s.cards[c.ID] = c
	return nil
}

// CardsByDoc returns the cards of a document ordered by ID.
func (s *Store) CardsByDoc(ctx context.Context, docKey string) ([]store.Card, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []store.Card
	for _, c := range s.cards {
		if c.DocKey == docKey {
			c.Bullets = append([]string(nil), c.Bullets...)
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func copyResult(r store.Result) store.Result {
	phrases := make([]phrase.Phrase, len(r.Phrases))
	for i, p := range r.Phrases {
		p.Chunks = append([]annotate.Span(nil), p.Chunks...)
		phrases[i] = p
	}
	r.Phrases = phrases
	r.Summary = append([]string(nil), r.Summary...)
	return r
}
