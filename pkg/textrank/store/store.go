package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/textrank/pkg/textrank/phrase"
)

// Store persists extraction results and the cards built from them
type Store interface {
	Close() error

	// Results
	SaveResult(ctx context.Context, r Result) (string, error)
	GetResult(ctx context.Context, id string) (Result, error)
	ResultsByDoc(ctx context.Context, docKey string) ([]Result, error)
	DocsWithPhrase(ctx context.Context, text string) ([]string, error)

	// Cards
	UpsertCard(ctx context.Context, c Card) error
	CardsByDoc(ctx context.Context, docKey string) ([]Card, error)
}

// Result is one ranking run over a document
type Result struct {
	ID        string
	DocKey    string // caller's identifier of the source document
	Algorithm string
	CreatedAt time.Time
	Elapsed   time.Duration
	Phrases   []phrase.Phrase
	Summary   []string
}

// Card represents a stored result card
type Card struct {
	ID        string
	DocKey    string
	Title     string
	Bullets   []string
	ScoreJSON string
}

var (
	idMu      sync.Mutex
	idEntropy = ulid.Monotonic(rand.Reader, 0)
)

// NewID returns a new ULID string; safe for concurrent use.
func NewID() string {
	idMu.Lock()
	defer idMu.Unlock()
	return ulid.MustNew(ulid.Now(), idEntropy).String()
}

// Prepare fills in the ID and timestamp of a result about to be saved.
func Prepare(r Result) Result {
	if r.ID == "" {
		r.ID = NewID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return r
}
