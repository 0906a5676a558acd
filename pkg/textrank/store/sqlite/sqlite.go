package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/textrank/pkg/textrank/annotate"
	"github.com/cognicore/textrank/pkg/textrank/internalerr"
	"github.com/cognicore/textrank/pkg/textrank/phrase"
	"github.com/cognicore/textrank/pkg/textrank/store"
)

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS results (
	id TEXT PRIMARY KEY,
	doc_key TEXT NOT NULL,
	algorithm TEXT,
	created_at TEXT NOT NULL,
	elapsed_ns INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_results_doc ON results(doc_key);

CREATE TABLE IF NOT EXISTS result_phrases (
	result_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	text TEXT NOT NULL,
	rank REAL NOT NULL,
	count INTEGER NOT NULL,
	chunks TEXT,
	PRIMARY KEY(result_id, position),
	FOREIGN KEY(result_id) REFERENCES results(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_result_phrases_text ON result_phrases(text);

CREATE TABLE IF NOT EXISTS result_summary (
	result_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	sentence TEXT NOT NULL,
	PRIMARY KEY(result_id, position),
	FOREIGN KEY(result_id) REFERENCES results(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS cards (
	id TEXT PRIMARY KEY,
	doc_key TEXT NOT NULL,
	title TEXT,
	bullets TEXT,
	score_json TEXT
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveResult inserts or replaces a result together with its phrases and
// summary sentences.
func (s *sqliteStore) SaveResult(ctx context.Context, r store.Result) (string, error) {
	if r.DocKey == "" {
		return "", fmt.Errorf("save result: empty doc key: %w", internalerr.ErrInvalidInput)
	}
	r = store.Prepare(r)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	const stmt = `
INSERT INTO results (id, doc_key, algorithm, created_at, elapsed_ns)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	doc_key=excluded.doc_key,
	algorithm=excluded.algorithm,
	created_at=excluded.created_at,
	elapsed_ns=excluded.elapsed_ns;
`
	_, err = tx.ExecContext(ctx, stmt,
		r.ID,
		r.DocKey,
		r.Algorithm,
		r.CreatedAt.UTC().Format(timeLayout),
		int64(r.Elapsed),
	)
	if err != nil {
		return "", err
	}

	if err := replacePhrases(ctx, tx, r.ID, r.Phrases); err != nil {
		return "", err
	}
	if err := replaceSummary(ctx, tx, r.ID, r.Summary); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return r.ID, nil
}

func replacePhrases(ctx context.Context, tx *sql.Tx, resultID string, phrases []phrase.Phrase) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM result_phrases WHERE result_id=?`, resultID); err != nil {
		return err
	}
	if len(phrases) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO result_phrases (result_id, position, text, rank, count, chunks) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, p := range phrases {
		chunks, err := json.Marshal(p.Chunks)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, resultID, i, p.Text, p.Rank, p.Count, string(chunks)); err != nil {
			return err
		}
	}
	return nil
}

func replaceSummary(ctx context.Context, tx *sql.Tx, resultID string, sentences []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM result_summary WHERE result_id=?`, resultID); err != nil {
		return err
	}
	if len(sentences) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO result_summary (result_id, position, sentence) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, sent := range sentences {
		if _, err := stmt.ExecContext(ctx, resultID, i, sent); err != nil {
			return err
		}
	}
	return nil
}

// GetResult retrieves a result by ID
func (s *sqliteStore) GetResult(ctx context.Context, id string) (store.Result, error) {
	var (
		r         store.Result
		algorithm sql.NullString
		createdAt string
		elapsed   int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, doc_key, algorithm, created_at, elapsed_ns FROM results WHERE id = ?`, id,
	).Scan(&r.ID, &r.DocKey, &algorithm, &createdAt, &elapsed)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Result{}, fmt.Errorf("result %s: %w", id, internalerr.ErrNotFound)
	}
	if err != nil {
		return store.Result{}, err
	}

	r.Algorithm = algorithm.String
	r.Elapsed = time.Duration(elapsed)
	if t, err := time.Parse(timeLayout, createdAt); err == nil {
		r.CreatedAt = t
	}

	if r.Phrases, err = s.loadPhrases(ctx, id); err != nil {
		return store.Result{}, err
	}
	if r.Summary, err = s.loadSummary(ctx, id); err != nil {
		return store.Result{}, err
	}
	return r, nil
}

func (s *sqliteStore) loadPhrases(ctx context.Context, resultID string) ([]phrase.Phrase, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT text, rank, count, chunks FROM result_phrases WHERE result_id = ? ORDER BY position`, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var phrases []phrase.Phrase
	for rows.Next() {
		var (
			p      phrase.Phrase
			chunks sql.NullString
		)
		if err := rows.Scan(&p.Text, &p.Rank, &p.Count, &chunks); err != nil {
			return nil, err
		}
		if chunks.Valid && chunks.String != "" {
			var spans []annotate.Span
			if err := json.Unmarshal([]byte(chunks.String), &spans); err != nil {
				return nil, fmt.Errorf("decode chunks of %q: %w", p.Text, err)
			}
			p.Chunks = spans
		}
		phrases = append(phrases, p)
	}
	return phrases, rows.Err()
}

func (s *sqliteStore) loadSummary(ctx context.Context, resultID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sentence FROM result_summary WHERE result_id = ? ORDER BY position`, resultID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var sent string
		if err := rows.Scan(&sent); err != nil {
			return nil, err
		}
		out = append(out, sent)
	}
	return out, rows.Err()
}

// ResultsByDoc returns all results of a document, newest first
func (s *sqliteStore) ResultsByDoc(ctx context.Context, docKey string) ([]store.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM results WHERE doc_key = ? ORDER BY created_at DESC, id DESC`, docKey)
	if err != nil {
		return nil, err
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	results := make([]store.Result, 0, len(ids))
	for _, id := range ids {
		r, err := s.GetResult(ctx, id)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// DocsWithPhrase lists the documents whose results contain a phrase text
func (s *sqliteStore) DocsWithPhrase(ctx context.Context, text string) ([]string, error) {
	const query = `
SELECT DISTINCT r.doc_key
FROM result_phrases p
JOIN results r ON r.id = p.result_id
WHERE p.text = ?
ORDER BY r.doc_key
`
	rows, err := s.db.QueryContext(ctx, query, text)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		docs = append(docs, key)
	}
	return docs, rows.Err()
}

// UpsertCard inserts or updates a card
func (s *sqliteStore) UpsertCard(ctx context.Context, c store.Card) error {
	if c.ID == "" {
		return fmt.Errorf("upsert card: empty id: %w", internalerr.ErrInvalidInput)
	}
	bullets, err := json.Marshal(c.Bullets)
	if err != nil {
		return err
	}

	const stmt = `
INSERT INTO cards (id, doc_key, title, bullets, score_json)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	doc_key=excluded.doc_key,
	title=excluded.title,
	bullets=excluded.bullets,
	score_json=excluded.score_json;
`
	_, err = s.db.ExecContext(ctx, stmt, c.ID, c.DocKey, c.Title, string(bullets), c.ScoreJSON)
	return err
}

// CardsByDoc returns the cards of a document ordered by ID
func (s *sqliteStore) CardsByDoc(ctx context.Context, docKey string) ([]store.Card, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, doc_key, title, bullets, score_json FROM cards WHERE doc_key = ? ORDER BY id`, docKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []store.Card
	for rows.Next() {
		var (
			c                       store.Card
			title, bullets, scoreJS sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.DocKey, &title, &bullets, &scoreJS); err != nil {
			return nil, err
		}
		c.Title = title.String
		c.ScoreJSON = scoreJS.String
		if bullets.Valid && bullets.String != "" {
			if err := json.Unmarshal([]byte(bullets.String), &c.Bullets); err != nil {
				return nil, err
			}
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
