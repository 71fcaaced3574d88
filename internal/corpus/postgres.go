package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"

	"github.com/wikirank/wikirank/pkg/postgres"
)

// PGStore persists and loads corpus pages in PostgreSQL. One row per page:
// the decoded title, the cleaned body text as a single blob, and the
// outgoing link titles as a text array. It doubles as a Source for services
// that index straight out of the database.
type PGStore struct {
	db     *postgres.Client
	logger *slog.Logger
}

// NewPGStore creates a store over an open Postgres client.
func NewPGStore(db *postgres.Client) *PGStore {
	return &PGStore{
		db:     db,
		logger: slog.Default().With("component", "pg-corpus"),
	}
}

// EnsureSchema creates the pages table if it does not exist.
func (s *PGStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS pages (
			title      TEXT PRIMARY KEY,
			words      TEXT NOT NULL,
			links      TEXT[] NOT NULL,
			crawled_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("creating pages table: %w", err)
	}
	return nil
}

// Save upserts one page. Re-crawling a page replaces its text and links.
func (s *PGStore) Save(ctx context.Context, doc Document) error {
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO pages (title, words, links)
			VALUES ($1, $2, $3)
			ON CONFLICT (title) DO UPDATE
			SET words = EXCLUDED.words, links = EXCLUDED.links, crawled_at = now()`,
			doc.Title, strings.Join(doc.Words, " "), pq.Array(doc.Links),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("saving page %q: %w", doc.Title, err)
	}
	return nil
}

// Load returns every stored page sorted by title.
func (s *PGStore) Load(ctx context.Context) ([]Document, error) {
	rows, err := s.db.DB.QueryContext(ctx,
		`SELECT title, words, links FROM pages ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var (
			title string
			words string
			links pq.StringArray
		)
		if err := rows.Scan(&title, &words, &links); err != nil {
			return nil, fmt.Errorf("scanning page row: %w", err)
		}
		docs = append(docs, Document{
			Title: title,
			Words: strings.Fields(words),
			Links: links,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating pages: %w", err)
	}
	s.logger.Info("corpus loaded", "pages", len(docs))
	return docs, nil
}
