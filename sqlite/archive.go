package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fwojciec/srdcrawl"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ srdcrawl.EntryWriter = (*Archive)(nil)

// Crawl describes one archived crawl run.
type Crawl struct {
	ID         string
	SeedURL    string
	EntryCount int
	CreatedAt  time.Time
}

// Archive stores the entries of each crawl run as a separate, immutable
// record. Unlike the text file output, earlier runs are kept.
type Archive struct {
	db      *DB
	seedURL string
	lastID  string
}

// NewArchive creates an Archive recording runs that started at seedURL.
func NewArchive(db *DB, seedURL string) *Archive {
	return &Archive{db: db, seedURL: seedURL}
}

// LastCrawlID returns the ID assigned by the most recent WriteEntries call.
func (a *Archive) LastCrawlID() string {
	return a.lastID
}

// WriteEntries records a new crawl run holding entries, in order.
func (a *Archive) WriteEntries(ctx context.Context, entries []string) error {
	if a.seedURL == "" {
		return srdcrawl.Errorf(srdcrawl.EINVALID, "crawl seed URL required")
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id := uuid.New().String()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO crawls (id, seed_url, entry_count, created_at)
		VALUES (?, ?, ?, ?)
	`, id, a.seedURL, len(entries), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert crawl: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (crawl_id, position, title, content, content_hash)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, entry := range entries {
		if _, err := stmt.ExecContext(ctx, id, i, entryTitle(entry), entry, hashContent(entry)); err != nil {
			return fmt.Errorf("insert entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	a.lastID = id
	return nil
}

// FindCrawlByID retrieves a crawl run.
// Returns ENOTFOUND if the crawl does not exist.
func (a *Archive) FindCrawlByID(ctx context.Context, id string) (*Crawl, error) {
	var c Crawl
	var createdAt string

	err := a.db.QueryRowContext(ctx, `
		SELECT id, seed_url, entry_count, created_at
		FROM crawls
		WHERE id = ?
	`, id).Scan(&c.ID, &c.SeedURL, &c.EntryCount, &createdAt)

	if err == sql.ErrNoRows {
		return nil, srdcrawl.Errorf(srdcrawl.ENOTFOUND, "crawl not found")
	}
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindEntries returns the entries of a crawl run in their stored order.
func (a *Archive) FindEntries(ctx context.Context, crawlID string) ([]string, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT content
		FROM entries
		WHERE crawl_id = ?
		ORDER BY position
	`, crawlID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var content string
		if err := rows.Scan(&content); err != nil {
			return nil, err
		}
		entries = append(entries, content)
	}
	return entries, rows.Err()
}
