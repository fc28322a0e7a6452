// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index maintains a local SQLite full-text index over cached paper
// metadata and extracted PDF text. The chat assistant retrieves its context
// from here instead of re-reading PDFs.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperdesk/internal/apperr"
	"github.com/pdiddy/paperdesk/pkg/types"
)

const dbFile = "papers.db"

// Index is the SQLite-backed full-text index.
type Index struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the index database at cfg.IndexDir/papers.db,
// creating the schema when missing.
func Open(cfg types.IndexConfig) (*Index, error) {
	const op = "index.open"

	if cfg.IndexDir == "" {
		return nil, apperr.New(apperr.KindConfiguration, op, "index directory is empty")
	}
	if err := os.MkdirAll(cfg.IndexDir, 0o755); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, op, err)
	}

	dbPath := filepath.Join(cfg.IndexDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, op, err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	ix := &Index{db: db, maxResults: maxResults}
	if err := ix.createSchema(); err != nil {
		db.Close()
		return nil, apperr.Wrap(apperr.KindStorage, op, err)
	}
	return ix, nil
}

// Close releases the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT,
			authors TEXT,
			abstract TEXT,
			categories TEXT,
			source TEXT,
			doi TEXT,
			pdf_path TEXT,
			date TEXT,
			body TEXT,
			indexed_at TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_source ON papers(source)`,
	}
	for _, stmt := range statements {
		if _, err := ix.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := ix.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='papers_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE papers_fts USING fts5(title, abstract, body, content=papers, content_rowid=rowid)`,
			`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(rowid, title, abstract, body) VALUES (new.rowid, new.title, new.abstract, new.body);
			END`,
			`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract, body) VALUES('delete', old.rowid, old.title, old.abstract, old.body);
			END`,
			`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract, body) VALUES('delete', old.rowid, old.title, old.abstract, old.body);
				INSERT INTO papers_fts(rowid, title, abstract, body) VALUES (new.rowid, new.title, new.abstract, new.body);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := ix.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}
	return nil
}

// IndexPaper upserts the paper's metadata and full text. Re-indexing the
// same id replaces the previous row rather than duplicating it.
func (ix *Index) IndexPaper(ctx context.Context, paper types.Paper, body string) error {
	const op = "index.paper"

	authorsJSON, _ := json.Marshal(paper.AuthorNames())
	dateStr := ""
	if !paper.PublishedDate.IsZero() {
		dateStr = paper.PublishedDate.Format(time.RFC3339)
	}

	// Delete-then-insert keeps the FTS triggers consistent on upsert.
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, op, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, paper.ID); err != nil {
		return apperr.Wrap(apperr.KindStorage, op, err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO papers (id, title, authors, abstract, categories, source, doi, pdf_path, date, body, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		paper.ID, paper.Title, string(authorsJSON), paper.Abstract,
		strings.Join(paper.Categories, " "), string(paper.Source), paper.DOI,
		paper.LocalPath, dateStr, body, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return apperr.Wrap(apperr.KindStorage, op, err)
	}
	return tx.Commit()
}

// Snippet is one full-text match with a short excerpt around the hit.
type Snippet struct {
	PaperID string `json:"paperId"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
}

// Query runs an FTS5 match over title, abstract, and body, returning the
// best-ranked snippets. A non-positive limit uses the configured default.
func (ix *Index) Query(ctx context.Context, query string, limit int) ([]Snippet, error) {
	const op = "index.query"

	if strings.TrimSpace(query) == "" {
		return nil, apperr.New(apperr.KindValidation, op, "empty query")
	}
	if limit <= 0 {
		limit = ix.maxResults
	}

	rows, err := ix.db.QueryContext(ctx,
		`SELECT p.id, p.title, snippet(papers_fts, -1, '[', ']', ' … ', 12)
		 FROM papers p
		 JOIN papers_fts fts ON p.rowid = fts.rowid
		 WHERE papers_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`,
		query, limit,
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, op, err)
	}
	defer rows.Close()

	var snippets []Snippet
	for rows.Next() {
		var s Snippet
		if err := rows.Scan(&s.PaperID, &s.Title, &s.Excerpt); err != nil {
			return nil, apperr.Wrap(apperr.KindStorage, op, err)
		}
		snippets = append(snippets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindStorage, op, err)
	}
	return snippets, nil
}

// Count returns the number of indexed papers.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&n); err != nil {
		return 0, apperr.Wrap(apperr.KindStorage, "index.count", err)
	}
	return n, nil
}
