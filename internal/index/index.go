// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package index maintains a derived SQLite full-text index over the
// metadata records of a structured corpus, stored under data/indices/.
// The index is rebuildable at any time from the records; the store's
// search API never consults it.
package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/semantic-corpus/internal/corpus"
	"github.com/pdiddy/semantic-corpus/internal/layout"
	"github.com/pdiddy/semantic-corpus/pkg/types"
)

const dbFile = "corpus.db"

// Index is an open handle on the corpus full-text index database.
type Index struct {
	db         *sql.DB
	store      *corpus.Store
	maxResults int
}

// Open opens or creates the index database at data/indices/corpus.db.
// Requires a structured corpus.
func Open(store *corpus.Store, cfg types.IndexConfig) (*Index, error) {
	if store.Mode() != layout.ModeStructured {
		return nil, &corpus.StructureError{
			Root:   store.Root(),
			Reason: "full-text index requires a structured corpus",
		}
	}

	dbDir := filepath.Join(store.Root(), filepath.FromSlash(layout.IndicesDir))
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating indices directory: %w", err)
	}

	db, err := sql.Open("sqlite3", filepath.Join(dbDir, dbFile)+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	ix := &Index{db: db, store: store, maxResults: maxResults}
	if err := ix.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating index schema: %w", err)
	}
	return ix, nil
}

// Close releases the database connection. Callers should refresh the
// manifest afterwards, since the database lives under the payload tree.
func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS papers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			title TEXT,
			abstract TEXT,
			authors TEXT,
			doi TEXT,
			publication_date TEXT,
			journal TEXT,
			record_mod_time TEXT
		)`,
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
			`CREATE VIRTUAL TABLE papers_fts USING fts5(title, abstract, content=papers, content_rowid=rowid)`,
			`CREATE TRIGGER papers_ai AFTER INSERT ON papers BEGIN
				INSERT INTO papers_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER papers_ad AFTER DELETE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
			END`,
			`CREATE TRIGGER papers_au AFTER UPDATE ON papers BEGIN
				INSERT INTO papers_fts(papers_fts, rowid, title, abstract) VALUES('delete', old.rowid, old.title, old.abstract);
				INSERT INTO papers_fts(rowid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
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

// BuildSummary holds counts from an index refresh.
type BuildSummary struct {
	Indexed int
	Updated int
	Skipped int
	Removed int
	Failed  int
}

// Total returns the number of records considered.
func (s BuildSummary) Total() int {
	return s.Indexed + s.Updated + s.Skipped + s.Failed
}

// Build refreshes the index from the metadata directory. Unchanged records
// (by file mtime) are skipped; records deleted from the corpus are dropped
// from the index. Per-record failures are counted and reported but do not
// abort the build.
func (ix *Index) Build(ctx context.Context, w io.Writer) (BuildSummary, error) {
	metaDir := filepath.Join(ix.store.Root(), filepath.FromSlash(layout.MetadataDir))
	entries, err := os.ReadDir(metaDir)
	if err != nil && !os.IsNotExist(err) {
		return BuildSummary{}, fmt.Errorf("reading metadata directory: %w", err)
	}

	var summary BuildSummary
	present := make(map[string]bool, len(entries))

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		id := strings.TrimSuffix(entry.Name(), ".json")
		present[id] = true

		info, err := entry.Info()
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}
		modTime := info.ModTime().UTC().Format("2006-01-02T15:04:05.999999999Z07:00")

		var storedModTime string
		err = ix.db.QueryRowContext(ctx,
			`SELECT record_mod_time FROM papers WHERE id = ?`, id,
		).Scan(&storedModTime)

		if err == nil && storedModTime == modTime {
			summary.Skipped++
			continue
		}
		isUpdate := err == nil

		rec, err := ix.store.GetPaperMetadata(id)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		if err := ix.upsert(ctx, rec, modTime); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			summary.Failed++
			continue
		}

		if isUpdate {
			fmt.Fprintf(w, "updated %s\n", id)
			summary.Updated++
		} else {
			fmt.Fprintf(w, "indexed %s\n", id)
			summary.Indexed++
		}
	}

	removed, err := ix.dropAbsent(ctx, present)
	if err != nil {
		return summary, err
	}
	summary.Removed = removed

	fmt.Fprintf(w, "\nindexed: %d, updated: %d, skipped: %d, removed: %d, failed: %d\n",
		summary.Indexed, summary.Updated, summary.Skipped, summary.Removed, summary.Failed)
	return summary, nil
}

func (ix *Index) upsert(ctx context.Context, rec types.PaperRecord, modTime string) error {
	authorsJSON, _ := json.Marshal(rec.Authors)
	journal, _ := rec.Field("journal")

	_, err := ix.db.ExecContext(ctx,
		`INSERT INTO papers (id, title, abstract, authors, doi, publication_date, journal, record_mod_time)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, abstract=excluded.abstract, authors=excluded.authors,
			doi=excluded.doi, publication_date=excluded.publication_date,
			journal=excluded.journal, record_mod_time=excluded.record_mod_time`,
		rec.ID, rec.Title, rec.Abstract, string(authorsJSON),
		rec.DOI, rec.PublicationDate, journal, modTime,
	)
	if err != nil {
		return fmt.Errorf("upserting paper: %w", err)
	}
	return nil
}

// dropAbsent deletes index rows for papers no longer in the corpus.
func (ix *Index) dropAbsent(ctx context.Context, present map[string]bool) (int, error) {
	rows, err := ix.db.QueryContext(ctx, `SELECT id FROM papers`)
	if err != nil {
		return 0, fmt.Errorf("listing indexed papers: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("scanning row: %w", err)
		}
		if !present[id] {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, id := range stale {
		if _, err := ix.db.ExecContext(ctx, `DELETE FROM papers WHERE id = ?`, id); err != nil {
			return 0, fmt.Errorf("removing stale entry %s: %w", id, err)
		}
	}
	return len(stale), nil
}

// Match is one full-text query hit.
type Match struct {
	ID    string `json:"id" yaml:"id"`
	Title string `json:"title" yaml:"title"`
}

// Query runs an FTS5 match over titles and abstracts, returning hits ranked
// by relevance. A limit of zero uses the configured default.
func (ix *Index) Query(ctx context.Context, query string, limit int) ([]Match, error) {
	if limit <= 0 {
		limit = ix.maxResults
	}

	rows, err := ix.db.QueryContext(ctx,
		`SELECT p.id, p.title
		 FROM papers_fts
		 JOIN papers p ON p.rowid = papers_fts.rowid
		 WHERE papers_fts MATCH ?
		 ORDER BY papers_fts.rank
		 LIMIT ?`,
		query, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying index: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var m Match
		var title sql.NullString
		if err := rows.Scan(&m.ID, &title); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		m.Title = title.String
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
