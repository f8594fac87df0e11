// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/semantic-corpus/internal/layout"
)

// ExportEntry is one paper in an index export file.
type ExportEntry struct {
	ID              string   `json:"id" yaml:"id"`
	Title           string   `json:"title,omitempty" yaml:"title,omitempty"`
	Abstract        string   `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Authors         []string `json:"authors,omitempty" yaml:"authors,omitempty"`
	DOI             string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
	Journal         string   `json:"journal,omitempty" yaml:"journal,omitempty"`
}

// ExportYAML writes the indexed papers to data/indices/export.yaml.
func (ix *Index) ExportYAML(ctx context.Context) error {
	entries, err := ix.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return ix.writeExport("export.yaml", data)
}

// ExportJSON writes the indexed papers to data/indices/export.json.
func (ix *Index) ExportJSON(ctx context.Context) error {
	entries, err := ix.exportEntries(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return ix.writeExport("export.json", data)
}

func (ix *Index) writeExport(name string, data []byte) error {
	path := filepath.Join(ix.store.Root(), filepath.FromSlash(layout.IndicesDir), name)
	return os.WriteFile(path, data, 0o644)
}

func (ix *Index) exportEntries(ctx context.Context) ([]ExportEntry, error) {
	rows, err := ix.db.QueryContext(ctx,
		`SELECT id, title, abstract, authors, doi, publication_date, journal
		 FROM papers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	defer rows.Close()

	var entries []ExportEntry
	for rows.Next() {
		var (
			e           ExportEntry
			title       sql.NullString
			abstract    sql.NullString
			authorsJSON sql.NullString
			doi         sql.NullString
			pubDate     sql.NullString
			journal     sql.NullString
		)
		if err := rows.Scan(&e.ID, &title, &abstract, &authorsJSON, &doi, &pubDate, &journal); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.Title = title.String
		e.Abstract = abstract.String
		e.DOI = doi.String
		e.PublicationDate = pubDate.String
		e.Journal = journal.String
		if authorsJSON.Valid {
			json.Unmarshal([]byte(authorsJSON.String), &e.Authors)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
