// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest bulk-imports pygetpapers output directories into a
// structured corpus. Each immediate subdirectory carrying an
// eupmc_result.json is one item; per-item failures are recorded and never
// abort the run.
package ingest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/semantic-corpus/internal/corpus"
	"github.com/pdiddy/semantic-corpus/internal/layout"
	"github.com/pdiddy/semantic-corpus/pkg/types"
)

const (
	// markerFile is the per-item raw-metadata file a folder must contain
	// to count as an ingestible item.
	markerFile = "eupmc_result.json"

	fulltextXML = "fulltext.xml"
	fulltextPDF = "fulltext.pdf"

	// DefaultIDPrefix is prepended to the source folder name to form the
	// corpus-scoped paper ID.
	DefaultIDPrefix = "europe_pmc_"
)

// ItemFailure records one source folder that could not be ingested.
type ItemFailure struct {
	// Folder is the source folder name (e.g. "PMC1234567").
	Folder string

	// Err is the underlying failure.
	Err error
}

// PartialIngestionError aggregates per-item failures from a run that still
// committed its successful items.
type PartialIngestionError struct {
	Failures []ItemFailure
}

func (e *PartialIngestionError) Error() string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Folder
	}
	return fmt.Sprintf("%d item(s) failed ingestion: %s", len(e.Failures), strings.Join(names, ", "))
}

// Result holds the outcome of one ingestion run. Added and Skipped list
// corpus IDs in discovery order; Failures are surfaced, never dropped.
type Result struct {
	Added    []string
	Skipped  []string
	Failures []ItemFailure
}

// Total returns the number of items processed.
func (r Result) Total() int {
	return len(r.Added) + len(r.Skipped) + len(r.Failures)
}

// Err returns a PartialIngestionError when any item failed, nil otherwise.
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	return &PartialIngestionError{Failures: r.Failures}
}

// DiscoverItemFolders enumerates the immediate subdirectories of sourceDir
// that contain the raw-metadata marker file, sorted by name. Re-running
// discovery on an unchanged tree yields the same set.
func DiscoverItemFolders(sourceDir string) ([]string, error) {
	fi, err := os.Stat(sourceDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &corpus.PathError{Path: sourceDir, Reason: "does not exist"}
		}
		return nil, fmt.Errorf("checking source directory: %w", err)
	}
	if !fi.IsDir() {
		return nil, &corpus.PathError{Path: sourceDir, Reason: "not a directory"}
	}

	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory: %w", err)
	}

	var folders []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		marker := filepath.Join(sourceDir, entry.Name(), markerFile)
		if _, err := os.Stat(marker); err == nil {
			folders = append(folders, entry.Name())
		}
	}
	sort.Strings(folders)
	return folders, nil
}

// Ingest imports every discovered item folder into the store. The store
// must be in structured mode; a legacy corpus fails immediately with a
// StructureError before any filesystem write. Per-item failures (malformed
// JSON, unreadable files) are collected in the Result and do not stop the
// remaining folders. Progress lines go to w.
func Ingest(sourceDir string, store *corpus.Store, cfg types.IngestionConfig, w io.Writer) (Result, error) {
	if store.Mode() != layout.ModeStructured {
		return Result{}, &corpus.StructureError{
			Root:   store.Root(),
			Reason: "ingestion requires a structured (BagIt) corpus",
		}
	}

	folders, err := DiscoverItemFolders(sourceDir)
	if err != nil {
		return Result{}, err
	}

	prefix := cfg.IDPrefix
	if prefix == "" {
		prefix = DefaultIDPrefix
	}
	overwrite := cfg.OnDuplicate == types.DuplicateOverwrite

	var result Result
	for _, folder := range folders {
		id := prefix + folder

		if store.HasPaper(id) && !overwrite {
			fmt.Fprintf(w, "skipped %s (already present)\n", id)
			result.Skipped = append(result.Skipped, id)
			continue
		}

		if err := ingestItem(sourceDir, folder, id, store); err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", folder, err)
			result.Failures = append(result.Failures, ItemFailure{Folder: folder, Err: err})
			continue
		}

		fmt.Fprintf(w, "added   %s\n", id)
		result.Added = append(result.Added, id)
	}

	fmt.Fprintf(w, "\n%d added, %d skipped, %d failed\n",
		len(result.Added), len(result.Skipped), len(result.Failures))
	return result, nil
}

// ingestItem normalizes one source folder and writes it through the store.
func ingestItem(sourceDir, folder, id string, store *corpus.Store) error {
	raw, err := os.ReadFile(filepath.Join(sourceDir, folder, markerFile))
	if err != nil {
		return fmt.Errorf("reading %s: %w", markerFile, err)
	}

	rec, err := MapRawMetadata(raw)
	if err != nil {
		return err
	}
	rec.ID = id

	var files []corpus.PayloadFile
	xmlSrc := filepath.Join(sourceDir, folder, fulltextXML)
	if _, err := os.Stat(xmlSrc); err == nil {
		files = append(files, corpus.PayloadFile{Kind: layout.KindXML, SourcePath: xmlSrc})
	}
	pdfSrc := filepath.Join(sourceDir, folder, fulltextPDF)
	if _, err := os.Stat(pdfSrc); err == nil {
		files = append(files, corpus.PayloadFile{Kind: layout.KindPDF, SourcePath: pdfSrc})
	}

	return store.AddPaper(rec, files, corpus.AddOptions{})
}
