// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/semantic-corpus/internal/corpus"
	"github.com/pdiddy/semantic-corpus/internal/layout"
	"github.com/pdiddy/semantic-corpus/pkg/types"
)

func testStore(t *testing.T) *corpus.Store {
	t.Helper()
	root := filepath.Join(t.TempDir(), "corpus")
	store, err := corpus.Create(root, layout.ModeStructured, types.BagDescriptor{})
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func addPaper(t *testing.T, store *corpus.Store, id, title, abstract string) {
	t.Helper()
	rec := types.PaperRecord{
		ID:       id,
		Title:    title,
		Abstract: abstract,
		Authors:  []string{"Smith J"},
		Extra:    map[string]any{"journal": "Test Journal"},
	}
	if err := store.AddPaper(rec, nil, corpus.AddOptions{}); err != nil {
		t.Fatal(err)
	}
}

func openIndex(t *testing.T, store *corpus.Store) *Index {
	t.Helper()
	ix, err := Open(store, types.IndexConfig{})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestOpenRequiresStructuredCorpus(t *testing.T) {
	root := filepath.Join(t.TempDir(), "corpus")
	store, err := corpus.Create(root, layout.ModeLegacy, types.BagDescriptor{})
	if err != nil {
		t.Fatal(err)
	}

	var structErr *corpus.StructureError
	if _, err := Open(store, types.IndexConfig{}); !errors.As(err, &structErr) {
		t.Fatalf("want StructureError, got %v", err)
	}
}

func TestBuildAndQuery(t *testing.T) {
	store := testStore(t)
	addPaper(t, store, "p_climate", "Climate Change Adaptation", "Coastal ecosystems under warming.")
	addPaper(t, store, "p_ocean", "Ocean Biodiversity", "Species counts across reef systems.")

	ix := openIndex(t, store)
	ctx := context.Background()

	summary, err := ix.Build(ctx, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Indexed != 2 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	matches, err := ix.Query(ctx, "climate", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].ID != "p_climate" {
		t.Errorf("matches = %v, want only p_climate", matches)
	}

	// Abstract terms match too.
	matches, err = ix.Query(ctx, "reef", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].ID != "p_ocean" {
		t.Errorf("matches = %v, want only p_ocean", matches)
	}
}

func TestBuildSkipsUnchangedRecords(t *testing.T) {
	store := testStore(t)
	addPaper(t, store, "p1", "First", "")
	addPaper(t, store, "p2", "Second", "")

	ix := openIndex(t, store)
	ctx := context.Background()

	if _, err := ix.Build(ctx, io.Discard); err != nil {
		t.Fatal(err)
	}

	summary, err := ix.Build(ctx, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Skipped != 2 || summary.Indexed != 0 || summary.Updated != 0 {
		t.Errorf("second build summary = %+v, want all skipped", summary)
	}
}

func TestBuildUpdatesChangedRecords(t *testing.T) {
	store := testStore(t)
	addPaper(t, store, "p1", "Original Title", "")

	ix := openIndex(t, store)
	ctx := context.Background()
	if _, err := ix.Build(ctx, io.Discard); err != nil {
		t.Fatal(err)
	}

	// Rewrite the record with a future mtime so the build sees a change.
	rec := types.PaperRecord{ID: "p1", Title: "Revised Title"}
	if err := store.AddPaper(rec, nil, corpus.AddOptions{}); err != nil {
		t.Fatal(err)
	}
	metaPath := filepath.Join(store.Root(), filepath.FromSlash(layout.MetadataPath(layout.ModeStructured, "p1")))
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(metaPath, future, future); err != nil {
		t.Fatal(err)
	}

	summary, err := ix.Build(ctx, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Updated != 1 {
		t.Errorf("summary = %+v, want one update", summary)
	}

	matches, err := ix.Query(ctx, "revised", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 1 || matches[0].Title != "Revised Title" {
		t.Errorf("matches = %v", matches)
	}
}

func TestBuildDropsDeletedRecords(t *testing.T) {
	store := testStore(t)
	addPaper(t, store, "p1", "Kept", "")
	addPaper(t, store, "p2", "Gone", "")

	ix := openIndex(t, store)
	ctx := context.Background()
	if _, err := ix.Build(ctx, io.Discard); err != nil {
		t.Fatal(err)
	}

	metaPath := filepath.Join(store.Root(), filepath.FromSlash(layout.MetadataPath(layout.ModeStructured, "p2")))
	if err := os.Remove(metaPath); err != nil {
		t.Fatal(err)
	}

	summary, err := ix.Build(ctx, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Removed != 1 {
		t.Errorf("summary = %+v, want one removal", summary)
	}

	matches, err := ix.Query(ctx, "gone", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 0 {
		t.Errorf("matches = %v, want none after removal", matches)
	}
}

func TestQueryLimit(t *testing.T) {
	store := testStore(t)
	addPaper(t, store, "p1", "Shared term alpha", "")
	addPaper(t, store, "p2", "Shared term beta", "")
	addPaper(t, store, "p3", "Shared term gamma", "")

	ix := openIndex(t, store)
	ctx := context.Background()
	if _, err := ix.Build(ctx, io.Discard); err != nil {
		t.Fatal(err)
	}

	matches, err := ix.Query(ctx, "shared", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Errorf("got %d matches, want limit of 2", len(matches))
	}
}

func TestExport(t *testing.T) {
	store := testStore(t)
	addPaper(t, store, "p1", "Exported Paper", "An abstract.")

	ix := openIndex(t, store)
	ctx := context.Background()
	if _, err := ix.Build(ctx, io.Discard); err != nil {
		t.Fatal(err)
	}

	if err := ix.ExportJSON(ctx); err != nil {
		t.Fatal(err)
	}
	if err := ix.ExportYAML(ctx); err != nil {
		t.Fatal(err)
	}

	indicesDir := filepath.Join(store.Root(), filepath.FromSlash(layout.IndicesDir))

	jsonData, err := os.ReadFile(filepath.Join(indicesDir, "export.json"))
	if err != nil {
		t.Fatal(err)
	}
	var fromJSON []ExportEntry
	if err := json.Unmarshal(jsonData, &fromJSON); err != nil {
		t.Fatal(err)
	}

	yamlData, err := os.ReadFile(filepath.Join(indicesDir, "export.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	var fromYAML []ExportEntry
	if err := yaml.Unmarshal(yamlData, &fromYAML); err != nil {
		t.Fatal(err)
	}

	if len(fromJSON) != 1 || len(fromYAML) != 1 {
		t.Fatalf("export lengths: json=%d yaml=%d", len(fromJSON), len(fromYAML))
	}
	want := ExportEntry{
		ID:       "p1",
		Title:    "Exported Paper",
		Abstract: "An abstract.",
		Authors:  []string{"Smith J"},
		Journal:  "Test Journal",
	}
	if fromJSON[0].ID != want.ID || fromJSON[0].Title != want.Title || fromJSON[0].Journal != want.Journal {
		t.Errorf("json export = %+v, want %+v", fromJSON[0], want)
	}
	if fromYAML[0].ID != want.ID || fromYAML[0].Title != want.Title {
		t.Errorf("yaml export = %+v", fromYAML[0])
	}
}
