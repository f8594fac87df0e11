// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/pdiddy/semantic-corpus/internal/layout"
	"github.com/pdiddy/semantic-corpus/pkg/types"
)

// --- test helpers ---

func testCreate(t *testing.T, mode layout.Mode) *Store {
	t.Helper()
	root := filepath.Join(t.TempDir(), "corpus")
	store, err := Create(root, mode, types.BagDescriptor{
		SourceOrganization: "Test Organization",
		ContactName:        "Test User",
		ContactEmail:       "test@example.com",
	})
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func writeSourceFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func samplePaper(id string) types.PaperRecord {
	return types.PaperRecord{
		ID:              id,
		Title:           "Efficient Attention Mechanisms for Transformers",
		Abstract:        "We propose a linear approximation of softmax attention.",
		Authors:         []string{"Smith, J.", "Doe, A."},
		DOI:             "10.1234/attn.2024",
		PublicationDate: "2024-01-30",
		Extra:           map[string]any{"journal": "JMLR"},
	}
}

// --- create / open ---

func TestCreateStructuredWritesDescriptors(t *testing.T) {
	store := testCreate(t, layout.ModeStructured)

	for _, name := range []string{"bagit.txt", "bag-info.txt", "manifest-sha256.txt"} {
		if _, err := os.Stat(filepath.Join(store.Root(), name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}

	info, err := store.BagInfo()
	if err != nil {
		t.Fatal(err)
	}
	if info["Source-Organization"] != "Test Organization" {
		t.Errorf("Source-Organization = %q", info["Source-Organization"])
	}
	if info["Contact-Name"] != "Test User" {
		t.Errorf("Contact-Name = %q", info["Contact-Name"])
	}
	if _, ok := info["Bagging-Date"]; !ok {
		t.Error("Bagging-Date not written")
	}
}

func TestCreateLegacySkeleton(t *testing.T) {
	store := testCreate(t, layout.ModeLegacy)

	fi, err := os.Stat(filepath.Join(store.Root(), "papers"))
	if err != nil || !fi.IsDir() {
		t.Fatalf("papers/ not created: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.Root(), "bagit.txt")); !os.IsNotExist(err) {
		t.Error("legacy corpus must not carry bagit.txt")
	}
}

func TestCreateMissingParent(t *testing.T) {
	root := filepath.Join(t.TempDir(), "no", "such", "parent", "corpus")
	_, err := Create(root, layout.ModeStructured, types.BagDescriptor{})

	var pathErr *PathError
	if !errors.As(err, &pathErr) {
		t.Fatalf("want PathError, got %v", err)
	}
}

func TestCreateIncompatibleLayout(t *testing.T) {
	structured := testCreate(t, layout.ModeStructured)

	_, err := Create(structured.Root(), layout.ModeLegacy, types.BagDescriptor{})
	var structErr *StructureError
	if !errors.As(err, &structErr) {
		t.Fatalf("want StructureError, got %v", err)
	}
}

func TestCreateOverCompatibleLayout(t *testing.T) {
	store := testCreate(t, layout.ModeStructured)

	again, err := Create(store.Root(), layout.ModeStructured, types.BagDescriptor{})
	if err != nil {
		t.Fatalf("re-create over compatible layout: %v", err)
	}
	if again.Mode() != layout.ModeStructured {
		t.Errorf("mode = %s", again.Mode())
	}
}

func TestOpenDerivesMode(t *testing.T) {
	structured := testCreate(t, layout.ModeStructured)
	legacy := testCreate(t, layout.ModeLegacy)

	s, err := Open(structured.Root())
	if err != nil {
		t.Fatal(err)
	}
	if s.Mode() != layout.ModeStructured {
		t.Errorf("mode = %s, want structured", s.Mode())
	}

	l, err := Open(legacy.Root())
	if err != nil {
		t.Fatal(err)
	}
	if l.Mode() != layout.ModeLegacy {
		t.Errorf("mode = %s, want legacy", l.Mode())
	}
}

func TestOpenNotACorpus(t *testing.T) {
	var structErr *StructureError
	if _, err := Open(t.TempDir()); !errors.As(err, &structErr) {
		t.Fatalf("want StructureError, got %v", err)
	}

	var pathErr *PathError
	if _, err := Open(filepath.Join(t.TempDir(), "missing")); !errors.As(err, &pathErr) {
		t.Fatalf("want PathError, got %v", err)
	}
}

// --- add / get ---

func TestAddPaperRoundTrip(t *testing.T) {
	for _, mode := range []layout.Mode{layout.ModeStructured, layout.ModeLegacy} {
		t.Run(string(mode), func(t *testing.T) {
			store := testCreate(t, mode)

			want := samplePaper("paper_001")
			if err := store.AddPaper(want, nil, AddOptions{}); err != nil {
				t.Fatal(err)
			}

			got, err := store.GetPaperMetadata("paper_001")
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(want, got) {
				t.Errorf("round trip mismatch:\nwant %+v\ngot  %+v", want, got)
			}
		})
	}
}

func TestAddPaperCopiesPayloadFiles(t *testing.T) {
	store := testCreate(t, layout.ModeStructured)
	src := t.TempDir()
	xmlPath := writeSourceFile(t, src, "fulltext.xml", "<article>body</article>")
	pdfPath := writeSourceFile(t, src, "fulltext.pdf", "%PDF-1.4 fake")

	files := []PayloadFile{
		{Kind: layout.KindXML, SourcePath: xmlPath},
		{Kind: layout.KindPDF, SourcePath: pdfPath},
	}
	if err := store.AddPaper(samplePaper("paper_001"), files, AddOptions{}); err != nil {
		t.Fatal(err)
	}

	for _, rel := range []string{
		"data/documents/xml/paper_001.xml",
		"data/documents/pdf/paper_001.pdf",
		"data/metadata/paper_001.json",
	} {
		if _, err := os.Stat(filepath.Join(store.Root(), filepath.FromSlash(rel))); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	// The manifest covers exactly the files just written.
	report, err := store.Validate()
	if err != nil {
		t.Fatal(err)
	}
	if !report.OK() {
		t.Errorf("corpus not valid after add: %+v", report.Problems)
	}
}

func TestAddPaperReplacesNotMerges(t *testing.T) {
	store := testCreate(t, layout.ModeStructured)

	first := samplePaper("paper_001")
	if err := store.AddPaper(first, nil, AddOptions{}); err != nil {
		t.Fatal(err)
	}

	second := types.PaperRecord{ID: "paper_001", Title: "Replacement Title"}
	if err := store.AddPaper(second, nil, AddOptions{}); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetPaperMetadata("paper_001")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Replacement Title" {
		t.Errorf("title = %q", got.Title)
	}
	if got.Abstract != "" || got.DOI != "" {
		t.Error("old fields survived a replace")
	}
}

func TestAddPaperNoOverwrite(t *testing.T) {
	store := testCreate(t, layout.ModeStructured)

	if err := store.AddPaper(samplePaper("paper_001"), nil, AddOptions{}); err != nil {
		t.Fatal(err)
	}

	err := store.AddPaper(samplePaper("paper_001"), nil, AddOptions{NoOverwrite: true})
	var dupErr *DuplicateError
	if !errors.As(err, &dupErr) {
		t.Fatalf("want DuplicateError, got %v", err)
	}
}

func TestGetPaperMetadataNotFound(t *testing.T) {
	store := testCreate(t, layout.ModeStructured)

	_, err := store.GetPaperMetadata("no_such_paper")
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("want NotFoundError, got %v", err)
	}
}

// --- list / search ---

func TestListPapersSorted(t *testing.T) {
	for _, mode := range []layout.Mode{layout.ModeStructured, layout.ModeLegacy} {
		t.Run(string(mode), func(t *testing.T) {
			store := testCreate(t, mode)

			for _, id := range []string{"zeta", "alpha", "mid"} {
				rec := types.PaperRecord{ID: id, Title: "T"}
				if err := store.AddPaper(rec, nil, AddOptions{}); err != nil {
					t.Fatal(err)
				}
			}

			ids, err := store.ListPapers()
			if err != nil {
				t.Fatal(err)
			}
			want := []string{"alpha", "mid", "zeta"}
			if !reflect.DeepEqual(ids, want) {
				t.Errorf("ids = %v, want %v", ids, want)
			}
		})
	}
}

func TestListPapersEmptyCorpus(t *testing.T) {
	store := testCreate(t, layout.ModeStructured)

	ids, err := store.ListPapers()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Errorf("ids = %v, want none", ids)
	}
}

func TestSearchPapersByTitle(t *testing.T) {
	store := testCreate(t, layout.ModeStructured)

	climate := types.PaperRecord{ID: "p_climate", Title: "Climate Change Adaptation"}
	ocean := types.PaperRecord{ID: "p_ocean", Title: "Ocean Biodiversity"}
	for _, rec := range []types.PaperRecord{climate, ocean} {
		if err := store.AddPaper(rec, nil, AddOptions{}); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := store.SearchPapers("climate", "title")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []string{"p_climate"}) {
		t.Errorf("ids = %v, want [p_climate]", ids)
	}
}

func TestSearchPapersByAbstractAndExtra(t *testing.T) {
	store := testCreate(t, layout.ModeStructured)

	rec := types.PaperRecord{
		ID:       "p1",
		Title:    "Untitled",
		Abstract: "Coral reefs under thermal stress.",
		Extra:    map[string]any{"journal": "Marine Biology"},
	}
	if err := store.AddPaper(rec, nil, AddOptions{}); err != nil {
		t.Fatal(err)
	}

	if ids, _ := store.SearchPapers("CORAL", "abstract"); len(ids) != 1 {
		t.Errorf("abstract search: %v", ids)
	}
	if ids, _ := store.SearchPapers("marine", "journal"); len(ids) != 1 {
		t.Errorf("extra field search: %v", ids)
	}
	if ids, _ := store.SearchPapers("anything", "no_such_field"); len(ids) != 0 {
		t.Errorf("unknown field matched: %v", ids)
	}
}

// --- statistics ---

func TestStatistics(t *testing.T) {
	store := testCreate(t, layout.ModeStructured)
	src := t.TempDir()
	xmlPath := writeSourceFile(t, src, "fulltext.xml", "<article>some payload bytes</article>")

	files := []PayloadFile{{Kind: layout.KindXML, SourcePath: xmlPath}}
	if err := store.AddPaper(samplePaper("paper_001"), files, AddOptions{}); err != nil {
		t.Fatal(err)
	}

	stats, err := store.Statistics()
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalPapers != 1 {
		t.Errorf("TotalPapers = %d", stats.TotalPapers)
	}
	if stats.PayloadBytes == 0 {
		t.Error("PayloadBytes = 0")
	}
	if stats.Created.IsZero() {
		t.Error("Created is zero")
	}
	if stats.LastUpdated.Before(stats.Created.Add(-24 * time.Hour)) {
		t.Errorf("LastUpdated %v before Created %v", stats.LastUpdated, stats.Created)
	}
}

// --- validate ---

func TestValidateLegacyUnreadableRecord(t *testing.T) {
	store := testCreate(t, layout.ModeLegacy)

	if err := store.AddPaper(samplePaper("paper_001"), nil, AddOptions{}); err != nil {
		t.Fatal(err)
	}

	// Corrupt the record so it no longer parses.
	metaPath := filepath.Join(store.Root(), "papers", "paper_001", "metadata.json")
	if err := os.WriteFile(metaPath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	report, err := store.Validate()
	if err != nil {
		t.Fatal(err)
	}
	if report.OK() {
		t.Fatal("corrupt record not reported")
	}
	if report.Problems[0].Path != "papers/paper_001/metadata.json" {
		t.Errorf("path = %s", report.Problems[0].Path)
	}
}

func TestBagInfoRequiresStructured(t *testing.T) {
	store := testCreate(t, layout.ModeLegacy)

	_, err := store.BagInfo()
	var structErr *StructureError
	if !errors.As(err, &structErr) {
		t.Fatalf("want StructureError, got %v", err)
	}
}
