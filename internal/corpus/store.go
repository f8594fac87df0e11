// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package corpus implements the structured corpus store: a filesystem-rooted
// collection of paper records and payload files in one of two layouts, with
// a checksum manifest kept consistent across mutation in structured mode.
package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/semantic-corpus/internal/layout"
	"github.com/pdiddy/semantic-corpus/internal/manifest"
	"github.com/pdiddy/semantic-corpus/pkg/types"
)

// Store operates on one corpus root. The mode is fixed at creation time;
// every operation takes it from the Store, never from directory inspection.
// A Store holds no global state, so multiple corpora can be open in one
// process.
type Store struct {
	root   string
	mode   layout.Mode
	ledger *manifest.Ledger
}

// PayloadFile names a source file to copy into the corpus alongside a
// metadata record.
type PayloadFile struct {
	// Kind selects the destination subdirectory (pdf, xml, html).
	Kind layout.FileKind

	// SourcePath is the file to copy.
	SourcePath string
}

// AddOptions controls AddPaper behavior. The zero value gives the default
// replace-not-merge semantics.
type AddOptions struct {
	// NoOverwrite makes AddPaper fail with DuplicateError instead of
	// replacing an existing record.
	NoOverwrite bool
}

// Create builds the directory skeleton for a new corpus and returns a Store
// for it. In structured mode it also writes the bag descriptor files and an
// initial manifest. Creating over an existing compatible layout is allowed;
// an existing non-empty root with an incompatible layout is a StructureError.
func Create(root string, mode layout.Mode, info types.BagDescriptor) (*Store, error) {
	parent := filepath.Dir(root)
	if _, err := os.Stat(parent); err != nil {
		if os.IsNotExist(err) {
			return nil, &PathError{Path: parent, Reason: "parent directory does not exist"}
		}
		return nil, fmt.Errorf("checking parent directory: %w", err)
	}

	if err := checkCompatible(root, mode); err != nil {
		return nil, err
	}

	if err := layout.CreateSkeleton(root, mode); err != nil {
		return nil, err
	}

	s := &Store{root: root, mode: mode, ledger: manifest.New(root)}
	if mode != layout.ModeStructured {
		return s, nil
	}

	if err := writeBagDeclaration(root); err != nil {
		return nil, err
	}
	if err := writeBagInfo(root, info); err != nil {
		return nil, err
	}
	if err := s.ledger.Update(nil); err != nil {
		return nil, fmt.Errorf("writing initial manifest: %w", err)
	}
	return s, nil
}

// Open returns a Store for an existing corpus, deriving the mode from the
// on-disk markers. This is the only place mode is ever inferred.
func Open(root string) (*Store, error) {
	fi, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &PathError{Path: root, Reason: "does not exist"}
		}
		return nil, fmt.Errorf("checking corpus root: %w", err)
	}
	if !fi.IsDir() {
		return nil, &PathError{Path: root, Reason: "not a directory"}
	}

	if _, err := os.Stat(filepath.Join(root, layout.BagitFile)); err == nil {
		return &Store{root: root, mode: layout.ModeStructured, ledger: manifest.New(root)}, nil
	}
	if fi, err := os.Stat(filepath.Join(root, layout.PapersDir)); err == nil && fi.IsDir() {
		return &Store{root: root, mode: layout.ModeLegacy, ledger: manifest.New(root)}, nil
	}
	return nil, &StructureError{Root: root, Reason: "not a corpus: no bagit.txt and no papers/ directory"}
}

// Root returns the corpus root path.
func (s *Store) Root() string { return s.root }

// Mode returns the fixed layout mode.
func (s *Store) Mode() layout.Mode { return s.mode }

// HasPaper reports whether a record exists for the ID.
func (s *Store) HasPaper(id string) bool {
	_, err := os.Stat(filepath.Join(s.root, layout.MetadataPath(s.mode, id)))
	return err == nil
}

// AddPaper writes rec as the canonical record for rec.ID and copies each
// payload file to the path its kind dictates. An existing record for the
// same ID is replaced, not merged, unless opts.NoOverwrite is set. In
// structured mode the manifest is updated for exactly the files touched,
// and only after every write succeeded; files copied before a failure stay
// outside the manifest so Validate reports them rather than silently
// accepting them.
func (s *Store) AddPaper(rec types.PaperRecord, files []PayloadFile, opts AddOptions) error {
	if rec.ID == "" {
		return fmt.Errorf("paper ID must not be empty")
	}
	if opts.NoOverwrite && s.HasPaper(rec.ID) {
		return &DuplicateError{ID: rec.ID}
	}

	touched := make([]string, 0, len(files)+1)

	for _, f := range files {
		rel := layout.DocumentPath(s.mode, rec.ID, f.Kind)
		if err := copyFile(f.SourcePath, filepath.Join(s.root, rel)); err != nil {
			return fmt.Errorf("copying %s payload for %s: %w", f.Kind, rec.ID, err)
		}
		touched = append(touched, filepath.ToSlash(rel))
	}

	metaRel := layout.MetadataPath(s.mode, rec.ID)
	if err := writeRecord(rec, filepath.Join(s.root, metaRel)); err != nil {
		return fmt.Errorf("writing metadata for %s: %w", rec.ID, err)
	}
	touched = append(touched, filepath.ToSlash(metaRel))

	if s.mode == layout.ModeStructured {
		if err := s.ledger.Update(touched); err != nil {
			return fmt.Errorf("updating manifest for %s: %w", rec.ID, err)
		}
	}
	return nil
}

// UpdateManifest recomputes the manifest over the whole payload tree.
func (s *Store) UpdateManifest() error {
	if s.mode != layout.ModeStructured {
		return &StructureError{Root: s.root, Reason: "manifest requires a structured corpus"}
	}
	return s.ledger.Update(nil)
}

// checkCompatible verifies that an existing non-empty root carries a layout
// compatible with mode.
func checkCompatible(root string, mode layout.Mode) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading corpus root: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	var marker string
	switch mode {
	case layout.ModeStructured:
		marker = layout.BagitFile
	case layout.ModeLegacy:
		marker = layout.PapersDir
	}
	if _, err := os.Stat(filepath.Join(root, marker)); err != nil {
		return &StructureError{
			Root:   root,
			Reason: fmt.Sprintf("exists and is not a %s corpus", mode),
		}
	}
	return nil
}

// writeRecord marshals the record and writes it via temp file + rename so a
// partial write never masquerades as a valid record.
func writeRecord(rec types.PaperRecord, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metadata directory: %w", err)
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling record: %w", err)
	}
	return atomicWrite(path, data)
}

// copyFile copies src to dst through a temp file in the destination
// directory, renaming on success.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".copy-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, copyErr := io.Copy(tmp, in)
	closeErr := tmp.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("copying: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// atomicWrite writes data to path through a temp file in the same directory.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".write-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
