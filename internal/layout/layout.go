// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package layout describes the canonical on-disk structure of a corpus in
// its two modes and derives file paths from paper IDs. It owns no I/O
// beyond skeleton creation; reading and writing records is the store's job.
package layout

import (
	"fmt"
	"os"
	"path/filepath"
)

// Mode selects the corpus layout variant. It is fixed when the corpus is
// created and carried explicitly on every operation; it is never re-derived
// from directory inspection after open time.
type Mode string

const (
	// ModeLegacy is the per-id-folder layout without checksumming:
	// papers/<id>/metadata.json plus sibling payload files.
	ModeLegacy Mode = "legacy"

	// ModeStructured is the BagIt-style layout with a fixed subtree under
	// data/ and a checksum manifest at the root.
	ModeStructured Mode = "structured"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLegacy, ModeStructured:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown corpus mode %q: use legacy or structured", s)
}

// FileKind identifies a payload document format.
type FileKind string

const (
	KindPDF  FileKind = "pdf"
	KindXML  FileKind = "xml"
	KindHTML FileKind = "html"
)

// ParseKind validates a document kind string.
func ParseKind(s string) (FileKind, error) {
	switch FileKind(s) {
	case KindPDF, KindXML, KindHTML:
		return FileKind(s), nil
	}
	return "", fmt.Errorf("unknown document kind %q: use pdf, xml, or html", s)
}

// Well-known names within a corpus root.
const (
	DataDir     = "data"
	PapersDir   = "papers"
	MetadataDir = "data/metadata"
	IndicesDir  = "data/indices"

	BagitFile    = "bagit.txt"
	BagInfoFile  = "bag-info.txt"
	ManifestFile = "manifest-sha256.txt"
	LockFile     = ".manifest.lock"

	metadataFileName = "metadata.json"
)

// structuredDirs is the fixed subtree created for a structured corpus,
// relative to the root. Every payload file belongs to exactly one of the
// data/ subdirectories.
var structuredDirs = []string{
	"data/documents/pdf",
	"data/documents/xml",
	"data/documents/html",
	"data/semantic",
	"data/metadata",
	"data/keyphrases",
	"data/indices",
	"relations",
	"analysis",
	"provenance",
}

// legacyDirs is the subtree created for a legacy corpus.
var legacyDirs = []string{
	"papers",
}

// Dirs returns the directories created for a mode, relative to the root.
func Dirs(mode Mode) []string {
	if mode == ModeStructured {
		return structuredDirs
	}
	return legacyDirs
}

// CreateSkeleton creates the directory tree for the mode under root.
func CreateSkeleton(root string, mode Mode) error {
	for _, dir := range Dirs(mode) {
		if err := os.MkdirAll(filepath.Join(root, filepath.FromSlash(dir)), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// MetadataPath returns the metadata record path for a paper ID, relative to
// the corpus root.
func MetadataPath(mode Mode, id string) string {
	if mode == ModeStructured {
		return filepath.Join(DataDir, "metadata", id+".json")
	}
	return filepath.Join(PapersDir, id, metadataFileName)
}

// DocumentPath returns the payload document path for a paper ID and kind,
// relative to the corpus root.
func DocumentPath(mode Mode, id string, kind FileKind) string {
	name := id + "." + string(kind)
	if mode == ModeStructured {
		return filepath.Join(DataDir, "documents", string(kind), name)
	}
	return filepath.Join(PapersDir, id, name)
}

// PayloadRoot returns the directory containing all payload files, relative
// to the corpus root. Only structured corpora carry a manifest over it.
func PayloadRoot(mode Mode) string {
	if mode == ModeStructured {
		return DataDir
	}
	return PapersDir
}
