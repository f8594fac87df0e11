// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest keeps a SHA-256 checksum manifest in sync with the
// payload tree of a structured corpus. The manifest is the preservation
// contract: one entry per payload file, no stale entries, no missing ones.
//
// All manifest writes for one corpus root go through a single writer. A
// Ledger serializes in-process callers with a mutex and cross-process
// callers with a lock file next to the manifest.
package manifest

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/pdiddy/semantic-corpus/internal/layout"
)

// Ledger manages the manifest for one corpus root.
type Ledger struct {
	root string
	mu   sync.Mutex
	lock *flock.Flock
}

// New returns a Ledger for the corpus rooted at root.
func New(root string) *Ledger {
	return &Ledger{
		root: root,
		lock: flock.New(filepath.Join(root, layout.LockFile)),
	}
}

// Path returns the manifest file location for a corpus root.
func Path(root string) string {
	return filepath.Join(root, layout.ManifestFile)
}

// Read parses the manifest into a map of slash-separated relative path to
// hex digest. A missing manifest reads as empty.
func Read(root string) (map[string]string, error) {
	f, err := os.Open(Path(root))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("opening manifest: %w", err)
	}
	defer f.Close()

	entries := make(map[string]string)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		digest, relPath, ok := strings.Cut(line, "  ")
		if !ok {
			return nil, fmt.Errorf("malformed manifest line %q", line)
		}
		entries[relPath] = digest
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return entries, nil
}

// Update recomputes checksums for the touched payload paths (slash-separated,
// relative to the corpus root) and rewrites the manifest so that every
// currently-present payload file has exactly one entry and entries for
// removed files are dropped. A nil or empty touched slice rescans the whole
// payload tree.
func (l *Ledger) Update(touched []string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.lock.Lock(); err != nil {
		return fmt.Errorf("acquiring manifest lock: %w", err)
	}
	defer l.lock.Unlock()

	existing, err := Read(l.root)
	if err != nil {
		return err
	}

	touchedSet := make(map[string]bool, len(touched))
	for _, p := range touched {
		touchedSet[filepath.ToSlash(p)] = true
	}
	rescanAll := len(touchedSet) == 0

	entries := make(map[string]string)
	err = l.walkPayload(func(relPath, absPath string) error {
		cached, known := existing[relPath]
		if known && !rescanAll && !touchedSet[relPath] {
			entries[relPath] = cached
			return nil
		}
		digest, err := hashFile(absPath)
		if err != nil {
			return fmt.Errorf("hashing %s: %w", relPath, err)
		}
		entries[relPath] = digest
		return nil
	})
	if err != nil {
		return err
	}

	return writeManifest(l.root, entries)
}

// Problem describes one discrepancy found by Validate.
type Problem struct {
	// Path is the payload path relative to the corpus root.
	Path string `json:"path" yaml:"path"`

	// Kind is mismatch, missing, extra, or unreadable.
	Kind ProblemKind `json:"kind" yaml:"kind"`

	// Expected is the manifest digest, when the manifest has an entry.
	Expected string `json:"expected,omitempty" yaml:"expected,omitempty"`

	// Actual is the recomputed digest, when the file could be read.
	Actual string `json:"actual,omitempty" yaml:"actual,omitempty"`
}

// ProblemKind classifies a validation discrepancy.
type ProblemKind string

const (
	// ProblemMismatch means the file content no longer matches its entry.
	ProblemMismatch ProblemKind = "mismatch"

	// ProblemMissing means the manifest lists a file that is gone.
	ProblemMissing ProblemKind = "missing"

	// ProblemExtra means a payload file has no manifest entry.
	ProblemExtra ProblemKind = "extra"

	// ProblemUnreadable means a record exists but cannot be read or parsed.
	ProblemUnreadable ProblemKind = "unreadable"
)

// Report is the outcome of a validation pass. Discrepancies are reported
// individually; they are diagnostics, not raised failures.
type Report struct {
	Problems []Problem `json:"problems" yaml:"problems"`
}

// OK reports whether validation found no discrepancies.
func (r Report) OK() bool {
	return len(r.Problems) == 0
}

func (r *Report) add(p Problem) {
	r.Problems = append(r.Problems, p)
}

// Validate recomputes checksums for every file under the payload tree and
// diffs against the persisted manifest. Content discrepancies land in the
// Report; only I/O failures while reading the tree return an error.
func (l *Ledger) Validate() (Report, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.lock.RLock(); err != nil {
		return Report{}, fmt.Errorf("acquiring manifest lock: %w", err)
	}
	defer l.lock.Unlock()

	expected, err := Read(l.root)
	if err != nil {
		return Report{}, err
	}

	var report Report
	seen := make(map[string]bool, len(expected))
	err = l.walkPayload(func(relPath, absPath string) error {
		seen[relPath] = true
		actual, err := hashFile(absPath)
		if err != nil {
			return fmt.Errorf("hashing %s: %w", relPath, err)
		}
		want, listed := expected[relPath]
		switch {
		case !listed:
			report.add(Problem{Path: relPath, Kind: ProblemExtra, Actual: actual})
		case want != actual:
			report.add(Problem{Path: relPath, Kind: ProblemMismatch, Expected: want, Actual: actual})
		}
		return nil
	})
	if err != nil {
		return Report{}, err
	}

	for relPath, want := range expected {
		if !seen[relPath] {
			report.add(Problem{Path: relPath, Kind: ProblemMissing, Expected: want})
		}
	}

	sort.Slice(report.Problems, func(i, j int) bool {
		return report.Problems[i].Path < report.Problems[j].Path
	})
	return report, nil
}

// walkPayload visits every regular file under the payload tree, passing the
// slash-separated path relative to the corpus root.
func (l *Ledger) walkPayload(visit func(relPath, absPath string) error) error {
	payloadRoot := filepath.Join(l.root, layout.DataDir)
	return filepath.WalkDir(payloadRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == payloadRoot {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}
		return visit(filepath.ToSlash(rel), path)
	})
}

// hashFile returns the hex SHA-256 digest of the file contents. The digest
// depends on bytes only, never on mtime or path.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// writeManifest persists entries as a stable-sorted checksum list, written
// to a temp file and renamed into place.
func writeManifest(root string, entries map[string]string) error {
	paths := make([]string, 0, len(entries))
	for p := range entries {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	for _, p := range paths {
		fmt.Fprintf(&b, "%s  %s\n", entries[p], p)
	}

	tmp, err := os.CreateTemp(root, ".manifest-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp manifest: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.WriteString(b.String())
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing manifest: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp manifest: %w", closeErr)
	}
	if err := os.Rename(tmpPath, Path(root)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming manifest: %w", err)
	}
	return nil
}
