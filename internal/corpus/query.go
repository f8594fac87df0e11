// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/semantic-corpus/internal/layout"
	"github.com/pdiddy/semantic-corpus/internal/manifest"
	"github.com/pdiddy/semantic-corpus/pkg/types"
)

// GetPaperMetadata returns the stored record for id, or NotFoundError.
func (s *Store) GetPaperMetadata(id string) (types.PaperRecord, error) {
	path := filepath.Join(s.root, layout.MetadataPath(s.mode, id))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return types.PaperRecord{}, &NotFoundError{ID: id}
		}
		return types.PaperRecord{}, fmt.Errorf("reading metadata for %s: %w", id, err)
	}

	var rec types.PaperRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return types.PaperRecord{}, fmt.Errorf("parsing metadata for %s: %w", id, err)
	}
	if rec.ID == "" {
		rec.ID = id
	}
	return rec, nil
}

// ListPapers returns the known paper IDs, sorted. IDs are derived by
// enumerating the metadata directory (structured) or the papers directory
// (legacy); a corpus with no papers yields an empty list.
func (s *Store) ListPapers() ([]string, error) {
	var dir string
	if s.mode == layout.ModeStructured {
		dir = filepath.Join(s.root, filepath.FromSlash(layout.MetadataDir))
	} else {
		dir = filepath.Join(s.root, layout.PapersDir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing papers: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if s.mode == layout.ModeStructured {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".json") {
				continue
			}
			ids = append(ids, strings.TrimSuffix(name, ".json"))
		} else if entry.IsDir() {
			ids = append(ids, entry.Name())
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// SearchPapers scans every record and returns the IDs whose named field
// contains query, case-insensitively. Fields are "title", "abstract", or
// any normalized extra field; an unknown field simply matches nothing.
// Records that cannot be read are skipped. This is deliberately a linear
// scan, not an index lookup.
func (s *Store) SearchPapers(query, field string) ([]string, error) {
	ids, err := s.ListPapers()
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var matches []string
	for _, id := range ids {
		rec, err := s.GetPaperMetadata(id)
		if err != nil {
			continue
		}
		value, ok := rec.Field(field)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(value), needle) {
			matches = append(matches, id)
		}
	}
	return matches, nil
}

// Statistics returns paper count, aggregate payload size, and the corpus
// creation and last-update times derived from the persisted root.
func (s *Store) Statistics() (types.CorpusStats, error) {
	ids, err := s.ListPapers()
	if err != nil {
		return types.CorpusStats{}, err
	}

	stats := types.CorpusStats{TotalPapers: len(ids)}

	payloadRoot := filepath.Join(s.root, layout.PayloadRoot(s.mode))
	err = filepath.WalkDir(payloadRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == payloadRoot {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		stats.PayloadBytes += info.Size()
		if info.ModTime().After(stats.LastUpdated) {
			stats.LastUpdated = info.ModTime()
		}
		return nil
	})
	if err != nil {
		return types.CorpusStats{}, fmt.Errorf("sizing payload tree: %w", err)
	}

	stats.Created = s.creationTime()
	if stats.LastUpdated.IsZero() {
		stats.LastUpdated = stats.Created
	}
	return stats, nil
}

// creationTime derives the corpus creation time: Bagging-Date from
// bag-info.txt in structured mode, root directory mtime otherwise.
func (s *Store) creationTime() time.Time {
	if s.mode == layout.ModeStructured {
		if info, err := s.BagInfo(); err == nil {
			if date, ok := info[bagInfoBaggingDate]; ok {
				if t, err := time.Parse("2006-01-02", date); err == nil {
					return t
				}
			}
		}
	}
	if fi, err := os.Stat(s.root); err == nil {
		return fi.ModTime()
	}
	return time.Time{}
}

// Validate checks the corpus against its preservation contract. Structured
// mode recomputes every payload checksum and diffs against the manifest;
// legacy mode verifies that every listed paper has a readable, parseable
// metadata record. Discrepancies are reported, not raised.
func (s *Store) Validate() (manifest.Report, error) {
	if s.mode == layout.ModeStructured {
		return s.ledger.Validate()
	}

	ids, err := s.ListPapers()
	if err != nil {
		return manifest.Report{}, err
	}

	var report manifest.Report
	for _, id := range ids {
		if _, err := s.GetPaperMetadata(id); err != nil {
			report.Problems = append(report.Problems, manifest.Problem{
				Path: filepath.ToSlash(layout.MetadataPath(s.mode, id)),
				Kind: manifest.ProblemUnreadable,
			})
		}
	}
	return report, nil
}
