// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CorpusStats summarizes a corpus for the stats command.
type CorpusStats struct {
	// TotalPapers is the number of metadata records in the corpus.
	TotalPapers int `json:"total_papers" yaml:"total_papers"`

	// PayloadBytes is the aggregate size of all payload files.
	PayloadBytes int64 `json:"payload_bytes" yaml:"payload_bytes"`

	// Created is when the corpus was created, derived from the persisted
	// root (Bagging-Date in structured mode, directory mtime in legacy).
	Created time.Time `json:"created" yaml:"created"`

	// LastUpdated is when the corpus content last changed.
	LastUpdated time.Time `json:"last_updated" yaml:"last_updated"`
}
