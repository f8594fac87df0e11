// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/semantic-corpus/pkg/types"
)

// eupmcResult mirrors the fields we consume from a per-article
// eupmc_result.json written by pygetpapers. Field names are Europe PMC's;
// they are mapped here, never interpreted structurally anywhere else.
type eupmcResult struct {
	Title                string `json:"title"`
	AbstractText         string `json:"abstractText"`
	DOI                  string `json:"doi"`
	PMCID                string `json:"pmcid"`
	PMID                 string `json:"pmid"`
	AuthorString         string `json:"authorString"`
	FirstPublicationDate string `json:"firstPublicationDate"`
	DateOfCreation       string `json:"dateOfCreation"`
	PubYear              string `json:"pubYear"`
	JournalInfo          struct {
		Journal struct {
			Title string `json:"title"`
		} `json:"journal"`
	} `json:"journalInfo"`
}

// MapRawMetadata maps a raw eupmc_result.json document into a canonical
// PaperRecord. Fields absent in the source are omitted from the record,
// never defaulted. The caller assigns the corpus-scoped ID.
func MapRawMetadata(raw []byte) (types.PaperRecord, error) {
	var src eupmcResult
	if err := json.Unmarshal(raw, &src); err != nil {
		return types.PaperRecord{}, fmt.Errorf("parsing source metadata: %w", err)
	}

	rec := types.PaperRecord{
		Title:    src.Title,
		Abstract: src.AbstractText,
		DOI:      src.DOI,
		Authors:  splitAuthors(src.AuthorString),
	}

	switch {
	case src.FirstPublicationDate != "":
		rec.PublicationDate = src.FirstPublicationDate
	case src.DateOfCreation != "":
		rec.PublicationDate = src.DateOfCreation
	case src.PubYear != "":
		rec.PublicationDate = src.PubYear
	}

	extra := make(map[string]any)
	if src.PMCID != "" {
		extra["pmcid"] = src.PMCID
	}
	if src.PMID != "" {
		extra["pmid"] = src.PMID
	}
	if j := src.JournalInfo.Journal.Title; j != "" {
		extra["journal"] = j
	}
	if len(extra) > 0 {
		rec.Extra = extra
	}
	return rec, nil
}

// splitAuthors splits a delimited author string ("Smith J., Doe A." or a
// semicolon-joined variant) into an ordered list of author names. Trailing
// periods from initials are stripped the way the source writes them.
func splitAuthors(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	sep := ","
	if strings.Contains(s, ";") {
		sep = ";"
	}

	var authors []string
	for _, part := range strings.Split(s, sep) {
		name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(part), "."))
		if name != "" {
			authors = append(authors, name)
		}
	}
	return authors
}
