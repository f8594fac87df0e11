// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"fmt"
)

// PaperRecord is the canonical metadata record for one paper in a corpus.
// ID is unique within a corpus and immutable once assigned. Optional fields
// are omitted from the JSON record when empty; source-specific fields that
// have no canonical slot live in Extra and are flattened into the same JSON
// object on disk.
type PaperRecord struct {
	// ID is the corpus-scoped identifier (e.g. "europe_pmc_PMC1234567").
	ID string

	// Title is the paper title.
	Title string

	// Abstract is the paper abstract.
	Abstract string

	// Authors lists author names in source order.
	Authors []string

	// DOI is the Digital Object Identifier, when known.
	DOI string

	// PublicationDate is the publication date as reported by the source,
	// typically YYYY-MM-DD.
	PublicationDate string

	// Extra holds additional normalized fields (journal, pmcid, pmid, ...).
	Extra map[string]any
}

// canonical JSON keys; anything else round-trips through Extra.
const (
	keyID       = "id"
	keyTitle    = "title"
	keyAbstract = "abstract"
	keyAuthors  = "authors"
	keyDOI      = "doi"
	keyPubDate  = "publication_date"
)

// MarshalJSON flattens Extra into the record object. Canonical fields win
// over Extra keys with the same name.
func (p PaperRecord) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(p.Extra)+6)
	for k, v := range p.Extra {
		obj[k] = v
	}
	obj[keyID] = p.ID
	if p.Title != "" {
		obj[keyTitle] = p.Title
	}
	if p.Abstract != "" {
		obj[keyAbstract] = p.Abstract
	}
	if len(p.Authors) > 0 {
		obj[keyAuthors] = p.Authors
	}
	if p.DOI != "" {
		obj[keyDOI] = p.DOI
	}
	if p.PublicationDate != "" {
		obj[keyPubDate] = p.PublicationDate
	}
	return json.Marshal(obj)
}

// UnmarshalJSON splits a record object into canonical fields and Extra.
func (p *PaperRecord) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	take := func(key string, dst any) error {
		raw, ok := obj[key]
		if !ok {
			return nil
		}
		delete(obj, key)
		if err := json.Unmarshal(raw, dst); err != nil {
			return fmt.Errorf("field %q: %w", key, err)
		}
		return nil
	}

	*p = PaperRecord{}
	if err := take(keyID, &p.ID); err != nil {
		return err
	}
	if err := take(keyTitle, &p.Title); err != nil {
		return err
	}
	if err := take(keyAbstract, &p.Abstract); err != nil {
		return err
	}
	if err := take(keyAuthors, &p.Authors); err != nil {
		return err
	}
	if err := take(keyDOI, &p.DOI); err != nil {
		return err
	}
	if err := take(keyPubDate, &p.PublicationDate); err != nil {
		return err
	}

	if len(obj) > 0 {
		p.Extra = make(map[string]any, len(obj))
		for k, raw := range obj {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return fmt.Errorf("field %q: %w", k, err)
			}
			p.Extra[k] = v
		}
	}
	return nil
}

// Field returns the value of a named searchable field as a string: "title",
// "abstract", "doi", "publication_date", or any Extra key. The second
// return reports whether the field is present and non-empty.
func (p PaperRecord) Field(name string) (string, bool) {
	switch name {
	case keyTitle:
		return p.Title, p.Title != ""
	case keyAbstract:
		return p.Abstract, p.Abstract != ""
	case keyDOI:
		return p.DOI, p.DOI != ""
	case keyPubDate:
		return p.PublicationDate, p.PublicationDate != ""
	}
	if v, ok := p.Extra[name]; ok {
		s := fmt.Sprintf("%v", v)
		return s, s != ""
	}
	return "", false
}
