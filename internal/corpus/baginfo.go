// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/semantic-corpus/internal/layout"
	"github.com/pdiddy/semantic-corpus/pkg/types"
)

// bag-info.txt keys. The store treats these as opaque pass-through
// metadata; only Bagging-Date is ever interpreted (for statistics).
const (
	bagInfoSourceOrg    = "Source-Organization"
	bagInfoContactName  = "Contact-Name"
	bagInfoContactEmail = "Contact-Email"
	bagInfoDescription  = "External-Description"
	bagInfoBaggingDate  = "Bagging-Date"
)

const bagDeclaration = "BagIt-Version: 0.97\nTag-File-Character-Encoding: UTF-8\n"

// writeBagDeclaration writes the bagit.txt version marker.
func writeBagDeclaration(root string) error {
	path := filepath.Join(root, layout.BagitFile)
	if err := os.WriteFile(path, []byte(bagDeclaration), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", layout.BagitFile, err)
	}
	return nil
}

// writeBagInfo writes bag-info.txt from the descriptor plus today's
// Bagging-Date.
func writeBagInfo(root string, info types.BagDescriptor) error {
	fields := [][2]string{
		{bagInfoBaggingDate, time.Now().UTC().Format("2006-01-02")},
	}
	if info.SourceOrganization != "" {
		fields = append(fields, [2]string{bagInfoSourceOrg, info.SourceOrganization})
	}
	if info.ContactName != "" {
		fields = append(fields, [2]string{bagInfoContactName, info.ContactName})
	}
	if info.ContactEmail != "" {
		fields = append(fields, [2]string{bagInfoContactEmail, info.ContactEmail})
	}
	if info.Description != "" {
		fields = append(fields, [2]string{bagInfoDescription, info.Description})
	}

	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "%s: %s\n", f[0], f[1])
	}

	path := filepath.Join(root, layout.BagInfoFile)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", layout.BagInfoFile, err)
	}
	return nil
}

// BagInfo returns the bag-info.txt metadata verbatim as key/value pairs.
// Requires structured mode.
func (s *Store) BagInfo() (map[string]string, error) {
	if s.mode != layout.ModeStructured {
		return nil, &StructureError{Root: s.root, Reason: "bag info requires a structured corpus"}
	}

	f, err := os.Open(filepath.Join(s.root, layout.BagInfoFile))
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("opening %s: %w", layout.BagInfoFile, err)
	}
	defer f.Close()

	info := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ": ")
		if !ok {
			continue
		}
		info[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", layout.BagInfoFile, err)
	}
	return info, nil
}
