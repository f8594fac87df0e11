// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import "fmt"

// PathError reports that a required filesystem path does not exist or is
// not the expected kind (file vs. directory).
type PathError struct {
	Path   string
	Reason string
}

func (e *PathError) Error() string {
	return fmt.Sprintf("path %s: %s", e.Path, e.Reason)
}

// StructureError reports that an operation requires structured mode but the
// corpus is legacy, or that the on-disk layout is missing required parts.
type StructureError struct {
	Root   string
	Reason string
}

func (e *StructureError) Error() string {
	return fmt.Sprintf("corpus %s: %s", e.Root, e.Reason)
}

// NotFoundError reports a lookup by ID with no matching record.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("paper %s not found", e.ID)
}

// DuplicateError reports an AddPaper with NoOverwrite set for an ID that
// already exists.
type DuplicateError struct {
	ID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("paper %s already exists", e.ID)
}
