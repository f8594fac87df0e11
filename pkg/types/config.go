package types

// CorpusConfig holds settings shared by all store operations.
type CorpusConfig struct {
	// Dir is the corpus root directory.
	Dir string `json:"dir" yaml:"dir"`
}

// DuplicatePolicy selects what ingestion does when a derived paper ID is
// already present in the corpus.
type DuplicatePolicy string

const (
	// DuplicateSkip records the ID as already-present and moves on.
	DuplicateSkip DuplicatePolicy = "skip"

	// DuplicateOverwrite replaces the stored record and payload files.
	DuplicateOverwrite DuplicatePolicy = "overwrite"
)

// IngestionConfig holds settings for bulk ingestion from a pygetpapers
// output directory.
type IngestionConfig struct {
	// IDPrefix is prepended to each source folder's native identifier to
	// form the corpus-scoped paper ID (default "europe_pmc_").
	IDPrefix string `json:"id_prefix" yaml:"id_prefix"`

	// OnDuplicate selects skip or overwrite for already-present IDs
	// (default skip).
	OnDuplicate DuplicatePolicy `json:"on_duplicate" yaml:"on_duplicate"`
}

// IndexConfig holds settings for the derived full-text index.
type IndexConfig struct {
	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// BagDescriptor holds the bag-info.txt fields written at corpus creation.
// All fields are optional pass-through metadata.
type BagDescriptor struct {
	SourceOrganization string `json:"source_organization,omitempty" yaml:"source_organization,omitempty"`
	ContactName        string `json:"contact_name,omitempty" yaml:"contact_name,omitempty"`
	ContactEmail       string `json:"contact_email,omitempty" yaml:"contact_email,omitempty"`
	Description        string `json:"description,omitempty" yaml:"description,omitempty"`
}
