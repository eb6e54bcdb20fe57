package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "shelfmark/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ExtractConfig holds settings for PDF text and identifier extraction.
type ExtractConfig struct {
	// MaxPages is how many pages are scanned for identifiers (default 10).
	MaxPages int `json:"max_pages" yaml:"max_pages"`
}

// ResolveConfig holds settings for the metadata resolution stage.
type ResolveConfig struct {
	HTTPConfig `yaml:",inline"`

	// SourcePriority orders the resolution stages. Recognized entries:
	// doi, arxiv, isbn, title, embedded. A field populated by an earlier
	// stage is never overwritten by a later one.
	SourcePriority []string `json:"source_priority" yaml:"source_priority"`

	// RequestDelay is the minimum spacing between calls to one source
	// (default 500ms). Enforced process-wide, not per document.
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// MaxRetries bounds retries of a source after a rate-limit or network
	// failure (default 2). Not-found is never retried.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// TitleMatchThreshold is the minimum title similarity for accepting a
	// title-search hit (default 0.85).
	TitleMatchThreshold float64 `json:"title_match_threshold" yaml:"title_match_threshold"`

	// EnableSemanticScholar controls the Semantic Scholar fallback.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// EnableArxiv controls arXiv ID extraction and lookup.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// SemanticScholarAPIKey is an optional API key for higher rate limits.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// CrossRefMailto is the contact address CrossRef asks polite clients to
	// send with requests.
	CrossRefMailto string `json:"crossref_mailto,omitempty" yaml:"crossref_mailto,omitempty"`
}

// DefaultSourcePriority is the stage order when none is configured.
var DefaultSourcePriority = []string{"doi", "arxiv", "isbn", "title", "embedded"}

// OrganizeConfig holds settings for the file organization stage.
type OrganizeConfig struct {
	// BackupDir is the backup folder created inside the processed
	// directory (default ".pdf_backup").
	BackupDir string `json:"backup_dir" yaml:"backup_dir"`

	// AttentionDir is where unresolved or failed documents are moved
	// (default "needs-attention").
	AttentionDir string `json:"attention_dir" yaml:"attention_dir"`

	// MaxTitleLength bounds the title portion of generated filenames
	// (default 70, capped at 120).
	MaxTitleLength int `json:"max_title_length" yaml:"max_title_length"`

	// ColonReplacement substitutes for ":" in filenames (default " -").
	ColonReplacement string `json:"colon_replacement" yaml:"colon_replacement"`

	// DryRun computes target names without touching the filesystem.
	DryRun bool `json:"dry_run" yaml:"dry_run"`

	// Sort moves results into Renamed-PDFs/Complete and
	// Renamed-PDFs/Incomplete instead of renaming in place.
	Sort bool `json:"sort" yaml:"sort"`

	// Workers is the size of the document worker pool (default 4).
	Workers int `json:"workers" yaml:"workers"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Extract  ExtractConfig  `json:"extract" yaml:"extract"`
	Resolve  ResolveConfig  `json:"resolve" yaml:"resolve"`
	Organize OrganizeConfig `json:"organize" yaml:"organize"`
}
