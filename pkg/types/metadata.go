// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the shelfmark pipeline.
package types

// SourceKind identifies which adapter or fallback produced a metadata record.
type SourceKind string

const (
	SourceCrossRef        SourceKind = "crossref"
	SourceSemanticScholar SourceKind = "semantic_scholar"
	SourceArxiv           SourceKind = "arxiv"
	SourceOpenLibrary     SourceKind = "openlibrary"
	SourceTitleSearch     SourceKind = "title_search"
	SourceEmbedded        SourceKind = "embedded"
)

// Completeness grades how much of a MetadataRecord is filled in.
type Completeness int

const (
	// Empty means no field is present.
	Empty Completeness = iota

	// Partial means at least one of surname, year, or title is present.
	Partial

	// Complete means surname, year, and title are all present.
	Complete
)

func (c Completeness) String() string {
	switch c {
	case Complete:
		return "complete"
	case Partial:
		return "partial"
	default:
		return "empty"
	}
}

// MetadataRecord is the canonical bibliographic record shape every source
// adapter maps its response into.
type MetadataRecord struct {
	// AuthorSurname is the first author's family name.
	AuthorSurname string `json:"author_surname" yaml:"author_surname"`

	// Year is the four-digit publication year. Zero means unknown.
	Year int `json:"year" yaml:"year"`

	// Title is the work's title with source markup stripped.
	Title string `json:"title" yaml:"title"`

	// Source identifies the adapter that produced this record. For a merged
	// record it names the highest-priority contributing source.
	Source SourceKind `json:"source" yaml:"source"`
}

// Completeness derives the record's grade from its current fields. It is
// computed on every call, never cached.
func (r MetadataRecord) Completeness() Completeness {
	present := 0
	if r.AuthorSurname != "" {
		present++
	}
	if r.Year != 0 {
		present++
	}
	if r.Title != "" {
		present++
	}
	switch present {
	case 0:
		return Empty
	case 3:
		return Complete
	default:
		return Partial
	}
}

// IsEmpty reports whether no field carries a value.
func (r MetadataRecord) IsEmpty() bool {
	return r.Completeness() == Empty
}

// IdentifierKind tags the identifier grammars the extractor recognizes.
type IdentifierKind string

const (
	KindDOI   IdentifierKind = "doi"
	KindISBN  IdentifierKind = "isbn"
	KindArxiv IdentifierKind = "arxiv"
)

// Identifier is a validated bibliographic identifier found in document text.
// Immutable once created.
type Identifier struct {
	// Kind is the identifier grammar: doi, isbn, or arxiv.
	Kind IdentifierKind `json:"kind" yaml:"kind"`

	// Value is the normalized canonical form (e.g. "10.1000/xyz123",
	// "9780306406157", "2301.07041").
	Value string `json:"value" yaml:"value"`
}

// FailureReason classifies why a document could not be fully resolved.
type FailureReason string

const (
	// ReasonNoIdentifierFound means no DOI, ISBN, or arXiv ID was extracted
	// and no title seed was available for a search.
	ReasonNoIdentifierFound FailureReason = "no_identifier_found"

	// ReasonAllSourcesFailed means lookups were attempted but every source
	// came back empty or failed.
	ReasonAllSourcesFailed FailureReason = "all_sources_failed"

	// ReasonIncomplete means some fields resolved but not all three.
	ReasonIncomplete FailureReason = "incomplete_metadata"

	// ReasonExtractionError means the PDF text or metadata could not be read.
	ReasonExtractionError FailureReason = "extraction_error"
)

// Discrepancy records a lower-priority source disagreeing with an
// already-populated field. The differing value is discarded, never applied;
// discrepancies surface only in diagnostic output.
type Discrepancy struct {
	// Field names the disputed field: author_surname, year, or title.
	Field string `json:"field" yaml:"field"`

	// Kept is the value that stayed, from the higher-priority source.
	Kept string `json:"kept" yaml:"kept"`

	// Discarded is the differing value from the lower-priority source.
	Discarded string `json:"discarded" yaml:"discarded"`

	// DiscardedSource names the source whose value was discarded.
	DiscardedSource SourceKind `json:"discarded_source" yaml:"discarded_source"`
}

// ResolutionResult is the outcome of running the resolution pipeline over
// one document.
type ResolutionResult struct {
	// Record is the merged metadata. May be partially or entirely empty.
	Record MetadataRecord `json:"record" yaml:"record"`

	// Reason is set when the record is not Complete.
	Reason FailureReason `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Identifiers lists every identifier the extractor found, in first
	// occurrence order.
	Identifiers []Identifier `json:"identifiers,omitempty" yaml:"identifiers,omitempty"`

	// Discrepancies lists conflicting values discarded during the merge.
	Discrepancies []Discrepancy `json:"discrepancies,omitempty" yaml:"discrepancies,omitempty"`
}

// Resolved reports whether the merged record is Complete.
func (r ResolutionResult) Resolved() bool {
	return r.Record.Completeness() == Complete
}

// Outcome is the terminal disposition of one document. Every document ends
// in exactly one of these.
type Outcome string

const (
	OutcomeRenamed        Outcome = "renamed"
	OutcomeNeedsAttention Outcome = "needs_attention"
	OutcomeError          Outcome = "error"
)
