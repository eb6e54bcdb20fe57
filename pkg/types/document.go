// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// EmbeddedMeta holds the document information dictionary read from a PDF.
// It is the lowest-priority evidence in the resolution pipeline.
type EmbeddedMeta struct {
	// Author is the raw /Author entry.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Title is the raw /Title entry, often a tool artifact rather than the
	// work's real title.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// CreationDate is the raw /CreationDate entry (usually "D:YYYYMMDD...").
	CreationDate string `json:"creation_date,omitempty" yaml:"creation_date,omitempty"`

	// ModDate is the raw /ModDate entry.
	ModDate string `json:"mod_date,omitempty" yaml:"mod_date,omitempty"`
}

// IsEmpty reports whether the info dictionary carried nothing usable.
func (m EmbeddedMeta) IsEmpty() bool {
	return m.Author == "" && m.Title == "" && m.CreationDate == "" && m.ModDate == ""
}

// Document is one input PDF plus everything extracted from it. The
// underlying file is never mutated until the final organize step.
type Document struct {
	// Path is the document's location on disk.
	Path string `json:"path" yaml:"path"`

	// Pages holds the extracted text of the first N pages, one string per
	// page, in page order.
	Pages []string `json:"-" yaml:"-"`

	// Embedded is the PDF's own metadata record, possibly empty.
	Embedded EmbeddedMeta `json:"embedded" yaml:"embedded"`
}
