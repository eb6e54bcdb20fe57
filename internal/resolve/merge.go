// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package resolve

import (
	"strconv"

	"github.com/pdiddy/shelfmark/internal/normalize"
	"github.com/pdiddy/shelfmark/pkg/types"
)

// merger accumulates metadata across sources. The first source to supply a
// field owns it; later sources never overwrite, they only fill gaps.
// Differing values from later sources are recorded as discrepancies and
// discarded.
type merger struct {
	record        types.MetadataRecord
	surnameSource types.SourceKind
	yearSource    types.SourceKind
	titleSource   types.SourceKind
	discrepancies []types.Discrepancy
}

// apply folds one source's record into the merge. Years outside the
// plausible publication range are treated as absent.
func (m *merger) apply(rec types.MetadataRecord) {
	if rec.AuthorSurname != "" {
		if m.record.AuthorSurname == "" {
			m.record.AuthorSurname = rec.AuthorSurname
			m.surnameSource = rec.Source
		} else if rec.AuthorSurname != m.record.AuthorSurname {
			m.note("author_surname", m.record.AuthorSurname, rec.AuthorSurname, rec.Source)
		}
	}

	if normalize.ValidYear(rec.Year) {
		if m.record.Year == 0 {
			m.record.Year = rec.Year
			m.yearSource = rec.Source
		} else if rec.Year != m.record.Year {
			m.note("year", strconv.Itoa(m.record.Year), strconv.Itoa(rec.Year), rec.Source)
		}
	}

	if rec.Title != "" {
		if m.record.Title == "" {
			m.record.Title = rec.Title
			m.titleSource = rec.Source
		} else if rec.Title != m.record.Title {
			m.note("title", m.record.Title, rec.Title, rec.Source)
		}
	}

	if m.record.Source == "" {
		m.record.Source = rec.Source
	}
}

func (m *merger) note(field, kept, discarded string, src types.SourceKind) {
	m.discrepancies = append(m.discrepancies, types.Discrepancy{
		Field:           field,
		Kept:            kept,
		Discarded:       discarded,
		DiscardedSource: src,
	})
}

func (m *merger) complete() bool {
	return m.record.Completeness() == types.Complete
}
