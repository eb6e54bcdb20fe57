// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve runs the metadata resolution state machine: extracted
// identifiers are tried against external sources in priority order, and
// partial answers are merged until the record is complete or every stage
// is exhausted.
package resolve

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"time"

	"github.com/pdiddy/shelfmark/internal/identify"
	"github.com/pdiddy/shelfmark/internal/sources"
	"github.com/pdiddy/shelfmark/pkg/types"
)

// retryDelay spaces resolver-level retries of rate-limited or flaky
// sources. Declared as a var so tests run without real sleeps.
var retryDelay = 2 * time.Second

const defaultMaxRetries = 2

// Resolver drives the resolution pipeline for one document at a time. It
// is safe for concurrent use when its adapters are.
type Resolver struct {
	// CrossRef serves DOI lookups; first choice for DOIs.
	CrossRef sources.Adapter

	// Semantic serves DOI and arXiv fallback plus title search. Nil
	// disables all three uses.
	Semantic sources.Adapter

	// Arxiv serves arXiv ID lookups. Nil disables the arXiv stage.
	Arxiv sources.Adapter

	// OpenLibrary serves ISBN lookups.
	OpenLibrary sources.Adapter

	Config types.ResolveConfig

	// Verbose, when non-nil, receives a line per stage transition.
	Verbose io.Writer
}

// Resolve runs the full state machine over an already-extracted document.
// It never returns an error: failure is a ResolutionResult with an empty
// or partial record and a reason.
func (r *Resolver) Resolve(ctx context.Context, doc types.Document) types.ResolutionResult {
	ids := identify.Extract(doc.Pages)
	if !r.Config.EnableArxiv {
		ids = dropKind(ids, types.KindArxiv)
	}
	r.logf("%s: extracted %d identifier(s)", doc.Path, len(ids))

	var m merger
	attempted := false

	for _, stage := range r.priority() {
		if m.complete() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		switch stage {
		case "doi":
			attempted = r.tryDOI(ctx, ids, &m) || attempted
		case "arxiv":
			attempted = r.tryArxiv(ctx, ids, &m) || attempted
		case "isbn":
			attempted = r.tryISBN(ctx, ids, &m) || attempted
		case "title":
			// Title search is a last resort for documents with no
			// identifier at all; an identifier that failed to resolve
			// is not overridden by a fuzzy match.
			if len(ids) == 0 {
				attempted = r.tryTitleSearch(ctx, doc, &m) || attempted
			}
		case "embedded":
			r.tryEmbedded(doc, &m)
		}
	}

	result := types.ResolutionResult{
		Record:        m.record,
		Identifiers:   ids,
		Discrepancies: m.discrepancies,
	}

	switch m.record.Completeness() {
	case types.Complete:
		r.logf("%s: resolved via %s", doc.Path, m.record.Source)
	case types.Partial:
		result.Reason = types.ReasonIncomplete
	default:
		if len(ids) == 0 && !attempted {
			result.Reason = types.ReasonNoIdentifierFound
		} else {
			result.Reason = types.ReasonAllSourcesFailed
		}
	}
	return result
}

func (r *Resolver) priority() []string {
	if len(r.Config.SourcePriority) > 0 {
		return r.Config.SourcePriority
	}
	return types.DefaultSourcePriority
}

// tryDOI asks CrossRef first, then Semantic Scholar with the same DOI for
// any fields CrossRef left open. Reports whether a lookup was attempted.
func (r *Resolver) tryDOI(ctx context.Context, ids []types.Identifier, m *merger) bool {
	id, ok := identify.First(ids, types.KindDOI)
	if !ok {
		return false
	}
	q := sources.Query{Identifier: id}

	r.lookupInto(ctx, r.CrossRef, q, m)
	if !m.complete() {
		r.lookupInto(ctx, r.semantic(), q, m)
	}
	return true
}

func (r *Resolver) tryArxiv(ctx context.Context, ids []types.Identifier, m *merger) bool {
	id, ok := identify.First(ids, types.KindArxiv)
	if !ok {
		return false
	}
	q := sources.Query{Identifier: id}

	r.lookupInto(ctx, r.Arxiv, q, m)
	if !m.complete() {
		r.lookupInto(ctx, r.semantic(), q, m)
	}
	return true
}

func (r *Resolver) tryISBN(ctx context.Context, ids []types.Identifier, m *merger) bool {
	id, ok := identify.First(ids, types.KindISBN)
	if !ok {
		return false
	}
	r.lookupInto(ctx, r.OpenLibrary, sources.Query{Identifier: id}, m)
	return true
}

// tryTitleSearch seeds a fuzzy search from the embedded title, falling
// back to a first-page heuristic guess.
func (r *Resolver) tryTitleSearch(ctx context.Context, doc types.Document, m *merger) bool {
	seed := sources.CleanTitle(doc.Embedded.Title)
	if seed == "" && len(doc.Pages) > 0 {
		seed = identify.GuessTitle(doc.Pages[0])
	}
	if seed == "" {
		return false
	}

	r.logf("%s: no identifiers, searching by title %q", doc.Path, seed)
	r.lookupInto(ctx, r.semantic(), sources.Query{Title: seed}, m)
	return true
}

// pdfDateRe matches the year in a PDF date string like "D:20210317...".
var pdfDateRe = regexp.MustCompile(`^(?:D:)?(\d{4})`)

// tryEmbedded fills remaining gaps from the document's own metadata
// dictionary. Embedded values are the least trusted source.
func (r *Resolver) tryEmbedded(doc types.Document, m *merger) {
	emb := doc.Embedded
	if emb.IsEmpty() {
		return
	}

	rec := types.MetadataRecord{Source: types.SourceEmbedded}
	rec.AuthorSurname = sources.Surname(emb.Author)
	rec.Title = sources.CleanTitle(emb.Title)
	for _, date := range []string{emb.CreationDate, emb.ModDate} {
		if g := pdfDateRe.FindStringSubmatch(date); g != nil {
			rec.Year = sources.YearFromDateString(g[1])
			if rec.Year > 0 {
				break
			}
		}
	}

	if !rec.IsEmpty() {
		m.apply(rec)
	}
}

func (r *Resolver) semantic() sources.Adapter {
	if !r.Config.EnableSemanticScholar {
		return nil
	}
	return r.Semantic
}

// lookupInto performs one adapter lookup with bounded retries of
// retryable failures, and merges any answer. Nil adapters are skipped.
func (r *Resolver) lookupInto(ctx context.Context, a sources.Adapter, q sources.Query, m *merger) {
	if a == nil {
		return
	}

	retries := r.Config.MaxRetries
	if retries <= 0 {
		retries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		rec, err := a.Lookup(ctx, q)
		if err == nil {
			r.logf("%s(%s): author=%q year=%d title=%q",
				a.Name(), q, rec.AuthorSurname, rec.Year, rec.Title)
			m.apply(rec)
			return
		}

		f, ok := sources.AsFailure(err)
		if !ok || !f.Retryable() || attempt >= retries {
			r.logf("%s(%s): %v", a.Name(), q, err)
			return
		}

		r.logf("%s(%s): %v, retrying", a.Name(), q, err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(retryDelay * time.Duration(attempt+1)):
		}
	}
}

func (r *Resolver) logf(format string, args ...any) {
	if r.Verbose == nil {
		return
	}
	fmt.Fprintf(r.Verbose, format+"\n", args...)
}

func dropKind(ids []types.Identifier, kind types.IdentifierKind) []types.Identifier {
	kept := ids[:0]
	for _, id := range ids {
		if id.Kind != kind {
			kept = append(kept, id)
		}
	}
	return kept
}
