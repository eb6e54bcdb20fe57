// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources queries external bibliographic APIs and maps their
// responses into the canonical MetadataRecord shape. Each adapter
// implements the same Lookup capability; the resolver selects among them
// by a priority table, never by inspecting concrete types.
package sources

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/pdiddy/shelfmark/pkg/types"
)

// Query is one lookup request: either an identifier or a title, never both.
type Query struct {
	Identifier types.Identifier
	Title      string
}

// String renders the query for diagnostics.
func (q Query) String() string {
	if q.Title != "" {
		return fmt.Sprintf("title:%q", q.Title)
	}
	return fmt.Sprintf("%s:%s", q.Identifier.Kind, q.Identifier.Value)
}

// Adapter is the uniform lookup capability over one external source.
// Lookup returns either a MetadataRecord or a *Failure; "not found" is a
// normal result, expressed as a Failure of kind NotFound, never a panic.
type Adapter interface {
	Name() types.SourceKind
	Lookup(ctx context.Context, q Query) (types.MetadataRecord, error)
}

// FailureKind classifies adapter failures for the resolver's retry logic.
type FailureKind int

const (
	// NotFound is terminal for an adapter+query pair.
	NotFound FailureKind = iota

	// RateLimited means the source pushed back; retryable with backoff.
	RateLimited

	// NetworkError covers transport failures and 5xx responses; retryable.
	NetworkError

	// MalformedResponse means the source answered with something the
	// adapter could not map; terminal.
	MalformedResponse
)

func (k FailureKind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case RateLimited:
		return "rate_limited"
	case NetworkError:
		return "network_error"
	default:
		return "malformed_response"
	}
}

// Failure is the typed error every adapter returns on an unsuccessful lookup.
type Failure struct {
	Kind   FailureKind
	Source types.SourceKind
	Err    error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %s: %v", f.Source, f.Kind, f.Err)
	}
	return fmt.Sprintf("%s: %s", f.Source, f.Kind)
}

func (f *Failure) Unwrap() error { return f.Err }

// Retryable reports whether the resolver should retry this failure.
func (f *Failure) Retryable() bool {
	return f.Kind == RateLimited || f.Kind == NetworkError
}

// AsFailure extracts a *Failure from an error chain.
func AsFailure(err error) (*Failure, bool) {
	var f *Failure
	ok := errors.As(err, &f)
	return f, ok
}

func failf(source types.SourceKind, kind FailureKind, format string, args ...any) error {
	return &Failure{Kind: kind, Source: source, Err: fmt.Errorf(format, args...)}
}

// markupRe strips HTML/JATS tags sources embed in titles and abstracts.
var markupRe = regexp.MustCompile(`<[^>]+>`)

// latexRe strips simple LaTeX commands like \textit{...} left in titles.
var latexRe = regexp.MustCompile(`\\[a-zA-Z]+\{([^}]*)\}`)

// CleanTitle removes source markup and collapses whitespace.
func CleanTitle(title string) string {
	title = markupRe.ReplaceAllString(title, "")
	title = latexRe.ReplaceAllString(title, "$1")
	title = strings.NewReplacer("{", "", "}", "", "$", "").Replace(title)
	return strings.Join(strings.Fields(title), " ")
}

// yearRe finds a plausible four-digit publication year in a date string.
var yearRe = regexp.MustCompile(`\b(1[4-9]\d{2}|20\d{2})\b`)

// YearFromDateString pulls a four-digit year out of a free-form date
// ("July 7, 2021", "2021-07-07"). Returns 0 when none is present.
func YearFromDateString(date string) int {
	m := yearRe.FindString(date)
	if m == "" {
		return 0
	}
	y := 0
	for _, r := range m {
		y = y*10 + int(r-'0')
	}
	return y
}
