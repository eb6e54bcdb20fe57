// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/pdiddy/shelfmark/internal/httputil"
	"github.com/pdiddy/shelfmark/pkg/types"
)

// crossrefAPIBase is the CrossRef works endpoint. Declared as a var so
// tests can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works/"

// CrossRef looks up DOIs against the CrossRef REST API.
type CrossRef struct {
	Client    *http.Client
	UserAgent string

	// Mailto joins the "polite pool"; CrossRef asks clients to identify
	// themselves with a contact address.
	Mailto string

	Budget     *Budget
	MaxRetries int
}

// Name returns the adapter identifier.
func (c *CrossRef) Name() types.SourceKind { return types.SourceCrossRef }

// Lookup resolves a DOI to a metadata record.
func (c *CrossRef) Lookup(ctx context.Context, q Query) (types.MetadataRecord, error) {
	if q.Identifier.Kind != types.KindDOI {
		return types.MetadataRecord{}, failf(c.Name(), NotFound, "crossref only resolves DOIs, got %s", q)
	}

	if err := c.Budget.Wait(ctx); err != nil {
		return types.MetadataRecord{}, err
	}

	reqURL := crossrefAPIBase + url.PathEscape(q.Identifier.Value)
	if c.Mailto != "" {
		reqURL += "?mailto=" + url.QueryEscape(c.Mailto)
	}

	resp, err := httputil.Get(ctx, c.Client, reqURL, c.UserAgent, nil, c.MaxRetries)
	if err != nil {
		if ctx.Err() != nil {
			return types.MetadataRecord{}, ctx.Err()
		}
		return types.MetadataRecord{}, failf(c.Name(), NetworkError, "request: %w", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(c.Name(), resp.StatusCode); err != nil {
		return types.MetadataRecord{}, err
	}

	var cr crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return types.MetadataRecord{}, failf(c.Name(), MalformedResponse, "parsing response: %w", err)
	}

	rec := types.MetadataRecord{Source: types.SourceCrossRef}
	if len(cr.Message.Author) > 0 {
		a := cr.Message.Author[0]
		if a.Family != "" {
			rec.AuthorSurname = a.Family
		} else {
			rec.AuthorSurname = Surname(a.Given)
		}
	}
	if len(cr.Message.Title) > 0 {
		rec.Title = CleanTitle(cr.Message.Title[0])
	}
	rec.Year = crossrefYear(cr.Message)

	if rec.IsEmpty() {
		return types.MetadataRecord{}, failf(c.Name(), NotFound, "no usable fields for %s", q)
	}
	return rec, nil
}

// crossrefYear prefers print publication over online, then the deposit
// creation date, mirroring how CrossRef orders its date assertions.
func crossrefYear(w crossrefWork) int {
	for _, d := range []crossrefDate{w.PublishedPrint, w.PublishedOnline, w.Created} {
		if len(d.DateParts) > 0 && len(d.DateParts[0]) > 0 {
			y := d.DateParts[0][0]
			if y >= 1000 && y <= 9999 {
				return y
			}
		}
	}
	return 0
}

// classifyStatus maps an HTTP status to a typed failure, or nil for 200.
func classifyStatus(source types.SourceKind, status int) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusNotFound:
		return failf(source, NotFound, "HTTP 404")
	case status == http.StatusTooManyRequests:
		return failf(source, RateLimited, "HTTP 429")
	case status >= 500:
		return failf(source, NetworkError, "HTTP %d", status)
	default:
		return failf(source, MalformedResponse, "HTTP %d", status)
	}
}

// CrossRef API JSON structures.
type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	Title           []string         `json:"title"`
	Author          []crossrefAuthor `json:"author"`
	PublishedPrint  crossrefDate     `json:"published-print"`
	PublishedOnline crossrefDate     `json:"published-online"`
	Created         crossrefDate     `json:"created"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}
