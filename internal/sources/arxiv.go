// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/shelfmark/internal/httputil"
	"github.com/pdiddy/shelfmark/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// Arxiv resolves arXiv IDs against the arXiv Atom API.
type Arxiv struct {
	Client     *http.Client
	UserAgent  string
	Budget     *Budget
	MaxRetries int
}

// Name returns the adapter identifier.
func (a *Arxiv) Name() types.SourceKind { return types.SourceArxiv }

// Lookup resolves an arXiv ID to a metadata record.
func (a *Arxiv) Lookup(ctx context.Context, q Query) (types.MetadataRecord, error) {
	if q.Identifier.Kind != types.KindArxiv {
		return types.MetadataRecord{}, failf(a.Name(), NotFound, "arxiv only resolves arXiv IDs, got %s", q)
	}

	if err := a.Budget.Wait(ctx); err != nil {
		return types.MetadataRecord{}, err
	}

	id := stripVersion(q.Identifier.Value)
	reqURL := arxivAPIBase + "?id_list=" + url.QueryEscape(id) + "&max_results=1"

	resp, err := httputil.Get(ctx, a.Client, reqURL, a.UserAgent, nil, a.MaxRetries)
	if err != nil {
		if ctx.Err() != nil {
			return types.MetadataRecord{}, ctx.Err()
		}
		return types.MetadataRecord{}, failf(a.Name(), NetworkError, "request: %w", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(a.Name(), resp.StatusCode); err != nil {
		return types.MetadataRecord{}, err
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return types.MetadataRecord{}, failf(a.Name(), MalformedResponse, "parsing Atom feed: %w", err)
	}

	// The API answers an unknown ID with an empty feed or an error entry
	// without authors, not with an HTTP error.
	if len(feed.Entries) == 0 {
		return types.MetadataRecord{}, failf(a.Name(), NotFound, "no entry for %s", id)
	}
	entry := feed.Entries[0]

	rec := types.MetadataRecord{Source: types.SourceArxiv}
	if len(entry.Authors) > 0 {
		rec.AuthorSurname = Surname(strings.TrimSpace(entry.Authors[0].Name))
	}
	rec.Title = CleanTitle(entry.Title)
	if t, parseErr := time.Parse(time.RFC3339, entry.Published); parseErr == nil {
		rec.Year = t.Year()
	}

	if rec.AuthorSurname == "" && rec.Year == 0 {
		return types.MetadataRecord{}, failf(a.Name(), NotFound, "no entry for %s", id)
	}
	return rec, nil
}

// stripVersion removes a trailing "vN" from a modern arXiv ID.
func stripVersion(id string) string {
	v := strings.LastIndexByte(id, 'v')
	if v <= 0 || v == len(id)-1 {
		return id
	}
	for _, r := range id[v+1:] {
		if r < '0' || r > '9' {
			return id
		}
	}
	return id[:v]
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}
