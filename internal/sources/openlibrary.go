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

// openLibraryAPIBase is the Open Library books endpoint. Declared as a var
// so tests can substitute an httptest server.
var openLibraryAPIBase = "https://openlibrary.org/api/books"

// OpenLibrary resolves ISBNs against the Open Library books API.
type OpenLibrary struct {
	Client     *http.Client
	UserAgent  string
	Budget     *Budget
	MaxRetries int
}

// Name returns the adapter identifier.
func (o *OpenLibrary) Name() types.SourceKind { return types.SourceOpenLibrary }

// Lookup resolves an ISBN to a metadata record.
func (o *OpenLibrary) Lookup(ctx context.Context, q Query) (types.MetadataRecord, error) {
	if q.Identifier.Kind != types.KindISBN {
		return types.MetadataRecord{}, failf(o.Name(), NotFound, "openlibrary only resolves ISBNs, got %s", q)
	}

	if err := o.Budget.Wait(ctx); err != nil {
		return types.MetadataRecord{}, err
	}

	bibkey := "ISBN:" + q.Identifier.Value
	params := url.Values{
		"bibkeys": {bibkey},
		"format":  {"json"},
		"jscmd":   {"data"},
	}
	reqURL := openLibraryAPIBase + "?" + params.Encode()

	resp, err := httputil.Get(ctx, o.Client, reqURL, o.UserAgent, nil, o.MaxRetries)
	if err != nil {
		if ctx.Err() != nil {
			return types.MetadataRecord{}, ctx.Err()
		}
		return types.MetadataRecord{}, failf(o.Name(), NetworkError, "request: %w", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(o.Name(), resp.StatusCode); err != nil {
		return types.MetadataRecord{}, err
	}

	// The response is keyed by the requested bibkey; an unknown ISBN
	// yields an empty object, not a 404.
	var books map[string]openLibraryBook
	if err := json.NewDecoder(resp.Body).Decode(&books); err != nil {
		return types.MetadataRecord{}, failf(o.Name(), MalformedResponse, "parsing response: %w", err)
	}

	book, ok := books[bibkey]
	if !ok {
		return types.MetadataRecord{}, failf(o.Name(), NotFound, "no data for %s", bibkey)
	}

	rec := types.MetadataRecord{Source: types.SourceOpenLibrary}
	if len(book.Authors) > 0 {
		rec.AuthorSurname = Surname(book.Authors[0].Name)
	}
	rec.Title = CleanTitle(book.Title)
	rec.Year = YearFromDateString(book.PublishDate)

	if rec.IsEmpty() {
		return types.MetadataRecord{}, failf(o.Name(), NotFound, "no usable fields for %s", bibkey)
	}
	return rec, nil
}

// Open Library API JSON structures (jscmd=data shape).
type openLibraryBook struct {
	Title       string              `json:"title"`
	PublishDate string              `json:"publish_date"`
	Authors     []openLibraryAuthor `json:"authors"`
}

type openLibraryAuthor struct {
	Name string `json:"name"`
}
