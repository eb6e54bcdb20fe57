// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/pdiddy/shelfmark/internal/httputil"
	"github.com/pdiddy/shelfmark/pkg/types"
)

// semanticAPIBase is the Semantic Scholar graph endpoint. Declared as a
// var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper"

const semanticFields = "title,authors,year,publicationDate,externalIds"

// SemanticScholar resolves DOIs, arXiv IDs, and title searches against the
// Semantic Scholar API. It is the only adapter that serves more than one
// stage of the pipeline.
type SemanticScholar struct {
	Client    *http.Client
	UserAgent string
	APIKey    string

	// TitleThreshold is the minimum title similarity for accepting a
	// search hit (default 0.85 when zero).
	TitleThreshold float64

	Budget     *Budget
	MaxRetries int
}

// Name returns the adapter identifier.
func (s *SemanticScholar) Name() types.SourceKind { return types.SourceSemanticScholar }

// Lookup resolves an identifier directly, or searches by title and accepts
// the best hit only when its title is close enough to the query.
func (s *SemanticScholar) Lookup(ctx context.Context, q Query) (types.MetadataRecord, error) {
	if q.Title != "" {
		return s.searchTitle(ctx, q.Title)
	}

	var path string
	switch q.Identifier.Kind {
	case types.KindDOI:
		path = url.PathEscape(q.Identifier.Value)
	case types.KindArxiv:
		path = "arXiv:" + url.PathEscape(q.Identifier.Value)
	default:
		return types.MetadataRecord{}, failf(s.Name(), NotFound, "unsupported query %s", q)
	}

	reqURL := fmt.Sprintf("%s/%s?fields=%s", semanticAPIBase, path, semanticFields)
	var paper semanticPaper
	if err := s.get(ctx, reqURL, &paper); err != nil {
		return types.MetadataRecord{}, err
	}

	rec := s.toRecord(paper)
	if rec.IsEmpty() {
		return types.MetadataRecord{}, failf(s.Name(), NotFound, "no usable fields for %s", q)
	}
	return rec, nil
}

func (s *SemanticScholar) searchTitle(ctx context.Context, title string) (types.MetadataRecord, error) {
	params := url.Values{
		"query":  {title},
		"limit":  {"5"},
		"fields": {semanticFields},
	}
	reqURL := semanticAPIBase + "/search?" + params.Encode()

	var sr semanticSearchResponse
	if err := s.get(ctx, reqURL, &sr); err != nil {
		return types.MetadataRecord{}, err
	}

	threshold := s.TitleThreshold
	if threshold == 0 {
		threshold = 0.85
	}

	best := -1.0
	var bestPaper semanticPaper
	for _, p := range sr.Data {
		if sim := TitleSimilarity(title, p.Title); sim > best {
			best = sim
			bestPaper = p
		}
	}
	if best < threshold {
		return types.MetadataRecord{}, failf(s.Name(), NotFound,
			"no search hit within similarity threshold (best %.2f)", best)
	}

	rec := s.toRecord(bestPaper)
	rec.Source = types.SourceTitleSearch
	if rec.IsEmpty() {
		return types.MetadataRecord{}, failf(s.Name(), NotFound, "empty search hit")
	}
	return rec, nil
}

func (s *SemanticScholar) get(ctx context.Context, reqURL string, into any) error {
	if err := s.Budget.Wait(ctx); err != nil {
		return err
	}

	var headers map[string]string
	if s.APIKey != "" {
		headers = map[string]string{"x-api-key": s.APIKey}
	}

	resp, err := httputil.Get(ctx, s.Client, reqURL, s.UserAgent, headers, s.MaxRetries)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return failf(s.Name(), NetworkError, "request: %w", err)
	}
	defer resp.Body.Close()

	if err := classifyStatus(s.Name(), resp.StatusCode); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return failf(s.Name(), MalformedResponse, "parsing response: %w", err)
	}
	return nil
}

func (s *SemanticScholar) toRecord(p semanticPaper) types.MetadataRecord {
	rec := types.MetadataRecord{Source: types.SourceSemanticScholar}
	if len(p.Authors) > 0 {
		rec.AuthorSurname = Surname(p.Authors[0].Name)
	}
	rec.Title = CleanTitle(p.Title)
	if p.Year > 0 {
		rec.Year = p.Year
	} else if p.PublicationDate != "" {
		rec.Year = YearFromDateString(p.PublicationDate)
	}
	return rec
}

// Semantic Scholar API JSON structures.
type semanticSearchResponse struct {
	Total int             `json:"total"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID         string              `json:"paperId"`
	Title           string              `json:"title"`
	Year            int                 `json:"year"`
	PublicationDate string              `json:"publicationDate"`
	Authors         []semanticAuthor    `json:"authors"`
	ExternalIDs     semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}
