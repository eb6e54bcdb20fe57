// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pdiddy/shelfmark/pkg/types"
)

func doiQuery(doi string) Query {
	return Query{Identifier: types.Identifier{Kind: types.KindDOI, Value: doi}}
}

func newCrossRef(ts *httptest.Server) *CrossRef {
	return &CrossRef{Client: ts.Client(), UserAgent: "test/0.1", MaxRetries: 1}
}

func swapCrossRefBase(t *testing.T, url string) {
	t.Helper()
	old := crossrefAPIBase
	crossrefAPIBase = url + "/"
	t.Cleanup(func() { crossrefAPIBase = old })
}

func TestCrossRefLookupMapsFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"message":{
			"title":["A <i>Study</i> of   Everything"],
			"author":[{"given":"Jane","family":"Doe"},{"given":"John","family":"Smith"}],
			"published-print":{"date-parts":[[2021,3,1]]},
			"created":{"date-parts":[[2020,12,9]]}
		}}`)
	}))
	defer ts.Close()
	swapCrossRefBase(t, ts.URL)

	rec, err := newCrossRef(ts).Lookup(context.Background(), doiQuery("10.1000/xyz123"))
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if rec.AuthorSurname != "Doe" {
		t.Errorf("AuthorSurname = %q, want Doe", rec.AuthorSurname)
	}
	if rec.Year != 2021 {
		t.Errorf("Year = %d, want 2021 (published-print preferred over created)", rec.Year)
	}
	if rec.Title != "A Study of Everything" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Source != types.SourceCrossRef {
		t.Errorf("Source = %q", rec.Source)
	}
	if rec.Completeness() != types.Complete {
		t.Errorf("Completeness() = %v, want Complete", rec.Completeness())
	}
}

func TestCrossRefYearFallsBackToCreated(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"message":{
			"title":["T"],
			"author":[{"family":"Doe"}],
			"created":{"date-parts":[[2019,1,1]]}
		}}`)
	}))
	defer ts.Close()
	swapCrossRefBase(t, ts.URL)

	rec, err := newCrossRef(ts).Lookup(context.Background(), doiQuery("10.1000/1"))
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if rec.Year != 2019 {
		t.Errorf("Year = %d, want 2019", rec.Year)
	}
}

func TestCrossRefFamilyMissingFallsBackToGiven(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"message":{"title":["T"],"author":[{"given":"Ada Lovelace"}]}}`)
	}))
	defer ts.Close()
	swapCrossRefBase(t, ts.URL)

	rec, err := newCrossRef(ts).Lookup(context.Background(), doiQuery("10.1000/1"))
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if rec.AuthorSurname != "Lovelace" {
		t.Errorf("AuthorSurname = %q, want Lovelace", rec.AuthorSurname)
	}
}

func TestCrossRefFailureKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   FailureKind
	}{
		{"not found", http.StatusNotFound, "", NotFound},
		{"server error", http.StatusInternalServerError, "", NetworkError},
		{"teapot", http.StatusTeapot, "", MalformedResponse},
		{"bad json", http.StatusOK, "{", MalformedResponse},
		{"empty message", http.StatusOK, `{"message":{}}`, NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer ts.Close()
			swapCrossRefBase(t, ts.URL)

			_, err := newCrossRef(ts).Lookup(context.Background(), doiQuery("10.1000/x"))
			f, ok := AsFailure(err)
			if !ok {
				t.Fatalf("Lookup() error = %v, want *Failure", err)
			}
			if f.Kind != tt.want {
				t.Errorf("Kind = %s, want %s", f.Kind, tt.want)
			}
		})
	}
}

func TestCrossRefRejectsNonDOIQuery(t *testing.T) {
	c := &CrossRef{Client: http.DefaultClient}
	_, err := c.Lookup(context.Background(), Query{Identifier: types.Identifier{Kind: types.KindISBN, Value: "9780306406157"}})
	f, ok := AsFailure(err)
	if !ok || f.Kind != NotFound {
		t.Fatalf("Lookup() error = %v, want NotFound failure", err)
	}
}

func TestCrossRefSendsMailto(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"message":{"title":["T"]}}`)
	}))
	defer ts.Close()
	swapCrossRefBase(t, ts.URL)

	c := newCrossRef(ts)
	c.Mailto = "ops@example.org"
	if _, err := c.Lookup(context.Background(), doiQuery("10.1000/x")); err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if gotQuery != "mailto=ops%40example.org" {
		t.Errorf("query = %q", gotQuery)
	}
}
