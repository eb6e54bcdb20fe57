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

func swapOpenLibraryBase(t *testing.T, url string) {
	t.Helper()
	old := openLibraryAPIBase
	openLibraryAPIBase = url
	t.Cleanup(func() { openLibraryAPIBase = old })
}

func isbnQuery(isbn string) Query {
	return Query{Identifier: types.Identifier{Kind: types.KindISBN, Value: isbn}}
}

func TestOpenLibraryLookupMapsFields(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprint(w, `{"ISBN:9780306406157":{
			"title":"Flow Measurement Handbook",
			"publish_date":"September 2000",
			"authors":[{"name":"Roger C. Baker"}]
		}}`)
	}))
	defer ts.Close()
	swapOpenLibraryBase(t, ts.URL)

	o := &OpenLibrary{Client: ts.Client(), MaxRetries: 1}
	rec, err := o.Lookup(context.Background(), isbnQuery("9780306406157"))
	if err != nil {
		t.Fatalf("Lookup() error: %v", err)
	}
	if gotQuery != "bibkeys=ISBN%3A9780306406157&format=json&jscmd=data" {
		t.Errorf("query = %q", gotQuery)
	}
	if rec.AuthorSurname != "Baker" {
		t.Errorf("AuthorSurname = %q, want Baker", rec.AuthorSurname)
	}
	if rec.Year != 2000 {
		t.Errorf("Year = %d, want 2000", rec.Year)
	}
	if rec.Title != "Flow Measurement Handbook" {
		t.Errorf("Title = %q", rec.Title)
	}
	if rec.Source != types.SourceOpenLibrary {
		t.Errorf("Source = %q", rec.Source)
	}
}

func TestOpenLibraryUnknownISBNIsNotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer ts.Close()
	swapOpenLibraryBase(t, ts.URL)

	o := &OpenLibrary{Client: ts.Client(), MaxRetries: 1}
	_, err := o.Lookup(context.Background(), isbnQuery("9780000000002"))
	f, ok := AsFailure(err)
	if !ok || f.Kind != NotFound {
		t.Fatalf("Lookup() error = %v, want NotFound failure", err)
	}
}

func TestOpenLibraryRejectsNonISBNQuery(t *testing.T) {
	o := &OpenLibrary{Client: http.DefaultClient}
	_, err := o.Lookup(context.Background(), doiQuery("10.1000/x"))
	f, ok := AsFailure(err)
	if !ok || f.Kind != NotFound {
		t.Fatalf("Lookup() error = %v, want NotFound failure", err)
	}
}
