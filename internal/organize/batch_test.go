// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package organize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"github.com/pdiddy/shelfmark/internal/resolve"
	"github.com/pdiddy/shelfmark/internal/sources"
	"github.com/pdiddy/shelfmark/pkg/types"
)

// stubAdapter answers every lookup from a fixed table keyed by identifier
// value.
type stubAdapter struct {
	name    types.SourceKind
	answers map[string]types.MetadataRecord
}

func (s *stubAdapter) Name() types.SourceKind { return s.name }

func (s *stubAdapter) Lookup(_ context.Context, q sources.Query) (types.MetadataRecord, error) {
	rec, ok := s.answers[q.Identifier.Value]
	if !ok {
		return types.MetadataRecord{}, &sources.Failure{Kind: sources.NotFound, Source: s.name}
	}
	rec.Source = s.name
	return rec, nil
}

func newPipeline(t *testing.T, pages map[string]string) (*Pipeline, *stubAdapter) {
	t.Helper()
	cr := &stubAdapter{name: types.SourceCrossRef, answers: map[string]types.MetadataRecord{}}
	return &Pipeline{
		Extract: func(path string) (types.Document, error) {
			text, ok := pages[filepath.Base(path)]
			if !ok {
				return types.Document{}, errors.New("unreadable")
			}
			return types.Document{Path: path, Pages: []string{text}}, nil
		},
		Resolver:  &resolve.Resolver{CrossRef: cr},
		Organizer: &Organizer{},
	}, cr
}

func TestPipelineEndToEnd(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writePDF(t, dir, "scan1.pdf", "x"),
		writePDF(t, dir, "scan2.pdf", "y"),
	}

	p, cr := newPipeline(t, map[string]string{
		"scan1.pdf": "see doi:10.1000/xyz123 for details",
		"scan2.pdf": "no identifiers here at all",
	})
	cr.answers["10.1000/xyz123"] = types.MetadataRecord{
		AuthorSurname: "Doe", Year: 2021, Title: "A Study",
	}

	results, stats, err := p.Run(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d", len(results))
	}

	// Results come back in input order regardless of worker scheduling.
	if results[0].OriginalPath != paths[0] || results[1].OriginalPath != paths[1] {
		t.Errorf("results out of order: %v", results)
	}

	if results[0].Outcome != types.OutcomeRenamed {
		t.Errorf("scan1 outcome = %q, err = %v", results[0].Outcome, results[0].Err)
	}
	want := filepath.Join(dir, "Doe - 2021 - A Study.pdf")
	if results[0].NewPath != want {
		t.Errorf("scan1 NewPath = %q, want %q", results[0].NewPath, want)
	}

	if results[1].Outcome != types.OutcomeNeedsAttention {
		t.Errorf("scan2 outcome = %q", results[1].Outcome)
	}
	if results[1].Reason != types.ReasonNoIdentifierFound {
		t.Errorf("scan2 reason = %q", results[1].Reason)
	}

	if stats != (Stats{Processed: 2, Renamed: 1, NeedsAttention: 1}) {
		t.Errorf("stats = %+v", stats)
	}
}

func TestPipelineExtractionFailureIsIsolated(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writePDF(t, dir, "broken.pdf", "not really a pdf"),
		writePDF(t, dir, "good.pdf", "z"),
	}

	p, cr := newPipeline(t, map[string]string{
		"good.pdf": "doi:10.1000/abc",
	})
	cr.answers["10.1000/abc"] = types.MetadataRecord{
		AuthorSurname: "Roe", Year: 2019, Title: "Fine",
	}

	results, stats, err := p.Run(context.Background(), paths)
	if err != nil {
		t.Fatal(err)
	}

	if results[0].Outcome != types.OutcomeNeedsAttention {
		t.Errorf("broken outcome = %q", results[0].Outcome)
	}
	if results[0].Reason != types.ReasonExtractionError {
		t.Errorf("broken reason = %q", results[0].Reason)
	}
	if results[0].BackupPath == "" {
		t.Error("broken file was not backed up before moving")
	}
	if results[1].Outcome != types.OutcomeRenamed {
		t.Errorf("good outcome = %q, err = %v", results[1].Outcome, results[1].Err)
	}
	if stats.Failed != 0 {
		t.Errorf("stats = %+v, extraction failures route to attention", stats)
	}
}

func TestPipelineLockExcludesSecondRun(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, ".shelfmark.lock")

	held := flock.New(lockPath)
	locked, err := held.TryLock()
	if err != nil || !locked {
		t.Fatalf("holding lock: locked=%v err=%v", locked, err)
	}
	defer held.Unlock()

	p, _ := newPipeline(t, nil)
	p.LockPath = lockPath

	if _, _, err := p.Run(context.Background(), nil); err == nil {
		t.Fatal("second run acquired the held lock")
	}
}

func TestPipelineAuditTrailEnablesRecovery(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "scan.pdf", "original bytes")

	audit, err := OpenAudit(filepath.Join(dir, ".pdf_backup"))
	if err != nil {
		t.Fatal(err)
	}
	defer audit.Close()

	p, cr := newPipeline(t, map[string]string{"scan.pdf": "doi:10.1000/q"})
	p.Organizer.Audit = audit
	cr.answers["10.1000/q"] = types.MetadataRecord{AuthorSurname: "Doe", Year: 2021, Title: "T"}

	if _, _, err := p.Run(context.Background(), []string{path}); err != nil {
		t.Fatal(err)
	}

	entries, err := audit.History(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d", len(entries))
	}
	e := entries[0]

	// The trail names both the backup and the new location, enough to
	// restore the original by hand.
	backup, err := os.ReadFile(e.BackupPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(backup) != "original bytes" {
		t.Error("backup does not match original content")
	}
	if _, err := os.Stat(e.NewPath); err != nil {
		t.Errorf("new path from audit trail missing: %v", err)
	}
}
