// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package organize

import (
	"testing"

	"github.com/pdiddy/shelfmark/pkg/types"
)

func TestAuditRecordAndHistory(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenAudit(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if store.RunID() == "" {
		t.Error("empty run ID")
	}

	err = store.Record(Result{
		OriginalPath: "/papers/scan.pdf",
		NewPath:      "/papers/Doe - 2021 - T.pdf",
		BackupPath:   "/papers/.pdf_backup/20210317_120000_scan.pdf",
		Outcome:      types.OutcomeRenamed,
		Source:       types.SourceCrossRef,
	})
	if err != nil {
		t.Fatal(err)
	}

	entries, err := store.History("/papers/scan.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.RunID != store.RunID() {
		t.Errorf("RunID = %q, want %q", e.RunID, store.RunID())
	}
	if e.NewPath != "/papers/Doe - 2021 - T.pdf" || e.Outcome != types.OutcomeRenamed {
		t.Errorf("entry = %+v", e)
	}
}

func TestAuditHistoryNewestFirst(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenAudit(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	for _, newPath := range []string{"/p/first.pdf", "/p/second.pdf"} {
		if err := store.Record(Result{
			OriginalPath: "/p/doc.pdf",
			NewPath:      newPath,
			Outcome:      types.OutcomeRenamed,
		}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := store.History("/p/doc.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].NewPath != "/p/second.pdf" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestAuditSurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := OpenAudit(dir)
	if err != nil {
		t.Fatal(err)
	}
	firstRun := store.RunID()
	if err := store.Record(Result{
		OriginalPath: "/p/doc.pdf",
		NewPath:      "/p/renamed.pdf",
		Outcome:      types.OutcomeRenamed,
	}); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = OpenAudit(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if store.RunID() == firstRun {
		t.Error("reopened store reused the run ID")
	}
	entries, err := store.History("/p/doc.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].RunID != firstRun {
		t.Errorf("entries = %+v", entries)
	}
}

func TestNilAuditStoreIsNoOp(t *testing.T) {
	var s *AuditStore
	if err := s.Record(Result{}); err != nil {
		t.Errorf("Record on nil store: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close on nil store: %v", err)
	}
	if s.RunID() != "" {
		t.Error("RunID on nil store")
	}
}
