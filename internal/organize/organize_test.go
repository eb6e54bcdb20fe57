// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package organize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/pdiddy/shelfmark/pkg/types"
)

func writePDF(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func resolved(surname string, year int, title string) types.ResolutionResult {
	return types.ResolutionResult{
		Record: types.MetadataRecord{
			AuthorSurname: surname,
			Year:          year,
			Title:         title,
			Source:        types.SourceCrossRef,
		},
	}
}

func TestApplyRenamesResolvedDocument(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "scan0001.pdf", "%PDF-1.4 content")

	o := &Organizer{}
	res := o.Apply(types.Document{Path: path}, resolved("Doe", 2021, "A Study"))

	if res.Outcome != types.OutcomeRenamed {
		t.Fatalf("Outcome = %q, err = %v", res.Outcome, res.Err)
	}
	want := filepath.Join(dir, "Doe - 2021 - A Study.pdf")
	if res.NewPath != want {
		t.Errorf("NewPath = %q, want %q", res.NewPath, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("renamed file missing: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("original still present")
	}
}

func TestApplyBacksUpBeforeRenaming(t *testing.T) {
	dir := t.TempDir()
	const content = "%PDF-1.4 original bytes"
	path := writePDF(t, dir, "paper.pdf", content)

	o := &Organizer{}
	res := o.Apply(types.Document{Path: path}, resolved("Doe", 2021, "T"))

	if res.BackupPath == "" {
		t.Fatal("no backup path recorded")
	}
	if filepath.Dir(res.BackupPath) != filepath.Join(dir, ".pdf_backup") {
		t.Errorf("backup in %q", res.BackupPath)
	}
	if !strings.HasSuffix(res.BackupPath, "_paper.pdf") {
		t.Errorf("backup name %q not timestamped", filepath.Base(res.BackupPath))
	}
	got, err := os.ReadFile(res.BackupPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content {
		t.Error("backup is not byte-identical to the original")
	}
}

func TestApplyFailedBackupLeavesOriginalUntouched(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "paper.pdf", "content")

	// A file standing where the backup directory should go makes the
	// backup fail.
	if err := os.WriteFile(filepath.Join(dir, ".pdf_backup"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	o := &Organizer{}
	res := o.Apply(types.Document{Path: path}, resolved("Doe", 2021, "T"))

	if res.Outcome != types.OutcomeError {
		t.Fatalf("Outcome = %q, want error", res.Outcome)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("original was touched: %v", err)
	}
}

func TestApplyCollisionSuffix(t *testing.T) {
	dir := t.TempDir()
	writePDF(t, dir, "Doe - 2021 - T.pdf", "earlier")
	path := writePDF(t, dir, "other.pdf", "later")

	o := &Organizer{}
	res := o.Apply(types.Document{Path: path}, resolved("Doe", 2021, "T"))

	want := filepath.Join(dir, "Doe - 2021 - T (1).pdf")
	if res.NewPath != want {
		t.Errorf("NewPath = %q, want %q", res.NewPath, want)
	}
	got, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "later" {
		t.Error("collision overwrote the existing file")
	}
}

func TestApplyConcurrentCollisionsKeepEveryFile(t *testing.T) {
	dir := t.TempDir()

	const n = 8
	paths := make([]string, n)
	for i := range paths {
		paths[i] = writePDF(t, dir, fmt.Sprintf("scan%d.pdf", i), fmt.Sprintf("content %d", i))
	}

	// One shared Organizer, as in a batch run: every document normalizes
	// to the same name, so all but one must get a suffix and no rename
	// may land on top of another.
	o := &Organizer{}
	results := make([]Result, n)
	var wg sync.WaitGroup
	for i, path := range paths {
		i, path := i, path
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = o.Apply(types.Document{Path: path}, resolved("Doe", 2021, "T"))
		}()
	}
	wg.Wait()

	seen := make(map[string]bool)
	for i, res := range results {
		if res.Outcome != types.OutcomeRenamed {
			t.Fatalf("document %d outcome = %q, err = %v", i, res.Outcome, res.Err)
		}
		if seen[res.NewPath] {
			t.Fatalf("two documents renamed to %q", res.NewPath)
		}
		seen[res.NewPath] = true

		got, err := os.ReadFile(res.NewPath)
		if err != nil {
			t.Fatalf("document %d missing at %q: %v", i, res.NewPath, err)
		}
		if want := fmt.Sprintf("content %d", i); string(got) != want {
			t.Errorf("document %d at %q holds %q, want %q", i, res.NewPath, got, want)
		}
	}
}

func TestApplyAlreadyNamedIsNoOp(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "Doe - 2021 - T.pdf", "content")

	o := &Organizer{}
	res := o.Apply(types.Document{Path: path}, resolved("Doe", 2021, "T"))

	if res.Outcome != types.OutcomeRenamed {
		t.Fatalf("Outcome = %q, err = %v", res.Outcome, res.Err)
	}
	if res.NewPath != path {
		t.Errorf("NewPath = %q, want unchanged %q", res.NewPath, path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file missing after no-op rename: %v", err)
	}
}

func TestApplyUnresolvedGoesToAttention(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "mystery.pdf", "content")

	o := &Organizer{}
	res := o.Apply(types.Document{Path: path}, types.ResolutionResult{
		Reason: types.ReasonNoIdentifierFound,
	})

	if res.Outcome != types.OutcomeNeedsAttention {
		t.Fatalf("Outcome = %q, err = %v", res.Outcome, res.Err)
	}
	want := filepath.Join(dir, "needs-attention", "mystery.pdf")
	if res.NewPath != want {
		t.Errorf("NewPath = %q, want %q", res.NewPath, want)
	}
	if res.Reason != types.ReasonNoIdentifierFound {
		t.Errorf("Reason = %q", res.Reason)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("moved file missing: %v", err)
	}
}

func TestApplyDryRunTouchesNothing(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "paper.pdf", "content")

	o := &Organizer{Config: types.OrganizeConfig{DryRun: true}}
	res := o.Apply(types.Document{Path: path}, resolved("Doe", 2021, "T"))

	if res.Outcome != types.OutcomeRenamed {
		t.Fatalf("Outcome = %q", res.Outcome)
	}
	if res.BackupPath != "" {
		t.Error("dry run wrote a backup")
	}
	want := filepath.Join(dir, "Doe - 2021 - T.pdf")
	if res.NewPath != want {
		t.Errorf("NewPath = %q, want computed target %q", res.NewPath, want)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("dry run moved the file: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dry run created files: %v", entries)
	}
}

func TestApplySortMode(t *testing.T) {
	dir := t.TempDir()
	good := writePDF(t, dir, "good.pdf", "a")
	bad := writePDF(t, dir, "bad.pdf", "b")

	o := &Organizer{Config: types.OrganizeConfig{Sort: true}}

	res := o.Apply(types.Document{Path: good}, resolved("Doe", 2021, "T"))
	want := filepath.Join(dir, "Renamed-PDFs", "Complete", "Doe - 2021 - T.pdf")
	if res.NewPath != want {
		t.Errorf("NewPath = %q, want %q", res.NewPath, want)
	}

	res = o.Apply(types.Document{Path: bad}, types.ResolutionResult{Reason: types.ReasonAllSourcesFailed})
	want = filepath.Join(dir, "Renamed-PDFs", "Incomplete", "bad.pdf")
	if res.NewPath != want {
		t.Errorf("NewPath = %q, want %q", res.NewPath, want)
	}
}

func TestApplyCustomDirs(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "paper.pdf", "content")

	o := &Organizer{Config: types.OrganizeConfig{
		BackupDir:    "backups",
		AttentionDir: "review",
	}}
	res := o.Apply(types.Document{Path: path}, types.ResolutionResult{
		Reason: types.ReasonAllSourcesFailed,
	})

	if filepath.Dir(res.BackupPath) != filepath.Join(dir, "backups") {
		t.Errorf("backup at %q", res.BackupPath)
	}
	if filepath.Dir(res.NewPath) != filepath.Join(dir, "review") {
		t.Errorf("moved to %q", res.NewPath)
	}
}
