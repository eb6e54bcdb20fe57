// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package organize applies resolution results to the filesystem: every
// document is backed up, then renamed in place, sorted, or routed to the
// attention folder. No original file is modified before its backup copy
// is written and verified.
package organize

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/shelfmark/internal/normalize"
	"github.com/pdiddy/shelfmark/pkg/types"
)

const (
	defaultBackupDir    = ".pdf_backup"
	defaultAttentionDir = "needs-attention"
	sortedDir           = "Renamed-PDFs"
	sortedComplete      = "Complete"
	sortedIncomplete    = "Incomplete"

	backupStamp = "20060102_150405"
)

// Result is the terminal disposition of one document.
type Result struct {
	// OriginalPath is where the document started.
	OriginalPath string `json:"original_path" yaml:"original_path"`

	// NewPath is where it ended up. Equal to OriginalPath when nothing
	// moved.
	NewPath string `json:"new_path" yaml:"new_path"`

	// BackupPath is the verified backup copy, empty on dry runs.
	BackupPath string `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`

	Outcome types.Outcome       `json:"outcome" yaml:"outcome"`
	Reason  types.FailureReason `json:"reason,omitempty" yaml:"reason,omitempty"`
	Source  types.SourceKind    `json:"source,omitempty" yaml:"source,omitempty"`

	// Err is set when Outcome is OutcomeError.
	Err error `json:"-" yaml:"-"`
}

// Organizer moves documents according to their resolution results.
type Organizer struct {
	Config types.OrganizeConfig
	Norm   normalize.Normalizer
	Audit  *AuditStore

	// Out, when non-nil, receives a line per document.
	Out io.Writer

	// mu serializes target selection and rename. Batch workers share one
	// Organizer; without this, two documents normalizing to the same name
	// could both see the target as free and rename onto the same path.
	mu sync.Mutex
}

// Apply disposes of one document. The backup always happens first; a
// failed backup aborts with the original file untouched.
func (o *Organizer) Apply(doc types.Document, res types.ResolutionResult) Result {
	result := Result{
		OriginalPath: doc.Path,
		NewPath:      doc.Path,
		Reason:       res.Reason,
		Source:       res.Record.Source,
	}

	dir := filepath.Dir(doc.Path)

	if !o.Config.DryRun {
		backupPath, err := o.backup(doc.Path)
		if err != nil {
			result.Outcome = types.OutcomeError
			result.Err = err
			o.finish(&result)
			return result
		}
		result.BackupPath = backupPath
	}

	var target string
	if res.Resolved() {
		c := o.Norm.Components(res.Record.AuthorSurname, res.Record.Year, res.Record.Title)
		destDir := dir
		if o.Config.Sort {
			destDir = filepath.Join(dir, sortedDir, sortedComplete)
		}
		target = filepath.Join(destDir, c.Filename())
		result.Outcome = types.OutcomeRenamed
	} else {
		destDir := filepath.Join(dir, o.attentionDir())
		if o.Config.Sort {
			destDir = filepath.Join(dir, sortedDir, sortedIncomplete)
		}
		target = filepath.Join(destDir, filepath.Base(doc.Path))
		result.Outcome = types.OutcomeNeedsAttention
	}

	if o.Config.DryRun {
		result.NewPath = target
		o.logResult(result)
		return result
	}

	newPath, err := o.move(doc.Path, target)
	if err != nil {
		result.Outcome = types.OutcomeError
		result.Err = err
		o.finish(&result)
		return result
	}
	result.NewPath = newPath

	o.finish(&result)
	return result
}

func (o *Organizer) attentionDir() string {
	if o.Config.AttentionDir != "" {
		return o.Config.AttentionDir
	}
	return defaultAttentionDir
}

func (o *Organizer) backupDir(docDir string) string {
	d := o.Config.BackupDir
	if d == "" {
		d = defaultBackupDir
	}
	if filepath.IsAbs(d) {
		return d
	}
	return filepath.Join(docDir, d)
}

// backup copies the file into the backup folder under a timestamped name
// and verifies the copy is byte-complete before returning.
func (o *Organizer) backup(path string) (string, error) {
	dir := o.backupDir(filepath.Dir(path))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating backup directory: %w", err)
	}

	name := time.Now().Format(backupStamp) + "_" + filepath.Base(path)
	dst := filepath.Join(dir, name)

	if err := copyFile(path, dst); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("backing up %s: %w", filepath.Base(path), err)
	}
	return dst, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	written, err := io.Copy(out, in)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	if written != info.Size() {
		return fmt.Errorf("copy verification: wrote %d of %d bytes", written, info.Size())
	}
	return nil
}

// move renames src to target, appending " (N)" before the extension when
// the target already exists. Renaming a file onto itself is a no-op.
func (o *Organizer) move(src, target string) (string, error) {
	if src == target {
		return target, nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("creating destination directory: %w", err)
	}

	final := target
	ext := filepath.Ext(target)
	stem := strings.TrimSuffix(target, ext)
	for n := 1; ; n++ {
		if _, err := os.Stat(final); os.IsNotExist(err) {
			break
		} else if err != nil {
			return "", fmt.Errorf("checking destination: %w", err)
		}
		final = fmt.Sprintf("%s (%d)%s", stem, n, ext)
	}

	if err := os.Rename(src, final); err != nil {
		return "", fmt.Errorf("moving %s: %w", filepath.Base(src), err)
	}
	return final, nil
}

func (o *Organizer) finish(result *Result) {
	if err := o.Audit.Record(*result); err != nil && result.Err == nil {
		result.Err = err
	}
	o.logResult(*result)
}

func (o *Organizer) logResult(result Result) {
	if o.Out == nil {
		return
	}
	switch result.Outcome {
	case types.OutcomeRenamed:
		fmt.Fprintf(o.Out, "%s -> %s\n", result.OriginalPath, result.NewPath)
	case types.OutcomeNeedsAttention:
		fmt.Fprintf(o.Out, "%s -> %s (%s)\n", result.OriginalPath, result.NewPath, result.Reason)
	default:
		fmt.Fprintf(o.Out, "%s: %v\n", result.OriginalPath, result.Err)
	}
}
