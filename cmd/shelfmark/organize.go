// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/shelfmark/internal/normalize"
	"github.com/pdiddy/shelfmark/internal/organize"
	"github.com/pdiddy/shelfmark/internal/pdf"
	"github.com/pdiddy/shelfmark/internal/report"
	"github.com/pdiddy/shelfmark/pkg/types"
)

const defaultMaxPages = 10

var organizeCmd = &cobra.Command{
	Use:   "organize [directory|files...]",
	Short: "Resolve and rename a directory of PDFs",
	Long: `Organize processes every PDF in a directory (or an explicit list of
files): text is extracted, identifiers are resolved against the metadata
sources, and each file is renamed to "Surname - Year - Title.pdf".

Unresolved files are moved to the needs-attention folder. Every file is
copied into the backup folder before anything else happens to it, and
every move is recorded in an audit database inside the backup folder.

Flags left unset fall back to the corresponding shelfmark.yaml keys
(extract.max_pages, resolve.source_priority, organize.backup_dir, ...).`,
	RunE: runOrganize,
}

func init() {
	registerOrganizeFlags(organizeCmd)
	rootCmd.AddCommand(organizeCmd)
}

func registerOrganizeFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("dry-run", false, "print planned renames without touching any file")
	cmd.Flags().Bool("sort", false, "move results into Renamed-PDFs/Complete and Renamed-PDFs/Incomplete")
	cmd.Flags().Bool("verbose", false, "log each resolution stage")
	cmd.Flags().Int("max-pages", 0, "pages scanned for identifiers (default 10)")
	cmd.Flags().Int("max-title-length", 0, "title length budget in filenames (default 70, max 120)")
	cmd.Flags().Int("workers", 0, "concurrent documents (default 4)")
	cmd.Flags().Int("max-retries", 0, "retries after rate-limit or network failures (default 2)")
	cmd.Flags().String("backup-dir", "", "backup folder (default .pdf_backup inside the directory)")
	cmd.Flags().String("attention-dir", "", "folder for unresolved files (default needs-attention)")
	cmd.Flags().String("colon-replace", "", `replacement for ":" in filenames (default " -")`)
	cmd.Flags().String("report", "", "write a YAML run report to this path")
	cmd.Flags().StringSlice("source-priority", nil, "resolution stage order (default doi,arxiv,isbn,title,embedded)")
	cmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	cmd.Flags().Duration("delay", 0, "minimum spacing between calls to one source (default 500ms)")
	cmd.Flags().Bool("no-semantic-scholar", false, "disable the Semantic Scholar fallback and title search")
	cmd.Flags().Bool("no-arxiv", false, "disable arXiv ID extraction and lookup")
}

// knownStages are the names accepted in a source priority list.
var knownStages = map[string]bool{
	"doi": true, "arxiv": true, "isbn": true, "title": true, "embedded": true,
}

// organizeSettings is the merged view of flags and configuration file.
type organizeSettings struct {
	dryRun     bool
	sortMode   bool
	verbose    bool
	noSemantic bool
	noArxiv    bool

	maxPages   int
	maxTitle   int
	workers    int
	maxRetries int

	backupDir    string
	attentionDir string
	colonRepl    string
	reportPath   string

	timeout time.Duration
	delay   time.Duration

	sourcePriority []string
}

// collectSettings merges flag values with the configuration file: an
// explicitly set flag wins, an unset one falls back to the matching
// shelfmark.yaml key, and package defaults apply last.
func collectSettings(cmd *cobra.Command) (organizeSettings, error) {
	var s organizeSettings

	s.dryRun, _ = cmd.Flags().GetBool("dry-run")
	s.sortMode, _ = cmd.Flags().GetBool("sort")
	s.verbose, _ = cmd.Flags().GetBool("verbose")
	s.reportPath, _ = cmd.Flags().GetString("report")

	s.noSemantic, _ = cmd.Flags().GetBool("no-semantic-scholar")
	if !cmd.Flags().Changed("no-semantic-scholar") && viper.IsSet("resolve.enable_semantic_scholar") {
		s.noSemantic = !viper.GetBool("resolve.enable_semantic_scholar")
	}
	s.noArxiv, _ = cmd.Flags().GetBool("no-arxiv")
	if !cmd.Flags().Changed("no-arxiv") && viper.IsSet("resolve.enable_arxiv") {
		s.noArxiv = !viper.GetBool("resolve.enable_arxiv")
	}

	s.maxPages, _ = cmd.Flags().GetInt("max-pages")
	if s.maxPages <= 0 {
		s.maxPages = viper.GetInt("extract.max_pages")
	}
	if s.maxPages <= 0 {
		s.maxPages = defaultMaxPages
	}

	s.maxTitle, _ = cmd.Flags().GetInt("max-title-length")
	if s.maxTitle <= 0 {
		s.maxTitle = viper.GetInt("organize.max_title_length")
	}
	s.workers, _ = cmd.Flags().GetInt("workers")
	if s.workers <= 0 {
		s.workers = viper.GetInt("organize.workers")
	}
	s.maxRetries, _ = cmd.Flags().GetInt("max-retries")
	if s.maxRetries <= 0 {
		s.maxRetries = viper.GetInt("resolve.max_retries")
	}

	s.backupDir, _ = cmd.Flags().GetString("backup-dir")
	if s.backupDir == "" {
		s.backupDir = viper.GetString("organize.backup_dir")
	}
	s.attentionDir, _ = cmd.Flags().GetString("attention-dir")
	if s.attentionDir == "" {
		s.attentionDir = viper.GetString("organize.attention_dir")
	}
	s.colonRepl, _ = cmd.Flags().GetString("colon-replace")
	if s.colonRepl == "" {
		s.colonRepl = viper.GetString("organize.colon_replacement")
	}

	s.timeout, _ = cmd.Flags().GetDuration("timeout")
	if s.timeout == 0 {
		s.timeout = viper.GetDuration("resolve.timeout")
	}
	s.delay, _ = cmd.Flags().GetDuration("delay")
	if s.delay == 0 {
		s.delay = viper.GetDuration("resolve.request_delay")
	}

	s.sourcePriority, _ = cmd.Flags().GetStringSlice("source-priority")
	if len(s.sourcePriority) == 0 {
		s.sourcePriority = viper.GetStringSlice("resolve.source_priority")
	}
	for _, stage := range s.sourcePriority {
		if !knownStages[stage] {
			return s, fmt.Errorf("unknown resolution stage %q (recognized: doi, arxiv, isbn, title, embedded)", stage)
		}
	}

	return s, nil
}

func runOrganize(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a directory or one or more PDF files")
	}

	s, err := collectSettings(cmd)
	if err != nil {
		return err
	}

	paths, dir, err := collectPDFs(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no PDF files found")
	}

	resolveCfg := types.ResolveConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout: s.timeout,
		},
		SourcePriority:        s.sourcePriority,
		RequestDelay:          s.delay,
		MaxRetries:            s.maxRetries,
		EnableSemanticScholar: !s.noSemantic,
		EnableArxiv:           !s.noArxiv,
		SemanticScholarAPIKey: secret("semantic-scholar-api-key"),
		CrossRefMailto:        secret("crossref-mailto"),
	}

	var verboseOut io.Writer
	if s.verbose {
		verboseOut = os.Stderr
	}

	organizer := &organize.Organizer{
		Config: types.OrganizeConfig{
			BackupDir:        s.backupDir,
			AttentionDir:     s.attentionDir,
			MaxTitleLength:   s.maxTitle,
			ColonReplacement: s.colonRepl,
			DryRun:           s.dryRun,
			Sort:             s.sortMode,
			Workers:          s.workers,
		},
		Norm: normalize.Normalizer{MaxTitleLen: s.maxTitle, ColonRepl: s.colonRepl},
		Out:  os.Stdout,
	}

	pipeline := &organize.Pipeline{
		Extract: func(path string) (types.Document, error) {
			return pdf.Read(path, s.maxPages)
		},
		Resolver:  newResolver(resolveCfg, verboseOut),
		Organizer: organizer,
		Workers:   s.workers,
		Out:       os.Stderr,
	}

	if !s.dryRun {
		backup := s.backupDir
		if backup == "" {
			backup = ".pdf_backup"
		}
		if !filepath.IsAbs(backup) {
			backup = filepath.Join(dir, backup)
		}

		audit, err := organize.OpenAudit(backup)
		if err != nil {
			return err
		}
		defer audit.Close()
		organizer.Audit = audit

		pipeline.LockPath = filepath.Join(backup, ".lock")
	}

	start := time.Now()
	results, stats, err := pipeline.Run(cmd.Context(), paths)
	if err != nil {
		return err
	}

	report.WriteTable(os.Stdout, results, stats)
	fmt.Fprintf(os.Stdout, "Finished in %s\n", time.Since(start).Round(time.Millisecond))

	if s.reportPath != "" {
		if err := report.WriteYAML(s.reportPath, results, stats); err != nil {
			return err
		}
	}

	if stats.Failed > 0 {
		return fmt.Errorf("%d document(s) failed", stats.Failed)
	}
	return nil
}

// collectPDFs expands the arguments into a sorted list of PDF paths and
// the directory the run operates on.
func collectPDFs(args []string) ([]string, string, error) {
	if len(args) == 1 {
		info, err := os.Stat(args[0])
		if err != nil {
			return nil, "", err
		}
		if info.IsDir() {
			entries, err := os.ReadDir(args[0])
			if err != nil {
				return nil, "", err
			}
			var paths []string
			for _, e := range entries {
				if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
					continue
				}
				paths = append(paths, filepath.Join(args[0], e.Name()))
			}
			sort.Strings(paths)
			return paths, args[0], nil
		}
	}

	var paths []string
	for _, arg := range args {
		if !strings.EqualFold(filepath.Ext(arg), ".pdf") {
			return nil, "", fmt.Errorf("%s is not a PDF", arg)
		}
		if _, err := os.Stat(arg); err != nil {
			return nil, "", err
		}
		paths = append(paths, arg)
	}
	sort.Strings(paths)
	return paths, filepath.Dir(paths[0]), nil
}
