// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report renders batch results for the terminal and as a YAML
// run report.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/shelfmark/internal/organize"
	"github.com/pdiddy/shelfmark/pkg/types"
)

// WriteTable renders one row per document plus a summary line.
func WriteTable(w io.Writer, results []organize.Result, stats organize.Stats) {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"File", "Outcome", "New Name", "Source"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
	})

	for _, res := range results {
		tw.AppendRow(table.Row{
			filepath.Base(res.OriginalPath),
			outcomeLabel(res),
			newName(res),
			string(res.Source),
		})
	}
	fmt.Fprintln(w, tw.Render())

	fmt.Fprintf(w, "%d processed: %d renamed, %d need attention, %d failed\n",
		stats.Processed, stats.Renamed, stats.NeedsAttention, stats.Failed)
}

func outcomeLabel(res organize.Result) string {
	switch res.Outcome {
	case types.OutcomeRenamed:
		return "renamed"
	case types.OutcomeNeedsAttention:
		return fmt.Sprintf("attention (%s)", res.Reason)
	default:
		return fmt.Sprintf("error: %v", res.Err)
	}
}

func newName(res organize.Result) string {
	if res.NewPath == res.OriginalPath {
		return ""
	}
	return filepath.Base(res.NewPath)
}

// Report is the YAML document written by WriteYAML.
type Report struct {
	GeneratedAt time.Time         `yaml:"generated_at"`
	Stats       organize.Stats    `yaml:"stats"`
	Documents   []organize.Result `yaml:"documents"`
}

// WriteYAML writes a machine-readable run report to path.
func WriteYAML(path string, results []organize.Result, stats organize.Stats) error {
	rep := Report{
		GeneratedAt: time.Now().UTC(),
		Stats:       stats,
		Documents:   results,
	}

	data, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}
