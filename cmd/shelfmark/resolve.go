// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/shelfmark/internal/pdf"
	"github.com/pdiddy/shelfmark/pkg/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <file.pdf>",
	Short: "Resolve one PDF's metadata without renaming anything",
	Long: `Resolve runs the full resolution pipeline over a single file and
prints the merged metadata, the identifiers found, and any conflicting
values that were discarded. The file is never modified.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	resolveCmd.Flags().Bool("verbose", false, "log each resolution stage")
	resolveCmd.Flags().Int("max-pages", 0, "pages scanned for identifiers (default 10)")
	resolveCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 30s)")
	resolveCmd.Flags().Bool("no-semantic-scholar", false, "disable the Semantic Scholar fallback and title search")
	resolveCmd.Flags().Bool("no-arxiv", false, "disable arXiv ID extraction and lookup")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	if maxPages <= 0 {
		maxPages = defaultMaxPages
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	noSemantic, _ := cmd.Flags().GetBool("no-semantic-scholar")
	noArxiv, _ := cmd.Flags().GetBool("no-arxiv")

	doc, err := pdf.Read(args[0], maxPages)
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	var verboseOut io.Writer
	if verbose {
		verboseOut = os.Stderr
	}

	resolver := newResolver(types.ResolveConfig{
		HTTPConfig:            types.HTTPConfig{Timeout: timeout},
		EnableSemanticScholar: !noSemantic,
		EnableArxiv:           !noArxiv,
		SemanticScholarAPIKey: secret("semantic-scholar-api-key"),
		CrossRefMailto:        secret("crossref-mailto"),
	}, verboseOut)

	result := resolver.Resolve(cmd.Context(), doc)

	out, err := yaml.Marshal(result)
	if err != nil {
		return err
	}
	os.Stdout.Write(out)

	if !result.Resolved() {
		return fmt.Errorf("unresolved: %s", result.Reason)
	}
	return nil
}
