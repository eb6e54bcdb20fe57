// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package organize

import (
	"context"
	"fmt"
	"io"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/shelfmark/internal/resolve"
	"github.com/pdiddy/shelfmark/pkg/types"
)

const defaultWorkers = 4

// Pipeline runs extract, resolve, and organize over a batch of documents
// with a bounded worker pool. One document's failure never stops the
// batch.
type Pipeline struct {
	// Extract reads one PDF into a Document.
	Extract func(path string) (types.Document, error)

	Resolver  *resolve.Resolver
	Organizer *Organizer

	// Workers bounds concurrent documents (default 4). Source pacing is
	// independent: budgets are shared across workers.
	Workers int

	// LockPath, when set, is an advisory lock taken for the whole run so
	// two invocations cannot organize the same directory at once.
	LockPath string

	// Out, when non-nil, receives progress lines.
	Out io.Writer
}

// Stats summarizes one batch run.
type Stats struct {
	Processed      int `json:"processed" yaml:"processed"`
	Renamed        int `json:"renamed" yaml:"renamed"`
	NeedsAttention int `json:"needs_attention" yaml:"needs_attention"`
	Failed         int `json:"failed" yaml:"failed"`
}

// Run processes every path and returns per-document results in input
// order. The returned error covers batch-level problems only; individual
// document failures are reported in their Result.
func (p *Pipeline) Run(ctx context.Context, paths []string) ([]Result, Stats, error) {
	if p.LockPath != "" {
		lock := flock.New(p.LockPath)
		locked, err := lock.TryLock()
		if err != nil {
			return nil, Stats{}, fmt.Errorf("acquiring lock: %w", err)
		}
		if !locked {
			return nil, Stats{}, fmt.Errorf("another run is already organizing this directory (lock %s)", p.LockPath)
		}
		defer lock.Unlock()
	}

	workers := p.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}

	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if gctx.Err() != nil {
				results[i] = Result{
					OriginalPath: path,
					NewPath:      path,
					Outcome:      types.OutcomeError,
					Err:          gctx.Err(),
				}
				return nil
			}
			results[i] = p.processOne(gctx, path)
			return nil
		})
	}
	g.Wait()

	var stats Stats
	stats.Processed = len(results)
	for _, res := range results {
		switch res.Outcome {
		case types.OutcomeRenamed:
			stats.Renamed++
		case types.OutcomeNeedsAttention:
			stats.NeedsAttention++
		default:
			stats.Failed++
		}
	}
	return results, stats, nil
}

// processOne runs the full pipeline for a single document. Extraction
// failures still go through Apply so the file is backed up and routed to
// the attention folder rather than left behind silently.
func (p *Pipeline) processOne(ctx context.Context, path string) Result {
	doc, err := p.Extract(path)
	if err != nil {
		if p.Out != nil {
			fmt.Fprintf(p.Out, "%s: extraction failed: %v\n", path, err)
		}
		doc = types.Document{Path: path}
		return p.Organizer.Apply(doc, types.ResolutionResult{
			Reason: types.ReasonExtractionError,
		})
	}

	res := p.Resolver.Resolve(ctx, doc)
	return p.Organizer.Apply(doc, res)
}
