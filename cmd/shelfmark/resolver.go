// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/shelfmark/internal/resolve"
	"github.com/pdiddy/shelfmark/internal/sources"
	"github.com/pdiddy/shelfmark/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultDelay     = 500 * time.Millisecond
	defaultUserAgent = "shelfmark/0.1"
)

// newResolver wires the source adapters with one shared pacing budget per
// source and returns a resolver for the given configuration.
func newResolver(cfg types.ResolveConfig, verbose io.Writer) *resolve.Resolver {
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.RequestDelay == 0 {
		cfg.RequestDelay = defaultDelay
	}

	client := &http.Client{Timeout: cfg.Timeout}

	crossref := &sources.CrossRef{
		Client:     client,
		UserAgent:  cfg.UserAgent,
		Mailto:     cfg.CrossRefMailto,
		Budget:     sources.NewBudget(cfg.RequestDelay),
		MaxRetries: cfg.MaxRetries,
	}
	semantic := &sources.SemanticScholar{
		Client:         client,
		UserAgent:      cfg.UserAgent,
		APIKey:         cfg.SemanticScholarAPIKey,
		TitleThreshold: cfg.TitleMatchThreshold,
		Budget:         sources.NewBudget(cfg.RequestDelay),
		MaxRetries:     cfg.MaxRetries,
	}
	arxiv := &sources.Arxiv{
		Client:     client,
		UserAgent:  cfg.UserAgent,
		Budget:     sources.NewBudget(cfg.RequestDelay),
		MaxRetries: cfg.MaxRetries,
	}
	openLibrary := &sources.OpenLibrary{
		Client:     client,
		UserAgent:  cfg.UserAgent,
		Budget:     sources.NewBudget(cfg.RequestDelay),
		MaxRetries: cfg.MaxRetries,
	}

	return &resolve.Resolver{
		CrossRef:    crossref,
		Semantic:    semantic,
		Arxiv:       arxiv,
		OpenLibrary: openLibrary,
		Config:      cfg,
		Verbose:     verbose,
	}
}
