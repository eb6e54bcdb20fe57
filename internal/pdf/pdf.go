// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdf reads page text and embedded metadata from PDF files via
// pdfcpu. It is the only package that touches PDF internals; the rest of
// the pipeline consumes the resulting Document.
package pdf

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pdiddy/shelfmark/pkg/types"
)

// Read opens the PDF at path and returns a Document holding the text of up
// to maxPages pages plus the info-dictionary metadata. A file pdfcpu cannot
// parse is an extraction error for the whole document.
func Read(path string, maxPages int) (types.Document, error) {
	doc := types.Document{Path: path}

	f, err := os.Open(path)
	if err != nil {
		return doc, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return doc, fmt.Errorf("reading PDF %s: %w", path, err)
	}

	doc.Embedded = embeddedMeta(ctx)

	pages := ctx.PageCount
	if maxPages > 0 && pages > maxPages {
		pages = maxPages
	}
	for pageNr := 1; pageNr <= pages; pageNr++ {
		doc.Pages = append(doc.Pages, pageText(ctx, pageNr))
	}

	return doc, nil
}

// pageText extracts text from a single page's content stream. Extraction
// failures yield an empty page, not an error; a partially readable document
// is still worth resolving.
func pageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return textFromContentStream(data)
}

// embeddedMeta pulls the document information dictionary, if present.
func embeddedMeta(ctx *model.Context) types.EmbeddedMeta {
	var meta types.EmbeddedMeta
	if ctx.Info == nil {
		return meta
	}
	d, err := ctx.DereferenceDict(*ctx.Info)
	if err != nil || d == nil {
		return meta
	}
	meta.Author = infoString(ctx, d, "Author")
	meta.Title = infoString(ctx, d, "Title")
	meta.CreationDate = infoString(ctx, d, "CreationDate")
	meta.ModDate = infoString(ctx, d, "ModDate")
	return meta
}

func infoString(ctx *model.Context, d pdftypes.Dict, key string) string {
	obj, found := d.Find(key)
	if !found {
		return ""
	}
	obj, err := ctx.Dereference(obj)
	if err != nil {
		return ""
	}
	var s string
	switch v := obj.(type) {
	case pdftypes.StringLiteral:
		s, err = pdftypes.StringLiteralToString(v)
	case pdftypes.HexLiteral:
		s, err = pdftypes.HexLiteralToString(v)
	default:
		return ""
	}
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}
