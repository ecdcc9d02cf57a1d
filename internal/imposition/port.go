package imposition

import "context"

// Source is a read-only view of the document being imposed.
type Source interface {
	// PageCount returns the number of pages, at least 1.
	PageCount() int
	// PageSize returns the size of a 1-based page in points.
	PageSize(pageNr int) (PageSize, error)
}

// Output is a document under construction. Only its most recent page accepts drawing.
type Output interface {
	// NewPage appends a blank page of the document's size and makes it current.
	NewPage() error
	// PlacePage renders a 1-based source page onto the current page under t.
	PlacePage(src Source, pageNr int, t Transform) error
	// DrawCenteredText draws text centred on (x, y).
	DrawCenteredText(text string, x, y, fontSize float64) error
	// Close finalizes and flushes the document. Nothing may be written afterwards.
	Close() error
	// Discard releases an unfinished document without finalizing it.
	Discard() error
}

// DocumentPort is the boundary to the document engine.
type DocumentPort interface {
	OpenSource(ctx context.Context, path string) (Source, error)
	// CreateOutput starts a document of the given page size that will receive
	// pages from src.
	CreateOutput(ctx context.Context, src Source, path string, size PageSize) (Output, error)
}
