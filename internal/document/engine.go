// Package document converts rendered resumes into PDF documents using a headless browser.
//
// Two modes are supported. Snapshot loads the live preview page, isolates the
// marker element and prints it edge to edge. FromHTML prints a caller supplied
// HTML document as is.
package document

import (
	"context"
	"net/http"
)

// A4 paper size in inches.
const (
	A4WidthInches  = 8.27
	A4HeightInches = 11.69
)

// A4 size in CSS pixels at 96 dpi, used to pin the isolated marker.
const (
	A4WidthPixels  = 794
	A4HeightPixels = 1123
)

// PrintOptions controls page printing.
type PrintOptions struct {
	PaperWidth      float64
	PaperHeight     float64
	PrintBackground bool
	// ZeroMargins removes the engine's default page margins.
	ZeroMargins bool
}

// Engine starts isolated browser instances. Each export acquires its own instance
// and releases it when done.
type Engine interface {
	Acquire(ctx context.Context) (Instance, error)
}

// Instance is one headless browser. Every blocking method honours the context
// deadline; Close must always be called.
type Instance interface {
	// Navigate loads url with cookies set and returns once the network is idle.
	Navigate(ctx context.Context, url string, cookies []*http.Cookie) error
	// SetContent loads html as the page document and returns once the network is idle.
	SetContent(ctx context.Context, html string) error
	// WaitMarker blocks until an element with the given id exists.
	WaitMarker(ctx context.Context, id string) error
	// IsolateMarker replaces the body with the marker element pinned to width x height pixels.
	IsolateMarker(ctx context.Context, id string, width, height int) error
	Print(ctx context.Context, opts PrintOptions) ([]byte, error)
	Close() error
}
