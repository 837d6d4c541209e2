package document

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"
)

// Defaults for Config.
const (
	DefaultMarkerTimeout      = 5 * time.Second
	DefaultNetworkIdleTimeout = 30 * time.Second
	DefaultRenderTimeout      = 60 * time.Second
	DefaultMarkerID           = "cv-preview"
	DefaultStylesheetURL      = "https://cdn.tailwindcss.com"
	DefaultFilename           = "resume.pdf"
	ContentTypePDF            = "application/pdf"
)

// Config holds the tunables of a Service.
type Config struct {
	MarkerID           string
	MarkerTimeout      time.Duration
	NetworkIdleTimeout time.Duration
	// RenderTimeout bounds an entire export, launch to print.
	RenderTimeout time.Duration
	StylesheetURL string
	Verbose       bool
}

// DefaultConfig returns the standard timeouts and the default stylesheet.
func DefaultConfig() Config {
	return Config{
		MarkerID:           DefaultMarkerID,
		MarkerTimeout:      DefaultMarkerTimeout,
		NetworkIdleTimeout: DefaultNetworkIdleTimeout,
		RenderTimeout:      DefaultRenderTimeout,
		StylesheetURL:      DefaultStylesheetURL,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MarkerID == "" {
		c.MarkerID = d.MarkerID
	}
	if c.MarkerTimeout <= 0 {
		c.MarkerTimeout = d.MarkerTimeout
	}
	if c.NetworkIdleTimeout <= 0 {
		c.NetworkIdleTimeout = d.NetworkIdleTimeout
	}
	if c.RenderTimeout <= 0 {
		c.RenderTimeout = d.RenderTimeout
	}
	if c.StylesheetURL == "" {
		c.StylesheetURL = d.StylesheetURL
	}
	return c
}

// Document is a finished export.
type Document struct {
	Data        []byte
	Filename    string
	ContentType string
}

// SnapshotRequest describes a live page export.
type SnapshotRequest struct {
	URL string
	// Cookies are installed in the browser before navigation so the page renders
	// for the same user that requested the export.
	Cookies []*http.Cookie
}

// Service produces PDF documents. It holds no state between calls.
type Service struct {
	engine Engine
	cfg    Config
}

// NewService creates a service on top of engine. Zero config fields take defaults.
func NewService(engine Engine, cfg Config) *Service {
	return &Service{engine: engine, cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// Snapshot loads the live preview page at req.URL, waits for the marker element,
// strips everything else from the page and prints the marker on A4 with no margins.
func (s *Service) Snapshot(ctx context.Context, req SnapshotRequest) (*Document, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, &MissingInputError{Field: "preview URL"}
	}

	return s.render(ctx, func(ctx context.Context, inst Instance) ([]byte, error) {
		navCtx, cancel := context.WithTimeout(ctx, s.cfg.NetworkIdleTimeout)
		err := inst.Navigate(navCtx, req.URL, req.Cookies)
		cancel()
		if err != nil {
			return nil, s.loadError(req.URL, err)
		}

		markerCtx, cancel := context.WithTimeout(ctx, s.cfg.MarkerTimeout)
		err = inst.WaitMarker(markerCtx, s.cfg.MarkerID)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(markerCtx.Err(), context.DeadlineExceeded) {
				return nil, &MarkerTimeoutError{Marker: s.cfg.MarkerID, Timeout: s.cfg.MarkerTimeout}
			}
			return nil, &RenderError{Stage: "wait for marker", Cause: err}
		}

		if err := inst.IsolateMarker(ctx, s.cfg.MarkerID, A4WidthPixels, A4HeightPixels); err != nil {
			return nil, &RenderError{Stage: "isolate marker", Cause: err}
		}

		return inst.Print(ctx, PrintOptions{
			PaperWidth:      A4WidthInches,
			PaperHeight:     A4HeightInches,
			PrintBackground: true,
			ZeroMargins:     true,
		})
	})
}

// FromHTML prints a caller supplied HTML fragment or document on A4 with
// backgrounds and the engine's default margins. The HTML is placed in a shell
// that loads the stylesheet.
func (s *Service) FromHTML(ctx context.Context, content string) (*Document, error) {
	if strings.TrimSpace(content) == "" {
		return nil, &MissingInputError{Field: "HTML content"}
	}

	return s.render(ctx, func(ctx context.Context, inst Instance) ([]byte, error) {
		loadCtx, cancel := context.WithTimeout(ctx, s.cfg.NetworkIdleTimeout)
		err := inst.SetContent(loadCtx, Shell(content, s.cfg.StylesheetURL))
		cancel()
		if err != nil {
			return nil, s.loadError("(inline html)", err)
		}

		return inst.Print(ctx, PrintOptions{
			PaperWidth:      A4WidthInches,
			PaperHeight:     A4HeightInches,
			PrintBackground: true,
		})
	})
}

// render acquires an engine instance, runs fn and always releases the instance.
func (s *Service) render(ctx context.Context, fn func(context.Context, Instance) ([]byte, error)) (*Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RenderTimeout)
	defer cancel()

	start := time.Now()
	inst, err := s.engine.Acquire(ctx)
	if err != nil {
		var launchErr *LaunchError
		if errors.As(err, &launchErr) {
			return nil, err
		}
		return nil, &LaunchError{Cause: err}
	}
	defer func() {
		if closeErr := inst.Close(); closeErr != nil {
			log.Printf("[RENDER] failed to release browser: %v", closeErr)
		}
	}()

	data, err := fn(ctx, inst)
	if err != nil {
		var (
			markerErr  *MarkerTimeoutError
			idleErr    *NetworkIdleError
			renderErr  *RenderError
			missingErr *MissingInputError
		)
		switch {
		case errors.As(err, &markerErr), errors.As(err, &idleErr), errors.As(err, &renderErr), errors.As(err, &missingErr):
			return nil, err
		default:
			return nil, &RenderError{Stage: "print", Cause: err}
		}
	}
	if len(data) == 0 {
		return nil, &RenderError{Stage: "print", Cause: fmt.Errorf("engine returned an empty document")}
	}

	if s.cfg.Verbose {
		log.Printf("[RENDER] produced %d bytes in %s", len(data), time.Since(start).Round(time.Millisecond))
	}
	return &Document{
		Data:        data,
		Filename:    DefaultFilename,
		ContentType: ContentTypePDF,
	}, nil
}

func (s *Service) loadError(url string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &NetworkIdleError{URL: url, Timeout: s.cfg.NetworkIdleTimeout, Cause: err}
	}
	return &RenderError{Stage: "load page", Cause: err}
}

// Shell wraps body in a minimal document that loads stylesheetURL as a script,
// which is how the utility CSS framework is delivered.
func Shell(body, stylesheetURL string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	b.WriteString("<meta charset=\"UTF-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	if stylesheetURL != "" {
		fmt.Fprintf(&b, "<script src=\"%s\"></script>\n", html.EscapeString(stylesheetURL))
	}
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}
