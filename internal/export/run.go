package export

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Export modes.
const (
	ModeSnapshot = "snapshot"
	ModeHTML     = "html"
)

// Request describes one export run.
type Request struct {
	// Mode is ModeSnapshot (the server prints the live preview) or ModeHTML
	// (the preview markup is fetched here and submitted for printing).
	Mode string
	// Save persists the editor session alongside the export.
	Save bool
	// Output is a file path or an existing directory. Empty means the server's
	// filename in the working directory.
	Output  string
	Verbose bool
}

// Result reports where the document was written.
type Result struct {
	Path  string
	Bytes int
	Saved bool
}

// Run exports the caller's resume and writes it to disk. When req.Save is set the
// session is saved concurrently; either failure fails the run.
func Run(ctx context.Context, c *Client, req Request) (*Result, error) {
	g, gctx := errgroup.WithContext(ctx)

	if req.Save {
		g.Go(func() error {
			if err := c.SaveSession(gctx); err != nil {
				return fmt.Errorf("failed to save resume: %w", err)
			}
			return nil
		})
	}

	var doc *Document
	g.Go(func() error {
		var err error
		switch req.Mode {
		case "", ModeSnapshot:
			doc, err = c.Snapshot(gctx)
		case ModeHTML:
			doc, err = exportHTML(gctx, c)
		default:
			return fmt.Errorf("unknown export mode %q", req.Mode)
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	path, err := WriteFile(doc, req.Output)
	if err != nil {
		return nil, err
	}
	if req.Verbose {
		log.Printf("[EXPORT] wrote %d bytes to %s", len(doc.Data), path)
	}
	return &Result{Path: path, Bytes: len(doc.Data), Saved: req.Save}, nil
}

func exportHTML(ctx context.Context, c *Client) (*Document, error) {
	page, err := c.Preview(ctx)
	if err != nil {
		return nil, err
	}
	markup, err := ExtractPreview(page)
	if err != nil {
		return nil, err
	}
	return c.FromHTML(ctx, markup)
}

// WriteFile delivers doc to output and returns the path written.
func WriteFile(doc *Document, output string) (string, error) {
	if doc == nil || len(doc.Data) == 0 {
		return "", fmt.Errorf("no document to write")
	}
	name := doc.Filename
	if name == "" {
		name = DefaultFilename
	}
	// the server names the file, not the directory
	name = filepath.Base(name)

	path := output
	switch {
	case output == "":
		path = name
	case strings.HasSuffix(output, string(os.PathSeparator)):
		path = filepath.Join(output, name)
	default:
		if info, err := os.Stat(output); err == nil && info.IsDir() {
			path = filepath.Join(output, name)
		}
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, doc.Data, 0644); err != nil {
		return "", fmt.Errorf("failed to write output file: %w", err)
	}
	return path, nil
}
