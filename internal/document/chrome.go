package document

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeEngine launches a fresh headless Chrome for every Acquire.
type ChromeEngine struct {
	// ExecPath overrides the Chrome binary. Empty means chromedp's lookup.
	ExecPath string
	Verbose  bool
}

// NewChromeEngine creates an engine using execPath, or the default lookup when empty.
func NewChromeEngine(execPath string) *ChromeEngine {
	return &ChromeEngine{ExecPath: execPath}
}

var _ Engine = (*ChromeEngine)(nil)

// Acquire starts a browser and opens a tab. The browser is bound to ctx and is
// killed when ctx is cancelled or the instance is closed.
func (e *ChromeEngine) Acquire(ctx context.Context) (Instance, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
	)
	if e.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(e.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// The first Run starts the browser.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, &LaunchError{Cause: err}
	}
	if e.Verbose {
		log.Printf("[RENDER] browser started")
	}

	return &chromeInstance{
		ctx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
		verbose: e.Verbose,
	}, nil
}

type chromeInstance struct {
	ctx     context.Context
	cancel  context.CancelFunc
	tmpDir  string
	verbose bool
}

// run executes actions on the tab, bounded by both the tab and the caller's ctx.
func (i *chromeInstance) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(i.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var cancelDeadline context.CancelFunc
		runCtx, cancelDeadline = context.WithDeadline(runCtx, deadline)
		defer cancelDeadline()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	if err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

func (i *chromeInstance) Navigate(ctx context.Context, url string, cookies []*http.Cookie) error {
	if i.verbose {
		log.Printf("[RENDER] navigating to %s", url)
	}
	return i.loadAndWaitIdle(ctx, url, setCookies(url, cookies))
}

func (i *chromeInstance) SetContent(ctx context.Context, html string) error {
	if i.tmpDir == "" {
		dir, err := os.MkdirTemp("", "cvmaker-")
		if err != nil {
			return fmt.Errorf("failed to create temp dir: %w", err)
		}
		i.tmpDir = dir
	}
	path := filepath.Join(i.tmpDir, "index.html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return i.loadAndWaitIdle(ctx, "file://"+path, nil)
}

// loadAndWaitIdle navigates and then blocks until the page reports network idle.
func (i *chromeInstance) loadAndWaitIdle(ctx context.Context, url string, before chromedp.Action) error {
	idle := make(chan struct{}, 1)
	listenCtx, stopListening := context.WithCancel(i.ctx)
	defer stopListening()

	chromedp.ListenTarget(listenCtx, func(ev any) {
		e, ok := ev.(*page.EventLifecycleEvent)
		if !ok {
			return
		}
		switch e.Name {
		case "init":
			// a new document started loading; forget idles of the previous one
			select {
			case <-idle:
			default:
			}
		case "networkIdle":
			select {
			case idle <- struct{}{}:
			default:
			}
		}
	})

	actions := []chromedp.Action{
		page.SetLifecycleEventsEnabled(true),
	}
	if before != nil {
		actions = append(actions, before)
	}
	actions = append(actions, chromedp.Navigate(url))
	if err := i.run(ctx, actions...); err != nil {
		return err
	}

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-i.ctx.Done():
		return i.ctx.Err()
	}
}

func (i *chromeInstance) WaitMarker(ctx context.Context, id string) error {
	return i.run(ctx, chromedp.WaitReady("#"+id, chromedp.ByQuery))
}

const isolateScript = `(function(id, width, height) {
	const target = document.getElementById(id);
	if (!target) {
		return false;
	}
	document.body.innerHTML = '';
	document.body.appendChild(target);
	target.style.width = width + 'px';
	target.style.height = height + 'px';
	target.style.maxWidth = 'none';
	return true;
})(%q, %d, %d)`

func (i *chromeInstance) IsolateMarker(ctx context.Context, id string, width, height int) error {
	var found bool
	if err := i.run(ctx, chromedp.Evaluate(fmt.Sprintf(isolateScript, id, width, height), &found)); err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("element #%s not found", id)
	}
	return nil
}

func (i *chromeInstance) Print(ctx context.Context, opts PrintOptions) ([]byte, error) {
	var buf []byte
	err := i.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		params := page.PrintToPDF().
			WithPrintBackground(opts.PrintBackground).
			WithPaperWidth(opts.PaperWidth).
			WithPaperHeight(opts.PaperHeight)
		if opts.ZeroMargins {
			params = params.
				WithMarginTop(0).
				WithMarginBottom(0).
				WithMarginLeft(0).
				WithMarginRight(0)
		}
		var err error
		buf, _, err = params.Do(ctx)
		return err
	}))
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (i *chromeInstance) Close() error {
	i.cancel()
	if i.tmpDir != "" {
		if err := os.RemoveAll(i.tmpDir); err != nil {
			return fmt.Errorf("failed to remove temp dir: %w", err)
		}
	}
	if i.verbose {
		log.Printf("[RENDER] browser closed")
	}
	return nil
}

func setCookies(url string, cookies []*http.Cookie) chromedp.Action {
	if len(cookies) == 0 {
		return nil
	}
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			if err := network.SetCookie(c.Name, c.Value).WithURL(url).WithHTTPOnly(c.HttpOnly).Do(ctx); err != nil {
				return fmt.Errorf("failed to set cookie %s: %w", c.Name, err)
			}
		}
		return nil
	})
}
