package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"newsharvest/internal/ports"
)

// Markers that anti-bot interstitials leave in otherwise "successful" pages.
var blockMarkers = []string{
	"just a moment...",
	"checking your browser",
	"access denied",
	"challenge-platform",
}

// ChromeRenderer is the rendered retrieval strategy: a headless Chrome
// session that executes page scripts and returns the resulting HTML. Every
// invocation checks a slot out of the shared pool and releases it on all
// exit paths.
type ChromeRenderer struct {
	pool    *SessionPool
	timeout time.Duration
	settle  time.Duration
}

var _ ports.Renderer = (*ChromeRenderer)(nil)

// NewChromeRenderer wires the session pool and per-navigation timeout.
func NewChromeRenderer(pool *SessionPool, timeout time.Duration) *ChromeRenderer {
	return &ChromeRenderer{pool: pool, timeout: timeout, settle: 2 * time.Second}
}

// Render navigates to the URL, waits for the page body, and captures the
// rendered document.
func (r *ChromeRenderer) Render(ctx context.Context, rawURL string) (string, error) {
	release, err := r.pool.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer release()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
	)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx := browserCtx
	if r.timeout > 0 {
		var cancelRun context.CancelFunc
		runCtx, cancelRun = context.WithTimeout(browserCtx, r.timeout)
		defer cancelRun()
	}

	var html string
	err = chromedp.Run(runCtx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body"),
		chromedp.Sleep(r.settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", rawURL, err)
	}

	if looksBlocked(html) {
		return "", fmt.Errorf("render %s: anti-bot challenge page detected", rawURL)
	}

	return html, nil
}

func looksBlocked(html string) bool {
	probe := html
	if len(probe) > 4096 {
		probe = probe[:4096]
	}
	probe = strings.ToLower(probe)
	for _, marker := range blockMarkers {
		if strings.Contains(probe, marker) {
			return true
		}
	}
	return false
}
