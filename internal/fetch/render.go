package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/brogergvhs/webtoond/internal/ui"
)

const renderPageTimeout = 60 * time.Second

type ChromeOptions struct {
	ExecPath  string
	UserAgent string
	Log       *ui.Logger
}

// ChromeRenderer drives one headless Chrome process; every Render call runs
// in its own tab so chapter workers can render concurrently.
type ChromeRenderer struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    *ui.Logger
}

func NewChromeRenderer(ctx context.Context, opts ChromeOptions) (*ChromeRenderer, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// start the browser now so a missing binary fails here, not per chapter
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start chrome: %w", err)
	}

	log := opts.Log
	if log == nil {
		log = ui.Discard()
	}

	return &ChromeRenderer{
		ctx:    browserCtx,
		cancel: func() { cancelBrowser(); cancelAlloc() },
		log:    log,
	}, nil
}

// Render navigates to url and waits up to wait for waitSelector to become
// visible. A wait timeout is not an error: the markup present at that point
// is returned.
func (r *ChromeRenderer) Render(ctx context.Context, url, waitSelector string, wait time.Duration) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(r.ctx)
	defer cancelTab()

	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	runCtx, cancelRun := context.WithTimeout(tabCtx, renderPageTimeout)
	defer cancelRun()

	if err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("navigate %s: %w", url, err)
	}

	if waitSelector != "" {
		waitCtx, cancelWait := context.WithTimeout(runCtx, wait)
		err := chromedp.Run(waitCtx, chromedp.WaitVisible(waitSelector, chromedp.ByQuery))
		cancelWait()
		if err != nil {
			r.log.Debugf("%s not visible on %s after %s", waitSelector, url, wait)
		}
	}

	var html string
	if err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read html %s: %w", url, err)
	}

	return html, nil
}

func (r *ChromeRenderer) Close() {
	r.cancel()
}
