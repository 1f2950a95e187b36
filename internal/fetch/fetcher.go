// Package fetch retrieves listing and viewer pages as goquery documents. It
// keeps one cookie-carrying session, retries transport failures with
// exponential backoff and can render viewer pages in headless Chrome so that
// script-loaded comments are present in the returned markup.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/webtoond/internal/ui"
	"github.com/brogergvhs/webtoond/internal/webtoon"
)

const (
	DefaultRetries = 3

	// DefaultRenderSelector is the comment item that appears once the
	// comment widget has finished loading.
	DefaultRenderSelector = ".wcc_CommentItem__root"
	DefaultRenderWait     = 10 * time.Second
)

// ErrExhausted is returned once every retry of a fetch has failed.
var ErrExhausted = errors.New("retries exhausted")

// Renderer returns the markup of a page after client-side scripts ran.
type Renderer interface {
	Render(ctx context.Context, url, waitSelector string, wait time.Duration) (string, error)
	Close()
}

type Options struct {
	Retries int
	// Backoff returns the pause after the given zero-based failed attempt.
	Backoff func(attempt int) time.Duration

	Renderer       Renderer
	RenderSelector string
	RenderWait     time.Duration

	// HomeURL is requested once before the first fetch to pick up session
	// cookies. Empty disables the warm-up.
	HomeURL string

	Log *ui.Logger
}

type Fetcher struct {
	client *http.Client
	opts   Options
	log    *ui.Logger

	warm sync.Once
}

func ExponentialBackoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

func New(client *http.Client, opts Options) *Fetcher {
	if opts.Retries < 1 {
		opts.Retries = DefaultRetries
	}
	if opts.Backoff == nil {
		opts.Backoff = ExponentialBackoff
	}
	if opts.RenderSelector == "" {
		opts.RenderSelector = DefaultRenderSelector
	}
	if opts.RenderWait <= 0 {
		opts.RenderWait = DefaultRenderWait
	}
	if opts.Log == nil {
		opts.Log = ui.Discard()
	}

	return &Fetcher{client: client, opts: opts, log: opts.Log}
}

// Rendering reports whether viewer pages go through the headless browser.
func (f *Fetcher) Rendering() bool {
	return f.opts.Renderer != nil
}

func (f *Fetcher) Close() {
	if f.opts.Renderer != nil {
		f.opts.Renderer.Close()
	}
}

func (f *Fetcher) warmUp(ctx context.Context) {
	if f.opts.HomeURL == "" {
		return
	}

	f.warm.Do(func() {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.opts.HomeURL, nil)
		if err != nil {
			return
		}
		SetPageHeaders(req)

		resp, err := f.client.Do(req)
		if err != nil {
			f.log.Warnf("could not initialize session: %v", err)
			return
		}
		_ = resp.Body.Close()
	})
}

// Fetch returns the parsed page. On failure it retries up to the configured
// bound, sleeping 2^attempt seconds between attempts, and then returns a nil
// document with an error wrapping ErrExhausted.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	f.warmUp(ctx)

	var lastErr error
	for attempt := 0; attempt < f.opts.Retries; attempt++ {
		doc, err := f.fetchOnce(ctx, url)
		if err == nil {
			return doc, nil
		}
		lastErr = err
		f.log.Warnf("attempt %d/%d failed for %s: %v", attempt+1, f.opts.Retries, url, err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt == f.opts.Retries-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.opts.Backoff(attempt)):
		}
	}

	f.log.Errorf("failed to get page after %d attempts: %s", f.opts.Retries, url)
	return nil, fmt.Errorf("%s: %w: %v", url, ErrExhausted, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*goquery.Document, error) {
	if f.opts.Renderer != nil && isViewer(url) {
		html, err := f.opts.Renderer.Render(ctx, url, f.opts.RenderSelector, f.opts.RenderWait)
		if err == nil {
			return goquery.NewDocumentFromReader(strings.NewReader(html))
		}
		f.log.Debugf("render failed for %s, using plain HTTP: %v", url, err)
	}

	return f.get(ctx, url)
}

func (f *Fetcher) get(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	SetPageHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, err
	}

	return goquery.NewDocumentFromReader(body)
}

func isViewer(url string) bool {
	return strings.Contains(webtoon.ListingBase(url), "/viewer")
}
