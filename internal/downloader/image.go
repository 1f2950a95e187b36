// Package downloader writes chapter images to disk. Three layers stack up:
// ImageDownloader fetches one file, ChapterDownloader fans a chapter's
// images out over a worker pool, and Manager runs a batch of chapters under
// a smaller chapter-level pool while keeping the resume queue up to date.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brogergvhs/webtoond/internal/fetch"
	"github.com/brogergvhs/webtoond/internal/ui"
	"github.com/brogergvhs/webtoond/internal/util"
)

const (
	DefaultMinImageBytes = 1000
	DefaultImageRetries  = 3
	DefaultImageTimeout  = 30 * time.Second

	partSuffix = util.PartSuffix
)

// ErrInvalidImage marks a response that is not an image. It is not retried.
var ErrInvalidImage = errors.New("not an image")

type ImageOptions struct {
	MinBytes int64
	Retries  int
	Timeout  time.Duration
	// Backoff returns the pause after the given one-based failed attempt.
	Backoff func(attempt int) time.Duration
	Log     *ui.Logger
}

type ImageDownloader struct {
	client *http.Client
	opts   ImageOptions
	log    *ui.Logger
}

func NewImageDownloader(c *http.Client, opts ImageOptions) *ImageDownloader {
	if opts.MinBytes <= 0 {
		opts.MinBytes = DefaultMinImageBytes
	}
	if opts.Retries < 1 {
		opts.Retries = DefaultImageRetries
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultImageTimeout
	}
	if opts.Backoff == nil {
		opts.Backoff = func(attempt int) time.Duration { return time.Duration(attempt) * time.Second }
	}
	if opts.Log == nil {
		opts.Log = ui.Discard()
	}
	return &ImageDownloader{client: c, opts: opts, log: opts.Log}
}

// Download fetches url into path with referer set to the owning page and
// returns the bytes written. On failure nothing is left at path.
func (d *ImageDownloader) Download(
	ctx context.Context,
	url, path, referer string,
	progress func(done int64),
) (int64, error) {
	var err error
	for attempt := 1; attempt <= d.opts.Retries; attempt++ {
		var n int64
		n, err = d.download(ctx, url, path, referer, progress)
		if err == nil {
			return n, nil
		}
		if errors.Is(err, ErrInvalidImage) || attempt == d.opts.Retries {
			break
		}
		d.log.Debugf("retrying %s after attempt %d: %v", url, attempt, err)

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(d.opts.Backoff(attempt)):
		}
	}

	return 0, err
}

func (d *ImageDownloader) download(
	ctx context.Context,
	u, output, referer string,
	progress func(done int64),
) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	fetch.SetImageHeaders(req, referer)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	if !isImageType(resp.Header.Get("Content-Type")) {
		return 0, fmt.Errorf("%w: content type %q", ErrInvalidImage, resp.Header.Get("Content-Type"))
	}
	if resp.ContentLength >= 0 && resp.ContentLength < d.opts.MinBytes {
		return 0, fmt.Errorf("%w: %d bytes", ErrInvalidImage, resp.ContentLength)
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return 0, err
	}

	tmp := output + partSuffix
	f, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}

	written, err := copyWithProgress(f, resp.Body, progress)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && written < d.opts.MinBytes {
		err = fmt.Errorf("%w: %d bytes", ErrInvalidImage, written)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}

	if err := os.Rename(tmp, output); err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}

	return written, nil
}

func isImageType(ct string) bool {
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		mt = strings.ToLower(strings.TrimSpace(ct))
	}
	return strings.HasPrefix(mt, "image/") || mt == "application/octet-stream"
}

// imageExt infers the file extension from anywhere in the URL.
func imageExt(u string) string {
	low := strings.ToLower(u)
	switch {
	case strings.Contains(low, "jpg"), strings.Contains(low, "jpeg"):
		return ".jpg"
	case strings.Contains(low, "png"):
		return ".png"
	case strings.Contains(low, "webp"):
		return ".webp"
	case strings.Contains(low, "gif"):
		return ".gif"
	default:
		return ".jpg"
	}
}

// ImageName is the file name of the image at zero-based index i.
func ImageName(i int, u string) string {
	return fmt.Sprintf("%03d%s", i+1, imageExt(u))
}
