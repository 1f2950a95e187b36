package fetch

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/webtoond/internal/parser"
)

func noWait(int) time.Duration { return 0 }

func newTestFetcher(opts Options) *Fetcher {
	if opts.Backoff == nil {
		opts.Backoff = noWait
	}
	return New(&http.Client{Timeout: 5 * time.Second}, opts)
}

func TestFetchRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = fmt.Fprint(w, `<html><body><h1>ok</h1></body></html>`)
	}))
	defer srv.Close()

	doc, err := newTestFetcher(Options{Retries: 3}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", doc.Find("h1").Text())
	assert.EqualValues(t, 3, calls.Load())
}

func TestFetchExhausted(t *testing.T) {
	var calls atomic.Int32
	var pauses []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := newTestFetcher(Options{
		Retries: 3,
		Backoff: func(attempt int) time.Duration {
			pauses = append(pauses, attempt)
			return 0
		},
	})

	doc, err := f.Fetch(context.Background(), srv.URL)
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.EqualValues(t, 3, calls.Load())
	assert.Equal(t, []int{0, 1}, pauses)
}

func TestExponentialBackoff(t *testing.T) {
	assert.Equal(t, time.Second, ExponentialBackoff(0))
	assert.Equal(t, 2*time.Second, ExponentialBackoff(1))
	assert.Equal(t, 4*time.Second, ExponentialBackoff(2))
}

func TestFetchSendsBrowserHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = fmt.Fprint(w, `<p>x</p>`)
	}))
	defer srv.Close()

	_, err := newTestFetcher(Options{}).Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.NotEmpty(t, got.Get("Accept"))
	assert.NotEmpty(t, got.Get("Accept-Language"))
	assert.Contains(t, got.Get("Accept-Encoding"), "br")
	assert.Equal(t, "https://www.webtoons.com/", got.Get("Referer"))
}

func TestFetchDecodesCompressedBodies(t *testing.T) {
	const page = `<html><body><h1>compressed</h1></body></html>`

	encoders := map[string]func([]byte) []byte{
		"br": func(b []byte) []byte {
			var buf bytes.Buffer
			w := brotli.NewWriter(&buf)
			_, _ = w.Write(b)
			_ = w.Close()
			return buf.Bytes()
		},
		"gzip": func(b []byte) []byte {
			var buf bytes.Buffer
			w := gzip.NewWriter(&buf)
			_, _ = w.Write(b)
			_ = w.Close()
			return buf.Bytes()
		},
	}

	for enc, encode := range encoders {
		t.Run(enc, func(t *testing.T) {
			body := encode([]byte(page))
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Encoding", enc)
				_, _ = w.Write(body)
			}))
			defer srv.Close()

			doc, err := newTestFetcher(Options{}).Fetch(context.Background(), srv.URL)
			require.NoError(t, err)
			assert.Equal(t, "compressed", doc.Find("h1").Text())
		})
	}
}

func TestFetchWarmsUpSessionOnce(t *testing.T) {
	var home, pages atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			home.Add(1)
			return
		}
		pages.Add(1)
		_, _ = fmt.Fprint(w, `<p>page</p>`)
	}))
	defer srv.Close()

	f := newTestFetcher(Options{HomeURL: srv.URL + "/"})
	for i := 0; i < 3; i++ {
		_, err := f.Fetch(context.Background(), srv.URL+"/page")
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, home.Load())
	assert.EqualValues(t, 3, pages.Load())
}

func TestFetchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc, err := newTestFetcher(Options{}).Fetch(ctx, srv.URL)
	assert.Nil(t, doc)
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeRenderer struct {
	html   string
	err    error
	calls  atomic.Int32
	closed bool
	sel    string
}

func (r *fakeRenderer) Render(_ context.Context, _ string, waitSelector string, _ time.Duration) (string, error) {
	r.calls.Add(1)
	r.sel = waitSelector
	return r.html, r.err
}

func (r *fakeRenderer) Close() { r.closed = true }

func TestFetchRendersViewerPages(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = fmt.Fprint(w, `<p class="src">http</p>`)
	}))
	defer srv.Close()

	r := &fakeRenderer{html: `<html><body><p class="src">rendered</p></body></html>`}
	f := newTestFetcher(Options{Renderer: r})
	assert.True(t, f.Rendering())

	doc, err := f.Fetch(context.Background(), srv.URL+"/en/x/y/ep-1/viewer?title_no=1&episode_no=1")
	require.NoError(t, err)
	assert.Equal(t, "rendered", doc.Find("p.src").Text())
	assert.Equal(t, DefaultRenderSelector, r.sel)
	assert.EqualValues(t, 0, hits.Load())

	doc, err = f.Fetch(context.Background(), srv.URL+"/en/x/y/list?title_no=1")
	require.NoError(t, err)
	assert.Equal(t, "http", doc.Find("p.src").Text(), "listing pages skip the renderer")
	assert.EqualValues(t, 1, r.calls.Load())

	f.Close()
	assert.True(t, r.closed)
}

func TestFetchRenderFailureFallsBackToHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, `<p class="src">http</p>`)
	}))
	defer srv.Close()

	r := &fakeRenderer{err: errors.New("chrome crashed")}
	doc, err := newTestFetcher(Options{Renderer: r}).Fetch(context.Background(), srv.URL+"/a/b/c/viewer?episode_no=2")
	require.NoError(t, err)
	assert.Equal(t, "http", doc.Find("p.src").Text())
	assert.EqualValues(t, 1, r.calls.Load())
}

func TestPageCount(t *testing.T) {
	for name, tc := range map[string]struct {
		html string
		want int
	}{
		"none":       {`<div></div>`, 1},
		"spans":      {`<div class="paginate"><a><span>1</span></a><a><span>2</span></a><a><span>3</span></a></div>`, 3},
		"plain text": {`<div class="paginate"><a>1</a><a> 4 </a><a>Next</a></div>`, 4},
	} {
		t.Run(name, func(t *testing.T) {
			doc, err := goquery.NewDocumentFromReader(strings.NewReader(tc.html))
			require.NoError(t, err)
			assert.Equal(t, tc.want, PageCount(doc))
		})
	}

	assert.Equal(t, 1, PageCount(nil))
}

func TestFetchPaginatedCollectsChapterLinks(t *testing.T) {
	var fetches atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		page := r.URL.Query().Get("page")
		if page == "" {
			page = "1"
		}
		_, _ = fmt.Fprintf(w, `<html><body>
			<ul id="_listUl"><li class="_episodeItem">
				<a href="%s/en/fantasy/tower/episode-%s/viewer?title_no=95&episode_no=%s">ep</a>
			</li></ul>
			<div class="paginate"><a href="#"><span>1</span></a><a href="?page=2"><span>2</span></a></div>
		</body></html>`, srv.URL, page, page)
	}))
	defer srv.Close()

	f := newTestFetcher(Options{})
	pages := f.FetchPaginated(context.Background(), srv.URL+"/en/fantasy/tower/list", "95")
	require.Len(t, pages, 2)
	assert.EqualValues(t, 2, fetches.Load())

	var links []string
	for _, p := range pages {
		links = append(links, parser.ParseChapterLinks(p)...)
	}
	assert.Equal(t, []string{
		srv.URL + "/en/fantasy/tower/episode-1/viewer?title_no=95&episode_no=1",
		srv.URL + "/en/fantasy/tower/episode-2/viewer?title_no=95&episode_no=2",
	}, links)
}

func TestFetchPaginatedSkipsFailedPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = fmt.Fprint(w, `<div class="paginate"><a><span>1</span></a><a><span>2</span></a><a><span>3</span></a></div>`)
	}))
	defer srv.Close()

	pages := newTestFetcher(Options{Retries: 1}).FetchPaginated(context.Background(), srv.URL+"/list", "1")
	assert.Len(t, pages, 2)
}

func TestFetchPaginatedFirstPageFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	assert.Nil(t, newTestFetcher(Options{Retries: 1}).FetchPaginated(context.Background(), srv.URL+"/list", "1"))
}

func TestIsViewer(t *testing.T) {
	assert.True(t, isViewer("https://www.webtoons.com/en/a/b/ep/viewer?title_no=1"))
	assert.False(t, isViewer("https://www.webtoons.com/en/a/b/list?title_no=1&ref=viewer"))
	assert.False(t, isViewer(strings.Repeat("x", 3)))
}
