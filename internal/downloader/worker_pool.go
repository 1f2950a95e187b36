package downloader

import (
	"context"
	"io"
	"path/filepath"
	"sync"

	"github.com/brogergvhs/webtoond/internal/ui"
)

func copyWithProgress(dst io.Writer, src io.Reader, progress func(done int64)) (int64, error) {
	buf := make([]byte, 32*1024)
	var total int64
	for {
		nr, er := src.Read(buf)

		if nr > 0 {
			nw, ew := dst.Write(buf[0:nr])

			if nw > 0 {
				total += int64(nw)
				if progress != nil {
					progress(total)
				}
			}

			if ew != nil {
				return total, ew
			}

			if nr != nw {
				return total, io.ErrShortWrite
			}
		}

		if er != nil {
			if er == io.EOF {
				break
			}
			return total, er
		}
	}

	return total, nil
}

type chapterState struct {
	mu          sync.Mutex
	doneImages  int
	totalImages int
	doneBytes   int64
	files       []string
	failed      int
}

// downloadAll fetches urls into folder with at most maxParallel requests in
// flight. It returns the written files, failure count and bytes written.
func (d *ImageDownloader) downloadAll(
	ctx context.Context,
	urls []string,
	folder string,
	referer string,
	maxParallel int,
	ph ui.ImageProgress,
) ([]string, int, int64) {
	total := len(urls)
	if maxParallel < 1 {
		maxParallel = 1
	}
	if maxParallel > total && total > 0 {
		maxParallel = total
	}

	cs := &chapterState{totalImages: total, files: make([]string, 0, total)}
	ph.Update(0, total, 0)

	finish := func(path string, err error) {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		if err != nil {
			cs.failed++
		} else {
			cs.files = append(cs.files, path)
		}
		cs.doneImages++
		ph.Update(cs.doneImages, cs.totalImages, cs.doneBytes)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for i := range jobs {
			u := urls[i]
			path := filepath.Join(folder, ImageName(i, u))
			var last int64

			progress := func(done int64) {
				delta := done - last
				if delta <= 0 {
					return
				}
				last = done
				cs.mu.Lock()
				cs.doneBytes += delta
				ph.Update(cs.doneImages, cs.totalImages, cs.doneBytes)
				cs.mu.Unlock()
			}

			_, err := d.Download(ctx, u, path, referer, progress)
			if err != nil {
				d.log.Debugf("image %d of %s: %v", i+1, referer, err)
				// bytes of a rejected file do not count
				cs.mu.Lock()
				cs.doneBytes -= last
				cs.mu.Unlock()
			}
			finish(path, err)
		}
	}

	wg.Add(maxParallel)
	for w := 0; w < maxParallel; w++ {
		go worker()
	}

feed:
	for i := range urls {
		select {
		case <-ctx.Done():
			cs.mu.Lock()
			cs.failed += total - i
			cs.mu.Unlock()
			break feed
		case jobs <- i:
		}
	}

	close(jobs)
	wg.Wait()
	ph.MarkDone()

	return cs.files, cs.failed, cs.doneBytes
}
