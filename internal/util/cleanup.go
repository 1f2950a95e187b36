package util

import (
	"context"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

// PartSuffix marks an image that is still being written.
const PartSuffix = ".part"

// InterruptContext returns a context cancelled on SIGINT or SIGTERM. Once
// cancelled, leftover temp files under outputDir are removed and onCleanup
// is told how many; the download queue is kept so the run can be resumed.
func InterruptContext(parent context.Context, outputDir string, onCleanup func(removed int)) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sig)
		select {
		case <-sig:
			cancel()
			n := CleanupPartFiles(outputDir)
			RemoveIfEmpty(outputDir)
			if onCleanup != nil {
				onCleanup(n)
			}
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}

// CleanupPartFiles deletes every unfinished download below dir and returns
// how many were removed.
func CleanupPartFiles(dir string) int {
	removed := 0
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), PartSuffix) {
			if os.Remove(path) == nil {
				removed++
			}
		}
		return nil
	})
	return removed
}

func RemoveIfEmpty(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) > 0 {
		return false
	}
	return os.Remove(dir) == nil
}
