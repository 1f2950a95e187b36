package ui

import (
	"fmt"
	"sync/atomic"

	"github.com/brogergvhs/webtoond/internal/util"
)

// Stats accumulates totals across a download batch. Safe for concurrent use.
type Stats struct {
	TotalImages    atomic.Int64
	FailedImages   atomic.Int64
	TotalBytes     atomic.Int64
	TotalChapters  atomic.Int64
	FailedChapters atomic.Int64
}

func (s *Stats) String() string {
	return fmt.Sprintf("%d chapters (%d failed), %d images (%d failed), %s",
		s.TotalChapters.Load(), s.FailedChapters.Load(),
		s.TotalImages.Load(), s.FailedImages.Load(),
		util.Human(s.TotalBytes.Load()))
}
