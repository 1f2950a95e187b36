// Package chapters picks which episodes of a series a download run covers.
package chapters

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/brogergvhs/webtoond/internal/webtoon"
)

var ErrBadSelection = errors.New("invalid selection")

// Filter applies the first non-empty selector: a single episode, an
// inclusive episode range "a-b", or a comma separated episode list. With no
// selector every chapter is returned.
func Filter(all []*webtoon.Chapter, episode, rng, list string) ([]*webtoon.Chapter, error) {
	switch {
	case episode != "":
		out := FilterByEpisode(all, episode)
		if len(out) == 0 {
			return nil, fmt.Errorf("episode %s not found", episode)
		}
		return out, nil
	case rng != "":
		return FilterRange(all, rng)
	case list != "":
		return FilterList(all, list)
	}
	return all, nil
}

func FilterByEpisode(all []*webtoon.Chapter, episode string) []*webtoon.Chapter {
	episode = strings.TrimSpace(episode)
	var out []*webtoon.Chapter
	for _, ch := range all {
		if ch.EpisodeNo == episode {
			out = append(out, ch)
		}
	}
	return out
}

// FilterRange keeps chapters whose episode number lies in "a-b", inclusive.
func FilterRange(all []*webtoon.Chapter, rng string) ([]*webtoon.Chapter, error) {
	start, end, err := parseRange(rng)
	if err != nil {
		return nil, err
	}

	var out []*webtoon.Chapter
	for _, ch := range all {
		if n, err := atoi(ch.EpisodeNo); err == nil && n >= start && n <= end {
			out = append(out, ch)
		}
	}
	return out, nil
}

func FilterList(all []*webtoon.Chapter, list string) ([]*webtoon.Chapter, error) {
	want := map[string]bool{}
	for _, n := range strings.Split(list, ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, err := atoi(n); err != nil {
			return nil, fmt.Errorf("%w: %q is not an episode number", ErrBadSelection, n)
		}
		want[n] = true
	}

	var out []*webtoon.Chapter
	for _, ch := range all {
		if want[ch.EpisodeNo] {
			out = append(out, ch)
		}
	}
	return out, nil
}

// NewestFirst returns a copy ordered by descending episode number, the way
// the interactive picker lists them.
func NewestFirst(all []*webtoon.Chapter) []*webtoon.Chapter {
	out := slices.Clone(all)
	slices.SortStableFunc(out, func(a, b *webtoon.Chapter) int {
		x, _ := atoi(a.EpisodeNo)
		y, _ := atoi(b.EpisodeNo)
		return y - x
	})
	return out
}

// ParsePositions reads picker input such as "1,3-5" or "all" into distinct
// zero-based positions into a list of n items, in input order.
func ParsePositions(input string, n int) ([]int, error) {
	input = strings.TrimSpace(strings.ToLower(input))
	if input == "" {
		return nil, fmt.Errorf("%w: empty", ErrBadSelection)
	}
	if input == "all" {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}

	seen := map[int]bool{}
	var out []int
	add := func(p int) error {
		if p < 1 || p > n {
			return fmt.Errorf("%w: %d is out of range 1-%d", ErrBadSelection, p, n)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p-1)
		}
		return nil
	}

	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.Contains(part, "-") {
			start, end, err := parseRange(part)
			if err != nil {
				return nil, err
			}
			for p := start; p <= end; p++ {
				if err := add(p); err != nil {
					return nil, err
				}
			}
			continue
		}
		p, err := atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrBadSelection, part)
		}
		if err := add(p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func parseRange(rng string) (int, int, error) {
	parts := strings.Split(rng, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: range %q", ErrBadSelection, rng)
	}
	start, err1 := atoi(parts[0])
	end, err2 := atoi(parts[1])
	if err1 != nil || err2 != nil || start <= 0 || start > end {
		return 0, 0, fmt.Errorf("%w: range %q", ErrBadSelection, rng)
	}
	return start, end, nil
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
