// Package comments turns the reader comments of a chapter into a short
// digest and writes them next to the chapter images.
package comments

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/brogergvhs/webtoond/internal/ui"
	"github.com/brogergvhs/webtoond/internal/webtoon"
)

const (
	NoComments    = "No comments available for this episode."
	noCommonWords = "No common words found"
	noTopComment  = "No notable comments found"

	simpleTopWords   = 5
	enhancedTopWords = 10
	shownTopics      = 5
	minWordLen       = 4
	topCommentChars  = 50
)

// Summarizer builds comment digests. With Enhanced set it adds keyword
// extraction and a sentiment bucket; any failure there falls back to the
// frequency-only digest.
type Summarizer struct {
	Enhanced bool
	log      *ui.Logger
	tokenize tokenizer
}

func NewSummarizer(enhanced bool, log *ui.Logger) *Summarizer {
	if log == nil {
		log = ui.Discard()
	}
	return &Summarizer{Enhanced: enhanced, log: log, tokenize: proseTokens}
}

// Summarize never returns an empty string.
func (s *Summarizer) Summarize(comments []webtoon.Comment) string {
	if len(comments) == 0 {
		return NoComments
	}

	if s.Enhanced {
		summary, err := s.enhanced(comments)
		if err == nil {
			return summary
		}
		s.log.Warnf("enhanced comment analysis unavailable, using simple summary: %v", err)
	}

	return simpleSummary(comments)
}

func (s *Summarizer) enhanced(comments []webtoon.Comment) (summary string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analyzer panic: %v", r)
		}
	}()

	a, err := analyze(comments, s.tokenize, enhancedTopWords)
	if err != nil {
		return "", err
	}
	topics, score := a.topics, a.sentiment
	if len(topics) == 0 {
		topics = []string{noCommonWords}
	}

	var b strings.Builder
	writeOpening(&b, comments)
	fmt.Fprintf(&b, "The overall sentiment is %s (score: %.2f). ", sentimentBucket(score), score)
	fmt.Fprintf(&b, "The most discussed topics include: %s. ", strings.Join(topics[:min(shownTopics, len(topics))], ", "))
	writeClosing(&b, comments)

	return b.String(), nil
}

func simpleSummary(comments []webtoon.Comment) string {
	var b strings.Builder
	writeOpening(&b, comments)
	if words := frequentWords(comments, simpleTopWords); len(words) > 0 {
		fmt.Fprintf(&b, "Frequently mentioned words include: %s. ", strings.Join(words, ", "))
	}
	writeClosing(&b, comments)
	return b.String()
}

func writeOpening(b *strings.Builder, comments []webtoon.Comment) {
	fmt.Fprintf(b, "A total of %d comments were analyzed for this episode. ", len(comments))
}

func writeClosing(b *strings.Builder, comments []webtoon.Comment) {
	fmt.Fprintf(b, "The average comment contains %.1f words. ", averageWords(comments))

	text, likes := noTopComment, "0"
	if top, ok := mostLiked(comments); ok {
		text, likes = top.Text, top.Likes
	}
	fmt.Fprintf(b, "Most upvoted comment (%s likes): \"%s\"", likes, truncate(text, topCommentChars))
}

func averageWords(comments []webtoon.Comment) float64 {
	total := 0
	for _, c := range comments {
		total += len(strings.Fields(c.Text))
	}
	return float64(total) / float64(len(comments))
}

// LikeCount parses a like counter such as "1,204". Display forms like
// "1.2K" count as zero.
func LikeCount(likes string) int {
	digits := strings.ReplaceAll(likes, ",", "")
	if digits == "" {
		return 0
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// mostLiked returns the first comment with the highest like count.
func mostLiked(comments []webtoon.Comment) (webtoon.Comment, bool) {
	if len(comments) == 0 {
		return webtoon.Comment{}, false
	}
	best, bestLikes := comments[0], LikeCount(comments[0].Likes)
	for _, c := range comments[1:] {
		if n := LikeCount(c.Likes); n > bestLikes {
			best, bestLikes = c, n
		}
	}
	return best, true
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

// frequentWords counts lowercased whitespace-separated words of at least
// minWordLen characters.
func frequentWords(comments []webtoon.Comment, n int) []string {
	var words []string
	for _, c := range comments {
		for _, w := range strings.Fields(c.Text) {
			if utf8.RuneCountInString(w) >= minWordLen {
				words = append(words, strings.ToLower(w))
			}
		}
	}
	return topN(words, n)
}

// topN ranks words by count, breaking ties by first appearance.
func topN(words []string, n int) []string {
	type entry struct {
		word  string
		count int
		first int
	}

	idx := map[string]int{}
	var entries []entry
	for i, w := range words {
		if j, ok := idx[w]; ok {
			entries[j].count++
			continue
		}
		idx[w] = len(entries)
		entries = append(entries, entry{word: w, count: 1, first: i})
	}

	slices.SortStableFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(b.count, a.count); c != 0 {
			return c
		}
		return cmp.Compare(a.first, b.first)
	})

	out := make([]string, 0, min(n, len(entries)))
	for _, e := range entries[:min(n, len(entries))] {
		out = append(out, e.word)
	}
	return out
}
