package comments

import (
	"math"
	"strings"
	"unicode"

	"github.com/jdkato/prose/v2"

	"github.com/brogergvhs/webtoond/internal/webtoon"
)

const (
	positiveThreshold = 0.2
	negativeThreshold = -0.2

	// normalizes a summed valence into (-1, 1)
	compoundAlpha = 15.0
	// how far back a negation word reaches
	negationWindow = 3
	negationFactor = -0.74
)

// tokenizer splits one comment into word tokens.
type tokenizer func(text string) ([]string, error)

func proseTokens(text string) ([]string, error) {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithSegmentation(false),
		prose.WithExtraction(false),
	)
	if err != nil {
		return nil, err
	}

	toks := doc.Tokens()
	out := make([]string, 0, len(toks))
	for _, t := range toks {
		out = append(out, t.Text)
	}
	return out, nil
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// analysis is the enhanced digest input, built from a single tokenization
// of every comment.
type analysis struct {
	topics    []string
	sentiment float64
}

// analyze ranks the n most frequent alphanumeric non-stopword tokens and
// averages the per-comment polarity.
func analyze(comments []webtoon.Comment, tok tokenizer, n int) (analysis, error) {
	var words []string
	total := 0.0
	for _, c := range comments {
		toks, err := tok(c.Text)
		if err != nil {
			return analysis{}, err
		}
		total += polarity(toks)

		for _, t := range toks {
			w := strings.ToLower(t)
			if !isAlnum(w) || stopwords[w] {
				continue
			}
			words = append(words, w)
		}
	}

	return analysis{
		topics:    topN(words, n),
		sentiment: total / float64(len(comments)),
	}, nil
}

// polarity scores one tokenized comment in [-1, 1] from the valence
// lexicon, flipping words that follow a negation.
func polarity(toks []string) float64 {
	sum := 0.0
	lastNegation := -negationWindow - 1
	for i, t := range toks {
		w := strings.ToLower(t)
		if negations[w] {
			lastNegation = i
			continue
		}
		v, ok := valence[w]
		if !ok {
			continue
		}
		if i-lastNegation <= negationWindow {
			v *= negationFactor
		}
		sum += v
	}

	if sum == 0 {
		return 0
	}
	return sum / math.Sqrt(sum*sum+compoundAlpha)
}

func sentimentBucket(score float64) string {
	switch {
	case score > positiveThreshold:
		return "positive"
	case score < negativeThreshold:
		return "negative"
	default:
		return "neutral"
	}
}
