// Package parser extracts chapter links, series metadata, chapter images and
// reader comments from platform pages. Every field is read through an ordered
// list of named strategies; the first one that yields a result wins. Parsers
// never fail: missing structure degrades to empty lists and zero values.
package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Class-name fragments matched by substring against each class of an element.
var (
	listNavClassPrefix = "NPI=a:list"

	episodeItemClasses = []string{"_episodeItem"}

	commentListClasses       = []string{"commentList", "CommentList", "comment-list", "wcc_CommentList"}
	commentItemInListClasses = []string{"wcc_CommentItem__root", "CommentItem", "comment-item"}
	commentItemClasses       = []string{"wcc_CommentItem", "CommentItem", "comment-item"}
	commentInsideClass       = "wcc_CommentItem__inside"
	commentTextClass         = "wcc_TextContent__content"
	commentAncestorClasses   = []string{"CommentItem"}

	commentNameClasses    = []string{"CommentHeader__name"}
	commentDateClasses    = []string{"createdAt"}
	commentContentClasses = []string{"TextContent__content"}
	commentBadgeClasses   = []string{"TopBadge", "badge", "sr-only"} // matched ignoring case
)

func classes(s *goquery.Selection) []string {
	return strings.Fields(s.AttrOr("class", ""))
}

// hasClassFragment reports whether any class of s contains any fragment.
func hasClassFragment(s *goquery.Selection, frags []string) bool {
	for _, c := range classes(s) {
		for _, f := range frags {
			if strings.Contains(c, f) {
				return true
			}
		}
	}
	return false
}

// hasClassFragmentFold is hasClassFragment ignoring case.
func hasClassFragmentFold(s *goquery.Selection, frags []string) bool {
	for _, c := range classes(s) {
		lc := strings.ToLower(c)
		for _, f := range frags {
			if strings.Contains(lc, strings.ToLower(f)) {
				return true
			}
		}
	}
	return false
}

// findByClass returns descendants of sel matching tag ("" for any) that carry
// one of the class fragments.
func findByClass(sel *goquery.Selection, tag string, frags []string) *goquery.Selection {
	if tag == "" {
		tag = "*"
	}
	return sel.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasClassFragment(s, frags)
	})
}

func findByClassFold(sel *goquery.Selection, tag string, frags []string) *goquery.Selection {
	if tag == "" {
		tag = "*"
	}
	return sel.Find(tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasClassFragmentFold(s, frags)
	})
}

// strategy is one named way of extracting a value.
type strategy[T any] struct {
	name string
	run  func(*goquery.Selection) (T, bool)
}

// firstOf runs strategies in order and returns the first successful result
// together with the name of the strategy that produced it.
func firstOf[T any](sel *goquery.Selection, strategies []strategy[T]) (T, string) {
	for _, st := range strategies {
		if v, ok := st.run(sel); ok {
			return v, st.name
		}
	}
	var zero T
	return zero, ""
}
