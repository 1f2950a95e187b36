package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/webtoond/internal/webtoon"
)

const (
	UnknownUser = "Unknown User"
	UnknownDate = "Unknown Date"
	NoLikes     = "0"

	maxAncestorWalk = 5
)

var commentItemStrategies = []strategy[*goquery.Selection]{
	{"comment-list", func(s *goquery.Selection) (*goquery.Selection, bool) {
		lists := findByClass(s, "", commentListClasses)
		items := outermost(findByClass(lists, "li, div", commentItemInListClasses))
		return items, items.Length() > 0
	}},
	{"comment-item", func(s *goquery.Selection) (*goquery.Selection, bool) {
		items := outermost(findByClass(s, "li", commentItemClasses))
		return items, items.Length() > 0
	}},
	{"inside-wrapper", func(s *goquery.Selection) (*goquery.Selection, bool) {
		var nodes []*goquery.Selection
		s.Find("div." + commentInsideClass).Each(func(_ int, d *goquery.Selection) {
			if p := d.Parent(); p.Is("li") {
				nodes = append(nodes, p)
				return
			}
			nodes = append(nodes, d)
		})
		sel := union(s, nodes)
		return sel, sel.Length() > 0
	}},
	{"text-ancestor", func(s *goquery.Selection) (*goquery.Selection, bool) {
		var nodes []*goquery.Selection
		s.Find("p." + commentTextClass).Each(func(_ int, p *goquery.Selection) {
			cur := p.Parent()
			for i := 0; i < maxAncestorWalk && cur.Length() > 0; i++ {
				if cur.Is("li") || hasClassFragment(cur, commentAncestorClasses) {
					nodes = append(nodes, cur)
					return
				}
				cur = cur.Parent()
			}
		})
		sel := union(s, nodes)
		return sel, sel.Length() > 0
	}},
}

// outermost drops elements nested inside another element of sel, so a
// comment root and its inner wrapper are not read twice.
func outermost(sel *goquery.Selection) *goquery.Selection {
	return sel.FilterFunction(func(_ int, s *goquery.Selection) bool {
		return sel.HasNodes(s.Get(0)).Length() == 0
	})
}

// union merges selections into one, dropping duplicate nodes.
func union(root *goquery.Selection, parts []*goquery.Selection) *goquery.Selection {
	out := root.Slice(0, 0)
	for _, p := range parts {
		out = out.AddSelection(p)
	}
	return out
}

// ParseComments extracts reader comments in page order. Candidates without
// body text are dropped, and a candidate that cannot be read is skipped.
func ParseComments(doc *goquery.Document) []webtoon.Comment {
	comments := []webtoon.Comment{}
	if doc == nil {
		return comments
	}

	items, _ := firstOf(doc.Selection, commentItemStrategies)
	if items == nil {
		return comments
	}

	items.Each(func(_ int, item *goquery.Selection) {
		if c, ok := parseComment(item); ok {
			comments = append(comments, c)
		}
	})

	return comments
}

func parseComment(item *goquery.Selection) (c webtoon.Comment, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	container := item
	if inside := item.Find("div." + commentInsideClass).First(); inside.Length() > 0 {
		container = inside
	}

	text := commentText(container)
	if text == "" {
		return c, false
	}

	return webtoon.Comment{
		Username: firstText(UnknownUser,
			container.Find("span.wcc_CommentHeader__name, a.wcc_CommentHeader__name"),
			findByClass(container, "", commentNameClasses)),
		Date: firstText(UnknownDate,
			container.Find("time.wcc_CommentHeader__createdAt"),
			container.Find("time"),
			findByClass(container, "", commentDateClasses)),
		Text:  text,
		Likes: commentLikes(container),
	}, true
}

// firstText returns the trimmed text of the first non-empty candidate
// selection, or def.
func firstText(def string, candidates ...*goquery.Selection) string {
	for _, c := range candidates {
		if c.Length() == 0 {
			continue
		}
		if t := strings.TrimSpace(c.First().Text()); t != "" {
			return t
		}
	}
	return def
}

func commentText(container *goquery.Selection) string {
	el := container.Find("p." + commentTextClass).First()
	if el.Length() == 0 {
		el = findByClass(container, "", commentContentClasses).First()
	}
	if el.Length() == 0 {
		el = container.Find("p").First()
	}
	if el.Length() == 0 {
		return ""
	}

	el = el.Clone()
	el.Find("span").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasClassFragmentFold(s, commentBadgeClasses)
	}).Remove()

	var parts []string
	el.Find("span").Each(func(_ int, s *goquery.Selection) {
		if t := strings.TrimSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}

	return strings.TrimSpace(el.Text())
}

func commentLikes(container *goquery.Selection) string {
	btn := container.Find("div.wcc_CommentReaction__root button.wcc_CommentReaction__action").First()
	if t := strings.TrimSpace(btn.Find("span").First().Text()); t != "" {
		return t
	}
	return NoLikes
}
