package parser

import (
	"slices"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/webtoond/internal/webtoon"
)

const (
	markerEpisode = "episode"
	markerViewer  = "viewer"
	markerTitleNo = "title_no"
)

var chapterLinkStrategies = []strategy[[]string]{
	{"list-nav-class", linksByNavClass},
	{"viewer-href", linksByViewerHref},
	{"episode-containers", linksByEpisodeContainers},
	{"any-episode-href", linksByEpisodeHref},
}

// ParseChapterLinks returns the chapter URLs of one listing page in document
// order.
func ParseChapterLinks(doc *goquery.Document) []string {
	if doc == nil {
		return nil
	}
	links, _ := firstOf(doc.Selection, chapterLinkStrategies)
	return links
}

// CollectChapters merges the links of every listing page into one chapter
// list, dropping repeats and ordering by ascending episode number. Episodes
// without a numeric number keep their discovery order at the end.
func CollectChapters(pages []*goquery.Document, titleNo string) []*webtoon.Chapter {
	seen := map[string]bool{}
	var out []*webtoon.Chapter
	for _, page := range pages {
		for _, link := range ParseChapterLinks(page) {
			if seen[link] {
				continue
			}
			seen[link] = true

			ch := webtoon.NewChapter(link)
			ch.TitleNo = titleNo
			out = append(out, ch)
		}
	}

	slices.SortStableFunc(out, func(a, b *webtoon.Chapter) int {
		x, errX := strconv.Atoi(a.EpisodeNo)
		y, errY := strconv.Atoi(b.EpisodeNo)
		switch {
		case errX != nil && errY != nil:
			return 0
		case errX != nil:
			return 1
		case errY != nil:
			return -1
		}
		return x - y
	})
	return out
}

func cleanLink(href string) string {
	href = strings.ReplaceAll(strings.TrimSpace(href), "&amp;", "&")
	return absolutize(href)
}

// absolutize prefixes protocol-relative and root-relative URLs.
func absolutize(u string) string {
	switch {
	case u == "":
		return u
	case strings.HasPrefix(u, "http://"), strings.HasPrefix(u, "https://"):
		return u
	case strings.HasPrefix(u, "//"):
		return "https:" + u
	case strings.HasPrefix(u, "/"):
		return webtoon.Domain + u
	default:
		return u
	}
}

func collectLinks(sel *goquery.Selection, keep func(href string) bool) []string {
	var out []string
	sel.Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || !keep(href) {
			return
		}
		out = append(out, cleanLink(href))
	})
	return out
}

func nonEmpty(links []string) ([]string, bool) {
	return links, len(links) > 0
}

func isViewerHref(href string) bool {
	return strings.Contains(href, markerEpisode) && strings.Contains(href, markerViewer)
}

func isEpisodeOrViewerHref(href string) bool {
	return strings.Contains(href, markerEpisode) || strings.Contains(href, markerViewer)
}

func linksByNavClass(sel *goquery.Selection) ([]string, bool) {
	anchors := sel.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
		for _, c := range classes(a) {
			if strings.HasPrefix(c, listNavClassPrefix) {
				return true
			}
		}
		return false
	})
	return nonEmpty(collectLinks(anchors, isViewerHref))
}

func linksByViewerHref(sel *goquery.Selection) ([]string, bool) {
	return nonEmpty(collectLinks(sel.Find("a"), func(href string) bool {
		return isViewerHref(href) && strings.Contains(href, markerTitleNo)
	}))
}

func linksByEpisodeContainers(sel *goquery.Selection) ([]string, bool) {
	items := findByClass(sel, "li", episodeItemClasses)
	if links := collectLinks(items.Find("a[href]"), isEpisodeOrViewerHref); len(links) > 0 {
		return links, true
	}

	if links := collectLinks(sel.Find("ul#_listUl li a[href]"), isEpisodeOrViewerHref); len(links) > 0 {
		return links, true
	}

	lists := sel.Find("ul").FilterFunction(func(_ int, ul *goquery.Selection) bool {
		return strings.Contains(strings.ToLower(ul.AttrOr("id", "")), markerEpisode)
	})
	if lists.Length() == 0 {
		lists = findByClassFold(sel, "ul", []string{markerEpisode})
	}

	return nonEmpty(collectLinks(lists.Find("li a[href]"), isEpisodeOrViewerHref))
}

func linksByEpisodeHref(sel *goquery.Selection) ([]string, bool) {
	return nonEmpty(collectLinks(sel.Find("a[href]"), func(href string) bool {
		return strings.Contains(href, markerEpisode)
	}))
}
