package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var backgroundPatterns = []*regexp.Regexp{
	regexp.MustCompile(`background(?:-image)?\s*:\s*url\(\s*'([^']+)'\s*\)`),
	regexp.MustCompile(`background(?:-image)?\s*:\s*url\(\s*"([^"]+)"\s*\)`),
	regexp.MustCompile(`background(?:-image)?\s*:\s*url\(\s*([^)'"\s]+)\s*\)`),
}

var (
	foregroundFragments = []string{
		"desktop_fg.png",
		"landingpage_desktop_fg",
		"episodelist_pc_fg",
		"landingpage_fg",
		"_fg.png",
		"_fg.jpg",
	}
	characterFragments = []string{
		"character.png",
		"pc_character",
		"title.png",
		"logo.png",
		"front.png",
	}
)

func backgroundFromStyle(style string) string {
	for _, re := range backgroundPatterns {
		if m := re.FindStringSubmatch(style); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

var backgroundStrategies = []strategy[string]{
	{"detail-bg", func(s *goquery.Selection) (string, bool) {
		u := backgroundFromStyle(s.Find("div.detail_bg").First().AttrOr("style", ""))
		return u, u != ""
	}},
	{"any-div-style", func(s *goquery.Selection) (string, bool) {
		var found string
		s.Find("div[style]").EachWithBreak(func(_ int, d *goquery.Selection) bool {
			found = backgroundFromStyle(d.AttrOr("style", ""))
			return found == ""
		})
		return found, found != ""
	}},
}

func imgWithFragment(s *goquery.Selection, frags []string) (string, bool) {
	var found string
	s.Find("img[src]").EachWithBreak(func(_ int, img *goquery.Selection) bool {
		src := img.AttrOr("src", "")
		lower := strings.ToLower(src)
		for _, f := range frags {
			if strings.Contains(lower, f) {
				found = src
				return false
			}
		}
		return true
	})
	return found, found != ""
}

var foregroundStrategies = []strategy[string]{
	{"foreground-filename", func(s *goquery.Selection) (string, bool) {
		return imgWithFragment(s, foregroundFragments)
	}},
	{"detail-bg-sibling", func(s *goquery.Selection) (string, bool) {
		bg := s.Find("div.detail_bg").First()
		if bg.Length() == 0 {
			return "", false
		}
		src := strings.TrimSpace(bg.Parent().Find("img[src]").First().AttrOr("src", ""))
		return src, src != ""
	}},
	{"character-filename", func(s *goquery.Selection) (string, bool) {
		return imgWithFragment(s, characterFragments)
	}},
}

// ParseBanners returns the absolute background and foreground banner URLs.
// Either may be empty; one is never substituted for the other.
func ParseBanners(doc *goquery.Document) (bg, fg string) {
	if doc == nil {
		return "", ""
	}
	bg, _ = firstOf(doc.Selection, backgroundStrategies)
	fg, _ = firstOf(doc.Selection, foregroundStrategies)
	return absolutize(bg), absolutize(fg)
}
