package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/webtoond/internal/webtoon"
)

// Metadata is what a listing page says about its series.
type Metadata struct {
	Title       string
	Author      string
	Genre       string
	Grade       *float64
	Views       string
	Subscribers string
	DayInfo     string
	BannerBgURL string
	BannerFgURL string
}

var (
	reSpaces       = regexp.MustCompile(`\s+`)
	reRepeatCommas = regexp.MustCompile(`,\s*,`)
)

// cleanText collapses whitespace runs and repeated commas and trims stray
// commas at either end.
func cleanText(s string) string {
	s = reSpaces.ReplaceAllString(s, " ")
	for reRepeatCommas.MatchString(s) {
		s = reRepeatCommas.ReplaceAllString(s, ",")
	}
	s = strings.Trim(strings.TrimSpace(s), ",")
	return strings.TrimSpace(s)
}

func textOf(s *goquery.Selection) (string, bool) {
	if s.Length() == 0 {
		return "", false
	}
	t := cleanText(s.First().Text())
	return t, t != ""
}

// textWithout reads s with every child matching drop removed, leaving the
// document untouched.
func textWithout(s *goquery.Selection, drop string) (string, bool) {
	if s.Length() == 0 {
		return "", false
	}
	c := s.First().Clone()
	c.Find(drop).Remove()
	t := cleanText(c.Text())
	return t, t != ""
}

var titleStrategies = []strategy[string]{
	{"h1", func(s *goquery.Selection) (string, bool) { return textOf(s.Find("h1")) }},
	{"og:title", func(s *goquery.Selection) (string, bool) {
		v := cleanText(s.Find(`meta[property="og:title"]`).First().AttrOr("content", ""))
		return v, v != ""
	}},
	{"title", func(s *goquery.Selection) (string, bool) { return textOf(s.Find("title")) }},
}

var authorStrategies = []strategy[string]{
	{"author-area", func(s *goquery.Selection) (string, bool) {
		return textWithout(s.Find("div.author_area"), "button")
	}},
	{"author-class", func(s *goquery.Selection) (string, bool) {
		return textOf(findByClassFold(s, "", []string{"author"}))
	}},
}

var genreStrategies = []strategy[string]{
	{"genre-heading", func(s *goquery.Selection) (string, bool) {
		return textOf(findByClassFold(s, "h2", []string{"genre"}))
	}},
	{"genre-class", func(s *goquery.Selection) (string, bool) {
		return textOf(findByClassFold(s, "", []string{"genre"}))
	}},
}

// ParseSeriesMetadata reads title, author, genre, counters, publish day and
// banner URLs from a listing page. Missing fields stay empty.
func ParseSeriesMetadata(doc *goquery.Document) Metadata {
	var m Metadata
	if doc == nil {
		return m
	}
	root := doc.Selection

	m.Title, _ = firstOf(root, titleStrategies)
	m.Author, _ = firstOf(root, authorStrategies)
	m.Genre, _ = firstOf(root, genreStrategies)

	root.Find("ul.grade_area li").Each(func(_ int, li *goquery.Selection) {
		value := cleanText(li.Find("em.cnt").First().Text())
		switch {
		case li.Find("span.ico_view").Length() > 0:
			m.Views = value
		case li.Find("span.ico_subscribe").Length() > 0:
			m.Subscribers = value
		case li.Find("span.ico_grade5").Length() > 0:
			if g, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64); err == nil {
				m.Grade = &g
			}
		}
	})

	m.DayInfo, _ = textWithout(root.Find("p.day_info"), "span")

	m.BannerBgURL, m.BannerFgURL = ParseBanners(doc)

	return m
}

// BuildSeries assembles a series record for listingURL from its first
// listing page. Chapters are attached by the caller.
func BuildSeries(doc *goquery.Document, listingURL string) *webtoon.Series {
	titleNo, slug := webtoon.ExtractListingInfo(listingURL)
	m := ParseSeriesMetadata(doc)

	title := m.Title
	if title == "" {
		title = slug
	}

	return &webtoon.Series{
		TitleNo:     titleNo,
		Slug:        slug,
		Title:       title,
		Author:      m.Author,
		Genre:       m.Genre,
		Grade:       m.Grade,
		Views:       m.Views,
		Subscribers: m.Subscribers,
		DayInfo:     m.DayInfo,
		URL:         listingURL,
		BannerBgURL: m.BannerBgURL,
		BannerFgURL: m.BannerFgURL,
		LastUpdated: time.Now().UTC(),
	}
}
