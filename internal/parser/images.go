package parser

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	imageContainers = []string{"div#_imageList", "div#content", "div.viewer_lst"}
	imageSrcAttrs   = []string{"data-url", "data-src", "src"}

	// hosts serving chapter artwork; everything else is page chrome
	imageHostFragments = []string{"webtoon-phinf", "comic.naver", "daumcdn"}

	reScriptImage = regexp.MustCompile(`https?://[^\s'"]+\.(?:jpg|jpeg|png|webp)`)
)

// ParseImages returns the chapter's artwork URLs in reading order.
func ParseImages(doc *goquery.Document, chapterURL string) []string {
	if doc == nil {
		return nil
	}

	scope := doc.Selection
	for _, sel := range imageContainers {
		if c := doc.Find(sel).First(); c.Length() > 0 {
			scope = c
			break
		}
	}

	base, _ := url.Parse(chapterURL)

	var out []string
	scope.Find("img").Each(func(_ int, img *goquery.Selection) {
		src := imageSource(img)
		if src == "" {
			return
		}
		src = resolve(base, strings.ReplaceAll(src, "&amp;", "&"))
		if isArtwork(src) {
			out = append(out, src)
		}
	})
	if len(out) > 0 {
		return out
	}

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		out = append(out, reScriptImage.FindAllString(s.Text(), -1)...)
	})
	return out
}

func imageSource(img *goquery.Selection) string {
	for _, attr := range imageSrcAttrs {
		if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return ""
}

func resolve(base *url.URL, ref string) string {
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	if base == nil {
		return absolutize(ref)
	}
	r, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(r).String()
}

func isArtwork(u string) bool {
	hosted := false
	for _, f := range imageHostFragments {
		if strings.Contains(u, f) {
			hosted = true
			break
		}
	}
	if !hosted {
		return false
	}

	p := u
	if parsed, err := url.Parse(u); err == nil {
		p = parsed.Path
	}
	return !strings.EqualFold(path.Ext(p), ".gif")
}
