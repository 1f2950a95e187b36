package fetch

import (
	"context"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/webtoond/internal/webtoon"
)

// PageCount reads the highest page number from the listing's pagination
// widget, or 1 when there is none.
func PageCount(doc *goquery.Document) int {
	maxPage := 1
	if doc == nil {
		return maxPage
	}

	doc.Find("div.paginate a").Each(func(_ int, a *goquery.Selection) {
		text := strings.TrimSpace(a.Find("span").First().Text())
		if text == "" {
			text = strings.TrimSpace(a.Text())
		}
		if n, err := strconv.Atoi(text); err == nil && n > maxPage {
			maxPage = n
		}
	})

	return maxPage
}

// FetchPaginated fetches every page of a chapter list. A failing first page
// yields no documents; later pages that fail are logged and skipped.
func (f *Fetcher) FetchPaginated(ctx context.Context, baseURL, titleNo string) []*goquery.Document {
	first, err := f.Fetch(ctx, webtoon.PageURL(baseURL, titleNo, 1))
	if err != nil {
		return nil
	}

	pages := []*goquery.Document{first}
	total := PageCount(first)
	f.log.Infof("found %d page(s) of chapters", total)

	for n := 2; n <= total; n++ {
		if ctx.Err() != nil {
			break
		}

		u := webtoon.PageURL(baseURL, titleNo, n)
		f.log.Debugf("fetching page %d: %s", n, u)

		doc, err := f.Fetch(ctx, u)
		if err != nil {
			f.log.Warnf("skipping page %d: %v", n, err)
			continue
		}
		pages = append(pages, doc)
	}

	return pages
}
