package fetch

import (
	"net/http"

	"github.com/brogergvhs/webtoond/internal/webtoon"
)

var pageHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Accept-Encoding":           "gzip, deflate, br",
	"Referer":                   webtoon.HomeURL,
	"sec-ch-ua":                 `"Google Chrome";v="113", "Chromium";v="113", "Not-A.Brand";v="24"`,
	"sec-ch-ua-mobile":          "?0",
	"sec-ch-ua-platform":        `"Windows"`,
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "same-origin",
	"Sec-Fetch-User":            "?1",
	"Upgrade-Insecure-Requests": "1",
}

var imageHeaders = map[string]string{
	"Accept":             "image/webp,image/apng,image/*,*/*;q=0.8",
	"Accept-Language":    "en-US,en;q=0.9",
	"Referer":            webtoon.HomeURL,
	"sec-ch-ua":          `"Google Chrome";v="113", "Chromium";v="113", "Not-A.Brand";v="24"`,
	"sec-ch-ua-mobile":   "?0",
	"sec-ch-ua-platform": `"Windows"`,
	"Sec-Fetch-Dest":     "image",
	"Sec-Fetch-Mode":     "no-cors",
	"Sec-Fetch-Site":     "cross-site",
}

// SetPageHeaders applies the browser navigation header profile.
func SetPageHeaders(req *http.Request) {
	for k, v := range pageHeaders {
		req.Header.Set(k, v)
	}
}

// SetImageHeaders applies the image request profile. A non-empty referer
// (the owning chapter URL) replaces the default site referer.
func SetImageHeaders(req *http.Request, referer string) {
	for k, v := range imageHeaders {
		req.Header.Set(k, v)
	}
	if referer != "" {
		req.Header.Set("Referer", referer)
	}
}
