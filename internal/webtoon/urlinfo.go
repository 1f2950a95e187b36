package webtoon

import (
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	Domain  = "https://www.webtoons.com"
	HomeURL = Domain + "/"

	paramTitleNo   = "title_no"
	paramEpisodeNo = "episode_no"
	viewerSegment  = "viewer"

	UnknownSlug  = "unknown"
	UnknownTitle = "Unknown"
	NoEpisode    = "0"
)

func pathSegments(u *url.URL) []string {
	return strings.Split(strings.Trim(u.Path, "/"), "/")
}

// ExtractListingInfo returns the title_no query value (empty when absent)
// and the third path segment as slug ("unknown" for short paths).
func ExtractListingInfo(raw string) (titleNo, slug string) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", UnknownSlug
	}

	titleNo = u.Query().Get(paramTitleNo)
	segs := pathSegments(u)
	if len(segs) >= 3 && segs[2] != "" {
		return titleNo, segs[2]
	}

	return titleNo, UnknownSlug
}

// ExtractChapterInfo returns the episode_no query value ("0" when absent)
// and a humanized title taken from the second-to-last path segment.
func ExtractChapterInfo(raw string) (episodeNo, title string) {
	episodeNo, title = NoEpisode, UnknownTitle

	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return episodeNo, title
	}

	if ep := u.Query().Get(paramEpisodeNo); ep != "" {
		episodeNo = ep
	}

	segs := pathSegments(u)
	if len(segs) >= 4 {
		title = humanize(segs[len(segs)-2])
	}

	return episodeNo, title
}

func humanize(seg string) string {
	seg = strings.NewReplacer("-", " ", "_", " ").Replace(seg)
	return cases.Title(language.English).String(seg)
}

// NormalizeToListing turns a viewer URL into its series list URL and returns
// every other URL unchanged.
func NormalizeToListing(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}

	segs := pathSegments(u)
	if !slices.Contains(segs, viewerSegment) || len(segs) < 3 {
		return raw
	}

	out := Domain + "/" + segs[0] + "/" + segs[1] + "/" + segs[2] + "/list"
	if id := u.Query().Get(paramTitleNo); id != "" {
		out += "?" + paramTitleNo + "=" + url.QueryEscape(id)
	}

	return out
}

// ListingBase strips query and fragment, leaving the URL pagination is built on.
func ListingBase(raw string) string {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}

// PageURL builds the URL of one page of a paginated chapter list.
func PageURL(base, titleNo string, page int) string {
	out := base + "?" + paramTitleNo + "=" + url.QueryEscape(titleNo)
	if page > 1 {
		out += "&page=" + strconv.Itoa(page)
	}
	return out
}

var reUnsafePath = regexp.MustCompile(`[\\/*?:"<>|]`)

func SeriesFolderName(titleNo, slug string) string {
	return "webtoon_" + titleNo + "_" + slug
}

func ChapterFolderName(episodeNo, title string) string {
	return "Episode_" + episodeNo + "_" + reUnsafePath.ReplaceAllString(title, "-")
}
