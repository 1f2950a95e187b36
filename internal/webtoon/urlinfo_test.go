package webtoon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const viewerURL = "https://www.webtoons.com/en/fantasy/tower-of-god/season-1-ep-1/viewer?title_no=95&episode_no=1"

func TestExtractChapterInfo(t *testing.T) {
	ep, title := ExtractChapterInfo(viewerURL)
	assert.Equal(t, "1", ep)
	assert.Equal(t, "Season 1 Ep 1", title)

	ep, title = ExtractChapterInfo("https://www.webtoons.com/en/drama/some_title/ep_10-final/viewer?title_no=1&episode_no=10a")
	assert.Equal(t, "10a", ep)
	assert.Equal(t, "Ep 10 Final", title)
}

func TestExtractChapterInfoDefaults(t *testing.T) {
	for _, in := range []string{"", "not a url", "%zz", "https://www.webtoons.com/en/viewer", "::::"} {
		ep, title := ExtractChapterInfo(in)
		assert.Equal(t, "0", ep, in)
		assert.Equal(t, "Unknown", title, in)
	}
}

func TestExtractListingInfo(t *testing.T) {
	id, slug := ExtractListingInfo("https://www.webtoons.com/en/fantasy/tower-of-god/list?title_no=95")
	assert.Equal(t, "95", id)
	assert.Equal(t, "tower-of-god", slug)

	id, slug = ExtractListingInfo(viewerURL)
	assert.Equal(t, "95", id)
	assert.Equal(t, "tower-of-god", slug)

	for _, in := range []string{"", "%zz", "https://www.webtoons.com/en"} {
		id, slug = ExtractListingInfo(in)
		assert.Equal(t, "", id, in)
		assert.Equal(t, "unknown", slug, in)
	}
}

func TestNormalizeToListing(t *testing.T) {
	got := NormalizeToListing(viewerURL)
	assert.Equal(t, "https://www.webtoons.com/en/fantasy/tower-of-god/list?title_no=95", got)

	// already a listing URL
	assert.Equal(t, got, NormalizeToListing(got))

	assert.Equal(t, "https://example.com/a", NormalizeToListing("https://example.com/a"))
	assert.Equal(t, "%zz", NormalizeToListing("%zz"))
}

func TestPageURL(t *testing.T) {
	base := ListingBase("https://www.webtoons.com/en/fantasy/tower-of-god/list?title_no=95")
	assert.Equal(t, "https://www.webtoons.com/en/fantasy/tower-of-god/list", base)
	assert.Equal(t, base+"?title_no=95", PageURL(base, "95", 1))
	assert.Equal(t, base+"?title_no=95&page=3", PageURL(base, "95", 3))
}

func TestFolderNames(t *testing.T) {
	assert.Equal(t, "webtoon_95_tower-of-god", SeriesFolderName("95", "tower-of-god"))
	assert.Equal(t, "Episode_3_What- Why-", ChapterFolderName("3", `What? Why*`))
}

func TestSeriesChapterBookkeeping(t *testing.T) {
	s := &Series{TitleNo: "95", Slug: "tower-of-god"}
	a := NewChapter(viewerURL)
	s.AddChapter(a)
	s.AddChapter(NewChapter(viewerURL))
	assert.Equal(t, 1, s.NumChapters)

	s.SetChapters(ChaptersFromLinks([]string{viewerURL, "https://www.webtoons.com/en/fantasy/tower-of-god/season-1-ep-2/viewer?title_no=95&episode_no=2"}))
	assert.Equal(t, 2, s.NumChapters)
	assert.Equal(t, "2", s.ChapterByURL(s.Chapters[1].URL).EpisodeNo)
	assert.Nil(t, s.ChapterByURL("https://www.webtoons.com/nowhere"))
	assert.False(t, s.IsComplete())

	for _, c := range s.Chapters {
		c.MarkDownloaded(4, "")
	}
	assert.True(t, s.IsComplete())
	assert.Equal(t, 4, s.Chapters[0].ImageCount)
}

func TestCheckDownloadExists(t *testing.T) {
	dir := t.TempDir()
	c := NewChapter(viewerURL)
	assert.False(t, c.CheckDownloadExists(dir))

	folder := filepath.Join(dir, c.FolderName())
	require.NoError(t, os.MkdirAll(folder, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "comments_episode_1.txt"), []byte("x"), 0644))
	assert.False(t, c.CheckDownloadExists(dir))

	require.NoError(t, os.WriteFile(filepath.Join(folder, "001.jpg"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(folder, "002.PNG"), []byte("x"), 0644))
	assert.True(t, c.CheckDownloadExists(dir))
	assert.Equal(t, 2, c.ImagesDownloaded)
	assert.True(t, c.Downloaded)
}
