package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/webtoond/internal/webtoon"
)

func chapter(ep string) *webtoon.Chapter {
	return webtoon.NewChapter("https://www.webtoons.com/en/fantasy/tower/ep-" + ep + "/viewer?title_no=95&episode_no=" + ep)
}

func testSeries(eps ...string) *webtoon.Series {
	s := &webtoon.Series{TitleNo: "95", Slug: "tower", Title: "Tower"}
	for _, ep := range eps {
		s.AddChapter(chapter(ep))
	}
	return s
}

func TestQueueRoundTrip(t *testing.T) {
	dir := t.TempDir()
	q := NewQueue(dir, nil)

	assert.Nil(t, q.Load())
	assert.False(t, q.Exists())

	chs := []*webtoon.Chapter{chapter("3"), chapter("1"), chapter("2")}
	require.NoError(t, q.Save(chs))
	assert.True(t, q.Exists())

	assert.Equal(t, []string{chs[0].URL, chs[1].URL, chs[2].URL}, q.Load())

	rec, err := q.Record()
	require.NoError(t, err)
	assert.Equal(t, 3, rec.TotalChapters)
	assert.Greater(t, rec.Timestamp, 0.0)

	require.NoError(t, q.Clear())
	assert.Nil(t, q.Load())
	require.NoError(t, q.Clear(), "clearing twice is fine")
}

func TestQueueUnparseableIsAbsent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, QueueFile), []byte("{not json"), 0o644))

	q := NewQueue(dir, nil)
	assert.Nil(t, q.Load())

	_, err := q.Record()
	assert.ErrorIs(t, err, ErrNoQueue)
}

func TestDownloadedRecord(t *testing.T) {
	dir := t.TempDir()

	d := LoadDownloaded(dir, nil)
	assert.Equal(t, 0, d.Len())

	d.Add("10", "2", "1", "2")
	require.NoError(t, d.Save())

	again := LoadDownloaded(dir, nil)
	assert.Equal(t, []string{"1", "2", "10"}, again.Episodes())
	assert.True(t, again.Has("10"))
	assert.False(t, again.Has("3"))
}

func TestDownloadedAcceptsLegacyList(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DownloadedFile), []byte(`["1","5"]`), 0o644))

	d := LoadDownloaded(dir, nil)
	assert.Equal(t, []string{"1", "5"}, d.Episodes())
}

func TestDownloadedGarbageIsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DownloadedFile), []byte(`42`), 0o644))

	assert.Equal(t, 0, LoadDownloaded(dir, nil).Len())
}

func TestWriteAndReadSeries(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "webtoon_95_tower")
	s := testSeries("1", "2")
	grade := 9.5
	s.Grade = &grade

	require.NoError(t, WriteSeries(dir, s))

	links, err := ReadLinks(dir)
	require.NoError(t, err)
	assert.Equal(t, "95", links.TitleNo)
	assert.Equal(t, "tower", links.SeriesName)
	assert.Equal(t, 2, links.TotalChapters)
	assert.Equal(t, []string{s.Chapters[0].URL, s.Chapters[1].URL}, links.Chapters)

	got, err := ReadSeries(dir)
	require.NoError(t, err)
	assert.Equal(t, "Tower", got.Title)
	assert.Equal(t, 2, got.NumChapters)
	require.NotNil(t, got.Grade)
	assert.Equal(t, 9.5, *got.Grade)
	assert.Equal(t, "2", got.Chapters[1].EpisodeNo)

	_, err = os.Stat(filepath.Join(dir, InfoFile+".tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestReadSeriesMissing(t *testing.T) {
	_, err := ReadSeries(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestInspectAndPending(t *testing.T) {
	dir := t.TempDir()
	s := testSeries("1", "2", "3", "4")

	d := LoadDownloaded(dir, nil)
	d.Add("1")
	require.NoError(t, d.Save())

	// episode 2 has images on disk but is not recorded
	ch2 := ChapterDir(dir, s.Chapters[1])
	require.NoError(t, os.MkdirAll(ch2, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ch2, "001.jpg"), []byte("x"), 0o644))

	_, err := Pending(dir, s, nil)
	assert.ErrorIs(t, err, ErrNoQueue)

	require.NoError(t, NewQueue(dir, nil).Save(s.Chapters))

	st := Inspect(dir, s, nil)
	assert.Equal(t, 4, st.TotalChapters)
	assert.Equal(t, 2, st.DownloadedChapters)
	assert.True(t, st.PendingQueue)
	assert.Equal(t, 4, st.QueuedChapters)
	assert.InDelta(t, 50.0, st.Percent(), 0.001)
	assert.False(t, st.Complete)

	pending, err := Pending(dir, s, nil)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "3", pending[0].EpisodeNo)
	assert.Equal(t, "4", pending[1].EpisodeNo)
}

func TestInspectComplete(t *testing.T) {
	dir := t.TempDir()
	s := testSeries("1", "2")

	d := LoadDownloaded(dir, nil)
	d.Add("1")
	d.Add("2")
	require.NoError(t, d.Save())

	st := Inspect(dir, s, nil)
	assert.True(t, st.Complete)
	assert.False(t, st.PendingQueue)
	assert.InDelta(t, 100.0, st.Percent(), 0.001)
}

func TestStatusPercentEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Status{}.Percent())
}
