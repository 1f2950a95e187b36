package chapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/webtoond/internal/webtoon"
)

func eps(chs []*webtoon.Chapter) []string {
	var out []string
	for _, c := range chs {
		out = append(out, c.EpisodeNo)
	}
	return out
}

func all() []*webtoon.Chapter {
	var out []*webtoon.Chapter
	for _, ep := range []string{"1", "2", "3", "5", "8"} {
		out = append(out, &webtoon.Chapter{EpisodeNo: ep})
	}
	return out
}

func TestFilter(t *testing.T) {
	got, err := Filter(all(), "", "", "")
	require.NoError(t, err)
	assert.Len(t, got, 5)

	got, err = Filter(all(), "5", "1-3", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, eps(got))

	_, err = Filter(all(), "4", "", "")
	assert.Error(t, err)

	got, err = Filter(all(), "", "2-5", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "3", "5"}, eps(got))

	got, err = Filter(all(), "", "", "8, 1,42")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "8"}, eps(got))
}

func TestFilterRejectsBadInput(t *testing.T) {
	for _, rng := range []string{"5", "3-1", "a-b", "0-2", "1-2-3"} {
		_, err := FilterRange(all(), rng)
		assert.ErrorIs(t, err, ErrBadSelection, rng)
	}

	_, err := FilterList(all(), "1,x")
	assert.ErrorIs(t, err, ErrBadSelection)
}

func TestNewestFirst(t *testing.T) {
	in := all()
	assert.Equal(t, []string{"8", "5", "3", "2", "1"}, eps(NewestFirst(in)))
	assert.Equal(t, "1", in[0].EpisodeNo)
}

func TestParsePositions(t *testing.T) {
	got, err := ParsePositions("all", 3)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2}, got)

	got, err = ParsePositions("3, 1-2,2", 4)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 0, 1}, got)

	for _, in := range []string{"", "5", "0", "x", "2-1"} {
		_, err := ParsePositions(in, 4)
		assert.ErrorIs(t, err, ErrBadSelection, in)
	}
}
