package parser

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func doc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	d, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return d
}

func TestParseChapterLinksPrefersNavClass(t *testing.T) {
	d := doc(t, `<html><body>
		<ul id="_listUl">
			<li class="_episodeItem"><a href="/en/fantasy/tower/episode-9/viewer?title_no=95&episode_no=9">old</a></li>
		</ul>
		<a class="NPI=a:list,i:95,r:2" href="/en/fantasy/tower/episode-2/viewer?title_no=95&amp;episode_no=2">2</a>
		<a class="NPI=a:list,i:95,r:1" href="https://www.webtoons.com/en/fantasy/tower/episode-1/viewer?title_no=95&episode_no=1">1</a>
		<a class="NPI=a:list" href="/en/fantasy/tower/list?title_no=95">listing</a>
	</body></html>`)

	links := ParseChapterLinks(d)
	assert.Equal(t, []string{
		"https://www.webtoons.com/en/fantasy/tower/episode-2/viewer?title_no=95&episode_no=2",
		"https://www.webtoons.com/en/fantasy/tower/episode-1/viewer?title_no=95&episode_no=1",
	}, links)
}

func TestParseChapterLinksViewerHref(t *testing.T) {
	d := doc(t, `<div>
		<a href="/en/drama/x/episode-4/viewer?title_no=7&episode_no=4">4</a>
		<a href="/en/drama/x/episode-5/viewer?episode_no=5">no id</a>
	</div>`)

	assert.Equal(t, []string{
		"https://www.webtoons.com/en/drama/x/episode-4/viewer?title_no=7&episode_no=4",
	}, ParseChapterLinks(d))
}

func TestParseChapterLinksContainers(t *testing.T) {
	d := doc(t, `<ul id="_listUl">
		<li><a href="/en/drama/x/episode-3/viewer?episode_no=3">3</a></li>
		<li><a href="/en/drama/x/about">about</a></li>
	</ul>`)
	assert.Equal(t, []string{"https://www.webtoons.com/en/drama/x/episode-3/viewer?episode_no=3"}, ParseChapterLinks(d))

	d = doc(t, `<ul class="EpisodeList"><li><a href="//www.webtoons.com/en/a/b/viewer?x=1">v</a></li></ul>`)
	assert.Equal(t, []string{"https://www.webtoons.com/en/a/b/viewer?x=1"}, ParseChapterLinks(d))
}

func TestParseChapterLinksLastResort(t *testing.T) {
	d := doc(t, `<p><a href="/episode-list?id=1">all</a><a href="/about">about</a></p>`)
	assert.Equal(t, []string{"https://www.webtoons.com/episode-list?id=1"}, ParseChapterLinks(d))
}

func TestParseChapterLinksEmpty(t *testing.T) {
	assert.Empty(t, ParseChapterLinks(doc(t, `<html><body><p>nothing</p></body></html>`)))
	assert.Empty(t, ParseChapterLinks(nil))
}

func TestCollectChapters(t *testing.T) {
	page := func(eps ...string) *goquery.Document {
		var b strings.Builder
		for _, ep := range eps {
			b.WriteString(`<a href="/en/fantasy/tower/episode-` + ep + `/viewer?title_no=95&episode_no=` + ep + `">x</a>`)
		}
		return doc(t, "<div>"+b.String()+"</div>")
	}

	got := CollectChapters([]*goquery.Document{page("12", "11"), page("11", "2", "1")}, "95")
	require.Len(t, got, 4)

	var eps []string
	for _, c := range got {
		eps = append(eps, c.EpisodeNo)
		assert.Equal(t, "95", c.TitleNo)
	}
	assert.Equal(t, []string{"1", "2", "11", "12"}, eps)
	assert.Equal(t, "Episode 12", got[3].Title)

	assert.Empty(t, CollectChapters(nil, "95"))
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "SIU", cleanText("  \n\tSIU \n"))
	assert.Equal(t, "Writer, Artist", cleanText(", Writer,\n ,  Artist ,"))
	assert.Equal(t, "a b", cleanText("a \t\n b"))
	assert.Equal(t, "", cleanText(" , "))
}

const listingHTML = `<html>
<head>
	<title>Tower of God | WEBTOON</title>
	<meta property="og:title" content="Tower of God (og)">
</head>
<body>
	<div class="detail_header">
		<div class="detail_bg" style="background:url('https://swebtoon-phinf.pstatic.net/bg.jpg') no-repeat"></div>
		<img src="//swebtoon-phinf.pstatic.net/episodelist_pc_fg.png">
	</div>
	<h1 class="subj">Tower
		of God</h1>
	<h2 class="genre g_fantasy">Fantasy</h2>
	<div class="author_area">
		SIU ,
		<button type="button" class="ico_info2">author info</button>
	</div>
	<ul class="grade_area">
		<li><span class="ico_view">view</span><em class="cnt">1.2B</em></li>
		<li><span class="ico_subscribe">subscribe</span><em class="cnt">6.9M</em></li>
		<li><span class="ico_grade5">grade</span><em class="cnt" id="_starScoreAverage">9.79</em></li>
	</ul>
	<p class="day_info"><span class="txt_ico_up">UP</span>EVERY SUNDAY</p>
</body>
</html>`

func TestParseSeriesMetadata(t *testing.T) {
	m := ParseSeriesMetadata(doc(t, listingHTML))

	assert.Equal(t, "Tower of God", m.Title)
	assert.Equal(t, "SIU", m.Author)
	assert.Equal(t, "Fantasy", m.Genre)
	assert.Equal(t, "1.2B", m.Views)
	assert.Equal(t, "6.9M", m.Subscribers)
	require.NotNil(t, m.Grade)
	assert.InDelta(t, 9.79, *m.Grade, 0.0001)
	assert.Equal(t, "EVERY SUNDAY", m.DayInfo)
	assert.Equal(t, "https://swebtoon-phinf.pstatic.net/bg.jpg", m.BannerBgURL)
	assert.Equal(t, "https://swebtoon-phinf.pstatic.net/episodelist_pc_fg.png", m.BannerFgURL)
}

func TestParseSeriesMetadataFallbacks(t *testing.T) {
	m := ParseSeriesMetadata(doc(t, `<html><head>
		<meta property="og:title" content="Lore Olympus">
	</head><body>
		<span class="author_name">Rachel Smythe</span>
		<p class="genre">Romance</p>
		<ul class="grade_area"><li><span class="ico_grade5"></span><em class="cnt">n/a</em></li></ul>
	</body></html>`))

	assert.Equal(t, "Lore Olympus", m.Title)
	assert.Equal(t, "Rachel Smythe", m.Author)
	assert.Equal(t, "Romance", m.Genre)
	assert.Nil(t, m.Grade)
	assert.Empty(t, m.DayInfo)

	m = ParseSeriesMetadata(doc(t, `<html><head><title>Only Title</title></head></html>`))
	assert.Equal(t, "Only Title", m.Title)
}

func TestBuildSeries(t *testing.T) {
	s := BuildSeries(doc(t, listingHTML), "https://www.webtoons.com/en/fantasy/tower-of-god/list?title_no=95")

	assert.Equal(t, "95", s.TitleNo)
	assert.Equal(t, "tower-of-god", s.Slug)
	assert.Equal(t, "Tower of God", s.Title)
	assert.Equal(t, "SIU", s.Author)
	assert.Empty(t, s.Chapters)
	assert.False(t, s.LastUpdated.IsZero())
}

func TestParseBanners(t *testing.T) {
	t.Run("double quoted background-image", func(t *testing.T) {
		bg, fg := ParseBanners(doc(t, `<div class="detail_bg" style='background-image: url("/img/bg.png")'></div>`))
		assert.Equal(t, "https://www.webtoons.com/img/bg.png", bg)
		assert.Empty(t, fg, "background must not be copied into foreground")
	})

	t.Run("unquoted in any div", func(t *testing.T) {
		bg, _ := ParseBanners(doc(t, `<div><div style="color:red"></div><div style="background:url(//cdn.example/bg.jpg)"></div></div>`))
		assert.Equal(t, "https://cdn.example/bg.jpg", bg)
	})

	t.Run("foreground from detail_bg parent", func(t *testing.T) {
		bg, fg := ParseBanners(doc(t, `<div><div class="detail_bg"></div><img src="/thumb/front_art.jpg"></div>`))
		assert.Empty(t, bg)
		assert.Equal(t, "https://www.webtoons.com/thumb/front_art.jpg", fg)
	})

	t.Run("generic character image", func(t *testing.T) {
		_, fg := ParseBanners(doc(t, `<img src="https://cdn.example/a/pc_character_01.png">`))
		assert.Equal(t, "https://cdn.example/a/pc_character_01.png", fg)
	})

	t.Run("nothing", func(t *testing.T) {
		bg, fg := ParseBanners(doc(t, `<p>x</p>`))
		assert.Empty(t, bg)
		assert.Empty(t, fg)
	})
}

func TestParseImagesSkipsGIF(t *testing.T) {
	d := doc(t, `<div id="_imageList">
		<img class="_images" data-url="https://webtoon-phinf.pstatic.net/20240101_1/001.jpg?type=q90">
		<img class="_images" data-url="https://webtoon-phinf.pstatic.net/20240101_1/loading.gif">
		<img class="_images" data-url="https://webtoon-phinf.pstatic.net/20240101_1/002.png?type=q90">
	</div>
	<img src="https://static.example/logo.png">`)

	assert.Equal(t, []string{
		"https://webtoon-phinf.pstatic.net/20240101_1/001.jpg?type=q90",
		"https://webtoon-phinf.pstatic.net/20240101_1/002.png?type=q90",
	}, ParseImages(d, "https://www.webtoons.com/en/x/y/ep-1/viewer?title_no=1&episode_no=1"))
}

func TestParseImagesSourcePriority(t *testing.T) {
	d := doc(t, `<div class="viewer_lst">
		<img data-src="https://comic.naver.net/a.jpg" src="https://comic.naver.net/placeholder.jpg">
		<img src="/img/daumcdn/b.webp">
	</div>`)

	assert.Equal(t, []string{
		"https://comic.naver.net/a.jpg",
		"https://www.webtoons.com/img/daumcdn/b.webp",
	}, ParseImages(d, "https://www.webtoons.com/en/x/y/ep-1/viewer?episode_no=1"))
}

func TestParseImagesScriptFallback(t *testing.T) {
	d := doc(t, `<html><body>
		<img src="https://static.example/icon.png">
		<script>var imgs = ["https://cdn.example/p/1.jpeg", 'https://cdn.example/p/2.webp'];</script>
	</body></html>`)

	assert.Equal(t, []string{
		"https://cdn.example/p/1.jpeg",
		"https://cdn.example/p/2.webp",
	}, ParseImages(d, ""))
}

const commentsHTML = `<div class="wcc_CommentList__root">
	<ul>
		<li class="wcc_CommentItem__root">
			<div class="wcc_CommentItem__inside">
				<div class="wcc_CommentHeader__root">
					<span class="wcc_CommentHeader__name">reader1</span>
					<time class="wcc_CommentHeader__createdAt">Jan 2, 2024</time>
				</div>
				<p class="wcc_TextContent__content">
					<span class="wcc_TopBadge__root">TOP</span>
					<span>Best chapter</span>
					<span>so far</span>
					<span class="sr-only">comment</span>
				</p>
				<div class="wcc_CommentReaction__root">
					<button class="wcc_CommentReaction__action"><span>1,204</span></button>
					<button class="wcc_CommentReaction__action"><span>3</span></button>
				</div>
			</div>
		</li>
		<li class="wcc_CommentItem__root">
			<div class="wcc_CommentItem__inside">
				<p class="wcc_TextContent__content">plain text comment</p>
			</div>
		</li>
		<li class="wcc_CommentItem__root">
			<div class="wcc_CommentItem__inside">
				<span class="wcc_CommentHeader__name">silent</span>
				<p class="wcc_TextContent__content">  </p>
			</div>
		</li>
	</ul>
</div>`

func TestParseComments(t *testing.T) {
	comments := ParseComments(doc(t, commentsHTML))
	require.Len(t, comments, 2)

	assert.Equal(t, "reader1", comments[0].Username)
	assert.Equal(t, "Jan 2, 2024", comments[0].Date)
	assert.Equal(t, "Best chapter so far", comments[0].Text)
	assert.Equal(t, "1,204", comments[0].Likes)

	assert.Equal(t, UnknownUser, comments[1].Username)
	assert.Equal(t, UnknownDate, comments[1].Date)
	assert.Equal(t, "plain text comment", comments[1].Text)
	assert.Equal(t, NoLikes, comments[1].Likes)
}

func TestParseCommentsFallbackStrategies(t *testing.T) {
	t.Run("inside wrapper without list", func(t *testing.T) {
		comments := ParseComments(doc(t, `<section>
			<div class="wcc_CommentItem__inside"><p>first</p><time>today</time></div>
			<div class="wcc_CommentItem__inside"><p>second</p></div>
		</section>`))
		require.Len(t, comments, 2)
		assert.Equal(t, "first", comments[0].Text)
		assert.Equal(t, "today", comments[0].Date)
		assert.Equal(t, "second", comments[1].Text)
	})

	t.Run("inside wrappers sharing a layout item", func(t *testing.T) {
		comments := ParseComments(doc(t, `<ul><li class="area">
			<div><div class="wcc_CommentItem__inside"><span class="wcc_CommentHeader__name">a</span><p>first</p></div></div>
			<div><div class="wcc_CommentItem__inside"><span class="wcc_CommentHeader__name">b</span><p>second</p></div></div>
		</li></ul>`))
		require.Len(t, comments, 2)
		assert.Equal(t, "a", comments[0].Username)
		assert.Equal(t, "first", comments[0].Text)
		assert.Equal(t, "b", comments[1].Username)
		assert.Equal(t, "second", comments[1].Text)
	})

	t.Run("ancestor walk from text", func(t *testing.T) {
		comments := ParseComments(doc(t, `<ol><li><div><div>
			<a class="x_CommentHeader__name_y">walker</a>
			<p class="wcc_TextContent__content">deep text</p>
		</div></div></li></ol>`))
		require.Len(t, comments, 1)
		assert.Equal(t, "walker", comments[0].Username)
		assert.Equal(t, "deep text", comments[0].Text)
	})
}

func TestParseCommentsEmpty(t *testing.T) {
	comments := ParseComments(doc(t, `<html><body><div class="nothing"></div></body></html>`))
	assert.NotNil(t, comments)
	assert.Empty(t, comments)

	assert.Empty(t, ParseComments(nil))
}
