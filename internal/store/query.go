package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/brogergvhs/webtoond/internal/webtoon"
)

const seriesColumns = `id, title_no, series_name, display_title, author, genre,
	num_chapters, url, last_updated, grade, views, subscribers, day_info`

// Record is a stored series row.
type Record struct {
	ID int64
	webtoon.Series
}

// Filter narrows Search. Text fields match case-insensitively anywhere in
// the column; zero values are ignored.
type Filter struct {
	Title       string
	Author      string
	Genre       string
	MinChapters int
	MinGrade    float64
}

func (f Filter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	like := func(col, v string) {
		if v = strings.TrimSpace(v); v != "" {
			conds = append(conds, col+" ILIKE ?")
			args = append(args, "%"+v+"%")
		}
	}
	like("display_title", f.Title)
	like("author", f.Author)
	like("genre", f.Genre)

	if f.MinChapters > 0 {
		conds = append(conds, "num_chapters >= ?")
		args = append(args, f.MinChapters)
	}
	if f.MinGrade > 0 {
		conds = append(conds, "grade >= ?")
		args = append(args, f.MinGrade)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (s *Store) List(ctx context.Context) ([]Record, error) {
	return s.query(ctx, `SELECT `+seriesColumns+` FROM series ORDER BY display_title`)
}

func (s *Store) Search(ctx context.Context, f Filter) ([]Record, error) {
	where, args := f.where()
	return s.query(ctx, `SELECT `+seriesColumns+` FROM series`+where+` ORDER BY display_title`, args...)
}

// TopRated lists graded series, best first.
func (s *Store) TopRated(ctx context.Context, limit int) ([]Record, error) {
	return s.query(ctx, `SELECT `+seriesColumns+` FROM series
		WHERE grade IS NOT NULL ORDER BY grade DESC, display_title LIMIT ?`, limit)
}

func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	return s.query(ctx, `SELECT `+seriesColumns+` FROM series
		ORDER BY last_updated DESC LIMIT ?`, limit)
}

// ByDay matches the publish schedule text, e.g. "MON" or "Completed".
func (s *Store) ByDay(ctx context.Context, day string) ([]Record, error) {
	return s.query(ctx, `SELECT `+seriesColumns+` FROM series
		WHERE day_info ILIKE ? ORDER BY display_title`, "%"+strings.TrimSpace(day)+"%")
}

// Get loads one series with its chapters in stored order.
func (s *Store) Get(ctx context.Context, titleNo string) (*Record, error) {
	recs, err := s.query(ctx, `SELECT `+seriesColumns+` FROM series
		WHERE title_no = ? ORDER BY last_updated DESC LIMIT 1`, titleNo)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, titleNo)
	}
	rec := &recs[0]

	rows, err := s.db.QueryContext(ctx,
		`SELECT episode_no, chapter_title, url FROM chapters WHERE series_id = ? ORDER BY id`, rec.ID)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var chapters []*webtoon.Chapter
	for rows.Next() {
		c := &webtoon.Chapter{TitleNo: rec.TitleNo}
		var title sql.NullString
		if err := rows.Scan(&c.EpisodeNo, &title, &c.URL); err != nil {
			return nil, err
		}
		c.Title = title.String
		chapters = append(chapters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rec.Chapters = chapters
	return rec, nil
}

func (s *Store) Genres(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT genre FROM series WHERE genre IS NOT NULL AND genre <> '' ORDER BY genre`)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []string
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Authors lists individual author names. Credits such as "A, B" are split,
// and the "Unknown" placeholder is dropped.
func (s *Store) Authors(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT author FROM series WHERE author IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	seen := map[string]bool{}
	for rows.Next() {
		var credit string
		if err := rows.Scan(&credit); err != nil {
			return nil, err
		}
		for _, name := range strings.Split(credit, ",") {
			name = strings.TrimSpace(name)
			if name == "" || strings.EqualFold(name, "Unknown") {
				continue
			}
			seen[name] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query series: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		rec                         Record
		title, author, genre, url   sql.NullString
		views, subscribers, dayInfo sql.NullString
		numChapters                 sql.NullInt64
		updated                     sql.NullTime
		grade                       sql.NullFloat64
	)
	err := rows.Scan(&rec.ID, &rec.TitleNo, &rec.Slug, &title, &author, &genre,
		&numChapters, &url, &updated, &grade, &views, &subscribers, &dayInfo)
	if err != nil {
		return Record{}, err
	}

	rec.Title = title.String
	rec.Author = author.String
	rec.Genre = genre.String
	rec.URL = url.String
	rec.Views = views.String
	rec.Subscribers = subscribers.String
	rec.DayInfo = dayInfo.String
	rec.NumChapters = int(numChapters.Int64)
	if updated.Valid {
		rec.LastUpdated = updated.Time.UTC()
	}
	if grade.Valid {
		g := grade.Float64
		rec.Grade = &g
	}
	return rec, nil
}
