// Package store keeps scraped series and their chapter lists in a DuckDB
// file. Rows are copies: callers re-save a series to sync it.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"

	"github.com/brogergvhs/webtoond/internal/ui"
	"github.com/brogergvhs/webtoond/internal/webtoon"
)

var ErrNotFound = errors.New("series not found")

var schema = []string{
	`CREATE SEQUENCE IF NOT EXISTS series_id_seq START 1`,
	`CREATE SEQUENCE IF NOT EXISTS chapter_id_seq START 1`,
	`CREATE TABLE IF NOT EXISTS series (
		id            BIGINT PRIMARY KEY DEFAULT nextval('series_id_seq'),
		title_no      VARCHAR NOT NULL,
		series_name   VARCHAR NOT NULL,
		display_title VARCHAR,
		author        VARCHAR,
		genre         VARCHAR,
		num_chapters  INTEGER,
		url           VARCHAR,
		last_updated  TIMESTAMP,
		grade         DOUBLE,
		views         VARCHAR,
		subscribers   VARCHAR,
		day_info      VARCHAR,
		UNIQUE (title_no, series_name)
	)`,
	// series_id refers to series(id). DuckDB rejects updating a referenced
	// parent row inside a transaction, so the link is kept by SaveSeries and
	// Delete rather than a FOREIGN KEY clause.
	`CREATE TABLE IF NOT EXISTS chapters (
		id            BIGINT PRIMARY KEY DEFAULT nextval('chapter_id_seq'),
		series_id     BIGINT NOT NULL,
		episode_no    VARCHAR,
		chapter_title VARCHAR,
		url           VARCHAR
	)`,
}

type Store struct {
	db  *sql.DB
	log *ui.Logger
}

// Open opens (creating if needed) the database at path and applies the
// schema.
func Open(ctx context.Context, path string, log *ui.Logger) (*Store, error) {
	if log == nil {
		log = ui.Discard()
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init schema: %w", err)
		}
	}

	log.Debugf("store ready at %s", path)
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSeries upserts the series by (title_no, slug) and replaces its stored
// chapters with the in-memory list.
func (s *Store) SaveSeries(ctx context.Context, sr *webtoon.Series) (id int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	updated := sr.LastUpdated
	if updated.IsZero() {
		updated = time.Now().UTC()
	}

	err = tx.QueryRowContext(ctx,
		`SELECT id FROM series WHERE title_no = ? AND series_name = ?`,
		sr.TitleNo, sr.Slug,
	).Scan(&id)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		err = tx.QueryRowContext(ctx, `
			INSERT INTO series (title_no, series_name, display_title, author, genre,
				num_chapters, url, last_updated, grade, views, subscribers, day_info)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id`,
			sr.TitleNo, sr.Slug, sr.Title, sr.Author, sr.Genre,
			len(sr.Chapters), sr.URL, updated, nullGrade(sr.Grade),
			sr.Views, sr.Subscribers, sr.DayInfo,
		).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert series: %w", err)
		}

	case err != nil:
		return 0, fmt.Errorf("lookup series: %w", err)

	default:
		if _, err = tx.ExecContext(ctx, `DELETE FROM chapters WHERE series_id = ?`, id); err != nil {
			return 0, fmt.Errorf("clear chapters: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE series SET display_title = ?, author = ?, genre = ?, num_chapters = ?,
				url = ?, last_updated = ?, grade = ?, views = ?, subscribers = ?, day_info = ?
			WHERE id = ?`,
			sr.Title, sr.Author, sr.Genre, len(sr.Chapters),
			sr.URL, updated, nullGrade(sr.Grade), sr.Views, sr.Subscribers, sr.DayInfo,
			id,
		)
		if err != nil {
			return 0, fmt.Errorf("update series: %w", err)
		}
	}

	for _, c := range sr.Chapters {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO chapters (series_id, episode_no, chapter_title, url) VALUES (?, ?, ?, ?)`,
			id, c.EpisodeNo, c.Title, c.URL,
		); err != nil {
			return 0, fmt.Errorf("insert chapter %s: %w", c.EpisodeNo, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	s.log.Debugf("stored %s (%d chapters) as id %d", sr.Slug, len(sr.Chapters), id)
	return id, nil
}

// Delete removes every series stored under titleNo along with its chapters
// and reports how many series rows went away.
func (s *Store) Delete(ctx context.Context, titleNo string) (n int64, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM chapters WHERE series_id IN (SELECT id FROM series WHERE title_no = ?)`,
		titleNo,
	); err != nil {
		return 0, fmt.Errorf("delete chapters: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM series WHERE title_no = ?`, titleNo)
	if err != nil {
		return 0, fmt.Errorf("delete series: %w", err)
	}
	if n, err = res.RowsAffected(); err != nil {
		return 0, err
	}
	return n, tx.Commit()
}

func nullGrade(g *float64) sql.NullFloat64 {
	if g == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *g, Valid: true}
}
