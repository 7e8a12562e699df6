package album

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"albumhub/pkg/models"
)

// ErrNotFound is returned by Save when an update targets an unknown id.
var ErrNotFound = errors.New("album not found")

type Repo struct {
	DB *sql.DB
}

// Filter selects albums. Artist and Title are exact matches and an empty
// value means "any", unless Exact is set; the other fields drive the read
// API.
type Filter struct {
	Artist string
	Title  string
	Exact  bool // Artist and Title are always bound, empty or not
	Genre  string     // genres array contains Genre
	From   *time.Time // release_date >= From
	Search string     // substring of artist or title, case-insensitive
	Limit  int        // 0 = no limit
	Offset int
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// NewKey returns a fresh album id.
func (r *Repo) NewKey() string {
	return uuid.NewString()
}

const selectColumns = `SELECT id, artist, title, genres, release_date, cover_url FROM albums`

func (r *Repo) GetByID(ctx context.Context, id string) (*models.Album, error) {
	row := r.DB.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)

	a, err := scanAlbum(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return &a, nil
}

func (r *Repo) Query(ctx context.Context, f Filter) ([]models.Album, error) {
	sqlStr, args := buildQuerySQL(f)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query albums: %w", err)
	}
	defer rows.Close()

	out := make([]models.Album, 0)
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, fmt.Errorf("query scan: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// Save inserts the album under a new key when it has no id and overwrites
// the stored fields otherwise. It returns the album's id.
func (r *Repo) Save(ctx context.Context, a models.Album) (string, error) {
	genres := a.Genres
	if genres == nil {
		genres = models.GenreSet{}
	}
	genresJSON, err := json.Marshal(genres)
	if err != nil {
		return "", fmt.Errorf("marshal genres for %s: %w", a.Title, err)
	}

	if a.ID == "" {
		id := r.NewKey()
		if _, err := r.DB.ExecContext(ctx, `
			INSERT INTO albums (id, artist, title, genres, release_date, cover_url)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, a.Artist, a.Title, string(genresJSON), a.DateString(), a.CoverURL); err != nil {
			return "", fmt.Errorf("insert album %s - %s: %w", a.Artist, a.Title, err)
		}
		return id, nil
	}

	res, err := r.DB.ExecContext(ctx, `
		UPDATE albums
		SET artist = ?, title = ?, genres = ?, release_date = ?, cover_url = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, a.Artist, a.Title, string(genresJSON), a.DateString(), a.CoverURL, a.ID)
	if err != nil {
		return "", fmt.Errorf("update album %s: %w", a.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("update album rows: %w", err)
	}
	if affected == 0 {
		return "", fmt.Errorf("update album %s: %w", a.ID, ErrNotFound)
	}
	return a.ID, nil
}

// Genres lists the distinct genres across all albums, sorted.
func (r *Repo) Genres(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT DISTINCT j.value
		FROM albums, json_each(albums.genres) AS j
		ORDER BY j.value
	`)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAlbum(s scanner) (models.Album, error) {
	var (
		a          models.Album
		genresJSON string
		date       string
	)
	if err := s.Scan(&a.ID, &a.Artist, &a.Title, &genresJSON, &date, &a.CoverURL); err != nil {
		return a, err
	}

	a.Genres = models.GenreSet{}
	if err := json.Unmarshal([]byte(genresJSON), &a.Genres); err != nil {
		return a, fmt.Errorf("parse genres %q: %w", genresJSON, err)
	}

	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return a, fmt.Errorf("parse release_date %q: %w", date, err)
	}
	a.ReleaseDate = d
	return a, nil
}

// buildQuerySQL turns a Filter into a SELECT. Rows come back in release
// order, ties in insertion order, so "first match" is stable.
func buildQuerySQL(f Filter) (string, []any) {
	var where []string
	var args []any

	if f.Exact || f.Artist != "" {
		where = append(where, "artist = ?")
		args = append(args, f.Artist)
	}
	if f.Exact || f.Title != "" {
		where = append(where, "title = ?")
		args = append(args, f.Title)
	}

	if g := strings.TrimSpace(f.Genre); g != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(albums.genres) WHERE json_each.value = ?)")
		args = append(args, strings.ToLower(g))
	}

	if f.From != nil {
		where = append(where, "release_date >= ?")
		args = append(args, f.From.Format(models.DateLayout))
	}

	if s := strings.TrimSpace(f.Search); s != "" {
		where = append(where, "(LOWER(artist) LIKE ? OR LOWER(title) LIKE ?)")
		kw := "%" + strings.ToLower(s) + "%"
		args = append(args, kw, kw)
	}

	sqlStr := selectColumns
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}
	sqlStr += " ORDER BY release_date ASC, rowid ASC"

	if f.Limit > 0 {
		offset := f.Offset
		if offset < 0 {
			offset = 0
		}
		sqlStr += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, offset)
	}

	return sqlStr, args
}
