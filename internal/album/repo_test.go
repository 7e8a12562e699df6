package album

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"albumhub/pkg/database"
	"albumhub/pkg/models"
)

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	db, err := database.OpenAndMigrate(database.Config{Path: filepath.Join(t.TempDir(), "albums.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRepo(db)
}

func seed(t *testing.T, r *Repo, albums ...models.Album) []string {
	t.Helper()
	ids := make([]string, 0, len(albums))
	for _, a := range albums {
		id, err := r.Save(context.Background(), a)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func album(artist, title, date string, genres ...string) models.Album {
	d, _ := time.Parse(models.DateLayout, date)
	return models.Album{
		Artist:      artist,
		Title:       title,
		Genres:      models.NewGenreSet(genres...),
		ReleaseDate: d,
		CoverURL:    "https://img/" + title + ".jpg",
	}
}

func TestRepo_SaveAndGet(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	ids := seed(t, r, album("Artist", "Record", "2021-05-03", "pop", "soul"))

	got, err := r.GetByID(ctx, ids[0])
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Artist", got.Artist)
	assert.Equal(t, "Record", got.Title)
	assert.Equal(t, "2021-05-03", got.DateString())
	assert.Equal(t, models.GenreSet{"pop", "soul"}, got.Genres)
	assert.Equal(t, "https://img/Record.jpg", got.CoverURL)

	missing, err := r.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRepo_SaveUpdates(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	ids := seed(t, r, album("Artist", models.PlaceholderTitle, "2021-05-31"))

	upd := album("Artist", "Named", "2021-05-20", "rock")
	upd.ID = ids[0]
	id, err := r.Save(ctx, upd)
	require.NoError(t, err)
	assert.Equal(t, ids[0], id)

	got, err := r.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Named", got.Title)
	assert.Equal(t, "2021-05-20", got.DateString())

	upd.ID = "missing"
	_, err = r.Save(ctx, upd)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepo_QueryFilters(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seed(t, r,
		album("Band", models.PlaceholderTitle, "2021-06-30"),
		album("Band", "Later", "2021-06-02", "rock"),
		album("Singer", "Early", "2021-01-15", "pop", "soul"),
		album("Band", models.PlaceholderTitle, "2021-03-31"),
		album("Duo", "Middle", "2021-03-31", "Pop"),
	)

	all, err := r.Query(ctx, Filter{})
	require.NoError(t, err)
	titles := func(as []models.Album) []string {
		out := make([]string, 0, len(as))
		for _, a := range as {
			out = append(out, a.Title)
		}
		return out
	}
	// date order, ties by insertion
	assert.Equal(t, []string{"Early", "TBA", "Middle", "Later", "TBA"}, titles(all))

	ph, err := r.Query(ctx, Filter{Artist: "Band", Title: models.PlaceholderTitle})
	require.NoError(t, err)
	require.Len(t, ph, 2)
	assert.Equal(t, "2021-03-31", ph[0].DateString())

	pop, err := r.Query(ctx, Filter{Genre: " POP "})
	require.NoError(t, err)
	assert.Equal(t, []string{"Early", "Middle"}, titles(pop))

	from := time.Date(2021, 3, 31, 0, 0, 0, 0, time.UTC)
	since, err := r.Query(ctx, Filter{From: &from})
	require.NoError(t, err)
	assert.Len(t, since, 4)

	search, err := r.Query(ctx, Filter{Search: "SING"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Early"}, titles(search))

	page, err := r.Query(ctx, Filter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Middle", "Later"}, titles(page))
}

func TestRepo_Genres(t *testing.T) {
	r := newTestRepo(t)
	seed(t, r,
		album("A", "One", "2021-01-01", "rock", "pop"),
		album("B", "Two", "2021-01-02", "pop", "jazz"),
		album("C", "Three", "2021-01-03"),
	)

	genres, err := r.Genres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"jazz", "pop", "rock"}, genres)
}

func TestRepo_ExactIdentityLookup(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	seed(t, r,
		album("Band", "First Record", "2021-02-01"),
		album("Other", "Hits", "2021-03-01"),
	)

	none, err := r.Query(ctx, Filter{Artist: "Band", Exact: true})
	require.NoError(t, err)
	assert.Empty(t, none, "empty title must not match every title")

	none, err = r.Query(ctx, Filter{Title: "Hits", Exact: true})
	require.NoError(t, err)
	assert.Empty(t, none, "empty artist must not match every artist")

	one, err := r.Query(ctx, Filter{Artist: "Band", Title: "First Record", Exact: true})
	require.NoError(t, err)
	require.Len(t, one, 1)

	loose, err := r.Query(ctx, Filter{Artist: "Band"})
	require.NoError(t, err)
	assert.Len(t, loose, 1)
}

func TestRepo_CorruptGenres(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	ids := seed(t, r, album("Band", "Record", "2021-02-01", "rock"))

	_, err := r.DB.Exec(`UPDATE albums SET genres = '{not json'`)
	require.NoError(t, err)

	_, err = r.Query(ctx, Filter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse genres")

	_, err = r.GetByID(ctx, ids[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse genres")
}
