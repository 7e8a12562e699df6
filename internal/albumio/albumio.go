// Package albumio reads and writes album lists as JSON or CSV files.
package albumio

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"albumhub/pkg/models"
)

// ErrFormat is returned for payloads that are not a list of albums.
var ErrFormat = errors.New("malformed album file")

// AlbumJSON is the loose on-disk shape of an album. The singular "genre"
// field is accepted for older exports.
type AlbumJSON struct {
	ID          string   `json:"id,omitempty"`
	Artist      string   `json:"artist"`
	Title       string   `json:"title"`
	Genres      []string `json:"genres,omitempty"`
	Genre       string   `json:"genre,omitempty"`
	ReleaseDate string   `json:"releaseDate"`
	CoverURL    string   `json:"coverURL"`
}

var csvHeader = []string{"id", "artist", "title", "genres", "release_date", "cover_url"}

func ToJSON(a models.Album) AlbumJSON {
	genres := []string(a.Genres)
	if genres == nil {
		genres = []string{}
	}
	return AlbumJSON{
		ID:          a.ID,
		Artist:      a.Artist,
		Title:       a.Title,
		Genres:      genres,
		ReleaseDate: a.DateString(),
		CoverURL:    a.CoverURL,
	}
}

// FromJSON validates and converts one entry. The id is dropped: imported
// records get their identity from the store.
func FromJSON(j AlbumJSON) (models.Album, error) {
	artist := strings.TrimSpace(j.Artist)
	title := strings.TrimSpace(j.Title)
	if artist == "" || title == "" {
		return models.Album{}, fmt.Errorf("%w: artist and title required", ErrFormat)
	}

	date, err := models.ParseDate(j.ReleaseDate)
	if err != nil {
		return models.Album{}, fmt.Errorf("%w: release date %q for %s - %s", ErrFormat, j.ReleaseDate, artist, title)
	}

	genres := models.NewGenreSet(j.Genres...)
	if j.Genre != "" {
		genres = genres.Add(strings.Split(j.Genre, ",")...)
	}

	return models.Album{
		Artist:      artist,
		Title:       title,
		Genres:      genres,
		ReleaseDate: date,
		CoverURL:    strings.TrimSpace(j.CoverURL),
	}, nil
}

func ReadJSON(r io.Reader) ([]models.Album, error) {
	var raw []AlbumJSON
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode json: %v", ErrFormat, err)
	}

	out := make([]models.Album, 0, len(raw))
	for i, j := range raw {
		a, err := FromJSON(j)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func WriteJSON(w io.Writer, albums []models.Album) error {
	out := make([]AlbumJSON, 0, len(albums))
	for _, a := range albums {
		out = append(out, ToJSON(a))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func ReadCSV(r io.Reader) ([]models.Album, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrFormat, err)
	}

	var out []models.Album
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrFormat, line, err)
		}
		if len(row) == 0 {
			continue
		}

		j := AlbumJSON{
			Artist:      valueAt(header, row, "artist"),
			Title:       valueAt(header, row, "title"),
			Genres:      parseGenres(valueAt(header, row, "genres")),
			ReleaseDate: valueAt(header, row, "release_date"),
			CoverURL:    valueAt(header, row, "cover_url"),
		}
		a, err := FromJSON(j)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, a)
	}
	return out, nil
}

func WriteCSV(w io.Writer, albums []models.Album) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for _, a := range albums {
		j := ToJSON(a)
		genresJSON, err := json.Marshal(j.Genres)
		if err != nil {
			return fmt.Errorf("marshal genres for %s: %w", a.Title, err)
		}
		if err := cw.Write([]string{
			j.ID,
			j.Artist,
			j.Title,
			string(genresJSON),
			j.ReleaseDate,
			j.CoverURL,
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadFile picks the decoder from the extension (.json or .csv).
func ReadFile(path string) ([]models.Album, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return ReadJSON(f)
	case ".csv":
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrFormat, filepath.Ext(path))
	}
}

// WriteFile creates path (and its directory) and encodes by extension.
func WriteFile(path string, albums []models.Album) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = WriteJSON(f, albums)
	case ".csv":
		err = WriteCSV(f, albums)
	default:
		err = fmt.Errorf("%w: unsupported extension %q", ErrFormat, filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	return f.Close()
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func valueAt(header map[string]int, row []string, key string) string {
	idx, ok := header[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseGenres accepts a JSON array or a comma-separated list.
func parseGenres(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	if strings.HasPrefix(raw, "[") && json.Unmarshal([]byte(raw), &out) == nil {
		return out
	}
	return strings.Split(raw, ",")
}
