package scraper

import (
	"context"
	"fmt"
	"path/filepath"

	"albumhub/internal/albumio"
	"albumhub/pkg/models"
)

// FileSource loads albums from a local .json or .csv export.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (s *FileSource) Name() string {
	return "file:" + filepath.Base(s.Path)
}

func (s *FileSource) FetchAll(ctx context.Context) ([]models.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	albums, err := albumio.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", s.Path, err)
	}
	return albums, nil
}
