package repository

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/topcine/topcinedb/internal/domain"
)

// FileRepository reads the JSON URL-list files that seed a scrape run and
// writes the files the crawler produces.
type FileRepository struct {
	log zerolog.Logger
}

func NewFileRepository(log zerolog.Logger) *FileRepository {
	return &FileRepository{
		log: log.With().Str("module", "repository").Logger(),
	}
}

// urlFile covers the wrapped list shapes the files come in.
type urlFile struct {
	URLs         []string `json:"urls"`
	SeriesAnimes []string `json:"series_animes,omitempty"`
}

// LoadURLs reads one URL-list file. Accepted shapes: a flat JSON array,
// {"urls": [...]}, or {"series_animes": [...]}. A missing or malformed
// file degrades to an empty list with a warning, never an error.
func (r *FileRepository) LoadURLs(path string) []string {
	body, err := os.ReadFile(path)
	if err != nil {
		r.log.Warn().Err(err).Str("path", path).Msg("URL file not readable, treating as empty")
		return nil
	}

	var flat []string
	if err := json.Unmarshal(body, &flat); err == nil {
		return flat
	}

	var wrapped urlFile
	if err := json.Unmarshal(body, &wrapped); err != nil {
		r.log.Warn().Err(err).Str("path", path).Msg("URL file malformed, treating as empty")
		return nil
	}
	if len(wrapped.URLs) > 0 {
		return wrapped.URLs
	}
	return wrapped.SeriesAnimes
}

// LoadSources reads every configured source file and returns the URLs per
// source, in file order.
func (r *FileRepository) LoadSources(sources []domain.URLSource) map[string][]string {
	out := make(map[string][]string, len(sources))
	for _, src := range sources {
		urls := r.LoadURLs(src.Path)
		r.log.Info().Str("path", src.Path).Int("urls", len(urls)).Msg("loaded URL source")
		out[src.Path] = urls
	}
	return out
}

// StoreURLs writes a harvested URL list as {"urls": [...]}, the shape
// LoadURLs reads back.
func (r *FileRepository) StoreURLs(path string, urls []string) error {
	body, err := json.MarshalIndent(urlFile{URLs: urls}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal URL list")
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	r.log.Info().Str("path", path).Int("urls", len(urls)).Msg("stored URL list")
	return nil
}
