package export

import (
	"context"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/topcine/topcinedb/internal/database"
)

// Service dumps the stored catalog tree to a YAML file.
type Service interface {
	Catalog(ctx context.Context, path string) error
}

type service struct {
	log      zerolog.Logger
	showRepo *database.ShowRepo
}

func NewService(log zerolog.Logger, showRepo *database.ShowRepo) Service {
	return &service{
		log:      log.With().Str("module", "export").Logger(),
		showRepo: showRepo,
	}
}

type catalogFile struct {
	Shows []showEntry `yaml:"shows"`
}

type showEntry struct {
	Title     string        `yaml:"title"`
	Kind      string        `yaml:"kind"`
	Year      *int          `yaml:"year,omitempty"`
	Rating    *float64      `yaml:"rating,omitempty"`
	Poster    string        `yaml:"poster,omitempty"`
	Trailer   string        `yaml:"trailer,omitempty"`
	SourceURL string        `yaml:"sourceUrl"`
	Seasons   []seasonEntry `yaml:"seasons,omitempty"`
}

type seasonEntry struct {
	Number   int            `yaml:"number"`
	Episodes []episodeEntry `yaml:"episodes,omitempty"`
}

type episodeEntry struct {
	Number  string   `yaml:"number"`
	Servers []string `yaml:"servers,omitempty"`
}

// Catalog writes every stored show with its tree to path.
func (s *service) Catalog(ctx context.Context, path string) error {
	shows, err := s.showRepo.Catalog(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to load catalog")
	}

	out := catalogFile{Shows: make([]showEntry, 0, len(shows))}
	for _, show := range shows {
		entry := showEntry{
			Title:     show.Title,
			Kind:      string(show.Kind),
			Year:      show.Year,
			Rating:    show.Rating,
			Poster:    show.Poster,
			Trailer:   show.Trailer,
			SourceURL: show.SourceURL,
		}
		for _, season := range show.Seasons {
			se := seasonEntry{Number: season.Number}
			for _, ep := range season.Episodes {
				ee := episodeEntry{Number: ep.Number.Label()}
				for _, server := range ep.Servers {
					ee.Servers = append(ee.Servers, server.EmbedURL)
				}
				se.Episodes = append(se.Episodes, ee)
			}
			entry.Seasons = append(entry.Seasons, se)
		}
		out.Shows = append(out.Shows, entry)
	}

	body, err := yaml.Marshal(&out)
	if err != nil {
		return errors.Wrap(err, "failed to marshal catalog")
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}

	s.log.Info().Str("path", path).Int("shows", len(out.Shows)).Msg("catalog exported")
	return nil
}
