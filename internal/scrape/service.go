package scrape

import (
	"github.com/rs/zerolog"

	"github.com/topcine/topcinedb/internal/domain"
	"github.com/topcine/topcinedb/internal/fetch"
)

// Service resolves a show URL into its full season/episode/server tree.
type Service interface {
	Resolve(run *domain.RunContext, showURL string, force domain.Kind) (*domain.Show, error)
}

type service struct {
	log            zerolog.Logger
	fetcher        *fetch.Fetcher
	episodeWorkers int
	probeCount     int
}

func NewService(log zerolog.Logger, fetcher *fetch.Fetcher, cfg *domain.Config) Service {
	return &service{
		log:            log.With().Str("module", "scrape").Logger(),
		fetcher:        fetcher,
		episodeWorkers: cfg.EpisodeWorkers,
		probeCount:     cfg.ProbeCount,
	}
}
