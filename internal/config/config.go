package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/viper"

	"github.com/topcine/topcinedb/internal/domain"
)

// Load builds the runtime configuration from viper (config file +
// TOPCINEDB_* environment variables + bound CLI flags). Defaults mirror the
// values the scraper was tuned with against the live site.
func Load() (*domain.Config, error) {
	viper.SetDefault("base_url", "https://web7.topcinema.cam")
	viper.SetDefault("data_dir", "./data")
	viper.SetDefault("workers", 3)
	viper.SetDefault("episode_workers", 10)
	viper.SetDefault("probe_count", 10)
	viper.SetDefault("request_delay", 300*time.Millisecond)
	viper.SetDefault("page_timeout", 15*time.Second)
	viper.SetDefault("probe_timeout", 5*time.Second)
	viper.SetDefault("user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	viper.SetDefault("listen_addr", ":8080")

	cfg := &domain.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if len(cfg.Sources) == 0 {
		cfg.Sources = []domain.URLSource{
			{Path: "data/series_animes.json", ForceKind: domain.KindSeries},
			{Path: "data/movies.json"},
		}
	}

	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base_url must be an absolute http(s) URL, got %q", cfg.BaseURL)
	}

	if cfg.Workers < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.Workers)
	}
	if cfg.EpisodeWorkers < 1 {
		return nil, fmt.Errorf("episode_workers must be at least 1, got %d", cfg.EpisodeWorkers)
	}
	if cfg.ProbeCount < 1 {
		return nil, fmt.Errorf("probe_count must be at least 1, got %d", cfg.ProbeCount)
	}
	if cfg.ProbeTimeout > cfg.PageTimeout {
		return nil, fmt.Errorf("probe_timeout (%s) must not exceed page_timeout (%s)", cfg.ProbeTimeout, cfg.PageTimeout)
	}

	return cfg, nil
}
