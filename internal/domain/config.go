package domain

import "time"

// URLSource is one JSON file of show URLs to scrape. ForceKind, when set,
// overrides URL-based classification (the series/anime list files contain
// URLs the movie regex would never match).
type URLSource struct {
	Path      string `mapstructure:"path"`
	ForceKind Kind   `mapstructure:"kind"`
}

// Config holds the runtime configuration.
type Config struct {
	BaseURL           string        `mapstructure:"base_url"`
	DataDir           string        `mapstructure:"data_dir"`
	Sources           []URLSource   `mapstructure:"sources"`
	Workers           int           `mapstructure:"workers"`
	EpisodeWorkers    int           `mapstructure:"episode_workers"`
	ProbeCount        int           `mapstructure:"probe_count"`
	RequestDelay      time.Duration `mapstructure:"request_delay"`
	PageTimeout       time.Duration `mapstructure:"page_timeout"`
	ProbeTimeout      time.Duration `mapstructure:"probe_timeout"`
	UserAgent         string        `mapstructure:"user_agent"`
	ListenAddr        string        `mapstructure:"listen_addr"`
	DiscordWebhookURL string        `mapstructure:"discord_webhook_url"`
}
