package app

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/topcine/topcinedb/internal/config"
	"github.com/topcine/topcinedb/internal/database"
	"github.com/topcine/topcinedb/internal/domain"
	"github.com/topcine/topcinedb/internal/fetch"
	"github.com/topcine/topcinedb/internal/logger"
	"github.com/topcine/topcinedb/internal/notification"
	"github.com/topcine/topcinedb/internal/repository"
	"github.com/topcine/topcinedb/internal/scrape"
)

// App holds the scraper with all dependencies initialized.
type App struct {
	Log          zerolog.Logger
	LogBuf       *logger.Buffer
	Config       *domain.Config
	DB           *database.DB
	ShowRepo     *database.ShowRepo
	ProgressRepo *database.ProgressRepo
	FileRepo     *repository.FileRepository
	Scraper      scrape.Service
	Notifier     domain.NotificationService
}

// NewApp loads configuration, opens the database, and wires the services.
func NewApp() (*App, error) {
	logBuf := logger.NewBuffer(200)
	log := logger.NewLogger(logBuf)

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := database.NewDB(cfg.DataDir, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	fetcher := fetch.NewFetcher(cfg, log)

	return &App{
		Log:          log,
		LogBuf:       logBuf,
		Config:       cfg,
		DB:           db,
		ShowRepo:     database.NewShowRepo(log, db),
		ProgressRepo: database.NewProgressRepo(log, db),
		FileRepo:     repository.NewFileRepository(log),
		Scraper:      scrape.NewService(log, fetcher, cfg),
		Notifier:     notification.NewDiscordService(log, cfg.DiscordWebhookURL),
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.DB.Close()
}
