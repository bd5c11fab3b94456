package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/topcine/topcinedb/internal/database"
	"github.com/topcine/topcinedb/internal/domain"
	"github.com/topcine/topcinedb/internal/logger"
	"github.com/topcine/topcinedb/internal/notification"
	"github.com/topcine/topcinedb/internal/repository"
	"github.com/topcine/topcinedb/internal/scrape"
)

// stubScraper resolves from a canned map instead of the network.
type stubScraper struct {
	shows map[string]*domain.Show
}

func (s *stubScraper) Resolve(run *domain.RunContext, showURL string, force domain.Kind) (*domain.Show, error) {
	show, ok := s.shows[showURL]
	if !ok {
		return nil, errors.New("show page fetch failed")
	}
	if force != "" {
		show.Kind = force
	}
	return show, nil
}

func newTestApp(t *testing.T, scraper scrape.Service, sources []domain.URLSource) *App {
	t.Helper()
	log := zerolog.Nop()

	db, err := database.NewDB(t.TempDir(), log)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return &App{
		Log:          log,
		LogBuf:       logger.NewBuffer(50),
		Config:       &domain.Config{Workers: 2, Sources: sources},
		DB:           db,
		ShowRepo:     database.NewShowRepo(log, db),
		ProgressRepo: database.NewProgressRepo(log, db),
		FileRepo:     repository.NewFileRepository(log),
		Scraper:      scraper,
		Notifier:     notification.NewDiscordService(log, ""),
	}
}

func writeURLFile(t *testing.T, urls []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "urls.json")
	body, _ := json.Marshal(urls)
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunProcessesSources(t *testing.T) {
	good := "https://example.com/series/good/"
	bad := "https://example.com/series/bad/"
	movie := "https://example.com/film-solo/"

	scraper := &stubScraper{shows: map[string]*domain.Show{
		good: {
			Title:     "Good",
			Kind:      domain.KindSeries,
			SourceURL: good,
			Seasons: []domain.Season{{Number: 1, Episodes: []domain.Episode{
				{Number: domain.Normal(1), Servers: []domain.Server{{Index: 0, EmbedURL: "https://embed.example/g"}}},
			}}},
		},
		movie: {
			Title:     "Solo",
			Kind:      domain.KindMovie,
			SourceURL: movie,
			Servers:   []domain.Server{{Index: 1, EmbedURL: "https://embed.example/m"}},
		},
	}}

	seriesFile := writeURLFile(t, []string{good, bad})
	movieFile := writeURLFile(t, []string{movie})
	a := newTestApp(t, scraper, []domain.URLSource{
		{Path: seriesFile, ForceKind: domain.KindSeries},
		{Path: movieFile},
	})

	run := domain.NewRunContext(context.Background())
	if err := a.Run(run); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	stats := run.Stats()
	if stats.TotalSources != 3 || stats.TotalPending != 3 {
		t.Errorf("stats totals = %+v", stats)
	}
	if stats.Completed != 2 || stats.Failed != 1 {
		t.Errorf("completed/failed = %d/%d, want 2/1", stats.Completed, stats.Failed)
	}
	if stats.Series != 1 || stats.Movies != 1 {
		t.Errorf("kind counters = %+v", stats)
	}

	ctx := context.Background()
	failed, err := a.ProgressRepo.FailedURLs(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 || failed[0].URL != bad {
		t.Errorf("failed records = %+v", failed)
	}

	counts, err := a.ShowRepo.CountByKind(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[domain.KindSeries] != 1 || counts[domain.KindMovie] != 1 {
		t.Errorf("stored counts = %v", counts)
	}
}

func TestRunSkipsCompleted(t *testing.T) {
	done := "https://example.com/series/done/"
	scraper := &stubScraper{shows: map[string]*domain.Show{}}

	file := writeURLFile(t, []string{done})
	a := newTestApp(t, scraper, []domain.URLSource{{Path: file}})

	showID := int64(1)
	if err := a.ProgressRepo.SeedProgress(context.Background(), []string{done}); err != nil {
		t.Fatal(err)
	}
	if err := a.ProgressRepo.Mark(context.Background(), done, domain.StatusCompleted, &showID, ""); err != nil {
		t.Fatal(err)
	}

	run := domain.NewRunContext(context.Background())
	if err := a.Run(run); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// The stub errors on every URL, so touching the completed one would
	// show up as a failure.
	stats := run.Stats()
	if stats.Failed != 0 || stats.Completed != 0 {
		t.Errorf("completed URL was reprocessed: %+v", stats)
	}
	if stats.TotalPending != 0 {
		t.Errorf("TotalPending = %d, want 0", stats.TotalPending)
	}
}

func TestRunEmptySources(t *testing.T) {
	a := newTestApp(t, &stubScraper{}, nil)
	run := domain.NewRunContext(context.Background())
	if err := a.Run(run); err != nil {
		t.Fatalf("Run() with no sources error = %v", err)
	}
}
