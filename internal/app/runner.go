package app

import (
	"fmt"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/topcine/topcinedb/internal/domain"
	"github.com/topcine/topcinedb/internal/scrape"
)

// Run executes one scrape pass: seed progress for every known URL, take
// the pending subset, and resolve those shows with a bounded worker pool.
// One bad URL never aborts the run; each failure is recorded against its
// URL with a short reason.
func (a *App) Run(run *domain.RunContext) (err error) {
	ctx := run.Ctx()

	defer func() {
		if err != nil {
			if notifyErr := a.Notifier.SendError(ctx, err); notifyErr != nil {
				a.Log.Warn().Err(notifyErr).Msg("Failed to send error notification")
			}
		}
	}()

	sources := a.FileRepo.LoadSources(a.Config.Sources)

	var allURLs []string
	for _, src := range a.Config.Sources {
		allURLs = append(allURLs, sources[src.Path]...)
	}
	run.TotalSources.Store(int64(len(allURLs)))

	if err := a.ProgressRepo.SeedProgress(ctx, allURLs); err != nil {
		return fmt.Errorf("failed to seed progress: %w", err)
	}

	pending := make(map[string][]string, len(a.Config.Sources))
	totalPending := 0
	for _, src := range a.Config.Sources {
		urls, err := a.ProgressRepo.GetPending(ctx, sources[src.Path])
		if err != nil {
			return fmt.Errorf("failed to get pending urls: %w", err)
		}
		pending[src.Path] = urls
		totalPending += len(urls)
	}
	run.TotalPending.Store(int64(totalPending))

	a.Log.Info().Int("pending", totalPending).Int("total", len(allURLs)).Msg("Starting scrape run")
	start := time.Now()

	for _, src := range a.Config.Sources {
		if run.Stopped() {
			a.Log.Warn().Msg("Stop signal received")
			break
		}
		urls := pending[src.Path]
		if len(urls) == 0 {
			a.Log.Info().Str("source", src.Path).Msg("No pending URLs, skipping source")
			continue
		}
		a.Log.Info().Str("source", src.Path).Int("urls", len(urls)).Msg("Processing source")

		p := pool.New().WithMaxGoroutines(a.Config.Workers)
		for _, u := range urls {
			u := u
			p.Go(func() {
				if run.Stopped() {
					return
				}
				a.processURL(run, u, src.ForceKind)
			})
		}
		p.Wait()
	}

	stats := run.Stats()
	a.Log.Info().
		Dur("elapsed", time.Since(start)).
		Int("completed", stats.Completed).
		Int("failed", stats.Failed).
		Msg("Scrape run finished")

	if notifyErr := a.Notifier.SendSuccess(ctx, stats); notifyErr != nil {
		a.Log.Warn().Err(notifyErr).Msg("Failed to send success notification")
	}
	return nil
}

// processURL resolves and persists one show. Panics are contained here so
// a programming error in one item's parse cannot take down the run.
func (a *App) processURL(run *domain.RunContext, url string, force domain.Kind) {
	run.SetCurrentURL(url)
	defer func() {
		if r := recover(); r != nil {
			a.Log.Error().Interface("panic", r).Str("url", url).Msg("panic while processing URL")
			a.fail(run, url, fmt.Sprintf("panic: %v", r))
		}
	}()

	a.Log.Info().Str("url", url).Msg("Scraping")

	show, err := a.Scraper.Resolve(run, url, force)
	if err != nil {
		if run.Stopped() {
			// Leave the record pending; the URL is retried next run.
			return
		}
		if scrape.IsRedflag(err) {
			a.Log.Warn().Err(err).Str("url", url).Msg("Structurally empty result, discarding")
		} else {
			a.Log.Error().Err(err).Str("url", url).Msg("Scrape failed")
		}
		a.fail(run, url, truncate(err.Error(), 100))
		return
	}

	ctx := run.Ctx()
	showID, err := a.ShowRepo.InsertShow(ctx, show)
	if err != nil {
		a.Log.Error().Err(err).Str("url", url).Msg("Show insert failed")
		a.fail(run, url, truncate(err.Error(), 100))
		return
	}

	if show.Kind == domain.KindMovie {
		err = a.ShowRepo.InsertMovieServers(ctx, showID, show.Servers)
	} else {
		err = a.ShowRepo.InsertSeasonsTree(ctx, showID, show.Seasons)
	}
	if err != nil {
		a.Log.Error().Err(err).Str("url", url).Msg("Tree insert failed")
		a.fail(run, url, truncate(err.Error(), 100))
		return
	}

	if err := a.ProgressRepo.Mark(ctx, url, domain.StatusCompleted, &showID, ""); err != nil {
		a.Log.Error().Err(err).Str("url", url).Msg("Failed to mark completed")
		return
	}
	run.Completed.Add(1)
	run.CountShow(show.Kind)
	a.Log.Info().Str("url", url).Str("title", show.Title).Str("kind", string(show.Kind)).Msg("Saved")
}

func (a *App) fail(run *domain.RunContext, url, reason string) {
	if err := a.ProgressRepo.Mark(run.Ctx(), url, domain.StatusFailed, nil, reason); err != nil {
		a.Log.Error().Err(err).Str("url", url).Msg("Failed to mark failed")
	}
	run.Failed.Add(1)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
