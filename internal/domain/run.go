package domain

import (
	"context"
	"sync"
	"sync/atomic"
)

// RunContext carries the cooperative stop signal and the live counters for
// one scrape run. It is passed by reference through the whole pipeline;
// every fetch, worker task, and loop iteration checks Stopped.
type RunContext struct {
	ctx    context.Context
	cancel context.CancelFunc

	TotalSources atomic.Int64
	TotalPending atomic.Int64
	Completed    atomic.Int64
	Failed       atomic.Int64
	Movies       atomic.Int64
	Series       atomic.Int64
	Anime        atomic.Int64

	mu         sync.RWMutex
	currentURL string
}

func NewRunContext(parent context.Context) *RunContext {
	ctx, cancel := context.WithCancel(parent)
	return &RunContext{ctx: ctx, cancel: cancel}
}

// Ctx is the context blocking I/O must run under.
func (r *RunContext) Ctx() context.Context { return r.ctx }

// Stop requests cooperative termination. In-flight tasks finish or bail;
// partial results up to this point are preserved.
func (r *RunContext) Stop() { r.cancel() }

func (r *RunContext) Stopped() bool {
	select {
	case <-r.ctx.Done():
		return true
	default:
		return false
	}
}

func (r *RunContext) SetCurrentURL(url string) {
	r.mu.Lock()
	r.currentURL = url
	r.mu.Unlock()
}

func (r *RunContext) CurrentURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentURL
}

// CountShow bumps the per-kind counter.
func (r *RunContext) CountShow(kind Kind) {
	switch kind {
	case KindMovie:
		r.Movies.Add(1)
	case KindAnime:
		r.Anime.Add(1)
	default:
		r.Series.Add(1)
	}
}

func (r *RunContext) Stats() RunStats {
	return RunStats{
		TotalSources: int(r.TotalSources.Load()),
		TotalPending: int(r.TotalPending.Load()),
		Completed:    int(r.Completed.Load()),
		Failed:       int(r.Failed.Load()),
		Movies:       int(r.Movies.Load()),
		Series:       int(r.Series.Load()),
		Anime:        int(r.Anime.Load()),
	}
}
