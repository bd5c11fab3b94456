package web

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/topcine/topcinedb/internal/app"
	"github.com/topcine/topcinedb/internal/domain"
)

// Server is the dashboard: it starts and stops scrape runs and reports
// live progress. Observability only; the resolution pipeline does not
// depend on it.
type Server struct {
	log zerolog.Logger
	app *app.App

	mu      sync.Mutex
	running bool
	run     *domain.RunContext
}

func NewServer(log zerolog.Logger, application *app.App) *Server {
	return &Server{
		log: log.With().Str("module", "web").Logger(),
		app: application,
	}
}

// Router builds the dashboard routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/api/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/api/start", s.handleStart).Methods(http.MethodPost)
	r.HandleFunc("/api/stop", s.handleStop).Methods(http.MethodPost)
	return r
}

// ListenAndServe blocks serving the dashboard until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", addr).Msg("dashboard listening")
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

type statusResponse struct {
	Running    bool                    `json:"running"`
	CurrentURL string                  `json:"current_url"`
	LogLines   []string                `json:"log_lines"`
	Stats      domain.RunStats         `json:"stats"`
	FailedURLs []domain.ProgressRecord `json:"failed_urls"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	running := s.running
	run := s.run
	s.mu.Unlock()

	resp := statusResponse{
		Running:  running,
		LogLines: s.app.LogBuf.Lines(),
	}
	if run != nil {
		resp.Stats = run.Stats()
		resp.CurrentURL = run.CurrentURL()
	}

	failed, err := s.app.ProgressRepo.FailedURLs(r.Context())
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to load failed URLs")
	} else {
		resp.FailedURLs = failed
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "scraper already running"})
		return
	}

	run := domain.NewRunContext(context.Background())
	s.run = run
	s.running = true

	go func() {
		defer func() {
			s.mu.Lock()
			s.running = false
			s.mu.Unlock()
		}()
		if err := s.app.Run(run); err != nil {
			s.log.Error().Err(err).Msg("scrape run failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running || s.run == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "scraper not running"})
		return
	}
	s.run.Stop()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "stopping"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
