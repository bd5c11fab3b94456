package domain

import "context"

// ProgressStatus is the lifecycle of a source URL in the progress store.
type ProgressStatus string

const (
	StatusPending   ProgressStatus = "pending"
	StatusCompleted ProgressStatus = "completed"
	StatusFailed    ProgressStatus = "failed"
)

// ProgressRecord tracks one source URL across runs.
type ProgressRecord struct {
	URL    string
	Status ProgressStatus
	ShowID *int64
	Error  string
}

// RunStats aggregates a run's outcome for the dashboard and notifications.
type RunStats struct {
	TotalSources int `json:"total_sources"`
	TotalPending int `json:"total_pending"`
	Completed    int `json:"completed"`
	Failed       int `json:"failed"`
	Movies       int `json:"movies"`
	Series       int `json:"series"`
	Anime        int `json:"anime"`
}

// ShowStore is the persistence contract for resolved shows.
type ShowStore interface {
	// InsertShow inserts a show or, when the source URL is already known,
	// returns the existing id without error.
	InsertShow(ctx context.Context, show *Show) (int64, error)
	InsertSeasonsTree(ctx context.Context, showID int64, seasons []Season) error
	InsertMovieServers(ctx context.Context, showID int64, servers []Server) error
}

// ProgressStore tracks per-URL scrape status for resumability.
type ProgressStore interface {
	SeedProgress(ctx context.Context, urls []string) error
	GetPending(ctx context.Context, urls []string) ([]string, error)
	Mark(ctx context.Context, url string, status ProgressStatus, showID *int64, errText string) error
	FailedURLs(ctx context.Context) ([]ProgressRecord, error)
}

// NotificationService reports run outcomes to an external channel.
type NotificationService interface {
	SendSuccess(ctx context.Context, stats RunStats) error
	SendError(ctx context.Context, err error) error
}
