package database

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/topcine/topcinedb/internal/domain"
)

// ProgressRepo tracks per-URL scrape status. Re-runs use it to skip
// everything already completed.
type ProgressRepo struct {
	log zerolog.Logger
	db  *DB
}

func NewProgressRepo(log zerolog.Logger, db *DB) *ProgressRepo {
	return &ProgressRepo{
		log: log.With().Str("repo", "progress").Logger(),
		db:  db,
	}
}

var _ domain.ProgressStore = (*ProgressRepo)(nil)

// SeedProgress registers URLs as pending. Already-known URLs are left
// untouched, so re-enumerating a completed URL is a no-op.
func (r *ProgressRepo) SeedProgress(ctx context.Context, urls []string) error {
	if len(urls) == 0 {
		return nil
	}
	r.db.lock.Lock()
	defer r.db.lock.Unlock()

	tx, err := r.db.handler.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, u := range urls {
		query, args, err := r.db.squirrel.
			Insert("scrape_progress").
			Options("OR IGNORE").
			Columns("url").
			Values(u).
			ToSql()
		if err != nil {
			return errors.Wrap(err, "error building seed query")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrapf(err, "error seeding progress for %s", u)
		}
	}
	return tx.Commit()
}

// GetPending filters a candidate URL list down to those not yet completed,
// preserving input order.
func (r *ProgressRepo) GetPending(ctx context.Context, urls []string) ([]string, error) {
	query, args, err := r.db.squirrel.
		Select("url").
		From("scrape_progress").
		Where(sq.Eq{"status": string(domain.StatusCompleted)}).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building completed query")
	}

	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error querying completed urls")
	}
	defer rows.Close()

	completed := make(map[string]bool)
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, errors.Wrap(err, "error scanning completed url")
		}
		completed[u] = true
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating completed urls")
	}

	pending := make([]string, 0, len(urls))
	for _, u := range urls {
		if !completed[u] {
			pending = append(pending, u)
		}
	}
	return pending, nil
}

// Mark upserts a URL's scrape status. Calling it again with the same
// outcome changes nothing observable.
func (r *ProgressRepo) Mark(ctx context.Context, url string, status domain.ProgressStatus, showID *int64, errText string) error {
	r.db.lock.Lock()
	defer r.db.lock.Unlock()

	query, args, err := r.db.squirrel.
		Insert("scrape_progress").
		Columns("url", "status", "show_id", "error_message").
		Values(url, string(status), showID, nullable(errText)).
		Suffix(`ON CONFLICT(url) DO UPDATE SET
			status = excluded.status,
			show_id = excluded.show_id,
			error_message = excluded.error_message,
			updated_at = CURRENT_TIMESTAMP`).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "error building mark query")
	}

	if _, err := r.db.handler.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrapf(err, "error marking %s as %s", url, status)
	}
	return nil
}

// FailedURLs returns every URL currently marked failed, with its reason.
func (r *ProgressRepo) FailedURLs(ctx context.Context) ([]domain.ProgressRecord, error) {
	query, args, err := r.db.squirrel.
		Select("url", "status", "show_id", "error_message").
		From("scrape_progress").
		Where(sq.Eq{"status": string(domain.StatusFailed)}).
		OrderBy("updated_at DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building failed query")
	}

	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error querying failed urls")
	}
	defer rows.Close()

	var records []domain.ProgressRecord
	for rows.Next() {
		var rec domain.ProgressRecord
		var status string
		var showID sql.NullInt64
		var errMsg sql.NullString
		if err := rows.Scan(&rec.URL, &status, &showID, &errMsg); err != nil {
			return nil, errors.Wrap(err, "error scanning failed row")
		}
		rec.Status = domain.ProgressStatus(status)
		if showID.Valid {
			rec.ShowID = &showID.Int64
		}
		rec.Error = errMsg.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// StatusCounts returns how many URLs sit in each status.
func (r *ProgressRepo) StatusCounts(ctx context.Context) (map[domain.ProgressStatus]int, error) {
	query, args, err := r.db.squirrel.
		Select("status", "COUNT(*)").
		From("scrape_progress").
		GroupBy("status").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building status count query")
	}

	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error counting progress")
	}
	defer rows.Close()

	counts := make(map[domain.ProgressStatus]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, errors.Wrap(err, "error scanning status count")
		}
		counts[domain.ProgressStatus(status)] = n
	}
	return counts, rows.Err()
}
