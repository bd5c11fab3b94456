package database

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/topcine/topcinedb/internal/domain"
)

// ShowRepo persists resolved show trees.
type ShowRepo struct {
	log zerolog.Logger
	db  *DB
}

func NewShowRepo(log zerolog.Logger, db *DB) *ShowRepo {
	return &ShowRepo{
		log: log.With().Str("repo", "show").Logger(),
		db:  db,
	}
}

var _ domain.ShowStore = (*ShowRepo)(nil)

// InsertShow inserts a show, or returns the existing id when the source
// URL is already known. Duplicate identity is not an error.
func (r *ShowRepo) InsertShow(ctx context.Context, show *domain.Show) (int64, error) {
	r.db.lock.Lock()
	defer r.db.lock.Unlock()

	if id, err := r.findBySourceURL(ctx, show.SourceURL); err != nil {
		return 0, err
	} else if id != 0 {
		r.log.Debug().Str("url", show.SourceURL).Int64("id", id).Msg("show already exists")
		return id, nil
	}

	queryBuilder := r.db.squirrel.
		Insert("shows").
		Columns("title", "kind", "poster", "synopsis", "rating", "trailer", "year",
			"category", "genres", "quality", "episode_count", "duration",
			"language", "country", "directors", "cast_list", "source_url").
		Values(show.Title, string(show.Kind), nullable(show.Poster), nullable(show.Synopsis),
			show.Rating, nullable(show.Trailer), show.Year,
			meta(show, "category"), meta(show, "genres"), meta(show, "quality"),
			meta(show, "episode_count"), meta(show, "duration"), meta(show, "language"),
			meta(show, "country"), meta(show, "directors"), meta(show, "cast"),
			show.SourceURL)

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "error building insert show query")
	}

	res, err := r.db.handler.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "error inserting show")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "error getting show id")
	}
	return id, nil
}

func (r *ShowRepo) findBySourceURL(ctx context.Context, sourceURL string) (int64, error) {
	query, args, err := r.db.squirrel.
		Select("id").
		From("shows").
		Where(sq.Eq{"source_url": sourceURL}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "error building show lookup query")
	}

	var id int64
	err = r.db.handler.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "error looking up show")
	}
	return id, nil
}

// InsertSeasonsTree attaches a resolved season/episode/server tree to a
// show. Seasons and episodes are insert-or-identify on their unique keys;
// an episode's servers are replaced wholesale so a re-scrape overwrites
// stale probe results.
func (r *ShowRepo) InsertSeasonsTree(ctx context.Context, showID int64, seasons []domain.Season) error {
	r.db.lock.Lock()
	defer r.db.lock.Unlock()

	tx, err := r.db.handler.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, season := range seasons {
		seasonID, err := r.upsertSeason(ctx, tx, showID, season.Number, season.Poster)
		if err != nil {
			return err
		}
		for _, ep := range season.Episodes {
			episodeID, err := r.upsertEpisode(ctx, tx, seasonID, ep.Number)
			if err != nil {
				return err
			}
			if err := r.replaceServers(ctx, tx, episodeID, ep.Servers); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// InsertMovieServers attaches a movie's servers under a synthetic
// season 1 / episode 1, keeping a single tree shape for all kinds.
func (r *ShowRepo) InsertMovieServers(ctx context.Context, showID int64, servers []domain.Server) error {
	r.db.lock.Lock()
	defer r.db.lock.Unlock()

	tx, err := r.db.handler.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	seasonID, err := r.upsertSeason(ctx, tx, showID, 1, "")
	if err != nil {
		return err
	}
	episodeID, err := r.upsertEpisode(ctx, tx, seasonID, domain.Normal(1))
	if err != nil {
		return err
	}
	if err := r.replaceServers(ctx, tx, episodeID, servers); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *ShowRepo) upsertSeason(ctx context.Context, tx *sql.Tx, showID int64, number int, poster string) (int64, error) {
	query, args, err := r.db.squirrel.
		Insert("seasons").
		Options("OR IGNORE").
		Columns("show_id", "season_number", "poster").
		Values(showID, number, nullable(poster)).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "error building insert season query")
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, errors.Wrap(err, "error inserting season")
	}

	query, args, err = r.db.squirrel.
		Select("id").
		From("seasons").
		Where(sq.Eq{"show_id": showID, "season_number": number}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "error building season lookup query")
	}
	var id int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "error looking up season")
	}
	return id, nil
}

func (r *ShowRepo) upsertEpisode(ctx context.Context, tx *sql.Tx, seasonID int64, number domain.EpisodeNumber) (int64, error) {
	query, args, err := r.db.squirrel.
		Insert("episodes").
		Options("OR IGNORE").
		Columns("season_id", "episode_number", "number_label").
		Values(seasonID, number.SortValue(), number.Label()).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "error building insert episode query")
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, errors.Wrap(err, "error inserting episode")
	}

	query, args, err = r.db.squirrel.
		Select("id").
		From("episodes").
		Where(sq.Eq{"season_id": seasonID, "number_label": number.Label()}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "error building episode lookup query")
	}
	var id int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, errors.Wrap(err, "error looking up episode")
	}
	return id, nil
}

func (r *ShowRepo) replaceServers(ctx context.Context, tx *sql.Tx, episodeID int64, servers []domain.Server) error {
	query, args, err := r.db.squirrel.
		Delete("servers").
		Where(sq.Eq{"episode_id": episodeID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "error building delete servers query")
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "error deleting stale servers")
	}

	for _, server := range servers {
		query, args, err := r.db.squirrel.
			Insert("servers").
			Columns("episode_id", "server_number", "embed_url").
			Values(episodeID, server.Index, server.EmbedURL).
			ToSql()
		if err != nil {
			return errors.Wrap(err, "error building insert server query")
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(err, "error inserting server")
		}
	}
	return nil
}

// CountByKind returns how many shows are stored per kind.
func (r *ShowRepo) CountByKind(ctx context.Context) (map[domain.Kind]int, error) {
	query, args, err := r.db.squirrel.
		Select("kind", "COUNT(*)").
		From("shows").
		GroupBy("kind").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building count query")
	}

	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error counting shows")
	}
	defer rows.Close()

	counts := make(map[domain.Kind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, errors.Wrap(err, "error scanning count row")
		}
		counts[domain.Kind(kind)] = n
	}
	return counts, rows.Err()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func meta(show *domain.Show, key string) any {
	if v, ok := show.Metadata[key]; ok && v != "" {
		return v
	}
	return nil
}
