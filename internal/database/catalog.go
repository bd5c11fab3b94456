package database

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"

	"github.com/topcine/topcinedb/internal/domain"
)

// Catalog loads every stored show with its full season/episode/server
// tree, ordered by show id. Used by the export command.
func (r *ShowRepo) Catalog(ctx context.Context) ([]domain.Show, error) {
	query, args, err := r.db.squirrel.
		Select("id", "title", "kind", "poster", "synopsis", "rating", "trailer", "year", "source_url").
		From("shows").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building catalog query")
	}

	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error querying shows")
	}
	defer rows.Close()

	var shows []domain.Show
	for rows.Next() {
		var show domain.Show
		var kind string
		var poster, synopsis, trailer sql.NullString
		var rating sql.NullFloat64
		var year sql.NullInt64
		if err := rows.Scan(&show.ID, &show.Title, &kind, &poster, &synopsis, &rating, &trailer, &year, &show.SourceURL); err != nil {
			return nil, errors.Wrap(err, "error scanning show row")
		}
		show.Kind = domain.Kind(kind)
		show.Poster = poster.String
		show.Synopsis = synopsis.String
		show.Trailer = trailer.String
		if rating.Valid {
			show.Rating = &rating.Float64
		}
		if year.Valid {
			y := int(year.Int64)
			show.Year = &y
		}
		shows = append(shows, show)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating shows")
	}

	for i := range shows {
		seasons, err := r.seasonsForShow(ctx, shows[i].ID)
		if err != nil {
			return nil, err
		}
		shows[i].Seasons = seasons
	}
	return shows, nil
}

func (r *ShowRepo) seasonsForShow(ctx context.Context, showID int64) ([]domain.Season, error) {
	query, args, err := r.db.squirrel.
		Select("id", "season_number", "poster").
		From("seasons").
		Where(sq.Eq{"show_id": showID}).
		OrderBy("season_number").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building seasons query")
	}

	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error querying seasons")
	}
	defer rows.Close()

	var seasons []domain.Season
	for rows.Next() {
		var season domain.Season
		var poster sql.NullString
		if err := rows.Scan(&season.ID, &season.Number, &poster); err != nil {
			return nil, errors.Wrap(err, "error scanning season row")
		}
		season.Poster = poster.String
		seasons = append(seasons, season)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "error iterating seasons")
	}

	for i := range seasons {
		episodes, err := r.episodesForSeason(ctx, seasons[i].ID)
		if err != nil {
			return nil, err
		}
		seasons[i].Episodes = episodes
	}
	return seasons, nil
}

func (r *ShowRepo) episodesForSeason(ctx context.Context, seasonID int64) ([]domain.Episode, error) {
	query, args, err := r.db.squirrel.
		Select("e.id", "e.number_label", "s.server_number", "s.embed_url").
		From("episodes e").
		LeftJoin("servers s ON s.episode_id = e.id").
		Where(sq.Eq{"e.season_id": seasonID}).
		OrderBy("e.episode_number", "s.server_number").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "error building episodes query")
	}

	rows, err := r.db.handler.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "error querying episodes")
	}
	defer rows.Close()

	var episodes []domain.Episode
	byID := make(map[int64]int)
	for rows.Next() {
		var id int64
		var label string
		var serverNum sql.NullInt64
		var embedURL sql.NullString
		if err := rows.Scan(&id, &label, &serverNum, &embedURL); err != nil {
			return nil, errors.Wrap(err, "error scanning episode row")
		}
		idx, seen := byID[id]
		if !seen {
			episodes = append(episodes, domain.Episode{ID: id, Number: domain.ParseLabel(label)})
			idx = len(episodes) - 1
			byID[id] = idx
		}
		if serverNum.Valid && embedURL.Valid {
			episodes[idx].Servers = append(episodes[idx].Servers, domain.Server{
				Index:    int(serverNum.Int64),
				EmbedURL: embedURL.String,
			})
		}
	}
	return episodes, rows.Err()
}
