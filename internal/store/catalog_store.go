package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/huangsam/watchlist/internal/contract"
	"github.com/huangsam/watchlist/schema"
)

// CatalogStoreImpl is the read-only movie and TV show catalog.
type CatalogStoreImpl struct {
	db       *sql.DB
	backend  schema.DatabaseBackend
	movie    string
	tvShow   string
	episodes string
}

var _ contract.CatalogStore = &CatalogStoreImpl{} // Compile-time check

const (
	movieQuery    = `SELECT id, title, description, genres, release_date, director, actors FROM movies WHERE id = ?`
	tvShowQuery   = `SELECT id, title, description, genres FROM tv_shows WHERE id = ?`
	episodesQuery = `SELECT season_number, episode_number, release_date, director, actors FROM tv_episodes
		WHERE show_id = ? ORDER BY season_number, episode_number`
)

// NewCatalogStore wraps an open database holding the catalog tables.
func NewCatalogStore(db *sql.DB, backend schema.DatabaseBackend) *CatalogStoreImpl {
	return &CatalogStoreImpl{
		db:       db,
		backend:  backend,
		movie:    rebind(backend, movieQuery),
		tvShow:   rebind(backend, tvShowQuery),
		episodes: rebind(backend, episodesQuery),
	}
}

// GetContent looks up a record by id and kind.
func (cs *CatalogStoreImpl) GetContent(ctx context.Context, id string, kind schema.ContentType) (*schema.ContentRecord, error) {
	switch kind {
	case schema.MovieContent:
		return cs.getMovie(ctx, id)
	case schema.TVShowContent:
		return cs.getTVShow(ctx, id)
	default:
		return nil, fmt.Errorf("unsupported content type %q", kind)
	}
}

func (cs *CatalogStoreImpl) getMovie(ctx context.Context, id string) (*schema.ContentRecord, error) {
	rec := &schema.ContentRecord{ContentType: schema.MovieContent}
	var genres, actors string
	var release sql.NullInt64
	err := cs.db.QueryRowContext(ctx, cs.movie, id).
		Scan(&rec.ID, &rec.Title, &rec.Description, &genres, &release, &rec.Director, &actors)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contract.ErrContentMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query movie %s: %w", id, err)
	}
	if rec.Genres, err = decodeStrings(genres); err != nil {
		return nil, fmt.Errorf("movie %s genres: %w", id, err)
	}
	if rec.Actors, err = decodeStrings(actors); err != nil {
		return nil, fmt.Errorf("movie %s actors: %w", id, err)
	}
	rec.ReleaseDate = unixDate(release)
	return rec, nil
}

func (cs *CatalogStoreImpl) getTVShow(ctx context.Context, id string) (*schema.ContentRecord, error) {
	rec := &schema.ContentRecord{ContentType: schema.TVShowContent}
	var genres string
	err := cs.db.QueryRowContext(ctx, cs.tvShow, id).Scan(&rec.ID, &rec.Title, &rec.Description, &genres)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contract.ErrContentMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query tv show %s: %w", id, err)
	}
	if rec.Genres, err = decodeStrings(genres); err != nil {
		return nil, fmt.Errorf("tv show %s genres: %w", id, err)
	}
	rec.Actors = []string{}

	rows, err := cs.db.QueryContext(ctx, cs.episodes, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query episodes for %s: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	rec.Episodes = []schema.Episode{}
	for rows.Next() {
		var ep schema.Episode
		var release sql.NullInt64
		var actors string
		if err := rows.Scan(&ep.SeasonNumber, &ep.EpisodeNumber, &release, &ep.Director, &actors); err != nil {
			return nil, fmt.Errorf("failed to scan episode: %w", err)
		}
		if ep.Actors, err = decodeStrings(actors); err != nil {
			return nil, fmt.Errorf("episode actors: %w", err)
		}
		ep.ReleaseDate = unixDate(release)
		rec.Episodes = append(rec.Episodes, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate episodes: %w", err)
	}
	return rec, nil
}

// decodeStrings parses a JSON string array column.
func decodeStrings(raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func unixDate(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}

func unixOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}
