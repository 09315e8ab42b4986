package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/huangsam/watchlist/schema"
)

//go:embed seed/catalog.json
var defaultCatalog []byte

// CatalogSeed is the JSON document accepted by Seed.
type CatalogSeed struct {
	Movies  []schema.ContentRecord `json:"movies"`
	TVShows []schema.ContentRecord `json:"tvShows"`
}

// DefaultCatalogSeed returns the bundled sample catalog.
func DefaultCatalogSeed() (CatalogSeed, error) {
	var seed CatalogSeed
	if err := json.Unmarshal(defaultCatalog, &seed); err != nil {
		return seed, fmt.Errorf("decode bundled catalog: %w", err)
	}
	return seed, nil
}

// ReadCatalogSeed decodes a catalog document.
func ReadCatalogSeed(r io.Reader) (CatalogSeed, error) {
	var seed CatalogSeed
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&seed); err != nil {
		return seed, fmt.Errorf("decode catalog: %w", err)
	}
	return seed, nil
}

const (
	deleteMovieQuery    = `DELETE FROM movies WHERE id = ?`
	insertMovieQuery    = `INSERT INTO movies (id, title, description, genres, release_date, director, actors) VALUES (?, ?, ?, ?, ?, ?, ?)`
	deleteShowQuery     = `DELETE FROM tv_shows WHERE id = ?`
	insertShowQuery     = `INSERT INTO tv_shows (id, title, description, genres) VALUES (?, ?, ?, ?)`
	deleteEpisodesQuery = `DELETE FROM tv_episodes WHERE show_id = ?`
	insertEpisodeQuery  = `INSERT INTO tv_episodes (show_id, season_number, episode_number, release_date, director, actors) VALUES (?, ?, ?, ?, ?, ?)`
)

// Seed replaces the given catalog records in one transaction and returns how many were written.
// Records not named in the seed are left alone.
func (cs *CatalogStoreImpl) Seed(ctx context.Context, seed CatalogSeed) (int, error) {
	tx, err := cs.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for _, m := range seed.Movies {
		if m.ID == "" {
			return 0, fmt.Errorf("movie %q has no id", m.Title)
		}
		genres, actors, err := encodeLists(m.Genres, m.Actors)
		if err != nil {
			return 0, err
		}
		if err := cs.exec(ctx, tx, deleteMovieQuery, m.ID); err != nil {
			return 0, err
		}
		if err := cs.exec(ctx, tx, insertMovieQuery, m.ID, m.Title, m.Description, genres, unixOrNil(m.ReleaseDate), m.Director, actors); err != nil {
			return 0, fmt.Errorf("insert movie %s: %w", m.ID, err)
		}
	}

	for _, show := range seed.TVShows {
		if show.ID == "" {
			return 0, fmt.Errorf("tv show %q has no id", show.Title)
		}
		genres, _, err := encodeLists(show.Genres, nil)
		if err != nil {
			return 0, err
		}
		if err := cs.exec(ctx, tx, deleteEpisodesQuery, show.ID); err != nil {
			return 0, err
		}
		if err := cs.exec(ctx, tx, deleteShowQuery, show.ID); err != nil {
			return 0, err
		}
		if err := cs.exec(ctx, tx, insertShowQuery, show.ID, show.Title, show.Description, genres); err != nil {
			return 0, fmt.Errorf("insert tv show %s: %w", show.ID, err)
		}
		for _, ep := range show.Episodes {
			_, actors, err := encodeLists(nil, ep.Actors)
			if err != nil {
				return 0, err
			}
			if err := cs.exec(ctx, tx, insertEpisodeQuery, show.ID, ep.SeasonNumber, ep.EpisodeNumber, unixOrNil(ep.ReleaseDate), ep.Director, actors); err != nil {
				return 0, fmt.Errorf("insert episode S%02dE%02d of %s: %w", ep.SeasonNumber, ep.EpisodeNumber, show.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(seed.Movies) + len(seed.TVShows), nil
}

func (cs *CatalogStoreImpl) exec(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	_, err := tx.ExecContext(ctx, rebind(cs.backend, query), args...)
	return err
}

// encodeLists renders string lists as the JSON text stored in the catalog tables.
func encodeLists(genres, actors []string) (string, string, error) {
	if genres == nil {
		genres = []string{}
	}
	if actors == nil {
		actors = []string{}
	}
	g, err := json.Marshal(genres)
	if err != nil {
		return "", "", err
	}
	a, err := json.Marshal(actors)
	if err != nil {
		return "", "", err
	}
	return string(g), string(a), nil
}
