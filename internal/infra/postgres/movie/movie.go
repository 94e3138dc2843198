package infra_postgres_movie

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Klaiveft/What2Watch/internal/model"
	infra_pg_errors "github.com/Klaiveft/What2Watch/internal/infra/postgres/errors"
	"github.com/jmoiron/sqlx"
)

var (
	ErrMovieNotFound  = errors.New("movie not found")
	ErrDuplicateMovie = errors.New("movie already exists")
	ErrRoomClosed     = errors.New("room is not accepting movies")
)

const columns = `id, room_code, tmdb_id, title, poster_path, release_year, runtime, overview, genres`

type Repository struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Find(ctx context.Context, code string, tmdbID int64) (model.Movie, error) {
	query := `
		SELECT ` + columns + `
		FROM movies
		WHERE room_code = $1 AND tmdb_id = $2
	`

	var movieDB MovieDB
	err := r.db.GetContext(ctx, &movieDB, query, code, tmdbID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Movie{}, ErrMovieNotFound
		}
		return model.Movie{}, fmt.Errorf("failed to load movie: %w", err)
	}

	return movieDB.ToDomain(), nil
}

// Store inserts the movie while its room is still proposing. The room row is
// share-locked so the insert cannot interleave with the start of voting.
func (r *Repository) Store(ctx context.Context, m model.Movie) (model.Movie, error) {
	movieDB := FromDomain(m)

	query := `
		INSERT INTO movies (room_code, tmdb_id, title, poster_path, release_year, runtime, overview, genres)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE EXISTS (
			SELECT 1 FROM rooms
			WHERE room_code = $1 AND status = 'proposing'
			FOR SHARE
		)
		RETURNING id
	`

	err := r.db.GetContext(ctx, &movieDB.ID, query,
		movieDB.RoomCode,
		movieDB.TMDBID,
		movieDB.Title,
		movieDB.PosterPath,
		movieDB.ReleaseYear,
		movieDB.Runtime,
		movieDB.Overview,
		movieDB.Genres,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return model.Movie{}, ErrRoomClosed
		case infra_pg_errors.IsUniqueViolation(err):
			return model.Movie{}, ErrDuplicateMovie
		}
		return model.Movie{}, fmt.Errorf("failed to store movie: %w", err)
	}

	return movieDB.ToDomain(), nil
}

// DeleteOrphan drops a movie nobody proposed, only while proposals are open.
func (r *Repository) DeleteOrphan(ctx context.Context, code string, movieID int64) error {
	query := `
		DELETE FROM movies m
		WHERE m.id = $1 AND m.room_code = $2
			AND NOT EXISTS (SELECT 1 FROM proposals p WHERE p.movie_id = m.id)
			AND EXISTS (SELECT 1 FROM rooms r WHERE r.room_code = m.room_code AND r.status = 'proposing')
	`

	if _, err := r.db.ExecContext(ctx, query, movieID, code); err != nil {
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	return nil
}

func (r *Repository) LoadByRoom(ctx context.Context, code string) ([]model.Movie, error) {
	query := `
		SELECT ` + columns + `
		FROM movies
		WHERE room_code = $1
		ORDER BY id
	`

	var moviesDB []MovieDB
	if err := r.db.SelectContext(ctx, &moviesDB, query, code); err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}

	return ToDomainAll(moviesDB), nil
}

func (r *Repository) CountByRoom(ctx context.Context, code string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM movies WHERE room_code = $1`, code); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return count, nil
}
