package infra_postgres_proposal

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Klaiveft/What2Watch/internal/model"
	infra_pg_errors "github.com/Klaiveft/What2Watch/internal/infra/postgres/errors"
	infra_postgres_movie "github.com/Klaiveft/What2Watch/internal/infra/postgres/movie"
	usecase_proposal "github.com/Klaiveft/What2Watch/internal/usecase/proposal"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Driver struct {
	db     *sqlx.DB
	movies *infra_postgres_movie.Repository
}

func New(
	db *sqlx.DB,
) *Driver {
	return &Driver{
		db:     db,
		movies: infra_postgres_movie.New(db),
	}
}

func (d *Driver) RoomStatus(ctx context.Context, code string) (model.Status, error) {
	var status string
	err := d.db.GetContext(ctx, &status, `SELECT status FROM rooms WHERE room_code = $1`, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", usecase_proposal.ErrResourceNotFound
		}
		return "", err
	}
	return model.Status(status), nil
}

func (d *Driver) CountProposals(ctx context.Context, code string, userID uuid.UUID) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM proposals WHERE room_code = $1 AND user_id = $2`

	if err := d.db.GetContext(ctx, &count, query, code, userID); err != nil {
		return 0, err
	}
	return count, nil
}

func (d *Driver) FindMovie(ctx context.Context, code string, tmdbID int64) (model.Movie, error) {
	m, err := d.movies.Find(ctx, code, tmdbID)
	if errors.Is(err, infra_postgres_movie.ErrMovieNotFound) {
		return model.Movie{}, usecase_proposal.ErrResourceNotFound
	}
	return m, err
}

func (d *Driver) InsertMovie(ctx context.Context, m model.Movie) (model.Movie, error) {
	m, err := d.movies.Store(ctx, m)
	switch {
	case errors.Is(err, infra_postgres_movie.ErrDuplicateMovie):
		return model.Movie{}, usecase_proposal.ErrMovieExists
	case errors.Is(err, infra_postgres_movie.ErrRoomClosed):
		return model.Movie{}, usecase_proposal.ErrWrongPhase
	}
	return m, err
}

func (d *Driver) DeleteOrphanMovie(ctx context.Context, code string, movieID int64) error {
	return d.movies.DeleteOrphan(ctx, code, movieID)
}

// InsertProposal admits the proposal inside one transaction. The room row is
// share-locked against the start of voting and the participant row is locked
// so that concurrent proposals by one user are counted one after another.
func (d *Driver) InsertProposal(ctx context.Context, p model.Proposal, limit int) (model.Proposal, error) {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Proposal{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	err = tx.GetContext(ctx, &status, `SELECT status FROM rooms WHERE room_code = $1 FOR SHARE`, p.RoomCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Proposal{}, usecase_proposal.ErrResourceNotFound
		}
		return model.Proposal{}, err
	}
	if model.Status(status) != model.StatusProposing {
		return model.Proposal{}, usecase_proposal.ErrWrongPhase
	}

	var participantID int64
	query := `SELECT id FROM participants WHERE room_code = $1 AND user_id = $2 FOR UPDATE`
	if err := tx.GetContext(ctx, &participantID, query, p.RoomCode, p.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Proposal{}, usecase_proposal.ErrNotParticipant
		}
		return model.Proposal{}, err
	}

	var count int
	query = `SELECT COUNT(*) FROM proposals WHERE room_code = $1 AND user_id = $2`
	if err := tx.GetContext(ctx, &count, query, p.RoomCode, p.UserID); err != nil {
		return model.Proposal{}, err
	}
	if count >= limit {
		return model.Proposal{}, usecase_proposal.ErrProposalCapReached
	}

	query = `
		INSERT INTO proposals (room_code, user_id, movie_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	if err := tx.GetContext(ctx, &p.ID, query, p.RoomCode, p.UserID, p.MovieID); err != nil {
		switch {
		case infra_pg_errors.IsUniqueViolation(err):
			return model.Proposal{}, usecase_proposal.ErrAlreadyProposed
		case infra_pg_errors.IsForeignKeyViolation(err):
			return model.Proposal{}, usecase_proposal.ErrResourceNotFound
		}
		return model.Proposal{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.Proposal{}, err
	}
	return p, nil
}

type proposedMovieDB struct {
	infra_postgres_movie.MovieDB
	ProposedBy pq.StringArray `db:"proposed_by"`
}

func (d *Driver) ProposedMovies(ctx context.Context, code string) ([]model.ProposedMovie, error) {
	query := `
		SELECT m.id, m.room_code, m.tmdb_id, m.title, m.poster_path, m.release_year,
			m.runtime, m.overview, m.genres,
			array_agg(pa.display_name ORDER BY p.id) AS proposed_by
		FROM movies m
		JOIN proposals p ON p.movie_id = m.id
		JOIN participants pa ON pa.room_code = p.room_code AND pa.user_id = p.user_id
		WHERE m.room_code = $1
		GROUP BY m.id
		ORDER BY MIN(p.id)
	`

	var rows []proposedMovieDB
	if err := d.db.SelectContext(ctx, &rows, query, code); err != nil {
		return nil, err
	}

	movies := make([]model.ProposedMovie, len(rows))
	for i, row := range rows {
		movies[i] = model.ProposedMovie{
			Movie:      row.MovieDB.ToDomain(),
			ProposedBy: []string(row.ProposedBy),
		}
	}
	return movies, nil
}
