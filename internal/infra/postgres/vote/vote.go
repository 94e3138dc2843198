package infra_postgres_vote

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Klaiveft/What2Watch/internal/model"
	infra_pg_errors "github.com/Klaiveft/What2Watch/internal/infra/postgres/errors"
	infra_postgres_movie "github.com/Klaiveft/What2Watch/internal/infra/postgres/movie"
	infra_postgres_room "github.com/Klaiveft/What2Watch/internal/infra/postgres/room"
	usecase_vote "github.com/Klaiveft/What2Watch/internal/usecase/vote"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Driver serves both the participant scoped vote repository and the
// resolver, which reads all votes of a room.
type Driver struct {
	db     *sqlx.DB
	movies *infra_postgres_movie.Repository
}

func New(db *sqlx.DB) *Driver {
	return &Driver{
		db:     db,
		movies: infra_postgres_movie.New(db),
	}
}

type voteDTO struct {
	ID       int64     `db:"id"`
	RoomCode string    `db:"room_code"`
	UserID   uuid.UUID `db:"user_id"`
	MovieID  int64     `db:"movie_id"`
	Vote     bool      `db:"vote"`
}

func (d *Driver) Room(ctx context.Context, code string) (model.Room, error) {
	room, err := infra_postgres_room.LoadRoom(ctx, d.db, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Room{}, usecase_vote.ErrResourceNotFound
		}
		return model.Room{}, err
	}
	return room, nil
}

// InsertVote writes the vote only when the room is voting and both the voter
// and the movie belong to it. The room row is share-locked so a vote cannot
// land after the winner commit.
func (d *Driver) InsertVote(ctx context.Context, v model.Vote) error {
	query := `
		INSERT INTO votes (room_code, user_id, movie_id, vote)
		SELECT $1, $2, $3, $4
		WHERE EXISTS (
				SELECT 1 FROM rooms
				WHERE room_code = $1 AND status = 'voting'
				FOR SHARE
			)
			AND EXISTS (SELECT 1 FROM participants WHERE room_code = $1 AND user_id = $2)
			AND EXISTS (SELECT 1 FROM movies WHERE id = $3 AND room_code = $1)
	`

	result, err := d.db.ExecContext(ctx, query, v.RoomCode, v.UserID, v.MovieID, v.Value)
	if err != nil {
		if infra_pg_errors.IsUniqueViolation(err) {
			return usecase_vote.ErrAlreadyVoted
		}
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return usecase_vote.ErrVotingClosed
	}
	return nil
}

func (d *Driver) count(ctx context.Context, query, code string) (int, error) {
	var count int
	if err := d.db.GetContext(ctx, &count, query, code); err != nil {
		return 0, err
	}
	return count, nil
}

func (d *Driver) ParticipantsCount(ctx context.Context, code string) (int, error) {
	return d.count(ctx, `SELECT COUNT(*) FROM participants WHERE room_code = $1`, code)
}

func (d *Driver) MoviesCount(ctx context.Context, code string) (int, error) {
	return d.movies.CountByRoom(ctx, code)
}

func (d *Driver) VotesCount(ctx context.Context, code string) (int, error) {
	return d.count(ctx, `SELECT COUNT(*) FROM votes WHERE room_code = $1`, code)
}

func (d *Driver) Movies(ctx context.Context, code string) ([]model.Movie, error) {
	return d.movies.LoadByRoom(ctx, code)
}

func (d *Driver) VotedMovieIDs(ctx context.Context, code string, userID uuid.UUID) ([]int64, error) {
	query := `SELECT movie_id FROM votes WHERE room_code = $1 AND user_id = $2`

	var ids []int64
	if err := d.db.SelectContext(ctx, &ids, query, code, userID); err != nil {
		return nil, err
	}
	return ids, nil
}

func (d *Driver) Votes(ctx context.Context, code string) ([]model.Vote, error) {
	query := `
		SELECT id, room_code, user_id, movie_id, vote
		FROM votes
		WHERE room_code = $1
		ORDER BY id
	`

	var rows []voteDTO
	if err := d.db.SelectContext(ctx, &rows, query, code); err != nil {
		return nil, err
	}

	votes := make([]model.Vote, len(rows))
	for i, r := range rows {
		votes[i] = model.Vote{
			ID:       r.ID,
			RoomCode: r.RoomCode,
			UserID:   r.UserID,
			MovieID:  r.MovieID,
			Value:    r.Vote,
		}
	}
	return votes, nil
}

// CommitWinner is the only writer of status done. It succeeds for exactly one
// caller per room.
func (d *Driver) CommitWinner(ctx context.Context, code string, winner *int64) (bool, error) {
	query := `
		UPDATE rooms
		SET status = 'done', winner_movie_id = $1
		WHERE room_code = $2 AND status = 'voting'
	`

	result, err := d.db.ExecContext(ctx, query, winner, code)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rowsAffected == 1, nil
}

func (d *Driver) VotingRooms(ctx context.Context) ([]string, error) {
	var codes []string
	if err := d.db.SelectContext(ctx, &codes, `SELECT room_code FROM rooms WHERE status = 'voting' ORDER BY created_at`); err != nil {
		return nil, err
	}
	return codes, nil
}
