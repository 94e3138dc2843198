package infra_postgres_room

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Klaiveft/What2Watch/internal/model"
	infra_pg_errors "github.com/Klaiveft/What2Watch/internal/infra/postgres/errors"
	usecase_room "github.com/Klaiveft/What2Watch/internal/usecase/room"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Driver struct {
	db *sqlx.DB
}

func New(
	db *sqlx.DB,
) *Driver {
	return &Driver{db: db}
}

type roomDTO struct {
	Code          string    `db:"room_code"`
	Status        string    `db:"status"`
	HostUserID    uuid.UUID `db:"host_user_id"`
	WinnerMovieID *int64    `db:"winner_movie_id"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r roomDTO) toDomain() model.Room {
	return model.Room{
		Code:          r.Code,
		Status:        model.Status(r.Status),
		HostUserID:    r.HostUserID,
		WinnerMovieID: r.WinnerMovieID,
		CreatedAt:     r.CreatedAt,
	}
}

type participantDTO struct {
	ID          int64     `db:"id"`
	RoomCode    string    `db:"room_code"`
	UserID      uuid.UUID `db:"user_id"`
	DisplayName string    `db:"display_name"`
}

func (p participantDTO) toDomain() model.Participant {
	return model.Participant{
		ID:          p.ID,
		RoomCode:    p.RoomCode,
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
	}
}

// LoadRoom is shared by the drivers that need the room row.
func LoadRoom(ctx context.Context, db sqlx.QueryerContext, code string) (model.Room, error) {
	query := `
		SELECT room_code, status, host_user_id, winner_movie_id, created_at
		FROM rooms
		WHERE room_code = $1
	`

	var room roomDTO
	if err := sqlx.GetContext(ctx, db, &room, query, code); err != nil {
		return model.Room{}, err
	}
	return room.toDomain(), nil
}

func (d *Driver) Create(ctx context.Context, room model.Room, host model.Participant) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `
		INSERT INTO rooms (room_code, status, host_user_id)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.ExecContext(ctx, query, room.Code, string(room.Status), room.HostUserID); err != nil {
		if infra_pg_errors.IsUniqueViolation(err) {
			return usecase_room.ErrCodeConflict
		}
		return err
	}

	query = `
		INSERT INTO participants (room_code, user_id, display_name)
		VALUES ($1, $2, $3)
	`
	if _, err := tx.ExecContext(ctx, query, host.RoomCode, host.UserID, host.DisplayName); err != nil {
		return err
	}

	return tx.Commit()
}

func (d *Driver) ByCode(ctx context.Context, code string) (model.Room, error) {
	room, err := LoadRoom(ctx, d.db, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Room{}, usecase_room.ErrResourceNotFound
		}
		return model.Room{}, err
	}
	return room, nil
}

func (d *Driver) Participants(ctx context.Context, code string) ([]model.Participant, error) {
	query := `
		SELECT id, room_code, user_id, display_name
		FROM participants
		WHERE room_code = $1
		ORDER BY id
	`

	var rows []participantDTO
	if err := d.db.SelectContext(ctx, &rows, query, code); err != nil {
		return nil, err
	}

	participants := make([]model.Participant, len(rows))
	for i, p := range rows {
		participants[i] = p.toDomain()
	}
	return participants, nil
}

func (d *Driver) IsParticipant(ctx context.Context, code string, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM participants WHERE room_code = $1 AND user_id = $2)`

	var exists bool
	if err := d.db.GetContext(ctx, &exists, query, code, userID); err != nil {
		return false, err
	}
	return exists, nil
}

// UpsertParticipant joins the room only while it is proposing. A second join
// by the same user refreshes the display name.
func (d *Driver) UpsertParticipant(ctx context.Context, p model.Participant) (model.Participant, bool, error) {
	query := `
		INSERT INTO participants (room_code, user_id, display_name)
		SELECT $1, $2, $3
		WHERE EXISTS (
			SELECT 1 FROM rooms
			WHERE room_code = $1 AND status = 'proposing'
			FOR SHARE
		)
		ON CONFLICT (room_code, user_id) DO UPDATE SET display_name = EXCLUDED.display_name
		RETURNING id, room_code, user_id, display_name, (xmax = 0) AS inserted
	`

	var row struct {
		participantDTO
		Inserted bool `db:"inserted"`
	}
	err := d.db.GetContext(ctx, &row, query, p.RoomCode, p.UserID, p.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return model.Participant{}, false, usecase_room.ErrJoinClosed
		case infra_pg_errors.IsForeignKeyViolation(err):
			return model.Participant{}, false, usecase_room.ErrResourceNotFound
		}
		return model.Participant{}, false, err
	}
	return row.participantDTO.toDomain(), row.Inserted, nil
}

func (d *Driver) ParticipantsCount(ctx context.Context, code string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM participants WHERE room_code = $1`

	if err := d.db.GetContext(ctx, &count, query, code); err != nil {
		return 0, err
	}
	return count, nil
}

func (d *Driver) MoviesCount(ctx context.Context, code string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM movies WHERE room_code = $1`

	if err := d.db.GetContext(ctx, &count, query, code); err != nil {
		return 0, err
	}
	return count, nil
}

func (d *Driver) Advance(ctx context.Context, code string, from, to model.Status) error {
	if !model.CanAdvance(from, to) {
		return fmt.Errorf("illegal transition %s -> %s", from, to)
	}

	query := `
		UPDATE rooms
		SET status = $1
		WHERE room_code = $2 AND status = $3
	`

	result, err := d.db.ExecContext(ctx, query, string(to), code, string(from))
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return usecase_room.ErrWrongPhase
	}

	return nil
}
