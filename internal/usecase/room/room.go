package usecase_room

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"unicode/utf8"

	"github.com/Klaiveft/What2Watch/internal/model"
	"github.com/google/uuid"
)

var (
	ErrCodeConflict          = errors.New("code conflict")
	ErrRoomsUnavailable      = errors.New("no available room codes")
	ErrInternal              = errors.New("internal error")
	ErrResourceNotFound      = errors.New("no such resource")
	ErrInvalidDisplayName    = errors.New("display name must be 1 to 20 characters")
	ErrInvalidRoomCode       = errors.New("room code must be 6 letters or digits")
	ErrNotParticipant        = errors.New("not a participant of this room")
	ErrNotHost               = errors.New("only the host can do this")
	ErrJoinClosed            = errors.New("room is no longer accepting participants")
	ErrWrongPhase            = errors.New("room is in a different phase")
	ErrNotEnoughParticipants = errors.New("you need at least 2 participants to start voting")
	ErrNotEnoughMovies       = errors.New("you need at least 2 proposed movies to start voting")
)

//go:generate mockery --name=RoomRepository --output=./mocks/room/repository --filename=repository.go
type RoomRepository interface {
	// Create stores the room and its host participant together.
	Create(ctx context.Context, room model.Room, host model.Participant) error
	ByCode(ctx context.Context, code string) (model.Room, error)
	Participants(ctx context.Context, code string) ([]model.Participant, error)
	IsParticipant(ctx context.Context, code string, userID uuid.UUID) (bool, error)
	// UpsertParticipant reports created=false when the user was already in the room.
	UpsertParticipant(ctx context.Context, p model.Participant) (participant model.Participant, created bool, err error)
	ParticipantsCount(ctx context.Context, code string) (int, error)
	MoviesCount(ctx context.Context, code string) (int, error)
	// Advance moves the room from -> to and fails with ErrWrongPhase when the
	// room is not in from anymore.
	Advance(ctx context.Context, code string, from, to model.Status) error
}

//go:generate mockery --name=CodeRegistry --output=./mocks/room/registry --filename=registry.go
type CodeRegistry interface {
	Reserve(ctx context.Context, code string) (bool, error)
}

type Usecase struct {
	RoomRepository RoomRepository
	CodeRegistry   CodeRegistry

	codeAttempts int
}

func New(
	RoomRepository RoomRepository,
	CodeRegistry CodeRegistry,
) *Usecase {
	return &Usecase{
		RoomRepository: RoomRepository,
		CodeRegistry:   CodeRegistry,
		codeAttempts:   3,
	}
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NormalizeCode upper-cases a user supplied room code and validates it.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != model.RoomCodeLen {
		return "", ErrInvalidRoomCode
	}
	for i := 0; i < len(code); i++ {
		if strings.IndexByte(codeAlphabet, code[i]) < 0 {
			return "", ErrInvalidRoomCode
		}
	}
	return code, nil
}

func normalizeDisplayName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > model.MaxDisplayNameLen {
		return "", ErrInvalidDisplayName
	}
	return name, nil
}

// Create opens a new room in the proposing phase with the caller as host.
func (u *Usecase) Create(ctx context.Context, userID uuid.UUID, displayName string) (string, error) {
	name, err := normalizeDisplayName(displayName)
	if err != nil {
		return "", err
	}

	// Assuming that codes can conflict.
	// Retrying...
	for range u.codeAttempts {
		code := u.buildRoomCode()
		if !u.reserve(ctx, code) {
			continue
		}

		err := u.RoomRepository.Create(ctx, model.Room{
			Code:       code,
			Status:     model.StatusProposing,
			HostUserID: userID,
		}, model.Participant{
			RoomCode:    code,
			UserID:      userID,
			DisplayName: name,
		})
		if err == nil {
			return code, nil
		}
		if !errors.Is(err, ErrCodeConflict) {
			return "", errors.Join(ErrInternal, err)
		}
	}
	return "", ErrRoomsUnavailable
}

// reserve consults the registry of live codes. The rooms primary key is the
// final arbiter, so a registry failure does not block creation.
func (u *Usecase) reserve(ctx context.Context, code string) bool {
	if u.CodeRegistry == nil {
		return true
	}
	ok, err := u.CodeRegistry.Reserve(ctx, code)
	if err != nil {
		return true
	}
	return ok
}

func (u *Usecase) buildRoomCode() string {
	var builder strings.Builder
	builder.Grow(model.RoomCodeLen)

	for range model.RoomCodeLen {
		builder.WriteByte(codeAlphabet[rand.Intn(len(codeAlphabet))])
	}

	return builder.String()
}

// Join adds the caller to a room that is still collecting proposals.
// Joining twice only refreshes the display name; joined is false then.
func (u *Usecase) Join(ctx context.Context, code string, userID uuid.UUID, displayName string) (p model.Participant, joined bool, err error) {
	code, err = NormalizeCode(code)
	if err != nil {
		return model.Participant{}, false, err
	}
	name, err := normalizeDisplayName(displayName)
	if err != nil {
		return model.Participant{}, false, err
	}

	room, err := u.room(ctx, code)
	if err != nil {
		return model.Participant{}, false, err
	}
	if room.Status != model.StatusProposing {
		return model.Participant{}, false, ErrJoinClosed
	}

	p, joined, err = u.RoomRepository.UpsertParticipant(ctx, model.Participant{
		RoomCode:    code,
		UserID:      userID,
		DisplayName: name,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrResourceNotFound):
			return model.Participant{}, false, ErrResourceNotFound
		case errors.Is(err, ErrJoinClosed):
			return model.Participant{}, false, ErrJoinClosed
		}
		return model.Participant{}, false, errors.Join(ErrInternal, err)
	}
	return p, joined, nil
}

// Membership returns the room when userID takes part in it.
func (u *Usecase) Membership(ctx context.Context, code string, userID uuid.UUID) (model.Room, error) {
	code, err := NormalizeCode(code)
	if err != nil {
		return model.Room{}, err
	}

	room, err := u.room(ctx, code)
	if err != nil {
		return model.Room{}, err
	}

	isParticipant, err := u.RoomRepository.IsParticipant(ctx, code, userID)
	if err != nil {
		return model.Room{}, errors.Join(ErrInternal, err)
	}
	if !isParticipant {
		return model.Room{}, ErrNotParticipant
	}
	return room, nil
}

// Lobby returns the room together with everyone in it.
func (u *Usecase) Lobby(ctx context.Context, code string, userID uuid.UUID) (model.Lobby, error) {
	room, err := u.Membership(ctx, code, userID)
	if err != nil {
		return model.Lobby{}, err
	}

	participants, err := u.RoomRepository.Participants(ctx, room.Code)
	if err != nil {
		return model.Lobby{}, errors.Join(ErrInternal, err)
	}
	return model.Lobby{Room: room, Participants: participants}, nil
}

// StartVoting closes proposals. Only the host may call it, and only when the
// room has enough people and candidates; a failed guard writes nothing.
func (u *Usecase) StartVoting(ctx context.Context, code string, userID uuid.UUID) error {
	room, err := u.Membership(ctx, code, userID)
	if err != nil {
		return err
	}
	if !room.IsHost(userID) {
		return ErrNotHost
	}
	if room.Status != model.StatusProposing {
		return ErrWrongPhase
	}

	participants, err := u.RoomRepository.ParticipantsCount(ctx, room.Code)
	if err != nil {
		return errors.Join(ErrInternal, err)
	}
	if participants < model.MinParticipantsToVote {
		return ErrNotEnoughParticipants
	}

	movies, err := u.RoomRepository.MoviesCount(ctx, room.Code)
	if err != nil {
		return errors.Join(ErrInternal, err)
	}
	if movies < model.MinMoviesToVote {
		return ErrNotEnoughMovies
	}

	if err := u.RoomRepository.Advance(ctx, room.Code, model.StatusProposing, model.StatusVoting); err != nil {
		if errors.Is(err, ErrWrongPhase) {
			return ErrWrongPhase
		}
		return errors.Join(ErrInternal, err)
	}
	return nil
}

func (u *Usecase) room(ctx context.Context, code string) (model.Room, error) {
	room, err := u.RoomRepository.ByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return model.Room{}, ErrResourceNotFound
		}
		return model.Room{}, errors.Join(ErrInternal, err)
	}
	return room, nil
}
