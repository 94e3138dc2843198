package usecase_proposal

import (
	"context"
	"errors"
	"fmt"

	"github.com/Klaiveft/What2Watch/internal/model"
	"github.com/google/uuid"
)

var (
	ErrInternal           = errors.New("internal error")
	ErrInvalidInput       = errors.New("invalid input")
	ErrResourceNotFound   = errors.New("no such resource")
	ErrNotParticipant     = errors.New("not a participant of this room")
	ErrWrongPhase         = errors.New("room is no longer accepting proposals")
	ErrProposalCapReached = errors.New("you can only propose up to 3 movies")
	ErrAlreadyProposed    = errors.New("you already proposed this movie")
	ErrDetailsUnavailable = errors.New("could not fetch movie details")
	ErrMovieExists        = errors.New("movie already exists in room")
)

//go:generate mockery --name=Repository --output=./mocks/proposal/repository --filename=repository.go
type Repository interface {
	RoomStatus(ctx context.Context, code string) (model.Status, error)
	CountProposals(ctx context.Context, code string, userID uuid.UUID) (int, error)
	// FindMovie returns ErrResourceNotFound when the room has no such movie.
	FindMovie(ctx context.Context, code string, tmdbID int64) (model.Movie, error)
	// InsertMovie returns ErrMovieExists on a (room, tmdb id) unique violation
	// and ErrWrongPhase when the room stopped collecting proposals.
	InsertMovie(ctx context.Context, m model.Movie) (model.Movie, error)
	// DeleteOrphanMovie removes a movie that nobody proposed while the room is
	// still proposing. It is a no-op otherwise.
	DeleteOrphanMovie(ctx context.Context, code string, movieID int64) error
	// InsertProposal recounts the user's proposals under a lock and inserts
	// only when the count is below limit.
	InsertProposal(ctx context.Context, p model.Proposal, limit int) (model.Proposal, error)
	ProposedMovies(ctx context.Context, code string) ([]model.ProposedMovie, error)
}

//go:generate mockery --name=DetailsProvider --output=./mocks/proposal/details --filename=details.go
type DetailsProvider interface {
	// Details returns nil when the metadata could not be fetched.
	Details(ctx context.Context, tmdbID int64) *model.MovieDetails
}

//go:generate mockery --name=PosterMirror --output=./mocks/proposal/mirror --filename=mirror.go
type PosterMirror interface {
	Mirror(ctx context.Context, m model.Movie) error
}

type Usecase struct {
	repository Repository
	details    DetailsProvider
	mirror     PosterMirror

	lookupAttempts int
}

func New(
	repository Repository,
	details DetailsProvider,
	mirror PosterMirror,
) *Usecase {
	return &Usecase{
		repository:     repository,
		details:        details,
		mirror:         mirror,
		lookupAttempts: 3,
	}
}

// Propose records that userID wants to watch tmdbID in the room.
// The fast checks here only give early feedback, the repository enforces the
// cap and uniqueness again atomically.
func (u *Usecase) Propose(ctx context.Context, code string, userID uuid.UUID, tmdbID int64) (model.Movie, error) {
	if tmdbID <= 0 {
		return model.Movie{}, fmt.Errorf("%w: tmdb id must be positive", ErrInvalidInput)
	}

	status, err := u.repository.RoomStatus(ctx, code)
	if err != nil {
		return model.Movie{}, translate(err)
	}
	if status != model.StatusProposing {
		return model.Movie{}, ErrWrongPhase
	}

	count, err := u.repository.CountProposals(ctx, code, userID)
	if err != nil {
		return model.Movie{}, translate(err)
	}
	if count >= model.MaxProposalsPerUser {
		return model.Movie{}, ErrProposalCapReached
	}

	movie, created, err := u.resolveMovie(ctx, code, tmdbID)
	if err != nil {
		return model.Movie{}, err
	}

	_, err = u.repository.InsertProposal(ctx, model.Proposal{
		RoomCode: code,
		UserID:   userID,
		MovieID:  movie.ID,
	}, model.MaxProposalsPerUser)
	if err != nil {
		if created {
			// Best effort; a leftover row would inflate the expected vote count.
			_ = u.repository.DeleteOrphanMovie(ctx, code, movie.ID)
		}
		return model.Movie{}, translate(err)
	}

	if created && u.mirror != nil && movie.PosterPath != "" {
		go func() {
			_ = u.mirror.Mirror(context.WithoutCancel(ctx), movie)
		}()
	}

	return movie, nil
}

// resolveMovie returns the room's movie row for tmdbID, creating it when
// absent. Concurrent creators collapse onto one row via the unique key.
func (u *Usecase) resolveMovie(ctx context.Context, code string, tmdbID int64) (model.Movie, bool, error) {
	for range u.lookupAttempts {
		movie, err := u.repository.FindMovie(ctx, code, tmdbID)
		if err == nil {
			return movie, false, nil
		}
		if !errors.Is(err, ErrResourceNotFound) {
			return model.Movie{}, false, translate(err)
		}

		details := u.details.Details(ctx, tmdbID)
		if details == nil {
			return model.Movie{}, false, ErrDetailsUnavailable
		}

		movie, err = u.repository.InsertMovie(ctx, details.ToMovie(code))
		if err == nil {
			return movie, true, nil
		}
		if !errors.Is(err, ErrMovieExists) {
			return model.Movie{}, false, translate(err)
		}
	}
	return model.Movie{}, false, fmt.Errorf("%w: movie %d kept conflicting", ErrInternal, tmdbID)
}

// ProposedMovies lists the room's candidates with the names of their proposers.
func (u *Usecase) ProposedMovies(ctx context.Context, code string) ([]model.ProposedMovie, error) {
	movies, err := u.repository.ProposedMovies(ctx, code)
	if err != nil {
		return nil, translate(err)
	}
	return movies, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, ErrResourceNotFound),
		errors.Is(err, ErrNotParticipant),
		errors.Is(err, ErrWrongPhase),
		errors.Is(err, ErrProposalCapReached),
		errors.Is(err, ErrAlreadyProposed):
		return err
	default:
		return errors.Join(ErrInternal, err)
	}
}
