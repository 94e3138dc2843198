package usecase_vote

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/Klaiveft/What2Watch/internal/model"
	"github.com/Klaiveft/What2Watch/internal/service/ranking"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInternal         = errors.New("internal error")
	ErrResourceNotFound = errors.New("no such resource")
	ErrVotingClosed     = errors.New("room is not accepting votes")
	ErrAlreadyVoted     = errors.New("vote already recorded")
	ErrWrongPhase       = errors.New("room is not in voting")
	ErrRoomNotDone      = errors.New("results are not available until voting is done")
	ErrNotHost          = errors.New("only the host can force completion")
)

// Repository is the participant scoped view of a room.
//
//go:generate mockery --name=Repository --output=./mocks/vote/repository --filename=repository.go
type Repository interface {
	Room(ctx context.Context, code string) (model.Room, error)
	// InsertVote stores the vote only while the room is voting and both the
	// user and the movie belong to it; otherwise ErrVotingClosed.
	// A repeated (user, movie) pair yields ErrAlreadyVoted.
	InsertVote(ctx context.Context, v model.Vote) error
	ParticipantsCount(ctx context.Context, code string) (int, error)
	MoviesCount(ctx context.Context, code string) (int, error)
	VotesCount(ctx context.Context, code string) (int, error)
	Movies(ctx context.Context, code string) ([]model.Movie, error)
	VotedMovieIDs(ctx context.Context, code string, userID uuid.UUID) ([]int64, error)
}

// Resolver reads every vote of a room regardless of who cast it and performs
// the single done transition.
//
//go:generate mockery --name=Resolver --output=./mocks/vote/resolver --filename=resolver.go
type Resolver interface {
	Room(ctx context.Context, code string) (model.Room, error)
	Movies(ctx context.Context, code string) ([]model.Movie, error)
	Votes(ctx context.Context, code string) ([]model.Vote, error)
	// CommitWinner sets status done and the winner only when the room is
	// still voting. committed is false when another writer got there first.
	CommitWinner(ctx context.Context, code string, winner *int64) (committed bool, err error)
	VotingRooms(ctx context.Context) ([]string, error)
}

//go:generate mockery --name=PosterLinker --output=./mocks/vote/poster --filename=poster.go
type PosterLinker interface {
	URL(ctx context.Context, m model.Movie) string
}

//go:generate mockery --name=CodeReleaser --output=./mocks/vote/releaser --filename=releaser.go
type CodeReleaser interface {
	Release(ctx context.Context, code string) error
}

type Usecase struct {
	repository Repository
	resolver   Resolver
	posters    PosterLinker
	codes      CodeReleaser

	tiebreaker ranking.Tiebreaker
	shuffle    func(n int, swap func(i, j int))
}

type Option func(*Usecase)

func WithTiebreaker(tb ranking.Tiebreaker) Option {
	return func(u *Usecase) {
		u.tiebreaker = tb
	}
}

func WithShuffle(shuffle func(n int, swap func(i, j int))) Option {
	return func(u *Usecase) {
		u.shuffle = shuffle
	}
}

func New(
	repository Repository,
	resolver Resolver,
	posters PosterLinker,
	codes CodeReleaser,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		repository: repository,
		resolver:   resolver,
		posters:    posters,
		codes:      codes,
		tiebreaker: ranking.RandomTiebreaker,
		shuffle:    rand.Shuffle,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Vote records one yes/no decision. A repeated vote is accepted and reported
// with alreadyVoted=true; the first value stays.
func (u *Usecase) Vote(ctx context.Context, code string, userID uuid.UUID, movieID int64, value bool) (alreadyVoted bool, err error) {
	err = u.repository.InsertVote(ctx, model.Vote{
		RoomCode: code,
		UserID:   userID,
		MovieID:  movieID,
		Value:    value,
	})
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, ErrAlreadyVoted):
		return true, nil
	case errors.Is(err, ErrVotingClosed):
		return false, ErrVotingClosed
	default:
		return false, errors.Join(ErrInternal, err)
	}
}

// Progress reports how many of the expected votes were cast.
func (u *Usecase) Progress(ctx context.Context, code string) (model.Progress, error) {
	var participants, movies, votes int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		participants, err = u.repository.ParticipantsCount(gctx, code)
		return err
	})
	g.Go(func() (err error) {
		movies, err = u.repository.MoviesCount(gctx, code)
		return err
	})
	g.Go(func() (err error) {
		votes, err = u.repository.VotesCount(gctx, code)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Progress{}, errors.Join(ErrInternal, err)
	}

	return model.Progress{Expected: participants * movies, Cast: votes}, nil
}

// CheckCompletion resolves the room once every participant voted on every
// movie. force skips the count and is reserved for the host. Any number of
// callers may run it concurrently.
func (u *Usecase) CheckCompletion(ctx context.Context, code string, userID uuid.UUID, force bool) (model.Completion, error) {
	room, err := u.room(ctx, u.repository.Room, code)
	if err != nil {
		return model.Completion{}, err
	}
	if force && !room.IsHost(userID) {
		return model.Completion{}, ErrNotHost
	}
	return u.checkCompletion(ctx, room, force)
}

func (u *Usecase) checkCompletion(ctx context.Context, room model.Room, force bool) (model.Completion, error) {
	progress, err := u.Progress(ctx, room.Code)
	if err != nil {
		return model.Completion{}, err
	}

	switch room.Status {
	case model.StatusDone:
		return model.Completion{Complete: true, Progress: progress, WinnerMovieID: room.WinnerMovieID}, nil
	case model.StatusVoting:
	default:
		return model.Completion{}, ErrWrongPhase
	}

	if progress.Cast < progress.Expected && !force {
		return model.Completion{Progress: progress}, nil
	}

	winner, err := u.Resolve(ctx, room.Code)
	if err != nil {
		return model.Completion{}, err
	}
	return model.Completion{Complete: true, Progress: progress, WinnerMovieID: winner}, nil
}

// Resolve picks and commits the winner. Only the first commit takes effect,
// every caller gets back that committed winner.
func (u *Usecase) Resolve(ctx context.Context, code string) (*int64, error) {
	room, err := u.room(ctx, u.resolver.Room, code)
	if err != nil {
		return nil, err
	}
	switch room.Status {
	case model.StatusDone:
		return room.WinnerMovieID, nil
	case model.StatusVoting:
	default:
		return nil, ErrWrongPhase
	}

	var (
		movies []model.Movie
		votes  []model.Vote
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		movies, err = u.resolver.Movies(gctx, code)
		return err
	})
	g.Go(func() (err error) {
		votes, err = u.resolver.Votes(gctx, code)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Join(ErrInternal, err)
	}

	winner := ranking.Winner(ranking.Tally(movieIDs(movies), votes), u.tiebreaker)

	committed, err := u.resolver.CommitWinner(ctx, code, winner)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}
	if !committed {
		room, err = u.room(ctx, u.resolver.Room, code)
		if err != nil {
			return nil, err
		}
		if room.Status != model.StatusDone {
			return nil, fmt.Errorf("%w: room %s left voting without a winner", ErrInternal, code)
		}
		return room.WinnerMovieID, nil
	}

	if u.codes != nil {
		_ = u.codes.Release(ctx, code)
	}
	return winner, nil
}

// Sweep re-checks every room that is still voting. It returns the codes that
// completed during this pass.
func (u *Usecase) Sweep(ctx context.Context) ([]string, error) {
	codes, err := u.resolver.VotingRooms(ctx)
	if err != nil {
		return nil, errors.Join(ErrInternal, err)
	}

	var (
		completed []string
		errs      []error
	)
	for _, code := range codes {
		room, err := u.room(ctx, u.resolver.Room, code)
		if err != nil {
			errs = append(errs, fmt.Errorf("room %s: %w", code, err))
			continue
		}
		c, err := u.checkCompletion(ctx, room, false)
		if err != nil {
			errs = append(errs, fmt.Errorf("room %s: %w", code, err))
			continue
		}
		if c.Complete {
			completed = append(completed, code)
		}
	}
	return completed, errors.Join(errs...)
}

// Ballot lists the movies userID has not voted on yet, in random order.
func (u *Usecase) Ballot(ctx context.Context, code string, userID uuid.UUID) (model.Ballot, error) {
	room, err := u.room(ctx, u.repository.Room, code)
	if err != nil {
		return model.Ballot{}, err
	}
	if room.Status != model.StatusVoting {
		return model.Ballot{}, ErrVotingClosed
	}

	movies, err := u.repository.Movies(ctx, code)
	if err != nil {
		return model.Ballot{}, errors.Join(ErrInternal, err)
	}
	voted, err := u.repository.VotedMovieIDs(ctx, code, userID)
	if err != nil {
		return model.Ballot{}, errors.Join(ErrInternal, err)
	}

	seen := make(map[int64]struct{}, len(voted))
	for _, id := range voted {
		seen[id] = struct{}{}
	}
	pending := make([]model.Movie, 0, len(movies))
	for _, m := range movies {
		if _, ok := seen[m.ID]; !ok {
			pending = append(pending, m)
		}
	}
	u.shuffle(len(pending), func(i, j int) {
		pending[i], pending[j] = pending[j], pending[i]
	})

	progress, err := u.Progress(ctx, code)
	if err != nil {
		return model.Ballot{}, err
	}
	return model.Ballot{Pending: pending, Progress: progress}, nil
}

// Results ranks every movie of a finished room. The committed winner is first
// even when the recomputed ranking ties it with others.
func (u *Usecase) Results(ctx context.Context, code string) (model.Results, error) {
	room, err := u.room(ctx, u.resolver.Room, code)
	if err != nil {
		return model.Results{}, err
	}
	if room.Status != model.StatusDone {
		return model.Results{}, ErrRoomNotDone
	}

	var (
		movies       []model.Movie
		votes        []model.Vote
		participants int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		movies, err = u.resolver.Movies(gctx, code)
		return err
	})
	g.Go(func() (err error) {
		votes, err = u.resolver.Votes(gctx, code)
		return err
	})
	g.Go(func() (err error) {
		participants, err = u.repository.ParticipantsCount(gctx, code)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.Results{}, errors.Join(ErrInternal, err)
	}

	byID := make(map[int64]model.Movie, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}

	ranked := ranking.Rank(ranking.Tally(movieIDs(movies), votes))
	if room.WinnerMovieID != nil {
		ranked = ranking.PromoteWinner(ranked, *room.WinnerMovieID)
	}

	results := model.Results{
		RoomCode:      code,
		WinnerMovieID: room.WinnerMovieID,
		Participants:  participants,
		Movies:        make([]model.MovieResult, 0, len(ranked)),
	}
	for _, t := range ranked {
		m := byID[t.MovieID]
		var poster string
		if u.posters != nil {
			poster = u.posters.URL(ctx, m)
		}
		results.Movies = append(results.Movies, model.MovieResult{Movie: m, Tally: t, PosterURL: poster})
	}
	return results, nil
}

// Room returns the current state of the room.
func (u *Usecase) Room(ctx context.Context, code string) (model.Room, error) {
	return u.room(ctx, u.repository.Room, code)
}

func (u *Usecase) room(ctx context.Context, load func(context.Context, string) (model.Room, error), code string) (model.Room, error) {
	room, err := load(ctx, code)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return model.Room{}, ErrResourceNotFound
		}
		return model.Room{}, errors.Join(ErrInternal, err)
	}
	return room, nil
}

func movieIDs(movies []model.Movie) []int64 {
	ids := make([]int64, len(movies))
	for i, m := range movies {
		ids[i] = m.ID
	}
	return ids
}
