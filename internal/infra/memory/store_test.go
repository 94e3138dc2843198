package infra_memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Klaiveft/What2Watch/internal/model"
	usecase_proposal "github.com/Klaiveft/What2Watch/internal/usecase/proposal"
	usecase_room "github.com/Klaiveft/What2Watch/internal/usecase/room"
	usecase_vote "github.com/Klaiveft/What2Watch/internal/usecase/vote"
	"github.com/google/uuid"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MemoryStoreUnitSuite struct {
	suite.Suite
}

type recorder struct {
	mu     sync.Mutex
	events []model.Event
}

func (r *recorder) Publish(e model.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) count(table model.Table, op string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Table == table && e.Op == op {
			n++
		}
	}
	return n
}

type resources struct {
	store  *Store
	events *recorder
	ctx    context.Context
	host   uuid.UUID
	guest  uuid.UUID
}

const code = "AB12CD"

func initResources(t provider.T) *resources {
	events := &recorder{}
	r := &resources{
		store:  New(events),
		events: events,
		ctx:    context.Background(),
		host:   uuid.New(),
		guest:  uuid.New(),
	}

	err := r.store.Create(r.ctx,
		model.Room{Code: code, Status: model.StatusProposing, HostUserID: r.host},
		model.Participant{RoomCode: code, UserID: r.host, DisplayName: "Alice"},
	)
	require.NoError(t, err)
	_, _, err = r.store.UpsertParticipant(r.ctx, model.Participant{RoomCode: code, UserID: r.guest, DisplayName: "Bob"})
	require.NoError(t, err)
	return r
}

// propose inserts a movie and proposes it on behalf of userID.
func (r *resources) propose(t provider.T, userID uuid.UUID, tmdbID int64) model.Movie {
	m, err := r.store.InsertMovie(r.ctx, model.Movie{RoomCode: code, TMDBID: tmdbID, Title: "Movie"})
	require.NoError(t, err)
	_, err = r.store.InsertProposal(r.ctx, model.Proposal{RoomCode: code, UserID: userID, MovieID: m.ID}, model.MaxProposalsPerUser)
	require.NoError(t, err)
	return m
}

func (r *resources) startVoting(t provider.T) {
	require.NoError(t, r.store.Advance(r.ctx, code, model.StatusProposing, model.StatusVoting))
}

func (s *MemoryStoreUnitSuite) TestCreate(t provider.T) {
	t.Parallel()

	t.Run("Should refuse a taken code", func(t provider.T) {
		t.Parallel()
		r := initResources(t)

		err := r.store.Create(r.ctx, model.Room{Code: code, Status: model.StatusProposing}, model.Participant{RoomCode: code})

		assert.ErrorIs(t, err, usecase_room.ErrCodeConflict)
	})

	t.Run("Should store host as participant", func(t provider.T) {
		t.Parallel()
		r := initResources(t)

		ok, err := r.store.IsParticipant(r.ctx, code, r.host)

		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 1, r.events.count(model.TableRooms, model.OpInsert))
	})
}

func (s *MemoryStoreUnitSuite) TestUpsertParticipant(t provider.T) {
	t.Parallel()

	t.Run("Should update name on rejoin", func(t provider.T) {
		t.Parallel()
		r := initResources(t)

		p, created, err := r.store.UpsertParticipant(r.ctx, model.Participant{RoomCode: code, UserID: r.guest, DisplayName: "Robert"})

		assert.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "Robert", p.DisplayName)
		count, _ := r.store.ParticipantsCount(r.ctx, code)
		assert.Equal(t, 2, count)
	})

	t.Run("Should refuse joins after proposing", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.startVoting(t)

		_, _, err := r.store.UpsertParticipant(r.ctx, model.Participant{RoomCode: code, UserID: uuid.New(), DisplayName: "Carol"})

		assert.ErrorIs(t, err, usecase_room.ErrJoinClosed)
	})

	t.Run("Should report unknown room", func(t provider.T) {
		t.Parallel()
		r := initResources(t)

		_, _, err := r.store.UpsertParticipant(r.ctx, model.Participant{RoomCode: "ZZZZZZ", UserID: uuid.New(), DisplayName: "Carol"})

		assert.ErrorIs(t, err, usecase_room.ErrResourceNotFound)
	})
}

func (s *MemoryStoreUnitSuite) TestAdvance(t provider.T) {
	t.Parallel()

	t.Run("Should move forward once", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.startVoting(t)

		err := r.store.Advance(r.ctx, code, model.StatusProposing, model.StatusVoting)

		assert.ErrorIs(t, err, usecase_room.ErrWrongPhase)
	})

	t.Run("Should refuse skipping voting", func(t provider.T) {
		t.Parallel()
		r := initResources(t)

		err := r.store.Advance(r.ctx, code, model.StatusProposing, model.StatusDone)

		assert.Error(t, err)
		room, _ := r.store.ByCode(r.ctx, code)
		assert.Equal(t, model.StatusProposing, room.Status)
	})
}

func (s *MemoryStoreUnitSuite) TestInsertProposal(t provider.T) {
	t.Parallel()

	t.Run("Should hold the cap under concurrent proposals", func(t provider.T) {
		t.Parallel()
		r := initResources(t)

		const attempts = 12
		movies := make([]model.Movie, attempts)
		for i := range movies {
			m, err := r.store.InsertMovie(r.ctx, model.Movie{RoomCode: code, TMDBID: int64(100 + i)})
			require.NoError(t, err)
			movies[i] = m
		}

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
			capped   int
		)
		for _, m := range movies {
			wg.Add(1)
			go func(movieID int64) {
				defer wg.Done()
				_, err := r.store.InsertProposal(r.ctx, model.Proposal{RoomCode: code, UserID: r.guest, MovieID: movieID}, model.MaxProposalsPerUser)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					accepted++
				case errors.Is(err, usecase_proposal.ErrProposalCapReached):
					capped++
				}
			}(m.ID)
		}
		wg.Wait()

		assert.Equal(t, model.MaxProposalsPerUser, accepted)
		assert.Equal(t, attempts-model.MaxProposalsPerUser, capped)
		count, _ := r.store.CountProposals(r.ctx, code, r.guest)
		assert.Equal(t, model.MaxProposalsPerUser, count)
	})

	t.Run("Should refuse a repeated proposal", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		m := r.propose(t, r.guest, 603)

		_, err := r.store.InsertProposal(r.ctx, model.Proposal{RoomCode: code, UserID: r.guest, MovieID: m.ID}, model.MaxProposalsPerUser)

		assert.ErrorIs(t, err, usecase_proposal.ErrAlreadyProposed)
	})

	t.Run("Should refuse outsiders", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		m, err := r.store.InsertMovie(r.ctx, model.Movie{RoomCode: code, TMDBID: 603})
		require.NoError(t, err)

		_, err = r.store.InsertProposal(r.ctx, model.Proposal{RoomCode: code, UserID: uuid.New(), MovieID: m.ID}, model.MaxProposalsPerUser)

		assert.ErrorIs(t, err, usecase_proposal.ErrNotParticipant)
	})

	t.Run("Should refuse after voting started", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		m := r.propose(t, r.host, 603)
		r.startVoting(t)

		_, err := r.store.InsertProposal(r.ctx, model.Proposal{RoomCode: code, UserID: r.guest, MovieID: m.ID}, model.MaxProposalsPerUser)

		assert.ErrorIs(t, err, usecase_proposal.ErrWrongPhase)
	})
}

func (s *MemoryStoreUnitSuite) TestMovies(t provider.T) {
	t.Parallel()

	t.Run("Should keep one row per tmdb id", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.propose(t, r.host, 603)

		_, err := r.store.InsertMovie(r.ctx, model.Movie{RoomCode: code, TMDBID: 603})

		assert.ErrorIs(t, err, usecase_proposal.ErrMovieExists)
	})

	t.Run("Should delete only unproposed movies", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		proposed := r.propose(t, r.host, 603)
		orphan, err := r.store.InsertMovie(r.ctx, model.Movie{RoomCode: code, TMDBID: 604})
		require.NoError(t, err)

		require.NoError(t, r.store.DeleteOrphanMovie(r.ctx, code, proposed.ID))
		require.NoError(t, r.store.DeleteOrphanMovie(r.ctx, code, orphan.ID))

		movies, _ := r.store.Movies(r.ctx, code)
		if assert.Len(t, movies, 1) {
			assert.Equal(t, proposed.ID, movies[0].ID)
		}
	})

	t.Run("Should group proposers by movie", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		m := r.propose(t, r.host, 603)
		_, err := r.store.InsertProposal(r.ctx, model.Proposal{RoomCode: code, UserID: r.guest, MovieID: m.ID}, model.MaxProposalsPerUser)
		require.NoError(t, err)

		proposed, err := r.store.ProposedMovies(r.ctx, code)

		assert.NoError(t, err)
		if assert.Len(t, proposed, 1) {
			assert.Equal(t, []string{"Alice", "Bob"}, proposed[0].ProposedBy)
		}
	})
}

func (s *MemoryStoreUnitSuite) TestInsertVote(t provider.T) {
	t.Parallel()

	t.Run("Should refuse votes while proposing", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		m := r.propose(t, r.host, 603)

		err := r.store.InsertVote(r.ctx, model.Vote{RoomCode: code, UserID: r.host, MovieID: m.ID, Value: true})

		assert.ErrorIs(t, err, usecase_vote.ErrVotingClosed)
	})

	t.Run("Should refuse movies of other rooms", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.propose(t, r.host, 603)
		r.startVoting(t)

		err := r.store.InsertVote(r.ctx, model.Vote{RoomCode: code, UserID: r.host, MovieID: 9999, Value: true})

		assert.ErrorIs(t, err, usecase_vote.ErrVotingClosed)
	})

	t.Run("Should keep the first value", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		m := r.propose(t, r.host, 603)
		r.startVoting(t)

		require.NoError(t, r.store.InsertVote(r.ctx, model.Vote{RoomCode: code, UserID: r.host, MovieID: m.ID, Value: true}))
		err := r.store.InsertVote(r.ctx, model.Vote{RoomCode: code, UserID: r.host, MovieID: m.ID, Value: false})

		assert.ErrorIs(t, err, usecase_vote.ErrAlreadyVoted)
		votes, _ := r.store.Votes(r.ctx, code)
		if assert.Len(t, votes, 1) {
			assert.True(t, votes[0].Value)
		}
	})
}

func (s *MemoryStoreUnitSuite) TestCommitWinner(t provider.T) {
	t.Parallel()

	t.Run("Should commit a single winner under concurrent resolvers", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		first := r.propose(t, r.host, 603)
		second := r.propose(t, r.guest, 604)
		r.startVoting(t)
		for _, user := range []uuid.UUID{r.host, r.guest} {
			for _, m := range []model.Movie{first, second} {
				require.NoError(t, r.store.InsertVote(r.ctx, model.Vote{RoomCode: code, UserID: user, MovieID: m.ID, Value: true}))
			}
		}

		uc := usecase_vote.New(r.store, r.store, nil, nil)

		const resolvers = 16
		winners := make([]*int64, resolvers)
		errs := make([]error, resolvers)
		var wg sync.WaitGroup
		for i := range resolvers {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				winners[i], errs[i] = uc.Resolve(r.ctx, code)
			}(i)
		}
		wg.Wait()

		room, err := r.store.Room(r.ctx, code)
		require.NoError(t, err)
		require.NotNil(t, room.WinnerMovieID)
		assert.Equal(t, model.StatusDone, room.Status)
		for i := range resolvers {
			assert.NoError(t, errs[i])
			if assert.NotNil(t, winners[i]) {
				assert.Equal(t, *room.WinnerMovieID, *winners[i])
			}
		}
		assert.Equal(t, 2, r.events.count(model.TableRooms, model.OpUpdate))
	})

	t.Run("Should refuse rooms that are not voting", func(t provider.T) {
		t.Parallel()
		r := initResources(t)

		committed, err := r.store.CommitWinner(r.ctx, code, nil)

		assert.NoError(t, err)
		assert.False(t, committed)
	})
}

func (s *MemoryStoreUnitSuite) TestVotingRooms(t provider.T) {
	t.Parallel()

	r := initResources(t)
	require.NoError(t, r.store.Create(r.ctx,
		model.Room{Code: "ZZ99ZZ", Status: model.StatusProposing, HostUserID: r.host},
		model.Participant{RoomCode: "ZZ99ZZ", UserID: r.host, DisplayName: "Alice"},
	))
	r.startVoting(t)

	codes, err := r.store.VotingRooms(r.ctx)

	assert.NoError(t, err)
	assert.Equal(t, []string{code}, codes)
}

func TestMemoryStoreUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(MemoryStoreUnitSuite))
}
