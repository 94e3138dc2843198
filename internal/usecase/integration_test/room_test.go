package integrationtest

import (
	"context"
	"sync"
	"testing"
	"time"

	infra_memory "github.com/Klaiveft/What2Watch/internal/infra/memory"
	infra_pg_init "github.com/Klaiveft/What2Watch/internal/infra/postgres/init"
	infra_postgres_proposal "github.com/Klaiveft/What2Watch/internal/infra/postgres/proposal"
	infra_postgres_room "github.com/Klaiveft/What2Watch/internal/infra/postgres/room"
	infra_postgres_vote "github.com/Klaiveft/What2Watch/internal/infra/postgres/vote"
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

type UsecaseRoomIntegrationSuite struct {
	suite.Suite

	rooms     *usecase_room.Usecase
	proposals *usecase_proposal.Usecase
	votes     *usecase_vote.Usecase
}

type catalogue struct{}

func (catalogue) Details(_ context.Context, tmdbID int64) *model.MovieDetails {
	return &model.MovieDetails{TMDBID: tmdbID, Title: "Movie", ReleaseDate: "2001-01-01", Genres: []string{"Drama"}}
}

type noMirror struct{}

func (noMirror) Mirror(context.Context, model.Movie) error { return nil }

func (s *UsecaseRoomIntegrationSuite) BeforeAll(t provider.T) {
	cfg, err := getConfig()
	require.NoError(t, err)

	pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)
	infra_pg_init.MustMigrate(pgConn)

	votes := infra_postgres_vote.New(pgConn)
	s.rooms = usecase_room.New(infra_postgres_room.New(pgConn), infra_memory.NewCodes(time.Hour))
	s.proposals = usecase_proposal.New(infra_postgres_proposal.New(pgConn), catalogue{}, noMirror{})
	s.votes = usecase_vote.New(votes, votes, nil, nil)
}

func (s *UsecaseRoomIntegrationSuite) TestIntegrationProposalCap(t provider.T) {
	ctx := context.Background()
	host := uuid.New()

	code, err := s.rooms.Create(ctx, host, "Host")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(tmdbID int64) {
			defer wg.Done()
			_, err := s.proposals.Propose(ctx, code, host, tmdbID)
			results <- err
		}(int64(1000 + i))
	}
	wg.Wait()
	close(results)

	accepted := 0
	for err := range results {
		if err == nil {
			accepted++
			continue
		}
		assert.ErrorIs(t, err, usecase_proposal.ErrProposalCapReached)
	}
	assert.Equal(t, model.MaxProposalsPerUser, accepted)
}

func (s *UsecaseRoomIntegrationSuite) TestIntegrationSingleWinner(t provider.T) {
	ctx := context.Background()
	host, guest := uuid.New(), uuid.New()

	code, err := s.rooms.Create(ctx, host, "Host")
	require.NoError(t, err)
	_, _, err = s.rooms.Join(ctx, code, guest, "Guest")
	require.NoError(t, err)

	x, err := s.proposals.Propose(ctx, code, host, 2001)
	require.NoError(t, err)
	y, err := s.proposals.Propose(ctx, code, guest, 2002)
	require.NoError(t, err)

	require.NoError(t, s.rooms.StartVoting(ctx, code, host))
	assert.ErrorIs(t, s.rooms.StartVoting(ctx, code, host), usecase_room.ErrWrongPhase)

	// X(2/0) Y(2/0): a tie
	for _, user := range []uuid.UUID{host, guest} {
		for _, movie := range []int64{x.ID, y.ID} {
			already, err := s.votes.Vote(ctx, code, user, movie, true)
			require.NoError(t, err)
			assert.False(t, already)
		}
	}

	var wg sync.WaitGroup
	winners := make(chan *int64, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := s.votes.CheckCompletion(ctx, code, host, false)
			if assert.NoError(t, err) {
				winners <- c.WinnerMovieID
			}
		}()
	}
	wg.Wait()
	close(winners)

	var first *int64
	for w := range winners {
		require.NotNil(t, w)
		if first == nil {
			first = w
		}
		assert.Equal(t, *first, *w)
	}

	room, err := s.votes.Room(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, model.StatusDone, room.Status)
	assert.Equal(t, *first, *room.WinnerMovieID)

	_, err = s.votes.Vote(ctx, code, host, x.ID, false)
	assert.ErrorIs(t, err, usecase_vote.ErrVotingClosed)
}

func TestRoomIntegrationSuite(t *testing.T) {
	if !integrationEnabled() {
		t.Skip("set W2W_INTEGRATION to run against Postgres")
	}
	suite.RunSuite(t, new(UsecaseRoomIntegrationSuite))
}
