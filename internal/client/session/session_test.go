package client_session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	client_api "github.com/Klaiveft/What2Watch/internal/client/api"
	"github.com/Klaiveft/What2Watch/internal/client/session/mocks/backend"
	http_room "github.com/Klaiveft/What2Watch/internal/delivery/http/room"
	"github.com/Klaiveft/What2Watch/internal/model"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type ClientSessionUnitSuite struct {
	suite.Suite
}

const code = "AB12CD"

type recorder struct {
	mu     sync.Mutex
	routes []Screen
	errs   []error
}

func (r *recorder) route(s Screen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, s)
}

func (r *recorder) err(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func (r *recorder) snapshot() ([]Screen, []error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Screen(nil), r.routes...), append([]error(nil), r.errs...)
}

func lobby(status model.Status) http_room.LobbyResponseDTO {
	return http_room.LobbyResponseDTO{RoomCode: code, Status: string(status)}
}

func stream(ch chan model.Event) <-chan model.Event {
	return ch
}

func (s *ClientSessionUnitSuite) TestScreenFor(t provider.T) {
	t.Parallel()

	assert.Equal(t, ScreenLobby, ScreenFor(model.StatusProposing))
	assert.Equal(t, ScreenVote, ScreenFor(model.StatusVoting))
	assert.Equal(t, ScreenResults, ScreenFor(model.StatusDone))
}

func (s *ClientSessionUnitSuite) TestRunRoutesOncePerScreen(t provider.T) {
	t.Parallel()

	events := make(chan model.Event)
	b := mocks.NewBackend(t)
	b.On("Events", mock.Anything, code).Return(stream(events), nil).Once()
	b.On("Room", mock.Anything, code).Return(lobby(model.StatusProposing), nil).Twice()
	b.On("Room", mock.Anything, code).Return(lobby(model.StatusVoting), nil).Twice()
	b.On("Room", mock.Anything, code).Return(lobby(model.StatusDone), nil).Once()

	rec := &recorder{}
	session := New(b, code, WithOnRoute(rec.route), WithOnError(rec.err))

	done := make(chan error, 1)
	go func() {
		done <- session.Run(context.Background())
	}()

	// every event is a bare trigger, duplicates included
	for i := 0; i < 4; i++ {
		events <- model.Event{Table: model.TableRooms, RoomCode: code, Op: model.OpUpdate}
	}
	close(events)

	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStreamClosed)
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not stop")
	}

	routes, errs := rec.snapshot()
	assert.Equal(t, []Screen{ScreenLobby, ScreenVote, ScreenResults}, routes)
	assert.Empty(t, errs)
	assert.Equal(t, ScreenResults, session.Screen())
	assert.Equal(t, string(model.StatusDone), session.Room().Status)
}

func (s *ClientSessionUnitSuite) TestRunSendsOutsidersToJoin(t provider.T) {
	t.Parallel()

	forbidden := &client_api.Error{Status: 403, Message: "not a participant", Redirect: "/join?code=" + code}

	testCases := []struct {
		name       string
		setupMocks func(b *mocks.Backend, events chan model.Event)
	}{
		{
			name: "Should route to join when the stream is refused",
			setupMocks: func(b *mocks.Backend, _ chan model.Event) {
				b.On("Events", mock.Anything, code).Return(nil, forbidden).Once()
			},
		},
		{
			name: "Should route to join when the room read is refused",
			setupMocks: func(b *mocks.Backend, events chan model.Event) {
				close(events)
				b.On("Events", mock.Anything, code).Return(stream(events), nil).Once()
				b.On("Room", mock.Anything, code).Return(http_room.LobbyResponseDTO{}, forbidden).Once()
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			events := make(chan model.Event)
			b := mocks.NewBackend(t)
			tc.setupMocks(b, events)

			rec := &recorder{}
			err := New(b, code, WithOnRoute(rec.route), WithOnError(rec.err)).Run(context.Background())

			assert.Error(t, err)
			routes, errs := rec.snapshot()
			assert.Equal(t, []Screen{ScreenJoin}, routes)
			assert.Empty(t, errs)
		})
	}
}

func (s *ClientSessionUnitSuite) TestRefreshReportsFailures(t provider.T) {
	t.Parallel()

	b := mocks.NewBackend(t)
	b.On("Room", mock.Anything, code).Return(lobby(model.StatusVoting), nil).Once()
	b.On("Room", mock.Anything, code).Return(http_room.LobbyResponseDTO{}, errors.New("connection reset")).Once()

	rec := &recorder{}
	session := New(b, code, WithOnRoute(rec.route), WithOnError(rec.err))

	session.Refresh(context.Background())
	session.Refresh(context.Background())

	routes, errs := rec.snapshot()
	assert.Equal(t, []Screen{ScreenVote}, routes)
	require.Len(t, errs, 1)
	assert.Equal(t, ScreenVote, session.Screen())
}

func (s *ClientSessionUnitSuite) TestRunStopsOnCancel(t provider.T) {
	t.Parallel()

	events := make(chan model.Event)
	b := mocks.NewBackend(t)
	b.On("Events", mock.Anything, code).Return(stream(events), nil).Once()
	b.On("Room", mock.Anything, code).Return(lobby(model.StatusProposing), nil).Once()

	ctx, cancel := context.WithCancel(context.Background())
	routed := make(chan Screen, 1)
	session := New(b, code, WithOnRoute(func(s Screen) { routed <- s }))

	done := make(chan error, 1)
	go func() {
		done <- session.Run(ctx)
	}()

	assert.Equal(t, ScreenLobby, <-routed)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not stop")
	}
}

func TestClientSessionUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(ClientSessionUnitSuite))
}
