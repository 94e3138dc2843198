package client_session

import (
	"context"
	"errors"
	"net/http"
	"sync"

	client_api "github.com/Klaiveft/What2Watch/internal/client/api"
	http_room "github.com/Klaiveft/What2Watch/internal/delivery/http/room"
	"github.com/Klaiveft/What2Watch/internal/model"
)

var ErrStreamClosed = errors.New("room event stream closed")

type Screen string

const (
	ScreenJoin    Screen = "join"
	ScreenLobby   Screen = "lobby"
	ScreenVote    Screen = "vote"
	ScreenResults Screen = "results"
)

// ScreenFor maps a room status to the screen a participant belongs on.
func ScreenFor(s model.Status) Screen {
	switch s {
	case model.StatusVoting:
		return ScreenVote
	case model.StatusDone:
		return ScreenResults
	default:
		return ScreenLobby
	}
}

//go:generate mockery --name=Backend --output=./mocks/backend --filename=backend.go
type Backend interface {
	Room(ctx context.Context, code string) (http_room.LobbyResponseDTO, error)
	Events(ctx context.Context, code string) (<-chan model.Event, error)
}

// Session observes one room for one client. Every event only triggers a
// re-read of the room; the route follows the re-read status.
type Session struct {
	backend Backend
	code    string

	onRoute func(Screen)
	onRoom  func(http_room.LobbyResponseDTO)
	onError func(error)

	mu     sync.Mutex
	screen Screen
	room   http_room.LobbyResponseDTO
}

type Option func(*Session)

// WithOnRoute is called once per screen change, never twice for the same screen in a row.
func WithOnRoute(f func(Screen)) Option {
	return func(s *Session) {
		s.onRoute = f
	}
}

// WithOnRoom is called with every fresh room snapshot.
func WithOnRoom(f func(http_room.LobbyResponseDTO)) Option {
	return func(s *Session) {
		s.onRoom = f
	}
}

func WithOnError(f func(error)) Option {
	return func(s *Session) {
		s.onError = f
	}
}

func New(backend Backend, code string, opts ...Option) *Session {
	s := &Session{
		backend: backend,
		code:    code,
		onRoute: func(Screen) {},
		onRoom:  func(http_room.LobbyResponseDTO) {},
		onError: func(error) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) Code() string {
	return s.code
}

func (s *Session) Screen() Screen {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen
}

func (s *Session) Room() http_room.LobbyResponseDTO {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// Run subscribes to the room and routes until ctx is done or the stream
// drops. Cancelling ctx tears the subscription down.
func (s *Session) Run(ctx context.Context) error {
	events, err := s.backend.Events(ctx, s.code)
	if err != nil {
		if isForbidden(err) {
			s.route(ScreenJoin)
		}
		return err
	}

	s.Refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-events:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrStreamClosed
			}
			s.Refresh(ctx)
		}
	}
}

// Refresh re-reads the room and routes to its screen.
func (s *Session) Refresh(ctx context.Context) {
	room, err := s.backend.Room(ctx, s.code)
	if err != nil {
		if isForbidden(err) {
			s.route(ScreenJoin)
			return
		}
		s.onError(err)
		return
	}

	s.mu.Lock()
	s.room = room
	s.mu.Unlock()

	s.onRoom(room)
	s.route(ScreenFor(model.Status(room.Status)))
}

func (s *Session) route(screen Screen) {
	s.mu.Lock()
	if s.screen == screen {
		s.mu.Unlock()
		return
	}
	s.screen = screen
	s.mu.Unlock()

	s.onRoute(screen)
}

func isForbidden(err error) bool {
	var apiErr *client_api.Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden
}
