package usecase_room

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Klaiveft/What2Watch/internal/model"
	registry_mocks "github.com/Klaiveft/What2Watch/internal/usecase/room/mocks/room/registry"
	repo_mocks "github.com/Klaiveft/What2Watch/internal/usecase/room/mocks/room/repository"
	"github.com/google/uuid"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type UsecaseRoomUnitSuite struct {
	suite.Suite
}

type resources struct {
	usecase  *Usecase
	roomRepo *repo_mocks.RoomRepository
	registry *registry_mocks.CodeRegistry
	ctx      context.Context
}

func initResources(t provider.T) *resources {
	roomRepo := repo_mocks.NewRoomRepository(t)
	registry := registry_mocks.NewCodeRegistry(t)
	usecase := New(roomRepo, registry)

	return &resources{
		roomRepo: roomRepo,
		registry: registry,
		usecase:  usecase,
		ctx:      context.Background(),
	}
}

func validRoomCode() string {
	return "AB12CD"
}

func proposingRoom(host uuid.UUID) model.Room {
	return model.Room{Code: validRoomCode(), Status: model.StatusProposing, HostUserID: host}
}

func (s *UsecaseRoomUnitSuite) TestNormalizeCode(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{name: "Should upper-case code", input: "ab12cd", expected: "AB12CD"},
		{name: "Should trim spaces", input: "  XYZ789 ", expected: "XYZ789"},
		{name: "Should reject short code", input: "ABC", err: ErrInvalidRoomCode},
		{name: "Should reject long code", input: "ABCDEFG", err: ErrInvalidRoomCode},
		{name: "Should reject punctuation", input: "AB-2CD", err: ErrInvalidRoomCode},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			code, err := NormalizeCode(tc.input)

			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				assert.Empty(t, code)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, code)
			}
		})
	}
}

func (s *UsecaseRoomUnitSuite) TestCreate(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		displayName   string
		setupMocks    func(r *resources)
		expectedError error
	}{
		{
			name:        "Should create room with host",
			displayName: "  Alice ",
			setupMocks: func(r *resources) {
				r.registry.On("Reserve", r.ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
				r.roomRepo.On("Create", r.ctx,
					mock.MatchedBy(func(room model.Room) bool { return room.Status == model.StatusProposing }),
					mock.MatchedBy(func(p model.Participant) bool { return p.DisplayName == "Alice" }),
				).Return(nil).Once()
			},
		},
		{
			name:        "Should retry when code is taken",
			displayName: "Alice",
			setupMocks: func(r *resources) {
				r.registry.On("Reserve", r.ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
				r.registry.On("Reserve", r.ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
				r.roomRepo.On("Create", r.ctx, mock.AnythingOfType("model.Room"), mock.AnythingOfType("model.Participant")).
					Return(ErrCodeConflict).Once()
				r.registry.On("Reserve", r.ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
				r.roomRepo.On("Create", r.ctx, mock.AnythingOfType("model.Room"), mock.AnythingOfType("model.Participant")).
					Return(nil).Once()
			},
		},
		{
			name:        "Should proceed when registry is down",
			displayName: "Alice",
			setupMocks: func(r *resources) {
				r.registry.On("Reserve", r.ctx, mock.AnythingOfType("string")).Return(false, errors.New("redis down")).Once()
				r.roomRepo.On("Create", r.ctx, mock.AnythingOfType("model.Room"), mock.AnythingOfType("model.Participant")).
					Return(nil).Once()
			},
		},
		{
			name:        "Should give up after three conflicts",
			displayName: "Alice",
			setupMocks: func(r *resources) {
				r.registry.On("Reserve", r.ctx, mock.AnythingOfType("string")).Return(true, nil).Times(3)
				r.roomRepo.On("Create", r.ctx, mock.AnythingOfType("model.Room"), mock.AnythingOfType("model.Participant")).
					Return(ErrCodeConflict).Times(3)
			},
			expectedError: ErrRoomsUnavailable,
		},
		{
			name:        "Should wrap repository failure",
			displayName: "Alice",
			setupMocks: func(r *resources) {
				r.registry.On("Reserve", r.ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
				r.roomRepo.On("Create", r.ctx, mock.AnythingOfType("model.Room"), mock.AnythingOfType("model.Participant")).
					Return(errors.New("connection reset")).Once()
			},
			expectedError: ErrInternal,
		},
		{
			name:          "Should reject empty display name",
			displayName:   "   ",
			setupMocks:    func(r *resources) {},
			expectedError: ErrInvalidDisplayName,
		},
		{
			name:          "Should reject long display name",
			displayName:   strings.Repeat("x", 21),
			setupMocks:    func(r *resources) {},
			expectedError: ErrInvalidDisplayName,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			code, err := r.usecase.Create(r.ctx, uuid.New(), tc.displayName)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				assert.Empty(t, code)
			} else {
				assert.NoError(t, err)
				_, normErr := NormalizeCode(code)
				assert.NoError(t, normErr)
			}
			r.roomRepo.AssertExpectations(t)
			r.registry.AssertExpectations(t)
		})
	}
}

func (s *UsecaseRoomUnitSuite) TestJoin(t provider.T) {
	t.Parallel()

	host := uuid.New()
	guest := uuid.New()

	testCases := []struct {
		name          string
		code          string
		setupMocks    func(r *resources)
		expectJoined  bool
		expectedError error
	}{
		{
			name: "Should join proposing room",
			code: "ab12cd",
			setupMocks: func(r *resources) {
				r.roomRepo.On("ByCode", r.ctx, validRoomCode()).Return(proposingRoom(host), nil).Once()
				r.roomRepo.On("UpsertParticipant", r.ctx, model.Participant{
					RoomCode: validRoomCode(), UserID: guest, DisplayName: "Bob",
				}).Return(model.Participant{ID: 2, RoomCode: validRoomCode(), UserID: guest, DisplayName: "Bob"}, true, nil).Once()
			},
			expectJoined: true,
		},
		{
			name: "Should report already joined",
			code: validRoomCode(),
			setupMocks: func(r *resources) {
				r.roomRepo.On("ByCode", r.ctx, validRoomCode()).Return(proposingRoom(host), nil).Once()
				r.roomRepo.On("UpsertParticipant", r.ctx, mock.AnythingOfType("model.Participant")).
					Return(model.Participant{ID: 2}, false, nil).Once()
			},
			expectJoined: false,
		},
		{
			name: "Should reject when voting started",
			code: validRoomCode(),
			setupMocks: func(r *resources) {
				room := proposingRoom(host)
				room.Status = model.StatusVoting
				r.roomRepo.On("ByCode", r.ctx, validRoomCode()).Return(room, nil).Once()
			},
			expectedError: ErrJoinClosed,
		},
		{
			name: "Should return not found for unknown room",
			code: validRoomCode(),
			setupMocks: func(r *resources) {
				r.roomRepo.On("ByCode", r.ctx, validRoomCode()).Return(model.Room{}, ErrResourceNotFound).Once()
			},
			expectedError: ErrResourceNotFound,
		},
		{
			name:          "Should reject malformed code",
			code:          "abc",
			setupMocks:    func(r *resources) {},
			expectedError: ErrInvalidRoomCode,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			_, joined, err := r.usecase.Join(r.ctx, tc.code, guest, " Bob ")

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expectJoined, joined)
			}
			r.roomRepo.AssertExpectations(t)
		})
	}
}

func (s *UsecaseRoomUnitSuite) TestLobby(t provider.T) {
	t.Parallel()

	host := uuid.New()

	t.Run("Should return participants for member", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		participants := []model.Participant{{ID: 1, RoomCode: validRoomCode(), UserID: host, DisplayName: "Alice"}}
		r.roomRepo.On("ByCode", r.ctx, validRoomCode()).Return(proposingRoom(host), nil).Once()
		r.roomRepo.On("IsParticipant", r.ctx, validRoomCode(), host).Return(true, nil).Once()
		r.roomRepo.On("Participants", r.ctx, validRoomCode()).Return(participants, nil).Once()

		lobby, err := r.usecase.Lobby(r.ctx, validRoomCode(), host)

		assert.NoError(t, err)
		assert.Equal(t, participants, lobby.Participants)
		assert.Equal(t, model.StatusProposing, lobby.Room.Status)
	})

	t.Run("Should reject outsider", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		outsider := uuid.New()
		r.roomRepo.On("ByCode", r.ctx, validRoomCode()).Return(proposingRoom(host), nil).Once()
		r.roomRepo.On("IsParticipant", r.ctx, validRoomCode(), outsider).Return(false, nil).Once()

		_, err := r.usecase.Lobby(r.ctx, validRoomCode(), outsider)

		assert.ErrorIs(t, err, ErrNotParticipant)
	})
}

func (s *UsecaseRoomUnitSuite) TestStartVoting(t provider.T) {
	t.Parallel()

	host := uuid.New()
	guest := uuid.New()

	member := func(r *resources, user uuid.UUID, room model.Room) {
		r.roomRepo.On("ByCode", r.ctx, validRoomCode()).Return(room, nil).Once()
		r.roomRepo.On("IsParticipant", r.ctx, validRoomCode(), user).Return(true, nil).Once()
	}

	testCases := []struct {
		name          string
		user          uuid.UUID
		setupMocks    func(r *resources)
		expectedError error
	}{
		{
			name: "Should start voting",
			user: host,
			setupMocks: func(r *resources) {
				member(r, host, proposingRoom(host))
				r.roomRepo.On("ParticipantsCount", r.ctx, validRoomCode()).Return(2, nil).Once()
				r.roomRepo.On("MoviesCount", r.ctx, validRoomCode()).Return(3, nil).Once()
				r.roomRepo.On("Advance", r.ctx, validRoomCode(), model.StatusProposing, model.StatusVoting).Return(nil).Once()
			},
		},
		{
			name: "Should reject non-host",
			user: guest,
			setupMocks: func(r *resources) {
				member(r, guest, proposingRoom(host))
			},
			expectedError: ErrNotHost,
		},
		{
			name: "Should reject lone participant",
			user: host,
			setupMocks: func(r *resources) {
				member(r, host, proposingRoom(host))
				r.roomRepo.On("ParticipantsCount", r.ctx, validRoomCode()).Return(1, nil).Once()
			},
			expectedError: ErrNotEnoughParticipants,
		},
		{
			name: "Should reject single movie",
			user: host,
			setupMocks: func(r *resources) {
				member(r, host, proposingRoom(host))
				r.roomRepo.On("ParticipantsCount", r.ctx, validRoomCode()).Return(3, nil).Once()
				r.roomRepo.On("MoviesCount", r.ctx, validRoomCode()).Return(1, nil).Once()
			},
			expectedError: ErrNotEnoughMovies,
		},
		{
			name: "Should reject when already voting",
			user: host,
			setupMocks: func(r *resources) {
				room := proposingRoom(host)
				room.Status = model.StatusVoting
				member(r, host, room)
			},
			expectedError: ErrWrongPhase,
		},
		{
			name: "Should report lost race on transition",
			user: host,
			setupMocks: func(r *resources) {
				member(r, host, proposingRoom(host))
				r.roomRepo.On("ParticipantsCount", r.ctx, validRoomCode()).Return(2, nil).Once()
				r.roomRepo.On("MoviesCount", r.ctx, validRoomCode()).Return(2, nil).Once()
				r.roomRepo.On("Advance", r.ctx, validRoomCode(), model.StatusProposing, model.StatusVoting).
					Return(ErrWrongPhase).Once()
			},
			expectedError: ErrWrongPhase,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			tc.setupMocks(r)

			err := r.usecase.StartVoting(r.ctx, validRoomCode(), tc.user)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
			}
			r.roomRepo.AssertExpectations(t)
		})
	}
}

func TestUsecaseRoomUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseRoomUnitSuite))
}
