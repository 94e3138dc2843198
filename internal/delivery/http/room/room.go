package http_room

import (
	"errors"
	"log/slog"
	"net/http"

	http_common "github.com/Klaiveft/What2Watch/internal/delivery/http/common"
	"github.com/Klaiveft/What2Watch/internal/model"
	usecase_room "github.com/Klaiveft/What2Watch/internal/usecase/room"
	"github.com/gin-gonic/gin"
)

type Controller struct {
	usecase *usecase_room.Usecase
	logger  *slog.Logger

	auth      gin.HandlerFunc
	member    gin.HandlerFunc
	rateLimit gin.HandlerFunc
}

func New(
	usecase *usecase_room.Usecase,
	auth gin.HandlerFunc,
	member gin.HandlerFunc,
	rateLimit gin.HandlerFunc,
) *Controller {
	return &Controller{
		usecase:   usecase,
		logger:    slog.Default(),
		auth:      auth,
		member:    member,
		rateLimit: rateLimit,
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	rooms := router.Group("/rooms", c.auth)
	{
		rooms.POST("", c.rateLimit, c.create)
		rooms.POST("/:code/participants", c.rateLimit, c.join)
	}

	room := rooms.Group("/:code", c.member)
	{
		room.GET("", c.lobby)
		room.POST("/voting", c.startVoting)
	}
}

// DisplayNameRequestDTO DTO for create and join
type DisplayNameRequestDTO struct {
	DisplayName string `json:"display_name" binding:"required" example:"Alice"`
}

// CreateResponseDTO DTO for the create response
type CreateResponseDTO struct {
	RoomCode string `json:"room_code" example:"AB12CD"`
}

// Create opens a room
// @Summary Create room
// @Description Opens a room in the proposing phase; the caller becomes its host
// @Tags Rooms
// @Accept json
// @Produce json
// @Param request body DisplayNameRequestDTO true "Host display name"
// @Success 201 {object} CreateResponseDTO "Room created"
// @Failure 400 {object} http_common.ErrorResponse "Invalid display name"
// @Failure 401 {object} http_common.ErrorResponse "Missing or invalid token"
// @Failure 429 {object} http_common.ErrorResponse "Too many requests"
// @Failure 503 {object} http_common.ErrorResponse "No free room code"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rooms [post]
func (c *Controller) create(ctx *gin.Context) {
	var req DisplayNameRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	code, err := c.usecase.Create(ctx, http_common.UserID(ctx), req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, usecase_room.ErrInvalidDisplayName):
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: err.Error(),
			})
		case errors.Is(err, usecase_room.ErrRoomsUnavailable):
			c.logger.Error("failed to create room", slog.String("error", err.Error()))
			ctx.JSON(http.StatusServiceUnavailable, http_common.ErrorResponse{
				Message: "unavailable",
			})
		default:
			c.logger.Error("failed to create room", slog.String("error", err.Error()))
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusCreated, CreateResponseDTO{
		RoomCode: code,
	})
}

// ParticipantDTO DTO for one room participant
type ParticipantDTO struct {
	UserID      string `json:"user_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	DisplayName string `json:"display_name" example:"Alice"`
	IsHost      bool   `json:"is_host" example:"false"`
}

// JoinResponseDTO DTO for the join response
type JoinResponseDTO struct {
	RoomCode      string         `json:"room_code" example:"AB12CD"`
	Participant   ParticipantDTO `json:"participant"`
	AlreadyJoined bool           `json:"already_joined" example:"false"`
}

// Join adds the caller to a room
// @Summary Join room
// @Description Joins a room that is still collecting proposals. The code is case insensitive; joining again only updates the display name
// @Tags Rooms
// @Accept json
// @Produce json
// @Param code path string true "Room code"
// @Param request body DisplayNameRequestDTO true "Display name"
// @Success 201 {object} JoinResponseDTO "Joined"
// @Success 200 {object} JoinResponseDTO "Already joined"
// @Failure 400 {object} http_common.ErrorResponse "Invalid code or display name"
// @Failure 404 {object} http_common.ErrorResponse "Room not found"
// @Failure 409 {object} http_common.ErrorResponse "Room no longer accepts participants"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rooms/{code}/participants [post]
func (c *Controller) join(ctx *gin.Context) {
	var req DisplayNameRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	p, joined, err := c.usecase.Join(ctx, ctx.Param("code"), http_common.UserID(ctx), req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, usecase_room.ErrInvalidRoomCode),
			errors.Is(err, usecase_room.ErrInvalidDisplayName):
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: err.Error(),
			})
		case errors.Is(err, usecase_room.ErrResourceNotFound):
			ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
				Message: "room not found",
			})
		case errors.Is(err, usecase_room.ErrJoinClosed):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Message: err.Error(),
			})
		default:
			c.logger.Error("failed to join room", slog.String("error", err.Error()))
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	status := http.StatusCreated
	if !joined {
		status = http.StatusOK
	}
	ctx.JSON(status, JoinResponseDTO{
		RoomCode: p.RoomCode,
		Participant: ParticipantDTO{
			UserID:      p.UserID.String(),
			DisplayName: p.DisplayName,
		},
		AlreadyJoined: !joined,
	})
}

// LobbyResponseDTO DTO for the room snapshot
type LobbyResponseDTO struct {
	RoomCode      string           `json:"room_code" example:"AB12CD"`
	Status        string           `json:"status" example:"proposing" enums:"proposing,voting,done"`
	HostUserID    string           `json:"host_user_id"`
	IsHost        bool             `json:"is_host"`
	WinnerMovieID *int64           `json:"winner_movie_id"`
	Screen        string           `json:"screen" example:"/room/AB12CD/lobby"`
	Participants  []ParticipantDTO `json:"participants"`
}

func toLobbyDTO(l model.Lobby, caller string) LobbyResponseDTO {
	participants := make([]ParticipantDTO, 0, len(l.Participants))
	for _, p := range l.Participants {
		participants = append(participants, ParticipantDTO{
			UserID:      p.UserID.String(),
			DisplayName: p.DisplayName,
			IsHost:      p.UserID == l.Room.HostUserID,
		})
	}
	return LobbyResponseDTO{
		RoomCode:      l.Room.Code,
		Status:        string(l.Room.Status),
		HostUserID:    l.Room.HostUserID.String(),
		IsHost:        l.Room.HostUserID.String() == caller,
		WinnerMovieID: l.Room.WinnerMovieID,
		Screen:        http_common.ScreenPath(l.Room.Code, l.Room.Status),
		Participants:  participants,
	}
}

// Lobby returns the room snapshot
// @Summary Room snapshot
// @Description Returns the room with its status and participants. Clients re-read it on every room event
// @Tags Rooms
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {object} LobbyResponseDTO "Room snapshot"
// @Failure 403 {object} http_common.ErrorResponse "Not a participant, see redirect"
// @Failure 404 {object} http_common.ErrorResponse "Room not found"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rooms/{code} [get]
func (c *Controller) lobby(ctx *gin.Context) {
	userID := http_common.UserID(ctx)

	lobby, err := c.usecase.Lobby(ctx, http_common.Room(ctx).Code, userID)
	if err != nil {
		c.logger.Error("failed to load lobby", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusOK, toLobbyDTO(lobby, userID.String()))
}

// StartVoting closes proposals
// @Summary Start voting
// @Description Host only. Needs at least 2 participants and 2 proposed movies
// @Tags Rooms
// @Param code path string true "Room code"
// @Success 204 "Voting started"
// @Failure 403 {object} http_common.ErrorResponse "Not the host"
// @Failure 409 {object} http_common.ErrorResponse "Room already left proposing"
// @Failure 422 {object} http_common.ErrorResponse "Not enough participants or movies"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rooms/{code}/voting [post]
func (c *Controller) startVoting(ctx *gin.Context) {
	room := http_common.Room(ctx)

	err := c.usecase.StartVoting(ctx, room.Code, http_common.UserID(ctx))
	if err != nil {
		switch {
		case errors.Is(err, usecase_room.ErrNotHost):
			ctx.JSON(http.StatusForbidden, http_common.ErrorResponse{
				Message: err.Error(),
			})
		case errors.Is(err, usecase_room.ErrWrongPhase):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Message:  "voting already started",
				Redirect: http_common.ScreenPath(room.Code, model.StatusVoting),
			})
		case errors.Is(err, usecase_room.ErrNotEnoughParticipants),
			errors.Is(err, usecase_room.ErrNotEnoughMovies):
			ctx.JSON(http.StatusUnprocessableEntity, http_common.ErrorResponse{
				Message: err.Error(),
			})
		default:
			c.logger.Error("failed to start voting", slog.String("room_code", room.Code), slog.String("error", err.Error()))
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}
