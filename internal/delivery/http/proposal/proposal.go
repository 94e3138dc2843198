package http_proposal

import (
	"errors"
	"log/slog"
	"net/http"

	http_common "github.com/Klaiveft/What2Watch/internal/delivery/http/common"
	"github.com/Klaiveft/What2Watch/internal/model"
	usecase_proposal "github.com/Klaiveft/What2Watch/internal/usecase/proposal"
	"github.com/gin-gonic/gin"
)

type Controller struct {
	usecase *usecase_proposal.Usecase
	logger  *slog.Logger

	auth   gin.HandlerFunc
	member gin.HandlerFunc
}

func New(
	usecase *usecase_proposal.Usecase,
	auth gin.HandlerFunc,
	member gin.HandlerFunc,
) *Controller {
	return &Controller{
		usecase: usecase,
		logger:  slog.Default(),
		auth:    auth,
		member:  member,
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	proposals := router.Group("/rooms/:code/proposals", c.auth, c.member)
	{
		proposals.GET("", c.list)
		proposals.POST("", c.propose)
	}
}

// ProposedMovieDTO DTO for one candidate
type ProposedMovieDTO struct {
	http_common.MovieDTO
	ProposedBy []string `json:"proposed_by" example:"Alice,Bob"`
}

// ProposalsResponseDTO DTO for the candidate list
type ProposalsResponseDTO struct {
	Movies []ProposedMovieDTO `json:"movies"`
}

// List returns the candidate pool
// @Summary Proposed movies
// @Description Lists every movie proposed in the room, once per movie, with the names of its proposers
// @Tags Proposals
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {object} ProposalsResponseDTO "Candidates"
// @Failure 403 {object} http_common.ErrorResponse "Not a participant, see redirect"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rooms/{code}/proposals [get]
func (c *Controller) list(ctx *gin.Context) {
	room := http_common.Room(ctx)

	movies, err := c.usecase.ProposedMovies(ctx, room.Code)
	if err != nil {
		c.logger.Error("failed to list proposals", slog.String("room_code", room.Code), slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	resp := ProposalsResponseDTO{Movies: make([]ProposedMovieDTO, 0, len(movies))}
	for _, m := range movies {
		resp.Movies = append(resp.Movies, ProposedMovieDTO{
			MovieDTO:   http_common.ToMovieDTO(m.Movie),
			ProposedBy: m.ProposedBy,
		})
	}
	ctx.JSON(http.StatusOK, resp)
}

// ProposeRequestDTO DTO for a proposal
type ProposeRequestDTO struct {
	TMDBID int64 `json:"tmdb_id" binding:"required" example:"603"`
}

// Propose adds a candidate
// @Summary Propose movie
// @Description Proposes a TMDB movie. Each participant may propose up to 3 movies while the room is proposing
// @Tags Proposals
// @Accept json
// @Produce json
// @Param code path string true "Room code"
// @Param request body ProposeRequestDTO true "TMDB id"
// @Success 201 {object} http_common.MovieDTO "Proposed"
// @Failure 400 {object} http_common.ErrorResponse "Invalid tmdb id"
// @Failure 409 {object} http_common.ErrorResponse "Already proposed or proposals closed"
// @Failure 422 {object} http_common.ErrorResponse "Proposal limit reached"
// @Failure 502 {object} http_common.ErrorResponse "Movie details unavailable"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rooms/{code}/proposals [post]
func (c *Controller) propose(ctx *gin.Context) {
	room := http_common.Room(ctx)

	var req ProposeRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	movie, err := c.usecase.Propose(ctx, room.Code, http_common.UserID(ctx), req.TMDBID)
	if err != nil {
		switch {
		case errors.Is(err, usecase_proposal.ErrInvalidInput):
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: err.Error(),
			})
		case errors.Is(err, usecase_proposal.ErrAlreadyProposed):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Message: err.Error(),
			})
		case errors.Is(err, usecase_proposal.ErrWrongPhase):
			ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
				Message:  err.Error(),
				Redirect: http_common.ScreenPath(room.Code, model.StatusVoting),
			})
		case errors.Is(err, usecase_proposal.ErrProposalCapReached):
			ctx.JSON(http.StatusUnprocessableEntity, http_common.ErrorResponse{
				Message: err.Error(),
			})
		case errors.Is(err, usecase_proposal.ErrNotParticipant):
			ctx.JSON(http.StatusForbidden, http_common.ErrorResponse{
				Message:  err.Error(),
				Redirect: http_common.JoinPath(room.Code),
			})
		case errors.Is(err, usecase_proposal.ErrDetailsUnavailable):
			c.logger.Warn("movie details unavailable", slog.Int64("tmdb_id", req.TMDBID))
			ctx.JSON(http.StatusBadGateway, http_common.ErrorResponse{
				Message: err.Error(),
			})
		default:
			c.logger.Error("failed to propose movie",
				slog.String("room_code", room.Code),
				slog.Int64("tmdb_id", req.TMDBID),
				slog.String("error", err.Error()))
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusCreated, http_common.ToMovieDTO(movie))
}
