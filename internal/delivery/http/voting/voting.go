package http_voting

import (
	"errors"
	"log/slog"
	"net/http"

	http_common "github.com/Klaiveft/What2Watch/internal/delivery/http/common"
	"github.com/Klaiveft/What2Watch/internal/model"
	usecase_vote "github.com/Klaiveft/What2Watch/internal/usecase/vote"
	"github.com/gin-gonic/gin"
)

type Controller struct {
	uc *usecase_vote.Usecase

	auth   gin.HandlerFunc
	member gin.HandlerFunc
	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(
	uc *usecase_vote.Usecase,
	auth gin.HandlerFunc,
	member gin.HandlerFunc,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		uc:     uc,
		auth:   auth,
		member: member,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	room := router.Group("/rooms/:code", c.auth, c.member)
	room.GET("/ballot", c.ballot)
	room.POST("/votes", c.vote)
	room.POST("/completion", c.completion)
	room.GET("/results", c.results)
}

// BallotResponseDTO DTO for the movies left to vote on
type BallotResponseDTO struct {
	Movies       []http_common.MovieDTO  `json:"movies"`
	Progress     http_common.ProgressDTO `json:"progress"`
	MyVotingDone bool                    `json:"my_voting_done"`
}

// Ballot returns the caller's remaining movies
// @Summary Ballot
// @Description Movies the caller has not voted on yet, shuffled, with the room progress
// @Tags Voting
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {object} BallotResponseDTO "Ballot"
// @Failure 403 {object} http_common.ErrorResponse "Not a participant, see redirect"
// @Failure 409 {object} http_common.ErrorResponse "Room is not voting, see redirect"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rooms/{code}/ballot [get]
func (c *Controller) ballot(ctx *gin.Context) {
	room := http_common.Room(ctx)

	ballot, err := c.uc.Ballot(ctx, room.Code, http_common.UserID(ctx))
	if err != nil {
		if errors.Is(err, usecase_vote.ErrVotingClosed) {
			c.redirectToCurrentScreen(ctx, room.Code, "room is not voting")
			return
		}
		c.logger.Error("failed to build ballot", slog.String("room_code", room.Code), slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	movies := make([]http_common.MovieDTO, 0, len(ballot.Pending))
	for _, m := range ballot.Pending {
		movies = append(movies, http_common.ToMovieDTO(m))
	}
	ctx.JSON(http.StatusOK, BallotResponseDTO{
		Movies:       movies,
		Progress:     http_common.ToProgressDTO(ballot.Progress),
		MyVotingDone: ballot.Done(),
	})
}

// VoteRequestDTO DTO for one vote
type VoteRequestDTO struct {
	MovieID int64 `json:"movie_id" binding:"required" example:"17"`
	Value   *bool `json:"value" binding:"required" example:"true"`
}

// CompletionDTO DTO for a completion check outcome
type CompletionDTO struct {
	Complete      bool                    `json:"complete"`
	WinnerMovieID *int64                  `json:"winner_movie_id"`
	Progress      http_common.ProgressDTO `json:"progress"`
}

// VoteResponseDTO DTO for the vote response
type VoteResponseDTO struct {
	AlreadyVoted bool           `json:"already_voted"`
	Completion   *CompletionDTO `json:"completion,omitempty"`
}

func toCompletionDTO(c model.Completion) *CompletionDTO {
	return &CompletionDTO{
		Complete:      c.Complete,
		WinnerMovieID: c.WinnerMovieID,
		Progress:      http_common.ToProgressDTO(c.Progress),
	}
}

// Vote records a yes/no decision
// @Summary Vote
// @Description Records the caller's vote on one movie and checks whether the room is complete. Repeating a vote succeeds and keeps the first value
// @Tags Voting
// @Accept json
// @Produce json
// @Param code path string true "Room code"
// @Param request body VoteRequestDTO true "Vote"
// @Success 200 {object} VoteResponseDTO "Vote accepted"
// @Failure 400 {object} http_common.ErrorResponse "Invalid request"
// @Failure 409 {object} http_common.ErrorResponse "Voting closed, see redirect"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rooms/{code}/votes [post]
func (c *Controller) vote(ctx *gin.Context) {
	room := http_common.Room(ctx)
	userID := http_common.UserID(ctx)

	var req VoteRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid request format",
		})
		return
	}

	alreadyVoted, err := c.uc.Vote(ctx, room.Code, userID, req.MovieID, *req.Value)
	if err != nil {
		if errors.Is(err, usecase_vote.ErrVotingClosed) {
			c.redirectToCurrentScreen(ctx, room.Code, err.Error())
			return
		}
		c.logger.Error("failed to record vote",
			slog.String("room_code", room.Code),
			slog.Int64("movie_id", req.MovieID),
			slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	resp := VoteResponseDTO{AlreadyVoted: alreadyVoted}

	// The vote is stored already; a failed check is retried by the sweeper.
	completion, err := c.uc.CheckCompletion(ctx, room.Code, userID, false)
	if err != nil {
		c.logger.Warn("completion check after vote failed", slog.String("room_code", room.Code), slog.String("error", err.Error()))
	} else {
		resp.Completion = toCompletionDTO(completion)
	}

	ctx.JSON(http.StatusOK, resp)
}

// CompletionRequestDTO DTO for a completion check
type CompletionRequestDTO struct {
	Force bool `json:"force" example:"false"`
}

// Completion checks whether everyone voted
// @Summary Completion check
// @Description Resolves the winner once every participant voted on every movie. force finishes voting early and is reserved for the host
// @Tags Voting
// @Accept json
// @Produce json
// @Param code path string true "Room code"
// @Param request body CompletionRequestDTO false "Force flag"
// @Success 200 {object} CompletionDTO "Completion state"
// @Failure 403 {object} http_common.ErrorResponse "Force by a non host"
// @Failure 409 {object} http_common.ErrorResponse "Room is not voting"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rooms/{code}/completion [post]
func (c *Controller) completion(ctx *gin.Context) {
	room := http_common.Room(ctx)

	var req CompletionRequestDTO
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: "invalid request format",
			})
			return
		}
	}

	completion, err := c.uc.CheckCompletion(ctx, room.Code, http_common.UserID(ctx), req.Force)
	if err != nil {
		switch {
		case errors.Is(err, usecase_vote.ErrNotHost):
			ctx.JSON(http.StatusForbidden, http_common.ErrorResponse{
				Message: err.Error(),
			})
		case errors.Is(err, usecase_vote.ErrWrongPhase):
			c.redirectToCurrentScreen(ctx, room.Code, err.Error())
		default:
			c.logger.Error("completion check failed", slog.String("room_code", room.Code), slog.String("error", err.Error()))
			ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
				Message: "internal error",
			})
		}
		return
	}

	ctx.JSON(http.StatusOK, toCompletionDTO(completion))
}

// MovieResultDTO DTO for one ranked movie
type MovieResultDTO struct {
	http_common.MovieDTO
	PosterURL  string `json:"poster_url,omitempty"`
	YesCount   int    `json:"yes_count" example:"3"`
	TotalVotes int    `json:"total_votes" example:"4"`
	MatchRate  int    `json:"match_rate" example:"75"`
	IsWinner   bool   `json:"is_winner"`
}

// ResultsResponseDTO DTO for the final ranking
type ResultsResponseDTO struct {
	RoomCode      string           `json:"room_code" example:"AB12CD"`
	WinnerMovieID *int64           `json:"winner_movie_id"`
	Participants  int              `json:"participants" example:"4"`
	MoviesCount   int              `json:"movies_count" example:"6"`
	Movies        []MovieResultDTO `json:"movies"`
}

func toResultsDTO(r model.Results) ResultsResponseDTO {
	movies := make([]MovieResultDTO, 0, len(r.Movies))
	for _, m := range r.Movies {
		movies = append(movies, MovieResultDTO{
			MovieDTO:   http_common.ToMovieDTO(m.Movie),
			PosterURL:  m.PosterURL,
			YesCount:   m.Tally.YesCount,
			TotalVotes: m.Tally.TotalVotes,
			MatchRate:  int(m.Tally.YesRatio*100 + 0.5),
			IsWinner:   r.WinnerMovieID != nil && *r.WinnerMovieID == m.Movie.ID,
		})
	}
	return ResultsResponseDTO{
		RoomCode:      r.RoomCode,
		WinnerMovieID: r.WinnerMovieID,
		Participants:  r.Participants,
		MoviesCount:   len(r.Movies),
		Movies:        movies,
	}
}

// Results returns the final ranking
// @Summary Results
// @Description Ranked movies of a finished room, winner first
// @Tags Voting
// @Produce json
// @Param code path string true "Room code"
// @Success 200 {object} ResultsResponseDTO "Results"
// @Failure 403 {object} http_common.ErrorResponse "Not a participant, see redirect"
// @Failure 409 {object} http_common.ErrorResponse "Voting not finished, see redirect"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rooms/{code}/results [get]
func (c *Controller) results(ctx *gin.Context) {
	room := http_common.Room(ctx)

	results, err := c.uc.Results(ctx, room.Code)
	if err != nil {
		if errors.Is(err, usecase_vote.ErrRoomNotDone) {
			c.redirectToCurrentScreen(ctx, room.Code, err.Error())
			return
		}
		c.logger.Error("failed to get results", slog.String("room_code", room.Code), slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	ctx.JSON(http.StatusOK, toResultsDTO(results))
}

// redirectToCurrentScreen answers 409 with the screen the room is on now.
// The room loaded by the membership check may be stale by then.
func (c *Controller) redirectToCurrentScreen(ctx *gin.Context, code, message string) {
	status := http_common.Room(ctx).Status
	if room, err := c.uc.Room(ctx, code); err == nil {
		status = room.Status
	}
	ctx.JSON(http.StatusConflict, http_common.ErrorResponse{
		Message:  message,
		Redirect: http_common.ScreenPath(code, status),
	})
}
