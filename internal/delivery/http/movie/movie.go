package http_movie

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	http_common "github.com/Klaiveft/What2Watch/internal/delivery/http/common"
	"github.com/Klaiveft/What2Watch/internal/model"
	usecase_movie "github.com/Klaiveft/What2Watch/internal/usecase/movie"
	"github.com/gin-gonic/gin"
)

// SearchResultDTO DTO for one search hit
type SearchResultDTO struct {
	TMDBID      int64  `json:"tmdb_id" example:"603"`
	Title       string `json:"title" example:"The Matrix"`
	PosterPath  string `json:"poster_path,omitempty" example:"/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg"`
	PosterURL   string `json:"poster_url,omitempty" example:"https://image.tmdb.org/t/p/w500/f89U3ADr1oiB1s9GkdPOEpXUk5H.jpg"`
	ReleaseDate string `json:"release_date,omitempty" example:"1999-03-30"`
	Overview    string `json:"overview,omitempty"`
}

// SearchResponseDTO DTO for the search response
type SearchResponseDTO struct {
	Results []SearchResultDTO `json:"results"`
}

type Controller struct {
	uc        *usecase_movie.Usecase
	imageBase string

	auth   gin.HandlerFunc
	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(
	uc *usecase_movie.Usecase,
	imageBase string,
	auth gin.HandlerFunc,
	opts ...ControllerOption,
) *Controller {
	c := &Controller{
		uc:        uc,
		imageBase: strings.TrimRight(imageBase, "/"),
		auth:      auth,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	movies := router.Group("/movies", c.auth)
	movies.GET("/search", c.search)
}

func (c *Controller) toDTO(r model.SearchResult) SearchResultDTO {
	dto := SearchResultDTO{
		TMDBID:      r.TMDBID,
		Title:       r.Title,
		PosterPath:  r.PosterPath,
		ReleaseDate: r.ReleaseDate,
		Overview:    r.Overview,
	}
	if r.PosterPath != "" {
		dto.PosterURL = c.imageBase + "/" + strings.TrimLeft(r.PosterPath, "/")
	}
	return dto
}

// Search looks movies up in TMDB
// @Summary Search movies
// @Description Searches TMDB by title. Upstream failures yield an empty list
// @Tags Movies
// @Produce json
// @Param query query string true "Title to search for"
// @Success 200 {object} SearchResponseDTO "Search results"
// @Failure 400 {object} http_common.ErrorResponse "Empty query"
// @Failure 401 {object} http_common.ErrorResponse "Missing or invalid token"
// @Security UserToken
// @Router /movies/search [get]
func (c *Controller) search(ctx *gin.Context) {
	results, err := c.uc.Search(ctx.Request.Context(), ctx.Query("query"))
	if err != nil {
		if errors.Is(err, usecase_movie.ErrInvalidInput) {
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: "query must not be empty",
			})
			return
		}
		c.logger.Error("failed to search movies", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
		return
	}

	resp := SearchResponseDTO{Results: make([]SearchResultDTO, 0, len(results))}
	for _, r := range results {
		resp.Results = append(resp.Results, c.toDTO(r))
	}
	ctx.JSON(http.StatusOK, resp)
}
