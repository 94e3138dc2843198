package usecase_movie

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Klaiveft/What2Watch/internal/model"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrCacheMiss    = errors.New("cache miss")
)

//go:generate mockery --name=MetadataClient --output=./mocks/movie/client --filename=client.go
type MetadataClient interface {
	Search(ctx context.Context, query string) ([]model.SearchResult, error)
	Details(ctx context.Context, tmdbID int64) (model.MovieDetails, error)
}

//go:generate mockery --name=DetailsCache --output=./mocks/movie/cache --filename=cache.go
type DetailsCache interface {
	// Get returns ErrCacheMiss when nothing is stored for tmdbID.
	Get(ctx context.Context, tmdbID int64) (model.MovieDetails, error)
	Set(ctx context.Context, d model.MovieDetails) error
}

type Usecase struct {
	client MetadataClient
	cache  DetailsCache
	logger *slog.Logger
}

func New(
	client MetadataClient,
	cache DetailsCache,
) *Usecase {
	return &Usecase{
		client: client,
		cache:  cache,
		logger: slog.Default(),
	}
}

// Search degrades to an empty list when the metadata service fails.
func (u *Usecase) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidInput
	}

	results, err := u.client.Search(ctx, query)
	if err != nil {
		u.logger.Warn("movie search failed", slog.String("query", query), slog.String("error", err.Error()))
		return []model.SearchResult{}, nil
	}
	return results, nil
}

// Details returns nil when the movie could not be fetched.
func (u *Usecase) Details(ctx context.Context, tmdbID int64) *model.MovieDetails {
	if u.cache != nil {
		d, err := u.cache.Get(ctx, tmdbID)
		if err == nil {
			return &d
		}
		if !errors.Is(err, ErrCacheMiss) {
			u.logger.Warn("details cache read failed", slog.Int64("tmdb_id", tmdbID), slog.String("error", err.Error()))
		}
	}

	d, err := u.client.Details(ctx, tmdbID)
	if err != nil {
		u.logger.Warn("movie details failed", slog.Int64("tmdb_id", tmdbID), slog.String("error", err.Error()))
		return nil
	}

	if u.cache != nil {
		if err := u.cache.Set(ctx, d); err != nil {
			u.logger.Warn("details cache write failed", slog.Int64("tmdb_id", tmdbID), slog.String("error", err.Error()))
		}
	}
	return &d
}
