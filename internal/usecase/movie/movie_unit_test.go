//go:build !integration
// +build !integration

package usecase_movie

import (
	"context"
	"errors"
	"testing"

	"github.com/Klaiveft/What2Watch/internal/model"
	"github.com/stretchr/testify/assert"

	cache_mocks "github.com/Klaiveft/What2Watch/internal/usecase/movie/mocks/movie/cache"
	client_mocks "github.com/Klaiveft/What2Watch/internal/usecase/movie/mocks/movie/client"

	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
)

type UsecaseMovieUnitSuite struct {
	suite.Suite
}

type resources struct {
	usecase *Usecase
	client  *client_mocks.MetadataClient
	cache   *cache_mocks.DetailsCache
	ctx     context.Context
}

func initResources(t provider.T) *resources {
	client := client_mocks.NewMetadataClient(t)
	cache := cache_mocks.NewDetailsCache(t)

	return &resources{
		usecase: New(client, cache),
		client:  client,
		cache:   cache,
		ctx:     context.Background(),
	}
}

type MovieDetailsBuilder struct {
	d model.MovieDetails
}

func NewMovieDetailsBuilder() *MovieDetailsBuilder {
	return &MovieDetailsBuilder{
		d: model.MovieDetails{
			TMDBID:      157336,
			Title:       "Interstellar",
			PosterPath:  "/gEU2QniE6E77NI6lCU6MxlNBvIx.jpg",
			ReleaseDate: "2014-11-05",
			Runtime:     169,
			Genres:      []string{"Adventure", "Drama", "Science Fiction"},
		},
	}
}

func (b *MovieDetailsBuilder) WithID(id int64) *MovieDetailsBuilder {
	b.d.TMDBID = id
	return b
}

func (b *MovieDetailsBuilder) Build() model.MovieDetails {
	return b.d
}

func (s *UsecaseMovieUnitSuite) TestSearch(t provider.T) {
	t.Parallel()

	t.Run("Should return client results", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		expected := []model.SearchResult{{TMDBID: 157336, Title: "Interstellar"}}
		r.client.On("Search", r.ctx, "interstellar").Return(expected, nil).Once()

		results, err := r.usecase.Search(r.ctx, "  interstellar ")

		assert.NoError(t, err)
		assert.Equal(t, expected, results)
	})

	t.Run("Should degrade to empty list", func(t provider.T) {
		t.Parallel()
		r := initResources(t)
		r.client.On("Search", r.ctx, "x").Return(nil, errors.New("502")).Once()

		results, err := r.usecase.Search(r.ctx, "x")

		assert.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})

	t.Run("Should reject blank query", func(t provider.T) {
		t.Parallel()
		r := initResources(t)

		_, err := r.usecase.Search(r.ctx, "   ")

		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func (s *UsecaseMovieUnitSuite) TestDetails(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		setupMocks func(r *resources, d model.MovieDetails)
		expectNil  bool
	}{
		{
			name: "Should serve from cache",
			setupMocks: func(r *resources, d model.MovieDetails) {
				r.cache.On("Get", r.ctx, d.TMDBID).Return(d, nil).Once()
			},
		},
		{
			name: "Should fetch and fill cache on miss",
			setupMocks: func(r *resources, d model.MovieDetails) {
				r.cache.On("Get", r.ctx, d.TMDBID).Return(model.MovieDetails{}, ErrCacheMiss).Once()
				r.client.On("Details", r.ctx, d.TMDBID).Return(d, nil).Once()
				r.cache.On("Set", r.ctx, d).Return(nil).Once()
			},
		},
		{
			name: "Should ignore broken cache",
			setupMocks: func(r *resources, d model.MovieDetails) {
				r.cache.On("Get", r.ctx, d.TMDBID).Return(model.MovieDetails{}, errors.New("conn refused")).Once()
				r.client.On("Details", r.ctx, d.TMDBID).Return(d, nil).Once()
				r.cache.On("Set", r.ctx, d).Return(errors.New("conn refused")).Once()
			},
		},
		{
			name: "Should return nil when client fails",
			setupMocks: func(r *resources, d model.MovieDetails) {
				r.cache.On("Get", r.ctx, d.TMDBID).Return(model.MovieDetails{}, ErrCacheMiss).Once()
				r.client.On("Details", r.ctx, d.TMDBID).Return(model.MovieDetails{}, errors.New("404")).Once()
			},
			expectNil: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			d := NewMovieDetailsBuilder().WithID(27205).Build()
			tc.setupMocks(r, d)

			got := r.usecase.Details(r.ctx, d.TMDBID)

			if tc.expectNil {
				assert.Nil(t, got)
			} else if assert.NotNil(t, got) {
				assert.Equal(t, d, *got)
			}
			r.client.AssertExpectations(t)
			r.cache.AssertExpectations(t)
		})
	}
}

func TestUsecaseMovieUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseMovieUnitSuite))
}
