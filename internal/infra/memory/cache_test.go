package infra_memory

import (
	"context"
	"testing"
	"time"

	"github.com/Klaiveft/What2Watch/internal/model"
	usecase_movie "github.com/Klaiveft/What2Watch/internal/usecase/movie"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type MemoryCacheUnitSuite struct {
	suite.Suite
}

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func (s *MemoryCacheUnitSuite) TestSessions(t provider.T) {
	t.Parallel()

	c := &clock{now: time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)}
	sessions := NewSessions()
	sessions.m.now = c.Now

	assert.NoError(t, sessions.Set("token", "user", time.Hour))
	v, err := sessions.Get("token")
	assert.NoError(t, err)
	assert.Equal(t, "user", v)

	c.now = c.now.Add(50 * time.Minute)
	assert.NoError(t, sessions.Touch("token", time.Hour))
	c.now = c.now.Add(50 * time.Minute)
	v, _ = sessions.Get("token")
	assert.Equal(t, "user", v)

	c.now = c.now.Add(2 * time.Hour)
	v, _ = sessions.Get("token")
	assert.Empty(t, v)
}

func (s *MemoryCacheUnitSuite) TestDetails(t provider.T) {
	t.Parallel()

	ctx := context.Background()
	details := NewDetails(time.Hour)

	_, err := details.Get(ctx, 603)
	assert.ErrorIs(t, err, usecase_movie.ErrCacheMiss)

	assert.NoError(t, details.Set(ctx, model.MovieDetails{TMDBID: 603, Title: "The Matrix"}))
	got, err := details.Get(ctx, 603)
	assert.NoError(t, err)
	assert.Equal(t, "The Matrix", got.Title)
}

func (s *MemoryCacheUnitSuite) TestCodes(t provider.T) {
	t.Parallel()

	ctx := context.Background()
	c := &clock{now: time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)}
	codes := NewCodes(24 * time.Hour)
	codes.m.now = c.Now

	ok, _ := codes.Reserve(ctx, "AB12CD")
	assert.True(t, ok)
	ok, _ = codes.Reserve(ctx, "AB12CD")
	assert.False(t, ok)

	assert.NoError(t, codes.Release(ctx, "AB12CD"))
	ok, _ = codes.Reserve(ctx, "AB12CD")
	assert.True(t, ok)

	c.now = c.now.Add(25 * time.Hour)
	ok, _ = codes.Reserve(ctx, "AB12CD")
	assert.True(t, ok)
}

func TestMemoryCacheUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(MemoryCacheUnitSuite))
}
