package infra_redis_codes

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type CodesInfraUnitSuite struct {
	suite.Suite
}

func (s *CodesInfraUnitSuite) TestReserve(t provider.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	ctx := context.Background()
	d := New(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "room_code", 24*time.Hour)

	ok, err := d.Reserve(ctx, "AB12CD")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 24*time.Hour, mr.TTL("room_code:AB12CD"))

	ok, err = d.Reserve(ctx, "AB12CD")
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, d.Release(ctx, "AB12CD"))
	ok, _ = d.Reserve(ctx, "AB12CD")
	assert.True(t, ok)

	mr.FastForward(25 * time.Hour)
	ok, _ = d.Reserve(ctx, "AB12CD")
	assert.True(t, ok)
}

func (s *CodesInfraUnitSuite) TestUnavailable(t provider.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	d := New(redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: 0}), "room_code", time.Hour)
	mr.Close()

	_, err = d.Reserve(context.Background(), "AB12CD")

	assert.Error(t, err)
}

func TestCodesInfraUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(CodesInfraUnitSuite))
}
