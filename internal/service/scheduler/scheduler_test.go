package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
)

type SchedulerUnitSuite struct {
	suite.Suite
}

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) Sweep(ctx context.Context) ([]string, error) {
	c.calls.Add(1)
	return []string{"AB12CD"}, c.err
}

func (s *SchedulerUnitSuite) TestStart(t provider.T) {
	t.Parallel()

	t.Run("Should sweep periodically until shutdown", func(t provider.T) {
		t.Parallel()
		sweeper := &countingSweeper{}
		sched, err := New(sweeper, 20*time.Millisecond)
		assert.NoError(t, err)

		assert.NoError(t, sched.Start(context.Background()))
		assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)

		assert.NoError(t, sched.Shutdown())
		after := sweeper.calls.Load()
		time.Sleep(60 * time.Millisecond)
		assert.Equal(t, after, sweeper.calls.Load())
	})
}

func (s *SchedulerUnitSuite) TestSweep(t provider.T) {
	t.Parallel()

	t.Run("Should survive sweep errors", func(t provider.T) {
		t.Parallel()
		sweeper := &countingSweeper{err: errors.New("room XYZ: boom")}
		sched, err := New(sweeper, time.Hour)
		assert.NoError(t, err)

		sched.sweep(context.Background())

		assert.Equal(t, int32(1), sweeper.calls.Load())
	})

	t.Run("Should skip after cancellation", func(t provider.T) {
		t.Parallel()
		sweeper := &countingSweeper{}
		sched, err := New(sweeper, time.Hour)
		assert.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		sched.sweep(ctx)

		assert.Equal(t, int32(0), sweeper.calls.Load())
	})
}

func TestSchedulerUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(SchedulerUnitSuite))
}
