package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Sweeper re-checks rooms that may have completed without anyone noticing,
// e.g. when the last voter dropped before the completion call.
type Sweeper interface {
	Sweep(ctx context.Context) ([]string, error)
}

type Scheduler struct {
	sched    gocron.Scheduler
	sweeper  Sweeper
	interval time.Duration
	logger   *slog.Logger
}

func New(sweeper Sweeper, interval time.Duration) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	return &Scheduler{
		sched:    sched,
		sweeper:  sweeper,
		interval: interval,
		logger:   slog.Default(),
	}, nil
}

// Start registers the completion sweep and runs it every interval until
// Shutdown. Overlapping runs are skipped.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			s.sweep(ctx)
		}),
		gocron.WithName("completion-sweep"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register sweep: %w", err)
	}

	s.sched.Start()
	return nil
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}

func (s *Scheduler) sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	completed, err := s.sweeper.Sweep(ctx)
	for _, code := range completed {
		s.logger.Info("room completed by sweep", slog.String("room_code", code))
	}
	if err != nil {
		s.logger.Error("sweep failed", slog.String("error", err.Error()))
	}
}
