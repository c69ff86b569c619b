// Package worker runs the periodic background jobs of the service.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper removes accounts that never completed verification.
type Sweeper interface {
	SweepUnverified(ctx context.Context) (int64, error)
}

// SweepScheduler triggers the sweeper on a cron schedule.
type SweepScheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	timeout time.Duration
	log     *zap.Logger
}

// NewSweepScheduler accepts standard five-field cron expressions and descriptors such as "@hourly".
func NewSweepScheduler(sweeper Sweeper, schedule string, timeout time.Duration, log *zap.Logger) (*SweepScheduler, error) {
	log = log.With(zap.String("worker", "sweep"))
	logger := cronLogger{log: log.Sugar()}

	s := &SweepScheduler{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		sweeper: sweeper,
		timeout: timeout,
		log:     log,
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce(context.Background()) }); err != nil {
		return nil, fmt.Errorf("schedule sweep %q: %w", schedule, err)
	}

	return s, nil
}

// RunOnce performs a single sweep; failures are logged and retried on the next tick.
func (s *SweepScheduler) RunOnce(ctx context.Context) int64 {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.sweeper.SweepUnverified(ctx)
	if err != nil {
		s.log.Error("Sweep failed", zap.Error(err))
		return 0
	}
	return n
}

func (s *SweepScheduler) Start() {
	s.cron.Start()
	s.log.Info("Sweep scheduler started")
}

// Stop halts scheduling and waits for a running sweep or ctx, whichever ends first.
func (s *SweepScheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		s.log.Info("Sweep scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
