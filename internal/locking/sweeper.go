package locking

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"rentals/internal/metrics"
	"rentals/pkg/logger"
)

// SweepScheduler periodically purges expired entries. Acquire already purges
// lazily; the scheduled sweep only bounds how long dead entries linger.
type SweepScheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	log     *logger.Logger
}

func NewSweepScheduler(sweeper Sweeper, spec string, log *logger.Logger) (*SweepScheduler, error) {
	s := &SweepScheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		log:     log.Component("lock_sweeper"),
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *SweepScheduler) run() {
	n, err := s.sweeper.Sweep(context.Background())
	if err != nil {
		s.log.Error("Lock sweep failed", "error", err)
		return
	}
	metrics.LocksSweptTotal.Add(float64(n))
	if n > 0 {
		s.log.Debug("Expired locks swept", "count", n)
	}
}

func (s *SweepScheduler) Start() {
	s.cron.Start()
	s.log.Info("Lock sweeper started")
}

// Stop waits for a running sweep to finish or ctx to end.
func (s *SweepScheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		s.log.Info("Lock sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
