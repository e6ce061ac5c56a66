package scheduler

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the optional in-process refresh schedule, replacing the
// external CI cron for self-hosted deployments.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// New creates a new Scheduler.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger,
	}
}

// RegisterRefresh registers the recompute dispatch on the given cron
// expression.
func (s *Scheduler) RegisterRefresh(expr string, job func()) error {
	if _, err := s.cron.AddFunc(expr, job); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	s.logger.Info("Scheduled automatic refresh", zap.String("cron", expr))
	return nil
}

// Start launches the cron loop in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the cron loop and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
