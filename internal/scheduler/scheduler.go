package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"renterra/internal/usecase"
	"renterra/pkg/logger"
)

// Scheduler drives the time-gated parts of the engine from outside: the
// state machines never block on a timer, they only check wall-clock time
// when invoked, so something has to invoke them.
type Scheduler struct {
	cron         *cron.Cron
	settlementUC *usecase.SettlementUseCase
}

func New(settlementUC *usecase.SettlementUseCase, payoutPollSpec string) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron:         c,
		settlementUC: settlementUC,
	}

	if _, err := c.AddFunc(payoutPollSpec, s.runPayoutPoll); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Scheduler started")
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Scheduler stopped")
}

func (s *Scheduler) runPayoutPoll() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := s.settlementUC.ProcessEligiblePayouts(ctx); err != nil {
		logger.Error("Payout poll failed: %v", err)
	}
}
