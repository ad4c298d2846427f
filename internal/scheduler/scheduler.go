// Package scheduler drives the recurring order-sync and weekly-invoicing
// jobs. Correctness does not depend on the schedule: every job is
// idempotent by construction, so a missed or doubled tick is harmless.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smallbiznis/shipguard/internal/clock"
	"github.com/smallbiznis/shipguard/internal/config"
	invoicedomain "github.com/smallbiznis/shipguard/internal/invoice/domain"
	"github.com/smallbiznis/shipguard/internal/money"
	"github.com/smallbiznis/shipguard/internal/sync"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log          *zap.Logger
	Clock        clock.Clock
	Orchestrator *sync.Orchestrator
	InvoiceSvc   invoicedomain.Service
	Billing      *config.BillingConfigHolder
	Config       Config `optional:"true"`
}

type Scheduler struct {
	log          *zap.Logger
	cfg          Config
	clock        clock.Clock
	orchestrator *sync.Orchestrator
	invoiceSvc   invoicedomain.Service
	billing      *config.BillingConfigHolder

	lastInvoicedWeek string
}

var ErrInvalidConfig = errors.New("invalid_scheduler_config")

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.Clock == nil || p.Orchestrator == nil || p.InvoiceSvc == nil || p.Billing == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:          p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:          p.Config.withDefaults(),
		clock:        p.Clock,
		orchestrator: p.Orchestrator,
		invoiceSvc:   p.InvoiceSvc,
		billing:      p.Billing,
	}, nil
}

func (s *Scheduler) runJob(parent context.Context, name string, timeout time.Duration, fn func(ctx context.Context) error) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	log := s.log.With(zap.String("job", name))
	log.Info("job started")

	err := fn(ctx)
	log.Info("job finished", zap.Duration("elapsed", time.Since(start)))
	if err == nil {
		return nil
	}

	// Deadline is a soft timeout: the next tick retries the same work.
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		log.Warn("job timed out", zap.Duration("timeout", timeout), zap.Error(err))
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error

	if s.isJobEnabled("order_sync") {
		err = errors.Join(err, s.runJob(parent, "order_sync", s.cfg.SyncTimeout, s.OrderSyncJob))
	}
	if s.isJobEnabled("weekly_invoices") {
		err = errors.Join(err, s.runJob(parent, "weekly_invoices", s.cfg.SyncTimeout, s.WeeklyInvoiceJob))
	}

	return err
}

// OrderSyncJob pulls the overlapping trailing window for every eligible
// store. Overlap plus dedup makes the re-run safe.
func (s *Scheduler) OrderSyncJob(ctx context.Context) error {
	window := sync.WindowFromDaysBack(s.clock.Now(), s.cfg.SyncDaysBack)
	batch, err := s.orchestrator.SyncAll(ctx, window)
	if err != nil {
		return err
	}
	if batch.FailedSyncs > 0 {
		s.log.Warn("batch completed with per-store failures",
			zap.Int("failed_syncs", batch.FailedSyncs),
			zap.Int("successful_syncs", batch.SuccessfulSyncs),
		)
	}
	return nil
}

// WeeklyInvoiceJob bills the previous ISO week once per week, on the
// configured weekday. The invoice service skips stores already billed,
// so an extra invocation is a no-op.
func (s *Scheduler) WeeklyInvoiceJob(ctx context.Context) error {
	now := s.clock.Now()
	if now.Weekday() != s.billing.Get().Weekday() {
		return nil
	}
	weekID := money.PreviousWeekID(now)
	if s.lastInvoicedWeek == weekID {
		return nil
	}

	results, err := s.invoiceSvc.GenerateWeeklyInvoices(ctx, invoicedomain.GenerateWeeklyRequest{})
	if err != nil {
		return err
	}
	s.lastInvoicedWeek = weekID

	var issued, skipped, failed int
	for _, result := range results {
		switch {
		case result.Error != "":
			failed++
		case result.Skipped:
			skipped++
		default:
			issued++
		}
	}
	s.log.Info("weekly invoice run finished",
		zap.String("week_id", weekID),
		zap.Int("issued", issued),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	return nil
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()

	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// An empty EnabledJobs list enables everything (monolith mode).
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if enabled == jobName {
			return true
		}
	}
	return false
}
