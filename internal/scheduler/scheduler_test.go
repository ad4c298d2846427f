package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/shipguard/internal/clock"
	"github.com/smallbiznis/shipguard/internal/config"
	invoicedomain "github.com/smallbiznis/shipguard/internal/invoice/domain"
	saledomain "github.com/smallbiznis/shipguard/internal/sale/domain"
	"github.com/smallbiznis/shipguard/internal/shopify"
	storedomain "github.com/smallbiznis/shipguard/internal/store/domain"
	"github.com/smallbiznis/shipguard/internal/sync"
	"go.uber.org/zap"
)

type invoiceStub struct {
	runs     int
	lastWeek string
}

func (s *invoiceStub) GenerateWeeklyInvoices(ctx context.Context, req invoicedomain.GenerateWeeklyRequest) ([]invoicedomain.InvoiceRunResult, error) {
	s.runs++
	return nil, nil
}

func (s *invoiceStub) Reconcile(ctx context.Context, storeID snowflake.ID, weekID string) (invoicedomain.ReconcileResult, error) {
	s.lastWeek = weekID
	return invoicedomain.ReconcileResult{}, nil
}

type orderSourceStub struct{}

func (orderSourceStub) ListOrders(ctx context.Context, creds shopify.Credentials, window shopify.DateWindow) ([]shopify.Order, error) {
	return nil, nil
}

func (orderSourceStub) ResolveProductID(ctx context.Context, creds shopify.Credentials, handle string) (int64, error) {
	return 0, nil
}

type recorderStub struct{}

func (recorderStub) Record(ctx context.Context, store *storedomain.Store, order shopify.Order, item shopify.LineItem) (saledomain.RecordResult, error) {
	return saledomain.RecordResult{}, nil
}

func (recorderStub) WeeklyTotal(ctx context.Context, storeID snowflake.ID, weekID string) (saledomain.WeeklyTotal, error) {
	return saledomain.WeeklyTotal{}, nil
}

type storesStub struct{ syncs int }

func (s *storesStub) GetByID(ctx context.Context, id snowflake.ID) (*storedomain.Store, error) {
	return nil, storedomain.ErrStoreNotFound
}

func (s *storesStub) ListEligible(ctx context.Context) ([]*storedomain.Store, error) {
	s.syncs++
	return nil, nil
}

func (s *storesStub) ProtectionHandle(ctx context.Context, storeID snowflake.ID) (string, error) {
	return storedomain.DefaultProtectionHandle, nil
}

func newTestScheduler(t *testing.T, fc *clock.FakeClock, invoices invoicedomain.Service, stores storedomain.Service, cfg Config) *Scheduler {
	t.Helper()

	orchestrator := sync.NewOrchestrator(sync.OrchestratorParam{
		Log:      zap.NewNop(),
		Orders:   orderSourceStub{},
		Recorder: recorderStub{},
		Stores:   stores,
		Config:   sync.Config{Workers: 1},
	})

	s, err := New(Params{
		Log:          zap.NewNop(),
		Clock:        fc,
		Orchestrator: orchestrator,
		InvoiceSvc:   invoices,
		Billing:      config.NewStaticBillingConfigHolder(config.DefaultBillingConfig()),
		Config:       cfg,
	})
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return s
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	if _, err := New(Params{Log: zap.NewNop()}); err != ErrInvalidConfig {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestWeeklyInvoiceJobRunsOnConfiguredWeekday(t *testing.T) {
	monday := time.Date(2024, 2, 19, 6, 0, 0, 0, time.UTC)
	fc := clock.NewFakeClock(monday)
	invoices := &invoiceStub{}
	s := newTestScheduler(t, fc, invoices, &storesStub{}, Config{})

	if err := s.WeeklyInvoiceJob(context.Background()); err != nil {
		t.Fatalf("job: %v", err)
	}
	if invoices.runs != 1 {
		t.Fatalf("runs = %d, want 1 on Monday", invoices.runs)
	}

	// Same week, later the same day: once-per-week guard holds.
	fc.Advance(4 * time.Hour)
	if err := s.WeeklyInvoiceJob(context.Background()); err != nil {
		t.Fatalf("job: %v", err)
	}
	if invoices.runs != 1 {
		t.Fatalf("runs = %d, want still 1", invoices.runs)
	}

	// Next Monday bills the next week.
	fc.Advance(7 * 24 * time.Hour)
	if err := s.WeeklyInvoiceJob(context.Background()); err != nil {
		t.Fatalf("job: %v", err)
	}
	if invoices.runs != 2 {
		t.Fatalf("runs = %d, want 2 after a week", invoices.runs)
	}
}

func TestWeeklyInvoiceJobSkipsOtherWeekdays(t *testing.T) {
	tuesday := time.Date(2024, 2, 20, 6, 0, 0, 0, time.UTC)
	fc := clock.NewFakeClock(tuesday)
	invoices := &invoiceStub{}
	s := newTestScheduler(t, fc, invoices, &storesStub{}, Config{})

	if err := s.WeeklyInvoiceJob(context.Background()); err != nil {
		t.Fatalf("job: %v", err)
	}
	if invoices.runs != 0 {
		t.Fatalf("runs = %d, want 0 on Tuesday", invoices.runs)
	}
}

func TestRunOnceHonorsEnabledJobs(t *testing.T) {
	monday := time.Date(2024, 2, 19, 6, 0, 0, 0, time.UTC)
	fc := clock.NewFakeClock(monday)
	invoices := &invoiceStub{}
	stores := &storesStub{}
	s := newTestScheduler(t, fc, invoices, stores, Config{EnabledJobs: []string{"order_sync"}})

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if stores.syncs != 1 {
		t.Errorf("sync runs = %d, want 1", stores.syncs)
	}
	if invoices.runs != 0 {
		t.Errorf("invoice runs = %d, want 0 when disabled", invoices.runs)
	}
}

func TestRunOnceDefaultsToAllJobs(t *testing.T) {
	monday := time.Date(2024, 2, 19, 6, 0, 0, 0, time.UTC)
	fc := clock.NewFakeClock(monday)
	invoices := &invoiceStub{}
	stores := &storesStub{}
	s := newTestScheduler(t, fc, invoices, stores, Config{})

	if err := s.RunOnce(context.Background()); err != nil {
		t.Fatalf("run once: %v", err)
	}
	if stores.syncs != 1 || invoices.runs != 1 {
		t.Errorf("runs = (%d, %d), want (1, 1)", stores.syncs, invoices.runs)
	}
}
