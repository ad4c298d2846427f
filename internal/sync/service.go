// Package sync composes the order fetcher, protection matcher, and sale
// recorder into per-store and batch orchestration.
package sync

import (
	"context"
	"fmt"
	"sort"
	gosync "sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/shipguard/internal/protection"
	saledomain "github.com/smallbiznis/shipguard/internal/sale/domain"
	"github.com/smallbiznis/shipguard/internal/shopify"
	storedomain "github.com/smallbiznis/shipguard/internal/store/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// OrderSource is the storefront order surface the orchestrator pulls from.
type OrderSource interface {
	ListOrders(ctx context.Context, creds shopify.Credentials, window shopify.DateWindow) ([]shopify.Order, error)
	ResolveProductID(ctx context.Context, creds shopify.Credentials, handle string) (int64, error)
}

type Config struct {
	Workers int
	Pacing  time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Pacing < 0 {
		c.Pacing = 0
	}
	return c
}

type OrchestratorParam struct {
	fx.In

	Log      *zap.Logger
	Orders   OrderSource
	Recorder saledomain.Recorder
	Stores   storedomain.Service
	Config   Config `optional:"true"`
}

type Orchestrator struct {
	log      *zap.Logger
	orders   OrderSource
	recorder saledomain.Recorder
	stores   storedomain.Service
	cfg      Config
}

func NewOrchestrator(p OrchestratorParam) *Orchestrator {
	return &Orchestrator{
		log:      p.Log.Named("sync.orchestrator"),
		orders:   p.Orders,
		recorder: p.Recorder,
		stores:   p.Stores,
		cfg:      p.Config.withDefaults(),
	}
}

// SyncStore runs one store's fetch → match → record pass over the window.
// Per-order failures are skipped and counted, never escalated to a
// whole-store abort; a fetch failure is reported alongside whatever
// orders were already processed.
func (o *Orchestrator) SyncStore(ctx context.Context, store *storedomain.Store, window shopify.DateWindow) StoreSyncResult {
	result := StoreSyncResult{StoreID: store.ID, StoreDomain: store.Domain}
	log := o.log.With(zap.String("store_domain", store.Domain))

	handle, err := o.stores.ProtectionHandle(ctx, store.ID)
	if err != nil {
		result.Error = fmt.Sprintf("resolve protection handle: %v", err)
		return result
	}

	creds := shopify.Credentials{Domain: store.Domain, AccessToken: store.AccessToken}

	// Strategy-A resolution happens once per run. A miss leaves exact-ID
	// matching unavailable; content matching still runs.
	resolvedID, err := o.orders.ResolveProductID(ctx, creds, handle)
	if err != nil {
		log.Warn("protection product id resolution failed, content matching only", zap.Error(err))
		resolvedID = 0
	}

	orders, fetchErr := o.orders.ListOrders(ctx, creds, window)
	if fetchErr != nil {
		result.Error = fetchErr.Error()
	}

	for _, order := range orders {
		result.OrdersChecked++

		item, ok := protection.FindProtectionItem(order, handle, resolvedID)
		if !ok {
			continue
		}
		result.ProtectionSalesFound++

		recorded, err := o.recorder.Record(ctx, store, order, item)
		if err != nil {
			// Skipped inserts are retried by a later sync; the dedup
			// check will not find the missing row.
			log.Warn("skipping order after record failure",
				zap.Int64("order_id", order.ID),
				zap.Error(err),
			)
			result.ProtectionSalesFound--
			result.SkippedOrders++
			continue
		}
		if recorded.Inserted {
			result.NewSalesInserted++
		} else {
			result.AlreadyExisting++
		}
		result.TotalRevenue += recorded.Sale.ProtectionPrice
		result.TotalCommission += recorded.Sale.Commission
	}

	log.Info("store sync finished",
		zap.Int("orders_checked", result.OrdersChecked),
		zap.Int("protection_sales_found", result.ProtectionSalesFound),
		zap.Int("new_sales_inserted", result.NewSalesInserted),
		zap.Int("already_existing", result.AlreadyExisting),
		zap.Int("skipped_orders", result.SkippedOrders),
	)
	return result
}

// SyncAll fans per-store syncs out over a bounded worker pool. One
// store's failure or panic lands in its own result entry and never
// corrupts another's.
func (o *Orchestrator) SyncAll(ctx context.Context, window shopify.DateWindow) (BatchResult, error) {
	stores, err := o.stores.ListEligible(ctx)
	if err != nil {
		return BatchResult{}, fmt.Errorf("enumerate eligible stores: %w", err)
	}

	results := make([]StoreSyncResult, len(stores))
	jobs := make(chan int, len(stores))
	var wg gosync.WaitGroup

	workers := o.cfg.Workers
	if workers > len(stores) && len(stores) > 0 {
		workers = len(stores)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = o.syncStoreIsolated(ctx, stores[idx], window)
				if o.cfg.Pacing > 0 {
					select {
					case <-ctx.Done():
						return
					case <-time.After(o.cfg.Pacing):
					}
				}
			}
		}()
	}

	for idx := range stores {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].StoreID < results[j].StoreID })

	var batch BatchResult
	for _, result := range results {
		batch.add(result)
	}

	o.log.Info("batch sync finished",
		zap.Int("stores_synced", batch.StoresSynced),
		zap.Int("successful_syncs", batch.SuccessfulSyncs),
		zap.Int("failed_syncs", batch.FailedSyncs),
		zap.Int("new_sales_inserted", batch.NewSalesInserted),
	)
	return batch, nil
}

// SyncOne targets a single store by id, for the manual entry point.
func (o *Orchestrator) SyncOne(ctx context.Context, storeID snowflake.ID, window shopify.DateWindow) (StoreSyncResult, error) {
	store, err := o.stores.GetByID(ctx, storeID)
	if err != nil {
		return StoreSyncResult{}, err
	}
	return o.syncStoreIsolated(ctx, store, window), nil
}

func (o *Orchestrator) syncStoreIsolated(ctx context.Context, store *storedomain.Store, window shopify.DateWindow) (result StoreSyncResult) {
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("store sync panicked",
				zap.String("store_domain", store.Domain),
				zap.Any("panic", r),
			)
			result = StoreSyncResult{
				StoreID:     store.ID,
				StoreDomain: store.Domain,
				Error:       fmt.Sprintf("panic: %v", r),
			}
		}
	}()
	return o.SyncStore(ctx, store, window)
}

// WindowFromDaysBack computes the inclusive UTC window [now-daysBack, now].
func WindowFromDaysBack(now time.Time, daysBack int) shopify.DateWindow {
	if daysBack <= 0 {
		daysBack = 7
	}
	end := now.UTC()
	return shopify.DateWindow{Start: end.AddDate(0, 0, -daysBack), End: end}
}
