package sync

import "github.com/bwmarrin/snowflake"

// StoreSyncResult summarizes one store's sync run. Monetary totals cover
// everything found this run, new and already-existing alike, so the
// numbers stay stable when overlapping windows are re-synced.
type StoreSyncResult struct {
	StoreID              snowflake.ID `json:"store_id"`
	StoreDomain          string       `json:"store_domain"`
	OrdersChecked        int          `json:"orders_checked"`
	ProtectionSalesFound int          `json:"protection_sales_found"`
	NewSalesInserted     int          `json:"new_sales_inserted"`
	AlreadyExisting      int          `json:"already_existing"`
	SkippedOrders        int          `json:"skipped_orders"`
	TotalRevenue         int64        `json:"total_revenue"`
	TotalCommission      int64        `json:"total_commission"`
	Error                string       `json:"error,omitempty"`
}

// BatchResult aggregates the per-store results of one batch run.
type BatchResult struct {
	Stores []StoreSyncResult `json:"stores"`

	StoresSynced         int   `json:"stores_synced"`
	SuccessfulSyncs      int   `json:"successful_syncs"`
	FailedSyncs          int   `json:"failed_syncs"`
	OrdersChecked        int   `json:"orders_checked"`
	ProtectionSalesFound int   `json:"protection_sales_found"`
	NewSalesInserted     int   `json:"new_sales_inserted"`
	AlreadyExisting      int   `json:"already_existing"`
	TotalRevenue         int64 `json:"total_revenue"`
	TotalCommission      int64 `json:"total_commission"`
}

func (b *BatchResult) add(result StoreSyncResult) {
	b.Stores = append(b.Stores, result)
	b.StoresSynced++
	if result.Error == "" {
		b.SuccessfulSyncs++
	} else {
		b.FailedSyncs++
	}
	b.OrdersChecked += result.OrdersChecked
	b.ProtectionSalesFound += result.ProtectionSalesFound
	b.NewSalesInserted += result.NewSalesInserted
	b.AlreadyExisting += result.AlreadyExisting
	b.TotalRevenue += result.TotalRevenue
	b.TotalCommission += result.TotalCommission
}
