package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/shipguard/internal/shopify"
	storedomain "github.com/smallbiznis/shipguard/internal/store/domain"
)

// RecordResult distinguishes a net-new row from an order seen before.
type RecordResult struct {
	Inserted bool
	Sale     Sale
}

// WeeklyTotal is the aggregate of a store's recorded commissions for one
// ISO week.
type WeeklyTotal struct {
	SalesCount      int64
	CommissionTotal int64
}

type Recorder interface {
	// Record performs the dedup check for (store, order) and inserts a
	// Sale on first sight. Inserted=false means the order was already
	// recorded; the caller still counts it as found.
	Record(ctx context.Context, store *storedomain.Store, order shopify.Order, item shopify.LineItem) (RecordResult, error)
	// WeeklyTotal sums a store's commissions for a week identifier in
	// bounded pages. Pure read, re-runnable.
	WeeklyTotal(ctx context.Context, storeID snowflake.ID, weekID string) (WeeklyTotal, error)
}
