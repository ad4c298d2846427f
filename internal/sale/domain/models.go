// Package domain contains the append-only sales ledger models.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Sale records one protection line item sold on one storefront order.
// Rows are created once on first sight of a qualifying order and never
// mutated or deleted. The (store_id, order_id) pair is the dedup key;
// violating it double-counts revenue.
type Sale struct {
	ID      snowflake.ID `gorm:"primaryKey"`
	StoreID snowflake.ID `gorm:"not null;index;uniqueIndex:ux_sales_store_order;index:ix_sales_store_week,priority:1"`
	// OrderID is the external order id, kept as an opaque string.
	OrderID     string `gorm:"type:text;not null;uniqueIndex:ux_sales_store_order"`
	OrderNumber string `gorm:"type:text"`
	// ProtectionPrice and Commission are USD minor units.
	ProtectionPrice int64   `gorm:"not null"`
	Commission      int64   `gorm:"not null"`
	FXRate          float64 `gorm:"not null;default:1"`
	Currency        string  `gorm:"type:text;not null;default:'USD'"`
	MonthID         string  `gorm:"type:text;not null;index"`
	WeekID          string  `gorm:"type:text;not null;index:ix_sales_store_week,priority:2"`
	// OrderCreatedAt is the order's original creation time, not sync
	// time. Weekly attribution depends on it when syncs run late.
	OrderCreatedAt time.Time `gorm:"not null"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Sale) TableName() string { return "sales" }
