// Package domain contains persistence models for commission invoicing.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceType distinguishes the scheduled weekly invoice from the
// reconciliation supplemental.
type InvoiceType string

const (
	InvoiceTypeWeekly       InvoiceType = "WEEKLY"
	InvoiceTypeSupplemental InvoiceType = "SUPPLEMENTAL"
)

// InvoiceStatus mirrors the payment processor's invoice state.
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "DRAFT"
	InvoiceStatusOpen          InvoiceStatus = "OPEN"
	InvoiceStatusPaid          InvoiceStatus = "PAID"
	InvoiceStatusUncollectible InvoiceStatus = "UNCOLLECTIBLE"
	InvoiceStatusVoid          InvoiceStatus = "VOID"
)

// Invoice is one billing event for a (store, week). For a supplemental
// row SalesCount and CommissionTotal are the delta over the original
// weekly invoice, not the week's grand total. The weekly row plus all
// supplementals must converge to the true sum of the week's sale
// commissions as sync lag resolves.
type Invoice struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	StoreID   snowflake.ID `gorm:"not null;index;uniqueIndex:ux_invoices_store_week_type"`
	Type      InvoiceType  `gorm:"type:text;not null;uniqueIndex:ux_invoices_store_week_type"`
	WeekID    string       `gorm:"type:text;not null;uniqueIndex:ux_invoices_store_week_type"`
	WeekStart time.Time    `gorm:"not null"`
	WeekEnd   time.Time    `gorm:"not null"`
	// SalesCount and CommissionTotal are what was billed on this row.
	SalesCount      int64         `gorm:"not null"`
	CommissionTotal int64         `gorm:"not null"`
	ExternalID      string        `gorm:"type:text;not null"`
	Status          InvoiceStatus `gorm:"type:text;not null"`
	PaidAt          *time.Time    `gorm:""`
	// OriginalInvoiceID links a supplemental back to the weekly row it
	// reconciles.
	OriginalInvoiceID *snowflake.ID     `gorm:"index"`
	Metadata          datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }
