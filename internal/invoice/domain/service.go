package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// GenerateWeeklyRequest scopes a weekly invoicing run. TestMode bills the
// current week instead of the previous one; StoreID narrows the run to a
// single tenant.
type GenerateWeeklyRequest struct {
	TestMode bool
	StoreID  *snowflake.ID
}

// InvoiceRunResult is the outcome of one store's invoicing attempt inside
// a weekly run.
type InvoiceRunResult struct {
	StoreID         snowflake.ID  `json:"store_id"`
	WeekID          string        `json:"week_id"`
	Skipped         bool          `json:"skipped"`
	SkipReason      string        `json:"skip_reason,omitempty"`
	InvoiceID       snowflake.ID  `json:"invoice_id,omitempty"`
	ExternalID      string        `json:"external_id,omitempty"`
	Status          InvoiceStatus `json:"status,omitempty"`
	SalesCount      int64         `json:"sales_count"`
	CommissionTotal int64         `json:"commission_total"`
	Error           string        `json:"error,omitempty"`
}

// ReconcileResult reports a supplemental reconciliation outcome. Skipped
// with a zero or negative delta is the expected steady state.
type ReconcileResult struct {
	StoreID           snowflake.ID  `json:"store_id"`
	WeekID            string        `json:"week_id"`
	Skipped           bool          `json:"skipped"`
	SkipReason        string        `json:"skip_reason,omitempty"`
	Delta             int64         `json:"delta"`
	DeltaSalesCount   int64         `json:"delta_sales_count"`
	InvoiceID         snowflake.ID  `json:"invoice_id,omitempty"`
	ExternalID        string        `json:"external_id,omitempty"`
	Status            InvoiceStatus `json:"status,omitempty"`
	OriginalInvoiceID snowflake.ID  `json:"original_invoice_id,omitempty"`
}

type Service interface {
	// GenerateWeeklyInvoices runs the aggregate → invoice workflow for
	// every eligible store (or one store) for the computed week.
	GenerateWeeklyInvoices(ctx context.Context, req GenerateWeeklyRequest) ([]InvoiceRunResult, error)
	// Reconcile recomputes a week's true commission total and issues a
	// supplemental invoice when sales recorded after the weekly invoice
	// left a positive delta.
	Reconcile(ctx context.Context, storeID snowflake.ID, weekID string) (ReconcileResult, error)
}

var (
	// ErrZeroAmountInvoice marks a draft whose amount due came back zero
	// after the line item was attached. That is an integration defect,
	// not a business outcome; a $0 invoice must never reach a customer.
	ErrZeroAmountInvoice = errors.New("zero_amount_invoice")

	ErrNoCustomerRef         = errors.New("store_missing_customer_reference")
	ErrWeeklyInvoiceNotFound = errors.New("weekly_invoice_not_found")
	ErrSupplementalExists    = errors.New("supplemental_invoice_exists")
	ErrInvalidWeekID         = errors.New("invalid_week_id")
)
