// Package domain defines the contract with the external invoicing and
// payment processor.
package domain

import (
	"context"
	"errors"
	"time"
)

// ExternalInvoice mirrors the processor's invoice object.
type ExternalInvoice struct {
	ID               string
	Status           string
	AmountDue        int64
	Currency         string
	HostedInvoiceURL string
	Paid             bool
	PaidAt           *time.Time
}

// Client is the sequential invoicing surface: create → attach → retrieve
// → finalize → pay. Implementations must not reorder or skip steps.
type Client interface {
	CreateDraftInvoice(ctx context.Context, customerID string, metadata map[string]string) (ExternalInvoice, error)
	AddInvoiceItem(ctx context.Context, customerID, invoiceID string, amountMinor int64, currency, description string) error
	GetInvoice(ctx context.Context, invoiceID string) (ExternalInvoice, error)
	FinalizeInvoice(ctx context.Context, invoiceID string) (ExternalInvoice, error)
	PayInvoice(ctx context.Context, invoiceID string) (ExternalInvoice, error)
	// DefaultPaymentMethod resolves a chargeable payment method from the
	// customer's active subscription. An empty id with nil error means
	// none is on file, which is a documented state, not a failure.
	DefaultPaymentMethod(ctx context.Context, customerID string) (string, error)
}

var (
	ErrInvalidConfig = errors.New("invalid_billing_config")
	ErrPaymentFailed = errors.New("payment_failed")
)
