package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingdomain "github.com/smallbiznis/shipguard/internal/billing/domain"
	"github.com/smallbiznis/shipguard/internal/clock"
	invoicedomain "github.com/smallbiznis/shipguard/internal/invoice/domain"
	"github.com/smallbiznis/shipguard/internal/money"
	saledomain "github.com/smallbiznis/shipguard/internal/sale/domain"
	storedomain "github.com/smallbiznis/shipguard/internal/store/domain"
	"github.com/smallbiznis/shipguard/pkg/db"
	"github.com/smallbiznis/shipguard/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Billing  billingdomain.Client
	Stores   storedomain.Service
	Recorder saledomain.Recorder
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID       *snowflake.Node
	clock       clock.Clock
	billing     billingdomain.Client
	stores      storedomain.Service
	recorder    saledomain.Recorder
	invoicerepo repository.Repository[invoicedomain.Invoice]
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("invoice.service"),
		genID: p.GenID,
		clock: p.Clock,

		billing:     p.Billing,
		stores:      p.Stores,
		recorder:    p.Recorder,
		invoicerepo: repository.ProvideStore[invoicedomain.Invoice](p.DB),
	}
}

func (s *Service) GenerateWeeklyInvoices(ctx context.Context, req invoicedomain.GenerateWeeklyRequest) ([]invoicedomain.InvoiceRunResult, error) {
	now := s.clock.Now()
	weekID := money.PreviousWeekID(now)
	if req.TestMode {
		weekID = money.WeekID(now)
	}

	var stores []*storedomain.Store
	if req.StoreID != nil {
		store, err := s.stores.GetByID(ctx, *req.StoreID)
		if err != nil {
			return nil, err
		}
		stores = []*storedomain.Store{store}
	} else {
		var err error
		stores, err = s.stores.ListEligible(ctx)
		if err != nil {
			return nil, fmt.Errorf("enumerate eligible stores: %w", err)
		}
	}

	results := make([]invoicedomain.InvoiceRunResult, 0, len(stores))
	for _, store := range stores {
		results = append(results, s.invoiceStoreWeek(ctx, store, weekID))
	}
	return results, nil
}

func (s *Service) invoiceStoreWeek(ctx context.Context, store *storedomain.Store, weekID string) invoicedomain.InvoiceRunResult {
	result := invoicedomain.InvoiceRunResult{StoreID: store.ID, WeekID: weekID}
	log := s.log.With(zap.String("store_id", store.ID.String()), zap.String("week_id", weekID))

	existing, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{
		StoreID: store.ID,
		WeekID:  weekID,
		Type:    invoicedomain.InvoiceTypeWeekly,
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if existing != nil {
		result.Skipped = true
		result.SkipReason = "weekly invoice already exists"
		result.InvoiceID = existing.ID
		result.ExternalID = existing.ExternalID
		return result
	}

	total, err := s.recorder.WeeklyTotal(ctx, store.ID, weekID)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if total.CommissionTotal <= 0 {
		result.Skipped = true
		result.SkipReason = "no commission recorded for week"
		return result
	}
	result.SalesCount = total.SalesCount
	result.CommissionTotal = total.CommissionTotal

	invoice, err := s.runWorkflow(ctx, store, weekID, invoicedomain.InvoiceTypeWeekly, total.CommissionTotal, total.SalesCount, nil)
	if err != nil {
		log.Error("weekly invoice workflow failed", zap.Error(err))
		result.Error = err.Error()
		return result
	}

	result.InvoiceID = invoice.ID
	result.ExternalID = invoice.ExternalID
	result.Status = invoice.Status
	return result
}

func (s *Service) Reconcile(ctx context.Context, storeID snowflake.ID, weekID string) (invoicedomain.ReconcileResult, error) {
	result := invoicedomain.ReconcileResult{StoreID: storeID, WeekID: weekID}
	if _, _, err := money.WeekBounds(weekID); err != nil {
		return result, invoicedomain.ErrInvalidWeekID
	}

	original, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{
		StoreID: storeID,
		WeekID:  weekID,
		Type:    invoicedomain.InvoiceTypeWeekly,
	})
	if err != nil {
		return result, err
	}
	if original == nil {
		return result, invoicedomain.ErrWeeklyInvoiceNotFound
	}
	result.OriginalInvoiceID = original.ID

	existing, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{
		StoreID: storeID,
		WeekID:  weekID,
		Type:    invoicedomain.InvoiceTypeSupplemental,
	})
	if err != nil {
		return result, err
	}
	if existing != nil {
		result.Skipped = true
		result.SkipReason = "supplemental invoice already exists"
		result.InvoiceID = existing.ID
		result.ExternalID = existing.ExternalID
		return result, nil
	}

	trueTotal, err := s.recorder.WeeklyTotal(ctx, storeID, weekID)
	if err != nil {
		return result, err
	}

	result.Delta = trueTotal.CommissionTotal - original.CommissionTotal
	result.DeltaSalesCount = trueTotal.SalesCount - original.SalesCount
	if result.Delta <= 0 {
		// Expected steady state once the week's sales have stabilized.
		result.Skipped = true
		result.SkipReason = "no supplemental needed"
		return result, nil
	}

	store, err := s.stores.GetByID(ctx, storeID)
	if err != nil {
		return result, err
	}

	originalID := original.ID
	invoice, err := s.runWorkflow(ctx, store, weekID, invoicedomain.InvoiceTypeSupplemental, result.Delta, result.DeltaSalesCount, &originalID)
	if err != nil {
		return result, err
	}

	result.InvoiceID = invoice.ID
	result.ExternalID = invoice.ExternalID
	result.Status = invoice.Status
	return result, nil
}

// runWorkflow drives the external invoicing state machine:
//
//	NotStarted → DraftCreated → ItemAttached → AmountVerified →
//	Finalized → (Paid | Open)
//
// A failure in any step before finalize aborts with no persisted row and
// no charge. A payment failure after finalize still persists the row:
// the invoice exists externally and must be tracked even when unpaid.
func (s *Service) runWorkflow(
	ctx context.Context,
	store *storedomain.Store,
	weekID string,
	invoiceType invoicedomain.InvoiceType,
	amountMinor int64,
	salesCount int64,
	originalID *snowflake.ID,
) (*invoicedomain.Invoice, error) {
	if strings.TrimSpace(store.StripeCustomerID) == "" {
		return nil, invoicedomain.ErrNoCustomerRef
	}
	weekStart, weekEnd, err := money.WeekBounds(weekID)
	if err != nil {
		return nil, invoicedomain.ErrInvalidWeekID
	}

	log := s.log.With(
		zap.String("store_id", store.ID.String()),
		zap.String("week_id", weekID),
		zap.String("invoice_type", string(invoiceType)),
	)

	metadata := map[string]string{
		"store_id": store.ID.String(),
		"week_id":  weekID,
		"type":     strings.ToLower(string(invoiceType)),
	}
	if originalID != nil {
		metadata["original_invoice_id"] = originalID.String()
	}

	draft, err := s.billing.CreateDraftInvoice(ctx, store.StripeCustomerID, metadata)
	if err != nil {
		return nil, fmt.Errorf("create draft: %w", err)
	}

	description := fmt.Sprintf("Shipping protection commission for week %s (%d sales)", weekID, salesCount)
	if invoiceType == invoicedomain.InvoiceTypeSupplemental && originalID != nil {
		description = fmt.Sprintf("Supplemental shipping protection commission for week %s (%d late sales, original invoice %s)",
			weekID, salesCount, originalID.String())
	}
	if err := s.billing.AddInvoiceItem(ctx, store.StripeCustomerID, draft.ID, amountMinor, "USD", description); err != nil {
		return nil, fmt.Errorf("attach item to %s: %w", draft.ID, err)
	}

	verified, err := s.billing.GetInvoice(ctx, draft.ID)
	if err != nil {
		return nil, fmt.Errorf("verify amount on %s: %w", draft.ID, err)
	}
	if verified.AmountDue == 0 {
		log.Error("draft invoice has zero amount due after item attach",
			zap.String("external_id", draft.ID),
			zap.Int64("expected_amount", amountMinor),
		)
		return nil, invoicedomain.ErrZeroAmountInvoice
	}

	finalized, err := s.billing.FinalizeInvoice(ctx, draft.ID)
	if err != nil {
		return nil, fmt.Errorf("finalize %s: %w", draft.ID, err)
	}

	status := invoicedomain.InvoiceStatusOpen
	var paidAt *time.Time
	external := finalized

	paymentMethod, err := s.billing.DefaultPaymentMethod(ctx, store.StripeCustomerID)
	if err != nil {
		log.Warn("payment method lookup failed, leaving invoice open", zap.Error(err))
		paymentMethod = ""
	}
	if paymentMethod != "" {
		paid, payErr := s.billing.PayInvoice(ctx, finalized.ID)
		if payErr != nil {
			// The invoice exists externally; the processor's dunning
			// takes over from here.
			log.Warn("immediate charge failed, invoice left for dunning",
				zap.String("external_id", finalized.ID),
				zap.Error(payErr),
			)
		} else {
			external = paid
		}
	}

	if external.Paid {
		status = invoicedomain.InvoiceStatusPaid
	} else if external.Status != "" {
		status = mapExternalStatus(external.Status)
	}
	if external.PaidAt != nil {
		t := *external.PaidAt
		paidAt = &t
	}

	now := s.clock.Now()
	row := invoicedomain.Invoice{
		ID:                s.genID.Generate(),
		StoreID:           store.ID,
		Type:              invoiceType,
		WeekID:            weekID,
		WeekStart:         weekStart,
		WeekEnd:           weekEnd,
		SalesCount:        salesCount,
		CommissionTotal:   amountMinor,
		ExternalID:        external.ID,
		Status:            status,
		PaidAt:            paidAt,
		OriginalInvoiceID: originalID,
		Metadata: datatypes.JSONMap{
			"hosted_invoice_url": external.HostedInvoiceURL,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.invoicerepo.Create(ctx, &row); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// A concurrent run persisted first. The external invoice it
			// created is the tracked one; surface the conflict.
			return nil, invoicedomain.ErrSupplementalExists
		}
		return nil, fmt.Errorf("persist invoice row for %s: %w", external.ID, err)
	}

	log.Info("invoice workflow finished",
		zap.String("external_id", external.ID),
		zap.String("status", string(status)),
		zap.Int64("commission_total", amountMinor),
		zap.Int64("sales_count", salesCount),
	)
	return &row, nil
}

func mapExternalStatus(status string) invoicedomain.InvoiceStatus {
	switch strings.ToLower(status) {
	case "paid":
		return invoicedomain.InvoiceStatusPaid
	case "draft":
		return invoicedomain.InvoiceStatusDraft
	case "uncollectible":
		return invoicedomain.InvoiceStatusUncollectible
	case "void":
		return invoicedomain.InvoiceStatusVoid
	default:
		return invoicedomain.InvoiceStatusOpen
	}
}
