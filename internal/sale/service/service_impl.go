package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/shipguard/internal/config"
	"github.com/smallbiznis/shipguard/internal/fxrate"
	"github.com/smallbiznis/shipguard/internal/money"
	saledomain "github.com/smallbiznis/shipguard/internal/sale/domain"
	"github.com/smallbiznis/shipguard/internal/shopify"
	storedomain "github.com/smallbiznis/shipguard/internal/store/domain"
	"github.com/smallbiznis/shipguard/pkg/db"
	"github.com/smallbiznis/shipguard/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	FXRates fxrate.Provider
	Billing *config.BillingConfigHolder
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID    *snowflake.Node
	fxRates  fxrate.Provider
	billing  *config.BillingConfigHolder
	salerepo repository.Repository[saledomain.Sale]
}

func NewService(p ServiceParam) saledomain.Recorder {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("sale.service"),
		genID: p.GenID,

		fxRates:  p.FXRates,
		billing:  p.Billing,
		salerepo: repository.ProvideStore[saledomain.Sale](p.DB),
	}
}

func (s *Service) Record(ctx context.Context, store *storedomain.Store, order shopify.Order, item shopify.LineItem) (saledomain.RecordResult, error) {
	orderID := strconv.FormatInt(order.ID, 10)

	existing, err := s.salerepo.FindOne(ctx, &saledomain.Sale{StoreID: store.ID, OrderID: orderID})
	if err != nil {
		return saledomain.RecordResult{}, fmt.Errorf("dedup check order %s: %w", orderID, err)
	}
	if existing != nil {
		return saledomain.RecordResult{Inserted: false, Sale: *existing}, nil
	}

	currency := strings.ToUpper(strings.TrimSpace(order.Currency))
	if currency == "" {
		currency = "USD"
	}

	rateUsed := 1.0
	if currency != "USD" {
		rate, err := s.fxRates.Rate(ctx, currency)
		if err != nil {
			// An unconverted amount must never land in the ledger as
			// if it were USD.
			return saledomain.RecordResult{}, fmt.Errorf("fx lookup %s for order %s: %w", currency, orderID, err)
		}
		rateUsed = rate.Value
	}

	price, err := money.ToUSDMinorUnits(item.Price, currency, rateUsed)
	if err != nil {
		return saledomain.RecordResult{}, fmt.Errorf("parse price %q for order %s: %w", item.Price, orderID, err)
	}

	feePercent := store.CommissionPercent
	if feePercent <= 0 {
		feePercent = s.billing.Get().DefaultCommissionPercent
	}

	orderCreated := order.CreatedAt.UTC()
	sale := saledomain.Sale{
		ID:              s.genID.Generate(),
		StoreID:         store.ID,
		OrderID:         orderID,
		OrderNumber:     order.Name,
		ProtectionPrice: price,
		Commission:      money.Commission(price, feePercent),
		FXRate:          rateUsed,
		Currency:        currency,
		MonthID:         money.MonthID(orderCreated),
		WeekID:          money.WeekID(orderCreated),
		OrderCreatedAt:  orderCreated,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.salerepo.Create(ctx, &sale); err != nil {
		if db.IsDuplicateKeyErr(err) {
			// A concurrent sync won the race; the row exists, so this
			// order is already-existing rather than failed.
			return saledomain.RecordResult{Inserted: false, Sale: sale}, nil
		}
		return saledomain.RecordResult{}, fmt.Errorf("insert sale for order %s: %w", orderID, err)
	}

	return saledomain.RecordResult{Inserted: true, Sale: sale}, nil
}

func (s *Service) WeeklyTotal(ctx context.Context, storeID snowflake.ID, weekID string) (saledomain.WeeklyTotal, error) {
	pageSize := s.billing.Get().AggregationPageSize

	var total saledomain.WeeklyTotal
	offset := 0
	for {
		page, err := s.salerepo.Find(ctx,
			&saledomain.Sale{StoreID: storeID, WeekID: weekID},
			repository.WithOrder("id"),
			repository.WithLimit(pageSize),
			repository.WithOffset(offset),
		)
		if err != nil {
			return saledomain.WeeklyTotal{}, fmt.Errorf("weekly total page at offset %d: %w", offset, err)
		}
		for _, sale := range page {
			if sale == nil {
				continue
			}
			total.SalesCount++
			total.CommissionTotal += sale.Commission
		}
		if len(page) < pageSize {
			return total, nil
		}
		offset += pageSize
	}
}
