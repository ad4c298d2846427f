package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// DefaultProtectionHandle is the fallback product handle when a tenant has
// not configured one.
const DefaultProtectionHandle = "shipping-protection"

// DefaultCommissionPercent is the commission applied to stores created
// before the rate became configurable.
const DefaultCommissionPercent = 25.0

type Service interface {
	GetByID(ctx context.Context, id snowflake.ID) (*Store, error)
	// ListEligible returns stores with an active subscription and a
	// usable storefront API credential.
	ListEligible(ctx context.Context) ([]*Store, error)
	// ProtectionHandle resolves the tenant's configured protection
	// product handle, falling back to DefaultProtectionHandle.
	ProtectionHandle(ctx context.Context, storeID snowflake.ID) (string, error)
}

var (
	ErrStoreNotFound = errors.New("store_not_found")
)
