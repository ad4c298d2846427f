// Package protection decides whether a storefront line item is the
// tenant's shipping-protection product.
//
// Two strategies run in parallel and a line item matches if either does.
// Merchants rename storefront products, which breaks ID matching; SKU
// noise breaks substring matching; the OR of both closes the gaps either
// alone would miss. A false negative silently loses revenue tracking, so
// recall wins over precision here.
package protection

import (
	"strings"

	"github.com/smallbiznis/shipguard/internal/shopify"
)

// MatchByID reports whether the line item's product id equals the id
// pre-resolved from the tenant's configured handle. A zero resolvedID
// means resolution failed for this run and the strategy is unavailable.
func MatchByID(item shopify.LineItem, resolvedID int64) bool {
	if resolvedID == 0 || item.ProductID == 0 {
		return false
	}
	return item.ProductID == resolvedID
}

// MatchByContent reports whether the configured handle appears in the
// line item's SKU, title, or name, case-insensitively.
func MatchByContent(item shopify.LineItem, handle string) bool {
	needle := strings.ToLower(strings.TrimSpace(handle))
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(item.SKU), needle) ||
		strings.Contains(strings.ToLower(item.Title), needle) ||
		strings.Contains(strings.ToLower(item.Name), needle)
}

// IsProtectionItem combines both strategies with OR semantics.
func IsProtectionItem(item shopify.LineItem, handle string, resolvedID int64) bool {
	return MatchByID(item, resolvedID) || MatchByContent(item, handle)
}

// FindProtectionItem returns the first matching line item of an order.
// One order contributes at most one sale even if several items qualify.
func FindProtectionItem(order shopify.Order, handle string, resolvedID int64) (shopify.LineItem, bool) {
	for _, item := range order.LineItems {
		if IsProtectionItem(item, handle, resolvedID) {
			return item, true
		}
	}
	return shopify.LineItem{}, false
}
