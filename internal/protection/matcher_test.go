package protection

import (
	"testing"

	"github.com/smallbiznis/shipguard/internal/shopify"
)

const handle = "shipping-protection"

func TestMatchByID(t *testing.T) {
	item := shopify.LineItem{ProductID: 1234}

	if !MatchByID(item, 1234) {
		t.Error("expected match on equal product id")
	}
	if MatchByID(item, 5678) {
		t.Error("unexpected match on different product id")
	}
	if MatchByID(item, 0) {
		t.Error("zero resolved id must never match")
	}
	if MatchByID(shopify.LineItem{}, 1234) {
		t.Error("zero item product id must never match")
	}
}

func TestMatchByContent(t *testing.T) {
	cases := []struct {
		name string
		item shopify.LineItem
		want bool
	}{
		{"sku exact", shopify.LineItem{SKU: "shipping-protection"}, true},
		{"sku with suffix", shopify.LineItem{SKU: "SHIPPING-PROTECTION-STD"}, true},
		{"title mixed case", shopify.LineItem{Title: "Shipping-Protection Plus"}, true},
		{"name field", shopify.LineItem{Name: "shipping-protection"}, true},
		{"unrelated item", shopify.LineItem{SKU: "TSHIRT-L", Title: "T-Shirt"}, false},
		{"empty item", shopify.LineItem{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MatchByContent(tc.item, handle); got != tc.want {
				t.Errorf("MatchByContent = %v, want %v", got, tc.want)
			}
		})
	}

	if MatchByContent(shopify.LineItem{SKU: "shipping-protection"}, "") {
		t.Error("empty handle must never match")
	}
}

func TestIsProtectionItemEitherStrategySuffices(t *testing.T) {
	// ID matches, content does not: renamed product.
	renamed := shopify.LineItem{ProductID: 1234, Title: "Package Guard", SKU: "PG-1"}
	if !IsProtectionItem(renamed, handle, 1234) {
		t.Error("expected match by id when content differs")
	}

	// Content matches, ID resolution unavailable.
	unresolved := shopify.LineItem{ProductID: 9, SKU: "SHIPPING-PROTECTION-STD"}
	if !IsProtectionItem(unresolved, handle, 0) {
		t.Error("expected match by content when id unresolved")
	}

	if IsProtectionItem(shopify.LineItem{ProductID: 9, SKU: "TSHIRT"}, handle, 1234) {
		t.Error("unexpected match when neither strategy hits")
	}
}

func TestFindProtectionItemFirstMatchWins(t *testing.T) {
	order := shopify.Order{
		LineItems: []shopify.LineItem{
			{ID: 1, SKU: "TSHIRT-L"},
			{ID: 2, SKU: "SHIPPING-PROTECTION-STD", Price: "4.90"},
			{ID: 3, Title: "Shipping-Protection Deluxe", Price: "9.90"},
		},
	}

	item, ok := FindProtectionItem(order, handle, 0)
	if !ok {
		t.Fatal("expected a protection item")
	}
	if item.ID != 2 {
		t.Errorf("matched item id = %d, want first match 2", item.ID)
	}

	_, ok = FindProtectionItem(shopify.Order{LineItems: []shopify.LineItem{{SKU: "TSHIRT"}}}, handle, 0)
	if ok {
		t.Error("expected no match for order without protection items")
	}
}
