// Package shopify is a minimal Admin REST client covering the order and
// product surfaces the sync pipeline consumes.
package shopify

import "time"

// Credentials identifies one tenant's storefront.
type Credentials struct {
	Domain      string
	AccessToken string
}

// DateWindow is an inclusive UTC window over order creation time.
type DateWindow struct {
	Start time.Time
	End   time.Time
}

// LineItem is one row of an order.
type LineItem struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Order is a storefront order as returned by the order-list endpoint.
type Order struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Currency  string     `json:"currency"`
	CreatedAt time.Time  `json:"created_at"`
	LineItems []LineItem `json:"line_items"`
}

// Product is the subset of the product resource needed for handle
// resolution.
type Product struct {
	ID     int64  `json:"id"`
	Handle string `json:"handle"`
	Title  string `json:"title"`
}
