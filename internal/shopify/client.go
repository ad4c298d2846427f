package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	pageSize = 250
	// maxPages bounds a single sync's pagination as a runaway-loop guard.
	// Truncation is tolerable: sync windows overlap, so the next cycle
	// picks up whatever this one missed.
	maxPages = 20
)

var nextLinkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

type Client struct {
	client     *http.Client
	apiVersion string
	log        *zap.Logger

	// baseURL overrides the per-store https endpoint. Test hook only.
	baseURL string
}

func NewClient(apiVersion string, log *zap.Logger) *Client {
	return &Client{
		client:     &http.Client{Timeout: 30 * time.Second},
		apiVersion: apiVersion,
		log:        log.Named("shopify.client"),
	}
}

// NewClientWithBaseURL builds a client pinned to a fixed endpoint instead
// of the store domain. Used by tests against an httptest server.
func NewClientWithBaseURL(baseURL string, apiVersion string, log *zap.Logger) *Client {
	c := NewClient(apiVersion, log)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

func (c *Client) endpoint(creds Credentials, resource string) string {
	base := c.baseURL
	if base == "" {
		base = "https://" + creds.Domain
	}
	return fmt.Sprintf("%s/admin/api/%s/%s", base, c.apiVersion, resource)
}

type ordersResponse struct {
	Orders []Order `json:"orders"`
}

type productsResponse struct {
	Products []Product `json:"products"`
}

// ListOrders pulls all orders created inside the window, following the
// Link-header cursor up to maxPages. On a non-success response it returns
// the orders collected so far together with the error, so callers can
// treat the run as a partial rather than a total failure.
func (c *Client) ListOrders(ctx context.Context, creds Credentials, window DateWindow) ([]Order, error) {
	collected := make([]Order, 0, pageSize)
	page := firstPage(window)

	for pageCount := 0; ; pageCount++ {
		if pageCount >= maxPages {
			c.log.Warn("order pagination cap hit before exhausting pages",
				zap.String("store_domain", creds.Domain),
				zap.Int("max_pages", maxPages),
				zap.Int("orders_collected", len(collected)),
			)
			return collected, nil
		}

		body, header, err := c.get(ctx, creds, "orders.json", page.query(pageSize))
		if err != nil {
			return collected, fmt.Errorf("list orders page %d: %w", pageCount+1, err)
		}

		var payload ordersResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			return collected, fmt.Errorf("decode orders page %d: %w", pageCount+1, err)
		}
		collected = append(collected, payload.Orders...)

		cursor := nextCursor(header)
		if cursor == "" {
			return collected, nil
		}
		page = nextPage(cursor)
	}
}

// ResolveProductID looks up the numeric product id behind a handle. A
// missing handle returns (0, nil): exact-ID matching is simply unavailable
// for the run, which is not an error.
func (c *Client) ResolveProductID(ctx context.Context, creds Credentials, handle string) (int64, error) {
	values := firstProductQuery(handle)
	body, _, err := c.get(ctx, creds, "products.json", values)
	if err != nil {
		return 0, fmt.Errorf("resolve product handle %q: %w", handle, err)
	}

	var payload productsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, fmt.Errorf("decode products for handle %q: %w", handle, err)
	}
	for _, product := range payload.Products {
		if strings.EqualFold(product.Handle, handle) {
			return product.ID, nil
		}
	}
	return 0, nil
}

func (c *Client) get(ctx context.Context, creds Credentials, resource string, values map[string][]string) ([]byte, http.Header, error) {
	endpoint := c.endpoint(creds, resource)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, err
	}
	query := req.URL.Query()
	for key, list := range values {
		for _, value := range list {
			query.Add(key, value)
		}
	}
	req.URL.RawQuery = query.Encode()
	req.Header.Set("X-Shopify-Access-Token", creds.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, nil, fmt.Errorf("storefront responded %d: %s", resp.StatusCode, truncate(string(body), 256))
	}
	return body, resp.Header, nil
}

// nextCursor extracts the page_info token from a Link response header.
func nextCursor(header http.Header) string {
	link := header.Get("Link")
	if link == "" {
		return ""
	}
	match := nextLinkPattern.FindStringSubmatch(link)
	if match == nil {
		return ""
	}
	parsed := match[1]
	idx := strings.Index(parsed, "page_info=")
	if idx < 0 {
		return ""
	}
	token := parsed[idx+len("page_info="):]
	if amp := strings.IndexByte(token, '&'); amp >= 0 {
		token = token[:amp]
	}
	return token
}

func firstProductQuery(handle string) map[string][]string {
	return map[string][]string{
		"handle": {handle},
		"limit":  {"1"},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
