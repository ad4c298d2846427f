// Package stripe implements the billing client against the Stripe
// invoicing API using form-encoded requests.
package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	billingdomain "github.com/smallbiznis/shipguard/internal/billing/domain"
)

type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 12 * time.Second},
	}
}

type stripeInvoice struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	AmountDue         int64  `json:"amount_due"`
	Currency          string `json:"currency"`
	HostedInvoiceURL  string `json:"hosted_invoice_url"`
	Paid              bool   `json:"paid"`
	StatusTransitions struct {
		PaidAt int64 `json:"paid_at"`
	} `json:"status_transitions"`
}

type stripeSubscription struct {
	ID                   string `json:"id"`
	Status               string `json:"status"`
	DefaultPaymentMethod string `json:"default_payment_method"`
}

type stripeListResponse[T any] struct {
	Data []T `json:"data"`
}

type stripeErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) CreateDraftInvoice(ctx context.Context, customerID string, metadata map[string]string) (billingdomain.ExternalInvoice, error) {
	values := url.Values{}
	values.Set("customer", customerID)
	values.Set("collection_method", "charge_automatically")
	// Drafts must not auto-advance: the workflow verifies the amount due
	// before anything is finalized or charged.
	values.Set("auto_advance", "false")
	keys := make([]string, 0, len(metadata))
	for key := range metadata {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		values.Set(fmt.Sprintf("metadata[%s]", key), metadata[key])
	}

	invoice, err := c.doInvoiceRequest(ctx, http.MethodPost, "/v1/invoices", values)
	if err != nil {
		return billingdomain.ExternalInvoice{}, fmt.Errorf("create draft invoice: %w", err)
	}
	return invoice, nil
}

func (c *Client) AddInvoiceItem(ctx context.Context, customerID, invoiceID string, amountMinor int64, currency, description string) error {
	values := url.Values{}
	values.Set("customer", customerID)
	values.Set("invoice", invoiceID)
	values.Set("amount", strconv.FormatInt(amountMinor, 10))
	values.Set("currency", strings.ToLower(currency))
	values.Set("description", description)

	if _, err := c.doRequest(ctx, http.MethodPost, "/v1/invoiceitems", values); err != nil {
		return fmt.Errorf("attach invoice item: %w", err)
	}
	return nil
}

func (c *Client) GetInvoice(ctx context.Context, invoiceID string) (billingdomain.ExternalInvoice, error) {
	invoice, err := c.doInvoiceRequest(ctx, http.MethodGet, "/v1/invoices/"+invoiceID, nil)
	if err != nil {
		return billingdomain.ExternalInvoice{}, fmt.Errorf("retrieve invoice %s: %w", invoiceID, err)
	}
	return invoice, nil
}

func (c *Client) FinalizeInvoice(ctx context.Context, invoiceID string) (billingdomain.ExternalInvoice, error) {
	invoice, err := c.doInvoiceRequest(ctx, http.MethodPost, "/v1/invoices/"+invoiceID+"/finalize", url.Values{})
	if err != nil {
		return billingdomain.ExternalInvoice{}, fmt.Errorf("finalize invoice %s: %w", invoiceID, err)
	}
	return invoice, nil
}

func (c *Client) PayInvoice(ctx context.Context, invoiceID string) (billingdomain.ExternalInvoice, error) {
	invoice, err := c.doInvoiceRequest(ctx, http.MethodPost, "/v1/invoices/"+invoiceID+"/pay", url.Values{})
	if err != nil {
		return billingdomain.ExternalInvoice{}, fmt.Errorf("%w: invoice %s: %v", billingdomain.ErrPaymentFailed, invoiceID, err)
	}
	return invoice, nil
}

func (c *Client) DefaultPaymentMethod(ctx context.Context, customerID string) (string, error) {
	values := url.Values{}
	values.Set("customer", customerID)
	values.Set("status", "active")
	values.Set("limit", "1")

	body, err := c.doRequest(ctx, http.MethodGet, "/v1/subscriptions?"+values.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("lookup subscription for customer %s: %w", customerID, err)
	}

	var list stripeListResponse[stripeSubscription]
	if err := json.Unmarshal(body, &list); err != nil {
		return "", err
	}
	if len(list.Data) == 0 {
		return "", nil
	}
	return list.Data[0].DefaultPaymentMethod, nil
}

func (c *Client) doInvoiceRequest(ctx context.Context, method, path string, values url.Values) (billingdomain.ExternalInvoice, error) {
	body, err := c.doRequest(ctx, method, path, values)
	if err != nil {
		return billingdomain.ExternalInvoice{}, err
	}

	var invoice stripeInvoice
	if err := json.Unmarshal(body, &invoice); err != nil {
		return billingdomain.ExternalInvoice{}, err
	}
	return toExternal(invoice), nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, values url.Values) ([]byte, error) {
	if c.apiKey == "" {
		return nil, billingdomain.ErrInvalidConfig
	}

	var bodyReader *strings.Reader
	if values != nil {
		bodyReader = strings.NewReader(values.Encode())
	} else {
		bodyReader = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var stripeErr stripeErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&stripeErr); err == nil && stripeErr.Error.Message != "" {
			return nil, fmt.Errorf("stripe %d: %s", resp.StatusCode, stripeErr.Error.Message)
		}
		return nil, fmt.Errorf("stripe %d", resp.StatusCode)
	}

	var out []byte
	decoder := json.NewDecoder(resp.Body)
	var raw json.RawMessage
	if err := decoder.Decode(&raw); err != nil {
		return nil, errors.New("invalid stripe response body")
	}
	out = raw
	return out, nil
}

func toExternal(invoice stripeInvoice) billingdomain.ExternalInvoice {
	out := billingdomain.ExternalInvoice{
		ID:               invoice.ID,
		Status:           invoice.Status,
		AmountDue:        invoice.AmountDue,
		Currency:         strings.ToUpper(invoice.Currency),
		HostedInvoiceURL: invoice.HostedInvoiceURL,
		Paid:             invoice.Paid,
	}
	if invoice.StatusTransitions.PaidAt > 0 {
		paidAt := time.Unix(invoice.StatusTransitions.PaidAt, 0).UTC()
		out.PaidAt = &paidAt
	}
	return out
}
