package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	billingdomain "github.com/smallbiznis/shipguard/internal/billing/domain"
)

func TestCreateDraftInvoice(t *testing.T) {
	var gotForm map[string][]string
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/invoices" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = r.PostForm
		fmt.Fprint(w, `{"id":"in_001","status":"draft","amount_due":0,"currency":"usd"}`)
	}))
	defer server.Close()

	client := NewClient("sk_test_123", server.URL)
	invoice, err := client.CreateDraftInvoice(context.Background(), "cus_123", map[string]string{
		"week_id": "2024-W07",
		"type":    "weekly",
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	if invoice.ID != "in_001" || invoice.Status != "draft" {
		t.Errorf("invoice = %+v", invoice)
	}

	if gotAuth != "Bearer sk_test_123" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if got := gotForm["customer"]; len(got) != 1 || got[0] != "cus_123" {
		t.Errorf("customer = %v", got)
	}
	if got := gotForm["auto_advance"]; len(got) != 1 || got[0] != "false" {
		t.Errorf("auto_advance = %v, drafts must not auto-advance", got)
	}
	if got := gotForm["metadata[week_id]"]; len(got) != 1 || got[0] != "2024-W07" {
		t.Errorf("metadata[week_id] = %v", got)
	}
}

func TestAddInvoiceItem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/invoiceitems" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if got := r.PostForm.Get("amount"); got != "1230" {
			t.Errorf("amount = %q, want 1230", got)
		}
		if got := r.PostForm.Get("currency"); got != "usd" {
			t.Errorf("currency = %q, want lowercase usd", got)
		}
		if got := r.PostForm.Get("invoice"); got != "in_001" {
			t.Errorf("invoice = %q", got)
		}
		fmt.Fprint(w, `{"id":"ii_001"}`)
	}))
	defer server.Close()

	client := NewClient("sk_test_123", server.URL)
	if err := client.AddInvoiceItem(context.Background(), "cus_123", "in_001", 1230, "USD", "commission"); err != nil {
		t.Fatalf("add item: %v", err)
	}
}

func TestPayInvoiceFailureWrapsErrPaymentFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		fmt.Fprint(w, `{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`)
	}))
	defer server.Close()

	client := NewClient("sk_test_123", server.URL)
	_, err := client.PayInvoice(context.Background(), "in_001")
	if !errors.Is(err, billingdomain.ErrPaymentFailed) {
		t.Fatalf("error = %v, want ErrPaymentFailed", err)
	}
	if !strings.Contains(err.Error(), "declined") {
		t.Errorf("error = %v, want processor message preserved", err)
	}
}

func TestDefaultPaymentMethod(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/subscriptions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("status"); got != "active" {
			t.Errorf("status = %q", got)
		}
		fmt.Fprint(w, `{"data":[{"id":"sub_001","status":"active","default_payment_method":"pm_123"}]}`)
	}))
	defer server.Close()

	client := NewClient("sk_test_123", server.URL)
	pm, err := client.DefaultPaymentMethod(context.Background(), "cus_123")
	if err != nil {
		t.Fatalf("default payment method: %v", err)
	}
	if pm != "pm_123" {
		t.Errorf("payment method = %q, want pm_123", pm)
	}
}

func TestDefaultPaymentMethodNoneOnFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":[]}`)
	}))
	defer server.Close()

	client := NewClient("sk_test_123", server.URL)
	pm, err := client.DefaultPaymentMethod(context.Background(), "cus_123")
	if err != nil {
		t.Fatalf("expected no error for empty subscription list, got %v", err)
	}
	if pm != "" {
		t.Errorf("payment method = %q, want empty", pm)
	}
}

func TestMissingAPIKey(t *testing.T) {
	client := NewClient("", "https://api.stripe.com")
	_, err := client.GetInvoice(context.Background(), "in_001")
	if !errors.Is(err, billingdomain.ErrInvalidConfig) {
		t.Fatalf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestGetInvoiceMapsPaidAt(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"id":"in_001","status":"paid","amount_due":1230,"currency":"usd","paid":true,"status_transitions":{"paid_at":1708322400}}`)
	}))
	defer server.Close()

	client := NewClient("sk_test_123", server.URL)
	invoice, err := client.GetInvoice(context.Background(), "in_001")
	if err != nil {
		t.Fatalf("get invoice: %v", err)
	}
	if !invoice.Paid || invoice.PaidAt == nil {
		t.Fatalf("invoice = %+v, want paid with timestamp", invoice)
	}
	if invoice.Currency != "USD" {
		t.Errorf("currency = %q, want USD", invoice.Currency)
	}
}
