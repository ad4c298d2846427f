package fxrate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// HTTPProvider fetches spot rates from an open exchange-rate API and
// caches them briefly so one sync run issues at most one lookup per
// currency.
type HTTPProvider struct {
	baseURL string
	client  *http.Client

	mu     sync.Mutex
	cache  map[string]Rate
	maxAge time.Duration
}

func NewHTTPProvider(baseURL string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		cache:   make(map[string]Rate),
		maxAge:  15 * time.Minute,
	}
}

type rateResponse struct {
	Result string             `json:"result"`
	Rates  map[string]float64 `json:"rates"`
}

func (p *HTTPProvider) Rate(ctx context.Context, currency string) (Rate, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "USD" {
		return Rate{Currency: "USD", Value: 1, AsOf: time.Now().UTC()}, nil
	}

	p.mu.Lock()
	cached, ok := p.cache[code]
	p.mu.Unlock()
	if ok && time.Since(cached.AsOf) < p.maxAge {
		return cached, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/latest/%s", p.baseURL, code), nil)
	if err != nil {
		return Rate{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Rate{}, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Rate{}, fmt.Errorf("%w: status %d", ErrRateUnavailable, resp.StatusCode)
	}

	var payload rateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Rate{}, fmt.Errorf("%w: %v", ErrRateUnavailable, err)
	}
	value, ok := payload.Rates["USD"]
	if !ok || value <= 0 {
		return Rate{}, ErrRateUnavailable
	}

	rate := Rate{Currency: code, Value: value, AsOf: time.Now().UTC()}
	p.mu.Lock()
	p.cache[code] = rate
	p.mu.Unlock()
	return rate, nil
}
