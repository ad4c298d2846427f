// Package fxrate resolves spot exchange rates into USD.
package fxrate

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrRateUnavailable = errors.New("fx_rate_unavailable")

// Rate is a spot conversion rate into USD together with its quote time.
type Rate struct {
	Currency string
	Value    float64
	AsOf     time.Time
}

// Provider looks up the USD conversion rate for a currency. A failed
// lookup must surface as an error; the pipeline never records an
// unconverted amount as if it were USD.
type Provider interface {
	Rate(ctx context.Context, currency string) (Rate, error)
}

// StaticProvider serves a fixed rate table. Used in development and tests.
type StaticProvider struct {
	rates map[string]float64
}

func NewStaticProvider(rates map[string]float64) *StaticProvider {
	normalized := make(map[string]float64, len(rates))
	for currency, value := range rates {
		normalized[strings.ToUpper(strings.TrimSpace(currency))] = value
	}
	return &StaticProvider{rates: normalized}
}

func (p *StaticProvider) Rate(ctx context.Context, currency string) (Rate, error) {
	code := strings.ToUpper(strings.TrimSpace(currency))
	if code == "USD" {
		return Rate{Currency: "USD", Value: 1, AsOf: time.Now().UTC()}, nil
	}
	value, ok := p.rates[code]
	if !ok {
		return Rate{}, ErrRateUnavailable
	}
	return Rate{Currency: code, Value: value, AsOf: time.Now().UTC()}, nil
}
