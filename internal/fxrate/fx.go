package fxrate

import (
	"github.com/smallbiznis/shipguard/internal/config"
	"go.uber.org/fx"
)

func NewProvider(cfg config.Config) Provider {
	if cfg.FXProvider == "http" {
		return NewHTTPProvider(cfg.FXBaseURL)
	}
	return NewStaticProvider(defaultRates)
}

// Fallback table for development mode. Production deployments run with
// FX_PROVIDER=http.
var defaultRates = map[string]float64{
	"EUR": 1.08,
	"GBP": 1.27,
	"CAD": 0.73,
	"AUD": 0.66,
	"JPY": 0.0067,
}

var Module = fx.Module("fxrate",
	fx.Provide(NewProvider),
)
