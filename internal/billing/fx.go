package billing

import (
	billingdomain "github.com/smallbiznis/shipguard/internal/billing/domain"
	"github.com/smallbiznis/shipguard/internal/billing/stripe"
	"github.com/smallbiznis/shipguard/internal/config"
	"go.uber.org/fx"
)

func NewClient(cfg config.Config) billingdomain.Client {
	return stripe.NewClient(cfg.StripeAPIKey, cfg.StripeBaseURL)
}

var Module = fx.Module("billing.client",
	fx.Provide(NewClient),
)
