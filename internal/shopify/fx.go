package shopify

import (
	"github.com/smallbiznis/shipguard/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewClientFromConfig(cfg config.Config, log *zap.Logger) *Client {
	return NewClient(cfg.ShopifyAPIVersion, log)
}

var Module = fx.Module("shopify.client",
	fx.Provide(NewClientFromConfig),
)
