package sync

import (
	"time"

	"github.com/smallbiznis/shipguard/internal/config"
	"github.com/smallbiznis/shipguard/internal/shopify"
	"go.uber.org/fx"
)

func NewConfig(cfg config.Config) Config {
	return Config{
		Workers: cfg.SyncWorkers,
		Pacing:  time.Duration(cfg.SyncPacingMS) * time.Millisecond,
	}
}

func NewOrderSource(client *shopify.Client) OrderSource {
	return client
}

var Module = fx.Module("sync.orchestrator",
	fx.Provide(NewConfig),
	fx.Provide(NewOrderSource),
	fx.Provide(NewOrchestrator),
)
