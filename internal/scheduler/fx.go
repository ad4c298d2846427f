package scheduler

import (
	"context"

	appconfig "github.com/smallbiznis/shipguard/internal/config"
	"go.uber.org/fx"
)

func NewConfig(cfg appconfig.Config) Config {
	c := DefaultConfig()
	c.SyncDaysBack = cfg.SyncDaysBack
	return c
}

var Module = fx.Module("scheduler",
	fx.Provide(NewConfig),
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, s *Scheduler) {
		ctx, cancel := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go s.RunForever(ctx)
				return nil
			},
			OnStop: func(context.Context) error {
				cancel()
				return nil
			},
		})
	}),
)
