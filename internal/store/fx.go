package store

import (
	"github.com/smallbiznis/shipguard/internal/store/service"
	"go.uber.org/fx"
)

var Module = fx.Module("store.service",
	fx.Provide(service.NewService),
)
