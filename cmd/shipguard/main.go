package main

import (
	"log"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/shipguard/internal/billing"
	"github.com/smallbiznis/shipguard/internal/clock"
	"github.com/smallbiznis/shipguard/internal/config"
	"github.com/smallbiznis/shipguard/internal/fxrate"
	"github.com/smallbiznis/shipguard/internal/invoice"
	"github.com/smallbiznis/shipguard/internal/logger"
	"github.com/smallbiznis/shipguard/internal/migration"
	"github.com/smallbiznis/shipguard/internal/sale"
	"github.com/smallbiznis/shipguard/internal/scheduler"
	"github.com/smallbiznis/shipguard/internal/server"
	"github.com/smallbiznis/shipguard/internal/shopify"
	"github.com/smallbiznis/shipguard/internal/store"
	syncmod "github.com/smallbiznis/shipguard/internal/sync"
	"github.com/smallbiznis/shipguard/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Domain
		store.Module,
		fxrate.Module,
		shopify.Module,
		sale.Module,
		syncmod.Module,
		billing.Module,
		invoice.Module,

		// Surfaces
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		log.Fatalf("snowflake node: %v", err)
	}
	return node
}
