// Package server exposes the admin entry points for schedulers and
// tooling: manual sync, weekly invoicing, and supplemental
// reconciliation.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/shipguard/internal/config"
	invoicedomain "github.com/smallbiznis/shipguard/internal/invoice/domain"
	"github.com/smallbiznis/shipguard/internal/sync"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type ServerParam struct {
	fx.In

	Engine       *gin.Engine
	Log          *zap.Logger
	Orchestrator *sync.Orchestrator
	InvoiceSvc   invoicedomain.Service
}

type Server struct {
	engine       *gin.Engine
	log          *zap.Logger
	orchestrator *sync.Orchestrator
	invoiceSvc   invoicedomain.Service
}

func NewEngine(log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}

func NewServer(p ServerParam) *Server {
	s := &Server{
		engine:       p.Engine,
		log:          p.Log.Named("server"),
		orchestrator: p.Orchestrator,
		invoiceSvc:   p.InvoiceSvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")
	v1.POST("/sync", s.handleSync)
	v1.POST("/invoices/weekly", s.handleWeeklyInvoices)
	v1.POST("/invoices/supplemental", s.handleSupplementalInvoice)
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	logger := log.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func run(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(*Server) {}),
	fx.Invoke(run),
)
