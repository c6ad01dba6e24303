// Package server exposes batches and the record store over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/workorders-tracker/internal/export"
	"github.com/joseph-ayodele/workorders-tracker/internal/pipeline"
	"github.com/joseph-ayodele/workorders-tracker/internal/repository"
	"github.com/joseph-ayodele/workorders-tracker/internal/session"
)

// BatchRunner extracts one batch from uploaded documents.
type BatchRunner interface {
	Run(ctx context.Context, docs []pipeline.Document, progress pipeline.Progress) pipeline.Batch
}

type Server struct {
	runner   BatchRunner
	gateway  *repository.Gateway
	sessions session.Store
	exporter *export.Service
	logger   *slog.Logger
}

func NewServer(runner BatchRunner, gateway *repository.Gateway, sessions session.Store, exporter *export.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if gateway == nil {
		gateway = repository.NewGateway(nil)
	}
	if exporter == nil {
		exporter = export.NewService(logger)
	}
	return &Server{runner: runner, gateway: gateway, sessions: sessions, exporter: exporter, logger: logger}
}

// Handler builds the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(s.logger))

	api := r.Group("/api")
	api.GET("/config", s.getConfig)

	batches := api.Group("/batches", sessionID())
	batches.POST("", s.createBatch)
	batches.GET("/current", s.getBatch)
	batches.PUT("/current/records", s.updateRecords)
	batches.DELETE("/current", s.deleteBatch)
	batches.GET("/current/export", s.exportBatch)
	batches.POST("/current/save", s.saveBatch)

	orders := api.Group("/work-orders")
	orders.GET("", s.listWorkOrders)
	orders.GET("/export", s.exportWorkOrders)
	orders.GET("/distinct/:field", s.distinctValues)

	return r
}
