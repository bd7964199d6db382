// Package http is the thin HTTP adapter over the approval and department
// services.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vittalogic/approval-engine/internal/report"
	"github.com/vittalogic/approval-engine/internal/service"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	logger     *zap.Logger
}

// NewServer creates the HTTP server and wires all routes
func NewServer(
	config ServerConfig,
	approvalService service.ApprovalService,
	departmentService service.DepartmentService,
	exporter *report.BudgetExporter,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		config: config,
		router: router,
		logger: logger,
	}
	router.Use(server.loggingMiddleware())

	handlers := NewHandlers(approvalService, departmentService, exporter, logger)

	router.GET("/health", handlers.HealthCheck)

	router.POST("/approval", handlers.SubmitApproval)
	router.GET("/approval", handlers.ListApprovals)
	router.GET("/approval/:id", handlers.GetApproval)
	router.PUT("/approval/:id/decision", handlers.DecideApproval)

	router.POST("/department", handlers.CreateDepartment)
	router.PUT("/department/:id", handlers.UpdateDepartment)
	router.POST("/department/:id/budget", handlers.AllocateBudget)
	router.GET("/department/:id/budgets", handlers.ListBudgets)
	router.GET("/department/:id/budget/report", handlers.ExportBudgetReport)

	router.POST("/budget/:id/usage", handlers.RecordUsage)

	return server
}

// Start begins listening for HTTP requests; it blocks until the server stops
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Router exposes the gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
