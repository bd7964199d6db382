package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/vittalogic/approval-engine/internal/config"
	httpserver "github.com/vittalogic/approval-engine/internal/interfaces/http"
	"github.com/vittalogic/approval-engine/internal/notification"
	"github.com/vittalogic/approval-engine/internal/report"
	"github.com/vittalogic/approval-engine/internal/repository"
	"github.com/vittalogic/approval-engine/internal/service"
	"github.com/vittalogic/approval-engine/pkg/database"
	"github.com/vittalogic/approval-engine/pkg/utils"
)

func main() {
	// Local overrides from .env, ignored when absent
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting approval engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		logger.Fatal("Failed to create data directory", zap.Error(err))
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	approvalRepo := repository.NewApprovalRepository(db.DB, logger)
	departmentRepo := repository.NewDepartmentRepository(db.DB, logger)
	budgetRepo := repository.NewBudgetRepository(db.DB, logger)
	employeeDirectory := repository.NewEmployeeRepository(db.DB, logger)

	// Notification dispatcher
	dispatcher := notification.NewDispatcher(cfg.Notification.QueueSize, logger)
	dispatcher.Start()
	defer dispatcher.Stop()

	// Services
	approvalService := service.NewApprovalService(approvalRepo, employeeDirectory, dispatcher, logger)
	departmentService := service.NewDepartmentService(departmentRepo, budgetRepo, approvalRepo, dispatcher, logger)

	exporter := report.NewBudgetExporter(logger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, approvalService, departmentService, exporter, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
