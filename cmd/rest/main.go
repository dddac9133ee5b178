package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"support-chat-be/internal/bootstrap"
	"support-chat-be/internal/config"
	"support-chat-be/internal/model"
	"support-chat-be/internal/pkg/logger"
	"support-chat-be/internal/server"
	"support-chat-be/internal/tracer"
	"support-chat-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer func() { _ = sysLogger.Sync() }()

	// 2. Initialize Tracer
	shutdownTracer := tracer.InitTracer(cfg.Telemetry, sysLogger)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(ctx)
	}()

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection, database.Options{Verbose: !cfg.IsProduction()})
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}
	defer func() { _ = database.Close(gormDB) }()

	if err := database.Migrate(gormDB, model.All()...); err != nil {
		log.Panicf("Unable to migrate schema: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg, sysLogger)
	defer container.Close()

	// 5. Start Background Services
	if err := container.ConsumerService.Consume(context.Background()); err != nil {
		sysLogger.Error("MAIN", "Failed to start event consumer", map[string]interface{}{"error": err})
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	go func() {
		if err := srv.Run(); err != nil {
			log.Fatalf("Server stopped: %v", err)
		}
	}()

	// 7. Wait for a stop signal and drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	sysLogger.Info("MAIN", "Shutting down", nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		sysLogger.Error("MAIN", "Graceful shutdown failed", map[string]interface{}{"error": err})
	}
}
