package main

import (
	"bufio"
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"habitflow/internal/cache"
	"habitflow/internal/config"
	"habitflow/internal/controller"
	"habitflow/internal/database"
	"habitflow/internal/gateway"
	"habitflow/internal/hub"
	"habitflow/internal/identity"
	"habitflow/internal/models"
	"habitflow/internal/queue"
	"habitflow/internal/routes"
	"habitflow/internal/store"
	"habitflow/internal/syncer"
	"habitflow/internal/syncsource"
	"habitflow/pkg/logger"
)

func main() {
	loadEnvFile(".env")

	ctx := context.Background()
	cfg := config.Get()

	db := database.InitDB(ctx)
	if db == nil {
		logger.Error(ctx, "Database not available; exiting")
		os.Exit(1)
	}
	if err := database.MigrateOrCreateSchema(ctx); err != nil {
		logger.Error(ctx, "Schema migration failed", "error", err)
		os.Exit(1)
	}

	// Pre-warm Redis (optional; cache works lazily)
	cache.Client(ctx)

	// Pre-warm Kafka producer and ensure the change topic exists
	queue.Producer(ctx)
	queue.EnsureTopic(ctx)

	gw := gateway.NewPostgres(db)
	co := syncer.New(gw, store.New(), syncer.WithPublisher(queue.PublishChange))
	realtime := hub.New()

	// Connectivity probe flips the coordinator online/offline and triggers
	// replay of the pending queue on reconnect.
	go syncer.WatchConnectivity(ctx, co, time.Duration(cfg.ProbeIntervalSec)*time.Second)

	// Change feed: Kafka push when the brokers answer, polling otherwise.
	// Every applied event refreshes the local store, fans out to websocket
	// clients and drops the stale cache entries.
	apply := func(ctx context.Context, ev models.ChangeEvent) {
		co.ApplyRemote(ctx, ev)
		realtime.Broadcast(ctx, ev)
		cache.InvalidateOwner(ctx, ev.OwnerID, models.DateString(co.Now()))
	}
	push := syncsource.NewPush(queue.Brokers(), queue.Topic(), "habitflow-server", apply)
	poll := syncsource.NewPoll(gw, co, time.Duration(cfg.PollIntervalSec)*time.Second,
		func(ctx context.Context, ownerID string) {
			cache.InvalidateOwner(ctx, ownerID, models.DateString(co.Now()))
		})
	source := syncsource.Select(ctx, push, poll)
	go source.Run(ctx)

	ctl := controller.New(co, gw, identity.NewProvider(), realtime)

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      routes.Router(ctl),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		logger.Info(ctx, "HTTP server listening", "port", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "Server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server shutdown error", "error", err)
	}
	logger.Info(ctx, "Server stopped")
}

// loadEnvFile reads a .env file and sets env vars (only if not already set).
func loadEnvFile(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		idx := strings.Index(line, "=")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		if strings.HasPrefix(val, `"`) && strings.HasSuffix(val, `"`) {
			val = strings.Trim(val, `"`)
		} else if strings.HasPrefix(val, "'") && strings.HasSuffix(val, "'") {
			val = strings.Trim(val, "'")
		}
		if key != "" && os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}
}
