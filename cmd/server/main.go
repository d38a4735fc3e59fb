package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/go-redis/redis/v8"

	"github.com/marcuslopes-design/Projeto-Vistoria/api"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/config"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/db"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/storage/docstore"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/storage/sqlitestore"
	"github.com/marcuslopes-design/Projeto-Vistoria/internal/storage/staticstore"
	"github.com/marcuslopes-design/Projeto-Vistoria/pkg/storage"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	api.SetLogger(logger)

	log.Printf("Starting vistoria server version %s (built at %s)", version, buildTime)

	ctx := context.Background()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	handler := api.SetupRoutes(cfg, version, buildTime, store)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.APITimeout,
		WriteTimeout: cfg.APITimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s (backend: %s). Health checks available at /healthz.", cfg.Addr, cfg.Backend)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	if err := store.Close(); err != nil {
		log.Printf("Error closing store: %v", err)
	}

	log.Println("Server exited")
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.AppDataStore, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		conn, err := db.New(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		s := sqlitestore.New(conn, logger)
		if err := s.Init(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		return s, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		s := docstore.New(client, cfg.RedisKey, logger)
		if err := s.Init(ctx); err != nil {
			client.Close()
			return nil, err
		}
		return s, nil

	default:
		return staticstore.Open(ctx, cfg.SnapshotPath)
	}
}
