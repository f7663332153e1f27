package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/customer-analytics/internal/api"
	"github.com/ignite/customer-analytics/internal/cache"
	"github.com/ignite/customer-analytics/internal/config"
	"github.com/ignite/customer-analytics/internal/pkg/distlock"
	"github.com/ignite/customer-analytics/internal/pkg/logger"
	"github.com/ignite/customer-analytics/internal/repository/postgres"
	"github.com/ignite/customer-analytics/internal/service/customer"
	"github.com/ignite/customer-analytics/internal/service/insights"
	"github.com/ignite/customer-analytics/internal/storage"
)

func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	if slash := strings.Index(rest, "/"); slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "config/config.yaml"
}

// connectRedis returns nil when Redis is unset or unreachable; callers
// then run without the response cache and lock on Postgres instead.
func connectRedis(ctx context.Context, url string) *redis.Client {
	if url == "" {
		log.Println("Redis not configured (REDIS_URL not set): response cache disabled, using PG advisory locks")
		return nil
	}

	var client *redis.Client
	opts, err := redis.ParseURL(url)
	if err != nil {
		client = redis.NewClient(&redis.Options{Addr: url})
	} else {
		client = redis.NewClient(opts)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed: %v (cache disabled, falling back to PG advisory locks)", err)
		client.Close()
		return nil
	}
	log.Println("Redis connected (response cache and distributed locking enabled)")
	return client
}

func main() {
	log.Println("Customer Analytics API (cmd/server)")

	cfg, err := config.LoadFromEnv(configPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	if cfg.Logging.RedactPII != nil {
		logger.SetRedactPII(*cfg.Logging.RedactPII)
	}

	loc, err := cfg.Analytics.Location()
	if err != nil {
		log.Fatalf("Invalid analytics config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	log.Printf("DB URL host portion: ...@%s/...", extractHost(cfg.Database.URL))
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime())

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		log.Printf("Warning: database ping failed: %v (serving anyway; /health/ready will report it)", err)
	}
	pingCancel()

	redisClient := connectRedis(ctx, cfg.Redis.URL)
	if redisClient != nil {
		defer redisClient.Close()
	}

	store, err := storage.New(ctx, cfg.Reports)
	if err != nil {
		log.Fatalf("Failed to initialize report storage: %v", err)
	}
	log.Printf("Report storage: %s", store.Backend())

	locker := distlock.NewLocker(redisClient, db, cfg.Reports.LockTTL())
	log.Printf("Export locks: %s", locker.Backend())

	repo := postgres.NewCustomerRepo(db).
		WithStatementTimeout(time.Duration(cfg.Database.StatementTimeoutSeconds) * time.Second)

	customerSvc := customer.NewService(repo, loc)

	insightsSvc := insights.NewService(repo, loc)
	insightsSvc.SetCache(cache.New(redisClient, cfg.Analytics.CacheTTL()))
	insightsSvc.SetReports(store, locker)

	handlers := api.NewHandlers(customerSvc, insightsSvc, cfg.Analytics.DefaultPageSize, cfg.Analytics.MaxPageSize)
	health := api.NewHealthChecker(db, redisClient, store)
	server := api.NewServer(cfg.Server, handlers, health)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := cfg.Server.Addr()
		log.Printf("Starting server on %s (timezone %s)", addr, loc)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
