package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/finboard/finboard/internal/money"
	"github.com/finboard/finboard/internal/observability"
	"github.com/finboard/finboard/internal/platform/cache"
	"github.com/finboard/finboard/internal/platform/db"
	"github.com/finboard/finboard/internal/records"
	"github.com/finboard/finboard/internal/reports"
)

// Store is an opened record store.
type Store struct {
	Reader records.Reader
	Ping   PingFunc
	Close  func()
}

// OpenStore opens the configured backend. SQLite files using the default
// schema are migrated on open.
func OpenStore(ctx context.Context, cfg *Config) (*Store, error) {
	schema, err := records.SchemaByName(cfg.StoreSchema)
	if err != nil {
		return nil, err
	}
	switch cfg.StoreDriver {
	case DriverSQLite:
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath, db.SQLiteOptions{Migrate: schema.Name == records.DefaultSchema.Name})
		if err != nil {
			return nil, err
		}
		return &Store{
			Reader: records.NewSQLStore(conn, schema),
			Ping:   conn.PingContext,
			Close:  func() { _ = conn.Close() },
		}, nil
	case DriverPostgres:
		pool, err := db.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, err
		}
		return &Store{
			Reader: records.NewPGStore(pool, schema),
			Ping:   pool.Ping,
			Close:  pool.Close,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// ConnectRedis returns a Redis client, or nil with a warning when Redis is
// unreachable so reports are computed without the cache.
func ConnectRedis(ctx context.Context, cfg *Config, logger *slog.Logger) *redis.Client {
	client, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report cache disabled", slog.Any("error", err))
		return nil
	}
	return client
}

// NewReportService assembles the report service from configuration.
func NewReportService(cfg *Config, reader reports.Reader, client *redis.Client, metrics *observability.Metrics, logger *slog.Logger) (*reports.Service, error) {
	formatter, err := money.NewFormatter(cfg.FormatConfig())
	if err != nil {
		return nil, err
	}
	var reportCache *reports.Cache
	if client != nil {
		reportCache = reports.NewCache(client, cfg.ReportCacheTTL)
	}
	svc := reports.NewService(reader, reportCache, formatter, logger)
	if metrics != nil {
		svc.WithObserver(metrics)
	}
	return svc, nil
}
