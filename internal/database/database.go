package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shop-inventory/internal/config"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Service owns the connection pool to the persistence gateway
type Service interface {
	// DB returns the underlying connection pool
	DB() *sql.DB
	// Health pings the database and reports pool statistics
	Health(ctx context.Context) map[string]string
	// Close closes the connection pool
	Close() error
}

type service struct {
	db *sql.DB
}

// New opens a pgx-backed connection pool and verifies connectivity
func New(ctx context.Context, cfg config.DatabaseConfig) (Service, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &service{db: db}, nil
}

// NewFromDB wraps an already opened pool
func NewFromDB(db *sql.DB) Service {
	return &service{db: db}
}

func (s *service) DB() *sql.DB {
	return s.db
}

func (s *service) Health(ctx context.Context) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	dbStats := s.db.Stats()
	stats["status"] = "up"
	stats["open_connections"] = fmt.Sprint(dbStats.OpenConnections)
	stats["in_use"] = fmt.Sprint(dbStats.InUse)
	stats["idle"] = fmt.Sprint(dbStats.Idle)
	stats["wait_count"] = fmt.Sprint(dbStats.WaitCount)

	return stats
}

func (s *service) Close() error {
	return s.db.Close()
}
