// Package database opens the application's SQLite database through bun.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"go.uber.org/zap"

	"github.com/km-arc/go-scoped/framework/config"
)

// Open connects to the SQLite database at cfg.Path and wraps it with bun.
// Foreign keys are enabled on every connection.
func Open(ctx context.Context, cfg config.DBConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("sqlite3", dsn(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// a second connection to ":memory:" would see a different database
	if isMemory(cfg.Path) {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}

// IsConstraintViolation reports whether err was caused by a failed SQLite
// constraint (CHECK, NOT NULL, UNIQUE, FOREIGN KEY).
func IsConstraintViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrConstraint
	}
	return false
}

// QueryLogger logs slow and failed queries.
type QueryLogger struct {
	Logger    *zap.Logger
	Threshold time.Duration
}

func (h *QueryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryLogger) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	duration := time.Since(event.StartTime)

	if event.Err != nil && !errors.Is(event.Err, sql.ErrNoRows) {
		h.Logger.Warn("query failed",
			zap.String("operation", event.Operation()),
			zap.String("query", event.Query),
			zap.Error(event.Err),
		)
		return
	}

	if h.Threshold > 0 && duration > h.Threshold {
		h.Logger.Warn("slow query",
			zap.String("query", event.Query),
			zap.Duration("duration", duration),
		)
		return
	}

	h.Logger.Debug("query", zap.String("operation", event.Operation()), zap.Duration("duration", duration))
}

func isMemory(path string) bool {
	return path == ":memory:" || strings.Contains(path, "mode=memory")
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	if path == ":memory:" {
		path = "file::memory:"
	}
	return path + sep + "_foreign_keys=on"
}
