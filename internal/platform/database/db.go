// Package database wraps jmoiron/sqlx behind a narrow interface, the way
// stem/pkg/database does, so callers (both the token store and the backend
// gateway) depend on a contract instead of a concrete driver.
package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/jmoiron/sqlx"
)

// DB is the subset of *sqlx.DB every repository in this gateway needs.
type DB interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
	PingContext(ctx context.Context) error
	Close() error
	SetMaxOpenConns(n int)
	SetMaxIdleConns(n int)
	SetConnMaxLifetime(d time.Duration)
}

// Instance adapts *sqlx.DB to DB and attaches a logger for diagnostics.
type Instance struct {
	*sqlx.DB
	logger ectologger.Logger
}

func NewInstance(db *sqlx.DB, logger ectologger.Logger) DB {
	return &Instance{DB: db, logger: logger}
}

// Open connects with sqlx and applies pool limits, matching the connection
// discipline every pool in the teacher fleet uses (bounded open/idle conns,
// explicit lifetime).
func Open(driverName, dsn string, maxOpen, maxIdle int, connMaxLifetime time.Duration, logger ectologger.Logger) (DB, error) {
	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(connMaxLifetime)
	return NewInstance(db, logger), nil
}
