package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/Arupreza/ScholarScout/internal/common"
)

// Supported SQL dialects.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MaxConnLifetime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// DB is a database/sql handle plus the dialect it speaks.
type DB struct {
	SQL     *sql.DB
	Dialect string
	pool    *pgxpool.Pool
}

// ParseDSN resolves the dialect of dsn and the driver-level connection
// string. Accepted forms: sqlite://path, file:path?..., :memory:, *.db /
// *.sqlite paths, and postgres:// or postgresql:// URLs.
func ParseDSN(dsn string) (dialect, conn string, err error) {
	dsn = strings.TrimSpace(dsn)
	lower := strings.ToLower(dsn)
	switch {
	case dsn == "":
		return "", "", common.ConfigurationError("ledger DSN is empty", nil)
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DialectPostgres, dsn, nil
	case strings.HasPrefix(lower, "sqlite://"):
		return DialectSQLite, dsn[len("sqlite://"):], nil
	case strings.HasPrefix(lower, "file:"), dsn == ":memory:",
		strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".sqlite"):
		return DialectSQLite, dsn, nil
	}
	return "", "", common.ConfigurationError(fmt.Sprintf("unsupported ledger DSN %q", dsn), nil)
}

// Open connects to the ledger database named by cfg.DSN. Postgres goes
// through a pgx pool wrapped as *sql.DB; SQLite uses the pure-Go driver.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dialect, conn, err := ParseDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}

	logger.Info("connecting to ledger database", "dialect", dialect)
	switch dialect {
	case DialectPostgres:
		pc, err := pgxpool.ParseConfig(conn)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, common.ConfigurationError("parse postgres DSN", err)
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		if cfg.MaxConnLifetime > 0 {
			pc.MaxConnLifetime = cfg.MaxConnLifetime
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "scholarscout"
		if cfg.StatementTimeout > 0 {
			pc.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.StatementTimeout.Milliseconds(), 10)
		}

		dctx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		pool, err := pgxpool.NewWithConfig(dctx, pc)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, common.NewAppError(common.CodeLedgerError, "connect postgres", err)
		}
		db := &DB{SQL: stdlib.OpenDBFromPool(pool), Dialect: DialectPostgres, pool: pool}
		logger.Info("successfully connected to database", "dialect", dialect)
		return db, nil

	default:
		sqlDB, err := sql.Open("sqlite", conn)
		if err != nil {
			return nil, common.NewAppError(common.CodeLedgerError, "open sqlite", err)
		}
		// one connection keeps :memory: databases and transactions on the same handle
		sqlDB.SetMaxOpenConns(1)
		db := &DB{SQL: sqlDB, Dialect: DialectSQLite}
		if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			_ = sqlDB.Close()
			return nil, common.NewAppError(common.CodeLedgerError, "configure sqlite", err)
		}
		logger.Info("successfully connected to database", "dialect", dialect)
		return db, nil
	}
}

// Close closes the database connections gracefully
func (db *DB) Close(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("closing database connections")
	if db.SQL != nil {
		if err := db.SQL.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}
	if db.pool != nil {
		db.pool.Close()
	}
}

// HealthCheck pings the database to catch DSN issues early.
func (db *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return db.SQL.PingContext(ctx)
}

// Rebind rewrites ? placeholders to $1, $2, ... for Postgres.
func (db *DB) Rebind(query string) string {
	if db.Dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
