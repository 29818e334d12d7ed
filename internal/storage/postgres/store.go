// Package postgres provides the Postgres-backed persistence sink. Both
// tables are append-only: no update or delete path exists anywhere.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool and table names.
type Config struct {
	DSN             string
	IDsTable        string
	ParamsTable     string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

const (
	defaultIDsTable    = "otodom_offers_ids"
	defaultParamsTable = "otodom_offers_params"
)

// pgxPool is the subset of pgxpool.Pool the store uses; pgxmock
// satisfies it for tests.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Close()
}

// Store writes identifier batches and field records into Postgres and
// serves the day-scoped identifier read path.
type Store struct {
	pool        pgxPool
	idsTable    string
	paramsTable string
}

// NewStore creates a Store backed by a new pgx pool.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewStoreWithPool(pool, cfg.IDsTable, cfg.ParamsTable)
}

// NewStoreWithPool constructs a Store from an existing pool (primarily
// for testing).
func NewStoreWithPool(pool pgxPool, idsTable, paramsTable string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if idsTable == "" {
		idsTable = defaultIDsTable
	}
	if paramsTable == "" {
		paramsTable = defaultParamsTable
	}
	if !validTableName.MatchString(idsTable) {
		return nil, fmt.Errorf("invalid table name %q", idsTable)
	}
	if !validTableName.MatchString(paramsTable) {
		return nil, fmt.Errorf("invalid table name %q", paramsTable)
	}
	return &Store{
		pool:        pool,
		idsTable:    idsTable,
		paramsTable: paramsTable,
	}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}
