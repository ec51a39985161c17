// Package store keeps host data (categories, courses, ratings, plugin
// settings and files) in SQLite database laid out after Moodle tables.
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"coursetheme/config"
)

// Context levels.
const (
	ContextSystem = 10
	ContextCourse = 50
)

// SystemContext is the id of system context row created with schema.
const SystemContext int64 = 1

// ErrNotFound is returned when requested record does not exist.
var ErrNotFound = errors.New("not found")

//go:embed schema.sql
var schema string

type Store struct {
	pool *sqlitex.Pool
	log  *zap.Logger
}

// Open opens (creating if necessary) database and makes sure schema is in
// place.
func Open(ctx context.Context, cfg *config.DatabaseConfig, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	pool, err := sqlitex.NewPool(cfg.Path, sqlitex.PoolOptions{PoolSize: cfg.PoolSize})
	if err != nil {
		return nil, fmt.Errorf("unable to open database '%s': %w", cfg.Path, err)
	}
	s := &Store{pool: pool, log: log.Named("store")}
	if err := s.Init(ctx); err != nil {
		return nil, multierr.Append(err, pool.Close())
	}
	s.log.Debug("Database opened", zap.String("path", cfg.Path), zap.Int("pool", cfg.PoolSize))
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	return s.pool.Close()
}

// Init creates missing tables.
func (s *Store) Init(ctx context.Context) error {
	return s.withConn(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
			return fmt.Errorf("unable to create schema: %w", err)
		}
		return nil
	})
}

func (s *Store) withConn(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("unable to get database connection: %w", err)
	}
	defer s.pool.Put(conn)
	return fn(conn)
}

// withTx runs fn in a transaction rolled back when fn fails.
func (s *Store) withTx(ctx context.Context, fn func(conn *sqlite.Conn) error) error {
	return s.withConn(ctx, func(conn *sqlite.Conn) (err error) {
		defer sqlitex.Transaction(conn)(&err)
		return fn(conn)
	})
}

// insert executes query returning id of inserted row.
func insert(conn *sqlite.Conn, query string, args ...any) (int64, error) {
	if err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: args}); err != nil {
		return 0, err
	}
	return conn.LastInsertRowID(), nil
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
