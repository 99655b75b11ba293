package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // registers the "mysql" driver
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// Supported SQL drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

const (
	sqliteSchema = `CREATE TABLE IF NOT EXISTS kv_store(
  store_key TEXT PRIMARY KEY,
  store_value TEXT NOT NULL,
  updated_at TEXT NOT NULL
)`
	mysqlSchema = `CREATE TABLE IF NOT EXISTS kv_store(
  store_key VARCHAR(255) NOT NULL PRIMARY KEY,
  store_value LONGTEXT NOT NULL,
  updated_at VARCHAR(40) NOT NULL
)`

	sqliteUpsert = `INSERT INTO kv_store(store_key, store_value, updated_at) VALUES(?, ?, ?)
ON CONFLICT(store_key) DO UPDATE SET store_value = excluded.store_value, updated_at = excluded.updated_at`
	mysqlUpsert = `INSERT INTO kv_store(store_key, store_value, updated_at) VALUES(?, ?, ?)
ON DUPLICATE KEY UPDATE store_value = VALUES(store_value), updated_at = VALUES(updated_at)`

	selectValue = `SELECT store_value FROM kv_store WHERE store_key = ?`
	deleteKey   = `DELETE FROM kv_store WHERE store_key = ?`
)

// SQL stores keys in a kv_store table of a SQLite or MySQL database.
type SQL struct {
	db     *sqlx.DB
	driver string
}

// OpenSQL opens driver ("sqlite" or "mysql") at dsn and creates the table if needed.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQL, error) {
	if driver != DriverSQLite && driver != DriverMySQL {
		return nil, fmt.Errorf("%w: sql driver %q", ErrUnknownBackend, driver)
	}
	if dsn == "" {
		return nil, errors.New("sql dsn cannot be empty")
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// one connection keeps ":memory:" databases shared and serializes writers
		db.SetMaxOpenConns(1)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to %s database: %w", driver, err)
	}

	s, err := NewSQL(ctx, db, driver)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQL uses an open database and ensures the schema exists.
func NewSQL(ctx context.Context, db *sqlx.DB, driver string) (*SQL, error) {
	schema := sqliteSchema
	if driver == DriverMySQL {
		schema = mysqlSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("creating kv_store table: %w", err)
	}
	return &SQL{db: db, driver: driver}, nil
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	traceOp(ctx, BackendSQL, "get", key).Msg("reading entry")

	var value string
	err := s.db.GetContext(ctx, &value, selectValue, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("selecting %q: %w", key, err)
	}
	return value, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	traceOp(ctx, BackendSQL, "set", key).Int("bytes", len(value)).Msg("writing entry")

	upsert := sqliteUpsert
	if s.driver == DriverMySQL {
		upsert = mysqlUpsert
	}
	if _, err := s.db.ExecContext(ctx, upsert, key, value, time.Now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("upserting %q: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	traceOp(ctx, BackendSQL, "delete", key).Msg("removing entry")

	if _, err := s.db.ExecContext(ctx, deleteKey, key); err != nil {
		return fmt.Errorf("deleting %q: %w", key, err)
	}
	return nil
}

func (s *SQL) Close() error {
	return s.db.Close()
}
