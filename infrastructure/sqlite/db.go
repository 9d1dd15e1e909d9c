package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/mattn/go-sqlite3"
)

const (
	readPoolSize   = 8
	connServiceTTL = 15 * time.Minute
)

// DB wraps split read/write Bun connections. Writes go through a single
// immediate-lock connection; reads use a small query-only pool.
type DB struct {
	WriteSQL *sql.DB
	ReadSQL  *sql.DB
	W        *bun.DB
	R        *bun.DB
}

// OpenDB initializes sqlite handles for immediate writer tx and pooled reads.
func OpenDB(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path is required")
	}

	wsql, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate&_journal_mode=WAL", path))
	if err != nil {
		return nil, fmt.Errorf("open write db: %w", err)
	}
	wsql.SetMaxOpenConns(1)
	wsql.SetConnMaxLifetime(connServiceTTL)

	rsql, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&mode=ro&_query_only=1", path))
	if err != nil {
		wsql.Close()
		return nil, fmt.Errorf("open read db: %w", err)
	}
	rsql.SetMaxOpenConns(readPoolSize)
	rsql.SetConnMaxIdleTime(5 * time.Minute)
	rsql.SetConnMaxLifetime(connServiceTTL)

	// Read-only mode fails while the DB file does not exist yet; fall back to
	// a query-only read-write handle for bootstrap.
	if err := rsql.Ping(); err != nil && strings.Contains(err.Error(), "unable to open database file") {
		rsql.Close()
		rsql, err = sql.Open("sqlite3", fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000&_query_only=1", path))
		if err != nil {
			wsql.Close()
			return nil, fmt.Errorf("open fallback read db: %w", err)
		}
	}

	if _, err := rsql.Exec("PRAGMA query_only = ON"); err != nil {
		wsql.Close()
		rsql.Close()
		return nil, fmt.Errorf("enable read query_only: %w", err)
	}

	return &DB{
		WriteSQL: wsql,
		ReadSQL:  rsql,
		W:        bun.NewDB(wsql, sqlitedialect.New()),
		R:        bun.NewDB(rsql, sqlitedialect.New()),
	}, nil
}

// Close closes read and write handles.
func (db *DB) Close() error {
	if db == nil {
		return nil
	}
	var first error
	for _, h := range []*bun.DB{db.W, db.R} {
		if h == nil {
			continue
		}
		if err := h.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
