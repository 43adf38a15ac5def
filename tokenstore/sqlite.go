package tokenstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS snapshots (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	body       TEXT    NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteRepo keeps the snapshot in a single-row table.
type SQLiteRepo struct {
	sqlDB *sql.DB
}

var _ Repo = (*SQLiteRepo)(nil)

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteRepo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteRepo{sqlDB: sqlDB}, nil
}

func (r *SQLiteRepo) Close() error {
	if r == nil || r.sqlDB == nil {
		return nil
	}
	return r.sqlDB.Close()
}

func (r *SQLiteRepo) Load(ctx context.Context) (Snapshot, error) {
	var body string
	err := r.sqlDB.QueryRowContext(ctx, `SELECT body FROM snapshots WHERE id = 1`).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, nil
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("query snapshot: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(body), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}

func (r *SQLiteRepo) Save(ctx context.Context, snapshot Snapshot) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := r.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, body, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		string(body), time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}
