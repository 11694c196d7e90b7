package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const createTable = `CREATE TABLE IF NOT EXISTS kasir_kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Postgres is a Store keeping values in the kasir_kv table. Multiple values
// are saved in one SQL transaction.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects to dsn, checks the connection and creates the table
// if needed.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create table: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Load(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := p.db.QueryRowContext(ctx, `SELECT value FROM kasir_kv WHERE key = $1`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("could not load %q: %w", key, err)
	}
	return v, true, nil
}

func (p *Postgres) Save(ctx context.Context, values map[string]string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback()
	for k, v := range values {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO kasir_kv (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`, k, v)
		if err != nil {
			return fmt.Errorf("could not save %q: %w", k, err)
		}
	}
	return tx.Commit()
}

func (p *Postgres) Delete(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		if _, err := p.db.ExecContext(ctx, `DELETE FROM kasir_kv WHERE key = $1`, k); err != nil {
			return fmt.Errorf("could not delete %q: %w", k, err)
		}
	}
	return nil
}

func (p *Postgres) Close() error { return p.db.Close() }
