/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package journal keeps a history of scenario runs and the placement of every
// balloon after every step. SQLite is the default store; a postgres:// DSN
// selects PostgreSQL through pgx.
package journal

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	applog "balloontip/internal/log"
	"balloontip/internal/version"

	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// schemaVersion tracks the journal schema. Bump it together with a new step
// in runMigrations.
const schemaVersion = 2

// ErrUnknownRun is returned when a run id is not in the journal.
var ErrUnknownRun = errors.New("unknown run")

// Journal is an open journal database.
type Journal struct {
	db     *sql.DB
	driver string
	log    *slog.Logger
}

// DefaultPath is the SQLite file used when no DSN is configured.
func DefaultPath() string {
	dir, err := os.UserCacheDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "balloontip", "journal.sqlite")
}

// driverFor maps a DSN to a database/sql driver name and the DSN to open.
func driverFor(dsn string) (driver, open string) {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return "pgx", dsn
	}
	if strings.HasPrefix(lower, "file:") {
		return "sqlite", dsn
	}
	return "sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(dsn))
}

// Open connects to dsn, creating the schema and migrating it when needed. An
// empty dsn opens DefaultPath.
func Open(ctx context.Context, dsn string) (*Journal, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = DefaultPath()
	}
	driver, open := driverFor(dsn)
	l := applog.WithOperation(applog.WithComponent("journal"), "open").With(slog.String("driver", driver))

	if driver == "sqlite" && !strings.HasPrefix(strings.ToLower(dsn), "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			l.Error("create journal dir failed", slog.Any("err", err))
			return nil, fmt.Errorf("create journal dir: %w", err)
		}
	}
	db, err := sql.Open(driver, open)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	j := &Journal{db: db, driver: driver, log: applog.WithComponent("journal")}

	if driver == "sqlite" {
		// Embedded usage: one writer.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
			_ = db.Close()
			l.Error("enable WAL failed", slog.Any("err", err))
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
			l.Warn("enable foreign_keys failed", slog.Any("err", err))
		}
	} else if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := j.ensureMetaAndVersion(ctx); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := j.ensureSchema(ctx); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := j.runMigrations(ctx); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("journal ready")
	return j, nil
}

// Close closes the database.
func (j *Journal) Close() error { return j.db.Close() }

// Driver is "sqlite" or "pgx".
func (j *Journal) Driver() string { return j.driver }

// rebind turns ? placeholders into $n for PostgreSQL.
func (j *Journal) rebind(q string) string {
	if j.driver != "pgx" {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
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

func (j *Journal) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return j.db.ExecContext(ctx, j.rebind(q), args...)
}

func (j *Journal) ensureMetaAndVersion(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := j.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := j.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := j.exec(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// keep the stored schema for runMigrations
		if _, err := j.exec(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func (j *Journal) ensureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			source      TEXT NOT NULL,
			started_at  TEXT NOT NULL,
			elapsed_us  BIGINT NOT NULL,
			steps       INTEGER NOT NULL,
			balloons    INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS placements (
			run_id       TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			step         INTEGER NOT NULL,
			seq          INTEGER NOT NULL,
			action       TEXT NOT NULL,
			balloon      TEXT NOT NULL,
			state        TEXT NOT NULL,
			visible      INTEGER NOT NULL,
			x            INTEGER NOT NULL,
			y            INTEGER NOT NULL,
			width        INTEGER NOT NULL,
			height       INTEGER NOT NULL,
			orientation  TEXT NOT NULL,
			flip_x       INTEGER NOT NULL,
			flip_y       INTEGER NOT NULL,
			h_offset     INTEGER NOT NULL,
			tip_x        INTEGER NOT NULL,
			tip_y        INTEGER NOT NULL,
			layer        INTEGER NOT NULL,
			PRIMARY KEY (run_id, step, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_placements_balloon ON placements(balloon);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_name ON runs(name);`,
	}
	for _, q := range ddl {
		if _, err := j.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// runMigrations applies incremental schema migrations up to schemaVersion.
func (j *Journal) runMigrations(ctx context.Context) error {
	var cur int
	if err := j.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if cur > schemaVersion {
		j.log.Warn("journal schema is newer than this build", slog.Int("schema", cur), slog.Int("supported", schemaVersion))
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		var stmts []string
		switch next {
		case 2:
			stmts = []string{
				`CREATE INDEX IF NOT EXISTS idx_placements_balloon ON placements(balloon);`,
				`CREATE INDEX IF NOT EXISTS idx_runs_name ON runs(name);`,
			}
		}
		tx, err := j.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, j.rebind(`UPDATE version SET schema=?, updated_at=? WHERE id=1`), next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		j.log.Info("journal migrated", slog.Int("schema", next))
		cur = next
	}
	return nil
}

// SchemaVersion reports the stored schema version.
func (j *Journal) SchemaVersion(ctx context.Context) (int, error) {
	var v int
	if err := j.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// SetMeta stores a key/value pair.
func (j *Journal) SetMeta(ctx context.Context, key, value string) error {
	_, err := j.exec(ctx, `INSERT INTO meta (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// Meta returns a stored value and whether it exists.
func (j *Journal) Meta(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := j.db.QueryRowContext(ctx, j.rebind(`SELECT value FROM meta WHERE key = ?`), key).Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("read meta %s: %w", key, err)
	}
	return v, true, nil
}

func newRunID(t time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(t), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generate run id: %w", err)
	}
	return id.String(), nil
}
