/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"balloontip/internal/geom"
	"balloontip/internal/scenario"
)

// Run is one recorded scenario run.
type Run struct {
	ID        string
	Name      string
	Source    string // scenario path, or empty
	StartedAt time.Time
	Elapsed   time.Duration
	Steps     int
	Balloons  int
}

// Entry is one balloon's placement after one step of a run.
type Entry struct {
	Step      int
	Action    string
	Placement scenario.Placement
}

// Record stores res and every placement of every frame in one transaction
// and returns the new run.
func (j *Journal) Record(ctx context.Context, res *scenario.Result, source string) (Run, error) {
	if res == nil {
		return Run{}, fmt.Errorf("result is nil")
	}
	started := time.Now().UTC().Add(-res.Elapsed)
	id, err := newRunID(started)
	if err != nil {
		return Run{}, err
	}
	run := Run{
		ID:        id,
		Name:      res.Name,
		Source:    source,
		StartedAt: started.Truncate(time.Second),
		Elapsed:   res.Elapsed,
		Steps:     max(0, len(res.Frames)-1),
	}
	if len(res.Frames) > 0 {
		run.Balloons = len(res.Frames[0].Placements)
	}
	l := j.log.With(slog.String("op", "record"), slog.String("run", id))

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return Run{}, fmt.Errorf("begin record: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, j.rebind(`INSERT INTO runs (id, name, source, started_at, elapsed_us, steps, balloons) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		run.ID, run.Name, run.Source, run.StartedAt.Format(time.RFC3339), run.Elapsed.Microseconds(), run.Steps, run.Balloons); err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, j.rebind(`INSERT INTO placements (
		run_id, step, seq, action, balloon, state, visible, x, y, width, height,
		orientation, flip_x, flip_y, h_offset, tip_x, tip_y, layer
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return Run{}, fmt.Errorf("prepare placement insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	rows := 0
	for _, f := range res.Frames {
		for seq, p := range f.Placements {
			b := p.Bounds
			if _, err := stmt.ExecContext(ctx,
				run.ID, f.Step, seq, f.Action, p.Balloon, p.State, boolInt(p.Visible),
				b.X, b.Y, b.W, b.H, p.Orientation, boolInt(p.FlipX), boolInt(p.FlipY),
				p.HorizontalOffset, p.Tip.X, p.Tip.Y, p.Layer,
			); err != nil {
				return Run{}, fmt.Errorf("insert placement step %d %s: %w", f.Step, p.Balloon, err)
			}
			rows++
		}
	}
	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit record: %w", err)
	}
	l.Info("run recorded", slog.Int("placements", rows))
	return run, nil
}

// Runs lists the most recent runs first. limit <= 0 means all.
func (j *Journal) Runs(ctx context.Context, limit int) ([]Run, error) {
	q := `SELECT id, name, source, started_at, elapsed_us, steps, balloons FROM runs ORDER BY id DESC`
	var args []any
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := j.db.QueryContext(ctx, j.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// Run returns a single run.
func (j *Journal) Run(ctx context.Context, id string) (Run, error) {
	row := j.db.QueryRowContext(ctx, j.rebind(`SELECT id, name, source, started_at, elapsed_us, steps, balloons FROM runs WHERE id = ?`), id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrUnknownRun, id)
	}
	return r, err
}

type scanner interface{ Scan(dest ...any) error }

func scanRun(s scanner) (Run, error) {
	var (
		r       Run
		started string
		us      int64
	)
	if err := s.Scan(&r.ID, &r.Name, &r.Source, &started, &us, &r.Steps, &r.Balloons); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	t, err := time.Parse(time.RFC3339, started)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: bad started_at %q: %w", r.ID, started, err)
	}
	r.StartedAt = t
	r.Elapsed = time.Duration(us) * time.Microsecond
	return r, nil
}

// Placements returns a run's entries ordered by step, then by the balloon's
// declaration order.
func (j *Journal) Placements(ctx context.Context, runID string) ([]Entry, error) {
	if _, err := j.Run(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := j.db.QueryContext(ctx, j.rebind(`SELECT step, action, balloon, state, visible, x, y, width, height,
		orientation, flip_x, flip_y, h_offset, tip_x, tip_y, layer
		FROM placements WHERE run_id = ? ORDER BY step, seq`), runID)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e                    Entry
			p                    = &e.Placement
			visible, fx, fy      int
			x, y, w, h, tipX, ty int
		)
		if err := rows.Scan(&e.Step, &e.Action, &p.Balloon, &p.State, &visible, &x, &y, &w, &h,
			&p.Orientation, &fx, &fy, &p.HorizontalOffset, &tipX, &ty, &p.Layer); err != nil {
			return nil, fmt.Errorf("scan placement: %w", err)
		}
		p.Visible, p.FlipX, p.FlipY = visible != 0, fx != 0, fy != 0
		p.Bounds = geom.R(x, y, w, h)
		p.Tip = geom.Pt(tipX, ty)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate placements: %w", err)
	}
	return out, nil
}

// Delete removes a run and its placements.
func (j *Journal) Delete(ctx context.Context, runID string) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, j.rebind(`DELETE FROM placements WHERE run_id = ?`), runID); err != nil {
		return fmt.Errorf("delete placements: %w", err)
	}
	res, err := tx.ExecContext(ctx, j.rebind(`DELETE FROM runs WHERE id = ?`), runID)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
