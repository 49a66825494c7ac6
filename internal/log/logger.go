/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log provides centralized slog-based logging for balloontip.
// It wraps slog with a small configuration surface, a compact console handler
// and a handler that copies the scenario run id from the context onto every
// record.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"balloontip/internal/version"
)

// Options controls logger initialization.
// Values can be provided directly or via environment variables:
//   - BT_LOG_LEVEL=debug|info|warn|error
//   - BT_LOG_FORMAT=console|json
//   - BT_LOG_FILE=<path> (enables file logging with rotation)
//   - BT_LOG_SOURCE=true|false (include source)
//
// Defaults: INFO level, console format, no source.
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string // optional path for file logging (rotated)

	// Console receives the console output; nil means stderr.
	Console io.Writer
	// Rotation applies to File. Zero fields take DefaultRotation's values.
	Rotation Rotation
}

// Rotation mirrors the lumberjack knobs the file sink exposes.
type Rotation struct {
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultRotation keeps three compressed 10 MB files for four weeks.
var DefaultRotation = Rotation{MaxSizeMB: 10, MaxBackups: 3, MaxAgeDays: 28, Compress: true}

var (
	mu      sync.RWMutex
	current *slog.Logger
	closer  io.Closer
)

// L returns the application logger, initializing it from the environment on
// first use.
func L() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Init configures the global logger and sets slog.Default as well. A file
// sink opened by an earlier Init is closed.
func Init(opts Options) {
	lvl := ParseLevel(opts.Level)
	out := opts.Console
	if out == nil {
		out = os.Stderr
	}

	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(out, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource})
	} else {
		console = newConsoleHandler(out, lvl, opts.AddSource)
	}
	handlers := []slog.Handler{console}

	var file *lj.Logger
	if path := strings.TrimSpace(opts.File); path != "" {
		file = rotatingFile(path, opts.Rotation)
		handlers = append(handlers, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	}

	h := tagRun(fanout(handlers...))
	logger := slog.New(h).With(
		slog.String("app", "balloontip"),
		slog.String("ver", version.Version),
	)

	mu.Lock()
	prev := closer
	current = logger
	closer = nil
	if file != nil {
		closer = file
	}
	mu.Unlock()
	if prev != nil {
		_ = prev.Close()
	}
	slog.SetDefault(logger)
}

func rotatingFile(path string, r Rotation) *lj.Logger {
	d := DefaultRotation
	if r.MaxSizeMB > 0 {
		d.MaxSizeMB = r.MaxSizeMB
	}
	if r.MaxBackups > 0 {
		d.MaxBackups = r.MaxBackups
	}
	if r.MaxAgeDays > 0 {
		d.MaxAgeDays = r.MaxAgeDays
	}
	if r != (Rotation{}) {
		d.Compress = r.Compress
	}
	return &lj.Logger{Filename: path, MaxSize: d.MaxSizeMB, MaxBackups: d.MaxBackups, MaxAge: d.MaxAgeDays, Compress: d.Compress}
}

// FromEnv builds Options from environment variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("BT_LOG_LEVEL", "info"),
		Format:    getenv("BT_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("BT_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("BT_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// ParseLevel maps debug|info|warn|warning|error to a slog level; anything
// else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

// WithBalloon tags l with a balloon identifier.
func WithBalloon(l *slog.Logger, id string) *slog.Logger { return l.With(slog.String("balloon", id)) }

type runKey struct{}

// ContextWithRun stores a scenario run id; records logged with that context
// (InfoContext etc.) carry it as "run".
func ContextWithRun(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runKey{}, runID)
}

// RunFromContext returns the run id stored by ContextWithRun.
func RunFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runKey{}).(string)
	return id, ok && id != ""
}
