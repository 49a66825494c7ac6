/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"
)

func TestFromEnv(t *testing.T) {
	t.Setenv("BT_LOG_LEVEL", "warn")
	t.Setenv("BT_LOG_FORMAT", "json")
	t.Setenv("BT_LOG_SOURCE", "true")
	t.Setenv("BT_LOG_FILE", "")

	opts := FromEnv()
	if opts.Level != "warn" || opts.Format != "json" || !opts.AddSource || opts.File != "" {
		t.Fatalf("FromEnv mismatch: %+v", opts)
	}
	if err := os.Unsetenv("SOME_UNSET_VAR"); err != nil {
		t.Fatal(err)
	}
	if v := getenv("SOME_UNSET_VAR", "fallback"); v != "fallback" {
		t.Fatalf("getenv fallback failed: %q", v)
	}
}

func TestRunFromContext(t *testing.T) {
	if _, ok := RunFromContext(context.Background()); ok {
		t.Fatal("empty context should carry no run")
	}
	if _, ok := RunFromContext(ContextWithRun(context.Background(), "")); ok {
		t.Fatal("blank run id should be ignored")
	}
	if id, ok := RunFromContext(ContextWithRun(context.Background(), "r1")); !ok || id != "r1" {
		t.Fatalf("RunFromContext = %q, %v", id, ok)
	}
}

func TestConsoleHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	h := newConsoleHandler(&buf, slog.LevelWarn, false)
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should not be enabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error should be enabled at warn level")
	}

	h2 := h.WithAttrs([]slog.Attr{slog.String("k", "v")}).WithGroup("grp")
	r := slog.NewRecord(time.Date(2025, 3, 1, 14, 5, 9, 0, time.UTC), slog.LevelError, "boom", 0)
	r.AddAttrs(
		slog.Int("n", 42),
		slog.Float64("pi", 3.14),
		slog.String("text", "two words"),
		slog.Group("tip", slog.Int("x", 1), slog.Int("y", 2)),
	)
	if err := h2.Handle(context.Background(), r); err != nil {
		t.Fatalf("handle: %v", err)
	}

	got := buf.String()
	want := "14:05:09.000 ERR boom k=v grp.n=42 grp.pi=3.14 grp.text=\"two words\" grp.tip.x=1 grp.tip.y=2\n"
	if got != want {
		t.Fatalf("line = %q\nwant   %q", got, want)
	}
}

func TestConsoleHandlerSource(t *testing.T) {
	var buf bytes.Buffer
	slog.New(newConsoleHandler(&buf, slog.LevelDebug, true)).Debug("here")
	if out := buf.String(); !strings.HasPrefix(strings.Fields(out)[1], "DBG") || !strings.Contains(out, "src=handlers_test.go:") {
		t.Fatalf("output = %q", out)
	}
}

func TestFanoutAndRunTag(t *testing.T) {
	var a, b bytes.Buffer
	h := tagRun(fanout(newConsoleHandler(&a, slog.LevelInfo, false), newConsoleHandler(&b, slog.LevelError, false)))
	l := slog.New(h)
	ctx := ContextWithRun(context.Background(), "R")
	l.InfoContext(ctx, "first")
	l.ErrorContext(ctx, "second")

	if !strings.Contains(a.String(), "first run=R") || !strings.Contains(a.String(), "second run=R") {
		t.Fatalf("info sink = %q", a.String())
	}
	if strings.Contains(b.String(), "first") || !strings.Contains(b.String(), "second run=R") {
		t.Fatalf("error sink = %q", b.String())
	}
}
