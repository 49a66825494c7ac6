/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSinkWritesJSONWithContextAttrs(t *testing.T) {
	fpath := filepath.Join(t.TempDir(), "bt.json")
	Init(Options{Level: "debug", Format: "json", File: fpath, Console: io.Discard})
	t.Cleanup(func() { Init(Options{Console: io.Discard}) })

	l := WithBalloon(WithOperation(WithComponent("testcomp"), "op1"), "b1")
	ctx := ContextWithRun(context.Background(), "01RUN")
	l.InfoContext(ctx, "hello world", slog.String("k", "v"))

	b, err := os.ReadFile(fpath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var last string
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		if s := strings.TrimSpace(sc.Text()); s != "" {
			last = s
		}
	}
	if last == "" {
		t.Fatal("no log lines found")
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(last), &m); err != nil {
		t.Fatalf("unmarshal json log: %v", err)
	}
	want := map[string]string{
		"app": "balloontip", "component": "testcomp", "op": "op1",
		"balloon": "b1", "run": "01RUN", "msg": "hello world", "k": "v",
	}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("%s = %v, want %q (line %s)", k, m[k], v, last)
		}
	}
	if _, ok := m["ver"].(string); !ok {
		t.Fatal("missing ver attr")
	}
}

func TestInitConsoleRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	Init(Options{Level: "warn", Console: &buf})
	t.Cleanup(func() { Init(Options{Console: io.Discard}) })

	l := WithComponent("positioner")
	l.Info("dropped")
	l.Warn("kept", slog.Int("n", 3))

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info record leaked at warn level: %q", out)
	}
	for _, want := range []string{"WRN kept", "app=balloontip", "component=positioner", "n=3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q lacks %q", out, want)
		}
	}
	if L() != slog.Default() {
		t.Fatal("Init did not install the default logger")
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug": slog.LevelDebug, " WARN ": slog.LevelWarn, "warning": slog.LevelWarn,
		"error": slog.LevelError, "info": slog.LevelInfo, "": slog.LevelInfo, "loud": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRotationDefaults(t *testing.T) {
	f := rotatingFile("x.log", Rotation{})
	if f.MaxSize != 10 || f.MaxBackups != 3 || f.MaxAge != 28 || !f.Compress {
		t.Fatalf("defaults = %+v", f)
	}
	f = rotatingFile("x.log", Rotation{MaxSizeMB: 1})
	if f.MaxSize != 1 || f.MaxBackups != 3 || f.Compress {
		t.Fatalf("override = %+v", f)
	}
}
