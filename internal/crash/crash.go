/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic in the command line tool or the playground
// into a report file and a clean non-zero exit.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "balloontip/internal/log"
	"balloontip/internal/telemetry"
	"balloontip/internal/version"
)

// exitFn is replaced in tests.
var exitFn = os.Exit

// Context is what the report says about the work in progress.
type Context struct {
	// Dir receives the report; empty means the temp dir.
	Dir      string
	Command  string
	Scenario string
}

// Recover captures a panic, logs it with the stack, writes a report to
// ctx.Dir and exits with status 2.
//
// Usage: defer crash.Recover(crash.Context{...})
func Recover(ctx Context) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("command", ctx.Command), slog.String("stack", string(stack)))

	reportPath, err := writeReport(ctx, r, stack)
	if err != nil {
		l.Error("crash report not written", slog.Any("err", err))
	}
	if _, err := fmt.Fprintf(os.Stderr, "balloontip crashed. A report was saved to: %s\nVersion: %s\nOS/Arch: %s/%s\n",
		reportPath, version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
		l.Error("failed to write crash message to stderr", slog.Any("err", err))
	}
	exitFn(2)
}

func writeReport(ctx Context, panicVal any, stack []byte) (string, error) {
	dir := ctx.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	now := time.Now()
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", now.Format("20060102-150405")))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "balloontip crash report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", now.Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if ctx.Command != "" {
		fmt.Fprintf(&buf, "Command: %s\n", ctx.Command)
	}
	if ctx.Scenario != "" {
		fmt.Fprintf(&buf, "Scenario: %s\n", ctx.Scenario)
	}
	fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	fmt.Fprintf(&buf, "Stack:\n%s\n", stack)

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}
	// the scenario path stays local, uploads only carry the panic and stack
	telemetry.UploadCrash(anonymous(panicVal, stack))
	return path, nil
}

func anonymous(panicVal any, stack []byte) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Version: %s\nOS/Arch: %s/%s\n\nPanic: %v\n\nStack:\n%s\n", version.String(), runtime.GOOS, runtime.GOARCH, panicVal, stack)
	return buf.Bytes()
}
