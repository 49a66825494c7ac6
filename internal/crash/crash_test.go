/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package crash

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteReportCreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := writeReport(Context{Dir: dir, Command: "run", Scenario: "demo.yaml"}, "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("report at %s, want it in %s", path, dir)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	for _, want := range []string{"balloontip crash report", "Command: run", "Scenario: demo.yaml", "Panic: boom", "stacktrace"} {
		if !strings.Contains(s, want) {
			t.Fatalf("report lacks %q:\n%s", want, s)
		}
	}
}

func TestAnonymousReportOmitsScenario(t *testing.T) {
	b := string(anonymous("boom", []byte("stack")))
	if !strings.Contains(b, "Panic: boom") || strings.Contains(b, "Scenario") {
		t.Fatalf("anonymous report = %s", b)
	}
}

func TestRecoverWritesReportAndExits(t *testing.T) {
	oldStderr := os.Stderr
	r, w, _ := os.Pipe()
	os.Stderr = w
	defer func() {
		_ = w.Close()
		os.Stderr = oldStderr
		_, _ = io.Copy(io.Discard, r)
	}()

	code := 0
	oldExit := exitFn
	exitFn = func(c int) { code = c }
	defer func() { exitFn = oldExit }()

	dir := t.TempDir()
	func() {
		defer Recover(Context{Dir: dir, Command: "place"})
		panic("kaboom")
	}()

	if code != 2 {
		t.Fatalf("exit code = %d", code)
	}
	files, _ := filepath.Glob(filepath.Join(dir, "crash-*.log"))
	if len(files) != 1 {
		t.Fatalf("reports = %v", files)
	}
	b, _ := os.ReadFile(files[0])
	if !strings.Contains(string(b), "Panic: kaboom") {
		t.Fatalf("report = %s", b)
	}
}

func TestRecoverWithoutPanicDoesNothing(t *testing.T) {
	oldExit := exitFn
	exitFn = func(int) { t.Fatal("exit called without a panic") }
	defer func() { exitFn = oldExit }()
	func() {
		defer Recover(Context{Dir: t.TempDir()})
	}()
}
