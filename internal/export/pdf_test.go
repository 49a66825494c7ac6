/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestExportPDF_CreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "exports", "run.pdf")
	if err := ExportPDF(sampleResult(), out, Options{Labels: true, ShowHidden: true}); err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("not a pdf: %q", data[:min(8, len(data))])
	}
	// one page per frame
	if n := bytes.Count(data, []byte("/Type /Page\n")) + bytes.Count(data, []byte("/Type /Page ")); n == 0 {
		t.Fatal("no pages written")
	}
}

func TestExportPDF_Errors(t *testing.T) {
	dir := t.TempDir()
	if err := ExportPDF(nil, filepath.Join(dir, "a.pdf"), Options{}); err == nil {
		t.Fatal("nil result accepted")
	}
	if err := ExportPDF(sampleResult(), filepath.Join(dir, "b.pdf"), Options{Frames: []int{7}}); err == nil {
		t.Fatal("out of range page accepted")
	}
	if _, err := os.Stat(filepath.Join(dir, "b.pdf")); !os.IsNotExist(err) {
		t.Fatalf("failed export left a file: %v", err)
	}
}

func TestFrameIndexes(t *testing.T) {
	got, err := frameIndexes(3, nil)
	if err != nil || len(got) != 3 || got[2] != 2 {
		t.Fatalf("all frames = %v, %v", got, err)
	}
	got, err = frameIndexes(3, []int{-1})
	if err != nil || len(got) != 1 || got[0] != -1 {
		t.Fatalf("specific = %v, %v", got, err)
	}
	if _, err := frameIndexes(0, nil); err == nil {
		t.Fatal("no frames accepted")
	}
}
