/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"os"
	"path/filepath"
	"testing"
)

func TestBatchExport_WebPreset(t *testing.T) {
	root := t.TempDir()
	written, err := BatchExport(sampleResult(), BatchOptions{Preset: PresetWeb, OutDir: root})
	if err != nil {
		t.Fatalf("batch export web: %v", err)
	}
	want := []string{filepath.Join(root, "a<b.png"), filepath.Join(root, "a<b.svg")}
	if len(written) != len(want) {
		t.Fatalf("written = %v", written)
	}
	for i, p := range want {
		if written[i] != p {
			t.Fatalf("written[%d] = %s, want %s", i, written[i], p)
		}
		st, err := os.Stat(p)
		if err != nil {
			t.Fatalf("missing %s: %v", p, err)
		}
		if st.Size() <= 0 {
			t.Fatalf("empty file: %s", p)
		}
	}
}

func TestBatchExport_ReviewPreset(t *testing.T) {
	root := t.TempDir()
	res := sampleResult()
	res.Name = "tabs and table"
	written, err := BatchExport(res, BatchOptions{Preset: PresetReview, OutDir: root})
	if err != nil {
		t.Fatalf("batch export review: %v", err)
	}
	if len(written) != 2 || filepath.Base(written[0]) != "tabs-and-table.pdf" {
		t.Fatalf("written = %v", written)
	}
}

func TestBatchExport_UnknownFormat(t *testing.T) {
	_, err := BatchExport(sampleResult(), BatchOptions{Formats: []string{"cbz"}, OutDir: t.TempDir()})
	if err == nil {
		t.Fatal("expected unknown format error")
	}
}

func TestExportFileDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.PNG", "a.svg", "a.pdf"} {
		p := filepath.Join(dir, name)
		if err := ExportFile(sampleResult(), p, DefaultOptions()); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if _, err := os.Stat(p); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
	if err := ExportFile(sampleResult(), filepath.Join(dir, "a.gif"), DefaultOptions()); err == nil {
		t.Fatal("gif accepted")
	}
}
