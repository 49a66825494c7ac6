/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package contents

import (
	"path/filepath"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"balloontip/internal/geom"
)

func TestTextSingleLine(t *testing.T) {
	tx := NewText("hello world", FontSpec{}, 0, nil)
	// Face7x13 advances 7px per glyph and has a 13px line
	if got := tx.Size(); got != (geom.Size{W: 77, H: 13}) {
		t.Fatalf("size = %v", got)
	}
}

func TestTextWraps(t *testing.T) {
	tx := NewText("hello world", FontSpec{}, 40, Basic{})
	lines := tx.Lines()
	if len(lines) != 2 || lines[0] != "hello" || lines[1] != "world" {
		t.Fatalf("lines = %q", lines)
	}
	if got := tx.Size(); got != (geom.Size{W: 35, H: 26}) {
		t.Fatalf("size = %v", got)
	}
}

func TestLongWordAndNewlines(t *testing.T) {
	face, _ := Basic{}.Resolve(FontSpec{})
	got := Wrap(face, "a incomprehensibilities\n\nb", 30)
	want := []string{"a", "incomprehensibilities", "", "b"}
	if len(got) != len(want) {
		t.Fatalf("lines = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("lines = %q, want %q", got, want)
		}
	}
}

func TestSetTextRemeasures(t *testing.T) {
	tx := NewText("ab", FontSpec{}, 0, nil)
	tx.SetText("abcd")
	if tx.Size().W != 28 || tx.Text() != "abcd" {
		t.Fatalf("size = %v text = %q", tx.Size(), tx.Text())
	}
	w1, h1 := Measure(nil, FontSpec{}, "ABC")
	if w1 != 21 || h1 != 13 {
		t.Fatalf("measure = %d,%d", w1, h1)
	}
}

func TestOpenTypeProvider(t *testing.T) {
	lib := NewFontLibrary()
	if err := lib.Load("go", goregular.TTF); err != nil {
		t.Fatalf("load: %v", err)
	}
	p := OpenType{Lib: lib}
	_, met := p.Resolve(FontSpec{Family: "go", SizePt: 24})
	_, small := p.Resolve(FontSpec{Family: "go", SizePt: 12})
	if met.LineHeight() <= small.LineHeight() {
		t.Fatalf("24pt line %d not taller than 12pt line %d", met.LineHeight(), small.LineHeight())
	}
	_, fb := p.Resolve(FontSpec{Family: "missing"})
	if fb.LineHeight() != 13 {
		t.Fatalf("fallback line height = %d", fb.LineHeight())
	}
	if err := lib.Load("bad", []byte("not a font")); err == nil {
		t.Fatal("garbage parsed as a font")
	}
	if err := lib.LoadFile("x", filepath.Join(t.TempDir(), "none.ttf")); err == nil {
		t.Fatal("missing file loaded")
	}
}
