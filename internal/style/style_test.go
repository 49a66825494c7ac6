/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package style

import (
	"image/color"
	"testing"

	"balloontip/internal/geom"
)

func TestRoundedInsetsFollowFlip(t *testing.T) {
	r := NewRounded(5, 4, color.RGBA{A: 255}, color.RGBA{A: 255})
	r.SetVerticalOffset(20)
	if got, want := r.BorderInsets(), (geom.Insets{Top: 4, Left: 5, Bottom: 24, Right: 5}); got != want {
		t.Fatalf("unflipped insets = %+v, want %+v", got, want)
	}
	r.Flip(false, true)
	if got, want := r.BorderInsets(), (geom.Insets{Top: 24, Left: 5, Bottom: 4, Right: 5}); got != want {
		t.Fatalf("flipped insets = %+v, want %+v", got, want)
	}
	if r.MinimalHorizontalOffset() != 25 {
		t.Fatalf("min offset = %d, want 25", r.MinimalHorizontalOffset())
	}
}

func TestEdgedAndMinimal(t *testing.T) {
	e := NewEdged(color.RGBA{R: 1, A: 128}, color.RGBA{A: 255})
	e.SetVerticalOffset(10)
	if e.MinimalHorizontalOffset() != 10 {
		t.Fatalf("edged min offset = %d", e.MinimalHorizontalOffset())
	}
	if e.IsBorderOpaque() {
		t.Fatalf("translucent fill must not report an opaque border")
	}
	if in := e.BorderInsets(); in.Bottom != 11 || in.Top != 1 {
		t.Fatalf("edged insets = %+v", in)
	}
	m := NewMinimal(color.RGBA{A: 255}, 3)
	m.SetVerticalOffset(7)
	if m.MinimalHorizontalOffset() != 10 || !m.IsBorderOpaque() {
		t.Fatalf("minimal style mismatch: min=%d opaque=%v", m.MinimalHorizontalOffset(), m.IsBorderOpaque())
	}
}

func TestOutlineTipPosition(t *testing.T) {
	r := NewRounded(5, 5, color.RGBA{A: 255}, color.RGBA{A: 255})
	r.SetVerticalOffset(10)
	r.SetHorizontalOffset(16)

	pg := r.Outline(60, 40)
	if pg[4] != geom.Pt(16, 40) {
		t.Fatalf("tip point = %v, want (16,40)", pg[4])
	}

	r.Flip(true, true)
	pg = r.Outline(60, 40)
	found := false
	for _, p := range pg {
		if p == geom.Pt(44, 0) {
			found = true
		}
	}
	if !found {
		t.Fatalf("flipped outline %v has no tip at (44,0)", pg)
	}
	if b := pg.Bounds(); b != geom.R(0, 0, 60, 40) {
		t.Fatalf("outline bounds = %v", b)
	}
}

func TestNewAndParseColor(t *testing.T) {
	for _, k := range Kinds {
		spec := DefaultSpec()
		spec.Kind = k
		if _, err := New(spec); err != nil {
			t.Fatalf("New(%q): %v", k, err)
		}
	}
	if _, err := New(Spec{Kind: "textured"}); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
	c, err := ParseColor("#ff8000")
	if err != nil || c != (color.RGBA{R: 255, G: 128, A: 255}) {
		t.Fatalf("ParseColor = %+v, %v", c, err)
	}
	if c, _ := ParseColor("#0f08"); c != (color.RGBA{}) {
		// 4 hex digits is not a supported form
		t.Fatalf("unexpected parse of short alpha form: %+v", c)
	}
	if Hex(color.RGBA{R: 1, G: 2, B: 3, A: 4}) != "#01020304" {
		t.Fatalf("Hex mismatch")
	}
}
