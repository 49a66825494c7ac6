/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "testing"

func TestRectEdgesAndContains(t *testing.T) {
	r := R(10, 20, 30, 40)
	if r.Right() != 40 || r.Bottom() != 60 {
		t.Fatalf("edges: right=%d bottom=%d", r.Right(), r.Bottom())
	}
	if !r.Contains(Pt(10, 20)) || !r.Contains(Pt(40, 60)) || r.Contains(Pt(41, 30)) {
		t.Fatalf("contains mismatch for %v", r)
	}
	if !r.ContainsRect(R(15, 25, 5, 5)) || r.ContainsRect(R(35, 25, 10, 5)) {
		t.Fatalf("ContainsRect mismatch")
	}
	if (Rect{W: 0, H: 5}).Empty() != true || r.Empty() {
		t.Fatalf("Empty mismatch")
	}
}

func TestIntersectUnion(t *testing.T) {
	a := R(0, 0, 10, 10)
	b := R(5, 5, 10, 10)
	if got := a.Intersect(b); got != R(5, 5, 5, 5) {
		t.Fatalf("intersect = %v", got)
	}
	if got := a.Intersect(R(20, 20, 1, 1)); got != (Rect{}) {
		t.Fatalf("disjoint intersect = %v", got)
	}
	if got := a.Union(b); got != R(0, 0, 15, 15) {
		t.Fatalf("union = %v", got)
	}
}

func TestAtTruncates(t *testing.T) {
	r := R(0, 0, 25, 11)
	if p := r.At(0.5, 0.5); p != Pt(12, 5) {
		t.Fatalf("At(0.5,0.5) = %v", p)
	}
	if p := R(-10, -10, 5, 5).At(0.5, 0.5); p != Pt(-7, -7) {
		t.Fatalf("negative At truncation = %v", p)
	}
	if p := r.At(1, 1); p != Pt(25, 11) {
		t.Fatalf("At(1,1) = %v", p)
	}
}

func TestWithinAndInsets(t *testing.T) {
	outer := R(100, 50, 200, 200)
	if got := outer.Within(R(10, 20, 5, 5)); got != R(110, 70, 5, 5) {
		t.Fatalf("Within = %v", got)
	}
	in := Insets{Top: 1, Left: 2, Bottom: 3, Right: 4}
	if in.Horizontal() != 6 || in.Vertical() != 4 {
		t.Fatalf("insets sums wrong: %+v", in)
	}
	if s := (Size{W: 10, H: 10}).Grow(in); s != (Size{W: 16, H: 14}) {
		t.Fatalf("Grow = %+v", s)
	}
}

func TestPolygonFlip(t *testing.T) {
	tri := Polygon{Pt(0, 0), Pt(10, 0), Pt(0, 4)}
	fx := tri.Flip(10, 4, true, false)
	want := Polygon{Pt(10, 4), Pt(0, 0), Pt(10, 0)}
	for i := range want {
		if fx[i] != want[i] {
			t.Fatalf("flipX = %v, want %v", fx, want)
		}
	}
	both := tri.Flip(10, 4, true, true)
	if both[0] != Pt(10, 4) || both[1] != Pt(0, 4) || both[2] != Pt(10, 0) {
		t.Fatalf("flip both = %v", both)
	}
	if b := tri.Translate(Pt(5, 5)).Bounds(); b != R(5, 5, 10, 4) {
		t.Fatalf("bounds = %v", b)
	}
	if MirrorX(Pt(3, 7), 5) != Pt(7, 7) || MirrorY(Pt(3, 7), 5) != Pt(3, 3) {
		t.Fatalf("mirror helpers wrong")
	}
}
