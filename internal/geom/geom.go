/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Integer geometry in the shared coordinate space of a top-level drawing surface.
// Widget toolkits hand out pixel positions, so everything here is int; the only
// float input is the fractional attach location.

import "fmt"

// Point is a 2D pixel position.
type Point struct{ X, Y int }

// Pt builds a Point.
func Pt(x, y int) Point { return Point{X: x, Y: y} }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

func (p Point) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Size is a width/height pair.
type Size struct{ W, H int }

// Rect is an axis-aligned rectangle defined by its top-left corner and size.
type Rect struct {
	X, Y int
	W, H int
}

func R(x, y, w, h int) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Point { return Point{r.X, r.Y} }
func (r Rect) Size() Size { return Size{r.W, r.H} }
func (r Rect) Right() int { return r.X + r.W }
func (r Rect) Bottom() int { return r.Y + r.H }

// Empty reports whether the rectangle has no area. An anchor that has not been
// laid out yet reports an empty rectangle.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.Right() && p.Y <= r.Bottom()
}

// ContainsRect reports whether o lies entirely within r.
func (r Rect) ContainsRect(o Rect) bool {
	return o.X >= r.X && o.Y >= r.Y && o.Right() <= r.Right() && o.Bottom() <= r.Bottom()
}

// Translate moves the rectangle by dx,dy.
func (r Rect) Translate(dx, dy int) Rect { return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W, H: r.H} }

// Within returns sub, given relative to r's origin, in r's coordinate space.
func (r Rect) Within(sub Rect) Rect { return sub.Translate(r.X, r.Y) }

// Intersect returns the overlapping area of r and o, or the zero Rect.
func (r Rect) Intersect(o Rect) Rect {
	x0, y0 := max(r.X, o.X), max(r.Y, o.Y)
	x1, y1 := min(r.Right(), o.Right()), min(r.Bottom(), o.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	x0, y0 := min(r.X, o.X), min(r.Y, o.Y)
	x1, y1 := max(r.Right(), o.Right()), max(r.Bottom(), o.Bottom())
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// At returns the point at the fractional position (fx, fy) of the box,
// truncated toward zero like an int conversion of the float sum.
func (r Rect) At(fx, fy float32) Point {
	return Point{
		X: int(float32(r.X) + float32(r.W)*fx),
		Y: int(float32(r.Y) + float32(r.H)*fy),
	}
}

func (r Rect) String() string { return fmt.Sprintf("[%d,%d %dx%d]", r.X, r.Y, r.W, r.H) }

// Insets are border widths per edge.
type Insets struct {
	Top, Left, Bottom, Right int
}

// Horizontal returns Left+Right.
func (i Insets) Horizontal() int { return i.Left + i.Right }

// Vertical returns Top+Bottom.
func (i Insets) Vertical() int { return i.Top + i.Bottom }

// Uniform returns insets of n on every edge.
func Uniform(n int) Insets { return Insets{Top: n, Left: n, Bottom: n, Right: n} }

// Grow returns s enlarged by the insets.
func (s Size) Grow(in Insets) Size { return Size{W: s.W + in.Horizontal(), H: s.H + in.Vertical()} }
