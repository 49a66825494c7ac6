/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// MirrorX reflects p around the vertical line x = axis.
func MirrorX(p Point, axis int) Point { return Point{X: 2*axis - p.X, Y: p.Y} }

// MirrorY reflects p around the horizontal line y = axis.
func MirrorY(p Point, axis int) Point { return Point{X: p.X, Y: 2*axis - p.Y} }

// Polygon is a closed outline; the last point connects back to the first.
type Polygon []Point

// Translate returns a copy of the polygon moved by d.
func (pg Polygon) Translate(d Point) Polygon {
	out := make(Polygon, len(pg))
	for i, p := range pg {
		out[i] = p.Add(d)
	}
	return out
}

// Flip mirrors a polygon drawn in a w x h box around the box's vertical and/or
// horizontal centre line. Point order is reversed for a single mirror so the
// winding direction stays the same.
func (pg Polygon) Flip(w, h int, flipX, flipY bool) Polygon {
	if !flipX && !flipY {
		return append(Polygon(nil), pg...)
	}
	out := make(Polygon, len(pg))
	for i, p := range pg {
		if flipX {
			p.X = w - p.X
		}
		if flipY {
			p.Y = h - p.Y
		}
		out[i] = p
	}
	if flipX != flipY {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// Bounds returns the smallest rectangle enclosing all points.
func (pg Polygon) Bounds() Rect {
	if len(pg) == 0 {
		return Rect{}
	}
	x0, y0, x1, y1 := pg[0].X, pg[0].Y, pg[0].X, pg[0].Y
	for _, p := range pg[1:] {
		x0, y0 = min(x0, p.X), min(y0, p.Y)
		x1, y1 = max(x1, p.X), max(y1, p.Y)
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}
