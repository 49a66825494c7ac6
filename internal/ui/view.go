/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package ui is the balloon playground window. The window itself needs Fyne
// and cgo (build with -tags fyne); the geometry helpers here do not.
package ui

import (
	"math"
	"slices"
	"strings"

	"balloontip/internal/geom"
	"balloontip/internal/scenario"
)

const (
	minZoom = 0.25
	maxZoom = 4
)

// viewport maps widget positions onto container coordinates. The rendered
// diagram covers extent and is shown at zoom.
type viewport struct {
	extent geom.Rect
	zoom   float32
}

func (v viewport) size() (w, h float32) {
	return float32(v.extent.W) * v.zoom, float32(v.extent.H) * v.zoom
}

func (v viewport) toContainer(x, y float32) geom.Point {
	z := v.zoom
	if z <= 0 {
		z = 1
	}
	return geom.Pt(v.extent.X+int(math.Floor(float64(x/z))), v.extent.Y+int(math.Floor(float64(y/z))))
}

func clampZoom(z float32) float32 { return min(maxZoom, max(minZoom, z)) }

// hitBalloon returns the top-most visible balloon under p. Higher layers win,
// then later declarations.
func hitBalloon(ps []scenario.Placement, p geom.Point) (string, bool) {
	best, layer := -1, math.MinInt
	for i, pl := range ps {
		if !pl.Visible || !pl.Bounds.Contains(p) {
			continue
		}
		if pl.Layer >= layer {
			best, layer = i, pl.Layer
		}
	}
	if best < 0 {
		return "", false
	}
	return ps[best].Balloon, true
}

// dragAccumulator turns fractional pointer deltas into whole container pixels.
type dragAccumulator struct{ fx, fy float32 }

func (d *dragAccumulator) add(dx, dy, zoom float32) (int, int) {
	if zoom <= 0 {
		zoom = 1
	}
	d.fx += dx / zoom
	d.fy += dy / zoom
	ix, iy := int(d.fx), int(d.fy)
	d.fx -= float32(ix)
	d.fy -= float32(iy)
	return ix, iy
}

const recentMax = 10

// pushRecent puts path first, dropping duplicates (case-insensitive, for
// Windows paths) and trimming the list to recentMax.
func pushRecent(items []string, path string) []string {
	path = strings.TrimSpace(path)
	if path == "" {
		return items
	}
	out := make([]string, 0, len(items)+1)
	out = append(out, path)
	for _, s := range items {
		if strings.EqualFold(s, path) || slices.ContainsFunc(out, func(o string) bool { return strings.EqualFold(o, s) }) {
			continue
		}
		out = append(out, s)
	}
	if len(out) > recentMax {
		out = out[:recentMax]
	}
	return out
}

// demoScenario is opened when the playground starts without a file.
const demoScenario = `
name: playground
container: {width: 480, height: 320}
nodes:
  - id: name
    bounds: {x: 40, y: 60, width: 160, height: 24}
  - id: list
    kind: list
    bounds: {x: 260, y: 40, width: 180, height: 200}
    items: 8
    item_height: 20
  - id: corner
    bounds: {x: 430, y: 290, width: 40, height: 20}
balloons:
  - id: required
    anchor: name
    text: "This field is required"
  - id: item
    anchor: list
    variant: list_item
    index: 3
    text: "Item three changed"
    style: {kind: edged, fill: "#fff8dc"}
  - id: squeezed
    anchor: corner
    text: "Flips near the edge"
    style: {kind: minimal}
`

func demoDocument() (*scenario.Document, error) { return scenario.Parse([]byte(demoScenario)) }
