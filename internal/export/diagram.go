/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export draws placement diagrams of a scenario run: the container,
// the component nodes, every balloon's outline and its tip point. PNG and
// SVG write one frame; PDF writes one page per frame.
package export

import (
	"errors"
	"fmt"
	"image/color"

	"balloontip/internal/geom"
	"balloontip/internal/scenario"
)

// ErrNoFrames is returned for a result without any recorded frame.
var ErrNoFrames = errors.New("result has no frames")

// Options controls what a diagram shows.
//
//nolint:revive // keep fields explicit for clarity
type Options struct {
	// Frame indexes Result.Frames; negative values count from the end and
	// nil selects the last frame.
	Frame *int
	// Frames selects the PDF pages; empty means every frame.
	Frames     []int
	Scale      float64 // output units per container pixel; 1 if zero
	Margin     int     // container pixels around the diagram; 10 if zero
	ShowHidden bool    // draw hidden and closed balloons as grey outlines
	Labels     bool    // write balloon ids next to the bubbles

	ContainerStroke color.RGBA
	NodeStroke      color.RGBA
	TipColor        color.RGBA
}

// DefaultOptions draws the last frame with labels.
func DefaultOptions() Options {
	return Options{Labels: true}
}

// FrameAt returns a frame selector for Options.Frame and BatchOptions.Frame.
func FrameAt(i int) *int { return &i }

func (o Options) frame() int {
	if o.Frame == nil {
		return -1
	}
	return *o.Frame
}

func (o Options) withDefaults() Options {
	if o.Scale <= 0 {
		o.Scale = 1
	}
	if o.Margin <= 0 {
		o.Margin = 10
	}
	if o.ContainerStroke == (color.RGBA{}) {
		o.ContainerStroke = color.RGBA{A: 255}
	}
	if o.NodeStroke == (color.RGBA{}) {
		o.NodeStroke = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	}
	if o.TipColor == (color.RGBA{}) {
		o.TipColor = color.RGBA{R: 220, A: 255}
	}
	return o
}

var hiddenStroke = color.RGBA{R: 200, G: 200, B: 200, A: 255}

// diagram is one frame ready to draw, in container coordinates.
type diagram struct {
	title      string
	container  geom.Rect
	nodes      []scenario.NodeBox
	placements []scenario.Placement
}

func frameIndex(n, i int) (int, error) {
	if n == 0 {
		return 0, ErrNoFrames
	}
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, fmt.Errorf("frame %d out of range [0,%d)", i, n)
	}
	return i, nil
}

func frameOf(res *scenario.Result, i int) (diagram, error) {
	if res == nil {
		return diagram{}, fmt.Errorf("result is nil")
	}
	idx, err := frameIndex(len(res.Frames), i)
	if err != nil {
		return diagram{}, err
	}
	f := res.Frames[idx]
	return diagram{
		title:      fmt.Sprintf("%s: step %d (%s)", res.Name, f.Step, f.Action),
		container:  res.Container,
		nodes:      res.Nodes,
		placements: f.Placements,
	}, nil
}

// extent is the drawing area including the margin and any balloon that
// overflows the container.
func (d diagram) extent(margin int) geom.Rect {
	r := d.container
	for _, p := range d.placements {
		if !p.Bounds.Empty() {
			r = r.Union(p.Bounds)
		}
	}
	return geom.R(r.X-margin, r.Y-margin, r.W+2*margin, r.H+2*margin)
}

// Extent is the area RenderPNG draws for the selected frame, in container
// coordinates. Pixel (0,0) of the image is Extent().Min().
func Extent(res *scenario.Result, opt Options) (geom.Rect, error) {
	opt = opt.withDefaults()
	d, err := frameOf(res, opt.frame())
	if err != nil {
		return geom.Rect{}, err
	}
	return d.extent(opt.Margin), nil
}

// drawn reports whether p is drawn and with which colors.
func drawn(p scenario.Placement, o Options) (fill, stroke color.RGBA, ok bool) {
	if p.Bounds.Empty() {
		return fill, stroke, false
	}
	if p.Visible {
		return p.Fill, p.Border, true
	}
	if o.ShowHidden {
		return color.RGBA{}, hiddenStroke, true
	}
	return fill, stroke, false
}

func outlineOf(p scenario.Placement) geom.Polygon {
	if len(p.Outline) > 0 {
		return p.Outline
	}
	b := p.Bounds
	return geom.Polygon{b.Min(), geom.Pt(b.Right(), b.Y), geom.Pt(b.Right(), b.Bottom()), geom.Pt(b.X, b.Bottom())}
}
