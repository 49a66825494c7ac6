/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package style describes the geometry a balloon skin contributes to positioning:
// border insets, the minimal horizontal tip offset and the bubble outline.
// Painting is left to whatever toolkit renders the outline.
package style

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"balloontip/internal/geom"
)

// Style is the contract between a positioner and a balloon skin.
//
// The horizontal offset recorded through SetHorizontalOffset is always measured
// in the unflipped frame (from the bubble's left edge); a skin mirrors its tip
// when flipX is set.
type Style interface {
	// MinimalHorizontalOffset is the smallest tip offset that keeps the tip off
	// the bubble's corner.
	MinimalHorizontalOffset() int
	// BorderInsets returns the border for the current flip state. The tip side
	// carries the vertical offset.
	BorderInsets() geom.Insets
	SetHorizontalOffset(px int)
	SetVerticalOffset(px int)
	Flip(flipX, flipY bool)
	IsBorderOpaque() bool
}

// Outliner is implemented by styles that can report their bubble outline for a
// given bubble size, in bubble-local coordinates.
type Outliner interface {
	Outline(w, h int) geom.Polygon
}

// Painter exposes the colors a renderer should use.
type Painter interface {
	Colors() (fill, border color.RGBA)
}

// Base holds the state every style shares. Concrete styles embed it.
type Base struct {
	HorizontalOffset int
	VerticalOffset   int
	FlipX, FlipY     bool
	Fill             color.RGBA
	Border           color.RGBA
}

func (b *Base) SetHorizontalOffset(px int) { b.HorizontalOffset = px }
func (b *Base) SetVerticalOffset(px int) { b.VerticalOffset = px }

func (b *Base) Flip(flipX, flipY bool) {
	b.FlipX = flipX
	b.FlipY = flipY
}

// MinimalHorizontalOffset defaults to the vertical offset, which keeps a 45
// degree tip inside a square-cornered body.
func (b *Base) MinimalHorizontalOffset() int { return b.VerticalOffset }

func (b *Base) IsBorderOpaque() bool { return b.Fill.A == 255 }

func (b *Base) Colors() (fill, border color.RGBA) { return b.Fill, b.Border }

// insets puts the vertical offset on the tip side of a uniform border.
func (b *Base) insets(vertical, horizontal int) geom.Insets {
	if b.FlipY {
		return geom.Insets{Top: vertical + b.VerticalOffset, Left: horizontal, Bottom: vertical, Right: horizontal}
	}
	return geom.Insets{Top: vertical, Left: horizontal, Bottom: vertical + b.VerticalOffset, Right: horizontal}
}

// Outline returns the body rectangle joined with a right-angled tip whose
// vertical edge sits at HorizontalOffset and whose height is VerticalOffset.
// The polygon is mirrored according to the flip state.
func (b *Base) Outline(w, h int) geom.Polygon {
	v := b.VerticalOffset
	ho := b.HorizontalOffset
	body := h - v
	pg := geom.Polygon{
		geom.Pt(0, 0),
		geom.Pt(w, 0),
		geom.Pt(w, body),
		geom.Pt(ho+v, body),
		geom.Pt(ho, h),
		geom.Pt(ho, body),
		geom.Pt(0, body),
	}
	return pg.Flip(w, h, b.FlipX, b.FlipY)
}

// ParseColor accepts "#rgb", "#rrggbb" and "#rrggbbaa".
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) == 6 {
		s += "ff"
	}
	if len(s) != 8 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Hex formats c as #rrggbbaa.
func Hex(c color.RGBA) string { return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A) }
