/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package positioner

import (
	"log/slog"

	"balloontip/internal/geom"
	applog "balloontip/internal/log"
)

// Centered keeps the tip in the middle of the bubble's bottom (or top) edge,
// horizontally centred on the anchor. Only the vertical axis flips.
type Centered struct {
	host                  Host
	verticalOffset        int
	orientationCorrection bool
	fixedAttachLocation   bool
	attachY               float32
	log                   *slog.Logger

	x, y, w, h int
	flipY      bool
}

// NewCentered returns a centered positioner with the given tip height.
func NewCentered(verticalOffset int) *Centered {
	return &Centered{
		verticalOffset:        verticalOffset,
		orientationCorrection: true,
		log:                   applog.WithComponent("positioner").With(slog.String("orientation", "CENTERED")),
	}
}

func (c *Centered) Bind(h Host) {
	c.host = h
	c.OnStyleChange()
}

func (c *Centered) OnStyleChange() {
	if c.host == nil || c.host.Style() == nil {
		return
	}
	st := c.host.Style()
	st.SetHorizontalOffset(c.host.PreferredSize().W / 2)
	st.SetVerticalOffset(c.verticalOffset)
}

func (c *Centered) SetPreferredVerticalOffset(px int) {
	c.verticalOffset = px
	c.OnStyleChange()
}

func (c *Centered) EnableOrientationCorrection(on bool) { c.orientationCorrection = on }

// SetAttachLocation only honours the vertical fraction; the tip is always
// centred horizontally.
func (c *Centered) SetAttachLocation(_, y float32) error {
	if err := checkFractions(0, y); err != nil {
		return err
	}
	c.attachY = y
	c.fixedAttachLocation = true
	return nil
}

func (c *Centered) TipLocation() geom.Point {
	if c.flipY {
		return geom.Pt(c.x+c.w/2, c.y)
	}
	return geom.Pt(c.x+c.w/2, c.y+c.h)
}

func (c *Centered) Geometry() Geometry {
	o := LeftAbove
	if c.flipY {
		o = LeftBelow
	}
	return Geometry{
		Bounds:           geom.R(c.x, c.y, c.w, c.h),
		Orientation:      o,
		HorizontalOffset: c.w / 2,
		FlipY:            c.flipY,
		Tip:              c.TipLocation(),
	}
}

func (c *Centered) DetermineAndSetLocation(anchor geom.Rect) {
	if c.host == nil {
		c.log.Warn("placement requested before the positioner was bound")
		return
	}
	if anchor.Empty() {
		return
	}
	size := c.host.PreferredSize()
	bw, bh := size.W, size.H
	hOffset := bw / 2
	flipY := false

	x := anchor.At(0.5, 0).X - hOffset
	y := anchor.Y - bh
	if c.fixedAttachLocation {
		y = anchor.At(0, c.attachY).Y - bh
	}

	if container, ok := c.host.Container(); ok && c.orientationCorrection && y < container.Y {
		flipY = true
		if c.fixedAttachLocation {
			y += bh
		} else {
			y = anchor.Bottom()
		}
		c.log.Debug("flipped below", slog.Int("y", y))
	}

	c.x, c.y, c.w, c.h, c.flipY = x, y, bw, bh, flipY
	st := c.host.Style()
	st.SetHorizontalOffset(hOffset)
	st.Flip(false, flipY)
	c.host.SetBounds(geom.R(x, y, bw, bh))
	c.host.Revalidate()
}
