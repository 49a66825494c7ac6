/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package positioner computes where a balloon is drawn relative to its anchor:
// unconstrained placement, one-shot orientation flips against the container
// edges, and horizontal offset correction that keeps the tip on the bubble.
package positioner

import (
	"errors"
	"fmt"
	"log/slog"

	"balloontip/internal/geom"
	applog "balloontip/internal/log"
	"balloontip/internal/style"
)

// ErrInvalidAttachLocation is returned for attach fractions outside [0,1].
var ErrInvalidAttachLocation = errors.New("attach location fractions must be within [0,1]")

// Host is the balloon as seen by a positioner.
type Host interface {
	// PreferredSize is the bubble size including style insets.
	PreferredSize() geom.Size
	Style() style.Style
	// Container returns the bounds of the top-level drawing surface. ok is
	// false while the balloon is not attached to one.
	Container() (r geom.Rect, ok bool)
	SetBounds(r geom.Rect)
	// Revalidate re-lays out the balloon; insets change with the flip state.
	Revalidate()
}

// Positioner places a balloon for a given anchor rectangle.
type Positioner interface {
	Bind(h Host)
	// DetermineAndSetLocation places the bound host next to anchor. Invalid
	// (empty) anchors are ignored; the next refresh retries.
	DetermineAndSetLocation(anchor geom.Rect)
	// TipLocation is the point where the tip touches, in container coordinates.
	TipLocation() geom.Point
	// OnStyleChange pushes the preferred offsets into the host's current style
	// and re-reads the minimal horizontal offset. Call it after swapping styles.
	OnStyleChange()
	Geometry() Geometry
}

// Geometry is the result of the last placement pass.
type Geometry struct {
	Bounds           geom.Rect
	Orientation      Orientation // after flips
	HorizontalOffset int         // distance from the bubble's left edge to the tip
	FlipX, FlipY     bool
	Tip              geom.Point
}

// Config holds the tunables of a Basic positioner.
type Config struct {
	PreferredHorizontalOffset int
	PreferredVerticalOffset   int
	OffsetCorrection          bool
	OrientationCorrection     bool
	FixedAttachLocation       bool
	AttachX, AttachY          float32
}

// DefaultConfig mirrors the stock balloon: 16px tip inset, 20px tip height,
// both corrections on, aligned to the anchor edge.
func DefaultConfig() Config {
	return Config{
		PreferredHorizontalOffset: 16,
		PreferredVerticalOffset:   20,
		OffsetCorrection:          true,
		OrientationCorrection:     true,
	}
}

// Basic implements the four corner orientations with one algorithm. The
// orientation only decides the starting flip flags; everything else is
// mirrored from them.
type Basic struct {
	host        Host
	orientation Orientation
	cfg         Config
	minOffset   int
	log         *slog.Logger

	x, y, w, h   int
	hOffset      int
	flipX, flipY bool
}

// NewBasic returns a positioner for the given orientation and configuration.
func NewBasic(o Orientation, cfg Config) (*Basic, error) {
	if o < LeftAbove || o > RightBelow {
		return nil, fmt.Errorf("invalid orientation %d", int(o))
	}
	if err := checkFractions(cfg.AttachX, cfg.AttachY); err != nil {
		return nil, err
	}
	return &Basic{
		orientation: o,
		cfg:         cfg,
		log:         applog.WithComponent("positioner").With(slog.String("orientation", o.String())),
	}, nil
}

// New builds a Basic positioner from an orientation, a named attach location
// and the preferred tip offsets; corrections are enabled.
func New(o Orientation, loc AttachLocation, hOffset, vOffset int) (*Basic, error) {
	cfg := DefaultConfig()
	cfg.PreferredHorizontalOffset = hOffset
	cfg.PreferredVerticalOffset = vOffset
	cfg.AttachX, cfg.AttachY, cfg.FixedAttachLocation = loc.Fractions()
	return NewBasic(o, cfg)
}

func checkFractions(x, y float32) error {
	if x < 0 || x > 1 || y < 0 || y > 1 {
		return fmt.Errorf("%w: got (%g,%g)", ErrInvalidAttachLocation, x, y)
	}
	return nil
}

func (p *Basic) Bind(h Host) {
	p.host = h
	p.OnStyleChange()
}

func (p *Basic) OnStyleChange() {
	if p.host == nil || p.host.Style() == nil {
		return
	}
	st := p.host.Style()
	st.SetHorizontalOffset(p.cfg.PreferredHorizontalOffset)
	st.SetVerticalOffset(p.cfg.PreferredVerticalOffset)
	p.minOffset = st.MinimalHorizontalOffset()
}

func (p *Basic) Config() Config { return p.cfg }
func (p *Basic) Orientation() Orientation { return p.orientation }
func (p *Basic) MinimalHorizontalOffset() int { return p.minOffset }

// SetOrientation changes the preferred orientation.
func (p *Basic) SetOrientation(o Orientation) { p.orientation = o }

func (p *Basic) SetPreferredHorizontalOffset(px int) {
	p.cfg.PreferredHorizontalOffset = px
	p.OnStyleChange()
}

// SetPreferredVerticalOffset changes the tip height. The minimal horizontal
// offset of most styles depends on it, so it is re-read.
func (p *Basic) SetPreferredVerticalOffset(px int) {
	p.cfg.PreferredVerticalOffset = px
	p.OnStyleChange()
}

func (p *Basic) EnableOffsetCorrection(on bool) { p.cfg.OffsetCorrection = on }
func (p *Basic) EnableOrientationCorrection(on bool) { p.cfg.OrientationCorrection = on }
func (p *Basic) EnableFixedAttachLocation(on bool) { p.cfg.FixedAttachLocation = on }

// SetAttachLocation sets the fractional attach point and enables it.
func (p *Basic) SetAttachLocation(x, y float32) error {
	if err := checkFractions(x, y); err != nil {
		return err
	}
	p.cfg.AttachX, p.cfg.AttachY = x, y
	p.cfg.FixedAttachLocation = true
	return nil
}

func (p *Basic) TipLocation() geom.Point {
	tip := geom.Pt(p.x+p.hOffset, p.y+p.h)
	if p.flipY {
		tip.Y = p.y
	}
	return tip
}

func (p *Basic) Geometry() Geometry {
	return Geometry{
		Bounds:           geom.R(p.x, p.y, p.w, p.h),
		Orientation:      orientationOf(p.flipX, p.flipY),
		HorizontalOffset: p.hOffset,
		FlipX:            p.flipX,
		FlipY:            p.flipY,
		Tip:              p.TipLocation(),
	}
}

func (p *Basic) DetermineAndSetLocation(anchor geom.Rect) {
	if p.host == nil {
		p.log.Warn("placement requested before the positioner was bound")
		return
	}
	if anchor.Empty() {
		p.log.Debug("anchor not laid out yet", slog.String("anchor", anchor.String()))
		return
	}
	size := p.host.PreferredSize()
	bw, bh := size.W, size.H
	fixed := p.cfg.FixedAttachLocation

	flipX, flipY := p.orientation.Right(), p.orientation.Below()
	hOffset := p.cfg.PreferredHorizontalOffset
	if flipX {
		hOffset = bw - hOffset
	}

	var x, y int
	if fixed {
		at := anchor.At(p.cfg.AttachX, p.cfg.AttachY)
		x = at.X - hOffset
		y = at.Y
		if !flipY {
			y -= bh
		}
	} else {
		x = anchor.X
		if flipX {
			x = anchor.Right() - bw
		}
		y = anchor.Y - bh
		if flipY {
			y = anchor.Bottom()
		}
	}

	container, attached := p.host.Container()
	if p.cfg.OrientationCorrection && attached {
		// Y first, then X; each axis flips at most once per pass.
		if !flipY && y < container.Y {
			flipY = true
			if fixed {
				y += bh
			} else {
				y = anchor.Bottom()
			}
			p.log.Debug("flipped below", slog.Int("y", y))
		} else if flipY && y+bh > container.Bottom() {
			flipY = false
			if fixed {
				y -= bh
			} else {
				y = anchor.Y - bh
			}
			p.log.Debug("flipped above", slog.Int("y", y))
		}

		if !flipX && x+bw > container.Right() {
			nx, nh := mirrorX(x, hOffset, bw, fixed, anchor, true)
			if nx >= container.X {
				x, hOffset, flipX = nx, nh, true
				p.log.Debug("flipped right", slog.Int("x", x))
			}
		} else if flipX && x < container.X {
			nx, nh := mirrorX(x, hOffset, bw, fixed, anchor, false)
			if nx+bw <= container.Right() {
				x, hOffset, flipX = nx, nh, false
				p.log.Debug("flipped left", slog.Int("x", x))
			}
		}
	}

	if p.cfg.OffsetCorrection && attached {
		x, hOffset = p.correctOffset(x, hOffset, bw, container)
	}

	p.commit(x, y, bw, bh, hOffset, flipX, flipY)
}

// mirrorX moves the tip to the other end of the bubble. With a fixed attach
// location the tip's absolute position is kept; otherwise the bubble re-aligns
// with the opposite anchor edge.
func mirrorX(x, hOffset, bw int, fixed bool, anchor geom.Rect, toRight bool) (int, int) {
	nh := bw - hOffset
	if fixed {
		return x + hOffset - nh, nh
	}
	if toRight {
		return anchor.Right() - bw, nh
	}
	return anchor.X, nh
}

// correctOffset shifts the bubble back inside the container and moves the tip
// by the same amount the other way, then keeps the tip within
// [min, width-min] of the bubble. When that clamp applies the tip's absolute
// position is kept if possible; a bubble that fits the container is never
// left clipped, even if the tip then drifts off its attach point.
func (p *Basic) correctOffset(x, hOffset, bw int, container geom.Rect) (int, int) {
	tipX := x + hOffset
	if overflow := container.X - x; overflow > 0 {
		x += overflow
		hOffset -= overflow
	}
	if overflow := x + bw - container.Right(); overflow > 0 {
		x -= overflow
		hOffset += overflow
	}
	lo, hi := p.minOffset, bw-p.minOffset
	if lo > hi {
		// the style cannot fit a tip anywhere; centre it
		lo, hi = bw/2, bw/2
	}
	clamped := hOffset
	switch {
	case hOffset < lo:
		clamped = lo
	case hOffset > hi:
		clamped = hi
	}
	if clamped == hOffset {
		return x, hOffset
	}
	p.log.Debug("tip offset clamped", slog.Int("want", hOffset), slog.Int("got", clamped))
	hOffset = clamped
	x = tipX - hOffset
	if bw <= container.W {
		x = max(container.X, min(x, container.Right()-bw))
	}
	return x, hOffset
}

func (p *Basic) commit(x, y, bw, bh, hOffset int, flipX, flipY bool) {
	p.x, p.y, p.w, p.h = x, y, bw, bh
	p.hOffset = hOffset
	p.flipX, p.flipY = flipX, flipY

	st := p.host.Style()
	if flipX {
		st.SetHorizontalOffset(bw - hOffset)
	} else {
		st.SetHorizontalOffset(hOffset)
	}
	st.Flip(flipX, flipY)
	p.host.SetBounds(geom.R(x, y, bw, bh))
	p.host.Revalidate()
}
