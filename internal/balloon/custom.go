/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package balloon

import (
	"balloontip/internal/geom"
)

// Custom anchors the tip to a sub-rectangle of its anchor node. The offset is
// relative to the anchor's origin; nil means the whole anchor.
type Custom struct {
	*Tip
	offset *geom.Rect
}

// NewCustom creates a tip pointing at offset within anchor. If the anchor sits
// inside a viewport the tip hides while its tip point is scrolled out of view.
func NewCustom(anchor Node, opts Options, offset *geom.Rect) (*Custom, error) {
	c, err := newCustom(anchor, opts, offset)
	if err != nil {
		return nil, err
	}
	c.begin()
	return c, nil
}

func newCustom(anchor Node, opts Options, offset *geom.Rect) (*Custom, error) {
	t, err := newTip(anchor, opts)
	if err != nil {
		return nil, err
	}
	c := &Custom{Tip: t, offset: cloneRect(offset)}
	t.anchorRect = c.rect
	t.attachHooks = append(t.attachHooks, c.hookAnchor)
	return c, nil
}

func (c *Custom) begin() { c.start() }

func cloneRect(r *geom.Rect) *geom.Rect {
	if r == nil {
		return nil
	}
	cp := *r
	return &cp
}

func (c *Custom) rect() geom.Rect {
	r := c.anchor.Bounds()
	if c.offset == nil {
		return r
	}
	return r.Within(*c.offset)
}

// hookAnchor runs on every attach, including a deferred one, so the viewport
// is looked up once the anchor's ancestors are final. An explicitly set
// viewport is kept. A click or key press inside the anchor may have scrolled
// or re-laid it out.
func (c *Custom) hookAnchor(anchor Node) {
	if c.viewport == nil {
		if v, ok := FindViewport(anchor); ok {
			c.watchViewport(v)
		}
	}
	c.track(groupAnchor, anchor.Subscribe(func(e Event) {
		if e.Kind == Interacted {
			_ = c.SetOffset(c.offset)
		}
	}))
}

// SetOffset changes the sub-rectangle the tip points at and restacks the tip.
func (c *Custom) SetOffset(r *geom.Rect) error {
	if c.state == StateClosed {
		return ErrClosed
	}
	c.offset = cloneRect(r)
	c.RefreshLocation()
	c.SetCriterion(CriterionRefresh, false)
	c.SetCriterion(CriterionRefresh, true)
	return nil
}

// Offset returns the current sub-rectangle; ok is false when the whole anchor
// is used.
func (c *Custom) Offset() (r geom.Rect, ok bool) {
	if c.offset == nil {
		return geom.Rect{}, false
	}
	return *c.offset, true
}
