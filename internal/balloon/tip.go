/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package balloon attaches balloon tips to nodes of a widget tree. A Tip
// tracks its anchor's geometry and visibility, folds several independent
// visibility criteria into one show/hide decision and asks its positioner for
// a new placement whenever something relevant changes.
//
// Everything here runs on the toolkit's event goroutine; nothing is locked.
package balloon

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"balloontip/internal/geom"
	applog "balloontip/internal/log"
	"balloontip/internal/positioner"
	"balloontip/internal/style"
)

var (
	ErrNilPositioner = errors.New("balloon: positioner is nil")
	ErrNilStyle      = errors.New("balloon: style is nil")
	ErrNilAnchor     = errors.New("balloon: anchor is nil")
	ErrNilSurface    = errors.New("balloon: surface is nil")
	ErrClosed        = errors.New("balloon: tip is closed")
)

// DefaultLayer is the popup layer of a surface. A balloon nested inside
// another balloon is drawn one layer above it.
const DefaultLayer = 300

// State is the attachment state of a Tip.
type State int

const (
	StateUnattached State = iota
	StateHidden
	StateVisible
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnattached:
		return "unattached"
	case StateHidden:
		return "hidden"
	case StateVisible:
		return "visible"
	case StateClosed:
		return "closed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Contents is whatever the bubble displays; only its size matters here.
type Contents interface {
	Size() geom.Size
}

// Options configures a new Tip. Style and Positioner are required.
type Options struct {
	ID          string
	Style       style.Style
	Positioner  positioner.Positioner
	Contents    Contents
	Padding     int
	CloseButton CloseButton
}

type group int

const (
	groupSurface group = iota
	groupAnchor
	groupViewport
	groupButton
	groupClick
	groupModel
)

type subscription struct {
	g      group
	cancel func()
}

var tipSeq atomic.Int64

// Tip is a balloon attached to an anchor node.
type Tip struct {
	id  string
	log *slog.Logger

	anchor   Node
	st       style.Style
	pos      positioner.Positioner
	contents Contents
	padding  int
	closeBtn CloseButton

	state    State
	criteria map[string]bool
	surface  Surface
	pinned   Surface
	viewport Viewport
	layer    int
	tabs     []Node
	bounds   geom.Rect
	insets   geom.Insets

	subs      []subscription
	pending   func()
	clicks    callbacks
	observers callbacks

	anchorRect  func() geom.Rect
	attachHooks []func(anchor Node)
}

var _ positioner.Host = (*Tip)(nil)

// New creates a tip for anchor and attaches it as soon as the anchor is part
// of a tree with a Surface at its root.
func New(anchor Node, opts Options) (*Tip, error) {
	t, err := newTip(anchor, opts)
	if err != nil {
		return nil, err
	}
	t.start()
	return t, nil
}

// NewOriented builds a tip with a Basic positioner for the given orientation
// and attach location.
func NewOriented(anchor Node, contents Contents, st style.Style, o positioner.Orientation, loc positioner.AttachLocation, hOffset, vOffset int, closeButton CloseButton) (*Tip, error) {
	p, err := positioner.New(o, loc, hOffset, vOffset)
	if err != nil {
		return nil, err
	}
	return New(anchor, Options{Style: st, Positioner: p, Contents: contents, CloseButton: closeButton})
}

func newTip(anchor Node, opts Options) (*Tip, error) {
	switch {
	case anchor == nil:
		return nil, ErrNilAnchor
	case opts.Style == nil:
		return nil, ErrNilStyle
	case opts.Positioner == nil:
		return nil, ErrNilPositioner
	case opts.Padding < 0:
		return nil, fmt.Errorf("balloon: negative padding %d", opts.Padding)
	}
	id := opts.ID
	if id == "" {
		id = fmt.Sprintf("tip-%d", tipSeq.Add(1))
	}
	t := &Tip{
		id:       id,
		log:      applog.WithBalloon(applog.WithComponent("balloon"), id),
		anchor:   anchor,
		st:       opts.Style,
		pos:      opts.Positioner,
		contents: opts.Contents,
		padding:  opts.Padding,
		criteria: map[string]bool{CriterionManual: true},
		layer:    DefaultLayer,
	}
	t.anchorRect = func() geom.Rect { return t.anchor.Bounds() }
	if opts.CloseButton != nil {
		t.closeBtn = opts.CloseButton
		t.track(groupButton, opts.CloseButton.OnPress(func() { t.dismiss(true) }))
	}
	return t, nil
}

func (t *Tip) start() {
	t.pos.Bind(t)
	t.setup()
	t.RefreshLocation()
}

func (t *Tip) track(g group, cancel func()) {
	t.subs = append(t.subs, subscription{g: g, cancel: cancel})
}

// release cancels the subscriptions of the given groups, newest first.
func (t *Tip) release(groups ...group) {
	match := func(g group) bool {
		for _, x := range groups {
			if x == g {
				return true
			}
		}
		return len(groups) == 0
	}
	for i := len(t.subs) - 1; i >= 0; i-- {
		if match(t.subs[i].g) {
			t.subs[i].cancel()
		}
	}
	kept := t.subs[:0]
	for _, s := range t.subs {
		if !match(s.g) {
			kept = append(kept, s)
		}
	}
	t.subs = kept
}

func (t *Tip) cancelPending() {
	if t.pending != nil {
		t.pending()
		t.pending = nil
	}
}

func (t *Tip) setup() {
	a := walk(t.anchor)
	surface := a.surface
	if t.pinned != nil {
		surface = t.pinned
	}
	if surface == nil {
		t.deferAttach()
		return
	}
	t.attach(surface, a)
}

func (t *Tip) deferAttach() {
	if t.pending != nil {
		return
	}
	t.log.Info("anchor has no surface yet; attach deferred")
	t.pending = t.anchor.Subscribe(func(e Event) {
		if e.Kind != AncestorAdded || t.state != StateUnattached {
			return
		}
		a := walk(t.anchor)
		surface := a.surface
		if t.pinned != nil {
			surface = t.pinned
		}
		if surface == nil {
			return
		}
		t.cancelPending()
		t.attach(surface, a)
		t.RefreshLocation()
	})
}

func (t *Tip) attach(surface Surface, a ancestry) {
	t.surface = surface
	t.layer = DefaultLayer
	if a.popup != nil {
		t.layer = DefaultLayer + 1
		if l, ok := a.popup.(Layered); ok {
			t.layer = l.Layer() + 1
		}
	}
	t.attachSurface(surface)
	t.track(groupAnchor, t.anchor.Subscribe(t.onAnchorEvent))

	t.tabs = a.tabs
	delete(t.criteria, CriterionTabShowing)
	for _, tab := range a.tabs {
		t.track(groupAnchor, tab.Subscribe(func(e Event) {
			if e.Kind == Shown || e.Kind == Hidden {
				t.SetCriterion(CriterionTabShowing, t.tabsShowing())
			}
		}))
	}
	if len(a.tabs) > 0 {
		t.criteria[CriterionTabShowing] = t.tabsShowing()
	}
	if a.popup != nil {
		t.track(groupAnchor, a.popup.Subscribe(func(e Event) {
			switch e.Kind {
			case Moved, Resized:
				t.RefreshLocation()
			case Shown, Hidden:
				t.SetCriterion(CriterionAnchorShowing, t.anchorShowing())
			}
		}))
	}
	for _, hook := range t.attachHooks {
		hook(t.anchor)
	}

	t.criteria[CriterionAnchorShowing] = t.anchorShowing()
	t.state = StateHidden
	t.log.Info("attached", slog.Int("layer", t.layer), slog.Int("tabs", len(a.tabs)), slog.Bool("nested", a.popup != nil))
	// place once before showing so a viewport criterion is never stale
	t.pos.DetermineAndSetLocation(t.anchorRect())
	if within, ok := t.withinViewport(); ok {
		t.criteria[CriterionWithinViewport] = within
	}
	t.update()
}

func (t *Tip) attachSurface(s Surface) {
	s.AddBalloon(t, t.layer)
	t.track(groupSurface, func() { s.RemoveBalloon(t) })
	t.track(groupSurface, s.Subscribe(func(e Event) {
		if e.Kind == Resized {
			t.RefreshLocation()
		}
	}))
}

func (t *Tip) onAnchorEvent(e Event) {
	switch e.Kind {
	case Moved:
		t.RefreshLocation()
	case Resized:
		t.SetCriterion(CriterionAnchorShowing, t.anchorShowing())
		t.RefreshLocation()
	case Shown, Hidden:
		t.SetCriterion(CriterionAnchorShowing, t.anchorShowing())
		t.checkViewport()
	}
}

func (t *Tip) anchorShowing() bool {
	return t.anchor.Showing() && !t.anchor.Bounds().Empty()
}

func (t *Tip) tabsShowing() bool {
	for _, tab := range t.tabs {
		if !ownVisible(tab) {
			return false
		}
	}
	return true
}

// RefreshLocation recomputes the anchor rectangle and places the bubble.
func (t *Tip) RefreshLocation() {
	if t.state == StateClosed || t.state == StateUnattached {
		return
	}
	t.pos.DetermineAndSetLocation(t.anchorRect())
	t.checkViewport()
	t.notify()
}

// SetStyle swaps the skin and re-applies the positioner's offsets to it.
func (t *Tip) SetStyle(st style.Style) error {
	if st == nil {
		return ErrNilStyle
	}
	if t.state == StateClosed {
		return ErrClosed
	}
	t.st = st
	t.pos.OnStyleChange()
	t.RefreshLocation()
	return nil
}

func (t *Tip) SetPositioner(p positioner.Positioner) error {
	if p == nil {
		return ErrNilPositioner
	}
	if t.state == StateClosed {
		return ErrClosed
	}
	t.pos = p
	p.Bind(t)
	t.RefreshLocation()
	return nil
}

func (t *Tip) SetContents(c Contents) error {
	if t.state == StateClosed {
		return ErrClosed
	}
	t.contents = c
	t.RefreshLocation()
	return nil
}

func (t *Tip) SetPadding(px int) error {
	if px < 0 {
		return fmt.Errorf("balloon: negative padding %d", px)
	}
	if t.state == StateClosed {
		return ErrClosed
	}
	t.padding = px
	t.RefreshLocation()
	return nil
}

// SetCloseButton replaces the close button; nil removes it. Unless noDefault
// is set, pressing it closes the tip (permanentClose) or hides it.
func (t *Tip) SetCloseButton(btn CloseButton, permanentClose, noDefault bool) error {
	if t.state == StateClosed {
		return ErrClosed
	}
	t.release(groupButton)
	t.closeBtn = btn
	if btn != nil && !noDefault {
		t.track(groupButton, btn.OnPress(func() { t.dismiss(permanentClose) }))
	}
	t.RefreshLocation()
	return nil
}

// AddDefaultClickHandler makes a click anywhere on the bubble close or hide it.
func (t *Tip) AddDefaultClickHandler(permanentClose bool) error {
	if t.state == StateClosed {
		return ErrClosed
	}
	t.track(groupClick, t.clicks.add(func() { t.dismiss(permanentClose) }))
	return nil
}

// OnClick registers fn for clicks on the bubble body.
func (t *Tip) OnClick(fn func()) (cancel func()) {
	cancel = t.clicks.add(fn)
	t.track(groupClick, cancel)
	return cancel
}

// Click is called by toolkit adapters when the bubble is clicked.
func (t *Tip) Click() {
	if t.state == StateClosed {
		return
	}
	t.clicks.run()
}

func (t *Tip) dismiss(permanent bool) {
	if permanent {
		t.CloseBalloon()
		return
	}
	t.SetVisible(false)
}

// SetAttachedComponent moves the tip to another anchor. A viewport tracked
// for the old anchor is dropped; Custom variants look up the new anchor's.
func (t *Tip) SetAttachedComponent(n Node) error {
	if n == nil {
		return ErrNilAnchor
	}
	if t.state == StateClosed {
		return ErrClosed
	}
	t.cancelPending()
	t.release(groupSurface, groupAnchor, groupViewport)
	t.surface = nil
	t.viewport = nil
	t.tabs = nil
	delete(t.criteria, CriterionWithinViewport)
	t.anchor = n
	t.state = StateUnattached
	t.setup()
	t.RefreshLocation()
	t.notify()
	return nil
}

// SetTopLevelContainer draws the tip on s instead of the surface found by
// walking the anchor's ancestors.
func (t *Tip) SetTopLevelContainer(s Surface) error {
	if s == nil {
		return ErrNilSurface
	}
	if t.state == StateClosed {
		return ErrClosed
	}
	t.pinned = s
	if t.state == StateUnattached {
		t.cancelPending()
		t.attach(s, walk(t.anchor))
		t.RefreshLocation()
		return nil
	}
	t.release(groupSurface)
	t.surface = s
	t.attachSurface(s)
	t.RefreshLocation()
	return nil
}

// SetViewport tracks the tip point against v's visible rectangle; nil stops
// tracking and drops the withinViewport criterion.
func (t *Tip) SetViewport(v Viewport) error {
	if t.state == StateClosed {
		return ErrClosed
	}
	t.watchViewport(v)
	if v == nil {
		delete(t.criteria, CriterionWithinViewport)
		t.update()
		return nil
	}
	t.RefreshLocation()
	return nil
}

func (t *Tip) watchViewport(v Viewport) {
	t.release(groupViewport)
	t.viewport = v
	if v == nil {
		return
	}
	t.track(groupViewport, v.Subscribe(func(e Event) {
		switch e.Kind {
		case ViewChanged:
			if t.anchor.Showing() {
				t.RefreshLocation()
			}
		case Shown:
			t.RefreshLocation()
		case Hidden:
			t.checkViewport()
		}
	}))
}

// withinViewport reports whether the tip point lies in the viewport's visible
// rectangle. A viewport that is not showing contains nothing.
func (t *Tip) withinViewport() (within, ok bool) {
	if t.viewport == nil {
		return false, false
	}
	if !t.viewport.Showing() {
		return false, true
	}
	vr := t.viewport.VisibleRect()
	tip := t.pos.TipLocation()
	return tip.Y >= vr.Y-1 && tip.Y <= vr.Bottom() && tip.X >= vr.X && tip.X <= vr.Right(), true
}

func (t *Tip) checkViewport() {
	if within, ok := t.withinViewport(); ok {
		t.SetCriterion(CriterionWithinViewport, within)
	}
}

// CloseBalloon hides the tip for good and removes every subscription it
// holds, newest first. Calling it again does nothing.
func (t *Tip) CloseBalloon() {
	if t.state == StateClosed {
		return
	}
	t.state = StateClosed
	t.cancelPending()
	t.release()
	t.surface = nil
	t.viewport = nil
	t.log.Info("closed")
	t.notify()
	t.observers = callbacks{}
}

// Observe registers fn to be called after every placement or visibility
// change. Renderers use it to repaint.
func (t *Tip) Observe(fn func(*Tip)) (cancel func()) {
	return t.observers.add(func() { fn(t) })
}

func (t *Tip) notify() { t.observers.run() }

// positioner.Host

func (t *Tip) PreferredSize() geom.Size {
	var sz geom.Size
	if t.contents != nil {
		sz = t.contents.Size()
	}
	sz.W += 2 * t.padding
	sz.H += 2 * t.padding
	if t.closeBtn != nil {
		b := t.closeBtn.Size()
		sz.W += b.W
		sz.H = max(sz.H, b.H)
	}
	return sz.Grow(t.st.BorderInsets())
}

func (t *Tip) Style() style.Style { return t.st }

func (t *Tip) Container() (geom.Rect, bool) {
	if t.surface == nil {
		return geom.Rect{}, false
	}
	return t.surface.Bounds(), true
}

func (t *Tip) SetBounds(r geom.Rect) { t.bounds = r }

// Revalidate re-reads the style insets; they move with the flip state.
func (t *Tip) Revalidate() { t.insets = t.st.BorderInsets() }

// accessors

func (t *Tip) ID() string { return t.id }
func (t *Tip) Anchor() Node { return t.anchor }
func (t *Tip) Surface() Surface { return t.surface }
func (t *Tip) Positioner() positioner.Positioner { return t.pos }
func (t *Tip) Contents() Contents { return t.contents }
func (t *Tip) Padding() int { return t.padding }
func (t *Tip) CloseButton() CloseButton { return t.closeBtn }
func (t *Tip) Viewport() Viewport { return t.viewport }
func (t *Tip) Layer() int { return t.layer }
func (t *Tip) Bounds() geom.Rect { return t.bounds }
func (t *Tip) State() State { return t.state }
func (t *Tip) Shown() bool { return t.state == StateVisible }
func (t *Tip) Geometry() positioner.Geometry { return t.pos.Geometry() }

// ContentBounds is where the contents are drawn, inside border and padding.
func (t *Tip) ContentBounds() geom.Rect {
	r := geom.R(
		t.bounds.X+t.insets.Left+t.padding,
		t.bounds.Y+t.insets.Top+t.padding,
		0, 0,
	)
	if t.contents != nil {
		sz := t.contents.Size()
		r.W, r.H = sz.W, sz.H
	}
	return r
}

// CloseButtonBounds is the close button's area at the top right of the body.
func (t *Tip) CloseButtonBounds() (geom.Rect, bool) {
	if t.closeBtn == nil {
		return geom.Rect{}, false
	}
	b := t.closeBtn.Size()
	return geom.R(t.bounds.Right()-t.insets.Right-b.W, t.bounds.Y+t.insets.Top, b.W, b.H), true
}
