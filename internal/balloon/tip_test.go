/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package balloon_test

import (
	"errors"
	"testing"

	"balloontip/internal/balloon"
	"balloontip/internal/geom"
	"balloontip/internal/positioner"
	"balloontip/internal/style"
	"balloontip/internal/widgettree"
)

type box geom.Size

func (b box) Size() geom.Size { return geom.Size(b) }

func opts(t *testing.T) balloon.Options {
	t.Helper()
	st, err := style.New(style.DefaultSpec())
	if err != nil {
		t.Fatalf("style: %v", err)
	}
	p, err := positioner.NewBasic(positioner.LeftAbove, positioner.DefaultConfig())
	if err != nil {
		t.Fatalf("positioner: %v", err)
	}
	return balloon.Options{Style: st, Positioner: p, Contents: box{W: 40, H: 10}}
}

func mustPanel(t *testing.T, tr *widgettree.Tree, parent, id string, kind widgettree.Kind, r geom.Rect) *widgettree.Node {
	t.Helper()
	n, err := tr.Panel(id, kind, r)
	if err != nil {
		t.Fatalf("panel %s: %v", id, err)
	}
	if parent != "" {
		if err := tr.Attach(parent, id); err != nil {
			t.Fatalf("attach %s: %v", id, err)
		}
	}
	return n
}

func TestAttachPlacesAndShows(t *testing.T) {
	tr := widgettree.New("win", geom.R(0, 0, 400, 300))
	a := mustPanel(t, tr, "win", "a", widgettree.KindPanel, geom.R(100, 100, 40, 20))

	tip, err := balloon.New(a, opts(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if tip.State() != balloon.StateVisible || !tip.EffectiveVisible() {
		t.Fatalf("state = %v, want visible", tip.State())
	}
	if got := tip.PreferredSize(); got != (geom.Size{W: 50, H: 40}) {
		t.Fatalf("preferred size = %v", got)
	}
	if got := tip.Bounds(); got != geom.R(91, 60, 50, 40) {
		t.Fatalf("bounds = %v, want [91,60 50x40]", got)
	}
	placed := tr.Root().Balloons()
	if len(placed) != 1 || placed[0].Tip != tip || placed[0].Layer != balloon.DefaultLayer {
		t.Fatalf("surface registration = %+v", placed)
	}
	if a.Subscribers() != 1 {
		t.Fatalf("anchor subscribers = %d, want 1", a.Subscribers())
	}
	if cb := tip.ContentBounds(); cb != geom.R(96, 65, 40, 10) {
		t.Fatalf("content bounds = %v", cb)
	}
}

func TestCriteriaAreAnded(t *testing.T) {
	tr := widgettree.New("win", geom.R(0, 0, 400, 300))
	a := mustPanel(t, tr, "win", "a", widgettree.KindPanel, geom.R(100, 100, 40, 20))
	tip, err := balloon.New(a, opts(t))
	if err != nil {
		t.Fatal(err)
	}

	tip.SetCriterion("custom", false)
	if tip.EffectiveVisible() || tip.Shown() {
		t.Fatal("one false criterion must hide the tip")
	}
	tip.SetCriterion("custom", true)
	if !tip.EffectiveVisible() || !tip.Shown() {
		t.Fatalf("all criteria true must show the tip: %v", tip.Criteria())
	}

	tip.SetVisible(false)
	if tip.Shown() {
		t.Fatal("manual hide ignored")
	}
	if err := tr.SetVisible("a", false); err != nil {
		t.Fatal(err)
	}
	tip.SetVisible(true)
	if tip.Shown() {
		t.Fatal("manual show revealed a tip whose anchor is hidden")
	}
	if err := tr.SetVisible("a", true); err != nil {
		t.Fatal(err)
	}
	if !tip.Shown() {
		t.Fatalf("anchor shown again but tip hidden: %v", tip.Criteria())
	}
}

func TestZeroSizedAnchorHides(t *testing.T) {
	tr := widgettree.New("win", geom.R(0, 0, 400, 300))
	a := mustPanel(t, tr, "win", "a", widgettree.KindPanel, geom.R(100, 100, 40, 20))
	tip, err := balloon.New(a, opts(t))
	if err != nil {
		t.Fatal(err)
	}
	before := tip.Bounds()
	if err := tr.Resize("a", 0, 20); err != nil {
		t.Fatal(err)
	}
	if tip.Shown() {
		t.Fatal("zero-width anchor should hide the tip")
	}
	if tip.Bounds() != before {
		t.Fatalf("empty anchor moved the bubble: %v -> %v", before, tip.Bounds())
	}
}

func TestTabSwitchHidesWithoutAnchorEvent(t *testing.T) {
	tr := widgettree.New("win", geom.R(0, 0, 400, 300))
	mustPanel(t, tr, "win", "tabs", widgettree.KindTabs, geom.R(0, 0, 400, 300))
	mustPanel(t, tr, "tabs", "p0", widgettree.KindPanel, geom.R(0, 20, 400, 280))
	mustPanel(t, tr, "tabs", "p1", widgettree.KindPanel, geom.R(0, 20, 400, 280))
	a := mustPanel(t, tr, "p0", "a", widgettree.KindPanel, geom.R(100, 100, 40, 20))
	if err := tr.SelectTab("tabs", 0); err != nil {
		t.Fatal(err)
	}

	var anchorEvents int
	a.Subscribe(func(balloon.Event) { anchorEvents++ })

	tip, err := balloon.New(a, opts(t))
	if err != nil {
		t.Fatal(err)
	}
	if !tip.Shown() {
		t.Fatalf("tip should be visible on the selected tab: %v", tip.Criteria())
	}

	if err := tr.SelectTab("tabs", 1); err != nil {
		t.Fatal(err)
	}
	if anchorEvents != 0 {
		t.Fatalf("anchor received %d events on tab switch", anchorEvents)
	}
	if c := tip.Criteria(); c[balloon.CriterionTabShowing] {
		t.Fatalf("tabShowing still true: %v", c)
	}
	if tip.EffectiveVisible() || tip.Shown() {
		t.Fatal("tip visible on a hidden tab")
	}

	if err := tr.SelectTab("tabs", 0); err != nil {
		t.Fatal(err)
	}
	if !tip.Shown() {
		t.Fatal("tip not shown after switching back")
	}
}

func TestDeferredAttach(t *testing.T) {
	tr := widgettree.New("win", geom.R(0, 0, 400, 300))
	mustPanel(t, tr, "", "p", widgettree.KindPanel, geom.R(0, 0, 400, 300))
	a := mustPanel(t, tr, "p", "a", widgettree.KindPanel, geom.R(100, 100, 40, 20))

	tip, err := balloon.New(a, opts(t))
	if err != nil {
		t.Fatal(err)
	}
	if tip.State() != balloon.StateUnattached || tip.Shown() {
		t.Fatalf("state = %v, want unattached", tip.State())
	}
	if a.Subscribers() != 1 {
		t.Fatalf("pending subscriptions = %d, want 1", a.Subscribers())
	}

	if err := tr.Attach("win", "p"); err != nil {
		t.Fatal(err)
	}
	if tip.State() != balloon.StateVisible {
		t.Fatalf("state after insert = %v", tip.State())
	}
	if a.Subscribers() != 1 {
		t.Fatalf("subscriptions after attach = %d, want exactly 1", a.Subscribers())
	}
	if tip.Bounds().Y != 60 {
		t.Fatalf("bounds = %v", tip.Bounds())
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	tr := widgettree.New("win", geom.R(0, 0, 400, 300))
	mustPanel(t, tr, "win", "tabs", widgettree.KindTabs, geom.R(0, 0, 400, 300))
	page := mustPanel(t, tr, "tabs", "p0", widgettree.KindPanel, geom.R(0, 0, 400, 300))
	a := mustPanel(t, tr, "p0", "a", widgettree.KindPanel, geom.R(100, 100, 40, 20))
	root := tr.Root()
	before := root.Subscribers()

	o := opts(t)
	btn := balloon.NewButton(geom.Size{W: 10, H: 10}, balloon.ButtonIcons{})
	o.CloseButton = btn
	tip, err := balloon.New(a, o)
	if err != nil {
		t.Fatal(err)
	}
	if err := tip.AddDefaultClickHandler(true); err != nil {
		t.Fatal(err)
	}
	notified := 0
	tip.Observe(func(*balloon.Tip) { notified++ })

	tip.CloseBalloon()
	if tip.State() != balloon.StateClosed || tip.EffectiveVisible() {
		t.Fatalf("state = %v", tip.State())
	}
	if a.Subscribers() != 0 || page.Subscribers() != 0 || root.Subscribers() != before || btn.Listeners() != 0 {
		t.Fatalf("leaked subscriptions: anchor=%d page=%d root=%d button=%d",
			a.Subscribers(), page.Subscribers(), root.Subscribers(), btn.Listeners())
	}
	if len(root.Balloons()) != 0 {
		t.Fatal("tip still registered on the surface")
	}
	n := notified
	tip.CloseBalloon()
	_ = tr.Move("a", 10, 10)
	tip.RefreshLocation()
	if notified != n {
		t.Fatal("closed tip kept notifying")
	}
	if err := tip.SetStyle(style.NewEdged(style.DefaultSpec().Fill, style.DefaultSpec().Border)); !errors.Is(err, balloon.ErrClosed) {
		t.Fatalf("SetStyle on closed tip: %v", err)
	}
}

func TestCloseButtonAndClicks(t *testing.T) {
	tr := widgettree.New("win", geom.R(0, 0, 400, 300))
	a := mustPanel(t, tr, "win", "a", widgettree.KindPanel, geom.R(100, 100, 40, 20))
	tip, err := balloon.New(a, opts(t))
	if err != nil {
		t.Fatal(err)
	}

	btn := balloon.NewButton(geom.Size{W: 12, H: 12}, balloon.ButtonIcons{Default: "close.png"})
	if err := tip.SetCloseButton(btn, false, false); err != nil {
		t.Fatal(err)
	}
	if got := tip.PreferredSize(); got != (geom.Size{W: 62, H: 42}) {
		t.Fatalf("preferred size with button = %v", got)
	}
	if r, ok := tip.CloseButtonBounds(); !ok || r.W != 12 || r.Right() != tip.Bounds().Right()-5 {
		t.Fatalf("close button bounds = %v %v", r, ok)
	}
	btn.Press()
	if tip.Shown() || tip.State() == balloon.StateClosed {
		t.Fatalf("non-permanent close should only hide; state %v", tip.State())
	}
	tip.SetVisible(true)

	if err := tip.SetCloseButton(btn, true, true); err != nil {
		t.Fatal(err)
	}
	btn.Press()
	if !tip.Shown() {
		t.Fatal("noDefault button still closed the tip")
	}

	if err := tip.AddDefaultClickHandler(false); err != nil {
		t.Fatal(err)
	}
	tip.Click()
	if tip.Shown() {
		t.Fatal("click did not hide")
	}
	tip.SetVisible(true)
	if err := tip.AddDefaultClickHandler(true); err != nil {
		t.Fatal(err)
	}
	tip.Click()
	if tip.State() != balloon.StateClosed {
		t.Fatalf("permanent click handler left state %v", tip.State())
	}
}

func TestSurfaceResizeRepositions(t *testing.T) {
	tr := widgettree.New("win", geom.R(0, 0, 400, 300))
	a := mustPanel(t, tr, "win", "a", widgettree.KindPanel, geom.R(300, 100, 40, 20))
	tip, err := balloon.New(a, opts(t))
	if err != nil {
		t.Fatal(err)
	}
	if tip.Bounds().X != 291 {
		t.Fatalf("x = %d before resize", tip.Bounds().X)
	}
	if err := tr.Resize("win", 320, 300); err != nil {
		t.Fatal(err)
	}
	g := tip.Geometry()
	if !g.FlipX || g.Bounds.X != 270 {
		t.Fatalf("after resize = %+v", g)
	}
}

func TestSetAttachedComponentAndContainer(t *testing.T) {
	tr := widgettree.New("win", geom.R(0, 0, 400, 300))
	a := mustPanel(t, tr, "win", "a", widgettree.KindPanel, geom.R(100, 100, 40, 20))
	b := mustPanel(t, tr, "win", "b", widgettree.KindPanel, geom.R(200, 200, 40, 20))
	tip, err := balloon.New(a, opts(t))
	if err != nil {
		t.Fatal(err)
	}

	if err := tip.SetAttachedComponent(nil); !errors.Is(err, balloon.ErrNilAnchor) {
		t.Fatalf("nil anchor: %v", err)
	}
	if err := tip.SetAttachedComponent(b); err != nil {
		t.Fatal(err)
	}
	if a.Subscribers() != 0 || b.Subscribers() != 1 {
		t.Fatalf("subscriptions a=%d b=%d", a.Subscribers(), b.Subscribers())
	}
	if tip.Anchor() != balloon.Node(b) || tip.Bounds().Y != 160 {
		t.Fatalf("not moved to b: %v", tip.Bounds())
	}
	if len(tr.Root().Balloons()) != 1 {
		t.Fatalf("surface registrations = %d", len(tr.Root().Balloons()))
	}

	other := widgettree.New("other", geom.R(0, 0, 800, 600))
	if err := tip.SetTopLevelContainer(nil); !errors.Is(err, balloon.ErrNilSurface) {
		t.Fatalf("nil surface: %v", err)
	}
	if err := tip.SetTopLevelContainer(other.Root()); err != nil {
		t.Fatal(err)
	}
	if len(tr.Root().Balloons()) != 0 || len(other.Root().Balloons()) != 1 {
		t.Fatal("tip not moved between surfaces")
	}
	if c, ok := tip.Container(); !ok || c != other.Root().Bounds() {
		t.Fatalf("container = %v %v", c, ok)
	}
}

func TestMisconfigurationFailsFast(t *testing.T) {
	tr := widgettree.New("win", geom.R(0, 0, 400, 300))
	a := mustPanel(t, tr, "win", "a", widgettree.KindPanel, geom.R(100, 100, 40, 20))

	if _, err := balloon.New(nil, opts(t)); !errors.Is(err, balloon.ErrNilAnchor) {
		t.Fatalf("nil anchor: %v", err)
	}
	o := opts(t)
	o.Style = nil
	if _, err := balloon.New(a, o); !errors.Is(err, balloon.ErrNilStyle) {
		t.Fatalf("nil style: %v", err)
	}
	o = opts(t)
	o.Positioner = nil
	if _, err := balloon.New(a, o); !errors.Is(err, balloon.ErrNilPositioner) {
		t.Fatalf("nil positioner: %v", err)
	}
	tip, err := balloon.New(a, opts(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := tip.SetPositioner(nil); !errors.Is(err, balloon.ErrNilPositioner) {
		t.Fatalf("SetPositioner(nil): %v", err)
	}
	if err := tip.SetPadding(-1); err == nil {
		t.Fatal("negative padding accepted")
	}
}

func TestSwapPositionerAndStyle(t *testing.T) {
	tr := widgettree.New("win", geom.R(0, 0, 400, 300))
	a := mustPanel(t, tr, "win", "a", widgettree.KindPanel, geom.R(100, 100, 40, 20))
	tip, err := balloon.New(a, opts(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := tip.SetPositioner(positioner.NewCentered(20)); err != nil {
		t.Fatal(err)
	}
	g := tip.Geometry()
	if g.HorizontalOffset != 25 || g.Bounds.X != 95 {
		t.Fatalf("centered geometry = %+v", g)
	}

	spec := style.DefaultSpec()
	spec.Kind = "edged"
	st, _ := style.New(spec)
	if err := tip.SetStyle(st); err != nil {
		t.Fatal(err)
	}
	if got := tip.PreferredSize(); got != (geom.Size{W: 42, H: 32}) {
		t.Fatalf("edged preferred size = %v", got)
	}
	if err := tip.SetPadding(4); err != nil {
		t.Fatal(err)
	}
	if got := tip.PreferredSize(); got != (geom.Size{W: 50, H: 40}) {
		t.Fatalf("padded preferred size = %v", got)
	}
}

func TestNewOriented(t *testing.T) {
	tr := widgettree.New("win", geom.R(0, 0, 400, 300))
	a := mustPanel(t, tr, "win", "a", widgettree.KindPanel, geom.R(100, 100, 40, 20))
	st, _ := style.New(style.DefaultSpec())
	tip, err := balloon.NewOriented(a, box{W: 40, H: 10}, st, positioner.LeftBelow, positioner.Center, 16, 20, nil)
	if err != nil {
		t.Fatal(err)
	}
	g := tip.Geometry()
	if !g.FlipY || g.Tip != geom.Pt(120, 110) {
		t.Fatalf("oriented geometry = %+v", g)
	}
}
