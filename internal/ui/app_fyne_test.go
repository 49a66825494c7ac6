//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests drive the playground widgets through Fyne's test driver. They
// are gated behind the "fyne" build tag so headless CI does not need Fyne.
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"

	applog "balloontip/internal/log"
	"balloontip/internal/playground"
	"balloontip/internal/scenario"
)

func newTestPanel(t *testing.T) *panel {
	t.Helper()
	test.NewTempApp(t)
	doc, err := demoDocument()
	if err != nil {
		t.Fatal(err)
	}
	sess, err := playground.New(doc, scenario.StockDefaults())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(sess.Close)
	w := test.NewTempWindow(t, nil)
	p := &panel{sess: sess, w: w, log: applog.WithComponent("ui"), status: widget.NewLabel("")}
	p.view = newSceneView(p)
	w.SetContent(p.build())
	p.reload()
	return p
}

func TestReloadFillsControls(t *testing.T) {
	p := newTestPanel(t)
	if p.balloons.Selected != "required" || p.orientation.Selected != "LEFT_ABOVE" || p.attach.Selected != "aligned" {
		t.Fatalf("controls = %q %q %q", p.balloons.Selected, p.orientation.Selected, p.attach.Selected)
	}
	if p.text.Text != "This field is required" || p.hOffset.Value != 16 || p.vOffset.Value != 20 {
		t.Fatalf("text %q offsets %v,%v", p.text.Text, p.hOffset.Value, p.vOffset.Value)
	}
	if !p.undoBtn.Disabled() || !p.redoBtn.Disabled() {
		t.Fatal("history buttons enabled on a fresh session")
	}
	if p.view.img.Image == nil || p.view.MinSize().Width <= 0 {
		t.Fatal("scene not rendered")
	}
}

func TestOrientationSelectEditsAndUndoes(t *testing.T) {
	p := newTestPanel(t)
	p.orientation.SetSelected("RIGHT_BELOW")
	if pl, _ := p.sess.Placement(); pl.Orientation != "RIGHT_BELOW" {
		t.Fatalf("placement = %+v", pl)
	}
	if p.undoBtn.Disabled() || p.undoBtn.Text != "Undo orientation" {
		t.Fatalf("undo button = %q disabled=%v", p.undoBtn.Text, p.undoBtn.Disabled())
	}
	test.Tap(p.undoBtn)
	if p.orientation.Selected != "LEFT_ABOVE" || p.redoBtn.Disabled() {
		t.Fatalf("after undo: %q redo disabled=%v", p.orientation.Selected, p.redoBtn.Disabled())
	}
}

func TestDragMovesAnchor(t *testing.T) {
	p := newTestPanel(t)
	before, _ := p.sess.AnchorBounds()
	z := p.view.vp.zoom
	ext := p.view.vp.extent
	// start inside the "name" field
	start := fyne.NewPos(float32(before.X-ext.X+5)*z, float32(before.Y-ext.Y+5)*z)
	delta := fyne.Delta{DX: 20 * z, DY: 0}
	p.view.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: start.Add(delta)}, Dragged: delta})
	p.view.DragEnd()
	after, _ := p.sess.AnchorBounds()
	if after.X != before.X+20 || after.Y != before.Y {
		t.Fatalf("anchor %v -> %v", before, after)
	}
}

func TestTapSelectsBalloon(t *testing.T) {
	p := newTestPanel(t)
	var item scenario.Placement
	for _, pl := range p.sess.Snapshot().Final() {
		if pl.Balloon == "item" {
			item = pl
		}
	}
	z := p.view.vp.zoom
	ext := p.view.vp.extent
	cx := item.Bounds.X + item.Bounds.W/2 - ext.X
	cy := item.Bounds.Y + item.Bounds.H/2 - ext.Y
	p.view.Tapped(&fyne.PointEvent{Position: fyne.NewPos(float32(cx)*z+1, float32(cy)*z+1)})
	if p.sess.Selected() != "item" || p.balloons.Selected != "item" || p.skin.Selected != "edged" {
		t.Fatalf("selected %q, select %q, skin %q", p.sess.Selected(), p.balloons.Selected, p.skin.Selected)
	}
}
