//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	"balloontip/internal/export"
)

// sceneView shows the rendered playground and turns pointer input into
// selection and anchor drags.
type sceneView struct {
	widget.BaseWidget
	p   *panel
	img *canvas.Image
	vp  viewport

	dragging bool
	acc      dragAccumulator
}

var (
	_ fyne.Tappable   = (*sceneView)(nil)
	_ fyne.Draggable  = (*sceneView)(nil)
	_ fyne.Scrollable = (*sceneView)(nil)
)

func newSceneView(p *panel) *sceneView {
	v := &sceneView{p: p, vp: viewport{zoom: 1.5}}
	v.img = canvas.NewImageFromImage(nil)
	v.img.FillMode = canvas.ImageFillStretch
	v.img.ScaleMode = canvas.ImageScalePixels
	v.ExtendBaseWidget(v)
	return v
}

func (v *sceneView) CreateRenderer() fyne.WidgetRenderer { return widget.NewSimpleRenderer(v.img) }

func (v *sceneView) MinSize() fyne.Size {
	w, h := v.vp.size()
	return fyne.NewSize(w, h)
}

// render draws the session at 1:1 and lets the image stretch to the zoom.
func (v *sceneView) render() {
	res := v.p.sess.Snapshot()
	opt := export.DefaultOptions()
	opt.ShowHidden = true
	ext, err := export.Extent(res, opt)
	if err != nil {
		v.p.log.Error("scene extent", slog.Any("err", err))
		return
	}
	img, err := export.RenderPNG(res, opt)
	if err != nil {
		v.p.log.Error("scene render", slog.Any("err", err))
		return
	}
	v.vp.extent = ext
	v.img.Image = img
	v.img.Refresh()
	v.Refresh()
}

func (v *sceneView) setZoom(z float32) {
	v.vp.zoom = clampZoom(z)
	v.Refresh()
}

func (v *sceneView) Tapped(e *fyne.PointEvent) {
	pt := v.vp.toContainer(e.Position.X, e.Position.Y)
	id, ok := hitBalloon(v.p.sess.Snapshot().Final(), pt)
	if !ok || id == v.p.sess.Selected() {
		return
	}
	v.p.do(v.p.sess.Select(id))
}

// Dragged moves the selected balloon's anchor when the drag started on it.
func (v *sceneView) Dragged(e *fyne.DragEvent) {
	if !v.dragging {
		start := e.Position.Subtract(e.Dragged)
		anchor, ok := v.p.sess.AnchorBounds()
		if !ok || !anchor.Contains(v.vp.toContainer(start.X, start.Y)) {
			return
		}
		v.dragging = true
		v.acc = dragAccumulator{}
	}
	dx, dy := v.acc.add(e.Dragged.DX, e.Dragged.DY, v.vp.zoom)
	if dx == 0 && dy == 0 {
		return
	}
	if err := v.p.sess.DragAnchor(dx, dy); err != nil {
		v.p.do(err)
		v.dragging = false
		return
	}
	v.p.reload()
}

func (v *sceneView) DragEnd() { v.dragging = false }

// Scrolled zooms with the wheel.
func (v *sceneView) Scrolled(e *fyne.ScrollEvent) {
	v.setZoom(v.vp.zoom * (1 + e.Scrolled.DY*0.002))
}
