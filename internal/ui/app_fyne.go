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
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"balloontip/internal/crash"
	"balloontip/internal/export"
	applog "balloontip/internal/log"
	"balloontip/internal/playground"
	"balloontip/internal/positioner"
	"balloontip/internal/scenario"
	"balloontip/internal/style"
)

const recentPrefsKey = "recent.scenarios"

var orientations = []string{"LEFT_ABOVE", "LEFT_BELOW", "RIGHT_ABOVE", "RIGHT_BELOW"}

var attachLocations = []string{"aligned", "center", "north", "northeast", "east", "southeast", "south", "southwest", "west", "northwest"}

// Run opens the playground window on the scenario at path, or on a built-in
// demo when path is empty. It blocks until the window is closed.
func Run(path string, d scenario.Defaults) error {
	l := applog.WithComponent("ui")
	defer crash.Recover(crash.Context{Command: "ui", Scenario: path})

	doc, err := openDocument(path)
	if err != nil {
		return err
	}
	sess, err := playground.New(doc, d)
	if err != nil {
		return fmt.Errorf("open playground: %w", err)
	}
	l.Info("starting playground", slog.String("scenario", doc.Name))

	fyneApp := app.NewWithID("balloontip.playground")
	prefs := fyneApp.Preferences()
	if path != "" {
		abs, _ := filepath.Abs(path)
		prefs.SetStringList(recentPrefsKey, pushRecent(prefs.StringListWithFallback(recentPrefsKey, nil), abs))
	}

	w := fyneApp.NewWindow("Balloon playground: " + doc.Name)
	w.Resize(fyne.NewSize(
		float32(max(800, prefs.IntWithFallback("window.width", 1100))),
		float32(max(600, prefs.IntWithFallback("window.height", 720))),
	))

	p := &panel{sess: sess, w: w, log: l, status: widget.NewLabel("Ready")}
	p.view = newSceneView(p)
	w.SetContent(p.build())
	p.reload()

	ctx, cancel := context.WithCancel(context.Background())
	if path != "" {
		go p.watch(ctx, path, d)
	}
	w.SetOnClosed(func() {
		cancel()
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		p.sess.Close()
		l.Info("playground closed")
	})
	w.ShowAndRun()
	return nil
}

func openDocument(path string) (*scenario.Document, error) {
	if path == "" {
		return demoDocument()
	}
	return scenario.Load(path)
}

// panel holds the controls editing the selected balloon.
type panel struct {
	sess   *playground.Session
	w      fyne.Window
	log    *slog.Logger
	view   *sceneView
	status *widget.Label

	balloons    *widget.Select
	orientation *widget.Select
	attach      *widget.Select
	skin        *widget.Select
	text        *widget.Entry
	hOffset     *widget.Slider
	vOffset     *widget.Slider
	padding     *widget.Slider
	offsetCorr  *widget.Check
	orientCorr  *widget.Check
	undoBtn     *widget.Button
	redoBtn     *widget.Button
	placement   *widget.Label

	// syncing suppresses control callbacks while controls are being filled
	// from the session.
	syncing bool
}

func (p *panel) build() fyne.CanvasObject {
	ids := make([]string, 0)
	for _, h := range p.sess.Scene().Balloons() {
		ids = append(ids, h.ID)
	}
	p.balloons = widget.NewSelect(ids, func(id string) {
		if p.syncing {
			return
		}
		p.do(p.sess.Select(id))
	})
	p.orientation = widget.NewSelect(orientations, func(o string) {
		if !p.syncing {
			p.do(p.sess.SetOrientation(o))
		}
	})
	p.attach = widget.NewSelect(attachLocations, func(loc string) {
		if !p.syncing {
			p.do(p.sess.SetAttachLocation(loc))
		}
	})
	p.skin = widget.NewSelect(style.Kinds, func(k string) {
		if !p.syncing {
			p.do(p.sess.SetStyleKind(k))
		}
	})
	p.text = widget.NewMultiLineEntry()
	p.text.SetMinRowsVisible(3)
	p.text.OnChanged = func(s string) {
		if !p.syncing {
			p.do(p.sess.SetText(s))
		}
	}

	offsets := func(float64) {
		if !p.syncing {
			p.do(p.sess.SetOffsets(int(p.hOffset.Value), int(p.vOffset.Value)))
		}
	}
	p.hOffset = widget.NewSlider(0, 80)
	p.hOffset.Step = 1
	p.hOffset.OnChangeEnded = offsets
	p.vOffset = widget.NewSlider(0, 80)
	p.vOffset.Step = 1
	p.vOffset.OnChangeEnded = offsets
	p.padding = widget.NewSlider(0, 30)
	p.padding.Step = 1
	p.padding.OnChangeEnded = func(v float64) {
		if !p.syncing {
			p.do(p.sess.SetPadding(int(v)))
		}
	}

	corrections := func(bool) {
		if !p.syncing {
			p.do(p.sess.SetCorrections(p.offsetCorr.Checked, p.orientCorr.Checked))
		}
	}
	p.offsetCorr = widget.NewCheck("Offset correction", corrections)
	p.orientCorr = widget.NewCheck("Orientation correction", corrections)

	p.undoBtn = widget.NewButtonWithIcon("Undo", theme.ContentUndoIcon(), func() { p.history(p.sess.Undo, "undo") })
	p.redoBtn = widget.NewButtonWithIcon("Redo", theme.ContentRedoIcon(), func() { p.history(p.sess.Redo, "redo") })
	exportBtn := widget.NewButtonWithIcon("Export", theme.DocumentSaveIcon(), p.exportDialog)

	zoomIn := widget.NewButtonWithIcon("", theme.ZoomInIcon(), func() { p.view.setZoom(p.view.vp.zoom * 1.25) })
	zoomOut := widget.NewButtonWithIcon("", theme.ZoomOutIcon(), func() { p.view.setZoom(p.view.vp.zoom / 1.25) })

	p.placement = widget.NewLabel("")
	p.placement.Wrapping = fyne.TextWrapWord

	form := widget.NewForm(
		widget.NewFormItem("Balloon", p.balloons),
		widget.NewFormItem("Text", p.text),
		widget.NewFormItem("Orientation", p.orientation),
		widget.NewFormItem("Attach", p.attach),
		widget.NewFormItem("Style", p.skin),
		widget.NewFormItem("Horizontal offset", p.hOffset),
		widget.NewFormItem("Vertical offset", p.vOffset),
		widget.NewFormItem("Padding", p.padding),
	)
	inspector := container.NewVBox(
		form,
		p.offsetCorr,
		p.orientCorr,
		widget.NewSeparator(),
		container.NewHBox(p.undoBtn, p.redoBtn, exportBtn),
		widget.NewSeparator(),
		p.placement,
	)

	toolbar := container.NewHBox(zoomOut, zoomIn, widget.NewLabel("Drag an anchor to move it, click a balloon to select it"))
	split := container.NewHSplit(container.NewScroll(container.NewCenter(p.view)), container.NewVScroll(inspector))
	split.Offset = 0.68
	return container.NewBorder(toolbar, p.status, nil, nil, split)
}

// do reports err, if any, and refreshes the window from the session.
func (p *panel) do(err error) {
	if err != nil {
		p.log.Warn("edit rejected", slog.Any("err", err))
		p.status.SetText(err.Error())
	} else {
		p.status.SetText("Ready")
	}
	p.reload()
}

func (p *panel) history(step func() (string, bool, error), verb string) {
	label, ok, err := step()
	switch {
	case err != nil:
		p.do(err)
	case !ok:
		p.status.SetText("Nothing to " + verb)
	default:
		p.reload()
		p.status.SetText(fmt.Sprintf("%s %s", strings.ToUpper(verb[:1])+verb[1:], label))
	}
}

// reload fills the controls from the selected balloon and redraws the scene.
func (p *panel) reload() {
	p.syncing = true
	defer func() { p.syncing = false }()

	id := p.sess.Selected()
	p.balloons.SetSelected(id)
	st, ok := p.sess.Settings(id)
	if ok {
		d := p.sess.Scene().Defaults()
		if p.text.Text != st.Text {
			p.text.SetText(st.Text)
		}
		o := st.Positioner.Orientation
		if o == "" {
			o = d.Orientation.String()
		}
		if parsed, err := positioner.ParseOrientation(o); err == nil {
			p.orientation.SetSelected(parsed.String())
		}
		loc := st.Positioner.AttachLocation
		if loc == "" {
			loc = "aligned"
		}
		p.attach.SetSelected(strings.ToLower(strings.NewReplacer("_", "", "-", "").Replace(loc)))
		kind := st.Style.Kind
		if kind == "" {
			kind = d.Style.Kind
		}
		p.skin.SetSelected(strings.ToLower(kind))
		p.hOffset.SetValue(float64(intOr(st.Positioner.HorizontalOffset, d.Positioner.PreferredHorizontalOffset)))
		p.vOffset.SetValue(float64(intOr(st.Positioner.VerticalOffset, d.Positioner.PreferredVerticalOffset)))
		p.padding.SetValue(float64(st.Padding))
		p.offsetCorr.SetChecked(boolOr(st.Positioner.OffsetCorrection, d.Positioner.OffsetCorrection))
		p.orientCorr.SetChecked(boolOr(st.Positioner.OrientationCorrection, d.Positioner.OrientationCorrection))
	}

	if label, can := p.sess.CanUndo(); can {
		p.undoBtn.SetText("Undo " + label)
		p.undoBtn.Enable()
	} else {
		p.undoBtn.SetText("Undo")
		p.undoBtn.Disable()
	}
	if p.sess.CanRedo() {
		p.redoBtn.Enable()
	} else {
		p.redoBtn.Disable()
	}

	if pl, ok := p.sess.Placement(); ok {
		p.placement.SetText(fmt.Sprintf("%s: %s\nbounds %v, tip %v\norientation %s, offset %d",
			pl.Balloon, pl.State, pl.Bounds, pl.Tip, pl.Orientation, pl.HorizontalOffset))
	} else {
		p.placement.SetText("")
	}
	p.view.render()
}

func (p *panel) exportDialog() {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, p.w)
			return
		}
		if wc == nil {
			return
		}
		out := wc.URI().Path()
		_ = wc.Close()
		opt := export.DefaultOptions()
		opt.ShowHidden = true
		if err := export.ExportFile(p.sess.Snapshot(), out, opt); err != nil {
			dialog.ShowError(err, p.w)
			return
		}
		p.log.Info("playground exported", slog.String("path", out))
		p.status.SetText("Exported " + out)
	}, p.w)
	d.SetFileName(fileName(p.sess.Name()) + ".png")
	d.Show()
}

// watch reopens the session whenever the scenario file changes on disk.
func (p *panel) watch(ctx context.Context, path string, d scenario.Defaults) {
	err := scenario.Watch(ctx, path, scenario.DefaultDebounce, func(doc *scenario.Document, err error) {
		fyne.Do(func() {
			if err != nil {
				p.status.SetText(err.Error())
				return
			}
			next, err := playground.New(doc, d)
			if err != nil {
				p.status.SetText(err.Error())
				return
			}
			prev := p.sess.Selected()
			p.sess.Close()
			p.sess = next
			_ = p.sess.Select(prev)
			ids := make([]string, 0)
			for _, h := range next.Scene().Balloons() {
				ids = append(ids, h.ID)
			}
			p.balloons.Options = ids
			p.reload()
			p.status.SetText("Reloaded " + filepath.Base(path))
		})
	})
	if err != nil {
		p.log.Warn("scenario watch stopped", slog.Any("err", err))
	}
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func fileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "playground"
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\: `, r) {
			return '-'
		}
		return r
	}, name)
}
