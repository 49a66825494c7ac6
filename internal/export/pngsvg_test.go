/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"errors"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"balloontip/internal/geom"
	"balloontip/internal/scenario"
)

var (
	blue  = color.RGBA{B: 255, A: 255}
	black = color.RGBA{A: 255}
	white = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

func sampleResult() *scenario.Result {
	shown := scenario.Placement{
		Balloon: "b", State: "visible", Visible: true,
		Bounds: geom.R(20, 20, 40, 30), Tip: geom.Pt(30, 60),
		Fill: blue, Border: black,
	}
	hidden := scenario.Placement{
		Balloon: "h", State: "hidden",
		Bounds: geom.R(60, 60, 20, 20), Tip: geom.Pt(70, 90),
		Fill: blue, Border: black,
	}
	return &scenario.Result{
		Name:      "a<b",
		Container: geom.R(0, 0, 100, 100),
		Nodes:     []scenario.NodeBox{{ID: "field", Kind: "panel", Bounds: geom.R(20, 60, 20, 10), Showing: true}},
		Frames: []scenario.Frame{
			{Step: 0, Action: "initial"},
			{Step: 1, Action: "move field", Placements: []scenario.Placement{shown, hidden}},
		},
	}
}

func TestRenderPNGDrawsVisibleBalloons(t *testing.T) {
	img, err := RenderPNG(sampleResult(), Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// 100x100 container plus the default 10px margin on each side
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 120 {
		t.Fatalf("size = %v", b)
	}
	if got := img.RGBAAt(50, 45); got != blue {
		t.Fatalf("bubble interior = %v", got)
	}
	if got := img.RGBAAt(30, 30); got != black {
		t.Fatalf("bubble corner = %v", got)
	}
	if got := img.RGBAAt(40, 70); got != (color.RGBA{R: 220, A: 255}) {
		t.Fatalf("tip marker = %v", got)
	}
	if got := img.RGBAAt(80, 80); got != white {
		t.Fatalf("hidden balloon drawn: %v", got)
	}
	if got := img.RGBAAt(10, 50); got != black {
		t.Fatalf("container edge = %v", got)
	}
}

func TestRenderPNGShowHiddenAndScale(t *testing.T) {
	img, err := RenderPNG(sampleResult(), Options{Frame: FrameAt(1), ShowHidden: true, Scale: 2})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 240 {
		t.Fatalf("scaled width = %d", b.Dx())
	}
	// the hidden balloon's top edge at container (70,60)
	if got := img.RGBAAt(160, 140); got != hiddenStroke {
		t.Fatalf("hidden outline = %v", got)
	}
	if got := img.RGBAAt(170, 150); got != white {
		t.Fatalf("hidden balloon filled: %v", got)
	}
}

func TestFrameSelection(t *testing.T) {
	res := sampleResult()
	if _, err := RenderPNG(res, Options{Frame: FrameAt(5)}); err == nil {
		t.Fatal("out of range frame accepted")
	}
	if _, err := RenderPNG(&scenario.Result{}, Options{}); !errors.Is(err, ErrNoFrames) {
		t.Fatalf("err = %v", err)
	}
	img, err := RenderPNG(res, Options{Frame: FrameAt(0)})
	if err != nil {
		t.Fatalf("frame 0: %v", err)
	}
	if got := img.RGBAAt(50, 45); got != white {
		t.Fatalf("initial frame has no balloons, got %v", got)
	}
	img, err = RenderPNG(res, Options{})
	if err != nil {
		t.Fatalf("zero options: %v", err)
	}
	if got := img.RGBAAt(50, 45); got != blue {
		t.Fatalf("zero options should draw the last frame, got %v", got)
	}
}

func TestExtentCoversOverflowingBalloons(t *testing.T) {
	res := sampleResult()
	res.Frames[1].Placements[0].Bounds = geom.R(-30, 20, 40, 30)
	ext, err := Extent(res, Options{Frame: FrameAt(1), Margin: 5})
	if err != nil {
		t.Fatal(err)
	}
	if ext != geom.R(-35, -5, 140, 110) {
		t.Fatalf("extent = %v", ext)
	}
	if _, err := Extent(&scenario.Result{}, Options{}); !errors.Is(err, ErrNoFrames) {
		t.Fatalf("err = %v", err)
	}
}

func TestExportPNGWritesDecodableFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "b.png")
	if err := ExportPNG(sampleResult(), out, DefaultOptions()); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 120 {
		t.Fatalf("width = %d", img.Bounds().Dx())
	}
}

func TestRenderSVG(t *testing.T) {
	data, err := RenderSVG(sampleResult(), DefaultOptions())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	s := string(data)
	for _, want := range []string{
		`viewBox="-10 -10 120 120"`,
		`<title>a&lt;b: step 1 (move field)</title>`,
		`id="balloon-b" points="20,20 60,20 60,50 20,50" fill="#0000ff" stroke="#000000"`,
		`<circle cx="30" cy="60"`,
		`id="node-field"`,
		`>b</text>`,
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("svg lacks %q:\n%s", want, s)
		}
	}
	if strings.Contains(s, "balloon-h") {
		t.Fatal("hidden balloon written")
	}
}

func TestExportSVGCreatesFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "svg", "b.svg")
	if err := ExportSVG(sampleResult(), out, Options{ShowHidden: true}); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Contains(data, []byte(`id="balloon-h"`)) {
		t.Fatal("hidden balloon missing with ShowHidden")
	}
}
