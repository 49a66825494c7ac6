/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"balloontip/internal/geom"
	"balloontip/internal/scenario"
)

// ExportPDF writes one page per selected frame to outPath. Units are points;
// one container pixel maps to Scale points.
//
// Coordinates:
// - Page origin is top-left.
// - Every page has the same size, large enough for the widest frame.
func ExportPDF(res *scenario.Result, outPath string, opt Options) error {
	opt = opt.withDefaults()
	if res == nil {
		return fmt.Errorf("result is nil")
	}
	frames, err := frameIndexes(len(res.Frames), opt.Frames)
	if err != nil {
		return err
	}

	diagrams := make([]diagram, 0, len(frames))
	var ext geom.Rect
	for i, f := range frames {
		d, err := frameOf(res, f)
		if err != nil {
			return err
		}
		diagrams = append(diagrams, d)
		if e := d.extent(opt.Margin); i == 0 {
			ext = e
		} else {
			ext = ext.Union(e)
		}
	}
	s := opt.Scale
	pageW, pageH := float64(ext.W)*s, float64(ext.H)*s+20
	tx := func(p geom.Point) (float64, float64) {
		return float64(p.X-ext.X) * s, float64(p.Y-ext.Y)*s + 20
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: pageW, Ht: pageH},
	})
	pdf.SetTitle(fmt.Sprintf("%s placements", res.Name), false)
	pdf.SetAuthor("balloontip", false)
	// Built-in Helvetica keeps text vector without embedding
	pdf.SetFont("Helvetica", "", 8)

	for _, d := range diagrams {
		pdf.AddPageFormat("", gofpdf.SizeType{Wd: pageW, Ht: pageH})
		setTextColor(pdf, opt.ContainerStroke)
		pdf.Text(4, 12, d.title)

		x, y := tx(d.container.Min())
		setDrawColor(pdf, opt.ContainerStroke)
		pdf.SetLineWidth(1)
		pdf.Rect(x, y, float64(d.container.W)*s, float64(d.container.H)*s, "D")

		pdf.SetLineWidth(0.5)
		for _, n := range d.nodes {
			col := opt.NodeStroke
			if !n.Showing {
				col = hiddenStroke
			}
			setDrawColor(pdf, col)
			x, y := tx(n.Bounds.Min())
			pdf.Rect(x, y, float64(n.Bounds.W)*s, float64(n.Bounds.H)*s, "D")
		}

		pdf.SetLineWidth(1)
		for _, p := range d.placements {
			fill, stroke, ok := drawn(p, opt)
			if !ok {
				continue
			}
			pg := outlineOf(p)
			pts := make([]gofpdf.PointType, len(pg))
			for i, q := range pg {
				pts[i].X, pts[i].Y = tx(q)
			}
			setDrawColor(pdf, stroke)
			styleStr := "D"
			if fill.A > 0 {
				setFillColor(pdf, fill)
				styleStr = "FD"
			}
			pdf.Polygon(pts, styleStr)
			if p.Visible {
				setFillColor(pdf, opt.TipColor)
				cx, cy := tx(p.Tip)
				pdf.Circle(cx, cy, 1.5*s, "F")
			}
			if opt.Labels {
				setTextColor(pdf, stroke)
				lx, ly := tx(p.Bounds.Min())
				pdf.Text(lx+2, ly-3, p.Balloon)
			}
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func frameIndexes(total int, specific []int) ([]int, error) {
	if total == 0 {
		return nil, ErrNoFrames
	}
	if len(specific) == 0 {
		out := make([]int, total)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	return specific, nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}

func setTextColor(pdf *gofpdf.Fpdf, c color.RGBA) {
	pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
}
