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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"balloontip/internal/geom"
	"balloontip/internal/scenario"
)

// raster maps container coordinates onto image pixels.
type raster struct {
	img    *image.RGBA
	origin geom.Point
	scale  float64
}

func (r raster) pt(p geom.Point) (int, int) {
	return int(math.Round(float64(p.X-r.origin.X) * r.scale)), int(math.Round(float64(p.Y-r.origin.Y) * r.scale))
}

// RenderPNG draws one frame into an image.
func RenderPNG(res *scenario.Result, opt Options) (*image.RGBA, error) {
	opt = opt.withDefaults()
	d, err := frameOf(res, opt.frame())
	if err != nil {
		return nil, err
	}
	ext := d.extent(opt.Margin)
	w := int(math.Ceil(float64(ext.W) * opt.Scale))
	h := int(math.Ceil(float64(ext.H) * opt.Scale))
	r := raster{img: image.NewRGBA(image.Rect(0, 0, w, h)), origin: ext.Min(), scale: opt.Scale}
	// Background white
	draw.Draw(r.img, r.img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	c := d.container
	r.strokeRect(c, opt.ContainerStroke)
	for _, n := range d.nodes {
		col := opt.NodeStroke
		if !n.Showing {
			col = hiddenStroke
		}
		r.strokeRect(n.Bounds, col)
	}

	for _, p := range d.placements {
		fill, stroke, ok := drawn(p, opt)
		if !ok {
			continue
		}
		pg := outlineOf(p)
		if fill.A > 0 {
			r.fillPolygon(pg, fill)
		}
		r.strokePolygon(pg, stroke)
		if p.Visible {
			x, y := r.pt(p.Tip)
			fillRect(r.img, x-1, y-1, x+1, y+1, opt.TipColor)
		}
		if opt.Labels {
			x, y := r.pt(geom.Pt(p.Bounds.X, p.Bounds.Y))
			label(r.img, x+2, y-3, p.Balloon, stroke)
		}
	}
	return r.img, nil
}

// WritePNG encodes one frame as PNG.
func WritePNG(w io.Writer, res *scenario.Result, opt Options) error {
	img, err := RenderPNG(res, opt)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// ExportPNG writes one frame to outPath, creating its directory.
func ExportPNG(res *scenario.Result, outPath string, opt Options) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := WritePNG(f, res, opt); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

func (r raster) strokeRect(b geom.Rect, col color.RGBA) {
	x0, y0 := r.pt(b.Min())
	x1, y1 := r.pt(geom.Pt(b.Right(), b.Bottom()))
	strokeRect(r.img, x0, y0, x1-1, y1-1, col)
}

func (r raster) strokePolygon(pg geom.Polygon, col color.RGBA) {
	for i := range pg {
		x0, y0 := r.pt(pg[i])
		x1, y1 := r.pt(pg[(i+1)%len(pg)])
		line(r.img, x0, y0, x1, y1, col)
	}
}

// fillPolygon fills pixels whose centre lies inside pg (even-odd rule).
func (r raster) fillPolygon(pg geom.Polygon, col color.RGBA) {
	pts := make([][2]float64, len(pg))
	for i, p := range pg {
		x, y := r.pt(p)
		pts[i] = [2]float64{float64(x), float64(y)}
	}
	b := pg.Bounds()
	x0, y0 := r.pt(b.Min())
	x1, y1 := r.pt(geom.Pt(b.Right(), b.Bottom()))
	for y := y0; y < y1; y++ {
		cy := float64(y) + 0.5
		for x := x0; x < x1; x++ {
			if inside(pts, float64(x)+0.5, cy) {
				r.img.SetRGBA(x, y, col)
			}
		}
	}
}

func inside(pts [][2]float64, x, y float64) bool {
	in := false
	for i, j := 0, len(pts)-1; i < len(pts); j, i = i, i+1 {
		xi, yi := pts[i][0], pts[i][1]
		xj, yj := pts[j][0], pts[j][1]
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi)+xi {
			in = !in
		}
	}
	return in
}

// line draws a 1px Bresenham line.
func line(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.SetRGBA(x0, y0, col)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func label(img *image.RGBA, x, y int, s string, col color.RGBA) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(col),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	// top and bottom
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	// left and right
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
