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
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"balloontip/internal/scenario"
)

// RenderSVG draws one frame as an SVG document. The viewBox is in container
// pixels; Scale only affects the width and height attributes.
func RenderSVG(res *scenario.Result, opt Options) ([]byte, error) {
	opt = opt.withDefaults()
	d, err := frameOf(res, opt.frame())
	if err != nil {
		return nil, err
	}
	ext := d.extent(opt.Margin)
	pxW := int(math.Ceil(float64(ext.W) * opt.Scale))
	pxH := int(math.Ceil(float64(ext.H) * opt.Scale))

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%dpx\" height=\"%dpx\" viewBox=\"%d %d %d %d\">\n", pxW, pxH, ext.X, ext.Y, ext.W, ext.H)
	wf("  <title>%s</title>\n", escText(d.title))
	// Background white
	wf("  <rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"#ffffff\"/>\n", ext.X, ext.Y, ext.W, ext.H)
	c := d.container
	wf("  <rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"none\" stroke=\"%s\" stroke-width=\"1\"/>\n", c.X, c.Y, c.W, c.H, svgColor(opt.ContainerStroke))

	for _, n := range d.nodes {
		col := opt.NodeStroke
		if !n.Showing {
			col = hiddenStroke
		}
		b := n.Bounds
		wf("  <rect id=\"node-%s\" x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"none\" stroke=\"%s\" stroke-width=\"0.5\"/>\n", escAttr(n.ID), b.X, b.Y, b.W, b.H, svgColor(col))
	}

	for _, p := range d.placements {
		fill, stroke, ok := drawn(p, opt)
		if !ok {
			continue
		}
		pts := make([]string, 0, len(p.Outline))
		for _, q := range outlineOf(p) {
			pts = append(pts, fmt.Sprintf("%d,%d", q.X, q.Y))
		}
		fillAttr := "none"
		if fill.A > 0 {
			fillAttr = svgColor(fill)
		}
		wf("  <polygon id=\"balloon-%s\" points=\"%s\" fill=\"%s\" stroke=\"%s\" stroke-width=\"1\"/>\n", escAttr(p.Balloon), strings.Join(pts, " "), fillAttr, svgColor(stroke))
		if p.Visible {
			wf("  <circle cx=\"%d\" cy=\"%d\" r=\"1.5\" fill=\"%s\"/>\n", p.Tip.X, p.Tip.Y, svgColor(opt.TipColor))
		}
		if opt.Labels {
			wf("  <text x=\"%d\" y=\"%d\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"9\" fill=\"%s\">%s</text>\n", p.Bounds.X+2, p.Bounds.Y-3, svgColor(stroke), escText(p.Balloon))
		}
	}

	wf("</svg>\n")
	if werr != nil {
		return nil, fmt.Errorf("build svg: %w", werr)
	}
	return buf.Bytes(), nil
}

// ExportSVG writes one frame to outPath, creating its directory.
func ExportSVG(res *scenario.Result, outPath string, opt Options) error {
	data, err := RenderSVG(res, opt)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escAttr(s string) string {
	// naive escaping sufficient for our simple usage
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
