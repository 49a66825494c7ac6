/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package contents measures what goes inside a balloon. Text is wrapped on
// word boundaries to an optional maximum width and measured with an
// x/image font face, which gives the bubble its preferred size.
package contents

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"balloontip/internal/geom"
)

// FontSpec describes a requested font.
type FontSpec struct {
	Family string
	SizePt float32
}

// Metrics are font metrics in whole pixels.
type Metrics struct {
	Ascent, Descent, LineGap int
}

// LineHeight is the distance between two baselines.
func (m Metrics) LineHeight() int { return m.Ascent + m.Descent + m.LineGap }

// Provider maps a FontSpec to a concrete face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// Basic uses basicfont.Face7x13 and is fully deterministic.
type Basic struct{}

func (Basic) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  m.Ascent.Round(),
		Descent: m.Descent.Round(),
		LineGap: max(0, m.Height.Round()-m.Ascent.Round()-m.Descent.Round()),
	}
}

// Text is balloon contents made of wrapped text.
type Text struct {
	text     string
	spec     FontSpec
	maxWidth int
	provider Provider

	lines []string
	size  geom.Size
}

// NewText lays out s. A maxWidth of zero or less disables wrapping; a nil
// provider means Basic.
func NewText(s string, spec FontSpec, maxWidth int, p Provider) *Text {
	if p == nil {
		p = Basic{}
	}
	t := &Text{spec: spec, maxWidth: maxWidth, provider: p}
	t.SetText(s)
	return t
}

// SetText replaces the text and re-measures it.
func (t *Text) SetText(s string) {
	t.text = s
	face, met := t.provider.Resolve(t.spec)
	t.lines = Wrap(face, s, t.maxWidth)
	w := 0
	for _, l := range t.lines {
		w = max(w, advance(face, l))
	}
	t.size = geom.Size{W: w, H: len(t.lines) * met.LineHeight()}
}

func (t *Text) Text() string { return t.text }

// Lines returns the wrapped lines.
func (t *Text) Lines() []string { return append([]string(nil), t.lines...) }

func (t *Text) Size() geom.Size { return t.size }

func (t *Text) Font() FontSpec { return t.spec }

// Wrap breaks s into lines no wider than maxWidth. Explicit newlines always
// break; a single word wider than maxWidth gets a line of its own.
func Wrap(face font.Face, s string, maxWidth int) []string {
	var out []string
	for _, para := range strings.Split(s, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			if line == "" {
				line = word
				continue
			}
			next := line + " " + word
			if maxWidth > 0 && advance(face, next) > maxWidth {
				out = append(out, line)
				line = word
				continue
			}
			line = next
		}
		out = append(out, line)
	}
	return out
}

// Measure returns the width and line height of s on one line.
func Measure(p Provider, spec FontSpec, s string) (w, h int) {
	if p == nil {
		p = Basic{}
	}
	face, met := p.Resolve(spec)
	return advance(face, s), met.LineHeight()
}

func advance(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}
