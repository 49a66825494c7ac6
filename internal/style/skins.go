/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package style

import (
	"fmt"
	"image/color"
	"strings"

	"balloontip/internal/geom"
)

// Rounded is a bubble with rounded corners of ArcWidth x ArcHeight.
type Rounded struct {
	Base
	ArcWidth, ArcHeight int
}

func NewRounded(arcWidth, arcHeight int, fill, border color.RGBA) *Rounded {
	return &Rounded{Base: Base{Fill: fill, Border: border}, ArcWidth: arcWidth, ArcHeight: arcHeight}
}

func (r *Rounded) BorderInsets() geom.Insets { return r.insets(r.ArcHeight, r.ArcWidth) }

// MinimalHorizontalOffset keeps the tip clear of the rounded corner.
func (r *Rounded) MinimalHorizontalOffset() int { return r.ArcWidth + r.VerticalOffset }

// Edged is a square-cornered bubble with a 1px border.
type Edged struct{ Base }

func NewEdged(fill, border color.RGBA) *Edged {
	return &Edged{Base: Base{Fill: fill, Border: border}}
}

func (e *Edged) BorderInsets() geom.Insets { return e.insets(1, 1) }

// Minimal is a borderless rounded bubble; Arc is used for both corner radii.
type Minimal struct {
	Base
	Arc int
}

func NewMinimal(fill color.RGBA, arc int) *Minimal {
	return &Minimal{Base: Base{Fill: fill, Border: fill}, Arc: arc}
}

func (m *Minimal) BorderInsets() geom.Insets { return m.insets(m.Arc, m.Arc) }

func (m *Minimal) MinimalHorizontalOffset() int { return m.Arc + m.VerticalOffset }

// Spec selects and parameterizes a style by name.
type Spec struct {
	Kind      string // rounded | edged | minimal
	ArcWidth  int
	ArcHeight int
	Fill      color.RGBA
	Border    color.RGBA
}

// Kinds lists the known style names.
var Kinds = []string{"rounded", "edged", "minimal"}

// DefaultSpec is a white rounded bubble with a black border.
func DefaultSpec() Spec {
	return Spec{
		Kind:      "rounded",
		ArcWidth:  5,
		ArcHeight: 5,
		Fill:      color.RGBA{R: 255, G: 255, B: 255, A: 255},
		Border:    color.RGBA{A: 255},
	}
}

// New builds a fresh style instance. Styles carry flip state, so every balloon
// needs its own.
func New(spec Spec) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(spec.Kind)) {
	case "", "rounded":
		return NewRounded(spec.ArcWidth, spec.ArcHeight, spec.Fill, spec.Border), nil
	case "edged":
		return NewEdged(spec.Fill, spec.Border), nil
	case "minimal":
		return NewMinimal(spec.Fill, spec.ArcWidth), nil
	default:
		return nil, fmt.Errorf("unknown style kind %q", spec.Kind)
	}
}
