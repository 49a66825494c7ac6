/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"balloontip/internal/balloon"
	"balloontip/internal/contents"
	"balloontip/internal/geom"
	"balloontip/internal/positioner"
	"balloontip/internal/scenario"
	"balloontip/internal/style"
)

// Validate reports every invalid value in cfg.
func (c AppConfig) Validate() error {
	var errs []error
	if _, err := positioner.ParseOrientation(c.Positioner.Orientation); err != nil {
		errs = append(errs, fmt.Errorf("positioner.orientation: %w", err))
	}
	if _, err := positioner.ParseAttachLocation(c.Positioner.AttachLocation); err != nil {
		errs = append(errs, fmt.Errorf("positioner.attach_location: %w", err))
	}
	if c.Positioner.HorizontalOffset < 0 || c.Positioner.VerticalOffset < 0 {
		errs = append(errs, fmt.Errorf("positioner: negative offset %d,%d", c.Positioner.HorizontalOffset, c.Positioner.VerticalOffset))
	}
	if !slices.Contains(style.Kinds, strings.ToLower(c.Style.Kind)) {
		errs = append(errs, fmt.Errorf("style.kind: unknown %q", c.Style.Kind))
	}
	if c.Style.ArcWidth < 0 || c.Style.ArcHeight < 0 {
		errs = append(errs, fmt.Errorf("style: negative arc %dx%d", c.Style.ArcWidth, c.Style.ArcHeight))
	}
	for name, v := range map[string]string{"style.fill": c.Style.Fill, "style.border": c.Style.Border} {
		if v == "" {
			continue
		}
		if _, err := style.ParseColor(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	if c.CloseButton.Size < 0 {
		errs = append(errs, fmt.Errorf("close_button.size: negative %d", c.CloseButton.Size))
	}
	if c.Contents.Padding < 0 || c.Contents.MaxWidth < 0 {
		errs = append(errs, fmt.Errorf("contents: negative padding or max_width"))
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// StyleSpec converts the style section.
func (c AppConfig) StyleSpec() (style.Spec, error) {
	spec := style.DefaultSpec()
	spec.Kind = c.Style.Kind
	spec.ArcWidth, spec.ArcHeight = c.Style.ArcWidth, c.Style.ArcHeight
	if c.Style.Fill != "" {
		col, err := style.ParseColor(c.Style.Fill)
		if err != nil {
			return spec, fmt.Errorf("style.fill: %w", err)
		}
		spec.Fill = col
	}
	if c.Style.Border != "" {
		col, err := style.ParseColor(c.Style.Border)
		if err != nil {
			return spec, fmt.Errorf("style.border: %w", err)
		}
		spec.Border = col
	}
	return spec, nil
}

// PositionerConfig converts the positioner section.
func (c AppConfig) PositionerConfig() (positioner.Orientation, positioner.Config, error) {
	o, err := positioner.ParseOrientation(c.Positioner.Orientation)
	if err != nil {
		return o, positioner.Config{}, err
	}
	loc, err := positioner.ParseAttachLocation(c.Positioner.AttachLocation)
	if err != nil {
		return o, positioner.Config{}, err
	}
	pc := positioner.Config{
		PreferredHorizontalOffset: c.Positioner.HorizontalOffset,
		PreferredVerticalOffset:   c.Positioner.VerticalOffset,
		OffsetCorrection:          c.Positioner.OffsetCorrection,
		OrientationCorrection:     c.Positioner.OrientationCorrection,
	}
	pc.AttachX, pc.AttachY, pc.FixedAttachLocation = loc.Fractions()
	return o, pc, nil
}

// ScenarioDefaults builds the balloon defaults every scenario starts from.
// A configured font file is loaded through an OpenType provider.
func (c AppConfig) ScenarioDefaults() (scenario.Defaults, error) {
	if err := c.Validate(); err != nil {
		return scenario.Defaults{}, err
	}
	spec, err := c.StyleSpec()
	if err != nil {
		return scenario.Defaults{}, err
	}
	o, pc, err := c.PositionerConfig()
	if err != nil {
		return scenario.Defaults{}, err
	}
	d := scenario.Defaults{
		Style:          spec,
		Orientation:    o,
		Positioner:     pc,
		Padding:        c.Contents.Padding,
		MaxWidth:       c.Contents.MaxWidth,
		CloseButton:    c.CloseButton.Enabled,
		PermanentClose: c.CloseButton.Permanent,
		ButtonSize:     geom.Size{W: c.CloseButton.Size, H: c.CloseButton.Size},
		Icons: balloon.ButtonIcons{
			Default:  c.CloseButton.Icons.Default,
			Rollover: c.CloseButton.Icons.Rollover,
			Pressed:  c.CloseButton.Icons.Pressed,
		},
	}
	d.Font = contents.FontSpec{SizePt: float32(c.Contents.FontSize)}
	if c.Contents.Font != "" {
		lib := contents.NewFontLibrary()
		if err := lib.LoadFile("custom", c.Contents.Font); err != nil {
			return scenario.Defaults{}, fmt.Errorf("contents.font: %w", err)
		}
		d.Fonts = contents.OpenType{Lib: lib}
		d.Font.Family = "custom"
	}
	return d, nil
}
