/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package scenario describes a component tree, the balloons attached to it
// and a sequence of mutations, and replays them while recording where every
// balloon ends up after each step.
//
// Documents are YAML (JSON is accepted as well) and are checked against an
// embedded JSON schema before they are decoded.
package scenario

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"balloontip/internal/geom"
)

//go:embed schema.json
var schemaJSON []byte

// ErrInvalid wraps schema violations.
var ErrInvalid = errors.New("scenario does not conform to schema")

// Rect is a rectangle as written in a document.
type Rect struct {
	X      int `yaml:"x" json:"x"`
	Y      int `yaml:"y" json:"y"`
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

func (r Rect) Geom() geom.Rect { return geom.R(r.X, r.Y, r.Width, r.Height) }

// Document is one scenario.
type Document struct {
	Name      string        `yaml:"name" json:"name"`
	Container Rect          `yaml:"container" json:"container"`
	Nodes     []NodeSpec    `yaml:"nodes" json:"nodes"`
	Balloons  []BalloonSpec `yaml:"balloons" json:"balloons"`
	Steps     []Step        `yaml:"steps" json:"steps"`
}

// NodeSpec declares a node and, recursively, its children.
type NodeSpec struct {
	ID         string     `yaml:"id" json:"id"`
	Kind       string     `yaml:"kind" json:"kind"`
	Bounds     Rect       `yaml:"bounds" json:"bounds"`
	Visible    *bool      `yaml:"visible" json:"visible,omitempty"`
	Layer      *int       `yaml:"layer" json:"layer,omitempty"`
	Selected   int        `yaml:"selected" json:"selected,omitempty"`
	Rows       int        `yaml:"rows" json:"rows,omitempty"`
	RowHeight  int        `yaml:"row_height" json:"row_height,omitempty"`
	Columns    []int      `yaml:"columns" json:"columns,omitempty"`
	Items      int        `yaml:"items" json:"items,omitempty"`
	ItemHeight int        `yaml:"item_height" json:"item_height,omitempty"`
	Children   []NodeSpec `yaml:"children" json:"children,omitempty"`
}

// StyleSpec overrides the default style. Empty fields keep the default.
type StyleSpec struct {
	Kind      string `yaml:"kind" json:"kind,omitempty"`
	ArcWidth  *int   `yaml:"arc_width" json:"arc_width,omitempty"`
	ArcHeight *int   `yaml:"arc_height" json:"arc_height,omitempty"`
	Fill      string `yaml:"fill" json:"fill,omitempty"`
	Border    string `yaml:"border" json:"border,omitempty"`
}

// PositionerSpec overrides the default positioner settings.
type PositionerSpec struct {
	Kind                  string `yaml:"kind" json:"kind,omitempty"`
	Orientation           string `yaml:"orientation" json:"orientation,omitempty"`
	AttachLocation        string `yaml:"attach_location" json:"attach_location,omitempty"`
	HorizontalOffset      *int   `yaml:"horizontal_offset" json:"horizontal_offset,omitempty"`
	VerticalOffset        *int   `yaml:"vertical_offset" json:"vertical_offset,omitempty"`
	OffsetCorrection      *bool  `yaml:"offset_correction" json:"offset_correction,omitempty"`
	OrientationCorrection *bool  `yaml:"orientation_correction" json:"orientation_correction,omitempty"`
}

// BalloonSpec declares a balloon and what it points at.
type BalloonSpec struct {
	ID          string          `yaml:"id" json:"id"`
	Anchor      string          `yaml:"anchor" json:"anchor"`
	Variant     string          `yaml:"variant" json:"variant,omitempty"`
	Offset      *Rect           `yaml:"offset" json:"offset,omitempty"`
	Row         int             `yaml:"row" json:"row,omitempty"`
	Col         int             `yaml:"col" json:"col,omitempty"`
	Index       int             `yaml:"index" json:"index,omitempty"`
	Text        string          `yaml:"text" json:"text,omitempty"`
	MaxWidth    *int            `yaml:"max_width" json:"max_width,omitempty"`
	Padding     *int            `yaml:"padding" json:"padding,omitempty"`
	CloseButton *bool           `yaml:"close_button" json:"close_button,omitempty"`
	Visible     *bool           `yaml:"visible" json:"visible,omitempty"`
	Style       *StyleSpec      `yaml:"style" json:"style,omitempty"`
	Positioner  *PositionerSpec `yaml:"positioner" json:"positioner,omitempty"`
}

// Step is one mutation. Which fields matter depends on Action.
type Step struct {
	Action      string `yaml:"action" json:"action"`
	Target      string `yaml:"target" json:"target,omitempty"`
	Parent      string `yaml:"parent" json:"parent,omitempty"`
	Balloon     string `yaml:"balloon" json:"balloon,omitempty"`
	X           int    `yaml:"x" json:"x,omitempty"`
	Y           int    `yaml:"y" json:"y,omitempty"`
	Width       int    `yaml:"width" json:"width,omitempty"`
	Height      int    `yaml:"height" json:"height,omitempty"`
	Index       int    `yaml:"index" json:"index,omitempty"`
	At          int    `yaml:"at" json:"at,omitempty"`
	Count       int    `yaml:"count" json:"count,omitempty"`
	First       int    `yaml:"first" json:"first,omitempty"`
	Last        int    `yaml:"last" json:"last,omitempty"`
	From        int    `yaml:"from" json:"from,omitempty"`
	To          int    `yaml:"to" json:"to,omitempty"`
	Row         int    `yaml:"row" json:"row,omitempty"`
	Col         int    `yaml:"col" json:"col,omitempty"`
	Visible     *bool  `yaml:"visible" json:"visible,omitempty"`
	Offset      *Rect  `yaml:"offset" json:"offset,omitempty"`
	Orientation string `yaml:"orientation" json:"orientation,omitempty"`
}

// Label is a short human description of the step.
func (s Step) Label() string {
	switch {
	case s.Target != "":
		return s.Action + " " + s.Target
	case s.Balloon != "":
		return s.Action + " " + s.Balloon
	default:
		return s.Action
	}
}

// Parse validates data against the schema and decodes it.
func Parse(data []byte) (*Document, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode scenario: %w", err)
	}
	return &doc, nil
}

// Load reads and parses a scenario file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Validate checks an already decoded document tree against the schema. Every
// violation is listed in the returned error.
func Validate(raw any) error {
	if raw == nil {
		return fmt.Errorf("%w: empty document", ErrInvalid)
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewGoLoader(raw))
	if err != nil {
		return fmt.Errorf("validate scenario: %w", err)
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}
