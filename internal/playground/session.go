/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package playground is a toolkit-neutral editing session over a scenario:
// one balloon is selected, its settings can be edited live and every edit
// can be undone. The Fyne window in internal/ui drives it.
package playground

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gopkg.in/yaml.v3"

	"balloontip/internal/geom"
	applog "balloontip/internal/log"
	"balloontip/internal/positioner"
	"balloontip/internal/scenario"
	"balloontip/internal/undo"
)

// ErrNoSelection is returned by edits when no balloon is selected.
var ErrNoSelection = errors.New("no balloon selected")

// Settings are the editable properties of one balloon.
type Settings struct {
	Text       string                  `yaml:"text"`
	Padding    int                     `yaml:"padding"`
	Style      scenario.StyleSpec      `yaml:"style"`
	Positioner scenario.PositionerSpec `yaml:"positioner"`
}

// Session is a live scene plus per-balloon settings and history.
type Session struct {
	doc      *scenario.Document
	scene    *scenario.Scene
	settings map[string]Settings
	anchors  map[string]string
	selected string
	history  *undo.Manager
	now      func() time.Time
	log      *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithClock replaces time.Now, used to stamp undo entries.
func WithClock(now func() time.Time) Option { return func(s *Session) { s.now = now } }

// WithHistory replaces the default undo manager.
func WithHistory(m *undo.Manager) Option { return func(s *Session) { s.history = m } }

// New builds doc and selects its first balloon.
func New(doc *scenario.Document, d scenario.Defaults, opts ...Option) (*Session, error) {
	scene, err := scenario.Build(doc, d)
	if err != nil {
		return nil, err
	}
	s := &Session{
		doc:      doc,
		scene:    scene,
		settings: map[string]Settings{},
		anchors:  map[string]string{},
		now:      time.Now,
		log:      applog.WithComponent("playground"),
	}
	for _, o := range opts {
		o(s)
	}
	if s.history == nil {
		s.history = undo.NewManager(undo.Config{MaxPerBalloon: 100, MinInterval: 300 * time.Millisecond})
	}
	for _, b := range doc.Balloons {
		st := Settings{Text: b.Text, Padding: d.Padding}
		if b.Padding != nil {
			st.Padding = *b.Padding
		}
		if b.Style != nil {
			st.Style = *b.Style
		}
		if b.Positioner != nil {
			st.Positioner = *b.Positioner
		}
		s.settings[b.ID] = st
		s.anchors[b.ID] = b.Anchor
	}
	if len(doc.Balloons) > 0 {
		s.selected = doc.Balloons[0].ID
	}
	return s, nil
}

// Scene is the live scene.
func (s *Session) Scene() *scenario.Scene { return s.scene }

// Name is the scenario name.
func (s *Session) Name() string { return s.doc.Name }

// Selected returns the selected balloon id, or "".
func (s *Session) Selected() string { return s.selected }

// Select makes id the balloon subsequent edits apply to.
func (s *Session) Select(id string) error {
	if _, ok := s.scene.Balloon(id); !ok {
		return fmt.Errorf("unknown balloon %q", id)
	}
	s.selected = id
	return nil
}

// Settings returns a balloon's current settings.
func (s *Session) Settings(id string) (Settings, bool) {
	st, ok := s.settings[id]
	return st, ok
}

// Placement is where the selected balloon currently is.
func (s *Session) Placement() (scenario.Placement, bool) {
	h, ok := s.scene.Balloon(s.selected)
	if !ok {
		return scenario.Placement{}, false
	}
	return scenario.PlacementOf(h), true
}

// Snapshot is the current placement of every balloon as a single-frame result.
func (s *Session) Snapshot() *scenario.Result {
	return &scenario.Result{
		Name:      s.doc.Name,
		Container: s.doc.Container.Geom(),
		Nodes:     s.scene.NodeBoxes(),
		Frames:    []scenario.Frame{{Step: 0, Action: "playground", Placements: s.scene.Snapshot()}},
	}
}

// Edit changes the selected balloon's settings through fn and applies them.
// The previous settings go on the undo stack under label. When applying
// fails the balloon keeps its previous settings.
func (s *Session) Edit(label string, fn func(*Settings)) error {
	id := s.selected
	if id == "" {
		return ErrNoSelection
	}
	before := s.settings[id]
	after := before
	fn(&after)
	if err := s.apply(id, after); err != nil {
		if rerr := s.apply(id, before); rerr != nil {
			s.log.Error("restore after failed edit", slog.String("balloon", id), slog.Any("err", rerr))
		}
		return fmt.Errorf("%s: %w", label, err)
	}
	blob, err := yaml.Marshal(before)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	s.history.Push(undo.Snapshot{Balloon: id, Label: label, Blob: blob, TS: s.now()})
	s.log.Debug("balloon edited", slog.String("balloon", id), slog.String("edit", label))
	return nil
}

// SetText replaces the selected balloon's text.
func (s *Session) SetText(text string) error {
	return s.Edit("text", func(st *Settings) { st.Text = text })
}

// SetOrientation switches the selected balloon to a corner positioner with
// orientation o (for example "right_below").
func (s *Session) SetOrientation(o string) error {
	if _, err := positioner.ParseOrientation(o); err != nil {
		return err
	}
	return s.Edit("orientation", func(st *Settings) {
		st.Positioner.Kind = "basic"
		st.Positioner.Orientation = o
	})
}

// SetAttachLocation fixes where the tip touches the anchor; "aligned" clears it.
func (s *Session) SetAttachLocation(loc string) error {
	if _, err := positioner.ParseAttachLocation(loc); err != nil {
		return err
	}
	return s.Edit("attach location", func(st *Settings) { st.Positioner.AttachLocation = loc })
}

// SetOffsets sets the preferred horizontal and vertical tip offsets.
func (s *Session) SetOffsets(h, v int) error {
	if h < 0 || v < 0 {
		return fmt.Errorf("negative offset %d,%d", h, v)
	}
	return s.Edit("offsets", func(st *Settings) {
		st.Positioner.HorizontalOffset = &h
		st.Positioner.VerticalOffset = &v
	})
}

// SetCorrections toggles offset and orientation correction.
func (s *Session) SetCorrections(offset, orientation bool) error {
	return s.Edit("corrections", func(st *Settings) {
		st.Positioner.OffsetCorrection = &offset
		st.Positioner.OrientationCorrection = &orientation
	})
}

// SetStyleKind swaps the skin: rounded, edged or minimal.
func (s *Session) SetStyleKind(kind string) error {
	return s.Edit("style", func(st *Settings) { st.Style.Kind = kind })
}

// SetPadding changes the space around the contents.
func (s *Session) SetPadding(px int) error {
	return s.Edit("padding", func(st *Settings) { st.Padding = px })
}

// Undo reverts the last edit of the selected balloon and returns its label.
func (s *Session) Undo() (string, bool, error) {
	return s.step(s.history.Undo)
}

// Redo re-applies the last undone edit of the selected balloon.
func (s *Session) Redo() (string, bool, error) {
	return s.step(s.history.Redo)
}

func (s *Session) step(pop func(string, undo.Snapshot) (undo.Snapshot, bool)) (string, bool, error) {
	id := s.selected
	if id == "" {
		return "", false, ErrNoSelection
	}
	cur, err := yaml.Marshal(s.settings[id])
	if err != nil {
		return "", false, fmt.Errorf("encode settings: %w", err)
	}
	snap, ok := pop(id, undo.Snapshot{Blob: cur, TS: s.now()})
	if !ok {
		return "", false, nil
	}
	var st Settings
	if err := yaml.Unmarshal(snap.Blob, &st); err != nil {
		return "", false, fmt.Errorf("decode settings: %w", err)
	}
	if err := s.apply(id, st); err != nil {
		return "", false, err
	}
	return snap.Label, true, nil
}

// CanUndo reports the label of the edit Undo would revert.
func (s *Session) CanUndo() (string, bool) { return s.history.CanUndo(s.selected) }

// CanRedo reports whether Redo has anything to re-apply.
func (s *Session) CanRedo() bool { return s.history.CanRedo(s.selected) }

// MoveAnchor moves the node the selected balloon points at, as a drag would.
func (s *Session) MoveAnchor(x, y int) error {
	id, ok := s.anchors[s.selected]
	if !ok {
		return ErrNoSelection
	}
	return s.scene.Tree.Move(id, x, y)
}

// DragAnchor shifts the selected balloon's anchor by dx,dy.
func (s *Session) DragAnchor(dx, dy int) error {
	id, ok := s.anchors[s.selected]
	if !ok {
		return ErrNoSelection
	}
	return s.scene.Tree.Offset(id, dx, dy)
}

// AnchorBounds is the container-relative box of the selected balloon's anchor.
func (s *Session) AnchorBounds() (geom.Rect, bool) {
	n, ok := s.scene.Tree.Node(s.anchors[s.selected])
	if !ok {
		return geom.Rect{}, false
	}
	return n.Bounds(), true
}

// Apply performs a scenario step on the live scene.
func (s *Session) Apply(st scenario.Step) error { return s.scene.Apply(st) }

// Close closes every balloon and drops the history.
func (s *Session) Close() {
	for id := range s.settings {
		s.history.Forget(id)
	}
	s.scene.Close()
}

func (s *Session) apply(id string, st Settings) error {
	h, ok := s.scene.Balloon(id)
	if !ok {
		return fmt.Errorf("unknown balloon %q", id)
	}
	d := s.scene.Defaults()
	sk, err := scenario.BuildStyle(d.Style, &st.Style)
	if err != nil {
		return err
	}
	pos, err := scenario.BuildPositioner(d.Orientation, d.Positioner, &st.Positioner)
	if err != nil {
		return err
	}
	if h.Text != nil && h.Text.Text() != st.Text {
		h.Text.SetText(st.Text)
	}
	if err := h.Tip.SetStyle(sk); err != nil {
		return err
	}
	if err := h.Tip.SetPadding(st.Padding); err != nil {
		return err
	}
	if err := h.Tip.SetPositioner(pos); err != nil {
		return err
	}
	s.settings[id] = st
	return nil
}
