/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scenario

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"balloontip/internal/geom"
	applog "balloontip/internal/log"
	"balloontip/internal/positioner"
	"balloontip/internal/style"
	"balloontip/internal/widgettree"
)

// Placement is where one balloon is after a step.
type Placement struct {
	Balloon          string
	State            string
	Visible          bool
	Bounds           geom.Rect
	Orientation      string
	FlipX, FlipY     bool
	HorizontalOffset int
	Tip              geom.Point
	Layer            int

	// Outline is the bubble polygon in container coordinates; nil when the
	// style cannot report one.
	Outline      geom.Polygon
	Fill, Border color.RGBA
}

// Frame is the state after one step. Step 0 is the initial layout.
type Frame struct {
	Step       int
	Action     string
	Placements []Placement
}

// NodeBox is a node's final geometry, for diagrams.
type NodeBox struct {
	ID      string
	Kind    string
	Bounds  geom.Rect
	Showing bool
}

// Result is a complete run.
type Result struct {
	Name      string
	Container geom.Rect
	Nodes     []NodeBox
	Frames    []Frame
	Elapsed   time.Duration
}

// Final returns the placements after the last step.
func (r *Result) Final() []Placement {
	if r == nil || len(r.Frames) == 0 {
		return nil
	}
	return r.Frames[len(r.Frames)-1].Placements
}

// Run builds the scene, applies every step and records a frame after each.
// The context is checked between steps.
func Run(ctx context.Context, doc *Document, d Defaults) (*Result, error) {
	start := time.Now()
	s, err := Build(doc, d)
	if err != nil {
		return nil, err
	}
	defer s.Close()
	l := applog.WithOperation(s.log, "run")
	l.InfoContext(ctx, "scenario started", slog.Int("balloons", len(doc.Balloons)), slog.Int("steps", len(doc.Steps)))

	res := &Result{Name: doc.Name, Container: doc.Container.Geom()}
	res.Frames = append(res.Frames, Frame{Step: 0, Action: "initial", Placements: s.Snapshot()})
	for i, st := range doc.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.Apply(st); err != nil {
			l.ErrorContext(ctx, "step failed", slog.Int("step", i+1), slog.Any("err", err))
			return nil, fmt.Errorf("step %d (%s): %w", i+1, st.Label(), err)
		}
		res.Frames = append(res.Frames, Frame{Step: i + 1, Action: st.Label(), Placements: s.Snapshot()})
		l.DebugContext(ctx, "step applied", slog.Int("step", i+1), slog.String("action", st.Label()))
	}
	res.Nodes = s.NodeBoxes()
	res.Elapsed = time.Since(start)
	l.InfoContext(ctx, "scenario finished", slog.Int("frames", len(res.Frames)), slog.Duration("elapsed", res.Elapsed))
	return res, nil
}

// Apply performs one step on the scene.
func (s *Scene) Apply(st Step) error {
	tr := s.Tree
	switch st.Action {
	case "move":
		return tr.Move(st.Target, st.X, st.Y)
	case "resize":
		return tr.Resize(st.Target, st.Width, st.Height)
	case "show":
		return tr.SetVisible(st.Target, true)
	case "hide":
		return tr.SetVisible(st.Target, false)
	case "select_tab":
		return tr.SelectTab(st.Target, st.Index)
	case "attach":
		return tr.Attach(st.Parent, st.Target)
	case "interact":
		return tr.Interact(st.Target)
	case "scroll":
		return tr.Scroll(st.Target, st.X, st.Y)
	case "insert_rows":
		return tr.InsertRows(st.Target, st.At, max(1, st.Count))
	case "delete_rows":
		return tr.DeleteRows(st.Target, st.First, st.Last)
	case "add_column":
		return tr.AddColumn(st.Target, st.Width)
	case "move_column":
		return tr.MoveColumn(st.Target, st.From, st.To)
	case "remove_column":
		return tr.RemoveColumn(st.Target, st.Index)
	case "set_column_width":
		return tr.SetColumnWidth(st.Target, st.Index, st.Width)
	case "insert_items":
		return tr.InsertItems(st.Target, st.At, max(1, st.Count))
	case "remove_items":
		return tr.RemoveItems(st.Target, st.First, st.Last)
	case "change_items":
		return tr.ChangeItems(st.Target, st.First, st.Last)
	}

	h, ok := s.handles[st.Balloon]
	if !ok {
		return fmt.Errorf("unknown balloon %q", st.Balloon)
	}
	switch st.Action {
	case "set_visible":
		h.Tip.SetVisible(st.Visible == nil || *st.Visible)
	case "close":
		h.Tip.CloseBalloon()
	case "click":
		h.Tip.Click()
	case "press_close":
		if h.Button == nil {
			return fmt.Errorf("balloon %q has no close button", h.ID)
		}
		h.Button.Press()
	case "set_cell":
		if h.Cell == nil {
			return fmt.Errorf("balloon %q is not a table cell balloon", h.ID)
		}
		return h.Cell.SetCellPosition(st.Row, st.Col)
	case "set_item":
		if h.Item == nil {
			return fmt.Errorf("balloon %q is not a list item balloon", h.ID)
		}
		return h.Item.SetItemPosition(st.Index)
	case "set_offset":
		if h.Custom == nil {
			return fmt.Errorf("balloon %q has no offset", h.ID)
		}
		var off *geom.Rect
		if st.Offset != nil {
			r := st.Offset.Geom()
			off = &r
		}
		return h.Custom.SetOffset(off)
	case "set_orientation":
		b, isBasic := h.Tip.Positioner().(*positioner.Basic)
		if !isBasic {
			return fmt.Errorf("balloon %q does not use a corner positioner", h.ID)
		}
		o, err := positioner.ParseOrientation(st.Orientation)
		if err != nil {
			return err
		}
		b.SetOrientation(o)
		h.Tip.RefreshLocation()
	default:
		return fmt.Errorf("unknown action %q", st.Action)
	}
	return nil
}

// Snapshot records every balloon's current placement.
func (s *Scene) Snapshot() []Placement {
	out := make([]Placement, 0, len(s.order))
	for _, h := range s.Balloons() {
		out = append(out, PlacementOf(h))
	}
	return out
}

// PlacementOf reads a handle's current placement.
func PlacementOf(h *Handle) Placement {
	t := h.Tip
	g := t.Geometry()
	p := Placement{
		Balloon:          h.ID,
		State:            t.State().String(),
		Visible:          t.Shown(),
		Bounds:           g.Bounds,
		Orientation:      g.Orientation.String(),
		FlipX:            g.FlipX,
		FlipY:            g.FlipY,
		HorizontalOffset: g.HorizontalOffset,
		Tip:              g.Tip,
		Layer:            t.Layer(),
	}
	if o, ok := t.Style().(style.Outliner); ok && !g.Bounds.Empty() {
		p.Outline = o.Outline(g.Bounds.W, g.Bounds.H).Translate(g.Bounds.Min())
	}
	if pt, ok := t.Style().(style.Painter); ok {
		p.Fill, p.Border = pt.Colors()
	}
	return p
}

// NodeBoxes lists the attached nodes below the window.
func (s *Scene) NodeBoxes() []NodeBox {
	var out []NodeBox
	for _, n := range s.Tree.Nodes() {
		if n.Kind() == widgettree.KindWindow {
			continue
		}
		out = append(out, NodeBox{ID: n.ID(), Kind: string(n.Kind()), Bounds: n.Bounds(), Showing: n.Showing()})
	}
	return out
}
