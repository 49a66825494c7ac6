/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scenario

import (
	"fmt"
	"log/slog"

	"balloontip/internal/balloon"
	"balloontip/internal/contents"
	"balloontip/internal/geom"
	applog "balloontip/internal/log"
	"balloontip/internal/positioner"
	"balloontip/internal/style"
	"balloontip/internal/widgettree"
)

// WindowID is the id of the implicit root node covering the container.
const WindowID = "window"

// Defaults are applied to every balloon before its own overrides.
type Defaults struct {
	Style       style.Spec
	Orientation positioner.Orientation
	Positioner  positioner.Config
	Padding     int
	MaxWidth    int
	CloseButton bool

	// PermanentClose makes the close button close the balloon for good
	// instead of hiding it.
	PermanentClose bool

	ButtonSize geom.Size
	Icons      balloon.ButtonIcons
	Font       contents.FontSpec
	Fonts      contents.Provider // nil means contents.Basic
}

// StockDefaults is a rounded LEFT_ABOVE balloon without a close button.
func StockDefaults() Defaults {
	return Defaults{
		Style:          style.DefaultSpec(),
		Orientation:    positioner.LeftAbove,
		Positioner:     positioner.DefaultConfig(),
		PermanentClose: true,
		ButtonSize:     geom.Size{W: 12, H: 12},
	}
}

// Handle is a balloon built from a document together with its variant.
type Handle struct {
	ID     string
	Tip    *balloon.Tip
	Custom *balloon.Custom
	Cell   *balloon.TableCell
	Item   *balloon.ListItem
	Button *balloon.Button
	Text   *contents.Text
}

// Scene is a live tree with its balloons.
type Scene struct {
	Tree     *widgettree.Tree
	defaults Defaults
	handles  map[string]*Handle
	order    []string
	log      *slog.Logger
}

// Build creates the tree and balloons a document declares.
func Build(doc *Document, d Defaults) (*Scene, error) {
	if doc == nil {
		return nil, fmt.Errorf("scenario is nil")
	}
	s := &Scene{
		Tree:     widgettree.New(WindowID, doc.Container.Geom()),
		defaults: d,
		handles:  map[string]*Handle{},
		log:      applog.WithComponent("scenario").With(slog.String("scenario", doc.Name)),
	}
	for _, n := range doc.Nodes {
		if err := s.addNode(WindowID, n); err != nil {
			return nil, err
		}
	}
	for _, b := range doc.Balloons {
		if err := s.AddBalloon(b); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Scene) addNode(parent string, n NodeSpec) error {
	kind := widgettree.Kind(n.Kind)
	if kind == "" {
		kind = widgettree.KindPanel
	}
	var err error
	switch kind {
	case widgettree.KindTable:
		_, err = s.Tree.Table(n.ID, n.Bounds.Geom(), n.Rows, max(1, n.RowHeight), n.Columns)
	case widgettree.KindList:
		_, err = s.Tree.List(n.ID, n.Bounds.Geom(), n.Items, max(1, n.ItemHeight))
	case widgettree.KindViewport:
		_, err = s.Tree.Viewport(n.ID, n.Bounds.Geom())
	default:
		_, err = s.Tree.Panel(n.ID, kind, n.Bounds.Geom())
	}
	if err != nil {
		return fmt.Errorf("node %q: %w", n.ID, err)
	}
	if n.Layer != nil {
		if err := s.Tree.SetLayer(n.ID, *n.Layer); err != nil {
			return err
		}
	}
	if n.Visible != nil && !*n.Visible {
		if err := s.Tree.SetVisible(n.ID, false); err != nil {
			return err
		}
	}
	if err := s.Tree.Attach(parent, n.ID); err != nil {
		return fmt.Errorf("node %q: %w", n.ID, err)
	}
	for _, c := range n.Children {
		if err := s.addNode(n.ID, c); err != nil {
			return err
		}
	}
	if kind == widgettree.KindTabs && len(n.Children) > 0 {
		if err := s.Tree.SelectTab(n.ID, n.Selected); err != nil {
			return fmt.Errorf("node %q: %w", n.ID, err)
		}
	}
	return nil
}

// AddBalloon creates one balloon on the scene's tree.
func (s *Scene) AddBalloon(b BalloonSpec) error {
	if _, dup := s.handles[b.ID]; dup {
		return fmt.Errorf("balloon %q declared twice", b.ID)
	}
	anchor, ok := s.Tree.Node(b.Anchor)
	if !ok {
		return fmt.Errorf("balloon %q: %w: %q", b.ID, widgettree.ErrUnknownNode, b.Anchor)
	}
	opts, h, err := s.options(b)
	if err != nil {
		return fmt.Errorf("balloon %q: %w", b.ID, err)
	}

	switch b.Variant {
	case "", "plain":
		h.Tip, err = balloon.New(anchor, opts)
	case "custom":
		var off *geom.Rect
		if b.Offset != nil {
			r := b.Offset.Geom()
			off = &r
		}
		h.Custom, err = balloon.NewCustom(anchor, opts, off)
		if err == nil {
			h.Tip = h.Custom.Tip
		}
	case "table_cell":
		tb, isTable := anchor.(*widgettree.Table)
		if !isTable {
			return fmt.Errorf("balloon %q: anchor %q is not a table", b.ID, b.Anchor)
		}
		h.Cell, err = balloon.NewTableCell(tb, opts, b.Row, b.Col)
		if err == nil {
			h.Custom, h.Tip = h.Cell.Custom, h.Cell.Tip
		}
	case "list_item":
		l, isList := anchor.(*widgettree.List)
		if !isList {
			return fmt.Errorf("balloon %q: anchor %q is not a list", b.ID, b.Anchor)
		}
		h.Item, err = balloon.NewListItem(l, opts, b.Index)
		if err == nil {
			h.Custom, h.Tip = h.Item.Custom, h.Item.Tip
		}
	default:
		return fmt.Errorf("balloon %q: unknown variant %q", b.ID, b.Variant)
	}
	if err != nil {
		return fmt.Errorf("balloon %q: %w", b.ID, err)
	}
	if h.Button != nil && !s.defaults.PermanentClose {
		if err := h.Tip.SetCloseButton(h.Button, false, false); err != nil {
			return fmt.Errorf("balloon %q: %w", b.ID, err)
		}
	}
	if b.Visible != nil && !*b.Visible {
		h.Tip.SetVisible(false)
	}
	s.handles[b.ID] = h
	s.order = append(s.order, b.ID)
	s.log.Debug("balloon created", slog.String("balloon", b.ID), slog.String("anchor", b.Anchor), slog.String("state", h.Tip.State().String()))
	return nil
}

func (s *Scene) options(b BalloonSpec) (balloon.Options, *Handle, error) {
	d := s.defaults
	h := &Handle{ID: b.ID}

	st, err := BuildStyle(d.Style, b.Style)
	if err != nil {
		return balloon.Options{}, nil, err
	}

	pos, err := BuildPositioner(d.Orientation, d.Positioner, b.Positioner)
	if err != nil {
		return balloon.Options{}, nil, err
	}

	maxWidth := d.MaxWidth
	if b.MaxWidth != nil {
		maxWidth = *b.MaxWidth
	}
	h.Text = contents.NewText(b.Text, d.Font, maxWidth, d.Fonts)

	padding := d.Padding
	if b.Padding != nil {
		padding = *b.Padding
	}
	opts := balloon.Options{ID: b.ID, Style: st, Positioner: pos, Contents: h.Text, Padding: padding}

	closeBtn := d.CloseButton
	if b.CloseButton != nil {
		closeBtn = *b.CloseButton
	}
	if closeBtn {
		h.Button = balloon.NewButton(d.ButtonSize, d.Icons)
		opts.CloseButton = h.Button
	}
	return opts, h, nil
}

// BuildStyle applies ss on top of base and returns a fresh style.
func BuildStyle(base style.Spec, ss *StyleSpec) (style.Style, error) {
	spec := base
	if ss != nil {
		if ss.Kind != "" {
			spec.Kind = ss.Kind
		}
		if ss.ArcWidth != nil {
			spec.ArcWidth = *ss.ArcWidth
		}
		if ss.ArcHeight != nil {
			spec.ArcHeight = *ss.ArcHeight
		}
		if ss.Fill != "" {
			c, err := style.ParseColor(ss.Fill)
			if err != nil {
				return nil, err
			}
			spec.Fill = c
		}
		if ss.Border != "" {
			c, err := style.ParseColor(ss.Border)
			if err != nil {
				return nil, err
			}
			spec.Border = c
		}
	}
	return style.New(spec)
}

// BuildPositioner applies ps on top of the defaults. A nil ps yields a Basic
// positioner with the default orientation and config.
func BuildPositioner(o positioner.Orientation, cfg positioner.Config, ps *PositionerSpec) (positioner.Positioner, error) {
	if ps == nil {
		return positioner.NewBasic(o, cfg)
	}
	if ps.Orientation != "" {
		var err error
		if o, err = positioner.ParseOrientation(ps.Orientation); err != nil {
			return nil, err
		}
	}
	if ps.HorizontalOffset != nil {
		cfg.PreferredHorizontalOffset = *ps.HorizontalOffset
	}
	if ps.VerticalOffset != nil {
		cfg.PreferredVerticalOffset = *ps.VerticalOffset
	}
	if ps.OffsetCorrection != nil {
		cfg.OffsetCorrection = *ps.OffsetCorrection
	}
	if ps.OrientationCorrection != nil {
		cfg.OrientationCorrection = *ps.OrientationCorrection
	}
	if ps.AttachLocation != "" {
		loc, err := positioner.ParseAttachLocation(ps.AttachLocation)
		if err != nil {
			return nil, err
		}
		cfg.AttachX, cfg.AttachY, cfg.FixedAttachLocation = loc.Fractions()
	}

	switch ps.Kind {
	case "", "basic":
		return positioner.NewBasic(o, cfg)
	case "centered":
		c := positioner.NewCentered(cfg.PreferredVerticalOffset)
		c.EnableOrientationCorrection(cfg.OrientationCorrection)
		if cfg.FixedAttachLocation {
			if err := c.SetAttachLocation(cfg.AttachX, cfg.AttachY); err != nil {
				return nil, err
			}
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown positioner kind %q", ps.Kind)
	}
}

// Defaults returns the defaults the scene was built with.
func (s *Scene) Defaults() Defaults { return s.defaults }

// Balloon returns the handle for id.
func (s *Scene) Balloon(id string) (*Handle, bool) {
	h, ok := s.handles[id]
	return h, ok
}

// Balloons returns the handles in declaration order.
func (s *Scene) Balloons() []*Handle {
	out := make([]*Handle, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.handles[id])
	}
	return out
}

// Close closes every balloon, releasing its subscriptions on the tree.
func (s *Scene) Close() {
	for _, h := range s.Balloons() {
		h.Tip.CloseBalloon()
	}
}
