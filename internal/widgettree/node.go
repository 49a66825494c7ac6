/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package widgettree is a small in-memory component tree. It implements the
// node, surface, table, list and viewport contracts of package balloon and is
// what scenarios and tests drive balloons with.
//
// Child bounds are relative to the parent; viewports offset their children by
// the scroll position. Like most real toolkits, switching tabs only notifies
// the tab pages themselves, not their descendants.
package widgettree

import (
	"slices"

	"balloontip/internal/balloon"
	"balloontip/internal/geom"
)

// Kind names the node types a scenario can declare.
type Kind string

const (
	KindWindow   Kind = "window"
	KindPanel    Kind = "plain"
	KindTabs     Kind = "tab"
	KindBody     Kind = "balloon-body"
	KindTable    Kind = "table"
	KindList     Kind = "list"
	KindViewport Kind = "viewport"
)

type element interface {
	balloon.Node
	base() *Node
}

// Node is the common part of every tree element.
type Node struct {
	id       string
	kind     Kind
	self     element
	parent   element
	children []element
	rel      geom.Rect
	visible  bool
	layer    int
	scroll   geom.Point

	subs  map[int]func(balloon.Event)
	order []int
	next  int
}

func newNode(id string, kind Kind, rel geom.Rect) *Node {
	n := &Node{id: id, kind: kind, rel: rel, visible: true, subs: map[int]func(balloon.Event){}}
	n.self = n
	return n
}

func (n *Node) base() *Node { return n }

func (n *Node) ID() string { return n.id }
func (n *Node) Kind() Kind { return n.kind }
func (n *Node) Visible() bool { return n.visible }
func (n *Node) Layer() int { return n.layer }

// Relative returns the bounds relative to the parent.
func (n *Node) Relative() geom.Rect { return n.rel }

func (n *Node) Parent() balloon.Node {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// Children returns the child nodes in insertion order.
func (n *Node) Children() []balloon.Node {
	out := make([]balloon.Node, len(n.children))
	for i, c := range n.children {
		out[i] = c
	}
	return out
}

func (n *Node) Bounds() geom.Rect {
	if n.parent == nil {
		return n.rel
	}
	p := n.parent.base()
	origin := p.Bounds().Min().Add(n.rel.Min()).Sub(p.scroll)
	return geom.R(origin.X, origin.Y, n.rel.W, n.rel.H)
}

func (n *Node) Showing() bool {
	if !n.visible {
		return false
	}
	if n.parent == nil {
		return true
	}
	return n.parent.Showing()
}

func (n *Node) IsTabContainer() bool { return n.kind == KindTabs }
func (n *Node) IsPopupOfSameKind() bool { return n.kind == KindBody }

func (n *Node) Subscribe(fn func(balloon.Event)) func() {
	n.next++
	id := n.next
	n.subs[id] = fn
	n.order = append(n.order, id)
	return func() {
		delete(n.subs, id)
		n.order = slices.DeleteFunc(n.order, func(x int) bool { return x == id })
	}
}

// Subscribers is the number of live subscriptions on the node.
func (n *Node) Subscribers() int { return len(n.subs) }

// emit delivers e to the subscribers registered when it started. A subscriber
// removed by an earlier one during the same dispatch is skipped.
func (n *Node) emit(e balloon.Event) {
	e.Source = n.self
	for _, id := range slices.Clone(n.order) {
		if fn, ok := n.subs[id]; ok {
			fn(e)
		}
	}
}

// emitTree delivers kind to n and every descendant, parents first.
func (n *Node) emitTree(kind balloon.EventKind) {
	n.emit(balloon.Event{Kind: kind})
	for _, c := range slices.Clone(n.children) {
		c.base().emitTree(kind)
	}
}

// Window is the root of a tree and the surface balloons are drawn on.
type Window struct {
	*Node
	balloons []Placed
}

// Placed is a balloon registered on a window together with its layer.
type Placed struct {
	Tip   *balloon.Tip
	Layer int
}

func newWindow(id string, bounds geom.Rect) *Window {
	w := &Window{Node: newNode(id, KindWindow, bounds)}
	w.self = w
	return w
}

func (w *Window) AddBalloon(t *balloon.Tip, layer int) {
	w.RemoveBalloon(t)
	w.balloons = append(w.balloons, Placed{Tip: t, Layer: layer})
	slices.SortStableFunc(w.balloons, func(a, b Placed) int { return a.Layer - b.Layer })
}

func (w *Window) RemoveBalloon(t *balloon.Tip) {
	w.balloons = slices.DeleteFunc(w.balloons, func(p Placed) bool { return p.Tip == t })
}

// Balloons returns the registered balloons, lowest layer first.
func (w *Window) Balloons() []Placed { return slices.Clone(w.balloons) }

// Table is a grid of fixed-height rows and per-column widths.
type Table struct {
	*Node
	rows      int
	rowHeight int
	widths    []int
}

func (t *Table) RowCount() int { return t.rows }
func (t *Table) ColumnCount() int { return len(t.widths) }

// CellRect is relative to the table; out-of-range cells are empty.
func (t *Table) CellRect(row, col int) geom.Rect {
	if row < 0 || row >= t.rows || col < 0 || col >= len(t.widths) {
		return geom.Rect{}
	}
	x := 0
	for _, w := range t.widths[:col] {
		x += w
	}
	return geom.R(x, row*t.rowHeight, t.widths[col], t.rowHeight)
}

// List stacks fixed-height items across the list's width.
type List struct {
	*Node
	items      int
	itemHeight int
}

func (l *List) Len() int { return l.items }

func (l *List) ItemRect(index int) (geom.Rect, bool) {
	if index < 0 || index >= l.items {
		return geom.Rect{}, false
	}
	return geom.R(0, index*l.itemHeight, l.rel.W, l.itemHeight), true
}

// Viewport clips and scrolls its children.
type Viewport struct {
	*Node
}

func (v *Viewport) VisibleRect() geom.Rect { return v.Bounds() }

// ScrollPosition is the current scroll offset.
func (v *Viewport) ScrollPosition() geom.Point { return v.scroll }

var (
	_ balloon.Surface  = (*Window)(nil)
	_ balloon.Table    = (*Table)(nil)
	_ balloon.List     = (*List)(nil)
	_ balloon.Viewport = (*Viewport)(nil)
	_ balloon.Visibler = (*Node)(nil)
)
