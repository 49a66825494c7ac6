/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package widgettree

import (
	"errors"
	"fmt"
	"slices"

	"balloontip/internal/balloon"
	"balloontip/internal/geom"
)

var (
	ErrUnknownNode = errors.New("widgettree: unknown node")
	ErrDuplicateID = errors.New("widgettree: duplicate node id")
	ErrWrongKind   = errors.New("widgettree: operation not supported by node kind")
)

// Tree owns a window and every node created for it, attached or not.
type Tree struct {
	root  *Window
	nodes map[string]element
}

// New returns a tree whose window covers bounds.
func New(id string, bounds geom.Rect) *Tree {
	w := newWindow(id, bounds)
	return &Tree{root: w, nodes: map[string]element{id: w}}
}

func (t *Tree) Root() *Window { return t.root }

// Node looks up a node by id.
func (t *Tree) Node(id string) (balloon.Node, bool) {
	el, ok := t.nodes[id]
	if !ok {
		return nil, false
	}
	return el, true
}

// Nodes returns the window and every node attached below it, parents first.
func (t *Tree) Nodes() []*Node {
	var out []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		out = append(out, n)
		for _, c := range n.children {
			walk(c.base())
		}
	}
	walk(t.root.Node)
	return out
}

func (t *Tree) lookup(id string) (element, error) {
	el, ok := t.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	return el, nil
}

func (t *Tree) register(el element) error {
	id := el.base().id
	if _, dup := t.nodes[id]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	t.nodes[id] = el
	return nil
}

// Panel creates a detached plain node. Kind may be KindPanel, KindTabs or
// KindBody.
func (t *Tree) Panel(id string, kind Kind, rel geom.Rect) (*Node, error) {
	switch kind {
	case KindPanel, KindTabs, KindBody:
	default:
		return nil, fmt.Errorf("%w: panel of kind %q", ErrWrongKind, kind)
	}
	n := newNode(id, kind, rel)
	if kind == KindBody {
		n.layer = balloon.DefaultLayer
	}
	return n, t.register(n)
}

// Table creates a detached table.
func (t *Tree) Table(id string, rel geom.Rect, rows, rowHeight int, widths []int) (*Table, error) {
	tb := &Table{Node: newNode(id, KindTable, rel), rows: rows, rowHeight: rowHeight, widths: slices.Clone(widths)}
	tb.self = tb
	return tb, t.register(tb)
}

// List creates a detached list.
func (t *Tree) List(id string, rel geom.Rect, items, itemHeight int) (*List, error) {
	l := &List{Node: newNode(id, KindList, rel), items: items, itemHeight: itemHeight}
	l.self = l
	return l, t.register(l)
}

// Viewport creates a detached viewport.
func (t *Tree) Viewport(id string, rel geom.Rect) (*Viewport, error) {
	v := &Viewport{Node: newNode(id, KindViewport, rel)}
	v.self = v
	return v, t.register(v)
}

// Attach inserts child under parent and notifies the child's subtree with
// AncestorAdded.
func (t *Tree) Attach(parentID, childID string) error {
	p, err := t.lookup(parentID)
	if err != nil {
		return err
	}
	c, err := t.lookup(childID)
	if err != nil {
		return err
	}
	if c == t.root {
		return fmt.Errorf("%w: the window cannot be a child", ErrWrongKind)
	}
	for a := p; a != nil; a = a.base().parent {
		if a == c {
			return fmt.Errorf("widgettree: attaching %q under %q would create a cycle", childID, parentID)
		}
	}
	cb := c.base()
	if old := cb.parent; old != nil {
		ob := old.base()
		ob.children = slices.DeleteFunc(ob.children, func(e element) bool { return e == c })
	}
	cb.parent = p
	p.base().children = append(p.base().children, c)
	cb.emitTree(balloon.AncestorAdded)
	return nil
}

// SetBounds moves and resizes a node relative to its parent.
func (t *Tree) SetBounds(id string, rel geom.Rect) error {
	el, err := t.lookup(id)
	if err != nil {
		return err
	}
	n := el.base()
	moved := n.rel.Min() != rel.Min()
	resized := n.rel.Size() != rel.Size()
	n.rel = rel
	if moved {
		n.emitTree(balloon.Moved)
	}
	if resized {
		n.emit(balloon.Event{Kind: balloon.Resized})
		// list items span the list's width
		if n.kind == KindList {
			n.emit(balloon.Event{Kind: balloon.ContentsChanged, First: 0, Last: max(0, el.(*List).items-1)})
		}
	}
	return nil
}

// Move sets a node's position relative to its parent.
func (t *Tree) Move(id string, x, y int) error {
	el, err := t.lookup(id)
	if err != nil {
		return err
	}
	r := el.base().rel
	return t.SetBounds(id, geom.R(x, y, r.W, r.H))
}

// Offset shifts a node by dx,dy within its parent.
func (t *Tree) Offset(id string, dx, dy int) error {
	el, err := t.lookup(id)
	if err != nil {
		return err
	}
	return t.SetBounds(id, el.base().rel.Translate(dx, dy))
}

// Resize sets a node's size.
func (t *Tree) Resize(id string, w, h int) error {
	el, err := t.lookup(id)
	if err != nil {
		return err
	}
	r := el.base().rel
	return t.SetBounds(id, geom.R(r.X, r.Y, w, h))
}

// SetVisible toggles a node's own visibility and notifies its subtree.
func (t *Tree) SetVisible(id string, visible bool) error {
	el, err := t.lookup(id)
	if err != nil {
		return err
	}
	n := el.base()
	if n.visible == visible {
		return nil
	}
	n.visible = visible
	if visible {
		n.emitTree(balloon.Shown)
	} else {
		n.emitTree(balloon.Hidden)
	}
	return nil
}

// SelectTab shows page index of a tab container and hides the others. Only
// the pages are notified.
func (t *Tree) SelectTab(id string, index int) error {
	el, err := t.lookup(id)
	if err != nil {
		return err
	}
	n := el.base()
	if n.kind != KindTabs {
		return fmt.Errorf("%w: %q is not a tab container", ErrWrongKind, id)
	}
	if index < 0 || index >= len(n.children) {
		return fmt.Errorf("widgettree: tab index %d out of range [0,%d)", index, len(n.children))
	}
	for i, c := range n.children {
		cb := c.base()
		want := i == index
		if cb.visible == want {
			continue
		}
		cb.visible = want
		if want {
			cb.emit(balloon.Event{Kind: balloon.Shown})
		} else {
			cb.emit(balloon.Event{Kind: balloon.Hidden})
		}
	}
	return nil
}

// Interact simulates a click or key press on a node.
func (t *Tree) Interact(id string) error {
	el, err := t.lookup(id)
	if err != nil {
		return err
	}
	el.base().emit(balloon.Event{Kind: balloon.Interacted})
	return nil
}

// SetLayer sets the drawing layer reported by a balloon body.
func (t *Tree) SetLayer(id string, layer int) error {
	el, err := t.lookup(id)
	if err != nil {
		return err
	}
	el.base().layer = layer
	return nil
}

// Scroll sets a viewport's scroll offset.
func (t *Tree) Scroll(id string, x, y int) error {
	v, err := t.viewport(id)
	if err != nil {
		return err
	}
	if v.scroll == geom.Pt(x, y) {
		return nil
	}
	v.scroll = geom.Pt(x, y)
	v.emit(balloon.Event{Kind: balloon.ViewChanged})
	for _, c := range slices.Clone(v.children) {
		c.base().emitTree(balloon.Moved)
	}
	return nil
}

func (t *Tree) viewport(id string) (*Viewport, error) {
	el, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	v, ok := el.(*Viewport)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a viewport", ErrWrongKind, id)
	}
	return v, nil
}

func (t *Tree) table(id string) (*Table, error) {
	el, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	tb, ok := el.(*Table)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a table", ErrWrongKind, id)
	}
	return tb, nil
}

func (t *Tree) list(id string) (*List, error) {
	el, err := t.lookup(id)
	if err != nil {
		return nil, err
	}
	l, ok := el.(*List)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a list", ErrWrongKind, id)
	}
	return l, nil
}

// InsertRows adds n rows before row at.
func (t *Tree) InsertRows(id string, at, n int) error {
	tb, err := t.table(id)
	if err != nil {
		return err
	}
	if n <= 0 || at < 0 || at > tb.rows {
		return fmt.Errorf("widgettree: cannot insert %d rows at %d of %d", n, at, tb.rows)
	}
	tb.rows += n
	tb.emit(balloon.Event{Kind: balloon.RowsInserted, First: at, Last: at + n - 1})
	return nil
}

// DeleteRows removes rows first..last inclusive.
func (t *Tree) DeleteRows(id string, first, last int) error {
	tb, err := t.table(id)
	if err != nil {
		return err
	}
	if first < 0 || last < first || last >= tb.rows {
		return fmt.Errorf("widgettree: row range %d..%d out of range [0,%d)", first, last, tb.rows)
	}
	tb.rows -= last - first + 1
	tb.emit(balloon.Event{Kind: balloon.RowsDeleted, First: first, Last: last})
	return nil
}

// AddColumn appends a column of the given width.
func (t *Tree) AddColumn(id string, width int) error {
	tb, err := t.table(id)
	if err != nil {
		return err
	}
	tb.widths = append(tb.widths, width)
	col := len(tb.widths) - 1
	tb.emit(balloon.Event{Kind: balloon.ColumnAdded, First: col, Last: col})
	return nil
}

// MoveColumn moves column from to position to.
func (t *Tree) MoveColumn(id string, from, to int) error {
	tb, err := t.table(id)
	if err != nil {
		return err
	}
	if from < 0 || from >= len(tb.widths) || to < 0 || to >= len(tb.widths) {
		return fmt.Errorf("widgettree: column move %d->%d out of range [0,%d)", from, to, len(tb.widths))
	}
	w := tb.widths[from]
	tb.widths = slices.Delete(tb.widths, from, from+1)
	tb.widths = slices.Insert(tb.widths, to, w)
	tb.emit(balloon.Event{Kind: balloon.ColumnMoved, First: from, Last: to})
	return nil
}

// RemoveColumn deletes a column.
func (t *Tree) RemoveColumn(id string, col int) error {
	tb, err := t.table(id)
	if err != nil {
		return err
	}
	if col < 0 || col >= len(tb.widths) {
		return fmt.Errorf("widgettree: column %d out of range [0,%d)", col, len(tb.widths))
	}
	tb.widths = slices.Delete(tb.widths, col, col+1)
	tb.emit(balloon.Event{Kind: balloon.ColumnRemoved, First: col, Last: col})
	return nil
}

// SetColumnWidth resizes a column, which shifts every column right of it.
func (t *Tree) SetColumnWidth(id string, col, width int) error {
	tb, err := t.table(id)
	if err != nil {
		return err
	}
	if col < 0 || col >= len(tb.widths) {
		return fmt.Errorf("widgettree: column %d out of range [0,%d)", col, len(tb.widths))
	}
	tb.widths[col] = width
	tb.emit(balloon.Event{Kind: balloon.ColumnMarginChanged, First: col, Last: col})
	return nil
}

// InsertItems adds n items before index at.
func (t *Tree) InsertItems(id string, at, n int) error {
	l, err := t.list(id)
	if err != nil {
		return err
	}
	if n <= 0 || at < 0 || at > l.items {
		return fmt.Errorf("widgettree: cannot insert %d items at %d of %d", n, at, l.items)
	}
	l.items += n
	l.emit(balloon.Event{Kind: balloon.IntervalAdded, First: at, Last: at + n - 1})
	return nil
}

// RemoveItems removes items first..last inclusive.
func (t *Tree) RemoveItems(id string, first, last int) error {
	l, err := t.list(id)
	if err != nil {
		return err
	}
	if first < 0 || last < first || last >= l.items {
		return fmt.Errorf("widgettree: item range %d..%d out of range [0,%d)", first, last, l.items)
	}
	l.items -= last - first + 1
	l.emit(balloon.Event{Kind: balloon.IntervalRemoved, First: first, Last: last})
	return nil
}

// ChangeItems reports that items first..last changed in place.
func (t *Tree) ChangeItems(id string, first, last int) error {
	l, err := t.list(id)
	if err != nil {
		return err
	}
	l.emit(balloon.Event{Kind: balloon.ContentsChanged, First: first, Last: last})
	return nil
}
