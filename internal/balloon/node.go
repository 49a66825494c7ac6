/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package balloon

import (
	"fmt"

	"balloontip/internal/geom"
)

// EventKind identifies a component or model notification.
type EventKind int

const (
	Moved EventKind = iota
	Resized
	Shown
	Hidden
	// AncestorAdded fires on a node (and its descendants) when it is inserted
	// under a new parent.
	AncestorAdded
	// Interacted is a click or key press on the node.
	Interacted
	// ViewChanged fires on a viewport when its visible rectangle scrolls.
	ViewChanged

	// table model
	ColumnAdded
	ColumnMoved
	ColumnRemoved
	ColumnMarginChanged
	RowsInserted
	RowsDeleted
	RowsUpdated

	// list model
	IntervalAdded
	IntervalRemoved
	ContentsChanged
)

var eventNames = [...]string{
	"moved", "resized", "shown", "hidden", "ancestor_added", "interacted", "view_changed",
	"column_added", "column_moved", "column_removed", "column_margin_changed",
	"rows_inserted", "rows_deleted", "rows_updated",
	"interval_added", "interval_removed", "contents_changed",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
	return eventNames[k]
}

// Event is delivered to subscribers of a Node. First and Last carry the
// affected row, column or item range of model events (inclusive).
type Event struct {
	Kind        EventKind
	Source      Node
	First, Last int
}

// Node is the small slice of a widget toolkit the balloon controller needs.
// Bounds are in the shared coordinate space of the top-level surface.
type Node interface {
	Parent() Node
	Bounds() geom.Rect
	// Showing reports whether the node and all its ancestors are visible.
	Showing() bool
	IsTabContainer() bool
	// IsPopupOfSameKind marks the body of another balloon.
	IsPopupOfSameKind() bool
	// Subscribe registers fn for every event of this node; the returned func
	// removes it. Cancelling from inside fn must be safe.
	Subscribe(fn func(Event)) (cancel func())
}

// Visibler is implemented by nodes that can report their own visible flag,
// independent of their ancestors.
type Visibler interface {
	Visible() bool
}

// Layered is implemented by popup bodies that know the layer they are drawn on.
type Layered interface {
	Layer() int
}

// Surface is the top-level drawing surface. Its bounds are the container
// bounds a balloon is clipped against and its Resized events trigger a
// reposition.
type Surface interface {
	Node
	AddBalloon(t *Tip, layer int)
	RemoveBalloon(t *Tip)
}

// Viewport is a scrollable clip region. VisibleRect is in shared coordinates;
// scrolling emits ViewChanged.
type Viewport interface {
	Node
	VisibleRect() geom.Rect
}

// Table exposes the cell geometry of a data grid. Cell rectangles are
// relative to the table's origin.
type Table interface {
	Node
	RowCount() int
	ColumnCount() int
	CellRect(row, col int) geom.Rect
}

// List exposes the item geometry of a list widget, relative to its origin.
type List interface {
	Node
	Len() int
	ItemRect(index int) (geom.Rect, bool)
}

// FindViewport returns the closest enclosing viewport of n, if any.
func FindViewport(n Node) (Viewport, bool) {
	for p := n.Parent(); p != nil; p = p.Parent() {
		if v, ok := p.(Viewport); ok {
			return v, true
		}
	}
	return nil, false
}

// ancestry is what one walk up the parent chain discovers.
type ancestry struct {
	surface Surface
	// tabs holds, per enclosing tab container, the direct child of it that
	// contains the anchor.
	tabs  []Node
	popup Node
}

func walk(anchor Node) ancestry {
	var a ancestry
	child := anchor
	for p := anchor.Parent(); p != nil; child, p = p, p.Parent() {
		if s, ok := p.(Surface); ok {
			a.surface = s
			return a
		}
		if p.IsTabContainer() {
			a.tabs = append(a.tabs, child)
		}
		if a.popup == nil && p.IsPopupOfSameKind() {
			a.popup = p
		}
	}
	return a
}

func ownVisible(n Node) bool {
	if v, ok := n.(Visibler); ok {
		return v.Visible()
	}
	return n.Showing()
}
