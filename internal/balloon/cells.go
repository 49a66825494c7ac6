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
	"log/slog"

	"balloontip/internal/geom"
)

// TableCell points at one cell of a table. Structural changes to the table
// make the cell's identity ambiguous, so they close the tip.
type TableCell struct {
	*Custom
	table    Table
	row, col int
}

func NewTableCell(table Table, opts Options, row, col int) (*TableCell, error) {
	if table == nil {
		return nil, ErrNilAnchor
	}
	cell := table.CellRect(row, col)
	c, err := newCustom(table, opts, &cell)
	if err != nil {
		return nil, err
	}
	tc := &TableCell{Custom: c, table: table, row: row, col: col}
	c.attachHooks = append(c.attachHooks, tc.hookModel)
	c.begin()
	return tc, nil
}

func (tc *TableCell) hookModel(anchor Node) {
	tc.track(groupModel, anchor.Subscribe(tc.onModel))
}

func (tc *TableCell) onModel(e Event) {
	switch e.Kind {
	case ColumnAdded, ColumnMoved, ColumnRemoved, RowsInserted, RowsDeleted:
		tc.log.Info("table structure changed; closing", slog.String("event", e.Kind.String()),
			slog.Int("row", tc.row), slog.Int("col", tc.col))
		tc.CloseBalloon()
	case ColumnMarginChanged:
		_ = tc.SetCellPosition(tc.row, tc.col)
	}
}

// SetCellPosition moves the tip to another cell.
func (tc *TableCell) SetCellPosition(row, col int) error {
	if tc.state == StateClosed {
		return ErrClosed
	}
	tc.row, tc.col = row, col
	r := tc.table.CellRect(row, col)
	return tc.SetOffset(&r)
}

func (tc *TableCell) Row() int { return tc.row }
func (tc *TableCell) Column() int { return tc.col }

// SetAttachedComponent moves the tip to the same cell of another table.
func (tc *TableCell) SetAttachedComponent(n Node) error {
	if n == nil {
		return ErrNilAnchor
	}
	table, ok := n.(Table)
	if !ok {
		return fmt.Errorf("balloon: table cell tip needs a table anchor, got %T", n)
	}
	tc.release(groupModel)
	tc.table = table
	if err := tc.Tip.SetAttachedComponent(n); err != nil {
		return err
	}
	return tc.SetCellPosition(tc.row, tc.col)
}

// ListItem points at one item of a list and follows it while items are
// inserted or removed around it.
type ListItem struct {
	*Custom
	list  List
	index int
}

func NewListItem(list List, opts Options, index int) (*ListItem, error) {
	if list == nil {
		return nil, ErrNilAnchor
	}
	item, _ := list.ItemRect(index)
	c, err := newCustom(list, opts, &item)
	if err != nil {
		return nil, err
	}
	li := &ListItem{Custom: c, list: list, index: index}
	c.attachHooks = append(c.attachHooks, li.hookModel)
	c.begin()
	return li, nil
}

func (li *ListItem) hookModel(anchor Node) {
	li.track(groupModel, anchor.Subscribe(li.onModel))
}

func (li *ListItem) onModel(e Event) {
	n := e.Last - e.First + 1
	switch e.Kind {
	case IntervalAdded:
		if e.First <= li.index {
			_ = li.SetItemPosition(li.index + n)
		}
	case IntervalRemoved:
		switch {
		case e.Last < li.index:
			_ = li.SetItemPosition(li.index - n)
		case e.First <= li.index:
			li.log.Info("tracked list item removed; closing", slog.Int("index", li.index))
			li.CloseBalloon()
		}
	case ContentsChanged:
		_ = li.SetItemPosition(li.index)
	}
}

// SetItemPosition moves the tip to the item at index.
func (li *ListItem) SetItemPosition(index int) error {
	if li.state == StateClosed {
		return ErrClosed
	}
	li.index = index
	r, ok := li.list.ItemRect(index)
	if !ok {
		r = geom.Rect{}
	}
	return li.SetOffset(&r)
}

func (li *ListItem) Index() int { return li.index }

// SetAttachedComponent moves the tip to the same index of another list.
func (li *ListItem) SetAttachedComponent(n Node) error {
	if n == nil {
		return ErrNilAnchor
	}
	list, ok := n.(List)
	if !ok {
		return fmt.Errorf("balloon: list item tip needs a list anchor, got %T", n)
	}
	li.release(groupModel)
	li.list = list
	if err := li.Tip.SetAttachedComponent(n); err != nil {
		return err
	}
	return li.SetItemPosition(li.index)
}
