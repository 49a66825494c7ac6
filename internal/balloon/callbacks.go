/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package balloon

import (
	"slices"

	"balloontip/internal/geom"
)

// callbacks is an ordered set of handlers that can be removed by handle.
type callbacks struct {
	next int
	fns  []callback
}

type callback struct {
	id int
	fn func()
}

func (c *callbacks) add(fn func()) (cancel func()) {
	c.next++
	id := c.next
	c.fns = append(c.fns, callback{id: id, fn: fn})
	return func() { c.remove(id) }
}

func (c *callbacks) remove(id int) {
	c.fns = slices.DeleteFunc(c.fns, func(cb callback) bool { return cb.id == id })
}

// run calls every handler registered at the time of the call; handlers may
// add or remove handlers while running.
func (c *callbacks) run() {
	for _, cb := range slices.Clone(c.fns) {
		cb.fn()
	}
}

func (c *callbacks) len() int { return len(c.fns) }

// CloseButton is a pressable control laid out at the bubble's top right.
type CloseButton interface {
	Size() geom.Size
	OnPress(fn func()) (cancel func())
}

// ButtonIcons names the images a toolkit should use for the close button.
// They replace what used to be process-wide defaults and come from config.
type ButtonIcons struct {
	Default  string
	Rollover string
	Pressed  string
}

// Button is the toolkit-neutral close button. Adapters call Press when the
// rendered control is activated.
type Button struct {
	size     geom.Size
	Icons    ButtonIcons
	handlers callbacks
}

func NewButton(size geom.Size, icons ButtonIcons) *Button {
	return &Button{size: size, Icons: icons}
}

func (b *Button) Size() geom.Size { return b.size }

func (b *Button) OnPress(fn func()) (cancel func()) { return b.handlers.add(fn) }

// Press activates the button.
func (b *Button) Press() { b.handlers.run() }

// Listeners reports how many press handlers are registered.
func (b *Button) Listeners() int { return b.handlers.len() }
