/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo keeps per-balloon undo and redo stacks of configuration
// snapshots.
package undo

import (
	"sync"
	"time"
)

// Snapshot is one saved configuration of a balloon. Blob is opaque to the
// manager and its size is counted as len(Blob).
type Snapshot struct {
	Balloon string
	Label   string // what the edit that replaced this state did
	Blob    []byte
	TS      time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap; the oldest undo entries are pruned when exceeded.
	MaxBytes int
	// MaxPerBalloon limits the undo depth per balloon (0 means unlimited).
	MaxPerBalloon int
	// MinInterval coalesces edits to the same balloon that arrive within the
	// interval: the earlier snapshot is kept, so one undo reverts the burst.
	MinInterval time.Duration
}

// Manager holds undo/redo stacks keyed by balloon id. It is safe for
// concurrent use.
type Manager struct {
	cfg  Config
	mu   sync.Mutex
	undo map[string][]Snapshot
	redo map[string][]Snapshot

	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 4 * 1024 * 1024
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// Push records the state a balloon had before an edit and clears its redo
// stack. A push within MinInterval of the previous one is dropped, keeping the
// older state. It reports whether a new entry was added.
func (m *Manager) Push(s Snapshot) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropRedoLocked(s.Balloon)
	stack := m.undo[s.Balloon]
	if n := len(stack); n > 0 && m.cfg.MinInterval > 0 && s.TS.Sub(stack[n-1].TS) < m.cfg.MinInterval {
		stack[n-1].TS = s.TS
		return false
	}
	m.undo[s.Balloon] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(s.Balloon)
	return true
}

// Undo returns the state to restore for balloon and saves current on the redo
// stack.
func (m *Manager) Undo(balloon string, current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[balloon]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[balloon] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)

	current.Balloon, current.Label = balloon, s.Label
	m.redo[balloon] = append(m.redo[balloon], current)
	m.totalBytes += len(current.Blob)
	return s, true
}

// Redo returns the state an Undo replaced and saves current on the undo stack.
func (m *Manager) Redo(balloon string, current Snapshot) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[balloon]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[balloon] = r[:len(r)-1]
	m.totalBytes -= len(s.Blob)

	current.Balloon, current.Label = balloon, s.Label
	m.undo[balloon] = append(m.undo[balloon], current)
	m.totalBytes += len(current.Blob)
	m.enforceCapsLocked(balloon)
	return s, true
}

// CanUndo reports whether balloon has undo history; the label names the edit
// an Undo would revert.
func (m *Manager) CanUndo(balloon string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[balloon]
	if len(stack) == 0 {
		return "", false
	}
	return stack[len(stack)-1].Label, true
}

// CanRedo reports whether balloon has redo history.
func (m *Manager) CanRedo(balloon string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo[balloon]) > 0
}

// Forget clears both stacks of a balloon, e.g. once it is closed.
func (m *Manager) Forget(balloon string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[balloon] {
		m.totalBytes -= len(s.Blob)
	}
	m.dropRedoLocked(balloon)
	delete(m.undo, balloon)
	if m.totalBytes < 0 {
		m.totalBytes = 0
	}
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes int, balloons int, undoDepth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.undo {
		if len(v) > 0 {
			balloons++
		}
		undoDepth += len(v)
	}
	return m.totalBytes, balloons, undoDepth
}

func (m *Manager) dropRedoLocked(balloon string) {
	for _, s := range m.redo[balloon] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.redo, balloon)
}

func (m *Manager) enforceCapsLocked(balloon string) {
	if m.cfg.MaxPerBalloon > 0 {
		stack := m.undo[balloon]
		if len(stack) > m.cfg.MaxPerBalloon {
			toDrop := len(stack) - m.cfg.MaxPerBalloon
			for i := 0; i < toDrop; i++ {
				m.totalBytes -= len(stack[i].Blob)
			}
			m.undo[balloon] = append([]Snapshot{}, stack[toDrop:]...)
		}
	}
	// Global cap: prune the oldest undo entry across all balloons
	for m.totalBytes > m.cfg.MaxBytes {
		oldest := ""
		var oldestTS time.Time
		for id, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if oldest == "" || stack[0].TS.Before(oldestTS) {
				oldest, oldestTS = id, stack[0].TS
			}
		}
		if oldest == "" {
			break
		}
		stack := m.undo[oldest]
		m.totalBytes -= len(stack[0].Blob)
		if len(stack) == 1 {
			delete(m.undo, oldest)
		} else {
			m.undo[oldest] = stack[1:]
		}
	}
}
