/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package undo

import (
	"testing"
	"time"
)

func snap(id, blob string, ts time.Time) Snapshot {
	return Snapshot{Balloon: id, Label: "edit " + blob, Blob: []byte(blob), TS: ts}
}

func TestUndoRedoRestoresStates(t *testing.T) {
	m := NewManager(Config{MaxPerBalloon: 10})
	t0 := time.Now()
	// state a, edited to b, edited to c
	m.Push(snap("b1", "a", t0))
	m.Push(snap("b1", "b", t0.Add(time.Second)))

	s, ok := m.Undo("b1", snap("", "c", t0.Add(2*time.Second)))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("undo = %q %v, want b", s.Blob, ok)
	}
	s, ok = m.Undo("b1", snap("", "b", t0.Add(3*time.Second)))
	if !ok || string(s.Blob) != "a" {
		t.Fatalf("second undo = %q %v, want a", s.Blob, ok)
	}
	if _, ok := m.Undo("b1", snap("", "a", t0)); ok {
		t.Fatal("undo past the first edit")
	}

	s, ok = m.Redo("b1", snap("", "a", t0))
	if !ok || string(s.Blob) != "b" {
		t.Fatalf("redo = %q %v, want b", s.Blob, ok)
	}
	s, ok = m.Redo("b1", snap("", "b", t0))
	if !ok || string(s.Blob) != "c" {
		t.Fatalf("second redo = %q %v, want c", s.Blob, ok)
	}
	if m.CanRedo("b1") {
		t.Fatal("redo stack not empty")
	}
}

func TestPushClearsRedo(t *testing.T) {
	m := NewManager(Config{})
	t0 := time.Now()
	m.Push(snap("b1", "a", t0))
	m.Undo("b1", snap("", "b", t0))
	if !m.CanRedo("b1") {
		t.Fatal("expected redo after undo")
	}
	m.Push(snap("b1", "a", t0.Add(time.Second)))
	if m.CanRedo("b1") {
		t.Fatal("new edit kept the redo stack")
	}
}

func TestCoalesceKeepsOlderState(t *testing.T) {
	m := NewManager(Config{MinInterval: 50 * time.Millisecond})
	t0 := time.Now()
	if !m.Push(snap("b1", "1", t0)) {
		t.Fatal("first push dropped")
	}
	if m.Push(snap("b1", "2", t0.Add(10*time.Millisecond))) {
		t.Fatal("burst edit not coalesced")
	}
	if _, _, depth := m.Stats(); depth != 1 {
		t.Fatalf("depth = %d", depth)
	}
	s, ok := m.Undo("b1", snap("", "3", t0))
	if !ok || string(s.Blob) != "1" {
		t.Fatalf("undo = %q, want the state before the burst", s.Blob)
	}
}

func TestBalloonsAreIndependent(t *testing.T) {
	m := NewManager(Config{})
	t0 := time.Now()
	m.Push(snap("b1", "x", t0))
	if _, ok := m.Undo("b2", snap("", "y", t0)); ok {
		t.Fatal("undo leaked across balloons")
	}
	label, ok := m.CanUndo("b1")
	if !ok || label != "edit x" {
		t.Fatalf("CanUndo = %q %v", label, ok)
	}
}

func TestCaps(t *testing.T) {
	m := NewManager(Config{MaxBytes: 20, MaxPerBalloon: 2})
	t0 := time.Now()
	for i := 0; i < 10; i++ {
		m.Push(snap("b1", "xxxxx", t0.Add(time.Duration(i)*time.Millisecond)))
	}
	if _, _, depth := m.Stats(); depth != 2 {
		t.Fatalf("expected MaxPerBalloon cap to limit to 2, got %d", depth)
	}
}

func TestGlobalPruneAcrossBalloons(t *testing.T) {
	m := NewManager(Config{MaxBytes: 8})
	t0 := time.Now()
	m.Push(snap("old", "xxxx", t0))
	m.Push(snap("new", "yyyy", t0.Add(time.Second)))
	m.Push(snap("new", "zzzz", t0.Add(2*time.Second)))

	if _, ok := m.CanUndo("old"); ok {
		t.Fatal("expected the oldest balloon history to be pruned")
	}
	if tb, balloons, depth := m.Stats(); tb != 8 || balloons != 1 || depth != 2 {
		t.Fatalf("stats = %d %d %d", tb, balloons, depth)
	}
}

func TestForget(t *testing.T) {
	m := NewManager(Config{})
	t0 := time.Now()
	m.Push(snap("b1", "abc", t0))
	m.Push(snap("b1", "def", t0.Add(time.Second)))
	m.Undo("b1", snap("", "ghi", t0))
	m.Forget("b1")
	if tb, balloons, depth := m.Stats(); tb != 0 || balloons != 0 || depth != 0 {
		t.Fatalf("stats after forget = %d %d %d", tb, balloons, depth)
	}
	if m.CanRedo("b1") {
		t.Fatal("redo survived forget")
	}
}
