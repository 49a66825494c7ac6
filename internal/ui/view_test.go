/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"fmt"
	"slices"
	"testing"

	"balloontip/internal/geom"
	"balloontip/internal/playground"
	"balloontip/internal/scenario"
)

func TestViewportMapping(t *testing.T) {
	v := viewport{extent: geom.R(-10, -10, 120, 100), zoom: 2}
	if w, h := v.size(); w != 240 || h != 200 {
		t.Fatalf("size = %vx%v", w, h)
	}
	if p := v.toContainer(0, 0); p != geom.Pt(-10, -10) {
		t.Fatalf("origin = %v", p)
	}
	if p := v.toContainer(41, 21); p != geom.Pt(10, 0) {
		t.Fatalf("mapped = %v", p)
	}
	if p := (viewport{extent: geom.R(5, 5, 10, 10)}).toContainer(3, 4); p != geom.Pt(8, 9) {
		t.Fatalf("zero zoom = %v", p)
	}
	if clampZoom(10) != maxZoom || clampZoom(0) != minZoom || clampZoom(1.5) != 1.5 {
		t.Fatal("clampZoom")
	}
}

func TestHitBalloonPrefersTopLayer(t *testing.T) {
	ps := []scenario.Placement{
		{Balloon: "low", Visible: true, Bounds: geom.R(0, 0, 50, 50), Layer: 2},
		{Balloon: "high", Visible: true, Bounds: geom.R(10, 10, 50, 50), Layer: 5},
		{Balloon: "later", Visible: true, Bounds: geom.R(20, 20, 50, 50), Layer: 2},
		{Balloon: "hidden", Bounds: geom.R(0, 0, 100, 100), Layer: 9},
	}
	cases := map[geom.Point]string{
		geom.Pt(5, 5):   "low",
		geom.Pt(25, 25): "high",
		geom.Pt(65, 65): "later",
	}
	for pt, want := range cases {
		if got, ok := hitBalloon(ps, pt); !ok || got != want {
			t.Fatalf("hit %v = %q %v, want %q", pt, got, ok, want)
		}
	}
	if _, ok := hitBalloon(ps, geom.Pt(90, 5)); ok {
		t.Fatal("hit on empty space")
	}
}

func TestDragAccumulatorKeepsRemainder(t *testing.T) {
	var d dragAccumulator
	total := 0
	for i := 0; i < 4; i++ {
		dx, dy := d.add(1, -1, 2)
		total += dx
		if dy > 0 {
			t.Fatalf("dy = %d", dy)
		}
	}
	if total != 2 {
		t.Fatalf("moved %d, want 2", total)
	}
}

func TestPushRecent(t *testing.T) {
	var items []string
	for i := 0; i < 12; i++ {
		items = pushRecent(items, fmt.Sprintf("/s/%d.yaml", i))
	}
	if len(items) != recentMax || items[0] != "/s/11.yaml" {
		t.Fatalf("items = %v", items)
	}
	items = pushRecent(items, "/S/5.YAML")
	if items[0] != "/S/5.YAML" || slices.Contains(items[1:], "/s/5.yaml") {
		t.Fatalf("duplicate kept: %v", items)
	}
	if got := pushRecent(items, "  "); len(got) != len(items) {
		t.Fatal("blank path added")
	}
}

func TestDemoDocumentOpens(t *testing.T) {
	doc, err := demoDocument()
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	s, err := playground.New(doc, scenario.StockDefaults())
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	defer s.Close()
	if s.Selected() != "required" {
		t.Fatalf("selected = %q", s.Selected())
	}
	for _, p := range s.Snapshot().Final() {
		if !p.Visible {
			t.Fatalf("balloon %s not visible: %+v", p.Balloon, p)
		}
	}
}
