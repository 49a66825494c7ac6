/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package balloon

import (
	"log/slog"
	"maps"
)

// Visibility criteria. Each is owned by exactly one collaborator; the tip is
// shown only while every registered criterion holds.
const (
	CriterionManual         = "manual"
	CriterionAnchorShowing  = "attachedComponentShowing"
	CriterionTabShowing     = "tabShowing"
	CriterionWithinViewport = "withinViewport"
	CriterionRefresh        = "refresh"
)

// SetCriterion sets one visibility criterion and applies the result.
func (t *Tip) SetCriterion(name string, v bool) {
	if t.state == StateClosed {
		return
	}
	if old, ok := t.criteria[name]; ok && old == v {
		return
	}
	t.criteria[name] = v
	t.update()
}

// Criteria returns a copy of the registered criteria.
func (t *Tip) Criteria() map[string]bool { return maps.Clone(t.criteria) }

// EffectiveVisible is the AND of all registered criteria. A closed tip is
// never visible.
func (t *Tip) EffectiveVisible() bool {
	if t.state == StateClosed {
		return false
	}
	for _, v := range t.criteria {
		if !v {
			return false
		}
	}
	return true
}

// SetVisible is the manual criterion. Showing re-reads the anchor, tab and
// viewport state first, so a manual request cannot reveal a tip whose anchor
// is hidden or scrolled out of view.
func (t *Tip) SetVisible(v bool) {
	if t.state == StateClosed {
		return
	}
	if v && t.state != StateUnattached {
		t.criteria[CriterionAnchorShowing] = t.anchorShowing()
		if len(t.tabs) > 0 {
			t.criteria[CriterionTabShowing] = t.tabsShowing()
		}
		if within, ok := t.withinViewport(); ok {
			t.criteria[CriterionWithinViewport] = within
		}
	}
	t.criteria[CriterionManual] = v
	t.update()
}

// update applies the aggregated criteria when they disagree with the
// current state.
func (t *Tip) update() {
	if t.state != StateHidden && t.state != StateVisible {
		return
	}
	v := t.EffectiveVisible()
	if v == (t.state == StateVisible) {
		return
	}
	if v {
		t.state = StateVisible
		t.log.Debug("shown")
		t.RefreshLocation()
		return
	}
	t.state = StateHidden
	t.log.Debug("hidden", slog.Any("criteria", t.criteria))
	t.notify()
}
