/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package positioner

import (
	"fmt"
	"strings"
)

// Orientation says on which side of the anchor the bubble sits and from which
// end of the bubble the tip points. LEFT variants keep the tip near the bubble's
// left edge, so the bubble extends to the right of the tip.
type Orientation int

const (
	LeftAbove Orientation = iota
	RightAbove
	LeftBelow
	RightBelow
)

var orientationNames = [...]string{"LEFT_ABOVE", "RIGHT_ABOVE", "LEFT_BELOW", "RIGHT_BELOW"}

func (o Orientation) String() string {
	if o < LeftAbove || o > RightBelow {
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
	return orientationNames[o]
}

// Right reports whether the tip sits near the bubble's right edge.
func (o Orientation) Right() bool { return o == RightAbove || o == RightBelow }

// Below reports whether the bubble hangs below the anchor.
func (o Orientation) Below() bool { return o == LeftBelow || o == RightBelow }

// orientationOf maps flip flags back to the orientation they describe.
func orientationOf(right, below bool) Orientation {
	switch {
	case right && below:
		return RightBelow
	case right:
		return RightAbove
	case below:
		return LeftBelow
	default:
		return LeftAbove
	}
}

// ParseOrientation accepts LEFT_ABOVE style names, case-insensitive, with '-' or '_'.
func ParseOrientation(s string) (Orientation, error) {
	n := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for i, name := range orientationNames {
		if n == name {
			return Orientation(i), nil
		}
	}
	return LeftAbove, fmt.Errorf("unknown orientation %q", s)
}

// AttachLocation names where the tip touches the anchor. Aligned lines the
// bubble's edge up with the anchor's edge; every other value is a fixed
// fractional point of the anchor's box.
type AttachLocation int

const (
	Aligned AttachLocation = iota
	Center
	North
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

var attachNames = [...]string{"ALIGNED", "CENTER", "NORTH", "NORTHEAST", "EAST", "SOUTHEAST", "SOUTH", "SOUTHWEST", "WEST", "NORTHWEST"}

var attachFractions = [...][2]float32{
	Center:    {0.5, 0.5},
	North:     {0.5, 0},
	NorthEast: {1, 0},
	East:      {1, 0.5},
	SouthEast: {1, 1},
	South:     {0.5, 1},
	SouthWest: {0, 1},
	West:      {0, 0.5},
	NorthWest: {0, 0},
}

func (a AttachLocation) String() string {
	if a < Aligned || a > NorthWest {
		return fmt.Sprintf("AttachLocation(%d)", int(a))
	}
	return attachNames[a]
}

// Fractions returns the attach point as fractions of the anchor's width and
// height. fixed is false for Aligned.
func (a AttachLocation) Fractions() (x, y float32, fixed bool) {
	if a <= Aligned || a > NorthWest {
		return 0, 0, false
	}
	f := attachFractions[a]
	return f[0], f[1], true
}

// ParseAttachLocation accepts the names above, case-insensitive; "north_east"
// and "north-east" are accepted as well.
func ParseAttachLocation(s string) (AttachLocation, error) {
	n := strings.ToUpper(strings.NewReplacer("-", "", "_", "", " ", "").Replace(strings.TrimSpace(s)))
	for i, name := range attachNames {
		if n == name {
			return AttachLocation(i), nil
		}
	}
	return Aligned, fmt.Errorf("unknown attach location %q", s)
}
