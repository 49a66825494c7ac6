/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package contents

import (
	"fmt"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
)

// FontLibrary holds parsed OpenType fonts by family name.
type FontLibrary struct {
	fonts map[string]*opentype.Font
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: map[string]*opentype.Font{}} }

// LoadFile parses a TTF/OTF file and registers it under family.
func (fl *FontLibrary) LoadFile(family, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return fl.Load(family, data)
}

// Load parses font data and registers it under family.
func (fl *FontLibrary) Load(family string, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	if fl.fonts == nil {
		fl.fonts = map[string]*opentype.Font{}
	}
	fl.fonts[family] = f
	return nil
}

// OpenType resolves specs from a FontLibrary and falls back to another
// provider for unknown families or faces that fail to build.
type OpenType struct {
	Lib      *FontLibrary
	DPI      float64 // 72 if zero
	Fallback Provider
}

func (p OpenType) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePt <= 0 {
		spec.SizePt = 12
	}
	dpi := p.DPI
	if dpi <= 0 {
		dpi = 72
	}
	if p.Lib != nil {
		if f, ok := p.Lib.fonts[spec.Family]; ok {
			face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(spec.SizePt), DPI: dpi, Hinting: font.HintingFull})
			if err == nil {
				return face, metricsOf(face)
			}
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = Basic{}
	}
	return fb.Resolve(spec)
}
