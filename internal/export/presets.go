/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"balloontip/internal/scenario"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb    PresetName = "web"
	PresetReview PresetName = "review"
)

// BatchOptions controls batch export across several formats.
//
// Path semantics:
//   - Files are named <scenario>.<ext> inside OutDir.
//   - If OutDir is empty it defaults to exports/<preset>.
//
//nolint:revive // keep fields explicit for clarity
type BatchOptions struct {
	Preset     PresetName
	Formats    []string // allowed: pdf, png, svg; empty means preset defaults
	Frame      *int     // frame for png and svg; nil means the last
	Scale      float64  // when > 0 overrides the preset's scale
	ShowHidden *bool    // when set, overrides the preset's default
	OutDir     string
}

// BatchExport writes res in every format of the preset and returns the paths
// it wrote.
func BatchExport(res *scenario.Result, opt BatchOptions) ([]string, error) {
	if res == nil {
		return nil, fmt.Errorf("result is nil")
	}
	if len(res.Frames) == 0 {
		return nil, ErrNoFrames
	}

	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}

	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = filepath.Join("exports", string(opt.Preset))
	}
	name := fileStem(res.Name)

	o := DefaultOptions()
	o.Frame = opt.Frame
	o.Scale = presetScale(opt.Preset)
	if opt.Scale > 0 {
		o.Scale = opt.Scale
	}
	o.ShowHidden = presetShowHidden(opt.Preset)
	if opt.ShowHidden != nil {
		o.ShowHidden = *opt.ShowHidden
	}

	var written []string
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		out := filepath.Join(baseOut, name+"."+f)
		var err error
		switch f {
		case "pdf":
			err = ExportPDF(res, out, o)
		case "png":
			err = ExportPNG(res, out, o)
		case "svg":
			err = ExportSVG(res, out, o)
		default:
			return written, fmt.Errorf("unknown format: %s", f)
		}
		if err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, out)
	}
	return written, nil
}

// ExportFile picks the format from the extension of outPath.
func ExportFile(res *scenario.Result, outPath string, opt Options) error {
	switch ext := strings.ToLower(filepath.Ext(outPath)); ext {
	case ".pdf":
		return ExportPDF(res, outPath, opt)
	case ".png":
		return ExportPNG(res, outPath, opt)
	case ".svg":
		return ExportSVG(res, outPath, opt)
	default:
		return fmt.Errorf("unknown format: %q", ext)
	}
}

func fileStem(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "scenario"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '-'
		}
		return r
	}, name)
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetReview:
		return []string{"pdf", "png"}
	default:
		return []string{"pdf"}
	}
}

func presetScale(p PresetName) float64 {
	if p == PresetReview {
		return 2
	}
	return 1
}

func presetShowHidden(p PresetName) bool {
	switch p {
	case PresetWeb:
		return false
	default:
		return true
	}
}
