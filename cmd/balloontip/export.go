/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"balloontip/internal/export"
	"balloontip/internal/telemetry"
)

var exportOpts struct {
	frame      int
	scale      float64
	showHidden bool
	noLabels   bool
	preset     string
	formats    []string
	outDir     string
}

var exportCmd = &cobra.Command{
	Use:   "export <scenario> [out.(png|svg|pdf)]",
	Short: "Draw a scenario's placements as PNG, SVG or PDF",
	Long: `Draw a scenario's placements.

With an output file, one frame (the last by default) is written in the format
its extension names; PDF files get one page per step. With --preset the
scenario is exported in several formats into --out-dir.

Examples:
  balloontip export tabs.yaml tabs.png --frame 0
  balloontip export tabs.yaml --preset review`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runScenario(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(args) == 2 {
			opt := export.Options{Frame: export.FrameAt(exportOpts.frame), Scale: exportOpts.scale, ShowHidden: exportOpts.showHidden, Labels: !exportOpts.noLabels}
			if err := export.ExportFile(res, args[1], opt); err != nil {
				return err
			}
			frames := 1
			if strings.EqualFold(filepath.Ext(args[1]), ".pdf") {
				frames = len(res.Frames)
			}
			telemetry.Default().Export(strings.TrimPrefix(filepath.Ext(args[1]), "."), frames)
			fmt.Fprintln(out, "wrote", args[1])
			return nil
		}
		if exportOpts.preset == "" && len(exportOpts.formats) == 0 {
			return fmt.Errorf("give an output file or --preset/--format")
		}
		bo := export.BatchOptions{
			Preset:  export.PresetName(exportOpts.preset),
			Formats: exportOpts.formats,
			Frame:   export.FrameAt(exportOpts.frame),
			Scale:   exportOpts.scale,
			OutDir:  exportOpts.outDir,
		}
		if cmd.Flags().Changed("show-hidden") {
			bo.ShowHidden = &exportOpts.showHidden
		}
		paths, err := export.BatchExport(res, bo)
		if err != nil {
			return err
		}
		for _, p := range paths {
			telemetry.Default().Export(strings.TrimPrefix(filepath.Ext(p), "."), len(res.Frames))
			fmt.Fprintln(out, "wrote", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	f := exportCmd.Flags()
	f.IntVar(&exportOpts.frame, "frame", -1, "Frame to draw for PNG/SVG; negative counts from the end")
	f.Float64Var(&exportOpts.scale, "scale", 0, "Output pixels (or points) per container pixel (default 1, or the preset's)")
	f.BoolVar(&exportOpts.showHidden, "show-hidden", false, "Outline hidden and closed balloons")
	f.BoolVar(&exportOpts.noLabels, "no-labels", false, "Do not write balloon ids")
	f.StringVar(&exportOpts.preset, "preset", "", "Batch preset: web (png+svg) or review (pdf+png)")
	f.StringSliceVar(&exportOpts.formats, "format", nil, "Batch formats, overriding the preset's")
	f.StringVar(&exportOpts.outDir, "out-dir", "", "Batch output directory (default: exports/<preset>)")
}
