/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"github.com/spf13/cobra"

	"balloontip/internal/ui"
)

var uiCmd = &cobra.Command{
	Use:   "ui [scenario]",
	Short: "Open the balloon playground (build with -tags fyne)",
	Long: `Open a window showing the scenario's balloons. Select a balloon to edit
its text, orientation, attach location, offsets and style; drag its anchor to
watch it follow. Without a scenario a small demo is opened.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		return ui.Run(path, defaults)
	},
}

func init() { rootCmd.AddCommand(uiCmd) }
