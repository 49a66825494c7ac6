/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"balloontip/internal/journal"
	"balloontip/internal/scenario"
	"balloontip/internal/telemetry"
)

var runOpts struct {
	journal   string
	noJournal bool
	quiet     bool
}

var placeCmd = &cobra.Command{
	Use:   "place <scenario>",
	Short: "Print where every balloon ends up after all steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := runScenario(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printPlacements(cmd.OutOrStdout(), res.Final())
	},
}

var runCmd = &cobra.Command{
	Use:   "run <scenario>",
	Short: "Replay a scenario step by step and record it in the journal",
	Long: `Replay a scenario and print every balloon's placement after each step.

The run is stored in the journal (SQLite by default, or PostgreSQL when the
DSN starts with postgres://) unless --no-journal is given.

Examples:
  balloontip run testdata/tabs.yaml
  balloontip run tabs.yaml --journal postgres://user@localhost/balloons`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

var watchCmd = &cobra.Command{
	Use:   "watch <scenario>",
	Short: "Re-run a scenario every time its file changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		path := args[0]
		out := cmd.OutOrStdout()
		show := func(doc *scenario.Document, err error) {
			if err == nil {
				var res *scenario.Result
				if res, err = scenario.Run(ctx, doc, defaults); err == nil {
					fmt.Fprintf(out, "== %s (%s) ==\n", doc.Name, time.Now().Format(time.TimeOnly))
					err = printPlacements(out, res.Final())
				}
			}
			if err != nil {
				fmt.Fprintln(out, "error:", err)
			}
		}
		show(scenario.Load(path))
		return scenario.Watch(ctx, path, scenario.DefaultDebounce, show)
	},
}

func init() {
	rootCmd.AddCommand(placeCmd, runCmd, watchCmd)
	runCmd.Flags().StringVar(&runOpts.journal, "journal", "",
		"Journal DSN: a SQLite path or postgres:// URL (default: config journal.dsn, then the cache dir)")
	runCmd.Flags().BoolVar(&runOpts.noJournal, "no-journal", false,
		"Do not record the run")
	runCmd.Flags().BoolVarP(&runOpts.quiet, "quiet", "q", false,
		"Only print the run id")
}

func runScenario(ctx context.Context, path string) (*scenario.Result, error) {
	doc, err := scenario.Load(path)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := scenario.Run(ctx, doc, defaults)
	if err != nil {
		return nil, err
	}
	telemetry.Default().ScenarioRun(len(doc.Balloons), len(doc.Steps), res.Elapsed)
	return res, nil
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := runScenario(ctx, args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !runOpts.quiet {
		for _, f := range res.Frames {
			fmt.Fprintf(out, "step %d: %s\n", f.Step, f.Action)
			if err := printPlacements(out, f.Placements); err != nil {
				return err
			}
		}
	}
	if runOpts.noJournal {
		return nil
	}

	dsn := runOpts.journal
	if dsn == "" {
		dsn = cfg.Journal.DSN
	}
	j, err := journal.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer j.Close()
	run, err := j.Record(ctx, res, args[0])
	if err != nil {
		return err
	}
	logger.Info("run recorded", slog.String("run", run.ID), slog.String("driver", j.Driver()))
	if runOpts.quiet {
		fmt.Fprintln(out, run.ID)
	} else {
		fmt.Fprintf(out, "recorded run %s (%d steps, %d balloons)\n", run.ID, run.Steps, run.Balloons)
	}
	return nil
}

// printPlacements writes one aligned row per balloon.
func printPlacements(w io.Writer, ps []scenario.Placement) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BALLOON\tSTATE\tBOUNDS\tORIENTATION\tFLIP\tOFFSET\tTIP")
	for _, p := range ps {
		fmt.Fprintf(tw, "%s\t%s\t%v\t%s\t%s\t%d\t%d,%d\n",
			p.Balloon, p.State, p.Bounds, p.Orientation, flips(p), p.HorizontalOffset, p.Tip.X, p.Tip.Y)
	}
	return tw.Flush()
}

func flips(p scenario.Placement) string {
	switch {
	case p.FlipX && p.FlipY:
		return "xy"
	case p.FlipX:
		return "x"
	case p.FlipY:
		return "y"
	}
	return "-"
}
