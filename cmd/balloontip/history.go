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
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"balloontip/internal/journal"
	"balloontip/internal/scenario"
)

var historyOpts struct {
	journal string
	limit   int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(cmd, func(ctx context.Context, j *journal.Journal) error {
			runs, err := j.Runs(ctx, historyOpts.limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSTARTED\tSTEPS\tBALLOONS\tTOOK")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
					r.ID, r.Name, humanize.Time(r.StartedAt), r.Steps, r.Balloons, r.Elapsed.Round(time.Microsecond))
			}
			return tw.Flush()
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print every placement of a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(cmd, func(ctx context.Context, j *journal.Journal) error {
			run, err := j.Run(ctx, args[0])
			if err != nil {
				return err
			}
			entries, err := j.Placements(ctx, run.ID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s  %s  %s (%s)\n", run.ID, run.Name, run.StartedAt.Format(time.RFC3339), humanize.Time(run.StartedAt))
			if run.Source != "" {
				fmt.Fprintln(out, "source:", run.Source)
			}
			for i := 0; i < len(entries); {
				step := entries[i].Step
				fmt.Fprintf(out, "step %d: %s\n", step, entries[i].Action)
				var rows []journal.Entry
				for ; i < len(entries) && entries[i].Step == step; i++ {
					rows = append(rows, entries[i])
				}
				if err := printEntries(out, rows); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Remove a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withJournal(cmd, func(ctx context.Context, j *journal.Journal) error {
			if err := j.Delete(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd, historyDeleteCmd)
	historyCmd.PersistentFlags().StringVar(&historyOpts.journal, "journal", "",
		"Journal DSN (default: config journal.dsn, then the cache dir)")
	historyCmd.Flags().IntVarP(&historyOpts.limit, "limit", "n", 20,
		"Show at most this many runs (0=all)")
}

func withJournal(cmd *cobra.Command, fn func(context.Context, *journal.Journal) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	dsn := historyOpts.journal
	if dsn == "" {
		dsn = cfg.Journal.DSN
	}
	j, err := journal.Open(ctx, dsn)
	if err != nil {
		return err
	}
	defer j.Close()
	return fn(ctx, j)
}

func printEntries(w io.Writer, entries []journal.Entry) error {
	ps := make([]scenario.Placement, len(entries))
	for i, e := range entries {
		ps[i] = e.Placement
	}
	return printPlacements(w, ps)
}
