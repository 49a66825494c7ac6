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
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"balloontip/internal/config"
	applog "balloontip/internal/log"
	"balloontip/internal/scenario"
	"balloontip/internal/telemetry"
	"balloontip/internal/version"
)

// Global configuration and state, set up before every command.
var (
	cfg        config.AppConfig
	defaults   scenario.Defaults
	globalOpts struct {
		verbose    bool
		configPath string
	}
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "balloontip",
	Short: "Replay, record and export balloon tip placements",
	Long: `balloontip builds a component tree from a scenario file, attaches
balloon tips to it and replays a list of mutations, reporting where every
balloon ends up after each step.

Scenarios are YAML (or JSON) documents checked against an embedded schema.`,
	Version:       version.String(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		telemetry.Default().Flush(ctx)
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: per-user config dir, balloontip/config.yaml)")
	rootCmd.SetVersionTemplate("balloontip {{.Version}}\n")
}

// setup loads the configuration, then initializes logging, telemetry and the
// balloon defaults from it.
func setup() error {
	c, token, err := config.Load(globalOpts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	opts := applog.Options{Level: c.Logging.Level, Format: c.Logging.Format, AddSource: c.Logging.Source, File: c.Logging.File}
	if globalOpts.verbose {
		opts.Level = "debug"
	}
	applog.Init(opts)
	logger = applog.WithComponent("cli")

	d, err := c.ScenarioDefaults()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	cfg, defaults = c, d

	tc := telemetry.FromEnv()
	tc.OptIn = c.Telemetry.OptIn
	tc.EventsURL = c.Telemetry.EventsURL
	tc.CrashURL = c.Telemetry.CrashURL
	tc.Token = token
	telemetry.SetDefault(telemetry.New(tc))
	logger.Debug("configured", slog.Bool("telemetry", tc.OptIn), slog.String("journal", c.Journal.DSN))
	return nil
}
