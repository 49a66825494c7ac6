/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"strconv"
	"strings"
)

// Env var names used as overrides.
const (
	EnvOrientation           = "BT_ORIENTATION"
	EnvAttachLocation        = "BT_ATTACH_LOCATION"
	EnvHorizontalOffset      = "BT_H_OFFSET"
	EnvVerticalOffset        = "BT_V_OFFSET"
	EnvOffsetCorrection      = "BT_OFFSET_CORRECTION"
	EnvOrientationCorrection = "BT_ORIENTATION_CORRECTION"
	EnvStyle                 = "BT_STYLE"
	EnvCloseButton           = "BT_CLOSE_BUTTON"
	EnvFont                  = "BT_FONT"
	EnvJournalDSN            = "BT_JOURNAL_DSN"
	EnvTelemetryOptIn        = "BT_TELEMETRY_OPT_IN"
	EnvTelemetryURL          = "BT_TELEMETRY_URL"
	EnvCrashURL              = "BT_CRASH_UPLOAD_URL"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "BT_LOG_LEVEL"
	EnvLogFormat = "BT_LOG_FORMAT"
	EnvLogSource = "BT_LOG_SOURCE"
	EnvLogFile   = "BT_LOG_FILE"
)

// envBinding ties a config key to the variable overriding it.
type envBinding struct {
	key   string
	env   string
	apply func(cfg *AppConfig, v string)
}

var envBindings = []envBinding{
	{"positioner.orientation", EnvOrientation, func(c *AppConfig, v string) { c.Positioner.Orientation = v }},
	{"positioner.attach_location", EnvAttachLocation, func(c *AppConfig, v string) { c.Positioner.AttachLocation = v }},
	{"positioner.horizontal_offset", EnvHorizontalOffset, func(c *AppConfig, v string) { setAtoi(&c.Positioner.HorizontalOffset, v) }},
	{"positioner.vertical_offset", EnvVerticalOffset, func(c *AppConfig, v string) { setAtoi(&c.Positioner.VerticalOffset, v) }},
	{"positioner.offset_correction", EnvOffsetCorrection, func(c *AppConfig, v string) { c.Positioner.OffsetCorrection = parseBool(v) }},
	{"positioner.orientation_correction", EnvOrientationCorrection, func(c *AppConfig, v string) { c.Positioner.OrientationCorrection = parseBool(v) }},
	{"style.kind", EnvStyle, func(c *AppConfig, v string) { c.Style.Kind = strings.ToLower(v) }},
	{"close_button.enabled", EnvCloseButton, func(c *AppConfig, v string) { c.CloseButton.Enabled = parseBool(v) }},
	{"contents.font", EnvFont, func(c *AppConfig, v string) { c.Contents.Font = v }},
	{"journal.dsn", EnvJournalDSN, func(c *AppConfig, v string) { c.Journal.DSN = v }},
	{"telemetry.opt_in", EnvTelemetryOptIn, func(c *AppConfig, v string) { c.Telemetry.OptIn = parseBool(v) }},
	{"telemetry.events_url", EnvTelemetryURL, func(c *AppConfig, v string) { c.Telemetry.EventsURL = v }},
	{"telemetry.crash_url", EnvCrashURL, func(c *AppConfig, v string) { c.Telemetry.CrashURL = v }},
	{"logging.level", EnvLogLevel, func(c *AppConfig, v string) { c.Logging.Level = strings.ToLower(v) }},
	{"logging.format", EnvLogFormat, func(c *AppConfig, v string) { c.Logging.Format = strings.ToLower(v) }},
	{"logging.source", EnvLogSource, func(c *AppConfig, v string) { c.Logging.Source = parseBool(v) }},
	{"logging.file", EnvLogFile, func(c *AppConfig, v string) { c.Logging.File = v }},
}

func applyEnvOverrides(cfg *AppConfig) {
	for _, b := range envBindings {
		if v := strings.TrimSpace(os.Getenv(b.env)); v != "" {
			b.apply(cfg, v)
		}
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	for _, b := range envBindings {
		if b.key == key && os.Getenv(b.env) != "" {
			return b.env, true
		}
	}
	return "", false
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func setAtoi(dst *int, v string) {
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}
