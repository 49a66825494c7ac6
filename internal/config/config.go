/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type PositionerConfig struct {
	Orientation           string `yaml:"orientation"`     // LEFT_ABOVE | LEFT_BELOW | RIGHT_ABOVE | RIGHT_BELOW
	AttachLocation        string `yaml:"attach_location"` // aligned | center | north | ... | northwest
	HorizontalOffset      int    `yaml:"horizontal_offset"`
	VerticalOffset        int    `yaml:"vertical_offset"`
	OffsetCorrection      bool   `yaml:"offset_correction"`
	OrientationCorrection bool   `yaml:"orientation_correction"`
}

type StyleConfig struct {
	Kind      string `yaml:"kind"` // rounded | edged | minimal
	ArcWidth  int    `yaml:"arc_width"`
	ArcHeight int    `yaml:"arc_height"`
	Fill      string `yaml:"fill"`
	Border    string `yaml:"border"`
}

type IconsConfig struct {
	Default  string `yaml:"default"`
	Rollover string `yaml:"rollover"`
	Pressed  string `yaml:"pressed"`
}

type CloseButtonConfig struct {
	Enabled   bool        `yaml:"enabled"`
	Permanent bool        `yaml:"permanent"`
	Size      int         `yaml:"size"`
	Icons     IconsConfig `yaml:"icons"`
}

type ContentsConfig struct {
	Padding  int     `yaml:"padding"`
	MaxWidth int     `yaml:"max_width"`
	Font     string  `yaml:"font"`      // path to a TTF/OTF file; empty uses the built-in face
	FontSize float64 `yaml:"font_size"` // points
}

type JournalConfig struct {
	// DSN is a SQLite file path or a postgres:// URL. Empty uses the cache dir.
	DSN string `yaml:"dsn"`
}

type TelemetryConfig struct {
	OptIn     bool   `yaml:"opt_in"`
	EventsURL string `yaml:"events_url"`
	CrashURL  string `yaml:"crash_url"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int               `yaml:"config_version"`
	Positioner    PositionerConfig  `yaml:"positioner"`
	Style         StyleConfig       `yaml:"style"`
	CloseButton   CloseButtonConfig `yaml:"close_button"`
	Contents      ContentsConfig    `yaml:"contents"`
	Journal       JournalConfig     `yaml:"journal"`
	Telemetry     TelemetryConfig   `yaml:"telemetry"`
	Logging       LoggingConfig     `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Positioner: PositionerConfig{
			Orientation:           "LEFT_ABOVE",
			AttachLocation:        "aligned",
			HorizontalOffset:      16,
			VerticalOffset:        20,
			OffsetCorrection:      true,
			OrientationCorrection: true,
		},
		Style:       StyleConfig{Kind: "rounded", ArcWidth: 5, ArcHeight: 5, Fill: "#ffffff", Border: "#000000"},
		CloseButton: CloseButtonConfig{Enabled: false, Permanent: true, Size: 12},
		Contents:    ContentsConfig{Padding: 0, MaxWidth: 0, FontSize: 12},
		Logging:     LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Service/keys for OS keyring.
const (
	keyringService = "balloontip"
	keyringToken   = "telemetry_token"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "balloontip")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "balloontip")
	default: // linux and others
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "balloontip")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "balloontip")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the config file at path (ConfigPath when empty) if present,
// applies defaults and environment overrides, and loads the telemetry token
// from the keyring. The token is returned separately and never kept in the struct.
func Load(path string) (AppConfig, string, error) {
	cfg := Defaults()
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return cfg, "", err
		}
		path = p
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		// decode over the defaults so absent booleans keep their default
		fileCfg := Defaults()
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, "", fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the config YAML to path (ConfigPath when empty) and persists
// the token into the OS keyring when non-empty.
func Save(path string, cfg AppConfig, token string) error {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
	}
	return nil
}

// mergeInto copies the file values over dst. Empty strings and zero numbers
// keep the value in dst.
func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// positioner
	setStr(&dst.Positioner.Orientation, src.Positioner.Orientation)
	setStr(&dst.Positioner.AttachLocation, src.Positioner.AttachLocation)
	setInt(&dst.Positioner.HorizontalOffset, src.Positioner.HorizontalOffset)
	setInt(&dst.Positioner.VerticalOffset, src.Positioner.VerticalOffset)
	dst.Positioner.OffsetCorrection = src.Positioner.OffsetCorrection
	dst.Positioner.OrientationCorrection = src.Positioner.OrientationCorrection
	// style
	if k := strings.ToLower(strings.TrimSpace(src.Style.Kind)); k != "" {
		dst.Style.Kind = k
	}
	setInt(&dst.Style.ArcWidth, src.Style.ArcWidth)
	setInt(&dst.Style.ArcHeight, src.Style.ArcHeight)
	setStr(&dst.Style.Fill, src.Style.Fill)
	setStr(&dst.Style.Border, src.Style.Border)
	// close button
	dst.CloseButton.Enabled = src.CloseButton.Enabled
	dst.CloseButton.Permanent = src.CloseButton.Permanent
	setInt(&dst.CloseButton.Size, src.CloseButton.Size)
	setStr(&dst.CloseButton.Icons.Default, src.CloseButton.Icons.Default)
	setStr(&dst.CloseButton.Icons.Rollover, src.CloseButton.Icons.Rollover)
	setStr(&dst.CloseButton.Icons.Pressed, src.CloseButton.Icons.Pressed)
	// contents
	setInt(&dst.Contents.Padding, src.Contents.Padding)
	setInt(&dst.Contents.MaxWidth, src.Contents.MaxWidth)
	setStr(&dst.Contents.Font, src.Contents.Font)
	if src.Contents.FontSize > 0 {
		dst.Contents.FontSize = src.Contents.FontSize
	}
	setStr(&dst.Journal.DSN, src.Journal.DSN)
	// telemetry: booleans copied directly so user preferences persist
	dst.Telemetry.OptIn = src.Telemetry.OptIn
	setStr(&dst.Telemetry.EventsURL, src.Telemetry.EventsURL)
	setStr(&dst.Telemetry.CrashURL, src.Telemetry.CrashURL)
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	setStr(&dst.Logging.File, src.Logging.File)
}

func setStr(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
