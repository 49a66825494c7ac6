/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry sends opt-in, anonymous usage counters about scenario
// runs and exports, and uploads crash reports when asked to.
//
// Nothing that identifies a user or a document leaves the process: events
// carry counts, durations and enum values only. Balloon text, node ids and
// scenario names are never sent.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	applog "balloontip/internal/log"
	"balloontip/internal/version"
)

// Environment variables read by FromEnv.
const (
	EnvOptIn     = "BT_TELEMETRY_OPT_IN"
	EnvEventsURL = "BT_TELEMETRY_URL"
	EnvCrashURL  = "BT_CRASH_UPLOAD_URL"
	EnvTimeoutMS = "BT_TELEMETRY_TIMEOUT_MS"
	EnvDebug     = "BT_TELEMETRY_DEBUG"
)

const defaultTimeout = 1500 * time.Millisecond

// Config holds runtime configuration for telemetry and crash uploads.
// Telemetry is off unless OptIn is set and a URL is configured.
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Token        string // sent as a bearer token when non-empty
	Timeout      time.Duration
	DebugLogging bool
}

// FromEnv reads the BT_TELEMETRY_* variables.
func FromEnv() Config {
	cfg := Config{
		OptIn:        parseBool(os.Getenv(EnvOptIn)),
		EventsURL:    strings.TrimSpace(os.Getenv(EnvEventsURL)),
		CrashURL:     strings.TrimSpace(os.Getenv(EnvCrashURL)),
		Timeout:      defaultTimeout,
		DebugLogging: os.Getenv(EnvDebug) != "",
	}
	if ms := strings.TrimSpace(os.Getenv(EnvTimeoutMS)); ms != "" {
		if v, err := time.ParseDuration(ms + "ms"); err == nil && v > 0 {
			cfg.Timeout = v
		}
	}
	return cfg
}

func parseBool(v string) bool {
	s := strings.ToLower(strings.TrimSpace(v))
	return s == "1" || s == "true" || s == "yes" || s == "on"
}

// Client is an async sender with a bounded queue. Events that do not fit or
// fail to send are dropped.
type Client struct {
	cfg    Config
	log    *slog.Logger
	cli    *http.Client
	q      chan map[string]any
	once   sync.Once
	closed chan struct{}
	wg     sync.WaitGroup
}

var (
	defaultMu     sync.Mutex
	defaultClient *Client
)

// Default returns the package client, creating it from the environment on
// first use.
func Default() *Client {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultClient == nil {
		defaultClient = New(FromEnv())
	}
	return defaultClient
}

// SetDefault installs c as the package client and closes the previous one.
func SetDefault(c *Client) {
	defaultMu.Lock()
	old := defaultClient
	defaultClient = c
	defaultMu.Unlock()
	if old != nil && old != c {
		old.Close()
	}
}

// New constructs a client and starts its sender.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		cfg:    cfg,
		log:    applog.WithComponent("telemetry"),
		cli:    &http.Client{Timeout: cfg.Timeout},
		q:      make(chan map[string]any, 64),
		closed: make(chan struct{}),
	}
	c.wg.Add(1)
	go c.loop()
	return c
}

// Enabled reports whether events would be sent.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Enabled reports whether the package client sends events.
func Enabled() bool { return Default().Enabled() }

// Event queues a JSON event. props must not contain personal data.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	payload := map[string]any{
		"name":    name,
		"ts":      time.Now().UTC().Format(time.RFC3339Nano),
		"version": version.String(),
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
	}
	for k, v := range props {
		if _, reserved := payload[k]; !reserved {
			payload[k] = v
		}
	}
	select {
	case c.q <- payload:
	default:
		if c.cfg.DebugLogging {
			c.log.Debug("telemetry queue full, event dropped", slog.String("event", name))
		}
	}
}

// Event queues an event on the package client.
func Event(name string, props map[string]any) { Default().Event(name, props) }

// ScenarioRun reports a replayed scenario: how many balloons and steps it
// had and how long it took.
func (c *Client) ScenarioRun(balloons, steps int, elapsed time.Duration) {
	c.Event("scenario_run", map[string]any{
		"balloons":   balloons,
		"steps":      steps,
		"elapsed_ms": elapsed.Milliseconds(),
	})
}

// Export reports a finished export by format and frame count.
func (c *Client) Export(format string, frames int) {
	c.Event("export", map[string]any{"format": strings.ToLower(format), "frames": frames})
}

// Flush waits up to 500ms, or until ctx is done, for the queue to drain.
func (c *Client) Flush(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	deadline := time.Now().Add(500 * time.Millisecond)
	for len(c.q) > 0 && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(25 * time.Millisecond):
		}
	}
}

// Close stops the sender. Queued events are discarded.
func (c *Client) Close() {
	c.once.Do(func() { close(c.closed) })
	c.wg.Wait()
}

func (c *Client) loop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.closed:
			return
		case item := <-c.q:
			buf, err := json.Marshal(item)
			if err != nil {
				continue
			}
			if err := c.post(c.cfg.EventsURL, "application/json", buf); err != nil {
				if c.cfg.DebugLogging {
					c.log.Debug("telemetry send failed", slog.Any("err", err))
				}
				continue
			}
			if c.cfg.DebugLogging {
				c.log.Debug("telemetry event sent", slog.Any("event", item["name"]))
			}
		}
	}
}

func (c *Client) post(url, contentType string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("User-Agent", "balloontip/"+version.Version)
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	resp, err := c.cli.Do(req)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}

// UploadCrash posts a serialized crash report to the crash URL if opted in.
// It runs in the background and does not report failures.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	go func(b []byte) {
		if err := c.post(c.cfg.CrashURL, "text/plain; charset=utf-8", b); err != nil {
			if c.cfg.DebugLogging {
				c.log.Debug("crash upload failed", slog.Any("err", err))
			}
			return
		}
		if c.cfg.DebugLogging {
			c.log.Debug("crash report uploaded")
		}
	}(append([]byte(nil), report...))
}

// UploadCrash uploads through the package client.
func UploadCrash(report []byte) { Default().UploadCrash(report) }
