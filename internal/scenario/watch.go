/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package scenario

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	applog "balloontip/internal/log"
)

// DefaultDebounce collapses the burst of events editors produce on save.
const DefaultDebounce = 150 * time.Millisecond

// Watch calls onChange with the freshly loaded document (or the load error)
// every time the file at path is written, until ctx is cancelled. The
// directory is watched rather than the file so atomic renames are seen.
func Watch(ctx context.Context, path string, debounce time.Duration, onChange func(*Document, error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}
	l := applog.WithOperation(applog.WithComponent("scenario"), "watch").With(slog.String("path", path))
	l.Info("watching scenario")

	name := filepath.Base(path)
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				fire = time.After(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.Warn("watcher error", slog.Any("err", err))
		case <-fire:
			fire = nil
			l.Debug("scenario changed")
			onChange(Load(path))
		}
	}
}
