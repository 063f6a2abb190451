// Zaparoo WAD Launcher
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo WAD Launcher.
//
// Zaparoo WAD Launcher is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo WAD Launcher is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo WAD Launcher.  If not, see <http://www.gnu.org/licenses/>.

package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// WatchDebounce is how long the Games directory must be quiet before a
// change is reported. Copying a folder game in fires many events.
const WatchDebounce = 500 * time.Millisecond

const watchOps = fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// WatchGames calls onChange when top level entries of the Games directory
// are created, removed or renamed. Bursts of events within debounce are
// reported once. Hidden entries are ignored. The watch uses the real file
// system and stops when ctx is done or the returned stop func is called.
func (c *Catalog) WatchGames(
	ctx context.Context,
	debounce time.Duration,
	onChange func(),
) (stop func() error, err error) {
	dir := c.GamesDirectory()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	log.Info().Str("dir", dir).Msg("watching games directory")

	done := make(chan struct{})
	go func() {
		defer close(done)

		var timer *time.Timer
		var fire <-chan time.Time
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&watchOps == 0 || strings.HasPrefix(filepath.Base(event.Name), ".") {
					continue
				}
				log.Debug().Str("path", event.Name).Stringer("op", event.Op).Msg("games directory changed")
				if timer == nil {
					timer = time.NewTimer(debounce)
				} else {
					timer.Reset(debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				onChange()
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error().Err(watchErr).Msg("error in games directory watcher")
			}
		}
	}()

	return func() error {
		closeErr := watcher.Close()
		<-done
		if closeErr != nil {
			return fmt.Errorf("failed to close file watcher: %w", closeErr)
		}
		return nil
	}, nil
}
