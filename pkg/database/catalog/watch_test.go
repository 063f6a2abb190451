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
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 50 * time.Millisecond

func newWatchedCatalog(t *testing.T) (*Catalog, *atomic.Int32, func() error) {
	t.Helper()

	c := New(afero.NewOsFs(), t.TempDir())
	require.NoError(t, c.InitDirectories())

	var calls atomic.Int32
	stop, err := c.WatchGames(context.Background(), testDebounce, func() {
		calls.Add(1)
	})
	require.NoError(t, err)
	return c, &calls, stop
}

func TestCatalog_WatchGames_ReportsNewGame(t *testing.T) {
	t.Parallel()

	c, calls, stop := newWatchedCatalog(t)
	defer func() { assert.NoError(t, stop()) }()

	require.NoError(t, os.WriteFile(filepath.Join(c.GamesDirectory(), "sigil.wad"), []byte("PWAD"), 0o600))

	assert.Eventually(t, func() bool { return calls.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestCatalog_WatchGames_DebouncesBursts(t *testing.T) {
	t.Parallel()

	c, calls, stop := newWatchedCatalog(t)
	defer func() { assert.NoError(t, stop()) }()

	dir := filepath.Join(c.GamesDirectory(), "doom2")
	require.NoError(t, os.Mkdir(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(c.GamesDirectory(), "a.wad"), nil, 0o600))
	require.NoError(t, os.Remove(filepath.Join(c.GamesDirectory(), "a.wad")))

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(4 * testDebounce)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCatalog_WatchGames_IgnoresHiddenFiles(t *testing.T) {
	t.Parallel()

	c, calls, stop := newWatchedCatalog(t)
	defer func() { assert.NoError(t, stop()) }()

	require.NoError(t, os.WriteFile(filepath.Join(c.GamesDirectory(), ".DS_Store"), nil, 0o600))

	time.Sleep(4 * testDebounce)
	assert.Zero(t, calls.Load())
}

func TestCatalog_WatchGames_MissingDirectory(t *testing.T) {
	t.Parallel()

	c := New(afero.NewOsFs(), filepath.Join(t.TempDir(), "missing"))
	_, err := c.WatchGames(context.Background(), testDebounce, func() {})
	require.Error(t, err)
}

func TestCatalog_WatchGames_StopsOnCancel(t *testing.T) {
	t.Parallel()

	c := New(afero.NewOsFs(), t.TempDir())
	require.NoError(t, c.InitDirectories())

	ctx, cancel := context.WithCancel(context.Background())
	stop, err := c.WatchGames(ctx, testDebounce, func() {})
	require.NoError(t, err)

	cancel()
	assert.NoError(t, stop())
}
