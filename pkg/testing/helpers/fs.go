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

package helpers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/wadlauncher/pkg/config"
	"github.com/ZaparooProject/wadlauncher/pkg/database"
	"github.com/ZaparooProject/wadlauncher/pkg/database/catalog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// TestDataDir is the data directory of catalogs made by NewTestCatalog.
const TestDataDir = "/data"

// NewTestConfig creates a config file with default values in a temporary
// directory.
func NewTestConfig(t *testing.T) *config.Instance {
	t.Helper()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)
	return cfg
}

// FSHelper builds catalog contents on an in-memory file system.
type FSHelper struct {
	Fs      afero.Fs
	Catalog *catalog.Catalog
	t       *testing.T
}

// NewTestCatalog returns a catalog on an in-memory file system with its
// directories already created.
func NewTestCatalog(t *testing.T) *FSHelper {
	t.Helper()

	afs := afero.NewMemMapFs()
	cat := catalog.New(afs, TestDataDir)
	require.NoError(t, cat.InitDirectories())

	return &FSHelper{Fs: afs, Catalog: cat, t: t}
}

// GamePath returns the absolute path of a Games-relative, slash separated
// path.
func (h *FSHelper) GamePath(rel string) string {
	return filepath.Join(h.Catalog.GamesDirectory(), filepath.FromSlash(rel))
}

// AddGame writes files (Games-relative) to disk. The first file's top
// level entry becomes the game, and update is saved as its metadata.
func (h *FSHelper) AddGame(id string, update database.GameUpdate, files ...string) *database.Game {
	h.t.Helper()

	if len(files) == 0 {
		files = []string{id}
	}
	for _, rel := range files {
		path := h.GamePath(rel)
		require.NoError(h.t, h.Fs.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(h.t, afero.WriteFile(h.Fs, path, []byte("IWAD"), 0o600))
	}

	game, err := h.Catalog.UpdateGame(context.Background(), id, update)
	require.NoError(h.t, err)
	return game
}

// EnabledFile is a file state entry for a Games-relative path.
func (h *FSHelper) EnabledFile(rel string) database.FileState {
	return database.FileState{
		Relative:  rel,
		Absolute:  h.GamePath(rel),
		IsEnabled: true,
	}
}

func (h *FSHelper) AddSourcePort(sp database.SourcePort) *database.SourcePort {
	h.t.Helper()

	saved, err := h.Catalog.SaveSourcePort(context.Background(), sp)
	require.NoError(h.t, err)
	return saved
}
