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
	"fmt"
	"os"

	"github.com/ZaparooProject/wadlauncher/pkg/config"
	"github.com/ZaparooProject/wadlauncher/pkg/platforms"
)

func ConfigDir(pl platforms.Platform) string {
	return pl.Settings().ConfigDir
}

// DataDir returns the library directory: the config's data_dir if set,
// otherwise the platform default.
func DataDir(cfg *config.Instance, pl platforms.Platform) string {
	return cfg.DataDir(pl.Settings().DataDir)
}

// EnsureDirectories creates the platform's config and temp directories.
// The library directory is left to the catalog, since creating it is a
// user visible action.
func EnsureDirectories(pl platforms.Platform) error {
	for _, dir := range []string{pl.Settings().ConfigDir, pl.Settings().TempDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
