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

package shared

import (
	"os"
	"path/filepath"

	"github.com/ZaparooProject/wadlauncher/pkg/config"
	"github.com/ZaparooProject/wadlauncher/pkg/platforms"
	"github.com/adrg/xdg"
)

// DocumentsDir returns the user's documents folder, falling back to
// ~/Documents when the OS doesn't report one.
func DocumentsDir() string {
	if xdg.UserDirs.Documents != "" {
		return xdg.UserDirs.Documents
	}
	return filepath.Join(xdg.Home, "Documents")
}

// DefaultSettings are the desktop settings shared by every platform.
func DefaultSettings() platforms.Settings {
	return platforms.Settings{
		DataDir:   filepath.Join(DocumentsDir(), config.LibraryDirName),
		ConfigDir: filepath.Join(xdg.ConfigHome, config.AppName),
		TempDir:   filepath.Join(os.TempDir(), config.AppName),
	}
}
