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

package sourceports

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
)

const (
	ConfigFileName = "config.ini"
	SavesDirName   = "saves"
)

// Request is everything needed to build the command line for a single
// launch of a game.
type Request struct {
	// Executable is the resolved path of the source port binary.
	Executable string
	// IWAD is the absolute path of the base game data file.
	IWAD string
	// MetaDir is the root directory holding per-game meta directories.
	MetaDir string
	// GameID is the catalog ID of the game being launched.
	GameID string
	// Files are the enabled supplemental files, in load order.
	Files []string
	// UseCustomConfig loads a per-game config instead of the port's global
	// one.
	UseCustomConfig bool
}

// NormalizeGameID returns the form of a game ID used for its meta directory.
// Folder games carry a trailing slash in their ID which is dropped, and the
// name is NFC normalized so IDs read back from macOS file systems (which
// return decomposed names) match IDs typed or stored elsewhere.
func NormalizeGameID(id string) string {
	return norm.NFC.String(strings.TrimRight(id, "/"))
}

// GameMetaDir returns the meta directory for a game under metaDir.
func GameMetaDir(metaDir, gameID string) string {
	return filepath.Join(metaDir, NormalizeGameID(gameID))
}

// ConfigPath returns the per-game config file path.
func ConfigPath(metaDir, gameID string) string {
	return filepath.Join(GameMetaDir(metaDir, gameID), ConfigFileName)
}

// SaveDir returns the per-game save directory path.
func SaveDir(metaDir, gameID string) string {
	return filepath.Join(GameMetaDir(metaDir, gameID), SavesDirName)
}

// BuildCommand returns the argument vector to launch req with profile p. The
// first element is always req.Executable. Argument order is fixed: config,
// save directory, IWAD, then files in request order. Some ports parse these
// positionally so it must not change.
func BuildCommand(p Profile, req Request) []string {
	// exe + config pair + save pair + iwad pair + a pair per file
	command := make([]string, 0, 7+2*len(req.Files))
	command = append(command, req.Executable)

	if req.UseCustomConfig && p.SupportsCustomConfig() {
		command = append(command, FlagConfig, ConfigPath(req.MetaDir, req.GameID))
	}

	if p.SupportsSaveDir() {
		command = append(command, p.SaveDirFlag(), SaveDir(req.MetaDir, req.GameID))
	}

	command = append(command, FlagIWAD, req.IWAD)

	for _, file := range req.Files {
		command = append(command, FileFlagFor(p, file), file)
	}

	return command
}

// ExampleCommand builds a representative command line for p, shown to users
// picking which kind of port they are adding.
func ExampleCommand(p Profile, metaDir string) []string {
	return BuildCommand(p, Request{
		Executable:      p.ID(),
		IWAD:            "doom2.iwad",
		Files:           []string{"example.wad"},
		UseCustomConfig: true,
		GameID:          "doom2",
		MetaDir:         metaDir,
	})
}
