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

// Package platforms defines the OS specific pieces the launcher needs:
// where its directories live, how a configured source port path becomes
// something executable, and how to show a file to the user.
package platforms

import (
	"context"
	"errors"
)

var ErrNotSupported = errors.New("operation not supported on this platform")

const (
	PlatformIDLinux   = "linux"
	PlatformIDMac     = "mac"
	PlatformIDWindows = "windows"
)

// Settings are simple platform specific values, mostly paths.
type Settings struct {
	// DataDir is the default library directory, used unless the config
	// file sets data_dir.
	DataDir   string
	ConfigDir string
	// TempDir holds the log file.
	TempDir string
}

type Platform interface {
	// ID is the unique ID of this platform.
	ID() string
	Settings() Settings
	// ResolveExecutable maps the first element of a source port command to
	// the path that should be executed. Platforms without indirection
	// return path unchanged.
	ResolveExecutable(path string) (string, error)
	// RevealPath shows path in the OS file manager, selecting it if it's a
	// file.
	RevealPath(ctx context.Context, path string) error
}
