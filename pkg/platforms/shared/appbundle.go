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

// Package shared holds platform helpers used by more than one platform.
package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"howett.net/plist"
)

// ErrBundleManifest is returned when an application bundle's Info.plist
// can't be used to find its executable.
var ErrBundleManifest = errors.New("invalid application bundle manifest")

type bundleInfo struct {
	Executable string `plist:"CFBundleExecutable"`
}

// BundleManifestPath returns where a bundle at path keeps its Info.plist.
func BundleManifestPath(path string) string {
	return filepath.Join(path, "Contents", "Info.plist")
}

// ResolveAppBundle maps a macOS .app bundle path to the executable inside
// it, as named by CFBundleExecutable. Paths without a bundle manifest are
// returned unchanged. XML and binary property lists are both accepted.
func ResolveAppBundle(afs afero.Fs, path string) (string, error) {
	manifest := BundleManifestPath(path)

	data, err := afero.ReadFile(afs, manifest)
	if errors.Is(err, fs.ErrNotExist) {
		return path, nil
	} else if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", manifest, err)
	}

	var info bundleInfo
	if _, err := plist.Unmarshal(data, &info); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrBundleManifest, manifest, err)
	}
	if info.Executable == "" {
		return "", fmt.Errorf("%w: %s has no CFBundleExecutable", ErrBundleManifest, manifest)
	}
	// must stay inside Contents/MacOS
	if !filepath.IsLocal(info.Executable) {
		return "", fmt.Errorf("%w: %s: CFBundleExecutable %q points outside the bundle",
			ErrBundleManifest, manifest, info.Executable)
	}

	exe := filepath.Join(path, "Contents", "MacOS", info.Executable)
	log.Debug().Str("bundle", path).Str("executable", exe).Msg("resolved app bundle")
	return exe, nil
}
