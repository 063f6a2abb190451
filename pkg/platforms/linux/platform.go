//go:build linux

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

package linux

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/wadlauncher/pkg/helpers/command"
	"github.com/ZaparooProject/wadlauncher/pkg/platforms"
	"github.com/ZaparooProject/wadlauncher/pkg/platforms/shared"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Platform struct {
	fs  afero.Fs
	cmd command.Executor
}

func NewPlatform() *Platform {
	return &Platform{
		fs:  afero.NewOsFs(),
		cmd: &command.RealExecutor{},
	}
}

// NewPlatformWithDeps creates a platform with a custom file system and
// command executor. This is primarily useful for testing.
func NewPlatformWithDeps(afs afero.Fs, cmd command.Executor) *Platform {
	return &Platform{
		fs:  afs,
		cmd: cmd,
	}
}

func (*Platform) ID() string {
	return platforms.PlatformIDLinux
}

func (*Platform) Settings() platforms.Settings {
	return shared.DefaultSettings()
}

func (*Platform) ResolveExecutable(path string) (string, error) {
	return path, nil
}

// RevealPath asks the desktop's file manager to select path over D-Bus.
// Paths containing a comma can't be passed through dbus-send's array
// syntax, so those fall back to opening the containing folder.
func (p *Platform) RevealPath(ctx context.Context, path string) error {
	ctx = context.WithoutCancel(ctx)

	var err error
	if strings.Contains(path, ",") {
		dir := path
		if info, statErr := p.fs.Stat(path); statErr == nil && !info.IsDir() {
			dir = filepath.Dir(path)
		}
		log.Debug().Str("path", dir).Msg("revealing with xdg-open")
		err = p.cmd.Start(ctx, "xdg-open", dir)
	} else {
		uri := (&url.URL{Scheme: "file", Path: path}).String()
		err = p.cmd.Start(ctx, "dbus-send",
			"--session",
			"--dest=org.freedesktop.FileManager1",
			"--type=method_call",
			"/org/freedesktop/FileManager1",
			"org.freedesktop.FileManager1.ShowItems",
			"array:string:"+uri,
			"string:",
		)
	}
	if err != nil {
		return fmt.Errorf("failed to reveal %s: %w", path, err)
	}
	return nil
}
