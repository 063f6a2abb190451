//go:build darwin

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

package mac

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/wadlauncher/pkg/helpers/command"
	"github.com/ZaparooProject/wadlauncher/pkg/platforms"
	"github.com/ZaparooProject/wadlauncher/pkg/platforms/shared"
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
	return platforms.PlatformIDMac
}

func (*Platform) Settings() platforms.Settings {
	return shared.DefaultSettings()
}

// ResolveExecutable follows .app bundles to the binary inside them.
func (p *Platform) ResolveExecutable(path string) (string, error) {
	exe, err := shared.ResolveAppBundle(p.fs, path)
	if err != nil {
		return "", fmt.Errorf("resolve executable: %w", err)
	}
	return exe, nil
}

func (p *Platform) RevealPath(ctx context.Context, path string) error {
	err := p.cmd.Start(context.WithoutCancel(ctx), "open", "-R", path)
	if err != nil {
		return fmt.Errorf("failed to reveal %s: %w", path, err)
	}
	return nil
}
