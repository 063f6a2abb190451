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

package config

type Launch struct {
	// DedupeIWAD keeps the IWAD out of the -file list when it is also one of
	// the game's enabled files.
	DedupeIWAD bool `toml:"dedupe_iwad"`
}

func (c *Instance) DedupeIWAD() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Launch.DedupeIWAD
}

func (c *Instance) SetDedupeIWAD(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Launch.DedupeIWAD = enabled
}
