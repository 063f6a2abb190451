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

// Package sourceports describes the Doom source ports the launcher knows how
// to drive and builds their command lines.
package sourceports

import (
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	IDGZDoom        = "gzdoom"
	IDEternity      = "eternity"
	IDChocolateDoom = "chocolate-doom"
	IDDSDA          = "dsda"
	IDWoof          = "woof"

	// DefaultID is the profile used when a source port has no known engine
	// set, or one the registry doesn't recognise.
	DefaultID = IDGZDoom
)

const (
	FlagConfig  = "-config"
	FlagSaveDir = "-savedir"
	FlagSave    = "-save"
	FlagIWAD    = "-iwad"
	FlagDeh     = "-deh"
	FlagFile    = "-file"
	FlagMerge   = "-merge"
)

// Profile is the command line convention of one family of source ports.
type Profile interface {
	// ID is the stable identifier stored on source port records.
	ID() string
	// Name is the display name.
	Name() string
	HomePageURL() string
	DownloadPageURL() string
	// SupportsCustomConfig reports if the port accepts a per-game config
	// file via -config.
	SupportsCustomConfig() bool
	// SupportsSaveDir reports if the port accepts a save directory flag.
	SupportsSaveDir() bool
	// SaveDirFlag is the flag the port takes its save directory with.
	SaveDirFlag() string
	// FileFlag returns the flag used to load a supplemental file with the
	// given extension. It must answer for any extension, including "".
	FileFlag(ext string) string
}

// isDehacked reports if ext names a DeHackEd patch. BEX is the Boom
// extension of the same format and is loaded with the same flag.
func isDehacked(ext string) bool {
	return strings.EqualFold(ext, ".deh") || strings.EqualFold(ext, ".bex")
}

// FileFlagFor is a convenience wrapper resolving the flag for a file path.
func FileFlagFor(p Profile, path string) string {
	return p.FileFlag(filepath.Ext(path))
}

type info struct {
	id       string
	name     string
	homeURL  string
	download string
}

func (i info) ID() string               { return i.id }
func (i info) Name() string             { return i.name }
func (i info) HomePageURL() string      { return i.homeURL }
func (i info) DownloadPageURL() string  { return i.download }
func (info) SupportsCustomConfig() bool { return true }
func (info) SupportsSaveDir() bool      { return true }

// GZDoom is the ZDoom family port, and the default profile.
type GZDoom struct{ info }

func (GZDoom) SaveDirFlag() string { return FlagSaveDir }

func (GZDoom) FileFlag(ext string) string {
	if isDehacked(ext) {
		return FlagDeh
	}
	return FlagFile
}

// Eternity is the Eternity Engine.
type Eternity struct{ info }

func (Eternity) SaveDirFlag() string { return FlagSave }

func (Eternity) FileFlag(ext string) string {
	if isDehacked(ext) {
		return FlagDeh
	}
	return FlagFile
}

// ChocolateDoom is Chocolate Doom. Extra WADs go through -merge, which
// emulates the NWT style merge vanilla mods were built against.
type ChocolateDoom struct{ info }

func (ChocolateDoom) SaveDirFlag() string { return FlagSaveDir }

func (ChocolateDoom) FileFlag(ext string) string {
	if isDehacked(ext) {
		return FlagDeh
	}
	return FlagMerge
}

// DSDA is DSDA-Doom.
type DSDA struct{ info }

func (DSDA) SaveDirFlag() string { return FlagSave }

func (DSDA) FileFlag(ext string) string {
	if isDehacked(ext) {
		return FlagDeh
	}
	return FlagFile
}

// Woof is Woof!.
type Woof struct{ info }

func (Woof) SaveDirFlag() string { return FlagSave }

func (Woof) FileFlag(ext string) string {
	if isDehacked(ext) {
		return FlagDeh
	}
	return FlagFile
}

var gzdoom = GZDoom{info{
	id:       IDGZDoom,
	name:     "GZDoom",
	homeURL:  "https://zdoom.org/",
	download: "https://github.com/ZDoom/gzdoom/releases",
}}

var registry = []Profile{
	gzdoom,
	Eternity{info{
		id:       IDEternity,
		name:     "Eternity Engine",
		homeURL:  "https://eternity.youfailit.net/wiki/Eternity_Engine",
		download: "https://github.com/team-eternity/eternity/releases/latest",
	}},
	ChocolateDoom{info{
		id:       IDChocolateDoom,
		name:     "Chocolate Doom",
		homeURL:  "https://www.chocolate-doom.org/",
		download: "https://www.chocolate-doom.org/wiki/index.php/Downloads",
	}},
	DSDA{info{
		id:       IDDSDA,
		name:     "DSDA",
		homeURL:  "https://github.com/kraflab/dsda-doom",
		download: "https://drive.google.com/drive/folders/1KMU1dY0HZrY5h2EyPzxxXuyH8DunAJV_?usp=sharing",
	}},
	Woof{info{
		id:       IDWoof,
		name:     "Woof",
		homeURL:  "https://github.com/fabiangreffrath/woof",
		download: "https://github.com/fabiangreffrath/woof/releases/latest",
	}},
}

// All returns every known profile in registry order.
func All() []Profile {
	out := make([]Profile, len(registry))
	copy(out, registry)
	return out
}

// Find returns the profile with the given ID. Unknown or empty IDs fall back
// to GZDoom, the most compatible of the known ports, rather than failing.
func Find(id string) Profile {
	for _, p := range registry {
		if p.ID() == id {
			return p
		}
	}
	if id != "" {
		log.Debug().Str("id", id).Msg("unknown source port profile, using gzdoom")
	}
	return gzdoom
}

// IsKnown reports if id names a profile in the registry.
func IsKnown(id string) bool {
	for _, p := range registry {
		if p.ID() == id {
			return true
		}
	}
	return false
}
