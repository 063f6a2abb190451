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

// Package database holds the launcher's persisted records and the store
// interfaces the rest of the application reads and writes them through.
// The concrete implementation lives in the catalog package.
package database

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/ZaparooProject/wadlauncher/pkg/sourceports"
)

// ErrNotFound is returned by stores when a game or source port does not
// exist.
var ErrNotFound = errors.New("not found")

// UseDefaultSourcePort is the sentinel stored in Game.SourcePortID meaning
// "launch with the default source port". An empty value means the same.
const UseDefaultSourcePort = "-1"

const (
	TagIWAD = "iwad"
	TagTC   = "tc"
	TagMod  = "mod"
)

// DefaultTags are always offered as tag suggestions, even before any game
// uses them.
var DefaultTags = []string{TagIWAD, TagTC, TagMod}

/*
 * Records
 */

// FileState is one entry of a game's file selection. Order is load order
// and is preserved exactly through save and load.
type FileState struct {
	// Relative is the path relative to the Games directory, slash separated.
	Relative  string `json:"relative"`
	Absolute  string `json:"absolute"`
	IsEnabled bool   `json:"is_enabled"`
}

type Game struct {
	// ID is the entry name in the Games directory. Folder games end in "/".
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	Notes             string      `json:"notes"`
	SourcePortID      string      `json:"source_port_id"`
	IWADID            string      `json:"iwad_id"`
	Tags              []string    `json:"tags"`
	PreviousFileState []FileState `json:"previous_file_state"`
	Rating            int         `json:"rating"`
	UseCustomConfig   bool        `json:"use_custom_config"`
}

// IsFolder reports if the game is a directory in the Games directory.
func (g *Game) IsFolder() bool {
	return strings.HasSuffix(g.ID, "/")
}

// HasTag reports if the game carries tag, ignoring case.
func (g *Game) HasTag(tag string) bool {
	return slices.ContainsFunc(g.Tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}

// IsIWAD reports if the game is itself a base game data file.
func (g *Game) IsIWAD() bool {
	return g.HasTag(TagIWAD)
}

// UsesDefaultSourcePort reports if the game has no explicit source port.
func (g *Game) UsesDefaultSourcePort() bool {
	return g.SourcePortID == "" || g.SourcePortID == UseDefaultSourcePort
}

// EnabledFiles returns the enabled entries of the file selection in order.
func (g *Game) EnabledFiles() []FileState {
	files := make([]FileState, 0, len(g.PreviousFileState))
	for _, f := range g.PreviousFileState {
		if f.IsEnabled {
			files = append(files, f)
		}
	}
	return files
}

// GameFile is a file belonging to a game on disk.
type GameFile struct {
	Absolute string `json:"absolute"`
	Relative string `json:"relative"`
}

// GameUpdate lists the fields of a game to change. Nil fields are left
// as they are.
type GameUpdate struct {
	Rating            *int
	Description       *string
	Notes             *string
	Tags              *[]string
	SourcePortID      *string
	IWADID            *string
	UseCustomConfig   *bool
	PreviousFileState *[]FileState
}

// Apply copies the set fields of u onto g.
func (u GameUpdate) Apply(g *Game) {
	if u.Rating != nil {
		g.Rating = *u.Rating
	}
	if u.Description != nil {
		g.Description = *u.Description
	}
	if u.Notes != nil {
		g.Notes = *u.Notes
	}
	if u.Tags != nil {
		g.Tags = slices.Clone(*u.Tags)
	}
	if u.SourcePortID != nil {
		g.SourcePortID = *u.SourcePortID
	}
	if u.IWADID != nil {
		g.IWADID = *u.IWADID
	}
	if u.UseCustomConfig != nil {
		g.UseCustomConfig = *u.UseCustomConfig
	}
	if u.PreviousFileState != nil {
		g.PreviousFileState = slices.Clone(*u.PreviousFileState)
	}
}

type SourcePort struct {
	ID string `json:"id"`
	// Command is the executable (or .app bundle on macOS) followed by base
	// arguments passed before the generated ones.
	Command           []string `json:"command"`
	KnownSourcePortID string   `json:"known_source_port_id"`
	IsDefault         bool     `json:"is_default"`
}

// Engine returns the profile ID used to build this port's command lines.
func (sp *SourcePort) Engine() string {
	if sp.KnownSourcePortID == "" {
		return sourceports.DefaultID
	}
	return sp.KnownSourcePortID
}

// PlaySession is one launch of a game. EndedAt is nil for sessions written
// by older versions that never recorded an end.
type PlaySession struct {
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// Duration returns the session length truncated to whole seconds, or zero
// if the session has no end.
func (s PlaySession) Duration() time.Duration {
	if s.EndedAt == nil {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt).Truncate(time.Second)
}

// TotalPlayTime sums the durations of all completed sessions.
func TotalPlayTime(sessions []PlaySession) time.Duration {
	var total time.Duration
	for _, s := range sessions {
		total += s.Duration()
	}
	return total
}

/*
 * Interfaces
 */

// Store is the subset of the catalog the launcher depends on.
type Store interface {
	FindGameByID(ctx context.Context, id string) (*Game, error)
	FindSourcePortByID(ctx context.Context, id string) (*SourcePort, error)
	// ListSourcePorts returns all ports in registration order.
	ListSourcePorts(ctx context.Context) ([]SourcePort, error)
	// MetaDirectory is the root of the per-game meta directories.
	MetaDirectory() string
	AppendPlaySession(ctx context.Context, gameID string, session PlaySession) error
}

// Catalog is the full read/write surface used by the API and CLI.
type Catalog interface {
	Store
	DataDirectory() string
	GamesDirectory() string
	SourcePortsDirectory() string
	InitDirectories() error
	Games(ctx context.Context) ([]Game, error)
	GameFiles(ctx context.Context, gameID string) ([]GameFile, error)
	UpdateGame(ctx context.Context, gameID string, update GameUpdate) (*Game, error)
	PlaySessions(ctx context.Context, gameID string) ([]PlaySession, error)
	// SaveSourcePort creates or replaces a port, generating an ID if empty.
	SaveSourcePort(ctx context.Context, sp SourcePort) (*SourcePort, error)
	DeleteSourcePort(ctx context.Context, id string) error
	// Tags returns DefaultTags followed by every other tag in use.
	Tags(ctx context.Context) ([]string, error)
}
