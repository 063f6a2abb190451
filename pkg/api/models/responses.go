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

package models

import "time"

type FileState struct {
	Relative  string `json:"relative"`
	Absolute  string `json:"absolute"`
	IsEnabled bool   `json:"isEnabled"`
}

type GameResponse struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Description       string      `json:"description"`
	Notes             string      `json:"notes"`
	SourcePortID      string      `json:"sourcePortId"`
	IWADID            string      `json:"iwadId"`
	Tags              []string    `json:"tags"`
	PreviousFileState []FileState `json:"previousFileState"`
	Rating            int         `json:"rating"`
	IsFolder          bool        `json:"isFolder"`
	UseCustomConfig   bool        `json:"useCustomConfig"`
}

type GamesResponse struct {
	Games []GameResponse `json:"games"`
}

type GameFile struct {
	Absolute string `json:"absolute"`
	Relative string `json:"relative"`
}

type GameFilesResponse struct {
	Files []GameFile `json:"files"`
}

type PlanResponse struct {
	Engine      string   `json:"engine"`
	SourcePort  string   `json:"sourcePortId"`
	Executable  string   `json:"executable"`
	IWAD        string   `json:"iwad"`
	CommandLine string   `json:"commandLine"`
	Args        []string `json:"args"`
}

type PlaySession struct {
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	// Duration is whole seconds, 0 for sessions with no end.
	Duration int64 `json:"duration"`
}

type PlaySessionsResponse struct {
	Sessions []PlaySession `json:"sessions"`
	Total    int64         `json:"total"`
}

type SourcePort struct {
	ID                string   `json:"id"`
	KnownSourcePortID string   `json:"knownSourcePortId"`
	Command           []string `json:"command"`
	IsDefault         bool     `json:"isDefault"`
}

type SourcePortsResponse struct {
	SourcePorts []SourcePort `json:"sourcePorts"`
}

type KnownSourcePort struct {
	ID                   string   `json:"id"`
	Name                 string   `json:"name"`
	HomePageURL          string   `json:"homePageUrl"`
	DownloadPageURL      string   `json:"downloadPageUrl"`
	SaveDirFlag          string   `json:"saveDirFlag"`
	ExampleCommand       []string `json:"exampleCommand"`
	SupportsCustomConfig bool     `json:"supportsCustomConfig"`
	SupportsSaveDir      bool     `json:"supportsSaveDir"`
}

type KnownSourcePortsResponse struct {
	SourcePorts []KnownSourcePort `json:"sourcePorts"`
}

type TagsResponse struct {
	Tags []string `json:"tags"`
}

type SettingsResponse struct {
	DataDir      string `json:"dataDir"`
	DebugLogging bool   `json:"debugLogging"`
	DedupeIWAD   bool   `json:"dedupeIwad"`
}

type AppInitResponse struct {
	DataDir        string `json:"dataDir"`
	GamesDir       string `json:"gamesDir"`
	SourcePortsDir string `json:"sourcePortsDir"`
	MetaDir        string `json:"metaDir"`
}

type VersionResponse struct {
	Version  string `json:"version"`
	Platform string `json:"platform"`
}
