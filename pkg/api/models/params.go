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

type GameIDParams struct {
	ID string `json:"id" validate:"required,gameid"`
}

type RevealParams struct {
	// ID is optional, without it the Games directory is revealed.
	ID string `json:"id" validate:"omitempty,gameid"`
}

type FileStateParams struct {
	Relative  string `json:"relative" validate:"required"`
	Absolute  string `json:"absolute" validate:"required"`
	IsEnabled bool   `json:"isEnabled"`
}

type UpdateGameParams struct {
	Description       *string            `json:"description"`
	Notes             *string            `json:"notes"`
	SourcePortID      *string            `json:"sourcePortId"`
	IWADID            *string            `json:"iwadId"`
	Tags              *[]string          `json:"tags" validate:"omitempty,dive,required"`
	PreviousFileState *[]FileStateParams `json:"previousFileState" validate:"omitempty,dive"`
	Rating            *int               `json:"rating" validate:"omitempty,min=0,max=5"`
	UseCustomConfig   *bool              `json:"useCustomConfig"`
	ID                string             `json:"id" validate:"required,gameid"`
}

type NewSourcePortParams struct {
	KnownSourcePortID string   `json:"knownSourcePortId" validate:"omitempty,engine"`
	Command           []string `json:"command" validate:"required,min=1,dive,required"`
	IsDefault         bool     `json:"isDefault"`
}

type UpdateSourcePortParams struct {
	KnownSourcePortID *string   `json:"knownSourcePortId" validate:"omitempty,engine"`
	Command           *[]string `json:"command" validate:"omitempty,min=1,dive,required"`
	IsDefault         *bool     `json:"isDefault"`
	ID                string    `json:"id" validate:"required"`
}

type SourcePortIDParams struct {
	ID string `json:"id" validate:"required"`
}

type UpdateSettingsParams struct {
	DebugLogging *bool   `json:"debugLogging"`
	DedupeIWAD   *bool   `json:"dedupeIwad"`
	DataDir      *string `json:"dataDir" validate:"omitempty,min=1"`
}

type GameStartedParams struct {
	ID string `json:"id"`
}

type GameStoppedParams struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
}
