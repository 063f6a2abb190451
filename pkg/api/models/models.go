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

import (
	"encoding/json"
)

const (
	NotificationGameStarted        = "games.started"
	NotificationGameStopped        = "games.stopped"
	NotificationGameUpdated        = "games.updated"
	NotificationGamesChanged       = "games.changed"
	NotificationSourcePortsChanged = "sourcePorts.changed"
)

const (
	MethodAppInit           = "app.init"
	MethodGames             = "games"
	MethodGame              = "games.get"
	MethodGameFiles         = "games.files"
	MethodGameUpdate        = "games.update"
	MethodGameStart         = "games.start"
	MethodGamePlan          = "games.plan"
	MethodGameReveal        = "games.reveal"
	MethodPlaySessions      = "games.sessions"
	MethodSourcePorts       = "sourceports"
	MethodSourcePortsKnown  = "sourceports.known"
	MethodSourcePortsNew    = "sourceports.new"
	MethodSourcePortsUpdate = "sourceports.update"
	MethodSourcePortsDelete = "sourceports.delete"
	MethodTags              = "tags"
	MethodSettings          = "settings"
	MethodSettingsUpdate    = "settings.update"
	MethodVersion           = "version"
)

type Notification struct {
	Method string
	Params any
}

type RequestObject struct {
	ID      *RPCID          `json:"id,omitempty"`
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type ErrorObject struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

type ResponseObject struct {
	Result  any          `json:"result"`
	Error   *ErrorObject `json:"error,omitempty"`
	JSONRPC string       `json:"jsonrpc"`
	ID      RPCID        `json:"id"`
}

// ResponseErrorObject exists for sending errors, so we can omit result from
// the response, but so nil responses are still returned when using the main
// ResponseObject.
type ResponseErrorObject struct {
	Error   *ErrorObject `json:"error"`
	JSONRPC string       `json:"jsonrpc"`
	ID      RPCID        `json:"id"`
}
