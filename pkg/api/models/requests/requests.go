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

package requests

import (
	"context"
	"encoding/json"

	"github.com/ZaparooProject/wadlauncher/pkg/api/models"
	"github.com/ZaparooProject/wadlauncher/pkg/config"
	"github.com/ZaparooProject/wadlauncher/pkg/database"
	"github.com/ZaparooProject/wadlauncher/pkg/launcher"
	"github.com/ZaparooProject/wadlauncher/pkg/platforms"
)

// RequestEnv is everything a method handler may use to serve one request.
type RequestEnv struct {
	Context       context.Context
	Platform      platforms.Platform
	Config        *config.Instance
	Catalog       database.Catalog
	Launcher      *launcher.Launcher
	Notifications chan<- models.Notification
	ID            models.RPCID
	Params        json.RawMessage
	IsLocal       bool
}
