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

// Package notifications queues events broadcast to every connected API
// client.
package notifications

import (
	"github.com/ZaparooProject/wadlauncher/pkg/api/models"
	"github.com/rs/zerolog/log"
)

// send queues n without blocking. A nil channel means nobody is listening.
func send(ns chan<- models.Notification, n models.Notification) {
	if ns == nil {
		return
	}
	select {
	case ns <- n:
	default:
		log.Warn().Str("method", n.Method).Msg("notification queue full, dropping")
	}
}

func GameStarted(ns chan<- models.Notification, payload models.GameStartedParams) {
	send(ns, models.Notification{
		Method: models.NotificationGameStarted,
		Params: payload,
	})
}

func GameStopped(ns chan<- models.Notification, payload models.GameStoppedParams) {
	send(ns, models.Notification{
		Method: models.NotificationGameStopped,
		Params: payload,
	})
}

func GameUpdated(ns chan<- models.Notification, id string) {
	send(ns, models.Notification{
		Method: models.NotificationGameUpdated,
		Params: id,
	})
}

func SourcePortsChanged(ns chan<- models.Notification) {
	send(ns, models.Notification{
		Method: models.NotificationSourcePortsChanged,
	})
}

// GamesChanged tells clients the Games directory gained or lost entries and
// the game list should be fetched again.
func GamesChanged(ns chan<- models.Notification) {
	send(ns, models.Notification{
		Method: models.NotificationGamesChanged,
	})
}
