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

package methods

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ZaparooProject/wadlauncher/pkg/api/models"
	"github.com/ZaparooProject/wadlauncher/pkg/api/models/requests"
	"github.com/ZaparooProject/wadlauncher/pkg/api/notifications"
	"github.com/ZaparooProject/wadlauncher/pkg/api/validation"
	"github.com/ZaparooProject/wadlauncher/pkg/database"
	"github.com/ZaparooProject/wadlauncher/pkg/sourceports"
	"github.com/rs/zerolog/log"
)

var ErrSourcePortNotFound = errors.New("source port not found")

func sourcePortResponse(sp *database.SourcePort) models.SourcePort {
	return models.SourcePort{
		ID:                sp.ID,
		KnownSourcePortID: sp.Engine(),
		Command:           slices.Clone(sp.Command),
		IsDefault:         sp.IsDefault,
	}
}

//nolint:gocritic // single-use parameter in API handler
func HandleSourcePorts(env requests.RequestEnv) (any, error) {
	ports, err := env.Catalog.ListSourcePorts(env.Context)
	if err != nil {
		return nil, fmt.Errorf("error listing source ports: %w", err)
	}

	resp := models.SourcePortsResponse{
		SourcePorts: make([]models.SourcePort, 0, len(ports)),
	}
	for i := range ports {
		resp.SourcePorts = append(resp.SourcePorts, sourcePortResponse(&ports[i]))
	}
	return resp, nil
}

// HandleKnownSourcePorts lists the engines the launcher can build command
// lines for, each with an example command.
//
//nolint:gocritic // single-use parameter in API handler
func HandleKnownSourcePorts(env requests.RequestEnv) (any, error) {
	profiles := sourceports.All()
	resp := models.KnownSourcePortsResponse{
		SourcePorts: make([]models.KnownSourcePort, 0, len(profiles)),
	}
	for _, p := range profiles {
		resp.SourcePorts = append(resp.SourcePorts, models.KnownSourcePort{
			ID:                   p.ID(),
			Name:                 p.Name(),
			HomePageURL:          p.HomePageURL(),
			DownloadPageURL:      p.DownloadPageURL(),
			SaveDirFlag:          p.SaveDirFlag(),
			ExampleCommand:       sourceports.ExampleCommand(p, env.Catalog.MetaDirectory()),
			SupportsCustomConfig: p.SupportsCustomConfig(),
			SupportsSaveDir:      p.SupportsSaveDir(),
		})
	}
	return resp, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleAddSourcePort(env requests.RequestEnv) (any, error) {
	var params models.NewSourcePortParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	sp, err := env.Catalog.SaveSourcePort(env.Context, database.SourcePort{
		Command:           params.Command,
		KnownSourcePortID: params.KnownSourcePortID,
		IsDefault:         params.IsDefault,
	})
	if err != nil {
		return nil, fmt.Errorf("error adding source port: %w", err)
	}

	log.Info().Str("id", sp.ID).Msg("added source port")
	notifications.SourcePortsChanged(env.Notifications)
	return sourcePortResponse(sp), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleUpdateSourcePort(env requests.RequestEnv) (any, error) {
	var params models.UpdateSourcePortParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	sp, err := env.Catalog.FindSourcePortByID(env.Context, params.ID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrSourcePortNotFound, params.ID)
	} else if err != nil {
		return nil, fmt.Errorf("error loading source port %q: %w", params.ID, err)
	}

	if params.Command != nil {
		sp.Command = *params.Command
	}
	if params.KnownSourcePortID != nil {
		sp.KnownSourcePortID = *params.KnownSourcePortID
	}
	if params.IsDefault != nil {
		sp.IsDefault = *params.IsDefault
	}

	sp, err = env.Catalog.SaveSourcePort(env.Context, *sp)
	if err != nil {
		return nil, fmt.Errorf("error updating source port %q: %w", params.ID, err)
	}

	notifications.SourcePortsChanged(env.Notifications)
	return sourcePortResponse(sp), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleDeleteSourcePort(env requests.RequestEnv) (any, error) {
	var params models.SourcePortIDParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	err := env.Catalog.DeleteSourcePort(env.Context, params.ID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrSourcePortNotFound, params.ID)
	} else if err != nil {
		return nil, fmt.Errorf("error deleting source port %q: %w", params.ID, err)
	}

	notifications.SourcePortsChanged(env.Notifications)
	return nil, nil
}
