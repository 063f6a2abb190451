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
	"fmt"

	"github.com/ZaparooProject/wadlauncher/pkg/api/models"
	"github.com/ZaparooProject/wadlauncher/pkg/api/models/requests"
	"github.com/ZaparooProject/wadlauncher/pkg/api/validation"
	"github.com/ZaparooProject/wadlauncher/pkg/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HandleAppInit creates the data directory layout if it's missing.
//
//nolint:gocritic // single-use parameter in API handler
func HandleAppInit(env requests.RequestEnv) (any, error) {
	if err := env.Catalog.InitDirectories(); err != nil {
		return nil, fmt.Errorf("error initializing data directory: %w", err)
	}

	return models.AppInitResponse{
		DataDir:        env.Catalog.DataDirectory(),
		GamesDir:       env.Catalog.GamesDirectory(),
		SourcePortsDir: env.Catalog.SourcePortsDirectory(),
		MetaDir:        env.Catalog.MetaDirectory(),
	}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleTags(env requests.RequestEnv) (any, error) {
	tags, err := env.Catalog.Tags(env.Context)
	if err != nil {
		return nil, fmt.Errorf("error listing tags: %w", err)
	}
	return models.TagsResponse{Tags: tags}, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleSettings(env requests.RequestEnv) (any, error) {
	return models.SettingsResponse{
		DataDir:      env.Catalog.DataDirectory(),
		DebugLogging: env.Config.DebugLogging(),
		DedupeIWAD:   env.Config.DedupeIWAD(),
	}, nil
}

// HandleSettingsUpdate changes and saves settings. A new data directory
// only takes effect after a restart.
//
//nolint:gocritic // single-use parameter in API handler
func HandleSettingsUpdate(env requests.RequestEnv) (any, error) {
	var params models.UpdateSettingsParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	if params.DebugLogging != nil {
		env.Config.SetDebugLogging(*params.DebugLogging)
		if *params.DebugLogging {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	}
	if params.DedupeIWAD != nil {
		env.Config.SetDedupeIWAD(*params.DedupeIWAD)
	}
	if params.DataDir != nil {
		env.Config.SetDataDir(*params.DataDir)
		log.Info().Str("dir", *params.DataDir).Msg("data directory changed, restart to apply")
	}

	if err := env.Config.Save(); err != nil {
		return nil, fmt.Errorf("error saving settings: %w", err)
	}
	return nil, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleVersion(env requests.RequestEnv) (any, error) {
	return models.VersionResponse{
		Version:  config.AppVersion,
		Platform: env.Platform.ID(),
	}, nil
}
