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
	"path/filepath"

	"github.com/ZaparooProject/wadlauncher/internal/telemetry"
	"github.com/ZaparooProject/wadlauncher/pkg/api/models"
	"github.com/ZaparooProject/wadlauncher/pkg/api/models/requests"
	"github.com/ZaparooProject/wadlauncher/pkg/api/notifications"
	"github.com/ZaparooProject/wadlauncher/pkg/api/validation"
	"github.com/ZaparooProject/wadlauncher/pkg/database"
	"github.com/ZaparooProject/wadlauncher/pkg/launcher"
	"github.com/rs/zerolog/log"
)

var ErrGameNotFound = errors.New("game not found")

func gameResponse(g *database.Game) models.GameResponse {
	files := make([]models.FileState, 0, len(g.PreviousFileState))
	for _, f := range g.PreviousFileState {
		files = append(files, models.FileState{
			Relative:  f.Relative,
			Absolute:  f.Absolute,
			IsEnabled: f.IsEnabled,
		})
	}

	tags := g.Tags
	if tags == nil {
		tags = []string{}
	}

	return models.GameResponse{
		ID:                g.ID,
		Name:              g.Name,
		Description:       g.Description,
		Notes:             g.Notes,
		SourcePortID:      g.SourcePortID,
		IWADID:            g.IWADID,
		Tags:              tags,
		PreviousFileState: files,
		Rating:            g.Rating,
		IsFolder:          g.IsFolder(),
		UseCustomConfig:   g.UseCustomConfig,
	}
}

// findGame loads a game, turning a missing game into an error that names
// the ID the client asked for.
func findGame(env *requests.RequestEnv, id string) (*database.Game, error) {
	game, err := env.Catalog.FindGameByID(env.Context, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrGameNotFound, id)
	} else if err != nil {
		return nil, fmt.Errorf("error loading game %q: %w", id, err)
	}
	return game, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGames(env requests.RequestEnv) (any, error) {
	log.Info().Msg("received games request")

	games, err := env.Catalog.Games(env.Context)
	if err != nil {
		return nil, fmt.Errorf("error listing games: %w", err)
	}

	resp := models.GamesResponse{
		Games: make([]models.GameResponse, 0, len(games)),
	}
	for i := range games {
		resp.Games = append(resp.Games, gameResponse(&games[i]))
	}
	return resp, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGame(env requests.RequestEnv) (any, error) {
	var params models.GameIDParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	game, err := findGame(&env, params.ID)
	if err != nil {
		return nil, err
	}
	return gameResponse(game), nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGameFiles(env requests.RequestEnv) (any, error) {
	var params models.GameIDParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	files, err := env.Catalog.GameFiles(env.Context, params.ID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrGameNotFound, params.ID)
	} else if err != nil {
		return nil, fmt.Errorf("error listing files of game %q: %w", params.ID, err)
	}

	resp := models.GameFilesResponse{
		Files: make([]models.GameFile, 0, len(files)),
	}
	for _, f := range files {
		resp.Files = append(resp.Files, models.GameFile{
			Absolute: f.Absolute,
			Relative: f.Relative,
		})
	}
	return resp, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGameUpdate(env requests.RequestEnv) (any, error) {
	var params models.UpdateGameParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	update := database.GameUpdate{
		Rating:          params.Rating,
		Description:     params.Description,
		Notes:           params.Notes,
		Tags:            params.Tags,
		SourcePortID:    params.SourcePortID,
		IWADID:          params.IWADID,
		UseCustomConfig: params.UseCustomConfig,
	}
	if params.PreviousFileState != nil {
		state := make([]database.FileState, 0, len(*params.PreviousFileState))
		for _, f := range *params.PreviousFileState {
			state = append(state, database.FileState{
				Relative:  f.Relative,
				Absolute:  f.Absolute,
				IsEnabled: f.IsEnabled,
			})
		}
		update.PreviousFileState = &state
	}

	game, err := env.Catalog.UpdateGame(env.Context, params.ID, update)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %q", ErrGameNotFound, params.ID)
	} else if err != nil {
		return nil, fmt.Errorf("error updating game %q: %w", params.ID, err)
	}

	notifications.GameUpdated(env.Notifications, game.ID)
	return gameResponse(game), nil
}

// HandleGameStart launches a game and responds once the source port exits
// with whether it exited successfully.
//
//nolint:gocritic // single-use parameter in API handler
func HandleGameStart(env requests.RequestEnv) (any, error) {
	var params models.GameIDParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	log.Info().Str("game", params.ID).Msg("received start game request")

	// started and stopped are only sent for a process that was actually run
	ok, err := env.Launcher.StartGameWithHooks(env.Context, params.ID, launcher.Hooks{
		Started: func(plan *launcher.Plan) {
			notifications.GameStarted(env.Notifications, models.GameStartedParams{ID: plan.GameID})
		},
		Stopped: func(plan *launcher.Plan, success bool) {
			notifications.GameStopped(env.Notifications, models.GameStoppedParams{
				ID:      plan.GameID,
				Success: success,
			})
		},
	})
	if err != nil {
		telemetry.ReportLaunchFailure(err)
		return nil, err //nolint:wrapcheck // launch errors already name the game
	}

	return ok, nil
}

//nolint:gocritic // single-use parameter in API handler
func HandleGamePlan(env requests.RequestEnv) (any, error) {
	var params models.GameIDParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	plan, err := env.Launcher.Plan(env.Context, params.ID)
	if err != nil {
		return nil, err //nolint:wrapcheck // launch errors already name the game
	}

	return models.PlanResponse{
		Engine:      plan.Profile.ID(),
		SourcePort:  plan.SourcePort.ID,
		Executable:  plan.Executable,
		IWAD:        plan.IWAD,
		Args:        plan.Args,
		CommandLine: plan.CommandLine(),
	}, nil
}

// HandleGameReveal shows a game in the system file manager. Without an ID
// the Games directory itself is shown.
//
//nolint:gocritic // single-use parameter in API handler
func HandleGameReveal(env requests.RequestEnv) (any, error) {
	var params models.RevealParams
	if len(env.Params) > 0 {
		if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
			return nil, err
		}
	}

	path := env.Catalog.GamesDirectory()
	if params.ID != "" {
		game, err := findGame(&env, params.ID)
		if err != nil {
			return nil, err
		}
		path = filepath.Join(path, game.Name)
	}

	if !env.IsLocal {
		log.Warn().Str("path", path).Msg("ignoring reveal request from remote client")
		return nil, ErrRemoteReveal
	}

	if err := env.Platform.RevealPath(env.Context, path); err != nil {
		return nil, fmt.Errorf("error revealing %s: %w", path, err)
	}
	return nil, nil
}

var ErrRemoteReveal = errors.New("reveal is only available to local clients")

//nolint:gocritic // single-use parameter in API handler
func HandlePlaySessions(env requests.RequestEnv) (any, error) {
	var params models.GameIDParams
	if err := validation.ValidateAndUnmarshal(env.Params, &params); err != nil {
		return nil, err
	}

	game, err := findGame(&env, params.ID)
	if err != nil {
		return nil, err
	}

	sessions, err := env.Catalog.PlaySessions(env.Context, game.ID)
	if err != nil {
		return nil, fmt.Errorf("error loading play sessions of %q: %w", game.ID, err)
	}

	resp := models.PlaySessionsResponse{
		Sessions: make([]models.PlaySession, 0, len(sessions)),
		Total:    int64(database.TotalPlayTime(sessions).Seconds()),
	}
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, models.PlaySession{
			StartedAt: s.StartedAt,
			EndedAt:   s.EndedAt,
			Duration:  int64(s.Duration().Seconds()),
		})
	}
	return resp, nil
}
