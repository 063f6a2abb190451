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
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ZaparooProject/wadlauncher/pkg/api/models"
	"github.com/ZaparooProject/wadlauncher/pkg/api/models/requests"
	"github.com/ZaparooProject/wadlauncher/pkg/database"
	"github.com/ZaparooProject/wadlauncher/pkg/helpers/command"
	"github.com/ZaparooProject/wadlauncher/pkg/launcher"
	"github.com/ZaparooProject/wadlauncher/pkg/testing/helpers"
	"github.com/ZaparooProject/wadlauncher/pkg/testing/mocks"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	env      requests.RequestEnv
	fs       *helpers.FSHelper
	platform *mocks.MockPlatform
	notifs   chan models.Notification
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	platform := mocks.NewMockPlatform()
	platform.SetupBasicMock()
	fsh := helpers.NewTestCatalog(t)
	notifs := make(chan models.Notification, 8)

	return &testEnv{
		env: requests.RequestEnv{
			Context:       context.Background(),
			Platform:      platform,
			Config:        helpers.NewTestConfig(t),
			Catalog:       fsh.Catalog,
			Launcher:      launcher.New(fsh.Catalog, platform, launcher.WithExecutor(helpers.NewMockCommandExecutor())),
			Notifications: notifs,
			IsLocal:       true,
		},
		fs:       fsh,
		platform: platform,
		notifs:   notifs,
	}
}

// with returns the env with params encoded as the request params.
func (e *testEnv) with(t *testing.T, params any) requests.RequestEnv {
	t.Helper()

	env := e.env
	if params != nil {
		data, err := json.Marshal(params)
		require.NoError(t, err)
		env.Params = data
	}
	return env
}

func TestHandleGames(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	e.fs.AddGame("doom2.wad", database.GameUpdate{Tags: &[]string{"iwad"}})
	e.fs.AddGame("Eviternity/", database.GameUpdate{}, "Eviternity/Eviternity.wad")

	result, err := HandleGames(e.with(t, nil))
	require.NoError(t, err)

	resp, ok := result.(models.GamesResponse)
	require.True(t, ok)
	require.Len(t, resp.Games, 2)
	assert.Equal(t, "Eviternity/", resp.Games[0].ID)
	assert.True(t, resp.Games[0].IsFolder)
	assert.Equal(t, []string{}, resp.Games[0].Tags)
	assert.Equal(t, "doom2.wad", resp.Games[1].ID)
	assert.Equal(t, []string{"iwad"}, resp.Games[1].Tags)
}

func TestHandleGame_NotFound(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)

	_, err := HandleGame(e.with(t, models.GameIDParams{ID: "tnt.wad"}))
	require.ErrorIs(t, err, ErrGameNotFound)
	assert.Contains(t, err.Error(), `"tnt.wad"`)
}

func TestHandleGameFiles(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	e.fs.AddGame("Eviternity/", database.GameUpdate{}, "Eviternity/Eviternity.wad", "Eviternity/music/mus.wad")

	result, err := HandleGameFiles(e.with(t, models.GameIDParams{ID: "Eviternity"}))
	require.NoError(t, err)

	resp, ok := result.(models.GameFilesResponse)
	require.True(t, ok)
	relative := make([]string, 0, len(resp.Files))
	for _, f := range resp.Files {
		relative = append(relative, f.Relative)
	}
	assert.ElementsMatch(t, []string{"Eviternity/Eviternity.wad", "Eviternity/music/mus.wad"}, relative)
}

func TestHandleGameUpdate(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	e.fs.AddGame("sigil.wad", database.GameUpdate{})

	rating := 4
	result, err := HandleGameUpdate(e.with(t, models.UpdateGameParams{
		ID:     "sigil.wad",
		Rating: &rating,
		IWADID: ptr("doom.wad"),
		PreviousFileState: &[]models.FileStateParams{
			{Relative: "doom.wad", Absolute: e.fs.GamePath("doom.wad"), IsEnabled: true},
			{Relative: "sigil.wad", Absolute: e.fs.GamePath("sigil.wad"), IsEnabled: false},
		},
	}))
	require.NoError(t, err)

	resp, ok := result.(models.GameResponse)
	require.True(t, ok)
	assert.Equal(t, 4, resp.Rating)
	assert.Equal(t, "doom.wad", resp.IWADID)
	require.Len(t, resp.PreviousFileState, 2)
	assert.False(t, resp.PreviousFileState[1].IsEnabled)

	game, err := e.fs.Catalog.FindGameByID(context.Background(), "sigil.wad")
	require.NoError(t, err)
	assert.Equal(t, 4, game.Rating)

	n := <-e.notifs
	assert.Equal(t, models.NotificationGameUpdated, n.Method)
	assert.Equal(t, "sigil.wad", n.Params)
}

func TestHandleGamePlan(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	e.fs.AddSourcePort(database.SourcePort{
		ID:                "dsda",
		Command:           []string{"/usr/bin/dsda-doom"},
		KnownSourcePortID: "dsda",
	})
	e.fs.AddGame("doom.wad", database.GameUpdate{
		Tags:              &[]string{"iwad"},
		PreviousFileState: &[]database.FileState{e.fs.EnabledFile("doom.wad")},
	})

	result, err := HandleGamePlan(e.with(t, models.GameIDParams{ID: "doom.wad"}))
	require.NoError(t, err)

	resp, ok := result.(models.PlanResponse)
	require.True(t, ok)
	assert.Equal(t, "dsda", resp.Engine)
	assert.Equal(t, "dsda", resp.SourcePort)
	assert.Equal(t, e.fs.GamePath("doom.wad"), resp.IWAD)
	assert.Equal(t, "/usr/bin/dsda-doom", resp.Args[0])
	assert.Contains(t, resp.Args, "-save")
	assert.Contains(t, resp.CommandLine, "-iwad")
}

func TestHandleGamePlan_Misconfigured(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	e.fs.AddGame("doom.wad", database.GameUpdate{Tags: &[]string{"iwad"}})

	_, err := HandleGamePlan(e.with(t, models.GameIDParams{ID: "doom.wad"}))
	require.ErrorIs(t, err, launcher.ErrMisconfigured)
	assert.Contains(t, err.Error(), `"doom.wad"`)
}

// drain returns every queued notification.
func drain(ch chan models.Notification) []models.Notification {
	var got []models.Notification
	for {
		select {
		case n := <-ch:
			got = append(got, n)
		default:
			return got
		}
	}
}

// withRun makes the env's launcher run source ports with cmd, whose Run
// returns runErr.
func (e *testEnv) withRun(store database.Store, runErr error) *mocks.MockCommandExecutor {
	cmd := &mocks.MockCommandExecutor{}
	cmd.On("Run", mock.Anything, "/usr/bin/gzdoom", mock.Anything).Return(runErr).Maybe()
	e.env.Launcher = launcher.New(store, e.platform, launcher.WithExecutor(cmd))
	return cmd
}

func (e *testEnv) addDoom2() {
	e.fs.AddSourcePort(database.SourcePort{Command: []string{"/usr/bin/gzdoom"}})
	e.fs.AddGame("doom2.wad", database.GameUpdate{
		Tags:              &[]string{database.TagIWAD},
		PreviousFileState: &[]database.FileState{e.fs.EnabledFile("doom2.wad")},
	})
}

func TestHandleGameStart(t *testing.T) {
	t.Parallel()

	started := models.Notification{
		Method: models.NotificationGameStarted,
		Params: models.GameStartedParams{ID: "doom2.wad"},
	}
	stopped := func(success bool) models.Notification {
		return models.Notification{
			Method: models.NotificationGameStopped,
			Params: models.GameStoppedParams{ID: "doom2.wad", Success: success},
		}
	}

	tests := []struct {
		runErr  error
		wantErr error
		name    string
		want    []models.Notification
		noPort  bool
		noGame  bool
		success bool
	}{
		{
			name:    "success",
			success: true,
			want:    []models.Notification{started, stopped(true)},
		},
		{
			name:   "non_zero_exit",
			runErr: &command.ExitError{Code: 2},
			want:   []models.Notification{started, stopped(false)},
		},
		{
			name:    "spawn_failure",
			runErr:  errors.New("exec: no such file"),
			wantErr: launcher.ErrProcessSpawn,
			want:    []models.Notification{started, stopped(false)},
		},
		{
			name:    "unknown_game",
			noGame:  true,
			wantErr: launcher.ErrNotFound,
		},
		{
			name:    "no_source_ports",
			noPort:  true,
			wantErr: launcher.ErrMisconfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newTestEnv(t)
			switch {
			case tt.noGame:
				e.fs.AddSourcePort(database.SourcePort{Command: []string{"/usr/bin/gzdoom"}})
			case tt.noPort:
				e.fs.AddGame("doom2.wad", database.GameUpdate{
					Tags:              &[]string{database.TagIWAD},
					PreviousFileState: &[]database.FileState{e.fs.EnabledFile("doom2.wad")},
				})
			default:
				e.addDoom2()
			}
			cmd := e.withRun(e.fs.Catalog, tt.runErr)

			result, err := HandleGameStart(e.with(t, models.GameIDParams{ID: "doom2.wad"}))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.success, result)
			}
			assert.Equal(t, tt.want, drain(e.notifs))

			if tt.want == nil {
				cmd.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

type failingSessionStore struct {
	database.Store
}

func (failingSessionStore) AppendPlaySession(context.Context, string, database.PlaySession) error {
	return errors.New("disk full")
}

func TestHandleGameStart_SessionNotRecorded(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	e.addDoom2()
	e.withRun(failingSessionStore{Store: e.fs.Catalog}, nil)

	_, err := HandleGameStart(e.with(t, models.GameIDParams{ID: "doom2.wad"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	got := drain(e.notifs)
	require.Len(t, got, 2)
	assert.Equal(t, models.NotificationGameStarted, got[0].Method)
	assert.Equal(t, models.Notification{
		Method: models.NotificationGameStopped,
		Params: models.GameStoppedParams{ID: "doom2.wad", Success: true},
	}, got[1])
}

func TestHandlePlaySessions(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	e.fs.AddGame("doom2.wad", database.GameUpdate{})

	start := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	end1 := start.Add(90*time.Second + 700*time.Millisecond)
	end2 := start.Add(2 * time.Hour)
	for _, s := range []database.PlaySession{
		{StartedAt: start, EndedAt: &end1},
		{StartedAt: start.Add(time.Hour)},
		{StartedAt: start.Add(time.Hour), EndedAt: &end2},
	} {
		require.NoError(t, e.fs.Catalog.AppendPlaySession(context.Background(), "doom2.wad", s))
	}

	result, err := HandlePlaySessions(e.with(t, models.GameIDParams{ID: "doom2.wad"}))
	require.NoError(t, err)

	resp, ok := result.(models.PlaySessionsResponse)
	require.True(t, ok)
	require.Len(t, resp.Sessions, 3)
	assert.Equal(t, int64(90), resp.Sessions[0].Duration)
	assert.Equal(t, int64(0), resp.Sessions[1].Duration)
	assert.Nil(t, resp.Sessions[1].EndedAt)
	assert.Equal(t, int64(3600), resp.Sessions[2].Duration)
	assert.Equal(t, int64(3690), resp.Total)
}

func TestHandleGameReveal(t *testing.T) {
	t.Parallel()

	t.Run("game", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)
		e.fs.AddGame("Eviternity/", database.GameUpdate{}, "Eviternity/Eviternity.wad")

		_, err := HandleGameReveal(e.with(t, models.RevealParams{ID: "Eviternity/"}))
		require.NoError(t, err)
		assert.Equal(t,
			[]string{filepath.Join(e.fs.Catalog.GamesDirectory(), "Eviternity")},
			e.platform.GetRevealedPaths())
	})

	t.Run("games_directory", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)

		_, err := HandleGameReveal(e.with(t, nil))
		require.NoError(t, err)
		assert.Equal(t, []string{e.fs.Catalog.GamesDirectory()}, e.platform.GetRevealedPaths())
	})

	t.Run("remote_client", func(t *testing.T) {
		t.Parallel()
		e := newTestEnv(t)
		env := e.with(t, nil)
		env.IsLocal = false

		_, err := HandleGameReveal(env)
		require.ErrorIs(t, err, ErrRemoteReveal)
		e.platform.AssertNotCalled(t, "RevealPath", mock.Anything, mock.Anything)
	})
}

func TestHandleKnownSourcePorts(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)

	result, err := HandleKnownSourcePorts(e.with(t, nil))
	require.NoError(t, err)

	resp, ok := result.(models.KnownSourcePortsResponse)
	require.True(t, ok)
	require.Len(t, resp.SourcePorts, 5)

	choco := resp.SourcePorts[2]
	assert.Equal(t, "chocolate-doom", choco.ID)
	assert.Equal(t, "-savedir", choco.SaveDirFlag)
	assert.Equal(t, "chocolate-doom", choco.ExampleCommand[0])
	assert.Equal(t, []string{"-merge", "example.wad"}, choco.ExampleCommand[len(choco.ExampleCommand)-2:])
}

func TestSourcePortHandlers(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)

	result, err := HandleAddSourcePort(e.with(t, models.NewSourcePortParams{
		Command:           []string{"/usr/bin/woof"},
		KnownSourcePortID: "woof",
	}))
	require.NoError(t, err)
	woof, ok := result.(models.SourcePort)
	require.True(t, ok)
	assert.NotEmpty(t, woof.ID)

	result, err = HandleAddSourcePort(e.with(t, models.NewSourcePortParams{
		Command: []string{"/usr/bin/gzdoom"},
	}))
	require.NoError(t, err)
	gz, ok := result.(models.SourcePort)
	require.True(t, ok)
	assert.Equal(t, "gzdoom", gz.KnownSourcePortID, "empty engine reads back as the default")

	_, err = HandleUpdateSourcePort(e.with(t, models.UpdateSourcePortParams{
		ID:        gz.ID,
		IsDefault: ptr(true),
	}))
	require.NoError(t, err)

	result, err = HandleSourcePorts(e.with(t, nil))
	require.NoError(t, err)
	list, ok := result.(models.SourcePortsResponse)
	require.True(t, ok)
	require.Len(t, list.SourcePorts, 2)
	assert.Equal(t, woof.ID, list.SourcePorts[0].ID, "registration order kept")
	assert.True(t, list.SourcePorts[1].IsDefault)

	_, err = HandleDeleteSourcePort(e.with(t, models.SourcePortIDParams{ID: woof.ID}))
	require.NoError(t, err)

	_, err = HandleDeleteSourcePort(e.with(t, models.SourcePortIDParams{ID: woof.ID}))
	require.ErrorIs(t, err, ErrSourcePortNotFound)

	_, err = HandleUpdateSourcePort(e.with(t, models.UpdateSourcePortParams{ID: "missing"}))
	require.ErrorIs(t, err, ErrSourcePortNotFound)

	_, err = HandleAddSourcePort(e.with(t, models.NewSourcePortParams{
		Command:           []string{"/usr/bin/prboom-plus"},
		KnownSourcePortID: "prboom",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown source port "prboom"`)
}

func TestHandleAppInit(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)

	result, err := HandleAppInit(e.with(t, nil))
	require.NoError(t, err)
	resp, ok := result.(models.AppInitResponse)
	require.True(t, ok)
	assert.Equal(t, helpers.TestDataDir, resp.DataDir)

	for _, dir := range []string{resp.GamesDir, resp.SourcePortsDir, resp.MetaDir} {
		info, err := e.fs.Fs.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestHandleTags(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)
	e.fs.AddGame("sigil.wad", database.GameUpdate{Tags: &[]string{"romero", "mod"}})

	result, err := HandleTags(e.with(t, nil))
	require.NoError(t, err)
	assert.Equal(t, models.TagsResponse{Tags: []string{"iwad", "tc", "mod", "romero"}}, result)
}

//nolint:paralleltest // changes the global log level
func TestHandleSettingsUpdate(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	e := newTestEnv(t)

	_, err := HandleSettingsUpdate(e.with(t, models.UpdateSettingsParams{
		DebugLogging: ptr(true),
		DedupeIWAD:   ptr(true),
	}))
	require.NoError(t, err)
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	result, err := HandleSettings(e.with(t, nil))
	require.NoError(t, err)
	assert.Equal(t, models.SettingsResponse{
		DataDir:      helpers.TestDataDir,
		DebugLogging: true,
		DedupeIWAD:   true,
	}, result)

	require.NoError(t, e.env.Config.Load())
	assert.True(t, e.env.Config.DedupeIWAD(), "settings are saved to disk")
}

func TestHandleVersion(t *testing.T) {
	t.Parallel()

	e := newTestEnv(t)

	result, err := HandleVersion(e.with(t, nil))
	require.NoError(t, err)
	resp, ok := result.(models.VersionResponse)
	require.True(t, ok)
	assert.Equal(t, "mock-platform", resp.Platform)
}

func ptr[T any](v T) *T {
	return &v
}
