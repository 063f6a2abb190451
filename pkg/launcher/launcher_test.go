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

package launcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ZaparooProject/wadlauncher/pkg/database"
	"github.com/ZaparooProject/wadlauncher/pkg/database/catalog"
	"github.com/ZaparooProject/wadlauncher/pkg/helpers/command"
	"github.com/ZaparooProject/wadlauncher/pkg/platforms/shared"
	"github.com/ZaparooProject/wadlauncher/pkg/testing/mocks"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const dataDir = "/data"

var (
	gamesDir = filepath.Join(dataDir, "Games")
	metaDir  = filepath.Join(dataDir, "Meta")
	start    = time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
)

type fixture struct {
	fs    afero.Fs
	cat   *catalog.Catalog
	cmd   *mocks.MockCommandExecutor
	pl    *mocks.MockPlatform
	clock *clockwork.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	afs := afero.NewMemMapFs()
	cat := catalog.New(afs, dataDir)
	require.NoError(t, cat.InitDirectories())

	pl := mocks.NewMockPlatform()
	pl.SetupBasicMock()

	return &fixture{
		fs:    afs,
		cat:   cat,
		cmd:   &mocks.MockCommandExecutor{},
		pl:    pl,
		clock: clockwork.NewFakeClockAt(start),
	}
}

func (f *fixture) launcher(opts ...Option) *Launcher {
	opts = append([]Option{WithClock(f.clock), WithExecutor(f.cmd)}, opts...)
	return New(f.cat, f.pl, opts...)
}

func abs(rel string) string {
	return filepath.Join(gamesDir, filepath.FromSlash(rel))
}

func enabled(rel string) database.FileState {
	return database.FileState{Relative: rel, Absolute: abs(rel), IsEnabled: true}
}

func disabled(rel string) database.FileState {
	return database.FileState{Relative: rel, Absolute: abs(rel), IsEnabled: false}
}

// addGame creates the game's files on disk and saves its metadata.
func (f *fixture) addGame(t *testing.T, id string, files []string, update database.GameUpdate) {
	t.Helper()

	if len(files) == 0 {
		files = []string{id}
	}
	for _, rel := range files {
		path := abs(rel)
		require.NoError(t, f.fs.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, afero.WriteFile(f.fs, path, []byte("WAD"), 0o600))
	}

	_, err := f.cat.UpdateGame(context.Background(), id, update)
	require.NoError(t, err)
}

func (f *fixture) addPort(t *testing.T, sp database.SourcePort) {
	t.Helper()
	_, err := f.cat.SaveSourcePort(context.Background(), sp)
	require.NoError(t, err)
}

// expectRun makes Run succeed with result after advancing the clock by d,
// and returns a pointer that receives the arguments it was called with.
func (f *fixture) expectRun(name string, d time.Duration, result error) *[]string {
	var got []string
	f.cmd.On("Run", mock.Anything, name, mock.Anything).
		Run(func(args mock.Arguments) {
			got = args.Get(2).([]string)
			f.clock.Advance(d)
		}).
		Return(result).
		Once()
	return &got
}

func ptr[T any](v T) *T {
	return &v
}

// doom2Game is a folder game tagged iwad with the IWAD and a patch.
func (f *fixture) addDoom2(t *testing.T) {
	t.Helper()
	f.addGame(t, "doom2/", []string{"doom2/doom2.wad", "doom2/brutal.deh"}, database.GameUpdate{
		Tags:            &[]string{"iwad"},
		UseCustomConfig: ptr(true),
		PreviousFileState: &[]database.FileState{
			enabled("doom2/doom2.wad"),
			enabled("doom2/brutal.deh"),
		},
	})
}

func TestStartGame_IWADGameWithNoEnabledFiles(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addPort(t, database.SourcePort{Command: []string{"/usr/bin/gzdoom"}})
	f.addGame(t, "doom.wad", nil, database.GameUpdate{
		Tags:              &[]string{"IWAD"},
		PreviousFileState: &[]database.FileState{disabled("doom.wad")},
	})

	ok, err := f.launcher().StartGame(context.Background(), "doom.wad")

	assert.False(t, ok)
	require.ErrorIs(t, err, ErrMisconfigured)
	assert.Contains(t, err.Error(), `"doom.wad"`)
	f.cmd.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartGame_GZDoomCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		dedupe bool
		want   []string
	}{
		{
			name: "iwad_also_passed_as_file",
			want: []string{
				"-config", filepath.Join(metaDir, "doom2", "config.ini"),
				"-savedir", filepath.Join(metaDir, "doom2", "saves"),
				"-iwad", abs("doom2/doom2.wad"),
				"-file", abs("doom2/doom2.wad"),
				"-deh", abs("doom2/brutal.deh"),
			},
		},
		{
			name:   "dedupe_iwad",
			dedupe: true,
			want: []string{
				"-config", filepath.Join(metaDir, "doom2", "config.ini"),
				"-savedir", filepath.Join(metaDir, "doom2", "saves"),
				"-iwad", abs("doom2/doom2.wad"),
				"-deh", abs("doom2/brutal.deh"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.addPort(t, database.SourcePort{
				Command:           []string{"/usr/bin/gzdoom", "+vid_fullscreen", "1"},
				KnownSourcePortID: "gzdoom",
			})
			f.addDoom2(t)
			got := f.expectRun("/usr/bin/gzdoom", time.Minute, nil)

			ok, err := f.launcher(WithDedupeIWAD(tt.dedupe)).StartGame(context.Background(), "doom2/")
			require.NoError(t, err)
			assert.True(t, ok)

			want := append([]string{"+vid_fullscreen", "1"}, tt.want...)
			assert.Equal(t, want, *got)
		})
	}
}

func TestStartGame_UnknownEngineUsesGZDoomConventions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addPort(t, database.SourcePort{
		ID:                "odd",
		Command:           []string{"/opt/odd/odd-doom"},
		KnownSourcePortID: "does-not-exist",
	})
	f.addGame(t, "sigil.wad", nil, database.GameUpdate{
		SourcePortID: ptr("odd"),
		IWADID:       ptr("doom.wad"),
		PreviousFileState: &[]database.FileState{
			enabled("doom.wad"),
			enabled("sigil.wad"),
		},
	})
	got := f.expectRun("/opt/odd/odd-doom", time.Minute, nil)

	ok, err := f.launcher(WithDedupeIWAD(true)).StartGame(context.Background(), "sigil.wad")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{
		"-savedir", filepath.Join(metaDir, "sigil.wad", "saves"),
		"-iwad", abs("doom.wad"),
		"-file", abs("sigil.wad"),
	}, *got)
}

func TestStartGame_NonZeroExitStillRecordsSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addPort(t, database.SourcePort{Command: []string{"/usr/bin/gzdoom"}})
	f.addDoom2(t)
	f.expectRun("/usr/bin/gzdoom", 25*time.Minute, &command.ExitError{Code: 3})

	ok, err := f.launcher().StartGame(context.Background(), "doom2/")
	require.NoError(t, err)
	assert.False(t, ok)

	sessions, err := f.cat.PlaySessions(context.Background(), "doom2/")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.True(t, sessions[0].StartedAt.Equal(start))
	require.NotNil(t, sessions[0].EndedAt)
	assert.True(t, sessions[0].EndedAt.Equal(start.Add(25*time.Minute)))
	assert.Equal(t, 25*time.Minute, sessions[0].Duration())
}

func TestStartGame_RealProcessExitStatus(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	f := newFixture(t)
	// generated arguments become the script's positional parameters
	f.addPort(t, database.SourcePort{Command: []string{"/bin/sh", "-c", "exit 3"}})
	f.addDoom2(t)

	l := New(f.cat, f.pl, WithClock(f.clock))
	ok, err := l.StartGame(context.Background(), "doom2/")
	require.NoError(t, err)
	assert.False(t, ok)

	sessions, err := f.cat.PlaySessions(context.Background(), "doom2/")
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestStartGame_SuccessRecordsSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addPort(t, database.SourcePort{Command: []string{"/usr/bin/gzdoom"}})
	f.addDoom2(t)
	f.expectRun("/usr/bin/gzdoom", time.Hour, nil)

	l := f.launcher()
	ok, err := l.StartGame(context.Background(), "doom2")
	require.NoError(t, err)
	assert.True(t, ok)

	sessions, err := f.cat.PlaySessions(context.Background(), "doom2/")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, time.Hour, database.TotalPlayTime(sessions))
}

func TestStartGame_SpawnFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addPort(t, database.SourcePort{Command: []string{"/nope/gzdoom"}})
	f.addDoom2(t)
	f.expectRun("/nope/gzdoom", 0, errors.New("exec: no such file or directory"))

	ok, err := f.launcher().StartGame(context.Background(), "doom2/")
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrProcessSpawn)

	var launchErr *Error
	require.ErrorAs(t, err, &launchErr)
	assert.Equal(t, KindProcessSpawn, launchErr.Kind)
	assert.Equal(t, "doom2/", launchErr.GameID)

	sessions, err := f.cat.PlaySessions(context.Background(), "doom2/")
	require.NoError(t, err)
	assert.Empty(t, sessions, "no session when the game never ran")
}

// hookLog records hook calls in order.
type hookLog struct {
	calls []string
}

func (h *hookLog) hooks() Hooks {
	return Hooks{
		Started: func(plan *Plan) {
			h.calls = append(h.calls, "started "+plan.GameID)
		},
		Stopped: func(plan *Plan, success bool) {
			h.calls = append(h.calls, fmt.Sprintf("stopped %s %t", plan.GameID, success))
		},
	}
}

func TestStartGameWithHooks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		runErr error
		name   string
		want   []string
		noPort bool
	}{
		{name: "success", want: []string{"started doom2/", "stopped doom2/ true"}},
		{
			name:   "non_zero_exit",
			runErr: &command.ExitError{Code: 1},
			want:   []string{"started doom2/", "stopped doom2/ false"},
		},
		{
			name:   "spawn_failure",
			runErr: errors.New("exec: no such file or directory"),
			want:   []string{"started doom2/", "stopped doom2/ false"},
		},
		{name: "resolution_failure", noPort: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.addDoom2(t)
			if !tt.noPort {
				f.addPort(t, database.SourcePort{Command: []string{"/usr/bin/gzdoom"}})
				f.expectRun("/usr/bin/gzdoom", time.Minute, tt.runErr)
			}

			var hl hookLog
			_, _ = f.launcher().StartGameWithHooks(context.Background(), "doom2/", hl.hooks())
			assert.Equal(t, tt.want, hl.calls)
			f.cmd.AssertExpectations(t)
		})
	}
}

func TestStartGameWithHooks_StartedBeforeRun(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addPort(t, database.SourcePort{Command: []string{"/usr/bin/gzdoom"}})
	f.addDoom2(t)

	var hl hookLog
	f.cmd.On("Run", mock.Anything, "/usr/bin/gzdoom", mock.Anything).
		Run(func(mock.Arguments) {
			assert.Equal(t, []string{"started doom2/"}, hl.calls, "process runs after Started")
		}).
		Return(nil).
		Once()

	ok, err := f.launcher().StartGameWithHooks(context.Background(), "doom2/", hl.hooks())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"started doom2/", "stopped doom2/ true"}, hl.calls)
}

func TestStartGame_PlatformResolutionFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.pl = mocks.NewMockPlatform()
	f.pl.On("ResolveExecutable", "/Applications/GZDoom.app").
		Return("", shared.ErrBundleManifest)
	f.addPort(t, database.SourcePort{Command: []string{"/Applications/GZDoom.app"}})
	f.addDoom2(t)

	ok, err := f.launcher().StartGame(context.Background(), "doom2/")
	assert.False(t, ok)
	require.ErrorIs(t, err, ErrPlatformResolution)
	require.ErrorIs(t, err, shared.ErrBundleManifest)
	f.cmd.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestStartGame_ResolvedExecutableIsRun(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.pl = mocks.NewMockPlatform()
	f.pl.On("ResolveExecutable", "/Applications/GZDoom.app").
		Return("/Applications/GZDoom.app/Contents/MacOS/gzdoom", nil)
	f.addPort(t, database.SourcePort{Command: []string{"/Applications/GZDoom.app"}})
	f.addDoom2(t)
	f.expectRun("/Applications/GZDoom.app/Contents/MacOS/gzdoom", time.Second, nil)

	ok, err := f.launcher().StartGame(context.Background(), "doom2/")
	require.NoError(t, err)
	assert.True(t, ok)
	f.cmd.AssertExpectations(t)
}

func TestStartGame_ResolutionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		setup   func(t *testing.T, f *fixture)
		want    error
		name    string
		gameID  string
		message string
	}{
		{
			name:    "game_not_found",
			gameID:  "missing.wad",
			setup:   func(*testing.T, *fixture) {},
			want:    ErrNotFound,
			message: "game not found",
		},
		{
			name:   "no_source_ports",
			gameID: "doom2/",
			setup: func(t *testing.T, f *fixture) {
				f.addDoom2(t)
			},
			want:    ErrMisconfigured,
			message: "no source ports configured",
		},
		{
			name:   "named_source_port_missing",
			gameID: "doom2/",
			setup: func(t *testing.T, f *fixture) {
				f.addPort(t, database.SourcePort{Command: []string{"/usr/bin/gzdoom"}})
				f.addGame(t, "doom2/", []string{"doom2/doom2.wad"}, database.GameUpdate{
					Tags:              &[]string{"iwad"},
					SourcePortID:      ptr("deleted"),
					PreviousFileState: &[]database.FileState{enabled("doom2/doom2.wad")},
				})
			},
			want:    ErrNotFound,
			message: `source port "deleted" not found`,
		},
		{
			name:   "no_iwad_selected",
			gameID: "sigil.wad",
			setup: func(t *testing.T, f *fixture) {
				f.addPort(t, database.SourcePort{Command: []string{"/usr/bin/gzdoom"}})
				f.addGame(t, "sigil.wad", nil, database.GameUpdate{
					PreviousFileState: &[]database.FileState{enabled("sigil.wad")},
				})
			},
			want:    ErrMisconfigured,
			message: "no IWAD selected",
		},
		{
			name:   "iwad_not_enabled",
			gameID: "sigil.wad",
			setup: func(t *testing.T, f *fixture) {
				f.addPort(t, database.SourcePort{Command: []string{"/usr/bin/gzdoom"}})
				f.addGame(t, "sigil.wad", nil, database.GameUpdate{
					IWADID: ptr("doom.wad"),
					PreviousFileState: &[]database.FileState{
						disabled("doom.wad"),
						enabled("sigil.wad"),
					},
				})
			},
			want:    ErrMisconfigured,
			message: `IWAD "doom.wad" is not among the enabled files`,
		},
		{
			name:   "empty_command",
			gameID: "doom2/",
			setup: func(t *testing.T, f *fixture) {
				f.addPort(t, database.SourcePort{ID: "blank"})
				f.addDoom2(t)
			},
			want:    ErrMisconfigured,
			message: `source port "blank" has no executable`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			tt.setup(t, f)

			ok, err := f.launcher().StartGame(context.Background(), tt.gameID)
			assert.False(t, ok)
			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.message)
			assert.Contains(t, err.Error(), tt.gameID)
			f.cmd.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestStartGame_NotFoundWrapsStoreError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	_, err := f.launcher().StartGame(context.Background(), "missing")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, database.ErrNotFound)
	assert.NotErrorIs(t, err, ErrMisconfigured)
}

func TestStartGame_DefaultSourcePort(t *testing.T) {
	t.Parallel()

	t.Run("flagged_default_wins", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addPort(t, database.SourcePort{ID: "a", Command: []string{"/ports/a"}})
		f.addPort(t, database.SourcePort{ID: "b", Command: []string{"/ports/b"}, IsDefault: true})
		f.addDoom2(t)
		f.expectRun("/ports/b", time.Second, nil)

		_, err := f.launcher().StartGame(context.Background(), "doom2/")
		require.NoError(t, err)
		f.cmd.AssertExpectations(t)
	})

	t.Run("first_registered_without_default", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.addPort(t, database.SourcePort{ID: "z", Command: []string{"/ports/z"}})
		f.addPort(t, database.SourcePort{ID: "a", Command: []string{"/ports/a"}})
		f.addGame(t, "doom2/", []string{"doom2/doom2.wad"}, database.GameUpdate{
			Tags:              &[]string{"iwad"},
			SourcePortID:      ptr(database.UseDefaultSourcePort),
			PreviousFileState: &[]database.FileState{enabled("doom2/doom2.wad")},
		})

		l := f.launcher()
		for range 3 {
			plan, err := l.Plan(context.Background(), "doom2/")
			require.NoError(t, err)
			assert.Equal(t, "z", plan.SourcePort.ID)
		}
	})
}

func TestStartGame_DetachedFromCallerContext(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addPort(t, database.SourcePort{Command: []string{"/usr/bin/gzdoom"}})
	f.addDoom2(t)

	var runCtx context.Context
	f.cmd.On("Run", mock.Anything, "/usr/bin/gzdoom", mock.Anything).
		Run(func(args mock.Arguments) {
			runCtx = args.Get(0).(context.Context)
		}).
		Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := f.launcher().StartGame(ctx, "doom2/")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NotNil(t, runCtx)
	assert.NoError(t, runCtx.Err())
}

func TestPlan(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.addPort(t, database.SourcePort{
		ID:                "woof",
		Command:           []string{"/usr/games/woof", "-nomusic"},
		KnownSourcePortID: "woof",
		IsDefault:         true,
	})
	f.addGame(t, "Eviternity/", []string{"Eviternity/Eviternity.wad", "doom2.wad"}, database.GameUpdate{
		IWADID: ptr("doom2.wad"),
		PreviousFileState: &[]database.FileState{
			enabled("doom2.wad"),
			enabled("Eviternity/Eviternity.wad"),
		},
	})

	plan, err := f.launcher(WithDedupeIWAD(true)).Plan(context.Background(), "Eviternity/")
	require.NoError(t, err)

	assert.Equal(t, "woof", plan.Profile.ID())
	assert.Equal(t, abs("doom2.wad"), plan.IWAD)
	assert.Equal(t, []string{abs("Eviternity/Eviternity.wad")}, plan.Files)
	assert.Equal(t, []string{
		"/usr/games/woof",
		"-nomusic",
		"-save", filepath.Join(metaDir, "Eviternity", "saves"),
		"-iwad", abs("doom2.wad"),
		"-file", abs("Eviternity/Eviternity.wad"),
	}, plan.Args)
	f.cmd.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestPlan_CommandLine(t *testing.T) {
	t.Parallel()

	plan := Plan{Args: []string{"/usr/bin/gzdoom", "-iwad", "/home/me/GZDoom Launcher/doom2.wad"}}
	assert.Equal(t, `/usr/bin/gzdoom -iwad "/home/me/GZDoom Launcher/doom2.wad"`, plan.CommandLine())
}

func TestSelectFiles(t *testing.T) {
	t.Parallel()

	game := database.Game{PreviousFileState: []database.FileState{
		disabled("doom2.wad"),
		enabled("mod/a.wad"),
		enabled("doom2/doom2.wad"),
		enabled("doom2/other.wad"),
	}}
	state := game.EnabledFiles()

	iwad, files, ok := selectFiles(state, "doom2", false)
	require.True(t, ok)
	assert.Equal(t, abs("doom2/doom2.wad"), iwad, "first enabled match wins")
	assert.Equal(t, []string{abs("mod/a.wad"), abs("doom2/doom2.wad"), abs("doom2/other.wad")}, files)

	_, files, ok = selectFiles(state, "doom2", true)
	require.True(t, ok)
	assert.Equal(t, []string{abs("mod/a.wad"), abs("doom2/other.wad")}, files)

	_, _, ok = selectFiles(state, "tnt", false)
	assert.False(t, ok)
}
