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

// Package launcher turns a game in the catalog into a running source port.
// It resolves which port and engine profile to use, finds the IWAD among
// the game's enabled files, builds the command line, runs it to completion
// and records the play session.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/ZaparooProject/wadlauncher/pkg/database"
	"github.com/ZaparooProject/wadlauncher/pkg/helpers"
	"github.com/ZaparooProject/wadlauncher/pkg/helpers/command"
	"github.com/ZaparooProject/wadlauncher/pkg/platforms"
	"github.com/ZaparooProject/wadlauncher/pkg/sourceports"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type Launcher struct {
	store      database.Store
	platform   platforms.Platform
	cmd        command.Executor
	clock      clockwork.Clock
	dedupeIWAD func() bool
}

// Option configures a Launcher.
type Option func(*Launcher)

// WithClock sets the clock used for play session timestamps.
func WithClock(clock clockwork.Clock) Option {
	return func(l *Launcher) {
		l.clock = clock
	}
}

// WithExecutor sets the command executor used to run source ports.
func WithExecutor(cmd command.Executor) Option {
	return func(l *Launcher) {
		l.cmd = cmd
	}
}

// WithDedupeIWAD leaves the IWAD entry out of the supplemental file list.
// By default it is passed twice, once with -iwad and once as a file.
func WithDedupeIWAD(enabled bool) Option {
	return WithDedupeIWADFrom(func() bool { return enabled })
}

// WithDedupeIWADFrom reads the dedupe setting from f on every launch, so
// changes to it apply without rebuilding the Launcher.
func WithDedupeIWADFrom(f func() bool) Option {
	return func(l *Launcher) {
		l.dedupeIWAD = f
	}
}

func New(store database.Store, pl platforms.Platform, opts ...Option) *Launcher {
	l := &Launcher{
		store:      store,
		platform:   pl,
		cmd:        &command.RealExecutor{},
		clock:      clockwork.NewRealClock(),
		dedupeIWAD: func() bool { return false },
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Plan is a fully resolved launch, ready to run.
type Plan struct {
	Profile    sourceports.Profile
	GameID     string
	Executable string
	IWAD       string
	SourcePort database.SourcePort
	Files      []string
	// Args is the complete argument vector, executable first.
	Args []string
}

// CommandLine renders Args for display, quoting arguments with spaces.
func (p *Plan) CommandLine() string {
	parts := make([]string, len(p.Args))
	for i, arg := range p.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\"'") {
			arg = strconv.Quote(arg)
		}
		parts[i] = arg
	}
	return strings.Join(parts, " ")
}

// Plan resolves everything needed to launch gameID without starting it.
func (l *Launcher) Plan(ctx context.Context, gameID string) (*Plan, error) {
	game, err := l.store.FindGameByID(ctx, gameID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, newError(KindNotFound, gameID, err, "game not found")
	} else if err != nil {
		return nil, fmt.Errorf("start game %q: load game: %w", gameID, err)
	}

	port, err := l.sourcePort(ctx, game)
	if err != nil {
		return nil, err
	}

	profile := sourceports.Find(port.Engine())

	if len(port.Command) == 0 || port.Command[0] == "" {
		return nil, newError(KindMisconfigured, game.ID, nil,
			"source port %q has no executable", port.ID)
	}

	exe, err := l.platform.ResolveExecutable(port.Command[0])
	if err != nil {
		return nil, newError(KindPlatformResolution, game.ID, err,
			"resolve executable of source port %q", port.ID)
	}

	iwadID := game.IWADID
	if game.IsIWAD() {
		iwadID = game.ID
	}
	if iwadID == "" {
		return nil, newError(KindMisconfigured, game.ID, nil, "no IWAD selected")
	}

	iwad, files, ok := selectFiles(game.EnabledFiles(), iwadID, l.dedupeIWAD())
	if !ok {
		return nil, newError(KindMisconfigured, game.ID, nil,
			"IWAD %q is not among the enabled files", iwadID)
	}

	synthesized := sourceports.BuildCommand(profile, sourceports.Request{
		Executable:      exe,
		IWAD:            iwad,
		Files:           files,
		UseCustomConfig: game.UseCustomConfig,
		GameID:          game.ID,
		MetaDir:         l.store.MetaDirectory(),
	})

	// [executable] [base args from the port] [generated args]
	args := make([]string, 0, len(port.Command)+len(synthesized)-1)
	args = append(args, exe)
	args = append(args, port.Command[1:]...)
	args = append(args, synthesized[1:]...)

	return &Plan{
		GameID:     game.ID,
		SourcePort: *port,
		Profile:    profile,
		Executable: exe,
		IWAD:       iwad,
		Files:      files,
		Args:       args,
	}, nil
}

// sourcePort returns the port a game launches with. Games set to use the
// default get the port flagged default, or the first registered one.
func (l *Launcher) sourcePort(ctx context.Context, game *database.Game) (*database.SourcePort, error) {
	if !game.UsesDefaultSourcePort() {
		port, err := l.store.FindSourcePortByID(ctx, game.SourcePortID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, newError(KindNotFound, game.ID, err,
				"source port %q not found", game.SourcePortID)
		} else if err != nil {
			return nil, fmt.Errorf("start game %q: load source port: %w", game.ID, err)
		}
		return port, nil
	}

	ports, err := l.store.ListSourcePorts(ctx)
	if err != nil {
		return nil, fmt.Errorf("start game %q: list source ports: %w", game.ID, err)
	}
	if len(ports) == 0 {
		return nil, newError(KindMisconfigured, game.ID, nil, "no source ports configured")
	}

	idx := slices.IndexFunc(ports, func(p database.SourcePort) bool {
		return p.IsDefault
	})
	if idx < 0 {
		log.Debug().Str("game", game.ID).Str("port", ports[0].ID).
			Msg("no default source port set, using first")
		idx = 0
	}
	return &ports[idx], nil
}

// selectFiles walks the enabled entries in order. The first one whose
// relative path starts with iwadID is the IWAD. Every entry is returned in
// files, the IWAD included unless dedupe is set.
func selectFiles(
	enabled []database.FileState,
	iwadID string,
	dedupe bool,
) (iwad string, files []string, found bool) {
	files = make([]string, 0, len(enabled))
	for _, f := range enabled {
		if !found && strings.HasPrefix(f.Relative, iwadID) {
			iwad = f.Absolute
			found = true
			if dedupe {
				continue
			}
		}
		files = append(files, f.Absolute)
	}
	return iwad, files, found
}

// Hooks are called around the source port process of a single launch.
// Either may be nil.
type Hooks struct {
	// Started is called once the launch is resolved, just before the
	// process is run.
	Started func(plan *Plan)
	// Stopped is called after Started once the process is done, or has
	// failed to spawn, before the play session is recorded.
	Stopped func(plan *Plan, success bool)
}

// StartGame launches gameID and blocks until the source port exits. It
// returns true if the process exited successfully. A non-zero exit is
// not an error: it returns false and the play session is still recorded.
// Failing to start the process at all returns a KindProcessSpawn error and
// records nothing. Once started, the process is not tied to ctx.
func (l *Launcher) StartGame(ctx context.Context, gameID string) (bool, error) {
	return l.StartGameWithHooks(ctx, gameID, Hooks{})
}

// StartGameWithHooks is StartGame with hooks. If resolution fails no hook
// is called, otherwise Started and Stopped are both called exactly once.
func (l *Launcher) StartGameWithHooks(ctx context.Context, gameID string, hooks Hooks) (bool, error) {
	plan, err := l.Plan(ctx, gameID)
	if err != nil {
		return false, err
	}

	stopped := func(success bool) {
		if hooks.Stopped != nil {
			hooks.Stopped(plan, success)
		}
	}

	log.Info().
		Str("game", plan.GameID).
		Str("engine", plan.Profile.ID()).
		Strs("args", plan.Args).
		Msg("starting game")

	startedAt := l.clock.Now()
	if !helpers.IsClockReliable(startedAt) {
		log.Warn().Time("now", startedAt).Msg("system clock looks unset, play time may be wrong")
	}

	if hooks.Started != nil {
		hooks.Started(plan)
	}

	// the game outlives any request that started it
	runCtx := context.WithoutCancel(ctx)
	runErr := l.cmd.Run(runCtx, plan.Args[0], plan.Args[1:]...)

	code, exited := command.ExitCode(runErr)
	if runErr != nil && !exited {
		stopped(false)
		return false, newError(KindProcessSpawn, plan.GameID, runErr,
			"run %s", plan.Executable)
	}

	endedAt := l.clock.Now()
	session := database.PlaySession{
		StartedAt: startedAt,
		EndedAt:   &endedAt,
	}

	success := runErr == nil
	if success {
		log.Info().Str("game", plan.GameID).
			Dur("duration", session.Duration()).
			Msg("game exited")
	} else {
		log.Warn().Str("game", plan.GameID).
			Int("code", code).
			Dur("duration", session.Duration()).
			Msg("game exited with error status")
	}
	stopped(success)

	if err := l.store.AppendPlaySession(runCtx, plan.GameID, session); err != nil {
		log.Error().Err(err).Str("game", plan.GameID).Msg("failed to record play session")
		return success, fmt.Errorf("start game %q: record play session: %w", plan.GameID, err)
	}

	return success, nil
}
