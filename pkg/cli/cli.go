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

package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ZaparooProject/wadlauncher/internal/telemetry"
	"github.com/ZaparooProject/wadlauncher/pkg/api"
	"github.com/ZaparooProject/wadlauncher/pkg/api/models"
	"github.com/ZaparooProject/wadlauncher/pkg/api/notifications"
	"github.com/ZaparooProject/wadlauncher/pkg/config"
	"github.com/ZaparooProject/wadlauncher/pkg/database/catalog"
	"github.com/ZaparooProject/wadlauncher/pkg/helpers"
	"github.com/ZaparooProject/wadlauncher/pkg/launcher"
	"github.com/ZaparooProject/wadlauncher/pkg/platforms"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

type Flags struct {
	Version        *bool
	Init           *bool
	List           *bool
	Known          *bool
	Start          *string
	Command        *string
	Sessions       *string
	ExportSessions *bool
}

// SetupFlags defines all common CLI flags between platforms.
func SetupFlags() *Flags {
	return &Flags{
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
		Init: flag.Bool(
			"init",
			false,
			"create the library directories and exit",
		),
		List: flag.Bool(
			"list",
			false,
			"list games in the library",
		),
		Known: flag.Bool(
			"known",
			false,
			"list supported source port engines",
		),
		Start: flag.String(
			"start",
			"",
			"launch a game by ID and wait for it to exit",
		),
		Command: flag.String(
			"command",
			"",
			"print the command line used to launch a game",
		),
		Sessions: flag.String(
			"sessions",
			"",
			"print play sessions of a game",
		),
		ExportSessions: flag.Bool(
			"export-sessions",
			false,
			"write play sessions of all games to stdout as CSV",
		),
	}
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// Pre runs flag parsing and actions any immediate flags that don't
// require environment setup. Add any custom flags before running this.
func (f *Flags) Pre(pl platforms.Platform) {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("%s v%s (%s)\n", config.DisplayName, config.AppVersion, pl.ID())
		os.Exit(0)
	}
}

// Env is the library and launcher built from a loaded config.
type Env struct {
	Catalog  *catalog.Catalog
	Launcher *launcher.Launcher
}

// NewEnv opens the library at the configured data directory on the real
// file system.
func NewEnv(cfg *config.Instance, pl platforms.Platform) *Env {
	cat := catalog.New(afero.NewOsFs(), helpers.DataDir(cfg, pl))
	return &Env{
		Catalog:  cat,
		Launcher: launcher.New(cat, pl, launcher.WithDedupeIWADFrom(cfg.DedupeIWAD)),
	}
}

func requireValue(name, value string) {
	if value == "" {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s flag requires a value\n", name)
		os.Exit(1)
	}
}

func exitOn(err error, msg string) {
	if err != nil {
		log.Error().Err(err).Msg(msg)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		telemetry.Close()
		os.Exit(1)
	}
	telemetry.Close()
	os.Exit(0)
}

// Post actions all remaining common flags that require the environment to be
// set up. Logging is allowed. Returns without exiting if no action flag was
// passed.
func (f *Flags) Post(cfg *config.Instance, pl platforms.Platform) {
	ctx := context.Background()
	env := NewEnv(cfg, pl)

	switch {
	case *f.Init:
		exitOn(env.Catalog.InitDirectories(), "error creating library directories")
	case *f.List:
		exitOn(ListGames(ctx, os.Stdout, env.Catalog), "error listing games")
	case *f.Known:
		exitOn(ListKnown(os.Stdout, env.Catalog.MetaDirectory()), "error listing source ports")
	case isFlagPassed("start"):
		requireValue("start", *f.Start)
		exitOn(StartGame(ctx, os.Stdout, env.Launcher, env.Catalog, *f.Start), "error starting game")
	case isFlagPassed("command"):
		requireValue("command", *f.Command)
		exitOn(PrintCommand(ctx, os.Stdout, env.Launcher, env.Catalog, *f.Command), "error planning game")
	case isFlagPassed("sessions"):
		requireValue("sessions", *f.Sessions)
		exitOn(PrintSessions(ctx, os.Stdout, env.Catalog, *f.Sessions), "error reading play sessions")
	case *f.ExportSessions:
		exitOn(ExportSessions(ctx, os.Stdout, env.Catalog), "error exporting play sessions")
	}
}

// Setup initializes the user config and logging. Returns a user config object.
//
//nolint:gocritic // config struct copied for immutability
func Setup(
	pl platforms.Platform,
	defaultConfig config.Values,
	writers []io.Writer,
) *config.Instance {
	// Ensure directories exist before logging initialization
	err := helpers.EnsureDirectories(pl)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error creating directories: %v\n", err)
		os.Exit(1)
	}

	err = helpers.InitLogging(pl, writers)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(pl), defaultConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Initialize error reporting (opt-in)
	if err := telemetry.Init(telemetry.OptionsFromConfig(cfg, pl.ID())); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg
}

// notificationQueue is how many notifications can wait for the websocket
// broadcaster before new ones are dropped.
const notificationQueue = 32

// Serve runs the API server until ctx is cancelled.
func Serve(ctx context.Context, cfg *config.Instance, pl platforms.Platform, env *Env) error {
	ns := make(chan models.Notification, notificationQueue)
	svc := &api.Services{
		Platform:      pl,
		Config:        cfg,
		Catalog:       env.Catalog,
		Launcher:      env.Launcher,
		Notifications: ns,
	}
	defer telemetry.Flush()

	stopWatch, err := env.Catalog.WatchGames(ctx, catalog.WatchDebounce, func() {
		notifications.GamesChanged(ns)
	})
	if err != nil {
		// library may not be initialized yet, clients can still refresh by hand
		log.Warn().Err(err).Msg("games directory will not be watched")
	} else {
		defer func() {
			if err := stopWatch(); err != nil {
				log.Warn().Err(err).Msg("error stopping games directory watcher")
			}
		}()
	}

	return api.Start(ctx, svc, ns)
}
