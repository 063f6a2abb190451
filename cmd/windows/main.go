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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/wadlauncher/internal/telemetry"
	"github.com/ZaparooProject/wadlauncher/pkg/cli"
	"github.com/ZaparooProject/wadlauncher/pkg/config"
	"github.com/ZaparooProject/wadlauncher/pkg/platforms/windows"
	"github.com/rs/zerolog/log"
)

func main() {
	pl := windows.NewPlatform()
	flags := cli.SetupFlags()

	flags.Pre(pl)

	defaults := config.BaseDefaults
	defaults.DebugLogging = true

	// started from Explorer there is no console, only the log file
	cfg := cli.Setup(pl, defaults, nil)

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	flags.Post(cfg, pl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.Serve(ctx, cfg, pl, cli.NewEnv(cfg, pl))
	stop()
	telemetry.Close()
	if err != nil {
		log.Error().Err(err).Msg("error running api server")
		_, _ = fmt.Fprintf(os.Stderr, "Error running api server: %s\n", err)
		os.Exit(1)
	}
}
