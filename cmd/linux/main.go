//go:build linux

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
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/wadlauncher/internal/telemetry"
	"github.com/ZaparooProject/wadlauncher/pkg/cli"
	"github.com/ZaparooProject/wadlauncher/pkg/config"
	"github.com/ZaparooProject/wadlauncher/pkg/platforms/linux"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func run() error {
	pl := linux.NewPlatform()
	flags := cli.SetupFlags()

	quiet := flag.Bool(
		"quiet",
		false,
		"don't copy log output to stderr",
	)

	flags.Pre(pl)

	if os.Geteuid() == 0 {
		return errors.New("wadlauncher cannot be run as root")
	}

	var logWriters []io.Writer
	if !*quiet {
		logWriters = []io.Writer{os.Stderr}
	}

	cfg := cli.Setup(
		pl,
		config.BaseDefaults,
		logWriters,
	)
	defer telemetry.Close()

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	flags.Post(cfg, pl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cli.Serve(ctx, cfg, pl, cli.NewEnv(cfg, pl)); err != nil {
		log.Error().Err(err).Msg("error running api server")
		return fmt.Errorf("error running api server: %w", err)
	}
	return nil
}
