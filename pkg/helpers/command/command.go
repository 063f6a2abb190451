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

// Package command provides an abstraction over exec.Command for testability.
package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ExitError is returned by Run when the process was started but exited
// with a non-zero status. Any other error from Run means the process never
// ran.
type ExitError struct {
	Err  error
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process exited with status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Executor provides an abstraction over exec.Command for testability.
// This allows commands to be mocked in tests without executing real system commands.
type Executor interface {
	// Run executes a command attached to the current process's stdio and
	// waits for it to complete. A non-zero exit is reported as *ExitError.
	Run(ctx context.Context, name string, args ...string) error

	// Start starts a command without waiting for it to complete (fire-and-forget).
	// Returns an error if the command fails to start.
	Start(ctx context.Context, name string, args ...string) error
}

// RealExecutor uses actual exec.Command to execute system commands.
// This is the production implementation used in normal operation.
type RealExecutor struct{}

func (*RealExecutor) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Code: exitErr.ExitCode(), Err: exitErr}
	}
	//nolint:wrapcheck // Wrapping exec errors loses important context
	return err
}

// Start starts a command without waiting for it to complete. The child is
// reaped in the background so it doesn't linger as a zombie.
func (*RealExecutor) Start(ctx context.Context, name string, args ...string) error {
	return start(exec.CommandContext(ctx, name, args...))
}

func start(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		//nolint:wrapcheck // Wrapping exec errors loses important context
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

// ExitCode returns the exit status carried by err if it is an *ExitError.
func ExitCode(err error) (int, bool) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code, true
	}
	return 0, false
}
