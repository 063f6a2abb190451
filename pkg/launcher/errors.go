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
	"errors"
	"fmt"
)

// Kind classifies why a launch failed.
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindMisconfigured
	KindPlatformResolution
	KindProcessSpawn
)

// Sentinels matching each Kind with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrMisconfigured      = errors.New("misconfigured")
	ErrPlatformResolution = errors.New("platform resolution failed")
	ErrProcessSpawn       = errors.New("process spawn failed")
)

func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrNotFound
	case KindMisconfigured:
		return ErrMisconfigured
	case KindPlatformResolution:
		return ErrPlatformResolution
	case KindProcessSpawn:
		return ErrProcessSpawn
	default:
		return nil
	}
}

func (k Kind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is returned for every launch that could not reach the point of
// the game running. The message always names the game.
type Error struct {
	Err    error
	GameID string
	Msg    string
	Kind   Kind
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("start game %q: %s", e.GameID, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

func newError(kind Kind, gameID string, err error, format string, args ...any) *Error {
	return &Error{
		Kind:   kind,
		GameID: gameID,
		Msg:    fmt.Sprintf(format, args...),
		Err:    err,
	}
}
