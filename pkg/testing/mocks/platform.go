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

package mocks

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/wadlauncher/pkg/platforms"
	"github.com/stretchr/testify/mock"
)

// MockPlatform is a mock implementation of the Platform interface using testify/mock
type MockPlatform struct {
	mock.Mock
	revealed []string // Track revealed paths for verification
}

var _ platforms.Platform = (*MockPlatform)(nil)

// ID returns the unique ID of this platform
func (m *MockPlatform) ID() string {
	args := m.Called()
	return args.String(0)
}

// Settings returns all simple platform-specific settings such as paths
func (m *MockPlatform) Settings() platforms.Settings {
	args := m.Called()
	if settings, ok := args.Get(0).(platforms.Settings); ok {
		return settings
	}
	return platforms.Settings{}
}

func (m *MockPlatform) ResolveExecutable(path string) (string, error) {
	args := m.Called(path)
	if err := args.Error(1); err != nil {
		return "", fmt.Errorf("mock platform resolve executable failed: %w", err)
	}
	if fn, ok := args.Get(0).(func(string) string); ok {
		return fn(path), nil
	}
	return args.String(0), nil
}

func (m *MockPlatform) RevealPath(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock platform reveal failed: %w", err)
	}
	m.revealed = append(m.revealed, path)
	return nil
}

// GetRevealedPaths returns a slice of all paths that were revealed
func (m *MockPlatform) GetRevealedPaths() []string {
	return append([]string(nil), m.revealed...) // Return a copy
}

// NewMockPlatform creates a new MockPlatform instance
func NewMockPlatform() *MockPlatform {
	return &MockPlatform{
		revealed: make([]string, 0),
	}
}

// SetupBasicMock configures the mock with typical default values: a fixed
// ID, empty settings, executables passed through unchanged and reveals
// that succeed.
func (m *MockPlatform) SetupBasicMock() {
	m.On("ID").Return("mock-platform").Maybe()
	m.On("Settings").Return(platforms.Settings{}).Maybe()
	m.On("ResolveExecutable", mock.AnythingOfType("string")).Return(
		func(path string) string { return path }, nil,
	).Maybe()
	m.On("RevealPath", mock.Anything, mock.AnythingOfType("string")).Return(nil).Maybe()
}
