// TCGL Launcher
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of TCGL Launcher.
//
// TCGL Launcher is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// TCGL Launcher is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with TCGL Launcher.  If not, see <http://www.gnu.org/licenses/>.

package mocks

import (
	"context"
	"fmt"

	"github.com/ZaparooProject/tcgl-launcher/pkg/bepinex"
	"github.com/ZaparooProject/tcgl-launcher/pkg/platforms"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/mock"
)

// MockPlatform is a mock implementation of the Platform interface using testify/mock
type MockPlatform struct {
	mock.Mock
}

// NewMockPlatform creates a new MockPlatform instance
func NewMockPlatform() *MockPlatform {
	return &MockPlatform{}
}

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

// Executable returns the game binary relative to the app directory
func (m *MockPlatform) Executable() string {
	args := m.Called()
	return args.String(0)
}

// GamePaths derives the launch directories from an install directory
func (m *MockPlatform) GamePaths(installPath string) (platforms.GamePaths, bool) {
	args := m.Called(installPath)
	paths, _ := args.Get(0).(platforms.GamePaths)
	return paths, args.Bool(1)
}

// LoaderHooks returns the configured hooks, or the Windows hooks for app
// when none were configured.
func (m *MockPlatform) LoaderHooks(fs afero.Fs, app string) bepinex.Hooks {
	args := m.Called(fs, app)
	if hooks, ok := args.Get(0).(bepinex.Hooks); ok {
		return hooks
	}
	return bepinex.NewWindowsHooks(fs, app)
}

// NeedsVersionSync reports whether the game copy must be synced
func (m *MockPlatform) NeedsVersionSync() bool {
	args := m.Called()
	return args.Bool(0)
}

// SyncGameVersion syncs the game copy at target
func (m *MockPlatform) SyncGameVersion(ctx context.Context, target string) (bool, error) {
	args := m.Called(ctx, target)
	if err := args.Error(1); err != nil {
		return args.Bool(0), fmt.Errorf("mock platform sync failed: %w", err)
	}
	return args.Bool(0), nil
}

// DetectInstallDirectory returns the game install directory
func (m *MockPlatform) DetectInstallDirectory(ctx context.Context) string {
	args := m.Called(ctx)
	return args.String(0)
}

// IsGameRunning reports whether the game is running
func (m *MockPlatform) IsGameRunning(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// IsAvailable reports whether the platform helpers can be run
func (m *MockPlatform) IsAvailable(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

// CreateDesktopShortcut creates a desktop shortcut
func (m *MockPlatform) CreateDesktopShortcut(ctx context.Context, name, target string) error {
	args := m.Called(ctx, name, target)
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// GetShortcutTarget resolves a shortcut file
func (m *MockPlatform) GetShortcutTarget(ctx context.Context, shortcut string) string {
	args := m.Called(ctx, shortcut)
	return args.String(0)
}

// ClearBuiltinBrowserCache deletes the embedded browser cache
func (m *MockPlatform) ClearBuiltinBrowserCache() error {
	args := m.Called()
	if err := args.Error(0); err != nil {
		return fmt.Errorf("mock operation failed: %w", err)
	}
	return nil
}

// SetupBasicMock configures the mock as a Windows-like platform whose
// game is installed in installPath and whose resources live in
// resourcesDir.
func (m *MockPlatform) SetupBasicMock(installPath, resourcesDir string) {
	m.On("ID").Return("mock-platform").Maybe()
	m.On("Settings").Return(platforms.Settings{
		DataDir:      "/mock/data",
		ConfigDir:    "/mock/config",
		LogDir:       "/mock/logs",
		BinDir:       "/mock/bin",
		ResourcesDir: resourcesDir,
	}).Maybe()
	m.On("Executable").Return("Pokemon TCG Live.exe").Maybe()
	m.On("GamePaths", installPath).
		Return(platforms.GamePaths{Root: installPath, App: installPath}, true).Maybe()
	m.On("LoaderHooks", mock.Anything, mock.Anything).Return(nil).Maybe()
	m.On("NeedsVersionSync").Return(false).Maybe()
}
