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

// Package platforms describes how the launcher finds, prepares and
// inspects the game on each supported operating system.
package platforms

import (
	"context"
	"errors"

	"github.com/ZaparooProject/tcgl-launcher/pkg/bepinex"
	"github.com/spf13/afero"
)

var ErrNotSupported = errors.New("operation not supported on this platform")

const (
	PlatformIDMac     = "mac"
	PlatformIDWindows = "windows"
)

// AppName is the directory name used below the per-user data, config and
// log directories.
const AppName = "tcgl-launcher"

// Settings defines all simple settings/configuration values available for a
// platform.
type Settings struct {
	// DataDir is where downloaded and generated files are permanently
	// stored.
	DataDir string
	// ConfigDir is the directory holding the config file.
	ConfigDir string
	// LogDir receives the rotated log files. Expect it to be deleted.
	LogDir string
	// BinDir holds helper executables shipped with the launcher.
	BinDir string
	// ResourcesDir holds the runtime package and the plugin libraries.
	ResourcesDir string
}

// GamePaths are the two directories a launch works on. Root receives the
// plugin runtime, App contains the game executable. They are the same
// directory on Windows.
type GamePaths struct {
	Root string
	App  string
}

// Platform is the central interface that defines how the launcher interacts
// with a supported operating system.
type Platform interface {
	// ID returns the unique ID of this platform.
	ID() string
	// Settings returns all simple platform-specific settings such as paths.
	Settings() Settings
	// Executable is the game binary relative to GamePaths.App.
	Executable() string
	// GamePaths derives the launch directories from a game install
	// directory. It returns false when no directories can be derived.
	GamePaths(installPath string) (GamePaths, bool)
	// LoaderHooks returns the plugin runtime hook strategy for the game
	// in app.
	LoaderHooks(fs afero.Fs, app string) bepinex.Hooks
	// NeedsVersionSync reports whether the game is run from a private copy
	// which must be synced with the installed game before each launch.
	NeedsVersionSync() bool
	// SyncGameVersion brings the private copy at target up to date with
	// the installed game. It returns whether the copy is launchable.
	SyncGameVersion(ctx context.Context, target string) (bool, error)
	// DetectInstallDirectory returns the game install directory, or an
	// empty string when it could not be found.
	DetectInstallDirectory(ctx context.Context) string
	// IsGameRunning reports whether a game process is alive.
	IsGameRunning(ctx context.Context) bool
	// IsAvailable reports whether the helper tools the platform depends on
	// can be run.
	IsAvailable(ctx context.Context) bool
	// CreateDesktopShortcut places a shortcut called name which opens
	// target on the user's desktop.
	CreateDesktopShortcut(ctx context.Context, name, target string) error
	// GetShortcutTarget resolves a shortcut file, returning an empty string
	// when it could not be resolved.
	GetShortcutTarget(ctx context.Context, shortcut string) string
	// ClearBuiltinBrowserCache deletes the cache of the browser embedded in
	// the game.
	ClearBuiltinBrowserCache() error
}
