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

// Package mac implements the platform for the macOS build. The game is
// run from a private copy of the installed app bundle, kept next to the
// plugin runtime, so the signed original is never modified.
package mac

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/tcgl-launcher/pkg/bepinex"
	"github.com/ZaparooProject/tcgl-launcher/pkg/helpers/command"
	"github.com/ZaparooProject/tcgl-launcher/pkg/platforms"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/spf13/afero"
)

const (
	// DefaultInstallDir is where the App Store installs the game.
	DefaultInstallDir = "/Applications/Pokemon TCG Live.app"
	// Executable is the game binary inside an app bundle.
	Executable = "Contents/MacOS/Pokemon TCG Live"
	// ProcessName is matched against running processes.
	ProcessName = "Pokemon TCG Live"

	appBundleName = "Pokemon TCG Live.app"
)

// ProcessLister returns the executable paths or names of all running
// processes.
type ProcessLister func(ctx context.Context) ([]string, error)

// Options configures a Platform. Zero values pick the defaults.
type Options struct {
	Executor command.Executor
	// Processes lists running processes, gopsutil by default.
	Processes ProcessLister
	// AppDir is the launcher's own directory, holding bin/ and res/.
	AppDir string
	// ReferenceApp is the installed game the private copy is synced from.
	ReferenceApp string
}

type Platform struct {
	ps           *command.Probe
	processes    ProcessLister
	settings     platforms.Settings
	referenceApp string
}

//nolint:gocritic // options struct copied on construction
func NewPlatform(opts Options) *Platform {
	if opts.Executor == nil {
		opts.Executor = &command.RealExecutor{}
	}
	if opts.Processes == nil {
		opts.Processes = listProcesses
	}
	if opts.ReferenceApp == "" {
		opts.ReferenceApp = DefaultInstallDir
	}

	return &Platform{
		ps: command.NewProbe(opts.Executor, "ps", command.ProbeOptions{
			TestArgs: []string{"-A"},
		}),
		processes:    opts.Processes,
		settings:     platforms.BaseSettings(opts.AppDir),
		referenceApp: opts.ReferenceApp,
	}
}

func listProcesses(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck // logged by the caller
	}

	names := make([]string, 0, len(procs))
	for _, p := range procs {
		if exe, err := p.ExeWithContext(ctx); err == nil && exe != "" {
			names = append(names, exe)
			continue
		}
		if name, err := p.NameWithContext(ctx); err == nil {
			names = append(names, name)
		}
	}
	return names, nil
}

func (*Platform) ID() string {
	return platforms.PlatformIDMac
}

func (p *Platform) Settings() platforms.Settings {
	return p.settings
}

func (*Platform) Executable() string {
	return Executable
}

// GamePaths places the runtime in a sibling of the install directory,
// "Pokemon TCG Live.app" becoming "Pokemon TCG Live BepInEx", and the
// private game copy inside it. Install paths which are not app bundles
// have no game paths.
func (*Platform) GamePaths(installPath string) (platforms.GamePaths, bool) {
	if !strings.Contains(installPath, ".app") {
		return platforms.GamePaths{}, false
	}
	root := strings.Replace(installPath, ".app", " BepInEx", 1)
	return platforms.GamePaths{
		Root: root,
		App:  filepath.Join(root, appBundleName),
	}, true
}

func (*Platform) LoaderHooks(fs afero.Fs, app string) bepinex.Hooks {
	return bepinex.NewMacHooks(fs, app)
}

func (*Platform) NeedsVersionSync() bool {
	return true
}

func (p *Platform) DetectInstallDirectory(context.Context) string {
	return p.referenceApp
}

// IsGameRunning scans the process table, falling back to the output of
// ps when the table cannot be read.
func (p *Platform) IsGameRunning(ctx context.Context) bool {
	names, err := p.processes(ctx)
	if err == nil {
		for _, name := range names {
			if strings.Contains(name, ProcessName) {
				return true
			}
		}
		return false
	}
	log.Warn().Err(err).Msg("failed to list processes, falling back to ps")

	out, err := p.ps.Exec(ctx, "-A")
	if err != nil {
		log.Error().Err(err).Msg("failed to check if game is running")
		return false
	}
	return out.Status == 0 && strings.Contains(out.Stdout, ProcessName)
}

func (p *Platform) IsAvailable(ctx context.Context) bool {
	return p.ps.IsAvailable(ctx)
}

// CreateDesktopShortcut is a no-op, shortcuts are made with the Finder.
func (*Platform) CreateDesktopShortcut(context.Context, string, string) error {
	return nil
}

func (*Platform) GetShortcutTarget(context.Context, string) string {
	return ""
}

func (*Platform) ClearBuiltinBrowserCache() error {
	return platforms.ErrNotSupported
}
