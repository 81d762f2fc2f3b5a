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

// Package game prepares a game install for launching and starts it.
package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/tcgl-launcher/pkg/bepinex"
	"github.com/ZaparooProject/tcgl-launcher/pkg/helpers/command"
	"github.com/ZaparooProject/tcgl-launcher/pkg/platforms"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrEntryPointNotFound    = errors.New("game server entry point not found")
	ErrGamePathsNotFound     = errors.New("game paths not found")
	ErrSyncGameVersionFailed = errors.New("failed to sync game version")
	ErrSpawn                 = errors.New("failed to start game")
)

const (
	// ConnectorConfigFile is written to the mod root for third party
	// servers.
	ConnectorConfigFile = "config-noc.json"

	ConnectorPlugin = "Rainier.NativeOmukadeConnector"
	// LegacyProfileSwitcherPlugin was replaced by the account target
	// argument.
	LegacyProfileSwitcherPlugin = "PTCGLiveProfileSwitcher"
)

// basePlugins are installed on every launch.
var basePlugins = []string{
	"AssemblyNamePatcher",
	"PTCGLThirdServerLoaderExtension",
}

// Deps are the collaborators of a Launcher. Zero values pick the
// defaults.
type Deps struct {
	Fs       afero.Fs
	Platform platforms.Platform
	Executor command.Executor
	Versions bepinex.VersionReader
	// ResourcesDir holds dll/<plugin>.dll, the platform's resources dir by
	// default.
	ResourcesDir string
	TempDir      string
	Package      bepinex.PackageFiles
}

// Launcher starts the game with the plugin runtime prepared.
type Launcher struct {
	fs           afero.Fs
	pl           platforms.Platform
	exec         command.Executor
	versions     bepinex.VersionReader
	resourcesDir string
	tempDir      string
	pkg          bepinex.PackageFiles
}

//nolint:gocritic // deps struct copied on construction
func NewLauncher(deps Deps) *Launcher {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.Executor == nil {
		deps.Executor = &command.RealExecutor{}
	}
	if deps.ResourcesDir == "" {
		deps.ResourcesDir = deps.Platform.Settings().ResourcesDir
	}
	return &Launcher{
		fs:           deps.Fs,
		pl:           deps.Platform,
		exec:         deps.Executor,
		versions:     deps.Versions,
		resourcesDir: deps.ResourcesDir,
		tempDir:      deps.TempDir,
		pkg:          deps.Package,
	}
}

// IsInstallDirectory reports whether path contains the platform's game
// executable.
func IsInstallDirectory(fs afero.Fs, pl platforms.Platform, path string) bool {
	if strings.TrimSpace(path) == "" {
		return false
	}
	ok, err := afero.Exists(fs, filepath.Join(path, filepath.FromSlash(pl.Executable())))
	return err == nil && ok
}

func (l *Launcher) pluginLibrary(name string) string {
	return filepath.Join(l.resourcesDir, "dll", name+".dll")
}

func (l *Launcher) entryPoint(ctx context.Context, server *ServerOption) (string, error) {
	if server == nil || server.Identifier == "" || server.Publisher == nil {
		return OfficialServerIdentifier, nil
	}
	entry, err := server.Publisher.GetEntryPoint(ctx, server.Identifier)
	if err != nil {
		return "", fmt.Errorf("failed to resolve entry point of %s: %w", server.Identifier, err)
	}
	return entry, nil
}

// Start prepares the install in opt.InstallPath and spawns the game
// detached. Preparation steps run in a fixed order and the first failure
// is returned; nothing is rolled back except by the steps themselves.
//
//nolint:gocritic // option struct passed by value
func (l *Launcher) Start(ctx context.Context, opt Option) error {
	entry, err := l.entryPoint(ctx, opt.Server)
	if err != nil {
		return err
	}
	if entry == "" {
		return ErrEntryPointNotFound
	}
	official := entry == OfficialServerIdentifier

	paths, ok := l.pl.GamePaths(opt.InstallPath)
	if !ok {
		return fmt.Errorf("%w: %s", ErrGamePathsNotFound, opt.InstallPath)
	}

	if l.pl.NeedsVersionSync() {
		synced, err := l.pl.SyncGameVersion(ctx, paths.App)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSyncGameVersionFailed, err)
		}
		if !synced {
			return ErrSyncGameVersionFailed
		}
	}

	m, err := bepinex.NewManager(l.fs, paths.Root, bepinex.Options{
		AppPath:  paths.App,
		Hooks:    l.pl.LoaderHooks(l.fs, paths.App),
		Package:  l.pkg,
		Versions: l.versions,
		TempDir:  l.tempDir,
	})
	if err != nil {
		return fmt.Errorf("failed to open game install: %w", err)
	}

	if err := l.prepareRuntime(m, paths.Root); err != nil {
		return err
	}

	if !official {
		if err := l.prepareConnector(m, paths.Root, entry, opt.Has(FeatureUnlockAllBeautifyDesks)); err != nil {
			return err
		}
	}

	args := launchArgs(&opt, official)
	exe := filepath.Join(paths.App, filepath.FromSlash(l.pl.Executable()))

	log.Info().
		Str("exe", exe).
		Strs("args", args).
		Bool("official", official).
		Msg("starting game")

	err = l.exec.StartWithOptions(ctx, command.StartOptions{Detached: true}, exe, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	return nil
}

// prepareRuntime installs or upgrades the runtime and resets the plugin
// set to the one needed by an official launch.
func (l *Launcher) prepareRuntime(m *bepinex.Manager, root string) error {
	if !m.IsInstalled() || m.IsUpdatable() {
		if err := m.Install(); err != nil {
			return fmt.Errorf("failed to install bepinex: %w", err)
		}
	}

	for _, name := range basePlugins {
		if err := m.InstallPlugin(name, l.pluginLibrary(name)); err != nil {
			return err //nolint:wrapcheck // already names the plugin
		}
	}
	for _, name := range []string{LegacyProfileSwitcherPlugin, ConnectorPlugin} {
		if err := m.UninstallPlugin(name); err != nil {
			return fmt.Errorf("failed to uninstall plugin %s: %w", name, err)
		}
	}

	cfgPath := filepath.Join(root, ConnectorConfigFile)
	if err := l.fs.Remove(cfgPath); err != nil && !errors.Is(err, iofs.ErrNotExist) {
		return fmt.Errorf("failed to remove connector config: %w", err)
	}
	return nil
}

func (l *Launcher) prepareConnector(m *bepinex.Manager, root, entry string, cosmetics bool) error {
	if err := m.InstallPlugin(ConnectorPlugin, l.pluginLibrary(ConnectorPlugin)); err != nil {
		return err //nolint:wrapcheck // already names the plugin
	}

	data, err := json.Marshal(ConnectorConfig{
		OmukadeEndpoint:                 entry,
		EnableAllCosmetics:              cosmetics,
		ForceAllLegalityChecksToSucceed: true,
		AskServerForImplementedCards:    true,
	})
	if err != nil {
		return fmt.Errorf("failed to encode connector config: %w", err)
	}

	if err := afero.WriteFile(l.fs, filepath.Join(root, ConnectorConfigFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write connector config: %w", err)
	}
	return nil
}

func launchArgs(opt *Option, official bool) []string {
	var args []string
	if opt.Account != "" && opt.Account != DefaultAccountTarget {
		args = append(args, "--account-target", opt.Account)
	}
	if opt.Has(FeatureFixBuiltinBrowserError) {
		args = append(args, "--fix-builtin-browser-error")
	}
	if !official {
		args = append(args, "--enable-omukade")
	}
	return args
}
