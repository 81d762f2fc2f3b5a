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

// Package bepinex installs, upgrades and removes the BepInEx plugin
// runtime inside a game installation, and manages the plugins loaded by
// it.
package bepinex

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ZaparooProject/tcgl-launcher/pkg/archive"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrRootNotFound is returned when the mod root directory does not exist.
var ErrRootNotFound = errors.New("bepinex root not found")

// legacyTopFiles are loose files of the doorstop based install which are
// left in the mod root by the runtime package.
var legacyTopFiles = []string{
	".doorstop_version",
	"changelog.txt",
	"doorstop_config.ini",
	"libdoorstop.dylib",
	"run_bepinex.sh",
	"winhttp.dll",
}

// Options configures a Manager. Zero values pick the defaults.
type Options struct {
	// Hooks is the platform hook strategy, WindowsHooks on AppPath by
	// default.
	Hooks Hooks
	// Versions reads library versions, PEVersionReader by default.
	Versions VersionReader
	// AppPath locates the game binary, the mod root by default.
	AppPath string
	// TempDir receives scratch files, os.TempDir() by default.
	TempDir string
	// Package names the files installed from, DefaultPackageFiles() by
	// default.
	Package PackageFiles
}

// Manager manages the runtime installed in one mod root.
type Manager struct {
	fs       afero.Fs
	hooks    Hooks
	versions VersionReader
	root     string
	appPath  string
	tempDir  string
	pkg      PackageFiles
	layout   Layout
}

// NewManager returns a Manager for the mod root at root.
//
//nolint:gocritic // options struct copied on construction
func NewManager(fs afero.Fs, root string, opts Options) (*Manager, error) {
	root = filepath.Clean(root)
	if !exists(fs, root) {
		return nil, fmt.Errorf("%w: %s", ErrRootNotFound, root)
	}

	appPath := root
	if opts.AppPath != "" {
		appPath = filepath.Clean(opts.AppPath)
	}

	m := &Manager{
		fs:       fs,
		root:     root,
		appPath:  appPath,
		hooks:    opts.Hooks,
		versions: opts.Versions,
		tempDir:  opts.TempDir,
		pkg:      opts.Package,
		layout:   NewLayout(root),
	}

	if m.hooks == nil {
		m.hooks = NewWindowsHooks(fs, appPath)
	}
	if m.versions == nil {
		m.versions = PEVersionReader{}
	}
	if m.tempDir == "" {
		m.tempDir = os.TempDir()
	}
	if m.pkg == (PackageFiles{}) {
		m.pkg = DefaultPackageFiles()
	}

	return m, nil
}

// Layout returns the runtime paths of the mod root.
func (m *Manager) Layout() Layout {
	return m.layout
}

// Hooks returns the platform hook strategy in use.
func (m *Manager) Hooks() Hooks {
	return m.hooks
}

// IsInstalled reports whether the core library and the hook file exist
// and the hook is applied.
func (m *Manager) IsInstalled() bool {
	if !exists(m.fs, m.layout.CoreLibrary) || !exists(m.fs, m.hooks.HookPath()) {
		return false
	}
	return m.hooks.IsPatched()
}

// IsUpdatable reports whether the package archive carries a newer core
// library than the installed one. Inspection errors are logged and
// reported as not updatable.
func (m *Manager) IsUpdatable() bool {
	if !m.IsInstalled() || !exists(m.fs, m.pkg.Core) {
		return false
	}

	updatable, err := m.checkUpdatable()
	if err != nil {
		log.Error().Err(err).Str("root", m.root).Msg("failed to check bepinex update")
		return false
	}
	return updatable
}

func (m *Manager) checkUpdatable() (bool, error) {
	local, err := m.versions.FileVersion(m.fs, m.layout.CoreLibrary)
	if err != nil {
		return false, fmt.Errorf("failed to read installed version: %w", err)
	}

	tmp := filepath.Join(m.tempDir, "BepInEx-core-"+uuid.NewString())
	defer func() {
		if err := removeFile(m.fs, tmp); err != nil {
			log.Warn().Err(err).Msg("failed to remove temporary core library")
		}
	}()

	if err := m.fs.MkdirAll(m.tempDir, 0o755); err != nil {
		return false, fmt.Errorf("failed to create temp dir: %w", err)
	}
	if err := archive.ExtractOne(m.fs, m.pkg.Core, PackageCoreLibrary, tmp); err != nil {
		return false, fmt.Errorf("failed to extract packaged core library: %w", err)
	}

	remote, err := m.versions.FileVersion(m.fs, tmp)
	if err != nil {
		return false, fmt.Errorf("failed to read packaged version: %w", err)
	}

	cmp, err := CompareVersions(remote, local)
	if err != nil {
		return false, err
	}

	log.Debug().
		Str("installed", local).
		Str("packaged", remote).
		Msg("compared bepinex versions")

	return cmp > 0, nil
}

// Install extracts the runtime package into the mod root and applies the
// platform hook. On failure the partial install is rolled back, keeping
// installed plugins, and the original error is returned.
func (m *Manager) Install() error {
	if err := m.install(); err != nil {
		m.rollback(err)
		return err
	}
	log.Info().Str("root", m.root).Msg("installed bepinex")
	return nil
}

func (m *Manager) install() error {
	if err := archive.ExtractAll(m.fs, m.pkg.Core, m.root); err != nil {
		return fmt.Errorf("failed to extract bepinex package: %w", err)
	}

	if m.hooks.RemovesLegacyFiles() {
		if failed := m.removeTopFiles(); len(failed) > 0 {
			return fmt.Errorf("failed to remove legacy files: %v", failed)
		}
	}

	if err := m.hooks.Patch(m.pkg); err != nil {
		return fmt.Errorf("failed to apply loader hook: %w", err)
	}

	return nil
}

func (m *Manager) rollback(cause error) {
	log.Error().Err(cause).Str("root", m.root).Msg("bepinex install failed, rolling back")
	if failed := m.Uninstall(false); len(failed) > 0 {
		log.Error().Strs("paths", failed).Msg("bepinex rollback incomplete")
	}
}

func (m *Manager) removeTopFiles() []string {
	var failed []string
	for _, name := range legacyTopFiles {
		path := filepath.Join(m.root, name)
		if err := removeFile(m.fs, path); err != nil {
			log.Warn().Err(err).Msg("failed to remove legacy file")
			failed = append(failed, path)
		}
	}
	return failed
}

// Uninstall removes the runtime. Only the core directory is removed
// unless withPlugins is set, in which case the whole BepInEx directory
// goes. It never fails; the paths which could not be removed are returned
// for diagnostics.
func (m *Manager) Uninstall(withPlugins bool) []string {
	failed := m.removeTopFiles()

	if err := m.hooks.Unpatch(); err != nil {
		log.Warn().Err(err).Msg("failed to remove loader hook")
		failed = append(failed, m.hooks.HookPath())
	}

	target := m.layout.Core
	if withPlugins {
		target = m.layout.Root
	}
	if err := m.fs.RemoveAll(target); err != nil {
		log.Warn().Err(err).Str("path", target).Msg("failed to remove bepinex files")
		failed = append(failed, target)
	}

	log.Info().
		Str("root", m.root).
		Bool("plugins", withPlugins).
		Int("failed", len(failed)).
		Msg("uninstalled bepinex")

	return failed
}
