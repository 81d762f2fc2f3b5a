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

package bepinex

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ZaparooProject/tcgl-launcher/pkg/archive"
	"github.com/rs/zerolog/log"
)

var (
	// ErrSourceNotFound is returned when a plugin source does not exist.
	ErrSourceNotFound = errors.New("plugin source not found")
	// ErrUnsupportedSource is returned when a plugin source is neither a
	// directory nor a regular file.
	ErrUnsupportedSource = errors.New("unsupported plugin source file type")
)

// GetPluginDir returns the directory of the named plugin, if it exists.
func (m *Manager) GetPluginDir(name string) (string, bool) {
	dir := filepath.Join(m.layout.Plugins, name)
	info, err := m.fs.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return dir, true
}

// GetPluginDll returns the library of the named plugin, looked up first
// directly in the plugins directory and then inside the plugin's own
// directory.
func (m *Manager) GetPluginDll(name string) (string, bool) {
	dll := filepath.Join(m.layout.Plugins, name+".dll")
	if exists(m.fs, dll) {
		return dll, true
	}
	dllInDir := filepath.Join(m.layout.Plugins, name, name+".dll")
	if exists(m.fs, dllInDir) {
		return dllInDir, true
	}
	return "", false
}

// PluginInstalled reports whether the named plugin's library exists.
func (m *Manager) PluginInstalled(name string) bool {
	_, ok := m.GetPluginDll(name)
	return ok
}

// InstallPlugin installs the plugin name from source. A directory source
// has its contents copied into plugins/<name>/, a zip file is extracted
// there, and any other file is copied to plugins/<name><ext>. Existing
// files are overwritten. On failure the plugin is removed again.
func (m *Manager) InstallPlugin(name, source string) error {
	info, err := m.fs.Stat(source)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceNotFound, err)
	}

	pluginDir := filepath.Join(m.layout.Plugins, name)

	switch {
	case info.IsDir():
		if err := m.fs.MkdirAll(pluginDir, 0o755); err != nil {
			return fmt.Errorf("failed to create plugin directory: %w", err)
		}
		if err := copyDirContents(m.fs, source, pluginDir); err != nil {
			return m.abortPlugin(name, err)
		}
	case info.Mode().IsRegular() && archive.IsZip(source):
		if err := m.fs.MkdirAll(pluginDir, 0o755); err != nil {
			return fmt.Errorf("failed to create plugin directory: %w", err)
		}
		if err := archive.ExtractAll(m.fs, source, pluginDir); err != nil {
			return m.abortPlugin(name, err)
		}
	case info.Mode().IsRegular():
		dst := filepath.Join(m.layout.Plugins, name+filepath.Ext(source))
		if err := copyFile(m.fs, source, dst); err != nil {
			return m.abortPlugin(name, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedSource, source)
	}

	log.Debug().Str("plugin", name).Str("source", source).Msg("installed plugin")
	return nil
}

func (m *Manager) abortPlugin(name string, cause error) error {
	if err := m.UninstallPlugin(name); err != nil {
		log.Error().Err(err).Str("plugin", name).Msg("failed to clean up plugin")
	}
	return fmt.Errorf("failed to install plugin %s: %w", name, cause)
}

// UninstallPlugin removes the plugin's library and its directory,
// whichever exist.
func (m *Manager) UninstallPlugin(name string) error {
	if dll, ok := m.GetPluginDll(name); ok {
		if err := m.fs.Remove(dll); err != nil {
			return fmt.Errorf("failed to remove plugin library: %w", err)
		}
	}
	if dir, ok := m.GetPluginDir(name); ok {
		if err := m.fs.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to remove plugin directory: %w", err)
		}
	}
	return nil
}
