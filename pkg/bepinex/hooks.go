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
	"bytes"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrCompanionNotFound is returned when the module patched by the macOS
// loader does not exist in the game bundle.
var ErrCompanionNotFound = errors.New("loader companion not found")

// Hooks is the platform specific part of an install: the file the game's
// native loader picks up ahead of the genuine one, and on some platforms
// the genuine module it replaces.
type Hooks interface {
	// HookPath is the file which redirects the game into the runtime.
	HookPath() string
	// CompanionPath is the genuine module replaced by the hook, or empty
	// when the platform has none.
	CompanionPath() string
	// IsPatched reports whether the hook is currently applied.
	IsPatched() bool
	// Patch applies the hook using the loader files of pkg.
	Patch(pkg PackageFiles) error
	// Unpatch removes stale hook files.
	Unpatch() error
	// RemovesLegacyFiles reports whether loose files of the doorstop based
	// install must be deleted after extraction.
	RemovesLegacyFiles() bool
}

// WindowsHooks hijacks the DLL search order with a winhttp.dll placed next
// to the game executable. The file ships inside the runtime package, so
// patching is done by the extraction itself.
type WindowsHooks struct {
	fs      afero.Fs
	appPath string
}

// NewWindowsHooks returns the hooks for a Windows install in appPath.
func NewWindowsHooks(fs afero.Fs, appPath string) *WindowsHooks {
	return &WindowsHooks{fs: fs, appPath: appPath}
}

func (h *WindowsHooks) HookPath() string {
	return filepath.Join(h.appPath, "winhttp.dll")
}

func (*WindowsHooks) CompanionPath() string {
	return ""
}

func (h *WindowsHooks) IsPatched() bool {
	return exists(h.fs, h.HookPath())
}

func (*WindowsHooks) Patch(PackageFiles) error {
	return nil
}

func (*WindowsHooks) Unpatch() error {
	return nil
}

func (*WindowsHooks) RemovesLegacyFiles() bool {
	return false
}

const (
	macManagedDir = "Contents/Resources/Data/Managed"
	// MacPatchSignature is present in the companion module once it has
	// been replaced by the patched copy.
	MacPatchSignature = "Tobey.BepInEx.Bootstrap"
)

// MacHooks replaces UnityEngine.CoreModule.dll inside the app bundle with
// a patched copy which loads the bootstrap assembly placed beside it.
type MacHooks struct {
	fs      afero.Fs
	appPath string
}

// NewMacHooks returns the hooks for the app bundle at appPath.
func NewMacHooks(fs afero.Fs, appPath string) *MacHooks {
	return &MacHooks{fs: fs, appPath: appPath}
}

func (h *MacHooks) HookPath() string {
	return filepath.Join(h.appPath, filepath.FromSlash(macManagedDir), "Tobey.BepInEx.Bootstrap.dll")
}

func (h *MacHooks) CompanionPath() string {
	return filepath.Join(h.appPath, filepath.FromSlash(macManagedDir), "UnityEngine.CoreModule.dll")
}

func (h *MacHooks) backupPath() string {
	return h.CompanionPath() + ".orig"
}

// IsPatched scans the companion for the bootstrap signature. Read errors
// count as not patched.
func (h *MacHooks) IsPatched() bool {
	data, err := afero.ReadFile(h.fs, h.CompanionPath())
	if err != nil {
		return false
	}
	return bytes.Contains(data, []byte(MacPatchSignature))
}

// Patch backs up a genuine companion once, then copies the package's
// patched module and bootstrap loader into the bundle.
//
//nolint:gocritic // PackageFiles is passed by value throughout
func (h *MacHooks) Patch(pkg PackageFiles) error {
	companion := h.CompanionPath()
	if !exists(h.fs, companion) {
		return fmt.Errorf("%w: %s", ErrCompanionNotFound, companion)
	}

	if !h.IsPatched() && !exists(h.fs, h.backupPath()) {
		if err := copyFile(h.fs, companion, h.backupPath()); err != nil {
			return fmt.Errorf("failed to back up loader companion: %w", err)
		}
		log.Debug().Str("backup", h.backupPath()).Msg("backed up loader companion")
	}

	if err := copyFile(h.fs, pkg.LoaderCompanion, companion); err != nil {
		return fmt.Errorf("failed to install loader companion: %w", err)
	}
	if err := copyFile(h.fs, pkg.LoaderHook, h.HookPath()); err != nil {
		return fmt.Errorf("failed to install loader hook: %w", err)
	}

	return nil
}

// Unpatch cleans up after a companion that is not patched: hook and
// companion are removed and the backup, when present, is restored.
func (h *MacHooks) Unpatch() error {
	if h.IsPatched() {
		return nil
	}

	var errs []error
	if err := removeFile(h.fs, h.CompanionPath()); err != nil {
		errs = append(errs, err)
	}
	if err := removeFile(h.fs, h.HookPath()); err != nil {
		errs = append(errs, err)
	}

	if exists(h.fs, h.backupPath()) {
		if err := copyFile(h.fs, h.backupPath(), h.CompanionPath()); err != nil {
			errs = append(errs, fmt.Errorf("failed to restore loader companion: %w", err))
		} else if err := removeFile(h.fs, h.backupPath()); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (*MacHooks) RemovesLegacyFiles() bool {
	return true
}
