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
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// PackageFiles names the files the runtime is installed from.
type PackageFiles struct {
	// Core is the runtime package archive.
	Core string
	// LoaderHook is the macOS loader copied over the hook file.
	LoaderHook string
	// LoaderCompanion is the patched macOS module copied over the
	// companion file.
	LoaderCompanion string
}

// DefaultPackageFiles returns the package files relative to the working
// directory, used until startup overrides them.
func DefaultPackageFiles() PackageFiles {
	return PackageFiles{
		Core:            "BepInEx.zip",
		LoaderHook:      "Tobey.BepInEx.Bootstrap.dll",
		LoaderCompanion: "UnityEngine.CoreModule.dll",
	}
}

// WithOverrides returns a copy of p where every non-empty path of
// overrides that exists on fs replaces the current one. Missing paths
// are ignored and keep the previous value.
//
//nolint:gocritic // value semantics, built once at startup
func (p PackageFiles) WithOverrides(fs afero.Fs, overrides PackageFiles) PackageFiles {
	pick := func(current, candidate, field string) string {
		if candidate == "" {
			return current
		}
		if ok, err := afero.Exists(fs, candidate); err != nil || !ok {
			log.Warn().Str("field", field).Str("path", candidate).
				Msg("ignoring missing bepinex package file")
			return current
		}
		return candidate
	}

	return PackageFiles{
		Core:            pick(p.Core, overrides.Core, "core"),
		LoaderHook:      pick(p.LoaderHook, overrides.LoaderHook, "loader_hook"),
		LoaderCompanion: pick(p.LoaderCompanion, overrides.LoaderCompanion, "loader_companion"),
	}
}
