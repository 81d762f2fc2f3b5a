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

package platforms

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// BaseSettings returns the settings shared by every platform. Helper
// binaries and resources are looked up beside the launcher executable, or
// below appDir when it is not empty.
func BaseSettings(appDir string) Settings {
	if appDir == "" {
		if exe, err := os.Executable(); err == nil {
			appDir = filepath.Dir(exe)
		}
	}
	return Settings{
		DataDir:      filepath.Join(xdg.DataHome, AppName),
		ConfigDir:    filepath.Join(xdg.ConfigHome, AppName),
		LogDir:       filepath.Join(os.TempDir(), AppName),
		BinDir:       filepath.Join(appDir, "bin"),
		ResourcesDir: filepath.Join(appDir, "res"),
	}
}
