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

package helpers

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/ZaparooProject/tcgl-launcher/pkg/platforms"
)

const (
	// AppEnv overrides the executable path used to find a portable user
	// directory.
	AppEnv = "TCGL_APP"
	// UserDir is the portable data directory kept beside the executable.
	UserDir = "user"
)

var (
	userDirOnce   sync.Once
	userDirCache  string
	userDirExists bool
)

func ExeDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}

	return filepath.Dir(exe)
}

// FindUserDir returns the "user" directory next to exePath when it exists.
func FindUserDir(exePath string) (string, bool) {
	userDir := filepath.Join(filepath.Dir(exePath), UserDir)
	info, err := os.Stat(userDir)
	if err != nil || !info.IsDir() {
		return "", false
	}
	return userDir, true
}

// HasUserDir checks for a "user" directory beside the launcher executable
// and returns its path. When present it holds every platform directory,
// for a portable install. The result is cached after the first call.
func HasUserDir() (string, bool) {
	userDirOnce.Do(func() {
		exe := os.Getenv(AppEnv)
		if exe == "" {
			var err error
			exe, err = os.Executable()
			if err != nil {
				return
			}
		}
		userDirCache, userDirExists = FindUserDir(exe)
	})

	return userDirCache, userDirExists
}

func ConfigDir(pl platforms.Platform) string {
	if v, ok := HasUserDir(); ok {
		return v
	}
	return pl.Settings().ConfigDir
}

func DataDir(pl platforms.Platform) string {
	if v, ok := HasUserDir(); ok {
		return v
	}
	return pl.Settings().DataDir
}
