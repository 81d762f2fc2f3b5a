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

import "path/filepath"

const (
	// DirName is the directory created inside the mod root by the runtime
	// package.
	DirName = "BepInEx"
	// PackageCoreLibrary is the path of the core library inside the
	// runtime package archive.
	PackageCoreLibrary = "BepInEx/core/BepInEx.dll"
)

// Layout holds the paths of an installed runtime. It is derived from the
// mod root only.
type Layout struct {
	Root        string
	Config      string
	Core        string
	CoreLibrary string
	Plugins     string
}

// NewLayout returns the runtime layout below root.
func NewLayout(root string) Layout {
	base := filepath.Join(root, DirName)
	return Layout{
		Root:        base,
		Config:      filepath.Join(base, "config"),
		Core:        filepath.Join(base, "core"),
		CoreLibrary: filepath.Join(base, "core", "BepInEx.dll"),
		Plugins:     filepath.Join(base, "plugins"),
	}
}
