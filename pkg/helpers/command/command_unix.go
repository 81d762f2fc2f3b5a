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

//go:build !windows

package command

import "syscall"

// sysProcAttr puts detached processes in a new session so they survive
// the launcher's terminal going away. HideWindow is ignored on Unix.
func sysProcAttr(opts StartOptions) *syscall.SysProcAttr {
	if !opts.Detached {
		return nil
	}
	return &syscall.SysProcAttr{Setsid: true}
}
