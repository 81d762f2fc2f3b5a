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

package config

func (c *Instance) GameInstallDirectory() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Launcher.GameInstallDirectory
}

func (c *Instance) SetGameInstallDirectory(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Launcher.GameInstallDirectory = path
}

// PublishServerIdentifier returns the selected publish server, if any.
func (c *Instance) PublishServerIdentifier() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Launcher.PublishServerIdentifier
}

func (c *Instance) SetPublishServerIdentifier(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Launcher.PublishServerIdentifier = id
}

func (c *Instance) FixBuiltinBrowserError() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Launcher.FixBuiltinBrowserError
}

func (c *Instance) SetFixBuiltinBrowserError(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Launcher.FixBuiltinBrowserError = enabled
}

func (c *Instance) UnlockAllBeautifyDesks() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Launcher.UnlockAllBeautifyDesks
}

func (c *Instance) SetUnlockAllBeautifyDesks(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Launcher.UnlockAllBeautifyDesks = enabled
}

func (c *Instance) TermsOfUseVersion() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Launcher.TermsOfUseVersion
}

func (c *Instance) SetTermsOfUseVersion(v int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Launcher.TermsOfUseVersion = v
}

func (c *Instance) UpdateURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Launcher.UpdateURL
}

func (c *Instance) SetUpdateURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Launcher.UpdateURL = url
}

func (c *Instance) Package() Package {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Package
}

func (c *Instance) SetPackage(p Package) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Package = p
}
