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

import "slices"

// Accounts returns a copy of the stored play accounts.
func (c *Instance) Accounts() []PlayAccount {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.Accounts)
}

func (c *Instance) SetAccounts(accounts []PlayAccount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Accounts = slices.Clone(accounts)
}

// PublishServers returns a copy of the stored publish servers. A nil
// result means the list has never been written.
func (c *Instance) PublishServers() []PublishServer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.vals.PublishServers)
}

func (c *Instance) SetPublishServers(servers []PublishServer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.PublishServers = slices.Clone(servers)
}

// UpdatePublishServers applies fn to the stored publish servers under a
// single write lock, so read-modify-write callers cannot interleave.
func (c *Instance) UpdatePublishServers(fn func([]PublishServer) ([]PublishServer, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := fn(slices.Clone(c.vals.PublishServers))
	if err != nil {
		return err
	}
	c.vals.PublishServers = next
	return nil
}

// UpdateAccounts applies fn to the stored play accounts under a single
// write lock.
func (c *Instance) UpdateAccounts(fn func([]PlayAccount) ([]PlayAccount, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := fn(slices.Clone(c.vals.Accounts))
	if err != nil {
		return err
	}
	c.vals.Accounts = next
	return nil
}
