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

// Package cache holds single values for a limited time.
package cache

import (
	"time"

	"github.com/ZaparooProject/tcgl-launcher/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
)

// NoExpiry makes a cached value valid forever.
const NoExpiry time.Duration = -1

// Cache holds one value of type T along with the time it was stored.
// It is safe for concurrent use.
type Cache[T any] struct {
	clock     clockwork.Clock
	timestamp time.Time
	data      T
	ttl       time.Duration
	mu        syncutil.RWMutex
	set       bool
}

// New returns an empty cache whose values expire after ttl. A nil clock
// uses the real clock.
func New[T any](ttl time.Duration, clock clockwork.Clock) *Cache[T] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache[T]{ttl: ttl, clock: clock}
}

// NewWith returns a cache already holding data, stored now.
func NewWith[T any](data T, ttl time.Duration, clock clockwork.Clock) *Cache[T] {
	c := New[T](ttl, clock)
	c.Set(data, true)
	return c
}

// TTL returns the lifetime of stored values.
func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}

// Expired reports whether nothing is stored or the stored value is older
// than the TTL.
func (c *Cache[T]) Expired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expired()
}

func (c *Cache[T]) expired() bool {
	if !c.set {
		return true
	}
	if c.ttl == NoExpiry {
		return false
	}
	return c.clock.Since(c.timestamp) > c.ttl
}

// Get returns the stored value. ok is false when nothing is stored, or
// when the value expired and ignoreExpire is not set.
func (c *Cache[T]) Get(ignoreExpire bool) (data T, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.set {
		return data, false
	}
	if !ignoreExpire && c.expired() {
		return data, false
	}
	return c.data, true
}

// Set stores data. When updateTime is false and a value was already
// stored, the previous timestamp is kept so the expiry does not move.
func (c *Cache[T]) Set(data T, updateTime bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if updateTime || !c.set {
		c.timestamp = c.clock.Now()
	}
	c.data = data
	c.set = true
}

// Clear drops the stored value.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.data = zero
	c.set = false
	c.timestamp = time.Time{}
}
