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

package game

import (
	"context"
	"slices"
)

const (
	// OfficialServerIdentifier is the entry point of the official game
	// servers. Launching against it installs no connector.
	OfficialServerIdentifier = "official"
	// DefaultAccountTarget is the account the game picks by itself.
	DefaultAccountTarget = "default"
)

// Feature is an optional game tweak toggled per launch.
type Feature string

const (
	// FeatureFixBuiltinBrowserError works around the embedded browser
	// failing to start.
	FeatureFixBuiltinBrowserError Feature = "fixBuiltinBrowserError"
	// FeatureUnlockAllBeautifyDesks enables every cosmetic on third party
	// servers.
	FeatureUnlockAllBeautifyDesks Feature = "unlockAllBeautifyDesks"
)

// EntryPointResolver maps a server identifier to the endpoint the game
// connects to. Unknown identifiers resolve to an empty string.
type EntryPointResolver interface {
	GetEntryPoint(ctx context.Context, identifier string) (string, error)
}

// ServerOption selects a game server through a publisher.
type ServerOption struct {
	Publisher  EntryPointResolver
	Identifier string
}

// Option describes a single launch.
type Option struct {
	Server      *ServerOption
	Account     string
	InstallPath string
	Features    []Feature
}

// Has reports whether the feature f was requested.
func (o *Option) Has(f Feature) bool {
	return slices.Contains(o.Features, f)
}

// ConnectorConfig is written to config-noc.json for the server connector
// plugin. Field order matches what the plugin expects.
type ConnectorConfig struct {
	OmukadeEndpoint                 string `json:"OmukadeEndpoint"`
	EnableAllCosmetics              bool   `json:"EnableAllCosmetics"`
	ForceAllLegalityChecksToSucceed bool   `json:"ForceAllLegalityChecksToSucceed"`
	AskServerForImplementedCards    bool   `json:"AskServerForImplementedCards"`
}
