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

// Package config stores the launcher settings, play accounts and publish
// servers in a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/ZaparooProject/tcgl-launcher/pkg/helpers/syncutil"
	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgEnv        = "TCGL_CFG"
	CfgFile       = "launcher.toml"
	LogFile       = "launcher.log"
)

// AppVersion is replaced at build time.
var AppVersion = "0.0.0-dev"

var ErrSchemaMismatch = errors.New("schema version mismatch")

type Values struct {
	Package        Package         `toml:"package,omitempty"`
	ErrorReporting ErrorReporting  `toml:"error_reporting,omitempty"`
	Launcher       Launcher        `toml:"launcher"`
	DeviceID       string          `toml:"device_id"`
	Accounts       []PlayAccount   `toml:"accounts,omitempty"`
	PublishServers []PublishServer `toml:"publish_servers,omitempty"`
	ConfigSchema   int             `toml:"config_schema"`
	DebugLogging   bool            `toml:"debug_logging"`
}

type Launcher struct {
	GameInstallDirectory    string `toml:"game_install_directory,omitempty"`
	PublishServerIdentifier string `toml:"publish_server,omitempty"`
	UpdateURL               string `toml:"update_url,omitempty"`
	TermsOfUseVersion       int    `toml:"terms_of_use_version"`
	FixBuiltinBrowserError  bool   `toml:"fix_builtin_browser_error"`
	UnlockAllBeautifyDesks  bool   `toml:"unlock_all_beautify_desks"`
}

// ErrorReporting sends error logs to a Sentry project when enabled.
type ErrorReporting struct {
	DSN     string `toml:"dsn,omitempty"`
	Enabled bool   `toml:"enabled"`
}

// Package overrides the location of the plugin runtime files. Empty
// values keep the bundled files.
type Package struct {
	Core            string `toml:"core,omitempty"`
	LoaderHook      string `toml:"loader_hook,omitempty"`
	LoaderCompanion string `toml:"loader_companion,omitempty"`
}

type PlayAccount struct {
	Identifier string `toml:"identifier"`
	Name       string `toml:"name"`
}

type PublishServer struct {
	Identifier string     `toml:"identifier"`
	Name       string     `toml:"name"`
	URL        string     `toml:"url"`
	Additional ServerData `toml:"additional,omitempty"`
}

// ServerData is per publish server state remembered between launches.
type ServerData struct {
	PlayAccount    string `toml:"play_account,omitempty"`
	SelectedServer string `toml:"selected_server,omitempty"`
}

// Merge returns d with every non-empty field of other applied.
func (d ServerData) Merge(other ServerData) ServerData {
	if other.PlayAccount != "" {
		d.PlayAccount = other.PlayAccount
	}
	if other.SelectedServer != "" {
		d.SelectedServer = other.SelectedServer
	}
	return d
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
}

type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// NewConfig loads the config file from configDir, or from the path in the
// TCGL_CFG environment variable, writing the defaults first when it does
// not exist yet.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	if cfg.DeviceID() == "" {
		cfg.mu.Lock()
		cfg.vals.DeviceID = uuid.New().String()
		cfg.mu.Unlock()
		if err := cfg.Save(); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

// Path returns the location of the config file.
func (c *Instance) Path() string {
	return c.cfgPath
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// file values are unmarshalled over the defaults so missing keys keep
	// their default
	newVals := c.defaults
	newVals.Accounts = slices.Clone(c.defaults.Accounts)
	newVals.PublishServers = slices.Clone(c.defaults.PublishServers)
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return ErrSchemaMismatch
	}

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// DeviceID is a random identifier attached to error reports.
func (c *Instance) DeviceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DeviceID
}

func (c *Instance) ErrorReporting() ErrorReporting {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.ErrorReporting
}

func (c *Instance) SetErrorReporting(er ErrorReporting) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.ErrorReporting = er
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
