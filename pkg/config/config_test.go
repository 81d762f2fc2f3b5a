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

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T) *Instance {
	t.Helper()
	cfg, err := NewConfig(t.TempDir(), BaseDefaults)
	require.NoError(t, err)
	return cfg
}

func TestNewConfig_WritesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(filepath.Join(dir, "nested"), BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "nested", CfgFile), cfg.Path())
	info, err := os.Stat(cfg.Path())
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	data, err := os.ReadFile(cfg.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "config_schema = 1")
}

func TestNewConfig_EnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	t.Setenv(CfgEnv, path)

	cfg, err := NewConfig(t.TempDir(), BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path())
	assert.FileExists(t, path)
}

func TestLoad_KeepsDefaultsForMissingKeys(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	contents := "config_schema = 1\n\n[launcher]\ngame_install_directory = 'C:/Games/PTCGL'\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte(contents), 0o600))

	defaults := BaseDefaults
	defaults.Launcher.UpdateURL = "https://example.com/update.json"
	defaults.Launcher.FixBuiltinBrowserError = true

	cfg, err := NewConfig(dir, defaults)
	require.NoError(t, err)

	assert.Equal(t, "C:/Games/PTCGL", cfg.GameInstallDirectory())
	assert.Equal(t, "https://example.com/update.json", cfg.UpdateURL())
	assert.True(t, cfg.FixBuiltinBrowserError())
}

func TestLoad_SchemaMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte("config_schema = 99\n"), 0o600))

	_, err := NewConfig(dir, BaseDefaults)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestLoad_InvalidToml(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CfgFile), []byte("config_schema = [\n"), 0o600))

	_, err := NewConfig(dir, BaseDefaults)
	require.Error(t, err)
}

func TestSaveAndReload(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	cfg.SetGameInstallDirectory("/Applications/Pokemon TCG Live.app")
	cfg.SetPublishServerIdentifier("4f1c")
	cfg.SetUnlockAllBeautifyDesks(true)
	cfg.SetTermsOfUseVersion(3)
	cfg.SetPackage(Package{Core: "/opt/BepInEx.zip"})
	cfg.SetAccounts([]PlayAccount{{Identifier: "a1b2c3", Name: "Ash"}})
	cfg.SetPublishServers([]PublishServer{{
		Identifier: "4f1c",
		Name:       "Community",
		URL:        "https://example.com/publish.json",
		Additional: ServerData{PlayAccount: "a1b2c3"},
	}})
	require.NoError(t, cfg.Save())

	reloaded, err := NewConfig(filepath.Dir(cfg.Path()), BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, "/Applications/Pokemon TCG Live.app", reloaded.GameInstallDirectory())
	assert.Equal(t, "4f1c", reloaded.PublishServerIdentifier())
	assert.True(t, reloaded.UnlockAllBeautifyDesks())
	assert.False(t, reloaded.FixBuiltinBrowserError())
	assert.Equal(t, 3, reloaded.TermsOfUseVersion())
	assert.Equal(t, Package{Core: "/opt/BepInEx.zip"}, reloaded.Package())
	assert.Equal(t, []PlayAccount{{Identifier: "a1b2c3", Name: "Ash"}}, reloaded.Accounts())
	assert.Equal(t, cfg.PublishServers(), reloaded.PublishServers())
}

func TestAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	cfg.SetAccounts([]PlayAccount{{Identifier: "000001", Name: "Misty"}})

	accounts := cfg.Accounts()
	accounts[0].Name = "changed"

	assert.Equal(t, "Misty", cfg.Accounts()[0].Name)
}

func TestUpdatePublishServers(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	assert.Nil(t, cfg.PublishServers())

	err := cfg.UpdatePublishServers(func(servers []PublishServer) ([]PublishServer, error) {
		return append(servers, PublishServer{Identifier: "official"}), nil
	})
	require.NoError(t, err)
	assert.Len(t, cfg.PublishServers(), 1)

	err = cfg.UpdatePublishServers(func([]PublishServer) ([]PublishServer, error) {
		return nil, os.ErrInvalid
	})
	require.ErrorIs(t, err, os.ErrInvalid)
	assert.Len(t, cfg.PublishServers(), 1)
}

func TestUpdateAccounts_Concurrent(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = cfg.UpdateAccounts(func(accounts []PlayAccount) ([]PlayAccount, error) {
				return append(accounts, PlayAccount{}), nil
			})
		}()
	}
	wg.Wait()

	assert.Len(t, cfg.Accounts(), 20)
}

func TestServerDataMerge(t *testing.T) {
	t.Parallel()

	base := ServerData{PlayAccount: "a", SelectedServer: "s"}

	assert.Equal(t, base, base.Merge(ServerData{}))
	assert.Equal(t,
		ServerData{PlayAccount: "b", SelectedServer: "s"},
		base.Merge(ServerData{PlayAccount: "b"}))
}

func TestSetDebugLogging(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	assert.False(t, cfg.DebugLogging())
	cfg.SetDebugLogging(true)
	assert.True(t, cfg.DebugLogging())
	cfg.SetDebugLogging(false)
	assert.False(t, cfg.DebugLogging())
}

func TestNewConfig_DeviceIDIsStable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	require.Len(t, first.DeviceID(), 36)

	second, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, first.DeviceID(), second.DeviceID())
}

func TestErrorReporting_DefaultsOff(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	assert.Equal(t, ErrorReporting{}, cfg.ErrorReporting())

	cfg.SetErrorReporting(ErrorReporting{Enabled: true, DSN: "https://key@example.com/1"})
	require.NoError(t, cfg.Save())
	require.NoError(t, cfg.Load())
	assert.True(t, cfg.ErrorReporting().Enabled)
}
