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

package bepinex_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZaparooProject/tcgl-launcher/pkg/bepinex"
	"github.com/ZaparooProject/tcgl-launcher/pkg/testing/helpers"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const (
	gameRoot    = "/game"
	macRoot     = "/game BepInEx"
	macApp      = "/game BepInEx/Pokemon TCG Live.app"
	packageZip  = "/res/BepInEx.zip"
	loaderHook  = "/res/Tobey.BepInEx.Bootstrap.dll"
	loaderCore  = "/res/UnityEngine.CoreModule.dll"
	managedDir  = "Contents/Resources/Data/Managed"
	genuineCore = "genuine UnityEngine.CoreModule"
)

var testPackage = bepinex.PackageFiles{
	Core:            packageZip,
	LoaderHook:      loaderHook,
	LoaderCompanion: loaderCore,
}

func packageEntries(version string) []helpers.ZipEntry {
	return []helpers.ZipEntry{
		{Name: "BepInEx/"},
		{Name: "BepInEx/core/"},
		{Name: "BepInEx/core/BepInEx.dll", Content: version},
		{Name: "BepInEx/core/0Harmony.dll", Content: "harmony"},
		{Name: "BepInEx/config/"},
		{Name: "winhttp.dll", Content: "hook"},
		{Name: "doorstop_config.ini", Content: "[General]"},
		{Name: ".doorstop_version", Content: "4.0.0"},
		{Name: "changelog.txt", Content: "changes"},
	}
}

func newWindowsFixture(t *testing.T, packageVersion string) *helpers.FSHelper {
	t.Helper()
	h := helpers.NewMemoryFS()
	require.NoError(t, h.Fs.MkdirAll(gameRoot, 0o755))
	require.NoError(t, h.CreateZip(packageZip, packageEntries(packageVersion)))
	return h
}

func newMacFixture(t *testing.T, packageVersion string) *helpers.FSHelper {
	t.Helper()
	h := helpers.NewMemoryFS()
	require.NoError(t, h.CreateDirectoryStructure("/", map[string]any{
		"res": map[string]any{
			"Tobey.BepInEx.Bootstrap.dll": "bootstrap",
			"UnityEngine.CoreModule.dll":  "patched module loading " + bepinex.MacPatchSignature,
		},
	}))
	require.NoError(t, h.WriteFile(
		filepath.Join(macApp, managedDir, "UnityEngine.CoreModule.dll"),
		[]byte(genuineCore),
	))
	require.NoError(t, h.CreateZip(packageZip, packageEntries(packageVersion)))
	return h
}

func newWindowsManager(t *testing.T, fs afero.Fs) *bepinex.Manager {
	t.Helper()
	m, err := bepinex.NewManager(fs, gameRoot, bepinex.Options{
		Package:  testPackage,
		Versions: helpers.ContentVersionReader{},
		TempDir:  "/tmp",
	})
	require.NoError(t, err)
	return m
}

func newMacManager(t *testing.T, fs afero.Fs) *bepinex.Manager {
	t.Helper()
	m, err := bepinex.NewManager(fs, macRoot, bepinex.Options{
		AppPath:  macApp,
		Hooks:    bepinex.NewMacHooks(fs, macApp),
		Package:  testPackage,
		Versions: helpers.ContentVersionReader{},
		TempDir:  "/tmp",
	})
	require.NoError(t, err)
	return m
}

func TestNewManager_RootNotFound(t *testing.T) {
	t.Parallel()

	_, err := bepinex.NewManager(afero.NewMemMapFs(), "/missing", bepinex.Options{})

	require.ErrorIs(t, err, bepinex.ErrRootNotFound)
}

func TestNewManager_Defaults(t *testing.T) {
	t.Parallel()

	h := newWindowsFixture(t, "5.4.22.0")
	m, err := bepinex.NewManager(h.Fs, gameRoot+"/", bepinex.Options{})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(gameRoot, "winhttp.dll"), m.Hooks().HookPath())
	assert.Equal(t, bepinex.NewLayout(gameRoot), m.Layout())
}

func TestManager_InstallFreshWindows(t *testing.T) {
	t.Parallel()

	h := newWindowsFixture(t, "5.4.22.0")
	m := newWindowsManager(t, h.Fs)

	assert.False(t, m.IsInstalled())

	require.NoError(t, m.Install())

	assert.True(t, m.IsInstalled())
	assert.True(t, h.FileExists(filepath.Join(gameRoot, "BepInEx/core/BepInEx.dll")))
	assert.True(t, h.FileExists(filepath.Join(gameRoot, "winhttp.dll")))
	assert.True(t, h.FileExists(filepath.Join(gameRoot, "doorstop_config.ini")))
}

func TestManager_InstallFreshMac(t *testing.T) {
	t.Parallel()

	h := newMacFixture(t, "5.4.22.0")
	m := newMacManager(t, h.Fs)
	companion := filepath.Join(macApp, managedDir, "UnityEngine.CoreModule.dll")

	assert.False(t, m.IsInstalled())

	require.NoError(t, m.Install())

	assert.True(t, m.IsInstalled())
	for _, name := range []string{"winhttp.dll", "doorstop_config.ini", ".doorstop_version", "changelog.txt"} {
		assert.False(t, h.FileExists(filepath.Join(macRoot, name)), name)
	}

	backup, err := h.ReadFile(companion + ".orig")
	require.NoError(t, err)
	assert.Equal(t, genuineCore, string(backup))

	hook, err := h.ReadFile(filepath.Join(macApp, managedDir, "Tobey.BepInEx.Bootstrap.dll"))
	require.NoError(t, err)
	assert.Equal(t, "bootstrap", string(hook))

	// a second install keeps the genuine backup
	require.NoError(t, m.Install())
	backup, err = h.ReadFile(companion + ".orig")
	require.NoError(t, err)
	assert.Equal(t, genuineCore, string(backup))
}

func TestManager_InstallMacMissingCompanionRollsBack(t *testing.T) {
	t.Parallel()

	h := newMacFixture(t, "5.4.22.0")
	require.NoError(t, h.Fs.Remove(filepath.Join(macApp, managedDir, "UnityEngine.CoreModule.dll")))
	m := newMacManager(t, h.Fs)

	err := m.Install()

	require.ErrorIs(t, err, bepinex.ErrCompanionNotFound)
	assert.False(t, m.IsInstalled())
	assert.False(t, h.DirExists(filepath.Join(macRoot, "BepInEx/core")))
}

func TestManager_InstallRollbackOnWriteFailure(t *testing.T) {
	t.Parallel()

	h := newWindowsFixture(t, "5.4.22.0")
	require.NoError(t, h.WriteFile(filepath.Join(gameRoot, "BepInEx/plugins/Keep.dll"), []byte("keep")))
	fs := &helpers.FailingFs{
		Fs: h.Fs,
		FailOn: func(name string) bool {
			return strings.HasSuffix(name, "BepInEx/core/0Harmony.dll")
		},
	}
	m := newWindowsManager(t, fs)

	err := m.Install()

	require.ErrorIs(t, err, helpers.ErrInjected)
	assert.False(t, m.IsInstalled())
	assert.False(t, h.FileExists(filepath.Join(gameRoot, "BepInEx/core/BepInEx.dll")))
	assert.False(t, h.FileExists(filepath.Join(gameRoot, "winhttp.dll")))
	assert.True(t, h.FileExists(filepath.Join(gameRoot, "BepInEx/plugins/Keep.dll")))
}

func TestManager_InstallMissingPackage(t *testing.T) {
	t.Parallel()

	h := helpers.NewMemoryFS()
	require.NoError(t, h.Fs.MkdirAll(gameRoot, 0o755))
	m := newWindowsManager(t, h.Fs)

	require.Error(t, m.Install())
	assert.False(t, m.IsInstalled())
}

func TestManager_IsUpdatable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		installed string
		packaged  string
		expected  bool
	}{
		{name: "newer_package", installed: "5.4.21.0", packaged: "5.4.22.0", expected: true},
		{name: "same_version", installed: "5.4.22.0", packaged: "5.4.22.0", expected: false},
		{name: "older_package", installed: "5.4.23.0", packaged: "5.4.22.0", expected: false},
		{name: "unparsable_version", installed: "not a version", packaged: "5.4.22.0", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := newWindowsFixture(t, tt.installed)
			m := newWindowsManager(t, h.Fs)
			require.NoError(t, m.Install())
			require.NoError(t, h.CreateZip(packageZip, packageEntries(tt.packaged)))

			assert.Equal(t, tt.expected, m.IsUpdatable())

			leftovers, err := h.ListFiles("/tmp")
			require.NoError(t, err)
			assert.Empty(t, leftovers)
		})
	}
}

func TestManager_IsUpdatableRequiresInstallAndPackage(t *testing.T) {
	t.Parallel()

	t.Run("not_installed", func(t *testing.T) {
		t.Parallel()

		h := newWindowsFixture(t, "5.4.22.0")
		m := newWindowsManager(t, h.Fs)

		assert.False(t, m.IsUpdatable())
	})

	t.Run("package_missing", func(t *testing.T) {
		t.Parallel()

		h := newWindowsFixture(t, "5.4.21.0")
		m := newWindowsManager(t, h.Fs)
		require.NoError(t, m.Install())
		require.NoError(t, h.Fs.Remove(packageZip))

		assert.False(t, m.IsUpdatable())
	})

	t.Run("package_without_core_library", func(t *testing.T) {
		t.Parallel()

		h := newWindowsFixture(t, "5.4.21.0")
		m := newWindowsManager(t, h.Fs)
		require.NoError(t, m.Install())
		require.NoError(t, h.CreateZip(packageZip, []helpers.ZipEntry{{Name: "readme.txt", Content: "x"}}))

		assert.False(t, m.IsUpdatable())
	})
}

func TestManager_IsUpdatableProperty(t *testing.T) {
	t.Parallel()

	segment := rapid.IntRange(0, 12)
	versionGen := rapid.Custom(func(t *rapid.T) [4]int {
		return [4]int{segment.Draw(t, "a"), segment.Draw(t, "b"), segment.Draw(t, "c"), segment.Draw(t, "d")}
	})
	format := func(v [4]int) string {
		return fmt.Sprintf("%d.%d.%d.%d", v[0], v[1], v[2], v[3])
	}
	newer := func(a, b [4]int) bool {
		for i := range a {
			if a[i] != b[i] {
				return a[i] > b[i]
			}
		}
		return false
	}

	rapid.Check(t, func(rt *rapid.T) {
		local := versionGen.Draw(rt, "local")
		remote := versionGen.Draw(rt, "remote")
		keepPackage := rapid.Bool().Draw(rt, "keepPackage")

		h := helpers.NewMemoryFS()
		require.NoError(rt, h.Fs.MkdirAll(gameRoot, 0o755))
		require.NoError(rt, h.CreateZip(packageZip, packageEntries(format(local))))
		m, err := bepinex.NewManager(h.Fs, gameRoot, bepinex.Options{
			Package:  testPackage,
			Versions: helpers.ContentVersionReader{},
			TempDir:  "/tmp",
		})
		require.NoError(rt, err)
		require.NoError(rt, m.Install())

		require.NoError(rt, h.CreateZip(packageZip, packageEntries(format(remote))))
		if !keepPackage {
			require.NoError(rt, h.Fs.Remove(packageZip))
		}

		expected := keepPackage && newer(remote, local)
		assert.Equal(rt, expected, m.IsUpdatable())
	})
}

func TestManager_Uninstall(t *testing.T) {
	t.Parallel()

	t.Run("keeps_plugins_by_default", func(t *testing.T) {
		t.Parallel()

		h := newWindowsFixture(t, "5.4.22.0")
		m := newWindowsManager(t, h.Fs)
		require.NoError(t, m.Install())
		require.NoError(t, h.WriteFile(filepath.Join(gameRoot, "BepInEx/plugins/Keep.dll"), []byte("keep")))

		failed := m.Uninstall(false)

		assert.Empty(t, failed)
		assert.False(t, m.IsInstalled())
		assert.False(t, h.DirExists(filepath.Join(gameRoot, "BepInEx/core")))
		assert.False(t, h.FileExists(filepath.Join(gameRoot, "winhttp.dll")))
		assert.False(t, h.FileExists(filepath.Join(gameRoot, "changelog.txt")))
		assert.True(t, h.FileExists(filepath.Join(gameRoot, "BepInEx/plugins/Keep.dll")))
	})

	t.Run("removes_everything_with_plugins", func(t *testing.T) {
		t.Parallel()

		h := newWindowsFixture(t, "5.4.22.0")
		m := newWindowsManager(t, h.Fs)
		require.NoError(t, m.Install())
		require.NoError(t, h.WriteFile(filepath.Join(gameRoot, "BepInEx/plugins/Keep.dll"), []byte("keep")))

		failed := m.Uninstall(true)

		assert.Empty(t, failed)
		assert.False(t, h.DirExists(filepath.Join(gameRoot, "BepInEx")))
		assert.True(t, h.DirExists(gameRoot))
	})

	t.Run("is_safe_when_nothing_installed", func(t *testing.T) {
		t.Parallel()

		h := newWindowsFixture(t, "5.4.22.0")
		m := newWindowsManager(t, h.Fs)

		assert.Empty(t, m.Uninstall(true))
	})

	t.Run("reports_paths_it_could_not_remove", func(t *testing.T) {
		t.Parallel()

		h := newWindowsFixture(t, "5.4.22.0")
		m := newWindowsManager(t, h.Fs)
		require.NoError(t, m.Install())
		readOnly := afero.NewReadOnlyFs(h.Fs)
		ro, err := bepinex.NewManager(readOnly, gameRoot, bepinex.Options{Package: testPackage})
		require.NoError(t, err)

		failed := ro.Uninstall(false)

		assert.NotEmpty(t, failed)
		assert.True(t, m.IsInstalled())
	})
}
