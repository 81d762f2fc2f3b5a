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

package mac

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ZaparooProject/tcgl-launcher/pkg/bepinex"
	"github.com/ZaparooProject/tcgl-launcher/pkg/helpers/command"
	"github.com/ZaparooProject/tcgl-launcher/pkg/platforms"
	"github.com/ZaparooProject/tcgl-launcher/pkg/testing/helpers"
	"github.com/ZaparooProject/tcgl-launcher/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const infoPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>CFBundleIdentifier</key>
	<string>com.pokemon.pokemontcglive</string>
	<key>CFBundleVersion</key>
	<string>%s</string>
</dict>
</plist>
`

var bundleTime = time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

func writeBundle(t *testing.T, app, version string) {
	t.Helper()
	h := helpers.NewOSFS()
	require.NoError(t, h.WriteFile(filepath.Join(app, Executable), []byte("binary "+version)))
	require.NoError(t, h.WriteFile(filepath.Join(app, "Contents", "Info.plist"), fmt.Appendf(nil, infoPlist, version)))
	require.NoError(t, h.WriteFile(
		filepath.Join(app, "Contents/Resources/Data/Managed/UnityEngine.CoreModule.dll"),
		[]byte("core module"),
	))
	require.NoError(t, os.Chtimes(filepath.Join(app, Executable), bundleTime, bundleTime))
}

func newSyncFixture(t *testing.T, version string) (p *Platform, reference, target string) {
	t.Helper()
	dir := t.TempDir()
	reference = filepath.Join(dir, "Applications", appBundleName)
	if version != "" {
		writeBundle(t, reference, version)
	}
	target = filepath.Join(dir, "Applications", "Pokemon TCG Live BepInEx", appBundleName)
	p = NewPlatform(Options{
		Executor:     &mocks.MockCommandExecutor{},
		ReferenceApp: reference,
	})
	return p, reference, target
}

func TestPlatform_Basics(t *testing.T) {
	t.Parallel()

	p := NewPlatform(Options{Executor: &mocks.MockCommandExecutor{}, AppDir: "/Applications/TCGL.app/Contents/MacOS"})

	assert.Equal(t, platforms.PlatformIDMac, p.ID())
	assert.Equal(t, "Contents/MacOS/Pokemon TCG Live", p.Executable())
	assert.True(t, p.NeedsVersionSync())
	assert.Equal(t, DefaultInstallDir, p.DetectInstallDirectory(context.Background()))
	assert.Equal(t, "/Applications/TCGL.app/Contents/MacOS/res", p.Settings().ResourcesDir)
	require.ErrorIs(t, p.ClearBuiltinBrowserCache(), platforms.ErrNotSupported)
	require.NoError(t, p.CreateDesktopShortcut(context.Background(), "TCGL", "/Applications/TCGL.app"))
	assert.Empty(t, p.GetShortcutTarget(context.Background(), "/Users/ash/Desktop/TCGL"))

	hooks := p.LoaderHooks(helpers.NewMemoryFS().Fs, "/Applications/Pokemon TCG Live BepInEx/Pokemon TCG Live.app")
	assert.IsType(t, &bepinex.MacHooks{}, hooks)
}

func TestPlatform_GamePaths(t *testing.T) {
	t.Parallel()

	p := NewPlatform(Options{Executor: &mocks.MockCommandExecutor{}})

	paths, ok := p.GamePaths("/Applications/Pokemon TCG Live.app")
	require.True(t, ok)
	assert.Equal(t, "/Applications/Pokemon TCG Live BepInEx", paths.Root)
	assert.Equal(t, "/Applications/Pokemon TCG Live BepInEx/Pokemon TCG Live.app", paths.App)

	_, ok = p.GamePaths("/opt/games/ptcgl")
	assert.False(t, ok)
}

func TestBundleVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		version  string
		expected int
	}{
		{name: "integer", version: "1290", expected: 1290},
		{name: "dotted", version: "1.29.0", expected: 1},
		{name: "not_numeric", version: "beta", expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			app := filepath.Join(t.TempDir(), appBundleName)
			writeBundle(t, app, tt.version)

			assert.Equal(t, tt.expected, bundleVersion(app))
		})
	}

	t.Run("missing_plist", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 0, bundleVersion(filepath.Join(t.TempDir(), appBundleName)))
	})
}

func TestSyncGameVersion_FreshCopy(t *testing.T) {
	t.Parallel()

	p, reference, target := newSyncFixture(t, "1290")

	ok, err := p.SyncGameVersion(context.Background(), target)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1290, bundleVersion(target))

	info, err := os.Stat(filepath.Join(target, Executable))
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(bundleTime))

	src, err := os.Stat(filepath.Join(reference, Executable))
	require.NoError(t, err)
	assert.Equal(t, src.Mode().Perm(), info.Mode().Perm())
}

func TestSyncGameVersion_Versions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		installed   string
		copied      string
		expectClean bool
	}{
		{name: "same_version_is_kept", installed: "1290", copied: "1290", expectClean: false},
		{name: "newer_copy_is_kept", installed: "1290", copied: "1300", expectClean: false},
		{name: "older_copy_is_replaced", installed: "1300", copied: "1290", expectClean: true},
		{name: "unversioned_copy_is_replaced", installed: "1290", copied: "0", expectClean: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, _, target := newSyncFixture(t, tt.installed)
			writeBundle(t, target, tt.copied)
			marker := filepath.Join(target, "Contents/Resources/Data/Managed/Tobey.BepInEx.Bootstrap.dll")
			require.NoError(t, helpers.NewOSFS().WriteFile(marker, []byte("hook")))

			ok, err := p.SyncGameVersion(context.Background(), target)

			require.NoError(t, err)
			assert.True(t, ok)
			_, statErr := os.Stat(marker)
			assert.Equal(t, tt.expectClean, errors.Is(statErr, os.ErrNotExist))
		})
	}
}

func TestSyncGameVersion_ReferenceMissing(t *testing.T) {
	t.Parallel()

	p, _, target := newSyncFixture(t, "")

	ok, err := p.SyncGameVersion(context.Background(), target)

	require.NoError(t, err)
	assert.False(t, ok)
	_, statErr := os.Stat(target)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestSyncGameVersion_Cancelled(t *testing.T) {
	t.Parallel()

	p, _, target := newSyncFixture(t, "1290")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.SyncGameVersion(ctx, target)

	require.ErrorIs(t, err, context.Canceled)
}

func TestCopyBundle_Symlinks(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}

	dir := t.TempDir()
	src := filepath.Join(dir, "src.framework")
	h := helpers.NewOSFS()
	require.NoError(t, h.WriteFile(filepath.Join(src, "Versions/A/Library"), []byte("lib")))
	require.NoError(t, os.Symlink("A", filepath.Join(src, "Versions/Current")))
	require.NoError(t, os.Symlink("Versions/Current/Library", filepath.Join(src, "Library")))

	dst := filepath.Join(dir, "dst.framework")
	require.NoError(t, copyBundle(context.Background(), src, dst))

	link, err := os.Readlink(filepath.Join(dst, "Versions/Current"))
	require.NoError(t, err)
	assert.Equal(t, "A", link)

	data, err := os.ReadFile(filepath.Join(dst, "Library"))
	require.NoError(t, err)
	assert.Equal(t, "lib", string(data))
}

func TestPlatform_IsGameRunning(t *testing.T) {
	t.Parallel()

	gameExe := filepath.Join(DefaultInstallDir, Executable)

	t.Run("found_in_process_table", func(t *testing.T) {
		t.Parallel()

		p := NewPlatform(Options{
			Executor: &mocks.MockCommandExecutor{},
			Processes: func(context.Context) ([]string, error) {
				return []string{"/sbin/launchd", gameExe}, nil
			},
		})

		assert.True(t, p.IsGameRunning(context.Background()))
	})

	t.Run("not_in_process_table", func(t *testing.T) {
		t.Parallel()

		p := NewPlatform(Options{
			Executor: &mocks.MockCommandExecutor{},
			Processes: func(context.Context) ([]string, error) {
				return []string{"/sbin/launchd", "Finder"}, nil
			},
		})

		assert.False(t, p.IsGameRunning(context.Background()))
	})

	t.Run("falls_back_to_ps", func(t *testing.T) {
		t.Parallel()

		exec := &mocks.MockCommandExecutor{}
		exec.On("Exec", mock.Anything, "ps", []string{"-A"}).Return(command.Result{
			Stdout: []byte("  PID TTY TIME CMD\n  412 ?? 0:03.10 " + gameExe + "\n"),
		}, nil)
		p := NewPlatform(Options{
			Executor: exec,
			Processes: func(context.Context) ([]string, error) {
				return nil, errors.New("permission denied")
			},
		})

		assert.True(t, p.IsGameRunning(context.Background()))
		exec.AssertExpectations(t)
	})

	t.Run("ps_fails", func(t *testing.T) {
		t.Parallel()

		exec := &mocks.MockCommandExecutor{}
		exec.On("Exec", mock.Anything, "ps", []string{"-A"}).
			Return(command.Result{}, errors.New("ps not found"))
		p := NewPlatform(Options{
			Executor: exec,
			Processes: func(context.Context) ([]string, error) {
				return nil, errors.New("permission denied")
			},
		})

		assert.False(t, p.IsGameRunning(context.Background()))
	})
}

func TestPlatform_IsAvailable(t *testing.T) {
	t.Parallel()

	exec := &mocks.MockCommandExecutor{}
	exec.On("Exec", mock.Anything, "ps", []string{"-A"}).Return(command.Result{Status: 1}, nil)
	p := NewPlatform(Options{Executor: exec})

	assert.False(t, p.IsAvailable(context.Background()))
	exec.AssertExpectations(t)
}
