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

package windows

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/ZaparooProject/tcgl-launcher/pkg/bepinex"
	"github.com/ZaparooProject/tcgl-launcher/pkg/helpers/command"
	"github.com/ZaparooProject/tcgl-launcher/pkg/platforms"
	"github.com/ZaparooProject/tcgl-launcher/pkg/testing/helpers"
	"github.com/ZaparooProject/tcgl-launcher/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const appDir = "/opt/launcher"

var utilityPath = filepath.Join(appDir, "bin", UtilityName)

func newTestPlatform(t *testing.T) (*Platform, *mocks.MockCommandExecutor, *helpers.FSHelper) {
	t.Helper()
	h := helpers.NewMemoryFS()
	exec := &mocks.MockCommandExecutor{}
	t.Cleanup(func() { exec.AssertExpectations(t) })
	p := NewPlatform(Options{
		Fs:          h.Fs,
		Executor:    exec,
		AppDir:      appDir,
		UserProfile: "/users/ash",
	})
	return p, exec, h
}

func TestPlatform_Basics(t *testing.T) {
	t.Parallel()

	p, _, _ := newTestPlatform(t)

	assert.Equal(t, platforms.PlatformIDWindows, p.ID())
	assert.Equal(t, "Pokemon TCG Live.exe", p.Executable())
	assert.False(t, p.NeedsVersionSync())
	assert.Equal(t, filepath.Join(appDir, "res"), p.Settings().ResourcesDir)
	assert.Equal(t, utilityPath, p.utility.Program())

	_, err := p.SyncGameVersion(context.Background(), "/games/ptcgl")
	require.ErrorIs(t, err, platforms.ErrNotSupported)
}

func TestPlatform_GamePaths(t *testing.T) {
	t.Parallel()

	p, _, h := newTestPlatform(t)

	paths, ok := p.GamePaths(`C:\Games\Pokemon TCG Live`)
	require.True(t, ok)
	assert.Equal(t, `C:\Games\Pokemon TCG Live`, paths.Root)
	assert.Equal(t, paths.Root, paths.App)

	_, ok = p.GamePaths("  ")
	assert.False(t, ok)

	hooks := p.LoaderHooks(h.Fs, "/games/ptcgl")
	assert.IsType(t, &bepinex.WindowsHooks{}, hooks)
	assert.Equal(t, filepath.Join("/games/ptcgl", "winhttp.dll"), hooks.HookPath())
}

func TestPlatform_DetectInstallDirectory(t *testing.T) {
	t.Parallel()

	tests := []struct {
		result   command.Result
		err      error
		name     string
		expected string
	}{
		{
			name:     "found",
			result:   command.Result{Stdout: []byte("C%3A%5CGames%5CPokemon%20TCG%20Live\r\n")},
			expected: `C:\Games\Pokemon TCG Live`,
		},
		{
			name:   "not_found",
			result: command.Result{Status: 1, Stderr: []byte("not installed")},
		},
		{
			name: "utility_missing",
			err:  errors.New("executable file not found"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, exec, _ := newTestPlatform(t)
			exec.On("Exec", mock.Anything, utilityPath, []string{"DetectPTCGLInstallDirectory"}).
				Return(tt.result, tt.err)

			assert.Equal(t, tt.expected, p.DetectInstallDirectory(context.Background()))
		})
	}
}

func TestPlatform_IsGameRunning(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		result   command.Result
		expected bool
	}{
		{name: "running", result: command.Result{Stdout: []byte("1")}, expected: true},
		{name: "not_running", result: command.Result{Stdout: []byte("0")}},
		{name: "failed", result: command.Result{Status: 2, Stdout: []byte("1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p, exec, _ := newTestPlatform(t)
			exec.On("Exec", mock.Anything, utilityPath, []string{"CheckPTCGLIsRunning"}).
				Return(tt.result, nil)

			assert.Equal(t, tt.expected, p.IsGameRunning(context.Background()))
		})
	}
}

func TestPlatform_IsAvailable(t *testing.T) {
	t.Parallel()

	p, exec, _ := newTestPlatform(t)
	exec.On("Exec", mock.Anything, utilityPath, []string{"--help"}).
		Return(command.Result{}, nil)

	assert.True(t, p.IsAvailable(context.Background()))
}

func TestPlatform_CreateDesktopShortcut(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		p, exec, _ := newTestPlatform(t)
		exec.On("Exec", mock.Anything, utilityPath,
			[]string{"CreateDesktopShortcut", "TCGL", `C:\TCGL\tcgl.exe`}).
			Return(command.Result{}, nil)

		require.NoError(t, p.CreateDesktopShortcut(context.Background(), "TCGL", `C:\TCGL\tcgl.exe`))
	})

	t.Run("blank_arguments_are_ignored", func(t *testing.T) {
		t.Parallel()

		p, _, _ := newTestPlatform(t)

		require.NoError(t, p.CreateDesktopShortcut(context.Background(), " ", `C:\TCGL\tcgl.exe`))
		require.NoError(t, p.CreateDesktopShortcut(context.Background(), "TCGL", ""))
	})

	t.Run("utility_failure", func(t *testing.T) {
		t.Parallel()

		p, exec, _ := newTestPlatform(t)
		exec.On("Exec", mock.Anything, utilityPath,
			[]string{"CreateDesktopShortcut", "TCGL", `C:\TCGL\tcgl.exe`}).
			Return(command.Result{Status: 1, Stderr: []byte("access%20denied")}, nil)

		err := p.CreateDesktopShortcut(context.Background(), "TCGL", `C:\TCGL\tcgl.exe`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "access denied")
	})
}

func TestPlatform_GetShortcutTarget(t *testing.T) {
	t.Parallel()

	p, exec, _ := newTestPlatform(t)
	exec.On("Exec", mock.Anything, utilityPath, []string{"GetShortcutTarget", `C:\Desktop\PTCGL.lnk`}).
		Return(command.Result{Stdout: []byte("C%3A%5CGames%5CPokemon%20TCG%20Live%5CPokemon%20TCG%20Live.exe")}, nil)

	assert.Equal(t,
		`C:\Games\Pokemon TCG Live\Pokemon TCG Live.exe`,
		p.GetShortcutTarget(context.Background(), `C:\Desktop\PTCGL.lnk`))
	assert.Empty(t, p.GetShortcutTarget(context.Background(), ""))
}

func TestPlatform_ClearBuiltinBrowserCache(t *testing.T) {
	t.Parallel()

	t.Run("removes_cache", func(t *testing.T) {
		t.Parallel()

		p, _, h := newTestPlatform(t)
		cache := filepath.Join("/users/ash", filepath.FromSlash(browserCacheDir))
		require.NoError(t, h.WriteFile(filepath.Join(cache, "Cache/data_0"), []byte("x")))

		require.NoError(t, p.ClearBuiltinBrowserCache())

		assert.False(t, h.DirExists(cache))
		assert.True(t, h.DirExists(filepath.Dir(cache)))
	})

	t.Run("missing_cache_is_fine", func(t *testing.T) {
		t.Parallel()

		p, _, _ := newTestPlatform(t)

		require.NoError(t, p.ClearBuiltinBrowserCache())
	})

	t.Run("no_user_profile", func(t *testing.T) {
		t.Parallel()

		p, _, _ := newTestPlatform(t)
		p.userProfile = ""

		require.ErrorIs(t, p.ClearBuiltinBrowserCache(), ErrUserProfileNotSet)
	})
}
