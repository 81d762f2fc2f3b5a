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

// Package windows implements the platform for the Windows build, which
// relies on the bundled NeuExt.PTCGLUtility.exe helper for everything the
// launcher cannot do through the filesystem.
package windows

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZaparooProject/tcgl-launcher/pkg/bepinex"
	"github.com/ZaparooProject/tcgl-launcher/pkg/helpers/command"
	"github.com/ZaparooProject/tcgl-launcher/pkg/platforms"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	// UtilityName is the helper executable, looked up in the bin dir.
	UtilityName = "NeuExt.PTCGLUtility.exe"
	// Executable is the game binary inside the install directory.
	Executable = "Pokemon TCG Live.exe"

	browserCacheDir = "AppData/LocalLow/pokemon/Pokemon TCG Live/Vuplex.WebView"
)

// ErrUserProfileNotSet is returned when the browser cache cannot be
// located because USERPROFILE is empty.
var ErrUserProfileNotSet = errors.New(`environment variable "USERPROFILE" not found`)

// Options configures a Platform. Zero values pick the defaults.
type Options struct {
	Fs       afero.Fs
	Executor command.Executor
	// AppDir is the launcher's own directory, holding bin/ and res/.
	AppDir string
	// UserProfile defaults to the USERPROFILE environment variable.
	UserProfile string
}

type Platform struct {
	fs          afero.Fs
	utility     *command.Probe
	settings    platforms.Settings
	userProfile string
}

//nolint:gocritic // options struct copied on construction
func NewPlatform(opts Options) *Platform {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if opts.Executor == nil {
		opts.Executor = &command.RealExecutor{}
	}
	if opts.UserProfile == "" {
		opts.UserProfile = os.Getenv("USERPROFILE")
	}

	settings := platforms.BaseSettings(opts.AppDir)
	utility := command.NewProbe(
		opts.Executor,
		filepath.Join(settings.BinDir, UtilityName),
		command.ProbeOptions{Encoding: command.EncodingURL},
	)

	return &Platform{
		fs:          opts.Fs,
		utility:     utility,
		settings:    settings,
		userProfile: opts.UserProfile,
	}
}

func (*Platform) ID() string {
	return platforms.PlatformIDWindows
}

func (p *Platform) Settings() platforms.Settings {
	return p.settings
}

func (*Platform) Executable() string {
	return Executable
}

// GamePaths uses the install directory for both the runtime and the game.
func (*Platform) GamePaths(installPath string) (platforms.GamePaths, bool) {
	if strings.TrimSpace(installPath) == "" {
		return platforms.GamePaths{}, false
	}
	return platforms.GamePaths{Root: installPath, App: installPath}, true
}

func (*Platform) LoaderHooks(fs afero.Fs, app string) bepinex.Hooks {
	return bepinex.NewWindowsHooks(fs, app)
}

func (*Platform) NeedsVersionSync() bool {
	return false
}

func (*Platform) SyncGameVersion(context.Context, string) (bool, error) {
	return false, platforms.ErrNotSupported
}

// utilityOutput runs a utility command and returns its stdout when it
// exited cleanly.
func (p *Platform) utilityOutput(ctx context.Context, args ...string) (string, bool) {
	out, err := p.utility.Exec(ctx, args...)
	if err != nil {
		log.Error().Err(err).Strs("args", args).Msg("utility command failed")
		return "", false
	}
	if out.Status != 0 {
		log.Debug().
			Int("status", out.Status).
			Str("stderr", out.Stderr).
			Strs("args", args).
			Msg("utility command exited with error")
		return "", false
	}
	return out.Stdout, true
}

func (p *Platform) DetectInstallDirectory(ctx context.Context) string {
	dir, _ := p.utilityOutput(ctx, "DetectPTCGLInstallDirectory")
	return dir
}

func (p *Platform) IsGameRunning(ctx context.Context) bool {
	out, ok := p.utilityOutput(ctx, "CheckPTCGLIsRunning")
	return ok && out == "1"
}

func (p *Platform) IsAvailable(ctx context.Context) bool {
	return p.utility.IsAvailable(ctx)
}

// CreateDesktopShortcut does nothing when name or target are blank.
func (p *Platform) CreateDesktopShortcut(ctx context.Context, name, target string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(target) == "" {
		return nil
	}

	out, err := p.utility.Exec(ctx, "CreateDesktopShortcut", name, target)
	if err != nil {
		return fmt.Errorf("failed to create desktop shortcut: %w", err)
	}
	if out.Status != 0 {
		return fmt.Errorf("failed to create desktop shortcut: exit status %d: %s", out.Status, out.Stderr)
	}
	return nil
}

func (p *Platform) GetShortcutTarget(ctx context.Context, shortcut string) string {
	if strings.TrimSpace(shortcut) == "" {
		return ""
	}
	target, _ := p.utilityOutput(ctx, "GetShortcutTarget", shortcut)
	return target
}

func (p *Platform) ClearBuiltinBrowserCache() error {
	if p.userProfile == "" {
		return ErrUserProfileNotSet
	}
	dir := filepath.Join(p.userProfile, filepath.FromSlash(browserCacheDir))
	if err := p.fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove browser cache: %w", err)
	}
	log.Info().Str("path", dir).Msg("cleared builtin browser cache")
	return nil
}
