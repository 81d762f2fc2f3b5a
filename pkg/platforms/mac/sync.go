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
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/ZaparooProject/tcgl-launcher/pkg/helpers/syncutil"
	"github.com/charlievieth/fastwalk"
	"github.com/rs/zerolog/log"
	"howett.net/plist"
)

type bundleInfo struct {
	Version string `plist:"CFBundleVersion"`
}

// bundleVersion returns the leading integer of the bundle's
// CFBundleVersion. Bundles without a readable Info.plist are version 0.
func bundleVersion(app string) int {
	data, err := os.ReadFile(filepath.Join(app, "Contents", "Info.plist"))
	if err != nil {
		return 0
	}

	var info bundleInfo
	if _, err := plist.Unmarshal(data, &info); err != nil {
		log.Warn().Err(err).Str("app", app).Msg("failed to parse bundle info")
		return 0
	}

	n := 0
	for _, r := range info.Version {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// SyncGameVersion replaces the private copy at target with the installed
// game when the copy is missing, has no version or is older. It returns
// whether the copy's executable exists afterwards, and false without
// error when the installed game itself is missing.
func (p *Platform) SyncGameVersion(ctx context.Context, target string) (bool, error) {
	if !fileExists(filepath.Join(p.referenceApp, Executable)) {
		log.Warn().Str("app", p.referenceApp).Msg("installed game not found")
		return false, nil
	}

	installed := bundleVersion(p.referenceApp)
	current := bundleVersion(target)

	if current == 0 || installed > current {
		log.Info().
			Int("installed", installed).
			Int("current", current).
			Str("target", target).
			Msg("syncing game copy")

		if err := os.RemoveAll(target); err != nil {
			return false, fmt.Errorf("failed to remove outdated game copy: %w", err)
		}
		if err := copyBundle(ctx, p.referenceApp, target); err != nil {
			return false, fmt.Errorf("failed to copy game: %w", err)
		}
	}

	return fileExists(filepath.Join(target, Executable)), nil
}

type dirTime struct {
	modTime time.Time
	path    string
}

// copyBundle recursively copies src to dst, keeping modes, symlinks and
// modification times.
func copyBundle(ctx context.Context, src, dst string) error {
	var (
		mu   syncutil.Mutex
		dirs []dirTime
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, src, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err //nolint:wrapcheck // cancellation is reported as is
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		target := filepath.Join(dst, rel)

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("failed to stat %s: %w", path, err)
		}

		switch {
		case d.IsDir():
			if err := os.MkdirAll(target, info.Mode().Perm()|0o700); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			mu.Lock()
			dirs = append(dirs, dirTime{path: target, modTime: info.ModTime()})
			mu.Unlock()
			return nil
		case d.Type()&iofs.ModeSymlink != 0:
			return copySymlink(path, target)
		case info.Mode().IsRegular():
			return copyRegular(path, target, info)
		default:
			log.Debug().Str("path", path).Msg("skipping special file")
			return nil
		}
	})
	if err != nil {
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}

	// children first, writing into a directory moves its mtime
	sort.Slice(dirs, func(i, j int) bool {
		return len(dirs[i].path) > len(dirs[j].path)
	})
	for _, dt := range dirs {
		if err := os.Chtimes(dt.path, dt.modTime, dt.modTime); err != nil {
			return fmt.Errorf("failed to set times of %s: %w", dt.path, err)
		}
	}
	return nil
}

func copySymlink(src, dst string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return fmt.Errorf("failed to read link %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}
	if err := os.Symlink(link, dst); err != nil && !errors.Is(err, iofs.ErrExist) {
		return fmt.Errorf("failed to create link %s: %w", dst, err)
	}
	return nil
}

func copyRegular(src, dst string, info iofs.FileInfo) error {
	in, err := os.Open(src) //nolint:gosec // walking a known bundle
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() {
		_ = in.Close()
	}()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dst, err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}

	if err := os.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		return fmt.Errorf("failed to set times of %s: %w", dst, err)
	}
	return nil
}
