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

package service

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/ZaparooProject/tcgl-launcher/pkg/bepinex"
	"github.com/spf13/afero"
)

const (
	// PackageArchive is the bundled runtime archive in the resources dir.
	PackageArchive = "BepInEx_5.4.22.0.zip"
	osxLoaderDir   = "BepInExOSXLoader"
	ChecksumsFile  = "checksums.json"
)

var (
	ErrResourceMissing  = errors.New("resource file missing")
	ErrChecksumMismatch = errors.New("resource checksum mismatch")
)

// BundledPackage returns the runtime files shipped in resourcesDir.
func BundledPackage(resourcesDir string) bepinex.PackageFiles {
	return bepinex.PackageFiles{
		Core:            filepath.Join(resourcesDir, PackageArchive),
		LoaderHook:      filepath.Join(resourcesDir, osxLoaderDir, "Tobey.BepInEx.Bootstrap.dll"),
		LoaderCompanion: filepath.Join(resourcesDir, osxLoaderDir, "UnityEngine.CoreModule.dll"),
	}
}

type checksum struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

// VerifyResources checks every file listed in the checksums file of dir
// against its SHA-256 hash.
func VerifyResources(fs afero.Fs, dir string) error {
	data, err := afero.ReadFile(fs, filepath.Join(dir, ChecksumsFile))
	if err != nil {
		return fmt.Errorf("failed to read checksums: %w", err)
	}

	var sums []checksum
	if err := json.Unmarshal(data, &sums); err != nil {
		return fmt.Errorf("failed to parse checksums: %w", err)
	}

	for _, sum := range sums {
		got, err := fileHash(fs, filepath.Join(dir, filepath.FromSlash(sum.Path)))
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrResourceMissing, sum.Path, err)
		}
		if got != sum.Hash {
			return fmt.Errorf("%w: %s: expected %s, got %s", ErrChecksumMismatch, sum.Path, sum.Hash, got)
		}
	}
	return nil
}

// WriteChecksums hashes every file below dir, except the checksums file
// itself, and writes the result to the checksums file of dir.
func WriteChecksums(fs afero.Fs, dir string) error {
	var sums []checksum
	err := afero.Walk(fs, dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path: %w", err)
		}
		rel = filepath.ToSlash(rel)
		if rel == ChecksumsFile {
			return nil
		}
		hash, err := fileHash(fs, path)
		if err != nil {
			return err
		}
		sums = append(sums, checksum{Path: rel, Hash: hash})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk resources: %w", err)
	}

	sort.Slice(sums, func(i, j int) bool { return sums[i].Path < sums[j].Path })

	data, err := json.MarshalIndent(sums, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode checksums: %w", err)
	}
	if err := afero.WriteFile(fs, filepath.Join(dir, ChecksumsFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write checksums: %w", err)
	}
	return nil
}

func fileHash(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
