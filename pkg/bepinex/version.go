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

package bepinex

import (
	"errors"
	"fmt"
	"strings"

	version "github.com/hashicorp/go-version"
	pe "github.com/saferwall/pe"
	"github.com/spf13/afero"
)

// ErrNoVersion is returned when a library carries no version resource.
var ErrNoVersion = errors.New("no file version found")

// VersionReader reads the file version embedded in a library.
type VersionReader interface {
	FileVersion(fs afero.Fs, path string) (string, error)
}

// PEVersionReader reads the VS_VERSION_INFO resource of a PE image.
type PEVersionReader struct{}

var versionKeys = []string{"FileVersion", "ProductVersion", "Assembly Version"}

// FileVersion returns the FileVersion string of the PE file at path,
// falling back to the product and assembly versions.
func (PEVersionReader) FileVersion(fs afero.Fs, path string) (string, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	// the parser holds no OS resources for in-memory images, so there is
	// nothing to close
	f, err := pe.NewBytes(data, &pe.Options{})
	if err != nil {
		return "", fmt.Errorf("failed to open PE image %s: %w", path, err)
	}
	if err := f.Parse(); err != nil {
		return "", fmt.Errorf("failed to parse PE image %s: %w", path, err)
	}

	resources, err := f.ParseVersionResources()
	if err != nil {
		return "", fmt.Errorf("failed to parse version resources of %s: %w", path, err)
	}

	for _, key := range versionKeys {
		if v := strings.TrimSpace(resources[key]); v != "" {
			return v, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoVersion, path)
}

// CompareVersions orders two version strings, returning -1, 0 or 1 when
// a is lower than, equal to or greater than b. Any number of numeric
// segments is accepted, so four part assembly versions compare correctly.
func CompareVersions(a, b string) (int, error) {
	va, err := version.NewVersion(a)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", a, err)
	}
	vb, err := version.NewVersion(b)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", b, err)
	}
	return va.Compare(vb), nil
}
