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
	"testing"

	"github.com/ZaparooProject/tcgl-launcher/pkg/bepinex"
	"github.com/ZaparooProject/tcgl-launcher/pkg/testing/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareVersions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a        string
		b        string
		expected int
	}{
		{name: "equal", a: "5.4.22.0", b: "5.4.22.0", expected: 0},
		{name: "fourth_segment", a: "5.4.22.1", b: "5.4.22.0", expected: 1},
		{name: "numeric_not_lexical", a: "5.4.9", b: "5.4.10", expected: -1},
		{name: "missing_segments_are_zero", a: "5.4", b: "5.4.0.0", expected: 0},
		{name: "major_wins", a: "6.0.0.0", b: "5.99.99.99", expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := bepinex.CompareVersions(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCompareVersions_Invalid(t *testing.T) {
	t.Parallel()

	_, err := bepinex.CompareVersions("five", "5.4.22.0")
	require.Error(t, err)

	_, err = bepinex.CompareVersions("5.4.22.0", "")
	require.Error(t, err)
}

func TestPEVersionReader(t *testing.T) {
	t.Parallel()

	t.Run("missing_file", func(t *testing.T) {
		t.Parallel()

		_, err := bepinex.PEVersionReader{}.FileVersion(helpers.NewMemoryFS().Fs, "/missing.dll")
		require.Error(t, err)
	})

	t.Run("not_a_pe_image", func(t *testing.T) {
		t.Parallel()

		h := helpers.NewMemoryFS()
		require.NoError(t, h.WriteFile("/plain.dll", []byte("this is not a portable executable")))

		_, err := bepinex.PEVersionReader{}.FileVersion(h.Fs, "/plain.dll")
		require.Error(t, err)
	})
}
