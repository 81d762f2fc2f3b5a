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

//go:build !windows

package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealExecutor_Run(t *testing.T) {
	t.Parallel()

	executor := &RealExecutor{}

	t.Run("executes_successful_command", func(t *testing.T) {
		t.Parallel()

		err := executor.Run(context.Background(), "true")

		assert.NoError(t, err)
	})

	t.Run("returns_error_for_failed_command", func(t *testing.T) {
		t.Parallel()

		err := executor.Run(context.Background(), "false")

		assert.Error(t, err)
	})
}

func TestRealExecutor_Exec(t *testing.T) {
	t.Parallel()

	executor := &RealExecutor{}

	t.Run("captures_stdout_and_stderr", func(t *testing.T) {
		t.Parallel()

		res, err := executor.Exec(context.Background(), "sh", "-c", "echo out; echo err >&2")

		require.NoError(t, err)
		assert.Equal(t, 0, res.Status)
		assert.Equal(t, "out\n", string(res.Stdout))
		assert.Equal(t, "err\n", string(res.Stderr))
	})

	t.Run("non_zero_exit_is_a_status", func(t *testing.T) {
		t.Parallel()

		res, err := executor.Exec(context.Background(), "sh", "-c", "exit 3")

		require.NoError(t, err)
		assert.Equal(t, 3, res.Status)
	})

	t.Run("returns_error_for_nonexistent_command", func(t *testing.T) {
		t.Parallel()

		_, err := executor.Exec(context.Background(), "nonexistent_command_that_should_not_exist_12345")

		require.Error(t, err)
	})
}

func TestRealExecutor_StartWithOptions(t *testing.T) {
	t.Parallel()

	executor := &RealExecutor{}

	t.Run("starts_detached_command", func(t *testing.T) {
		t.Parallel()

		err := executor.StartWithOptions(context.Background(), StartOptions{Detached: true}, "true")

		assert.NoError(t, err)
	})

	t.Run("starts_command_without_options", func(t *testing.T) {
		t.Parallel()

		err := executor.StartWithOptions(context.Background(), StartOptions{}, "true")

		assert.NoError(t, err)
	})

	t.Run("detached_start_respects_cancelled_context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := executor.StartWithOptions(ctx, StartOptions{Detached: true}, "true")

		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("returns_error_for_nonexistent_command", func(t *testing.T) {
		t.Parallel()

		err := executor.StartWithOptions(
			context.Background(),
			StartOptions{Detached: true},
			"nonexistent_command_that_should_not_exist_12345",
		)

		require.Error(t, err)
	})
}

func TestExecutor_Interface(t *testing.T) {
	t.Parallel()

	// Verify that RealExecutor implements Executor
	var _ Executor = (*RealExecutor)(nil)
}
