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

//go:build darwin

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZaparooProject/tcgl-launcher/internal/telemetry"
	"github.com/ZaparooProject/tcgl-launcher/pkg/cli"
	"github.com/ZaparooProject/tcgl-launcher/pkg/config"
	"github.com/ZaparooProject/tcgl-launcher/pkg/platforms/mac"
	"github.com/ZaparooProject/tcgl-launcher/pkg/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	if os.Geteuid() == 0 {
		_, _ = fmt.Fprintf(os.Stderr, "tcgl-launcher cannot be run as root\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pl := mac.NewPlatform(mac.Options{})
	flags := cli.SetupFlags()

	flags.Pre(pl)

	var logWriters []io.Writer
	if *flags.Debug {
		logWriters = []io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}}
	}

	cfg := cli.Setup(pl, config.BaseDefaults, logWriters, *flags.Debug)

	svc, err := service.New(pl, cfg, service.Options{AppVersion: config.AppVersion})
	if err != nil {
		log.Error().Err(err).Msg("error starting launcher")
		_, _ = fmt.Fprintf(os.Stderr, "Error starting launcher: %v\n", err)
		telemetry.Close()
		os.Exit(1)
	}

	flags.Post(ctx, svc, pl)
}
