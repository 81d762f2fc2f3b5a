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

// Package cli holds the command line flags shared by every platform
// binary.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ZaparooProject/tcgl-launcher/internal/telemetry"
	"github.com/ZaparooProject/tcgl-launcher/pkg/config"
	"github.com/ZaparooProject/tcgl-launcher/pkg/helpers"
	"github.com/ZaparooProject/tcgl-launcher/pkg/platforms"
	"github.com/ZaparooProject/tcgl-launcher/pkg/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// TermsOfUseVersion is the latest terms of use version, replaced at build
// time. Zero disables the terms check.
var TermsOfUseVersion = "0"

// SentryDSN is the default error reporting project, replaced at build
// time. Reports are only sent after the player opts in.
var SentryDSN = ""

var ErrMissingValue = errors.New("flag requires a value")

type Flags struct {
	fs                *flag.FlagSet
	Version           *bool
	Start             *bool
	Server            *string
	Account           *string
	PublishServer     *string
	AddServer         *string
	RemoveServer      *string
	ListServers       *bool
	GameServers       *bool
	News              *bool
	ListAccounts      *bool
	AddAccount        *string
	RemoveAccount     *string
	InstallDir        *string
	Detect            *bool
	Running           *bool
	CheckUpdate       *bool
	ClearBrowserCache *bool
	Verify            *bool
	AcceptTerms       *bool
	ErrorReporting    *string
	Debug             *bool
}

// SetupFlags registers the launcher flags on the default flag set.
func SetupFlags() *Flags {
	return NewFlags(flag.CommandLine)
}

func NewFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		fs:      fs,
		Version: fs.Bool("version", false, "print version and exit"),
		Start:   fs.Bool("start", false, "start the game"),
		Server: fs.String(
			"server",
			"",
			"game server to start against, defaults to the last selected one",
		),
		Account: fs.String(
			"account",
			"",
			"play account to start with, defaults to the last used one",
		),
		PublishServer: fs.String(
			"publish-server",
			"",
			"select the publish server with this identifier",
		),
		AddServer: fs.String(
			"add-server",
			"",
			"add a publish server given as name=url",
		),
		RemoveServer: fs.String("remove-server", "", "remove a publish server"),
		ListServers:  fs.Bool("list-servers", false, "list publish servers"),
		GameServers: fs.Bool(
			"game-servers",
			false,
			"list game servers of the selected publish server",
		),
		News:          fs.Bool("news", false, "print news of the selected publish server"),
		ListAccounts:  fs.Bool("accounts", false, "list play accounts"),
		AddAccount:    fs.String("add-account", "", "add a play account"),
		RemoveAccount: fs.String("remove-account", "", "remove a play account"),
		InstallDir: fs.String(
			"install-dir",
			"",
			"set and store the game install directory",
		),
		Detect:            fs.Bool("detect", false, "detect and store the game install directory"),
		Running:           fs.Bool("running", false, "report whether the game is running"),
		CheckUpdate:       fs.Bool("check-update", false, "check for a launcher update"),
		ClearBrowserCache: fs.Bool("clear-browser-cache", false, "clear the game's built-in browser cache"),
		Verify:            fs.Bool("verify", false, "verify bundled resource checksums"),
		AcceptTerms:       fs.Bool("accept-terms", false, "accept the current terms of use"),
		ErrorReporting: fs.String(
			"error-reporting",
			"",
			"turn anonymous error reporting on or off",
		),
		Debug: fs.Bool("debug", false, "enable debug logging"),
	}
}

func (f *Flags) isFlagPassed(name string) bool {
	found := false
	f.fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})
	return found
}

// Pre parses the command line and handles flags that need no config.
func (f *Flags) Pre(pl platforms.Platform) {
	if !f.fs.Parsed() {
		_ = f.fs.Parse(os.Args[1:])
	}

	if *f.Version {
		_, _ = fmt.Printf("tcgl-launcher v%s (%s)\n", config.AppVersion, pl.ID())
		os.Exit(0)
	}
}

// Post runs the requested action and exits.
func (f *Flags) Post(ctx context.Context, svc *service.Service, pl platforms.Platform) {
	if err := f.Execute(ctx, svc, pl, os.Stdout); err != nil {
		log.Error().Err(err).Msg("command failed")
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		telemetry.Close()
		os.Exit(1)
	}
	telemetry.Close()
	os.Exit(0)
}

func termsVersion() int {
	v, err := strconv.Atoi(TermsOfUseVersion)
	if err != nil {
		return 0
	}
	return v
}

// Execute runs the first requested action, writing results to out.
//
//nolint:gocyclo,cyclop // flat dispatch over mutually exclusive flags
func (f *Flags) Execute(ctx context.Context, svc *service.Service, pl platforms.Platform, out io.Writer) error {
	if *f.AcceptTerms {
		if err := svc.AcceptTerms(termsVersion()); err != nil {
			return err //nolint:wrapcheck // already descriptive
		}
	}

	if f.isFlagPassed("error-reporting") {
		var enabled bool
		switch strings.ToLower(*f.ErrorReporting) {
		case "on", "true":
			enabled = true
		case "off", "false":
		default:
			return fmt.Errorf("%w: error-reporting expects on or off", ErrMissingValue)
		}
		if err := svc.SetErrorReporting(enabled); err != nil {
			return err //nolint:wrapcheck // already descriptive
		}
	}

	if f.isFlagPassed("publish-server") {
		if *f.PublishServer == "" {
			return fmt.Errorf("%w: publish-server", ErrMissingValue)
		}
		if err := svc.SelectPublishServer(*f.PublishServer); err != nil {
			return err //nolint:wrapcheck // already descriptive
		}
	}

	switch {
	case f.isFlagPassed("add-server"):
		name, url, ok := strings.Cut(*f.AddServer, "=")
		if !ok {
			return fmt.Errorf("%w: add-server expects name=url", ErrMissingValue)
		}
		added, err := svc.AddPublishServer(name, url)
		if err != nil {
			return err //nolint:wrapcheck // already descriptive
		}
		_, _ = fmt.Fprintf(out, "%s\t%s\n", added.Identifier, added.Name)
	case f.isFlagPassed("remove-server"):
		//nolint:wrapcheck // already descriptive
		return svc.RemovePublishServer(*f.RemoveServer)
	case *f.ListServers:
		current := svc.PublishServerIdentifier()
		for _, s := range svc.Servers().List() {
			mark := " "
			if s.Identifier == current {
				mark = "*"
			}
			_, _ = fmt.Fprintf(out, "%s %s\t%s\t%s\n", mark, s.Identifier, s.Name, s.URL)
		}
	case *f.GameServers:
		servers, err := svc.GameServers(ctx)
		if err != nil {
			return err //nolint:wrapcheck // already descriptive
		}
		for _, s := range servers {
			_, _ = fmt.Fprintf(out, "%s\t%s\t%s\n", s.Identifier, s.Name, s.EntryPoint)
		}
	case *f.News:
		news, err := svc.GameNews(ctx)
		if err != nil {
			return err //nolint:wrapcheck // already descriptive
		}
		_, _ = fmt.Fprintln(out, news.Content)
	case *f.ListAccounts:
		for _, a := range svc.Accounts().List() {
			_, _ = fmt.Fprintf(out, "%s\t%s\n", a.Identifier, a.Name)
		}
	case f.isFlagPassed("add-account"):
		added, err := svc.Accounts().Add(*f.AddAccount)
		if err != nil {
			return err //nolint:wrapcheck // already descriptive
		}
		_, _ = fmt.Fprintf(out, "%s\t%s\n", added.Identifier, added.Name)
	case f.isFlagPassed("remove-account"):
		//nolint:wrapcheck // already descriptive
		return svc.Accounts().Remove(*f.RemoveAccount)
	case f.isFlagPassed("install-dir"):
		if err := svc.SetInstallDirectory(*f.InstallDir); err != nil {
			return err //nolint:wrapcheck // already descriptive
		}
		//nolint:wrapcheck // already descriptive
		return svc.StoreInstallDirectory()
	case *f.Detect:
		if !svc.DetectInstallDirectory(ctx) {
			return errors.New("game install directory not found")
		}
		_, _ = fmt.Fprintln(out, svc.InstallDirectory())
		//nolint:wrapcheck // already descriptive
		return svc.StoreInstallDirectory()
	case *f.Running:
		_, _ = fmt.Fprintln(out, svc.IsGameRunning(ctx))
	case *f.CheckUpdate:
		res, err := svc.CheckUpdate(ctx)
		if err != nil {
			return err //nolint:wrapcheck // already descriptive
		}
		if res.Updatable {
			_, _ = fmt.Fprintf(out, "update available: %s\n%s\n", res.DownloadURL, res.Changelog)
		} else {
			_, _ = fmt.Fprintln(out, "up to date")
		}
	case *f.ClearBrowserCache:
		//nolint:wrapcheck // already descriptive
		return svc.ClearBuiltinBrowserCache()
	case *f.Verify:
		//nolint:wrapcheck // already descriptive
		return service.VerifyResources(afero.NewOsFs(), pl.Settings().ResourcesDir)
	case *f.Start:
		return f.start(ctx, svc)
	}
	return nil
}

func (f *Flags) start(ctx context.Context, svc *service.Service) error {
	if !svc.TermsAccepted(termsVersion()) {
		return fmt.Errorf("%w: run with -accept-terms first", service.ErrTermsNotAccepted)
	}

	server := *f.Server
	if server == "" {
		server = svc.SelectedServer()
	} else if err := svc.SetSelectedServer(server); err != nil {
		return err //nolint:wrapcheck // already descriptive
	}

	account := *f.Account
	if account == "" {
		account = svc.PlayAccount()
	} else if err := svc.SetPlayAccount(account); err != nil {
		return err //nolint:wrapcheck // already descriptive
	}

	//nolint:wrapcheck // already descriptive
	return svc.StartGame(ctx, server, account)
}

// Setup creates the platform directories, starts logging and loads the
// config.
func Setup(
	pl platforms.Platform,
	defaultConfig config.Values,
	writers []io.Writer,
	debug bool,
) *config.Instance {
	err := helpers.EnsureDirectories(pl)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error creating directories: %v\n", err)
		os.Exit(1)
	}

	err = helpers.InitLogging(pl, writers)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(pl), defaultConfig)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.DebugLogging() || debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	reporting := cfg.ErrorReporting()
	if reporting.DSN == "" {
		reporting.DSN = SentryDSN
	}
	err = telemetry.Init(telemetry.Options{
		Enabled:    reporting.Enabled,
		DSN:        reporting.DSN,
		DeviceID:   cfg.DeviceID(),
		AppVersion: config.AppVersion,
		PlatformID: pl.ID(),
	})
	if err != nil {
		log.Warn().Err(err).Msg("error reporting unavailable")
	}

	return cfg
}
