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

// Package service ties the launcher together: the selected publish
// server, the game install directory, play accounts and game launches.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/ZaparooProject/tcgl-launcher/pkg/accounts"
	"github.com/ZaparooProject/tcgl-launcher/pkg/bepinex"
	"github.com/ZaparooProject/tcgl-launcher/pkg/config"
	"github.com/ZaparooProject/tcgl-launcher/pkg/game"
	"github.com/ZaparooProject/tcgl-launcher/pkg/helpers/command"
	"github.com/ZaparooProject/tcgl-launcher/pkg/helpers/syncutil"
	"github.com/ZaparooProject/tcgl-launcher/pkg/platforms"
	"github.com/ZaparooProject/tcgl-launcher/pkg/publishers"
	"github.com/ZaparooProject/tcgl-launcher/pkg/shared/httpclient"
	"github.com/ZaparooProject/tcgl-launcher/pkg/updater"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrInvalidInstallDirectory = errors.New("not a game install directory")
	ErrLaunchInProgress        = errors.New("game launch already in progress")
	ErrUpdatesDisabled         = errors.New("update checks are not configured")
	ErrTermsNotAccepted        = errors.New("terms of use not accepted")
)

// Options are the collaborators of a Service. Zero values pick the
// defaults.
type Options struct {
	Fs         afero.Fs
	Executor   command.Executor
	Versions   bepinex.VersionReader
	Client     *httpclient.Client
	Clock      clockwork.Clock
	AppVersion string
	TempDir    string
}

type Service struct {
	fs         afero.Fs
	pl         platforms.Platform
	cfg        *config.Instance
	servers    *publishers.Servers
	accounts   *accounts.Accounts
	launcher   *game.Launcher
	updater    *updater.Updater
	installDir string
	serverID   string
	mu         syncutil.RWMutex
	launching  atomic.Bool
}

// New builds the service from the stored config. A stored install
// directory that is no longer valid is cleared, and an unknown publish
// server selection falls back to the official one.
//
//nolint:gocritic // options struct copied on construction
func New(pl platforms.Platform, cfg *config.Instance, opts Options) (*Service, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}

	resources := pl.Settings().ResourcesDir
	pkg := BundledPackage(resources).WithOverrides(opts.Fs, bepinex.PackageFiles{
		Core:            cfg.Package().Core,
		LoaderHook:      cfg.Package().LoaderHook,
		LoaderCompanion: cfg.Package().LoaderCompanion,
	})

	svc := &Service{
		fs:       opts.Fs,
		pl:       pl,
		cfg:      cfg,
		servers:  publishers.NewServers(cfg, publishers.Options{Client: opts.Client, Clock: opts.Clock}),
		accounts: accounts.New(cfg),
		launcher: game.NewLauncher(game.Deps{
			Fs:           opts.Fs,
			Platform:     pl,
			Executor:     opts.Executor,
			Versions:     opts.Versions,
			ResourcesDir: resources,
			TempDir:      opts.TempDir,
			Package:      pkg,
		}),
		installDir: cfg.GameInstallDirectory(),
	}

	if url := strings.TrimSpace(cfg.UpdateURL()); url != "" && opts.AppVersion != "" {
		u, err := updater.New(url, opts.AppVersion, updater.Options{Client: opts.Client, Clock: opts.Clock})
		if err != nil {
			log.Warn().Err(err).Msg("update checks disabled")
		} else {
			svc.updater = u
		}
	}

	if svc.installDir != "" && !game.IsInstallDirectory(opts.Fs, pl, svc.installDir) {
		log.Warn().Msgf("stored install directory is no longer valid: %s", svc.installDir)
		svc.installDir = ""
		cfg.SetGameInstallDirectory("")
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("failed to save config: %w", err)
		}
	}

	if err := svc.SelectPublishServer(cfg.PublishServerIdentifier()); err != nil {
		return nil, err
	}

	return svc, nil
}

func (s *Service) Servers() *publishers.Servers {
	return s.servers
}

func (s *Service) Accounts() *accounts.Accounts {
	return s.accounts
}

// PublishServerIdentifier returns the selected publish server.
func (s *Service) PublishServerIdentifier() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.serverID
}

// PublishServer returns the selected publish server entry.
func (s *Service) PublishServer() (config.PublishServer, bool) {
	return s.servers.Get(s.PublishServerIdentifier())
}

// SelectPublishServer switches to the publish server with the given
// identifier and remembers it. Unknown identifiers leave the selection
// alone; an empty identifier selects the official server.
func (s *Service) SelectPublishServer(identifier string) error {
	if identifier == "" {
		identifier = game.OfficialServerIdentifier
	}
	if !s.servers.Exists(identifier) {
		log.Warn().Msgf("unknown publish server: %s", identifier)
		if s.PublishServerIdentifier() != "" {
			return nil
		}
		identifier = game.OfficialServerIdentifier
	}

	s.mu.Lock()
	s.serverID = identifier
	s.mu.Unlock()

	if s.cfg.PublishServerIdentifier() == identifier {
		return nil
	}
	s.cfg.SetPublishServerIdentifier(identifier)
	if err := s.cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// AddPublishServer stores a new publish server.
func (s *Service) AddPublishServer(name, url string) (config.PublishServer, error) {
	//nolint:wrapcheck // registry errors are already descriptive
	return s.servers.Add(name, url)
}

// RemovePublishServer deletes a publish server, selecting the official
// one when it was the current selection.
func (s *Service) RemovePublishServer(identifier string) error {
	if err := s.servers.Remove(identifier); err != nil {
		//nolint:wrapcheck // registry errors are already descriptive
		return err
	}
	if identifier == s.PublishServerIdentifier() {
		return s.SelectPublishServer(game.OfficialServerIdentifier)
	}
	return nil
}

func (s *Service) publisher() (*publishers.Publisher, error) {
	p, err := s.servers.Publisher(s.PublishServerIdentifier())
	if err != nil {
		return nil, fmt.Errorf("failed to open publisher: %w", err)
	}
	return p, nil
}

// GameServers lists the game servers of the selected publish server.
func (s *Service) GameServers(ctx context.Context) ([]publishers.ServerItem, error) {
	p, err := s.publisher()
	if err != nil {
		return nil, err
	}
	//nolint:wrapcheck // publisher errors are already descriptive
	return p.GetServers(ctx)
}

// GameNews returns the announcement of the selected publish server.
func (s *Service) GameNews(ctx context.Context) (publishers.News, error) {
	p, err := s.publisher()
	if err != nil {
		return publishers.News{}, err
	}
	//nolint:wrapcheck // publisher errors are already descriptive
	return p.GetNews(ctx)
}

func (s *Service) serverData() config.ServerData {
	data, err := s.servers.AdditionalData(s.PublishServerIdentifier())
	if err != nil {
		log.Warn().Err(err).Msg("failed to read publish server data")
	}
	return data
}

// PlayAccount returns the account last used on the selected publish
// server.
func (s *Service) PlayAccount() string {
	return s.serverData().PlayAccount
}

func (s *Service) SetPlayAccount(account string) error {
	//nolint:wrapcheck // registry errors are already descriptive
	return s.servers.SetAdditionalData(s.PublishServerIdentifier(), config.ServerData{PlayAccount: account})
}

// SelectedServer returns the game server last picked on the selected
// publish server.
func (s *Service) SelectedServer() string {
	return s.serverData().SelectedServer
}

func (s *Service) SetSelectedServer(server string) error {
	//nolint:wrapcheck // registry errors are already descriptive
	return s.servers.SetAdditionalData(s.PublishServerIdentifier(), config.ServerData{SelectedServer: server})
}

// InstallDirectory returns the game install directory in use.
func (s *Service) InstallDirectory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.installDir
}

// SetInstallDirectory switches to path if it holds the game. The choice
// is kept in memory until StoreInstallDirectory.
func (s *Service) SetInstallDirectory(path string) error {
	if !game.IsInstallDirectory(s.fs, s.pl, path) {
		return fmt.Errorf("%w: %s", ErrInvalidInstallDirectory, path)
	}
	s.mu.Lock()
	s.installDir = path
	s.mu.Unlock()
	return nil
}

// StoreInstallDirectory writes the install directory in use to the config.
func (s *Service) StoreInstallDirectory() error {
	s.cfg.SetGameInstallDirectory(s.InstallDirectory())
	if err := s.cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// DetectInstallDirectory asks the platform where the game is installed
// and switches to it when valid.
func (s *Service) DetectInstallDirectory(ctx context.Context) bool {
	dir := s.pl.DetectInstallDirectory(ctx)
	if dir == "" {
		return false
	}
	return s.SetInstallDirectory(dir) == nil
}

func (s *Service) IsGameRunning(ctx context.Context) bool {
	return s.pl.IsGameRunning(ctx)
}

// IsAvailable reports whether the platform helpers can run.
func (s *Service) IsAvailable(ctx context.Context) bool {
	return s.pl.IsAvailable(ctx)
}

func (s *Service) ClearBuiltinBrowserCache() error {
	//nolint:wrapcheck // platform errors are already descriptive
	return s.pl.ClearBuiltinBrowserCache()
}

// Features returns the launch features enabled in the config.
func (s *Service) Features() []game.Feature {
	var features []game.Feature
	if s.cfg.FixBuiltinBrowserError() {
		features = append(features, game.FeatureFixBuiltinBrowserError)
	}
	if s.cfg.UnlockAllBeautifyDesks() {
		features = append(features, game.FeatureUnlockAllBeautifyDesks)
	}
	return features
}

// StartGame launches the game against the game server identifier of the
// selected publish server, signed in as account.
func (s *Service) StartGame(ctx context.Context, identifier, account string) error {
	if !s.launching.CompareAndSwap(false, true) {
		return ErrLaunchInProgress
	}
	defer s.launching.Store(false)

	p, err := s.publisher()
	if err != nil {
		return err
	}

	opt := game.Option{
		Server: &game.ServerOption{
			Identifier: identifier,
			Publisher:  p,
		},
		Account:     account,
		InstallPath: s.InstallDirectory(),
		Features:    s.Features(),
	}

	log.Info().
		Str("publish_server", s.PublishServerIdentifier()).
		Str("server", identifier).
		Str("account", account).
		Msg("starting game")

	//nolint:wrapcheck // launcher errors are already descriptive
	return s.launcher.Start(ctx, opt)
}

// CheckUpdate asks the update feed for a newer launcher.
func (s *Service) CheckUpdate(ctx context.Context) (updater.CheckResult, error) {
	if s.updater == nil {
		return updater.CheckResult{}, ErrUpdatesDisabled
	}
	//nolint:wrapcheck // updater errors are already descriptive
	return s.updater.Check(ctx)
}

// TermsAccepted reports whether the given terms of use version was
// accepted. Version 0 means there are no terms to accept.
func (s *Service) TermsAccepted(version int) bool {
	return version == 0 || s.cfg.TermsOfUseVersion() == version
}

// AcceptTerms records acceptance of a terms of use version.
func (s *Service) AcceptTerms(version int) error {
	s.cfg.SetTermsOfUseVersion(version)
	if err := s.cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

// SetErrorReporting stores the error reporting opt-in. It applies from
// the next start.
func (s *Service) SetErrorReporting(enabled bool) error {
	reporting := s.cfg.ErrorReporting()
	reporting.Enabled = enabled
	s.cfg.SetErrorReporting(reporting)
	if err := s.cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
