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

package publishers

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ZaparooProject/tcgl-launcher/pkg/config"
	"github.com/ZaparooProject/tcgl-launcher/pkg/game"
	"github.com/ZaparooProject/tcgl-launcher/pkg/helpers/syncutil"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var (
	ErrOfficialServer = errors.New("official servers cannot be deleted")
	ErrServerNotFound = errors.New("publish server not found")
	ErrServerExists   = errors.New("publish server already added")
	ErrInvalidServer  = errors.New("invalid publish server")
)

// Store persists the publish server list. *config.Instance satisfies it.
type Store interface {
	PublishServers() []config.PublishServer
	UpdatePublishServers(fn func([]config.PublishServer) ([]config.PublishServer, error)) error
	Save() error
}

type submission struct {
	Name string `validate:"required"`
	URL  string `validate:"required,http_url"`
}

// Servers is the registry of publish servers known to the launcher. The
// official entry is always listed and can't be removed.
type Servers struct {
	store      Store
	validate   *validator.Validate
	publishers map[string]*Publisher
	opts       Options
	mu         syncutil.Mutex
}

func NewServers(store Store, opts Options) *Servers {
	return &Servers{
		store:      store,
		opts:       opts,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		publishers: make(map[string]*Publisher),
	}
}

func officialServer() config.PublishServer {
	return config.PublishServer{
		Identifier: game.OfficialServerIdentifier,
		Name:       OfficialServerName,
		URL:        game.OfficialServerIdentifier,
	}
}

func withOfficial(servers []config.PublishServer) []config.PublishServer {
	if slices.ContainsFunc(servers, func(s config.PublishServer) bool {
		return s.Identifier == game.OfficialServerIdentifier
	}) {
		return servers
	}
	return append([]config.PublishServer{officialServer()}, servers...)
}

func (s *Servers) List() []config.PublishServer {
	return withOfficial(s.store.PublishServers())
}

func (s *Servers) Get(identifier string) (config.PublishServer, bool) {
	for _, srv := range s.List() {
		if srv.Identifier == identifier {
			return srv, true
		}
	}
	return config.PublishServer{}, false
}

func (s *Servers) Exists(identifier string) bool {
	_, ok := s.Get(identifier)
	return ok
}

// Add validates and stores a new publish server. Its identifier is the
// MD5 of the URL.
func (s *Servers) Add(name, rawURL string) (config.PublishServer, error) {
	sub := submission{
		Name: strings.TrimSpace(name),
		URL:  strings.TrimSpace(rawURL),
	}
	if err := s.validate.Struct(sub); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return config.PublishServer{}, fmt.Errorf(
				"%w: %s failed %s", ErrInvalidServer, verrs[0].Field(), verrs[0].Tag())
		}
		return config.PublishServer{}, fmt.Errorf("%w: %w", ErrInvalidServer, err)
	}
	if err := checkHTTPURL(sub.URL); err != nil {
		return config.PublishServer{}, fmt.Errorf("%w: %w", ErrInvalidServer, err)
	}

	added := config.PublishServer{
		Identifier: md5Hex(sub.URL),
		Name:       sub.Name,
		URL:        sub.URL,
	}

	err := s.store.UpdatePublishServers(func(servers []config.PublishServer) ([]config.PublishServer, error) {
		servers = withOfficial(servers)
		for _, srv := range servers {
			if srv.Identifier == added.Identifier {
				return nil, fmt.Errorf("%w: %s", ErrServerExists, sub.URL)
			}
		}
		return append(servers, added), nil
	})
	if err != nil {
		return config.PublishServer{}, fmt.Errorf("failed to add publish server: %w", err)
	}

	if err := s.save(); err != nil {
		return config.PublishServer{}, err
	}
	log.Info().Msgf("added publish server %s (%s)", added.Name, added.URL)
	return added, nil
}

func (s *Servers) Remove(identifier string) error {
	if identifier == game.OfficialServerIdentifier {
		return ErrOfficialServer
	}

	err := s.store.UpdatePublishServers(func(servers []config.PublishServer) ([]config.PublishServer, error) {
		return slices.DeleteFunc(withOfficial(servers), func(srv config.PublishServer) bool {
			return srv.Identifier == identifier
		}), nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove publish server: %w", err)
	}

	s.mu.Lock()
	delete(s.publishers, identifier)
	s.mu.Unlock()

	return s.save()
}

// AdditionalData returns the state remembered for a publish server.
func (s *Servers) AdditionalData(identifier string) (config.ServerData, error) {
	srv, ok := s.Get(identifier)
	if !ok {
		return config.ServerData{}, fmt.Errorf("%w: %s", ErrServerNotFound, identifier)
	}
	return srv.Additional, nil
}

// SetAdditionalData merges data into the state remembered for a publish
// server. Empty fields leave the stored value alone.
func (s *Servers) SetAdditionalData(identifier string, data config.ServerData) error {
	err := s.store.UpdatePublishServers(func(servers []config.PublishServer) ([]config.PublishServer, error) {
		servers = withOfficial(servers)
		i := slices.IndexFunc(servers, func(srv config.PublishServer) bool {
			return srv.Identifier == identifier
		})
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", ErrServerNotFound, identifier)
		}
		servers[i].Additional = servers[i].Additional.Merge(data)
		return servers, nil
	})
	if err != nil {
		return fmt.Errorf("failed to update publish server: %w", err)
	}
	return s.save()
}

// Publisher returns the publisher of a stored publish server. Publishers
// are reused so their caches survive between calls.
func (s *Servers) Publisher(identifier string) (*Publisher, error) {
	srv, ok := s.Get(identifier)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServerNotFound, identifier)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.publishers[identifier]; ok && p.URL() == srv.URL {
		return p, nil
	}

	p, err := NewPublisher(srv.URL, s.opts)
	if err != nil {
		return nil, err
	}
	s.publishers[identifier] = p
	return p, nil
}

func (s *Servers) save() error {
	if err := s.store.Save(); err != nil {
		return fmt.Errorf("failed to save publish servers: %w", err)
	}
	return nil
}
