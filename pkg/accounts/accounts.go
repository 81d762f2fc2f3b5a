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

// Package accounts keeps the named play accounts a player can launch the
// game with.
package accounts

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ZaparooProject/tcgl-launcher/pkg/config"
	"github.com/rs/zerolog/log"
)

const identifierLength = 6

var (
	ErrEmptyName     = errors.New("account name is empty")
	ErrAccountExists = errors.New("play account already exists")
)

// Store persists play accounts. *config.Instance satisfies it.
type Store interface {
	Accounts() []config.PlayAccount
	UpdateAccounts(fn func([]config.PlayAccount) ([]config.PlayAccount, error)) error
	Save() error
}

type Accounts struct {
	store Store
}

func New(store Store) *Accounts {
	return &Accounts{store: store}
}

// Identifier derives the stable identifier of an account name.
func Identifier(name string) string {
	sum := sha256.Sum256([]byte(name))
	return hex.EncodeToString(sum[:])[:identifierLength]
}

func (a *Accounts) Add(name string) (config.PlayAccount, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return config.PlayAccount{}, ErrEmptyName
	}

	account := config.PlayAccount{
		Identifier: Identifier(name),
		Name:       name,
	}
	err := a.store.UpdateAccounts(func(list []config.PlayAccount) ([]config.PlayAccount, error) {
		if slices.ContainsFunc(list, func(p config.PlayAccount) bool {
			return p.Identifier == account.Identifier
		}) {
			return nil, fmt.Errorf("%w: %s", ErrAccountExists, name)
		}
		return append(list, account), nil
	})
	if err != nil {
		return config.PlayAccount{}, err
	}

	if err := a.save(); err != nil {
		return config.PlayAccount{}, err
	}
	log.Info().Msgf("added play account %s", account.Identifier)
	return account, nil
}

func (a *Accounts) List() []config.PlayAccount {
	return a.store.Accounts()
}

// Get looks up an account by identifier.
func (a *Accounts) Get(identifier string) (config.PlayAccount, bool) {
	for _, p := range a.store.Accounts() {
		if p.Identifier == identifier {
			return p, true
		}
	}
	return config.PlayAccount{}, false
}

// Remove deletes the account. Unknown identifiers are ignored.
func (a *Accounts) Remove(identifier string) error {
	err := a.store.UpdateAccounts(func(list []config.PlayAccount) ([]config.PlayAccount, error) {
		return slices.DeleteFunc(list, func(p config.PlayAccount) bool {
			return p.Identifier == identifier
		}), nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove play account: %w", err)
	}
	return a.save()
}

func (a *Accounts) save() error {
	if err := a.store.Save(); err != nil {
		return fmt.Errorf("failed to save play accounts: %w", err)
	}
	return nil
}
