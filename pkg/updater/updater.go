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

// Package updater checks the update feed for a newer launcher release.
package updater

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/ZaparooProject/tcgl-launcher/pkg/cache"
	"github.com/ZaparooProject/tcgl-launcher/pkg/shared/httpclient"
	"github.com/hashicorp/go-version"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// CheckTTL is how long an update feed response is reused.
const CheckTTL = 60 * time.Second

var ErrUnsupportedURL = errors.New("only http(s) URLs are supported")

// UpdateData is the document served by the update feed. Every field is
// optional.
type UpdateData struct {
	Changelog *string `json:"changelog"`
	URL       *string `json:"url"`
	Version   *string `json:"version"`
}

type CheckResult struct {
	Changelog   string
	DownloadURL string
	Updatable   bool
}

type Options struct {
	Client *httpclient.Client
	Clock  clockwork.Clock
}

type Updater struct {
	client     *httpclient.Client
	cache      *cache.Cache[UpdateData]
	appVersion *version.Version
	url        string
}

// New creates an updater polling feedURL on behalf of appVersion.
func New(feedURL, appVersion string, opts Options) (*Updater, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid update url %q: %w", feedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedURL, feedURL)
	}

	v, err := version.NewVersion(appVersion)
	if err != nil {
		return nil, fmt.Errorf("invalid app version %q: %w", appVersion, err)
	}

	q := u.Query()
	q.Add("v", appVersion)
	u.RawQuery = q.Encode()

	client := opts.Client
	if client == nil {
		client = httpclient.DefaultClient
	}

	return &Updater{
		client:     client,
		cache:      cache.New[UpdateData](CheckTTL, opts.Clock),
		appVersion: v,
		url:        u.String(),
	}, nil
}

func (u *Updater) fetch(ctx context.Context) (UpdateData, error) {
	if data, ok := u.cache.Get(false); ok {
		return data, nil
	}

	var data UpdateData
	if err := u.client.GetJSON(ctx, u.url, &data); err != nil {
		return UpdateData{}, fmt.Errorf("failed to check for updates: %w", err)
	}
	u.cache.Set(data, true)
	return data, nil
}

// Check reports whether the feed announces a version newer than the
// running one. A missing or unparsable remote version is never newer.
func (u *Updater) Check(ctx context.Context) (CheckResult, error) {
	data, err := u.fetch(ctx)
	if err != nil {
		return CheckResult{}, err
	}

	var res CheckResult
	if data.Changelog != nil {
		res.Changelog = *data.Changelog
	}
	if data.URL != nil {
		res.DownloadURL = *data.URL
	}
	if data.Version != nil {
		remote, err := version.NewVersion(*data.Version)
		if err != nil {
			log.Warn().Err(err).Msgf("ignoring invalid remote version: %s", *data.Version)
		} else {
			res.Updatable = remote.GreaterThan(u.appVersion)
		}
	}
	return res, nil
}
