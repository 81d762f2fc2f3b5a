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

// Package publishers resolves game servers announced by publish servers
// and keeps the list of publish servers the player has added.
package publishers

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // identifiers only, not a security boundary
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ZaparooProject/tcgl-launcher/pkg/cache"
	"github.com/ZaparooProject/tcgl-launcher/pkg/game"
	"github.com/ZaparooProject/tcgl-launcher/pkg/shared/httpclient"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	// PublishTTL is how long a fetched publish document stays fresh.
	PublishTTL = 10 * time.Second
	// OfficialServerName is shown for the built-in official entry.
	OfficialServerName = "官方服务器"
	NewsTypeText       = "text"
)

var (
	ErrUnsupportedURL     = errors.New("only http(s) URLs are supported")
	ErrUnsupportedVersion = errors.New("publisher provided data of an unknown version")
)

var supportedVersions = []int{1}

type ServerItem struct {
	PlayerCount      *int   `json:"playerCount,omitempty"`
	PlayerCountLimit *int   `json:"playerCountLimit,omitempty"`
	Identifier       string `json:"identifier"`
	EntryPoint       string `json:"entryPoint"`
	Name             string `json:"name"`
}

// News is the announcement shown next to a publisher's server list. The
// document may carry it either as a bare string or as {type, content}.
type News struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (n *News) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = News{Type: NewsTypeText}
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*n = News{Type: NewsTypeText, Content: text}
		return nil
	}

	type rawNews News
	var raw rawNews
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid news: %w", err)
	}
	*n = News(raw)
	if n.Type == "" {
		n.Type = NewsTypeText
	}
	return nil
}

type PublishData struct {
	News    News         `json:"news"`
	Servers []ServerItem `json:"servers"`
	Version int          `json:"$version"`
}

// Options configures how publishers reach the network.
type Options struct {
	Client *httpclient.Client
	Clock  clockwork.Clock
}

func (o Options) client() *httpclient.Client {
	if o.Client == nil {
		return httpclient.DefaultClient
	}
	return o.Client
}

// Publisher reads the server list of a single publish server.
type Publisher struct {
	client *httpclient.Client
	cache  *cache.Cache[PublishData]
	url    string
	group  singleflight.Group
}

var _ game.EntryPointResolver = (*Publisher)(nil)

// NewPublisher creates a publisher for rawURL. The official sentinel
// identifier yields a publisher that never touches the network.
func NewPublisher(rawURL string, opts Options) (*Publisher, error) {
	if rawURL == game.OfficialServerIdentifier {
		return &Publisher{
			client: opts.client(),
			cache:  cache.NewWith(officialPublishData(), cache.NoExpiry, opts.Clock),
			url:    rawURL,
		}, nil
	}

	if err := checkHTTPURL(rawURL); err != nil {
		return nil, err
	}

	return &Publisher{
		client: opts.client(),
		cache:  cache.New[PublishData](PublishTTL, opts.Clock),
		url:    rawURL,
	}, nil
}

func officialPublishData() PublishData {
	return PublishData{
		Version: 1,
		Servers: []ServerItem{{
			Identifier: game.OfficialServerIdentifier,
			EntryPoint: game.OfficialServerIdentifier,
			Name:       OfficialServerName,
		}},
		News: News{Type: NewsTypeText},
	}
}

func checkHTTPURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid publisher url %q: %w", rawURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %s", ErrUnsupportedURL, rawURL)
	}
	return nil
}

// URL returns the publish document location.
func (p *Publisher) URL() string {
	return p.url
}

// fetch returns the cached document when fresh. With allowStale an
// expired document is served instead of going to the network.
func (p *Publisher) fetch(ctx context.Context, allowStale bool) (PublishData, error) {
	if data, ok := p.cache.Get(false); ok {
		return data, nil
	}
	if allowStale {
		if data, ok := p.cache.Get(true); ok {
			return data, nil
		}
	}

	// concurrent callers share one request, each can still give up on
	// its own context
	ch := p.group.DoChan("fetch", func() (any, error) {
		return p.download(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return PublishData{}, fmt.Errorf("publisher fetch cancelled: %w", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return PublishData{}, res.Err
		}
		data, _ := res.Val.(PublishData)
		return data, nil
	}
}

func (p *Publisher) download(ctx context.Context) (PublishData, error) {
	log.Debug().Msgf("fetching publish data: %s", p.url)

	var data PublishData
	if err := p.client.GetJSON(ctx, p.url, &data); err != nil {
		return PublishData{}, fmt.Errorf("failed to fetch publish data: %w", err)
	}

	ok := false
	for _, v := range supportedVersions {
		if data.Version == v {
			ok = true
			break
		}
	}
	if !ok {
		return PublishData{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, data.Version)
	}

	for i := range data.Servers {
		normalizeServer(&data.Servers[i])
	}
	if data.News.Type == "" {
		data.News.Type = NewsTypeText
	}

	p.cache.Set(data, true)
	return data, nil
}

func normalizeServer(item *ServerItem) {
	item.Identifier = strings.TrimSpace(item.Identifier)
	if item.Identifier == "" {
		item.Identifier = md5Hex(item.EntryPoint)
	}
	if item.Name == "" {
		item.Name = item.Identifier
	}
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s)) //nolint:gosec // see import
	return hex.EncodeToString(sum[:])
}

// GetEntryPoint returns the entry point of the server with the given
// identifier, or an empty string when the publisher does not list it.
// Stale data is accepted so a launch works while the publisher is down.
func (p *Publisher) GetEntryPoint(ctx context.Context, identifier string) (string, error) {
	data, err := p.fetch(ctx, true)
	if err != nil {
		return "", err
	}
	for _, s := range data.Servers {
		if s.Identifier == identifier {
			return s.EntryPoint, nil
		}
	}
	return "", nil
}

func (p *Publisher) GetServers(ctx context.Context) ([]ServerItem, error) {
	data, err := p.fetch(ctx, false)
	if err != nil {
		return nil, err
	}
	return append([]ServerItem(nil), data.Servers...), nil
}

func (p *Publisher) GetNews(ctx context.Context) (News, error) {
	data, err := p.fetch(ctx, false)
	if err != nil {
		return News{}, err
	}
	return data.News, nil
}
