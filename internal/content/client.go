/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package content

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"flipbook/internal/book"
	applog "flipbook/internal/log"
)

// Entry is one resolvable content payload.
type Entry struct {
	Key       string    `json:"key"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Client is a minimal HTTP client for the content service. The desktop app
// uses it read-only: fetch payloads for the content keys a book left pending.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// ClientOptions tune the client; zero values pick defaults.
type ClientOptions struct {
	Timeout     time.Duration
	TLSInsecure bool
}

// NewClient creates a new content client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL, token string, opts ClientOptions) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := &http.Client{Timeout: timeout}
	if opts.TLSInsecure {
		hc.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}}
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  hc,
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return err
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	return dec.Decode(dest)
}

// Fetch returns the payload stored under key.
func (c *Client) Fetch(ctx context.Context, key string) (*Entry, error) {
	var e Entry
	if err := c.doJSON(ctx, http.MethodGet, "/api/content/"+key, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// KeyInfo is one row of the key listing.
type KeyInfo struct {
	Key       string    `json:"key"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListKeys returns the keys the service can resolve.
func (c *Client) ListKeys(ctx context.Context) ([]KeyInfo, error) {
	var list []KeyInfo
	if err := c.doJSON(ctx, http.MethodGet, "/api/content", &list); err != nil {
		return nil, err
	}
	return list, nil
}

// ResolvePending fetches every content key the host still has pending and
// swaps the payloads in. Keys the service does not know stay pending; a
// fetch error on one key does not stop the rest. Returns the number of
// resolved keys.
func (c *Client) ResolvePending(ctx context.Context, h *book.Host) (int, error) {
	l := applog.WithOperation(applog.WithComponent("content"), "resolve_pending")
	keys := h.PendingContentKeys()
	if len(keys) == 0 {
		return 0, nil
	}
	resolved := 0
	var firstErr error
	for _, key := range keys {
		e, err := c.Fetch(ctx, key)
		if err != nil {
			l.Warn("fetch failed", slog.String("key", key), slog.Any("err", err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if n := h.ResolveContent(e.Key, e.Title, e.Body); n > 0 {
			resolved++
		}
	}
	l.Info("pending content resolved", slog.Int("requested", len(keys)), slog.Int("resolved", resolved))
	return resolved, firstErr
}
