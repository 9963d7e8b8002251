// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mveltman/hearthsync/offline"
)

// Client talks to the hosted relational data store over its REST surface
// (PostgREST-style filters and upserts). Transport failures are classified
// as offline.NetworkError and HTTP-level rejections as offline.BackendError,
// so controllers branch on type rather than message text.
type Client struct {
	BaseURL string
	Token   func(ctx context.Context) (string, error)
	HTTP    *http.Client
}

// NewClient creates a REST client for the given base URL. Token supplies the
// bearer token for each request.
func NewClient(baseURL string, token func(ctx context.Context) (string, error)) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// resource is the typed backend for one entity table. It implements
// offline.Backend[E].
type resource[E offline.Entity] struct {
	c           *Client
	table       string
	orderBy     string // PostgREST order expression for fetches
	monthColumn string // date column for month-sliced scopes, empty if none
}

// TransactionBackend returns the data store client for transactions.
func TransactionBackend(c *Client) offline.Backend[Transaction] {
	return &resource[Transaction]{c: c, table: "transactions", orderBy: "date.desc", monthColumn: "date"}
}

// AssetBackend returns the data store client for assets.
func AssetBackend(c *Client) offline.Backend[Asset] {
	return &resource[Asset]{c: c, table: "assets", orderBy: "created_at.desc"}
}

// DebtBackend returns the data store client for debts.
func DebtBackend(c *Client) offline.Backend[Debt] {
	return &resource[Debt]{c: c, table: "debts", orderBy: "created_at.desc"}
}

func (r *resource[E]) FetchByScope(ctx context.Context, scope offline.Scope) ([]E, error) {
	params := url.Values{}
	if scope.View == offline.ViewFamily && scope.FamilyID != "" {
		params.Set("family_id", "eq."+scope.FamilyID)
	} else {
		params.Set("owner_user_id", "eq."+scope.UserID)
	}
	if scope.Month != "" && r.monthColumn != "" {
		start, end, err := MonthBounds(scope.Month)
		if err != nil {
			return nil, fmt.Errorf("invalid month scope %q: %w", scope.Month, err)
		}
		params.Add(r.monthColumn, "gte."+start)
		params.Add(r.monthColumn, "lt."+end)
	}
	params.Set("order", r.orderBy)

	body, err := r.c.do(ctx, http.MethodGet, r.table+"?"+params.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}

	var items []E
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s collection: %w", r.table, err)
	}
	return items, nil
}

func (r *resource[E]) Upsert(ctx context.Context, e E) (E, error) {
	var zero E
	payload, err := json.Marshal([]E{e})
	if err != nil {
		return zero, fmt.Errorf("failed to encode %s: %w", r.table, err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
		// Caller-supplied ids must create-or-update by primary key so rows
		// minted offline replay cleanly.
		"Prefer": "resolution=merge-duplicates,return=representation",
	}
	body, err := r.c.do(ctx, http.MethodPost, r.table+"?on_conflict=id", bytes.NewReader(payload), headers)
	if err != nil {
		return zero, err
	}

	var items []E
	if err := json.Unmarshal(body, &items); err != nil {
		return zero, fmt.Errorf("failed to decode %s upsert response: %w", r.table, err)
	}
	if len(items) == 0 {
		return e, nil
	}
	return items[0], nil
}

func (r *resource[E]) Delete(ctx context.Context, id string) error {
	_, err := r.c.do(ctx, http.MethodDelete, r.table+"?id=eq."+url.QueryEscape(id), nil, nil)
	return err
}

// do performs one request and classifies failures. A transport error is
// network-shaped; a non-2xx status is a backend rejection. Deleting rows the
// store has never seen is a 2xx with an empty result set, never an error.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+"/rest/v1/"+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	token, err := c.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &offline.NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &offline.NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(data))
		if len(msg) > 512 {
			msg = msg[:512]
		}
		return nil, &offline.BackendError{StatusCode: resp.StatusCode, Message: msg}
	}
	return data, nil
}
