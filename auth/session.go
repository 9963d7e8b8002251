// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

// Package auth adapts the hosted auth provider's access tokens into the
// minimal session surface the offline engine consumes: the current user and
// session-change notifications.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User is the signed-in identity as the engine sees it.
type User struct {
	ID    string
	Email string
}

// Claims are the access-token claims this module cares about. The user id
// rides in the standard 'sub' claim.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Provider holds the current session and notifies subscribers on change.
// The access token itself is issued and refreshed by the hosted auth
// service; Provider only decodes it to learn who is signed in.
type Provider struct {
	mu     sync.Mutex
	user   *User
	token  string
	nextID int
	subs   map[int]func(*User)
}

// NewProvider creates a provider with no active session.
func NewProvider() *Provider {
	return &Provider{subs: make(map[int]func(*User))}
}

// SetSession installs the access token for the signed-in user. The token is
// decoded without signature verification; the backend verifies signatures,
// the client only extracts identity claims from tokens it received over the
// authenticated channel.
func (p *Provider) SetSession(token string) error {
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return fmt.Errorf("failed to decode access token: %w", err)
	}
	if claims.Subject == "" {
		return fmt.Errorf("access token missing sub (user id) claim")
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return fmt.Errorf("access token expired at %s", claims.ExpiresAt.Format(time.RFC3339))
	}

	user := &User{ID: claims.Subject, Email: claims.Email}
	p.mu.Lock()
	p.user = user
	p.token = token
	subs := p.snapshotSubs()
	p.mu.Unlock()
	for _, fn := range subs {
		fn(user)
	}
	return nil
}

// SignOut clears the session and notifies subscribers with a nil user.
func (p *Provider) SignOut() {
	p.mu.Lock()
	p.user = nil
	p.token = ""
	subs := p.snapshotSubs()
	p.mu.Unlock()
	for _, fn := range subs {
		fn(nil)
	}
}

// CurrentUser returns the signed-in user, or nil when there is no session.
func (p *Provider) CurrentUser() *User {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.user
}

// CurrentUserID is the function shape the drainer consumes.
func (p *Provider) CurrentUserID() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.user == nil {
		return "", false
	}
	return p.user.ID, true
}

// Token returns the raw access token for outgoing requests. The function
// shape matches what the REST client expects.
func (p *Provider) Token(_ context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.token == "" {
		return "", fmt.Errorf("no active session")
	}
	return p.token, nil
}

// Subscribe registers a session-change callback and returns a cancel
// function. The callback receives the new user, or nil on sign-out.
func (p *Provider) Subscribe(fn func(*User)) (cancel func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *Provider) snapshotSubs() []func(*User) {
	subs := make([]func(*User), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	return subs
}
