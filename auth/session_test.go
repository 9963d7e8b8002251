// Copyright 2025 Marko Veltman
// SPDX-License-Identifier: Apache-2.0

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, userID, email string, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSetSessionExtractsIdentity(t *testing.T) {
	p := NewProvider()
	require.Nil(t, p.CurrentUser())

	token := signToken(t, "user-42", "sam@example.com", time.Now().Add(time.Hour))
	require.NoError(t, p.SetSession(token))

	user := p.CurrentUser()
	require.NotNil(t, user)
	require.Equal(t, "user-42", user.ID)
	require.Equal(t, "sam@example.com", user.Email)

	id, ok := p.CurrentUserID()
	require.True(t, ok)
	require.Equal(t, "user-42", id)

	got, err := p.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, token, got)
}

func TestSetSessionRejectsGarbageAndExpiredTokens(t *testing.T) {
	p := NewProvider()

	require.Error(t, p.SetSession("not-a-jwt"))
	require.Error(t, p.SetSession(signToken(t, "user-42", "", time.Now().Add(-time.Minute))))

	// Missing sub claim.
	require.Error(t, p.SetSession(signToken(t, "", "x@example.com", time.Now().Add(time.Hour))))

	require.Nil(t, p.CurrentUser())
	_, ok := p.CurrentUserID()
	require.False(t, ok)
}

func TestSignOutClearsSessionAndNotifies(t *testing.T) {
	p := NewProvider()

	var events []*User
	cancel := p.Subscribe(func(u *User) { events = append(events, u) })
	defer cancel()

	require.NoError(t, p.SetSession(signToken(t, "user-42", "sam@example.com", time.Now().Add(time.Hour))))
	p.SignOut()

	require.Len(t, events, 2)
	require.Equal(t, "user-42", events[0].ID)
	require.Nil(t, events[1])

	_, err := p.Token(context.Background())
	require.Error(t, err)
}

func TestSubscriptionCancel(t *testing.T) {
	p := NewProvider()

	calls := 0
	cancel := p.Subscribe(func(*User) { calls++ })
	cancel()

	require.NoError(t, p.SetSession(signToken(t, "user-42", "", time.Now().Add(time.Hour))))
	require.Zero(t, calls)
}
