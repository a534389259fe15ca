package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenProvider is a Provider backed by a session JWT issued by the hosted
// auth service. The token is parsed without signature verification - the
// client has no access to the issuer's keys - only to read its expiry, so a
// dead session is detected locally instead of by a 401 round trip.
type TokenProvider struct {
	mu        sync.Mutex
	raw       string
	expiresAt time.Time
	loaded    bool
	signedOut bool
	now       func() time.Time
}

func NewTokenProvider(raw string) *TokenProvider {
	return &TokenProvider{raw: raw, now: time.Now}
}

// Load parses the configured token and marks the provider ready. An empty
// token is not an error: the provider just reports no session.
func (p *TokenProvider) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.raw == "" {
		p.loaded = true
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(p.raw, claims); err != nil {
		return fmt.Errorf("failed to parse session token: %w", err)
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		p.expiresAt = exp.Time
	}
	p.loaded = true
	return nil
}

func (p *TokenProvider) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loaded
}

func (p *TokenProvider) Session() Session {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded || p.signedOut || p.raw == "" {
		return nil
	}
	if !p.expiresAt.IsZero() && !p.now().Before(p.expiresAt) {
		return nil
	}
	return &tokenSession{provider: p}
}

func (p *TokenProvider) SignOut() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signedOut = true
	return nil
}

type tokenSession struct {
	provider *TokenProvider
}

func (s *tokenSession) Token(ctx context.Context) (string, error) {
	p := s.provider
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.signedOut {
		return "", nil
	}
	if !p.expiresAt.IsZero() && !p.now().Before(p.expiresAt) {
		return "", nil
	}
	return p.raw, nil
}
