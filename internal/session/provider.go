package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/fitplate/dashboard/internal/backend"
	"github.com/fitplate/dashboard/internal/roles"
)

// IdentityFetcher resolves the profile of the user who owns an access token
type IdentityFetcher interface {
	Me(ctx context.Context, token string) (*backend.Identity, error)
}

// Provider is the single owner of one browser session for the duration of a request.
// It exposes the current session and identity, and the operations that change them.
type Provider struct {
	id      uuid.UUID
	store   Store
	fetcher IdentityFetcher
	logger  *slog.Logger

	mu        sync.RWMutex
	session   Session
	identity  *backend.Identity
	resolving bool
}

// Open loads the session with the given ID and returns a Provider for it
func Open(ctx context.Context, id uuid.UUID, store Store, fetcher IdentityFetcher, logger *slog.Logger) (*Provider, error) {
	s, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		id:        id,
		store:     store,
		fetcher:   fetcher,
		logger:    logger,
		session:   s,
		resolving: s.Authenticated(),
	}, nil
}

// ID returns the opaque session ID
func (p *Provider) ID() uuid.UUID {
	return p.id
}

// Session returns a copy of the current session
func (p *Provider) Session() Session {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.session
}

// Identity returns the identity resolved by the last call to FetchIdentity, or nil
func (p *Provider) Identity() *backend.Identity {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.identity
}

// Resolving reports whether the identity of an authenticated session has yet to be
// resolved
func (p *Provider) Resolving() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.resolving
}

// Login stores the token pair and role issued at login, replacing whatever the
// session held before
func (p *Provider) Login(ctx context.Context, tokens backend.TokenPair, role roles.Role) error {
	s := Session{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		Role:         role,
	}
	if err := p.store.Put(ctx, p.id, s); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.session = s
	p.identity = nil
	p.resolving = false
	return nil
}

// FetchIdentity resolves the caller's profile from the backend. With no access token
// it returns nil immediately. If the fetch fails, the error is logged and nil is
// returned, but the token is kept: a profile that can't be loaded is not the same
// thing as being logged out.
//
// FetchIdentity is not guarded against concurrent calls; it should be invoked from a
// single bootstrap point.
func (p *Provider) FetchIdentity(ctx context.Context) *backend.Identity {
	p.mu.Lock()
	token := p.session.AccessToken
	if token == "" {
		p.identity = nil
		p.resolving = false
		p.mu.Unlock()
		return nil
	}
	p.resolving = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.resolving = false
		p.mu.Unlock()
	}()

	identity, err := p.fetcher.Me(ctx, token)
	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.logger.Warn("failed to fetch identity", "session", p.id, "error", err)
		p.identity = nil
		return nil
	}
	p.identity = identity
	return identity
}

// Invalidate discards the access token after the backend has rejected it, leaving
// the session unauthenticated
func (p *Provider) Invalidate(ctx context.Context) error {
	if err := p.store.ClearAccessToken(ctx, p.id); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.session.AccessToken = ""
	p.identity = nil
	return nil
}

// Logout removes the session and forgets the identity. Logging out of a session that
// is already logged out is a no-op.
func (p *Provider) Logout(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session == (Session{}) && p.identity == nil {
		return nil
	}
	if err := p.store.Delete(ctx, p.id); err != nil {
		return err
	}
	p.session = Session{}
	p.identity = nil
	p.resolving = false
	return nil
}
