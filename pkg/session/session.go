package session

import (
	"context"
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/streetfood/rawmart/pkg/errors"
)

// TokenKey is the well-known key the session token is persisted under.
const TokenKey = "sessionId"

const (
	tokenPrefix    = "session_"
	tokenRandChars = 9
	base36Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// TokenStore persists a single session token.
type TokenStore interface {
	// Load returns the stored token, or "" when none exists.
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// Provider hands out the session token that scopes the backend cart.
type Provider struct {
	store TokenStore
	now   func() time.Time

	mu      sync.Mutex
	current string
}

// Option customizes a Provider.
type Option func(*Provider)

// WithClock overrides the time source used when minting tokens.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) {
		if now != nil {
			p.now = now
		}
	}
}

func NewProvider(store TokenStore, opts ...Option) (*Provider, error) {
	if store == nil {
		return nil, fmt.Errorf("session token store required")
	}
	p := &Provider{store: store, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p, nil
}

// GetOrCreate returns the persisted token, minting and saving one on first use.
// Concurrent first callers all observe the same token.
func (p *Provider) GetOrCreate(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.current != "" {
		return p.current, nil
	}

	token, err := p.store.Load(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load session token")
	}
	token = strings.TrimSpace(token)
	if token != "" {
		p.current = token
		return token, nil
	}

	token, err = NewToken(p.now())
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint session token")
	}
	if err := p.store.Save(ctx, token); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save session token")
	}
	p.current = token
	return token, nil
}

// Clear forgets the token. The next GetOrCreate starts a fresh session.
func (p *Provider) Clear(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.store.Delete(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete session token")
	}
	p.current = ""
	return nil
}

// NewToken builds a token of the form session_<unix millis>_<9 base36 chars>.
func NewToken(now time.Time) (string, error) {
	buf := make([]byte, tokenRandChars)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	suffix := make([]byte, tokenRandChars)
	for i, b := range buf {
		suffix[i] = base36Alphabet[int(b)%len(base36Alphabet)]
	}
	return tokenPrefix + strconv.FormatInt(now.UnixMilli(), 10) + "_" + string(suffix), nil
}
