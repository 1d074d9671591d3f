package storefront

import (
	"context"
	"fmt"

	"github.com/streetfood/rawmart/pkg/session"
)

// App wires the storefront components around one session.
type App struct {
	Session  *session.Provider
	Browser  *Browser
	Cart     *CartController
	Checkout *Checkout
}

func NewApp(api API, sessions *session.Provider, opts ...Option) (*App, error) {
	if api == nil {
		return nil, fmt.Errorf("storefront api required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session provider required")
	}

	browser, err := NewBrowser(api, opts...)
	if err != nil {
		return nil, err
	}
	cart, err := NewCartController(api, sessions, opts...)
	if err != nil {
		return nil, err
	}
	checkout, err := NewCheckout(api, sessions, cart, opts...)
	if err != nil {
		return nil, err
	}
	return &App{Session: sessions, Browser: browser, Cart: cart, Checkout: checkout}, nil
}

// ClearSession discards the session token and the local cart. The next call
// that needs a session starts a new one with an empty cart.
func (a *App) ClearSession(ctx context.Context) error {
	if err := a.Session.Clear(ctx); err != nil {
		return err
	}
	a.Cart.reset()
	return nil
}
