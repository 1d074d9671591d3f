package storefront

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/streetfood/rawmart/pkg/logger"
	"github.com/streetfood/rawmart/pkg/types"
)

const defaultTimeout = 10 * time.Second

// CartAPI is the remote cart store.
type CartAPI interface {
	GetCart(ctx context.Context, sessionID string) (*types.CartView, error)
	AddItem(ctx context.Context, sessionID string, req types.AddItemRequest) (*types.CartView, error)
	UpdateItem(ctx context.Context, sessionID, lineID string, quantity int) (*types.CartView, error)
	RemoveItem(ctx context.Context, sessionID, lineID string) (*types.CartView, error)
	ClearCart(ctx context.Context, sessionID string) (*types.CartView, error)
}

// CatalogAPI is the remote catalog.
type CatalogAPI interface {
	ListMaterials(ctx context.Context, query types.MaterialQuery) ([]types.Material, error)
	ListCategories(ctx context.Context) ([]types.Category, error)
}

// OrderAPI is the remote order service.
type OrderAPI interface {
	PlaceOrder(ctx context.Context, sessionID, idempotencyKey string) (*types.OrderReceipt, error)
	ListOrders(ctx context.Context, sessionID string) ([]types.Order, error)
}

// API is everything the storefront needs from the backend; *client.Client satisfies it.
type API interface {
	CartAPI
	CatalogAPI
	OrderAPI
}

type sessionSource interface {
	GetOrCreate(ctx context.Context) (string, error)
}

// Option customizes storefront components.
type Option func(*options)

type options struct {
	timeout          time.Duration
	notifier         Notifier
	logg             *logger.Logger
	mutationResponse bool
	listener         func(Snapshot)
	newKey           func() string
}

func buildOptions(opts []Option) options {
	o := options{
		timeout:  defaultTimeout,
		notifier: nopNotifier{},
		logg:     logger.Nop(),
		newKey:   uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithTimeout bounds every backend call.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func WithNotifier(n Notifier) Option {
	return func(o *options) {
		if n != nil {
			o.notifier = n
		}
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(o *options) {
		if logg != nil {
			o.logg = logg
		}
	}
}

// WithMutationResponse applies the cart returned by a mutation instead of
// fetching it again.
func WithMutationResponse() Option {
	return func(o *options) {
		o.mutationResponse = true
	}
}

// WithListener registers a callback for cart and loading state changes.
func WithListener(fn func(Snapshot)) Option {
	return func(o *options) {
		o.listener = fn
	}
}

// WithKeyGenerator overrides how order idempotency keys are generated.
func WithKeyGenerator(fn func() string) Option {
	return func(o *options) {
		if fn != nil {
			o.newKey = fn
		}
	}
}
