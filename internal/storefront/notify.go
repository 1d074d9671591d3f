package storefront

import "context"

type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelError   Level = "error"
)

// Notification is a user facing message about the outcome of an action.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Notification) {}

const (
	titleError = "Error"

	msgCartLoadFailed    = "Failed to load cart data."
	msgCartAddFailed     = "Failed to add item to cart."
	msgCartUpdateFailed  = "Failed to update cart item."
	msgCartRemoveFailed  = "Failed to remove item from cart."
	msgCartClearFailed   = "Failed to clear cart."
	msgOrderFailed       = "Failed to place order. Please try again."
	msgHistoryFailed     = "Failed to load order history."
	msgMaterialsFailed   = "Failed to load materials."
	msgLineAlreadyGone   = "That item was no longer in your cart."
	msgOrderPlacedFormat = "Your order #%s has been submitted and will be processed soon."

	// EmptyMaterialsMessage is shown when a catalog query matches nothing.
	EmptyMaterialsMessage = "No materials found"
)

var (
	noticeAdded   = Notification{Level: LevelSuccess, Title: "Added to Cart!", Message: "Item has been added to your cart."}
	noticeUpdated = Notification{Level: LevelSuccess, Title: "Cart Updated", Message: "Item quantity has been updated."}
	noticeRemoved = Notification{Level: LevelSuccess, Title: "Item Removed", Message: "Item has been removed from your cart."}
	noticeCleared = Notification{Level: LevelSuccess, Title: "Cart Cleared", Message: "All items have been removed from your cart."}
)

func failure(message string) Notification {
	return Notification{Level: LevelError, Title: titleError, Message: message}
}
