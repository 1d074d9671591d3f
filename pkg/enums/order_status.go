package enums

import (
	"database/sql/driver"
	"fmt"
)

// OrderStatus tracks the lifecycle of a placed order. Orders are created
// confirmed; the later states are reserved for fulfilment.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

func (o OrderStatus) String() string {
	return string(o)
}

func (o OrderStatus) IsValid() bool {
	switch o {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

func ParseOrderStatus(value string) (OrderStatus, error) {
	if status := OrderStatus(value); status.IsValid() {
		return status, nil
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// Scan rejects statuses written outside this package's vocabulary.
func (o *OrderStatus) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("order status: unsupported type %T", src)
	}
	status, err := ParseOrderStatus(raw)
	if err != nil {
		return err
	}
	*o = status
	return nil
}

func (o OrderStatus) Value() (driver.Value, error) {
	if !o.IsValid() {
		return nil, fmt.Errorf("invalid order status %q", string(o))
	}
	return string(o), nil
}
