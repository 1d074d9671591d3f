package enums

// OutboxAggregateType names the aggregate an outbox row belongs to.
type OutboxAggregateType string

const AggregateOrder OutboxAggregateType = "order"

func (a OutboxAggregateType) IsValid() bool {
	return a == AggregateOrder
}

// OutboxEventType names a domain event carried through the outbox. New
// types also need a topic mapping in the outbox router.
type OutboxEventType string

const EventOrderPlaced OutboxEventType = "order_placed"

func (e OutboxEventType) String() string {
	return string(e)
}

func (e OutboxEventType) IsValid() bool {
	return e == EventOrderPlaced
}
