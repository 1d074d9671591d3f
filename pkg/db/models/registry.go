package models

// All lists every persisted model in dependency order for AutoMigrate.
func All() []any {
	return []any{
		&Supplier{},
		&Category{},
		&Material{},
		&CartRecord{},
		&CartItem{},
		&Order{},
		&OrderLineItem{},
		&OutboxEvent{},
	}
}
