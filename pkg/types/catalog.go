package types

import "github.com/shopspring/decimal"

type Supplier struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Verified bool   `json:"verified"`
	Location string `json:"location"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

type Material struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Category         string          `json:"category"`
	Price            decimal.Decimal `json:"price"`
	GroupPrice       decimal.Decimal `json:"group_price"`
	MinGroupQuantity int             `json:"min_group_quantity"`
	Unit             string          `json:"unit"`
	InStock          bool            `json:"in_stock"`
	Supplier         Supplier        `json:"supplier"`
	Image            string          `json:"image"`
	Description      string          `json:"description"`
}

// MaterialQuery carries catalog filter parameters as sent on the wire.
type MaterialQuery struct {
	Search   string
	Category string
	SortBy   string
	FilterBy string
	Limit    int
	Offset   int
}

// MaterialCounts summarizes a material listing for the browse view.
type MaterialCounts struct {
	Total      int `json:"total"`
	InStock    int `json:"in_stock"`
	Verified   int `json:"verified"`
	GroupDeals int `json:"group_deals"`
}

// CountMaterials tallies stock, verified supplier and group deal availability.
func CountMaterials(materials []Material) MaterialCounts {
	counts := MaterialCounts{Total: len(materials)}
	for _, m := range materials {
		if m.InStock {
			counts.InStock++
		}
		if m.Supplier.Verified {
			counts.Verified++
		}
		if m.GroupPrice.LessThan(m.Price) {
			counts.GroupDeals++
		}
	}
	return counts
}
