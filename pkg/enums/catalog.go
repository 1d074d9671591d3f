package enums

import (
	"fmt"
	"strings"
)

// MaterialSort orders catalog listings; every key sorts ascending.
type MaterialSort string

const (
	MaterialSortName     MaterialSort = "name"
	MaterialSortPrice    MaterialSort = "price"
	MaterialSortSupplier MaterialSort = "supplier"
)

var validMaterialSorts = []MaterialSort{
	MaterialSortName,
	MaterialSortPrice,
	MaterialSortSupplier,
}

func (m MaterialSort) String() string {
	return string(m)
}

func (m MaterialSort) IsValid() bool {
	for _, candidate := range validMaterialSorts {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMaterialSort defaults to name when value is empty.
func ParseMaterialSort(value string) (MaterialSort, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return MaterialSortName, nil
	}
	for _, candidate := range validMaterialSorts {
		if string(candidate) == trimmed {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sort key %q", value)
}

// MaterialFilter is the coarse catalog filter.
type MaterialFilter string

const (
	MaterialFilterAll        MaterialFilter = "all"
	MaterialFilterVerified   MaterialFilter = "verified"
	MaterialFilterInStock    MaterialFilter = "inStock"
	MaterialFilterGroupDeals MaterialFilter = "groupDeals"
)

var materialFilterAliases = map[string]MaterialFilter{
	"":            MaterialFilterAll,
	"all":         MaterialFilterAll,
	"verified":    MaterialFilterVerified,
	"instock":     MaterialFilterInStock,
	"in_stock":    MaterialFilterInStock,
	"groupdeals":  MaterialFilterGroupDeals,
	"group":       MaterialFilterGroupDeals,
	"group_deals": MaterialFilterGroupDeals,
}

func (m MaterialFilter) String() string {
	return string(m)
}

func (m MaterialFilter) IsValid() bool {
	switch m {
	case MaterialFilterAll, MaterialFilterVerified, MaterialFilterInStock, MaterialFilterGroupDeals:
		return true
	}
	return false
}

// ParseMaterialFilter accepts the canonical names case-insensitively plus the
// short aliases older clients send.
func ParseMaterialFilter(value string) (MaterialFilter, error) {
	if filter, ok := materialFilterAliases[strings.ToLower(strings.TrimSpace(value))]; ok {
		return filter, nil
	}
	return "", fmt.Errorf("invalid filter %q", value)
}
