package inventory

import (
	"strconv"
	"strings"

	"inventory-backend/internal/models"
)

// StockFilter: independent predicates ANDed together. Zero values mean "not
// set" and match everything. Applied as a linear scan over the loaded rows;
// expected volumes are low hundreds of units.
type StockFilter struct {
	Search      string // matches id, barcode or product name, case-insensitive
	Category    string
	WarehouseID *uint
}

func (f StockFilter) Matches(s models.ProductStock) bool {
	return f.matchesSearch(s) && f.matchesCategory(s) && f.matchesWarehouse(s)
}

func (f StockFilter) matchesSearch(s models.ProductStock) bool {
	if f.Search == "" {
		return true
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if strings.Contains(strconv.FormatUint(uint64(s.ID), 10), term) {
		return true
	}
	if strings.Contains(strings.ToLower(s.Barcode), term) {
		return true
	}
	return strings.Contains(strings.ToLower(s.Product.Name), term)
}

func (f StockFilter) matchesCategory(s models.ProductStock) bool {
	if f.Category == "" {
		return true
	}
	return strings.EqualFold(s.Product.Category, f.Category)
}

func (f StockFilter) matchesWarehouse(s models.ProductStock) bool {
	if f.WarehouseID == nil {
		return true
	}
	return s.CurrentWarehouseID == *f.WarehouseID
}

// Apply returns the units matching the filter, preserving order.
func (f StockFilter) Apply(units []models.ProductStock) []models.ProductStock {
	out := make([]models.ProductStock, 0, len(units))
	for _, u := range units {
		if f.Matches(u) {
			out = append(out, u)
		}
	}
	return out
}
