// Package model defines domain types used by the service.
package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when an id-scoped lookup matches no product.
var ErrNotFound = errors.New("product not found")

func init() {
	// Downstream event consumers parse price as an arbitrary-precision
	// number, so prices go on the wire as bare JSON literals.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents one catalog entry. The store assigns ID on insert and
// stays the source of truth for every field.
type Product struct {
	ID    int64           `json:"id" db:"id"`
	Name  string          `json:"name" db:"name"`
	Price decimal.Decimal `json:"price" db:"price"`
	Stock int64           `json:"stock" db:"stock"`
}

// ProductPatch carries the mutable fields of an update request. A nil field
// leaves the stored value unchanged.
type ProductPatch struct {
	Name  *string
	Price *decimal.Decimal
	Stock *int64
}

// Apply copies the non-nil patch fields onto p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
}

// Empty reports whether the patch changes nothing.
func (pp ProductPatch) Empty() bool {
	return pp.Name == nil && pp.Price == nil && pp.Stock == nil
}
