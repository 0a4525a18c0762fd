// Package store persists products. The SQL implementation is the source of
// truth in production; the memory implementation backs tests and local runs.
package store

import (
	"context"

	"github.com/fairyhunter13/product-catalog-service/internal/model"
)

// Store is the durable product mapping. Every call is atomic on its own;
// id-scoped calls return model.ErrNotFound when the id is absent.
type Store interface {
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	Insert(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) (model.Product, error)
	DeleteByID(ctx context.Context, id int64) error
}
