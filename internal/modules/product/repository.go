package product

import "context"

// Repository defines product data storage. Every lookup is scoped to a store.
type Repository interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, storeID, id string) (*Product, error)
	// ListProducts returns up to limit products of storeID updated after the
	// product with id after, oldest update first.
	ListProducts(ctx context.Context, storeID, after string, limit int) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
	DeleteProduct(ctx context.Context, storeID, id string) error
}
