package product

import "time"

const (
	DefaultPageSize = 4
	MaxPageSize     = 50
)

// Product is an item listed in one store.
type Product struct {
	ID          string    `json:"id"`
	StoreID     string    `json:"store_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Tags        []string  `json:"tags"`
	Inventory   Inventory `json:"inventory"`
	AddedBy     string    `json:"added_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Inventory tracks stock. Total is always Sold + Left.
type Inventory struct {
	Total int `json:"total"`
	Sold  int `json:"sold"`
	Left  int `json:"left"`
}

// AddProductRequest holds data for listing a new product.
type AddProductRequest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Price          float64  `json:"price"`
	Tags           []string `json:"tags"`
	AvailableStock int      `json:"available_stock"`
}

// UpdateProductRequest holds the editable product fields. Nil fields are left as they are.
type UpdateProductRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Tags        *[]string `json:"tags"`
}

// UpdateInventoryRequest sets how many units are left.
type UpdateInventoryRequest struct {
	Left int `json:"left"`
}

// Page selects a slice of a store's products ordered by last update.
// After is the id of the last product of the previous page.
type Page struct {
	After string
	Limit int
}

func (p Page) normalized() Page {
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultPageSize
	case p.Limit > MaxPageSize:
		p.Limit = MaxPageSize
	}
	return p
}

// ProductPage is one page of products. NextCursor is empty on the last page.
type ProductPage struct {
	Items      []*Product `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}
