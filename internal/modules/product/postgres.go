package product

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/samber/oops"
)

const productColumns = `id,store_id,name,description,price,tags,
	inventory_total,inventory_sold,inventory_left,added_by,created_at,updated_at`

type productPostgres struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL product repository.
func NewPostgresRepository(db *sql.DB) Repository { return &productPostgres{db: db} }

func (r *productPostgres) CreateProduct(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.StoreID, p.Name, p.Description, p.Price, pq.Array(p.Tags),
		p.Inventory.Total, p.Inventory.Sold, p.Inventory.Left, p.AddedBy, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return oops.In("product").Code("PRODUCT_CREATE_FAILED").With("store_id", p.StoreID).Wrap(err)
	}
	return nil
}

func scanProduct(scan func(...any) error) (*Product, error) {
	p := &Product{}
	err := scan(&p.ID, &p.StoreID, &p.Name, &p.Description, &p.Price, pq.Array(&p.Tags),
		&p.Inventory.Total, &p.Inventory.Sold, &p.Inventory.Left, &p.AddedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

func (r *productPostgres) GetProduct(ctx context.Context, storeID, id string) (*Product, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE store_id=$1 AND id=$2`, storeID, id)
	p, err := scanProduct(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errNotFound(storeID, id)
	}
	if err != nil {
		return nil, oops.In("product").Code("PRODUCT_QUERY_FAILED").With("product_id", id).Wrap(err)
	}
	return p, nil
}

func (r *productPostgres) ListProducts(ctx context.Context, storeID, after string, limit int) ([]*Product, error) {
	// An unknown cursor makes the row comparison NULL, which yields an empty page.
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE store_id=$1
		  AND ($2 = '' OR (updated_at, id) > (SELECT updated_at, id FROM products WHERE store_id=$1 AND id=$2))
		ORDER BY updated_at ASC, id ASC
		LIMIT $3`, storeID, after, limit)
	if err != nil {
		return nil, oops.In("product").Code("PRODUCT_QUERY_FAILED").With("store_id", storeID).Wrap(err)
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, oops.In("product").Code("PRODUCT_QUERY_FAILED").Wrap(err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.In("product").Code("PRODUCT_QUERY_FAILED").Wrap(err)
	}
	return products, nil
}

func (r *productPostgres) UpdateProduct(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET name=$1, description=$2, price=$3, tags=$4,
		    inventory_total=$5, inventory_sold=$6, inventory_left=$7, updated_at=$8
		WHERE store_id=$9 AND id=$10`,
		p.Name, p.Description, p.Price, pq.Array(p.Tags),
		p.Inventory.Total, p.Inventory.Sold, p.Inventory.Left, p.UpdatedAt, p.StoreID, p.ID)
	if err != nil {
		return oops.In("product").Code("PRODUCT_UPDATE_FAILED").With("product_id", p.ID).Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return oops.In("product").Wrap(err)
	}
	if n == 0 {
		return errNotFound(p.StoreID, p.ID)
	}
	return nil
}

func (r *productPostgres) DeleteProduct(ctx context.Context, storeID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE store_id=$1 AND id=$2`, storeID, id)
	if err != nil {
		return oops.In("product").Code("PRODUCT_DELETE_FAILED").With("product_id", id).Wrap(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return oops.In("product").Wrap(err)
	}
	if n == 0 {
		return errNotFound(storeID, id)
	}
	return nil
}
