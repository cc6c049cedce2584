package postgres

import (
	"context"
	"fmt"

	"github.com/donnegro/comercial/backend-go/internal/domain"
	"github.com/donnegro/comercial/backend-go/internal/repository"
)

type catalogRepository struct {
	db *DB
}

var _ repository.CatalogRepository = (*catalogRepository)(nil)

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) FetchAllProducts(ctx context.Context) ([]domain.CatalogProduct, error) {
	query := `
		SELECT
			id, name, cost,
			COALESCE(external_code, '') AS external_code,
			margin_percent, interest_6, interest_12, interest_15, interest_18,
			COALESCE(stock, 0) AS stock,
			COALESCE(category, '') AS category,
			COALESCE(location, '') AS location,
			created_at, updated_at
		FROM products
		ORDER BY id
	`

	var products []domain.CatalogProduct
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

// UpdateProduct overwrites cost and, when given, the external code.
func (r *catalogRepository) UpdateProduct(ctx context.Context, id int64, update domain.ProductUpdate) error {
	query := `
		UPDATE products
		SET cost = $1,
		    external_code = COALESCE($2, external_code),
		    updated_at = NOW()
		WHERE id = $3
	`

	res, err := r.db.ExecContext(ctx, query, update.Cost, update.ExternalCode, id)
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update product %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("update product %d: %w", id, repository.ErrProductNotFound)
	}
	return nil
}

func (r *catalogRepository) CreateProduct(ctx context.Context, p domain.NewProduct) (int64, error) {
	query := `
		INSERT INTO products (
			name, cost, external_code, stock, category, location,
			margin_percent, interest_6, interest_12, interest_15, interest_18,
			created_at, updated_at
		) VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowxContext(ctx, query,
		p.Name,
		p.Cost,
		p.ExternalCode,
		p.Stock,
		p.Category,
		p.Location,
		p.MarginPercent,
		p.Interest6,
		p.Interest12,
		p.Interest15,
		p.Interest18,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create product %q: %w", p.Name, err)
	}
	return id, nil
}
