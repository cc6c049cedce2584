package repository

import (
	"context"
	"errors"

	"github.com/donnegro/comercial/backend-go/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

// CatalogRepository is the product store the pricing and import flows read and write.
type CatalogRepository interface {
	FetchAllProducts(ctx context.Context) ([]domain.CatalogProduct, error)
	UpdateProduct(ctx context.Context, id int64, update domain.ProductUpdate) error
	CreateProduct(ctx context.Context, product domain.NewProduct) (int64, error)
}

type ImportRunRepository interface {
	CreateRun(ctx context.Context, run *domain.ImportRun) error
	// FinishRun stores the final counters of run together with its row errors.
	FinishRun(ctx context.Context, run *domain.ImportRun, rowErrors []domain.RowError) error
	ListRuns(ctx context.Context, limit int) ([]domain.ImportRun, error)
}
