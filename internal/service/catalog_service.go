package service

import (
	"context"

	"github.com/donnegro/comercial/backend-go/internal/cache"
	"github.com/donnegro/comercial/backend-go/internal/domain"
	"github.com/donnegro/comercial/backend-go/internal/pricing"
	"github.com/donnegro/comercial/backend-go/internal/repository"
	"github.com/donnegro/comercial/backend-go/pkg/logger"
)

// PricedProduct is a catalog product with its prices derived at read time.
type PricedProduct struct {
	domain.CatalogProduct
	Pricing        pricing.Result `json:"pricing"`
	CashPriceLabel string         `json:"cash_price_label"`
}

type CatalogService struct {
	repo     repository.CatalogRepository
	cache    cache.CatalogCache
	defaults pricing.Defaults
}

func NewCatalogService(repo repository.CatalogRepository, cacheImpl cache.CatalogCache, defaults pricing.Defaults) *CatalogService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopCatalogCache()
	}
	return &CatalogService{repo: repo, cache: cacheImpl, defaults: defaults}
}

// Products returns the catalog, served from cache when possible.
func (s *CatalogService) Products(ctx context.Context) ([]domain.CatalogProduct, error) {
	if products, ok, err := s.cache.GetProducts(ctx); err == nil && ok {
		return products, nil
	} else if err != nil {
		logger.Log.Warn().Err(err).Msg("catalog: cache get products failed")
	}

	products, err := s.repo.FetchAllProducts(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetProducts(ctx, products); err != nil {
		logger.Log.Warn().Err(err).Msg("catalog: cache set products failed")
	}

	return products, nil
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]PricedProduct, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]PricedProduct, 0, len(products))
	for _, p := range products {
		res := pricing.Calculate(pricing.ForProduct(p, s.defaults))
		out = append(out, PricedProduct{
			CatalogProduct: p,
			Pricing:        res,
			CashPriceLabel: pricing.FormatCurrency(res.CashPrice),
		})
	}
	return out, nil
}

// Quote prices ad-hoc values without touching the catalog.
func (s *CatalogService) Quote(in pricing.Input) pricing.Result {
	return pricing.Calculate(in)
}

func (s *CatalogService) Defaults() pricing.Defaults {
	return s.defaults
}
