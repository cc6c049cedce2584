package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/donnegro/comercial/backend-go/internal/config"
	"github.com/donnegro/comercial/backend-go/internal/domain"
)

const (
	catalogKeyPrefix     = "catalog:"
	catalogProductsKey   = catalogKeyPrefix + "products"
	catalogScanBatchSize = 100
)

// CatalogCache keeps the product list between reads. Any import commit
// must call InvalidateAll.
type CatalogCache interface {
	GetProducts(ctx context.Context) ([]domain.CatalogProduct, bool, error)
	SetProducts(ctx context.Context, products []domain.CatalogProduct) error
	InvalidateAll(ctx context.Context) error
}

type redisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopCatalogCache struct{}

func NewCatalogCache(cfg config.CacheConfig) (CatalogCache, error) {
	if !cfg.Enabled {
		return &noopCatalogCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisCatalogCache(client, ttl), nil
}

func NewRedisCatalogCache(client *redis.Client, ttl time.Duration) CatalogCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisCatalogCache{client: client, ttl: ttl}
}

func NewNoopCatalogCache() CatalogCache {
	return &noopCatalogCache{}
}

func (c *redisCatalogCache) GetProducts(ctx context.Context) ([]domain.CatalogProduct, bool, error) {
	payload, err := c.client.Get(ctx, catalogProductsKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var products []domain.CatalogProduct
	if err := json.Unmarshal(payload, &products); err != nil {
		return nil, false, fmt.Errorf("decode catalog cache: %w", err)
	}
	return products, true, nil
}

func (c *redisCatalogCache) SetProducts(ctx context.Context, products []domain.CatalogProduct) error {
	payload, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("encode catalog cache: %w", err)
	}

	if err := c.client.Set(ctx, catalogProductsKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisCatalogCache) InvalidateAll(ctx context.Context) error {
	return deleteKeysWithPrefix(ctx, c.client, catalogKeyPrefix, catalogScanBatchSize)
}

func (n *noopCatalogCache) GetProducts(ctx context.Context) ([]domain.CatalogProduct, bool, error) {
	return nil, false, nil
}

func (n *noopCatalogCache) SetProducts(ctx context.Context, products []domain.CatalogProduct) error {
	return nil
}

func (n *noopCatalogCache) InvalidateAll(ctx context.Context) error {
	return nil
}
