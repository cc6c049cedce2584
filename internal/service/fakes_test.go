package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/donnegro/comercial/backend-go/internal/domain"
	"github.com/donnegro/comercial/backend-go/internal/storage"
)

type fakeCatalogRepo struct {
	mu       sync.Mutex
	products []domain.CatalogProduct
	fetchErr error
	failIDs  map[int64]bool
	fetches  int
	updates  map[int64]domain.ProductUpdate
	created  []domain.NewProduct
}

func newFakeCatalogRepo(products ...domain.CatalogProduct) *fakeCatalogRepo {
	return &fakeCatalogRepo{
		products: products,
		failIDs:  map[int64]bool{},
		updates:  map[int64]domain.ProductUpdate{},
	}
}

func (f *fakeCatalogRepo) FetchAllProducts(context.Context) ([]domain.CatalogProduct, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return append([]domain.CatalogProduct(nil), f.products...), nil
}

func (f *fakeCatalogRepo) UpdateProduct(ctx context.Context, id int64, u domain.ProductUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[id] {
		return errors.New("deadlock detected")
	}
	f.updates[id] = u
	return nil
}

func (f *fakeCatalogRepo) CreateProduct(ctx context.Context, p domain.NewProduct) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, p)
	return int64(100 + len(f.created)), nil
}

func (f *fakeCatalogRepo) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates) + len(f.created)
}

type fakeRunRepo struct {
	created   []domain.ImportRun
	finished  []domain.ImportRun
	rowErrors []domain.RowError
	createErr error
}

func (f *fakeRunRepo) CreateRun(_ context.Context, run *domain.ImportRun) error {
	if f.createErr != nil {
		return f.createErr
	}
	run.ID = int64(len(f.created) + 1)
	f.created = append(f.created, *run)
	return nil
}

func (f *fakeRunRepo) FinishRun(ctx context.Context, run *domain.ImportRun, rowErrors []domain.RowError) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.finished = append(f.finished, *run)
	f.rowErrors = append(f.rowErrors, rowErrors...)
	return nil
}

func (f *fakeRunRepo) ListRuns(_ context.Context, limit int) ([]domain.ImportRun, error) {
	if limit < len(f.finished) {
		return f.finished[:limit], nil
	}
	return f.finished, nil
}

type fakeCache struct {
	products    []domain.CatalogProduct
	hit         bool
	sets        int
	invalidated int
}

func (c *fakeCache) GetProducts(context.Context) ([]domain.CatalogProduct, bool, error) {
	return c.products, c.hit, nil
}

func (c *fakeCache) SetProducts(_ context.Context, products []domain.CatalogProduct) error {
	c.sets++
	c.products = products
	return nil
}

func (c *fakeCache) InvalidateAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.invalidated++
	c.hit = false
	return nil
}

type fakeStorage struct {
	uploads  map[string][]byte
	modified map[string]time.Time
	err      error
	listErr  error
}

func (s *fakeStorage) ListObjects(_ context.Context, prefix string) ([]storage.ObjectInfo, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []storage.ObjectInfo
	for key, data := range s.uploads {
		if strings.HasPrefix(key, prefix) {
			out = append(out, storage.ObjectInfo{Key: key, Size: int64(len(data)), LastModified: s.modified[key]})
		}
	}
	return out, nil
}

func (s *fakeStorage) DownloadObject(_ context.Context, key string, w io.Writer) error {
	data, ok := s.uploads[key]
	if !ok {
		return errors.New("key does not exist")
	}
	_, err := w.Write(data)
	return err
}

func (s *fakeStorage) UploadObject(_ context.Context, key string, data []byte, _ string) error {
	if s.err != nil {
		return s.err
	}
	if s.uploads == nil {
		s.uploads = map[string][]byte{}
	}
	s.uploads[key] = data
	return nil
}
