package csvimport

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/donnegro/comercial/backend-go/internal/domain"
	"github.com/donnegro/comercial/backend-go/internal/pricing"
	"github.com/donnegro/comercial/backend-go/pkg/logger"
)

// DefaultBatchSize bounds how many persistence calls run at once.
const DefaultBatchSize = 50

// CatalogWriter is the persistence surface a commit needs.
type CatalogWriter interface {
	UpdateProduct(ctx context.Context, id int64, update domain.ProductUpdate) error
	CreateProduct(ctx context.Context, product domain.NewProduct) (int64, error)
}

// Progress is reported after every batch.
type Progress struct {
	Batch     int `json:"batch"`
	Batches   int `json:"batches"`
	Processed int `json:"processed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// ProgressFunc receives a Progress once every batch has settled.
type ProgressFunc func(Progress)

// RowPersistenceError is a single row's failed update or insert. It is
// counted and logged, never propagated.
type RowPersistenceError struct {
	Line      int
	Name      string
	ProductID int64
	Err       error
}

func (e *RowPersistenceError) Error() string {
	if e.ProductID != 0 {
		return fmt.Sprintf("line %d (%s, product %d): %v", e.Line, e.Name, e.ProductID, e.Err)
	}
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Name, e.Err)
}

func (e *RowPersistenceError) Unwrap() error {
	return e.Err
}

// Committer writes a reviewed match list to the catalog.
type Committer struct {
	writer    CatalogWriter
	batchSize int
	defaults  pricing.Defaults
}

func NewCommitter(writer CatalogWriter, batchSize int, defaults pricing.Defaults) *Committer {
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &Committer{
		writer:    writer,
		batchSize: batchSize,
		defaults:  defaults,
	}
}

// Committable returns the candidates a commit in mode would write: matched
// candidates in update mode, every candidate in create mode.
func Committable(candidates []domain.MatchCandidate, mode domain.ImportMode) []domain.MatchCandidate {
	if mode == domain.ImportModeCreate {
		return candidates
	}
	out := make([]domain.MatchCandidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Matched() {
			out = append(out, c)
		}
	}
	return out
}

// Commit persists candidates batch by batch. Rows inside a batch run
// concurrently; the next batch starts only after every row of the previous
// one has settled. A failing row never stops the others and nothing is
// rolled back.
func (c *Committer) Commit(ctx context.Context, candidates []domain.MatchCandidate, mode domain.ImportMode, onProgress ProgressFunc) domain.CommitResult {
	work := Committable(candidates, mode)
	result := domain.CommitResult{Mode: mode, Total: len(work)}
	if len(work) == 0 {
		return result
	}

	batches := (len(work) + c.batchSize - 1) / c.batchSize

	var mu sync.Mutex
	for b := 0; b < batches; b++ {
		start := b * c.batchSize
		end := min(start+c.batchSize, len(work))

		var g errgroup.Group
		g.SetLimit(c.batchSize)
		for _, cand := range work[start:end] {
			g.Go(func() error {
				err := c.persist(ctx, cand, mode)

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					rowErr := c.rowError(cand, err)
					logger.Log.Error().
						Err(err).
						Int("line", rowErr.Line).
						Str("name", rowErr.Name).
						Int64("product_id", rowErr.ProductID).
						Str("mode", string(mode)).
						Msg("cost list row failed")
					result.Failed++
					result.Errors = append(result.Errors, domain.RowError{
						Line:      rowErr.Line,
						Name:      rowErr.Name,
						ProductID: rowErr.ProductID,
						Message:   rowErr.Error(),
					})
					return nil
				}
				result.Succeeded++
				return nil
			})
		}
		// rows record their own failures, so Wait never reports one
		_ = g.Wait()

		if onProgress != nil {
			onProgress(Progress{
				Batch:     b + 1,
				Batches:   batches,
				Processed: end,
				Total:     len(work),
				Percent:   int(math.Round(float64(end) * 100 / float64(len(work)))),
			})
		}
	}

	sort.Slice(result.Errors, func(i, j int) bool { return result.Errors[i].Line < result.Errors[j].Line })

	logger.Log.Info().
		Str("mode", string(mode)).
		Int("total", result.Total).
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Msg("cost list commit finished")

	return result
}

func (c *Committer) persist(ctx context.Context, cand domain.MatchCandidate, mode domain.ImportMode) error {
	row := cand.Row

	switch mode {
	case domain.ImportModeCreate:
		product := domain.NewProduct{
			Name:          row.Name,
			Cost:          row.Cost,
			ExternalCode:  row.ExternalCode,
			Category:      row.Category,
			Location:      row.Location,
			MarginPercent: c.defaults.MarginPercent,
			Interest6:     c.defaults.Interest6,
			Interest12:    c.defaults.Interest12,
			Interest15:    c.defaults.Interest15,
			Interest18:    c.defaults.Interest18,
		}
		if row.Stock != nil {
			product.Stock = *row.Stock
		}
		_, err := c.writer.CreateProduct(ctx, product)
		return err
	case domain.ImportModeUpdate:
		if cand.Product == nil {
			return fmt.Errorf("row has no matched product")
		}
		update := domain.ProductUpdate{Cost: row.Cost}
		if row.ExternalCode != "" {
			code := row.ExternalCode
			update.ExternalCode = &code
		}
		return c.writer.UpdateProduct(ctx, cand.Product.ID, update)
	default:
		return fmt.Errorf("unknown import mode %q", mode)
	}
}

func (c *Committer) rowError(cand domain.MatchCandidate, err error) *RowPersistenceError {
	rowErr := &RowPersistenceError{
		Line: cand.Row.Line,
		Name: cand.Row.Name,
		Err:  err,
	}
	if cand.Product != nil {
		rowErr.ProductID = cand.Product.ID
	}
	return rowErr
}
