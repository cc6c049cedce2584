package csvimport

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/donnegro/comercial/backend-go/internal/domain"
	"github.com/donnegro/comercial/backend-go/internal/pricing"
)

type fakeWriter struct {
	mu       sync.Mutex
	failIDs  map[int64]bool
	failName string
	updates  map[int64]domain.ProductUpdate
	created  []domain.NewProduct
}

func newFakeWriter() *fakeWriter {
	return &fakeWriter{
		failIDs: map[int64]bool{},
		updates: map[int64]domain.ProductUpdate{},
	}
}

func (f *fakeWriter) UpdateProduct(_ context.Context, id int64, update domain.ProductUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIDs[id] {
		return errors.New("connection reset")
	}
	f.updates[id] = update
	return nil
}

func (f *fakeWriter) CreateProduct(_ context.Context, p domain.NewProduct) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.Name == f.failName {
		return 0, errors.New("duplicate key")
	}
	f.created = append(f.created, p)
	return int64(len(f.created)), nil
}

func matched(n int) []domain.MatchCandidate {
	out := make([]domain.MatchCandidate, n)
	for i := range out {
		out[i] = domain.MatchCandidate{
			Row: domain.CsvRow{
				Line:         i + 1,
				Name:         fmt.Sprintf("PRODUCTO %03d", i),
				Cost:         decimal.NewFromInt(int64(1000 * (i + 1))),
				ExternalCode: fmt.Sprintf("EXT-%d", i),
			},
			Product:    &domain.CatalogProduct{ID: int64(i + 1)},
			MatchType:  domain.MatchExact,
			Confidence: 1,
		}
	}
	return out
}

func TestCommit_IsolatesRowFailures(t *testing.T) {
	t.Parallel()

	w := newFakeWriter()
	w.failIDs[3] = true

	c := NewCommitter(w, 2, pricing.StoreDefaults())
	res := c.Commit(context.Background(), matched(5), domain.ImportModeUpdate, nil)

	if res.Total != 5 || res.Succeeded != 4 || res.Failed != 1 {
		t.Fatalf("want 5/4/1 got %d/%d/%d", res.Total, res.Succeeded, res.Failed)
	}
	if len(res.Errors) != 1 || res.Errors[0].ProductID != 3 || res.Errors[0].Line != 3 {
		t.Fatalf("unexpected errors %+v", res.Errors)
	}
	if len(w.updates) != 4 {
		t.Fatalf("other rows must still be written, got %d", len(w.updates))
	}
}

func TestCommit_ProgressPerBatch(t *testing.T) {
	t.Parallel()

	var progress []Progress
	c := NewCommitter(newFakeWriter(), DefaultBatchSize, pricing.StoreDefaults())
	res := c.Commit(context.Background(), matched(120), domain.ImportModeUpdate, func(p Progress) {
		progress = append(progress, p)
	})

	if res.Succeeded != 120 {
		t.Fatalf("want 120 succeeded got %d", res.Succeeded)
	}
	if len(progress) != 3 {
		t.Fatalf("want 3 progress calls got %d", len(progress))
	}
	wantProcessed := []int{50, 100, 120}
	wantPercent := []int{42, 83, 100}
	for i, p := range progress {
		if p.Processed != wantProcessed[i] || p.Percent != wantPercent[i] || p.Batch != i+1 || p.Batches != 3 {
			t.Fatalf("progress %d unexpected %+v", i, p)
		}
	}
}

func TestCommit_UpdateModeSkipsUnmatched(t *testing.T) {
	t.Parallel()

	cands := matched(3)
	cands[1].Product = nil
	cands[1].MatchType = domain.MatchNone
	cands[2].Row.ExternalCode = ""

	w := newFakeWriter()
	res := NewCommitter(w, 50, pricing.StoreDefaults()).Commit(context.Background(), cands, domain.ImportModeUpdate, nil)

	if res.Total != 2 || res.Succeeded != 2 {
		t.Fatalf("only matched rows are committed, got %+v", res)
	}
	if _, ok := w.updates[2]; ok {
		t.Fatalf("unmatched row must not be written")
	}
	if w.updates[1].ExternalCode == nil || *w.updates[1].ExternalCode != "EXT-0" {
		t.Fatalf("external code should be written, got %+v", w.updates[1])
	}
	if w.updates[3].ExternalCode != nil {
		t.Fatalf("empty external code must leave the stored one untouched")
	}
	if !w.updates[3].Cost.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("unexpected cost %s", w.updates[3].Cost)
	}
}

func TestCommit_CreateModeUsesDefaults(t *testing.T) {
	t.Parallel()

	stock := 7
	cands := []domain.MatchCandidate{
		{Row: domain.CsvRow{Line: 1, Name: "FREEZER HORIZONTAL", Cost: decimal.NewFromInt(2000000), Stock: &stock, Category: "FRIO", Location: "DEPOSITO"}, MatchType: domain.MatchNone},
		{Row: domain.CsvRow{Line: 2, Name: "DUPLICADO", Cost: decimal.NewFromInt(1)}, MatchType: domain.MatchNone},
	}

	w := newFakeWriter()
	w.failName = "DUPLICADO"
	res := NewCommitter(w, 50, pricing.NewDefaults(20, 40, 60, 70, 80)).Commit(context.Background(), cands, domain.ImportModeCreate, nil)

	if res.Total != 2 || res.Succeeded != 1 || res.Failed != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(w.created) != 1 {
		t.Fatalf("want 1 created got %d", len(w.created))
	}
	p := w.created[0]
	if p.Stock != 7 || p.Category != "FRIO" || p.Location != "DEPOSITO" {
		t.Fatalf("unexpected product %+v", p)
	}
	if !p.MarginPercent.Equal(decimal.NewFromInt(20)) || !p.Interest18.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("defaults not applied: margin=%s interest18=%s", p.MarginPercent, p.Interest18)
	}
}

func TestCommit_NothingCommittable(t *testing.T) {
	t.Parallel()

	called := false
	res := NewCommitter(newFakeWriter(), 0, pricing.StoreDefaults()).Commit(context.Background(), nil, domain.ImportModeUpdate, func(Progress) {
		called = true
	})
	if res.Total != 0 || called {
		t.Fatalf("empty commit should do nothing, got %+v called=%v", res, called)
	}
}

func TestRowPersistenceError_Unwrap(t *testing.T) {
	t.Parallel()

	base := errors.New("boom")
	err := error(&RowPersistenceError{Line: 4, Name: "X", ProductID: 9, Err: base})
	if !errors.Is(err, base) {
		t.Fatalf("wrapped error lost")
	}
	if err.Error() != "line 4 (X, product 9): boom" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

// batchTracker records which batch each write belongs to and how many writes
// are in flight. Every write waits for the rest of its batch to arrive, so a
// committer that serialized rows would leave the peak at 1.
type batchTracker struct {
	mu         sync.Mutex
	batchSize  int
	expected   []int
	arrived    []int
	settled    []int
	active     []int
	peak       []int
	ready      []chan struct{}
	violations []string
}

func newBatchTracker(rows, batchSize int) *batchTracker {
	batches := (rows + batchSize - 1) / batchSize
	t := &batchTracker{
		batchSize: batchSize,
		expected:  make([]int, batches),
		arrived:   make([]int, batches),
		settled:   make([]int, batches),
		active:    make([]int, batches),
		peak:      make([]int, batches),
		ready:     make([]chan struct{}, batches),
	}
	for b := range t.expected {
		t.expected[b] = min(batchSize, rows-b*batchSize)
		t.ready[b] = make(chan struct{})
	}
	return t
}

func (t *batchTracker) UpdateProduct(_ context.Context, id int64, _ domain.ProductUpdate) error {
	b := int(id-1) / t.batchSize

	t.mu.Lock()
	for other := range t.active {
		if other != b && t.active[other] > 0 {
			t.violations = append(t.violations, fmt.Sprintf("row %d of batch %d overlapped batch %d", id, b, other))
		}
		if other < b && t.settled[other] != t.expected[other] {
			t.violations = append(t.violations, fmt.Sprintf("row %d of batch %d started before batch %d settled", id, b, other))
		}
	}
	t.active[b]++
	t.peak[b] = max(t.peak[b], t.active[b])
	t.arrived[b]++
	if t.arrived[b] == t.expected[b] {
		close(t.ready[b])
	}
	t.mu.Unlock()

	select {
	case <-t.ready[b]:
	case <-time.After(time.Second):
	}

	t.mu.Lock()
	t.active[b]--
	t.settled[b]++
	t.mu.Unlock()
	return nil
}

func (t *batchTracker) CreateProduct(context.Context, domain.NewProduct) (int64, error) {
	return 0, errors.New("unexpected create")
}

func TestCommit_BatchesRunConcurrentlyAndInOrder(t *testing.T) {
	t.Parallel()

	tracker := newBatchTracker(7, 3)
	c := NewCommitter(tracker, 3, pricing.StoreDefaults())
	res := c.Commit(context.Background(), matched(7), domain.ImportModeUpdate, nil)

	if res.Succeeded != 7 || res.Failed != 0 {
		t.Fatalf("want 7/0 got %d/%d", res.Succeeded, res.Failed)
	}
	if len(tracker.violations) > 0 {
		t.Fatalf("batch boundaries crossed: %v", tracker.violations)
	}
	want := []int{3, 3, 1}
	for b, peak := range tracker.peak {
		if peak != want[b] {
			t.Fatalf("batch %d peak in-flight want=%d got=%d", b, want[b], peak)
		}
	}
}
