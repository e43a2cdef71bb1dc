package inventory

import (
	"context"
	"sync"
	"testing"

	"storefront-api/internal/domain"
)

// memoryLedger mimics the locked Mutate primitive with a mutex: fn always
// sees the latest state and writes happen atomically.
type memoryLedger struct {
	mu      sync.Mutex
	records map[string]*domain.Inventory
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{records: make(map[string]*domain.Inventory)}
}

func (r *memoryLedger) Get(_ context.Context, productID string) (*domain.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *memoryLedger) List(_ context.Context) ([]domain.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Inventory
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	return out, nil
}

func (r *memoryLedger) Create(_ context.Context, productID string, quantity int) (*domain.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.records[productID]; exists {
		return nil, domain.ErrAlreadyExists
	}
	rec := &domain.Inventory{ID: "inv-" + productID, ProductID: productID, Quantity: quantity, TrackQuantity: true, LowStockThreshold: 5}
	r.records[productID] = rec
	clone := *rec
	return &clone, nil
}

func (r *memoryLedger) Mutate(_ context.Context, productID string, fn func(*domain.Inventory) error) (*domain.Inventory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[productID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	work := *rec
	if err := fn(&work); err != nil {
		return nil, err
	}
	*rec = work
	clone := work
	return &clone, nil
}

func TestReserve_HoldsStock(t *testing.T) {
	repo := newMemoryLedger()
	svc := New(repo, nil)
	ctx := context.Background()

	if _, err := repo.Create(ctx, "p1", 10); err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, _, err := svc.Reserve(ctx, "p1", 4)
	if err != nil || !ok {
		t.Fatalf("reserve: ok=%v err=%v", ok, err)
	}

	rec, err := svc.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.ReservedQuantity != 4 || rec.Quantity != 10 {
		t.Fatalf("expected reserved=4 quantity=10, got reserved=%d quantity=%d", rec.ReservedQuantity, rec.Quantity)
	}
	if rec.AvailableQuantity() != 6 {
		t.Fatalf("expected 6 available, got %d", rec.AvailableQuantity())
	}
}

func TestReserve_OutOfStockIsNotAnError(t *testing.T) {
	repo := newMemoryLedger()
	svc := New(repo, nil)
	ctx := context.Background()

	if _, err := repo.Create(ctx, "p1", 2); err != nil {
		t.Fatalf("create: %v", err)
	}

	ok, available, err := svc.Reserve(ctx, "p1", 3)
	if err != nil {
		t.Fatalf("reserve returned error: %v", err)
	}
	if ok {
		t.Fatal("expected reservation to fail")
	}
	if available != 2 {
		t.Fatalf("expected available=2, got %d", available)
	}

	rec, _ := svc.Get(ctx, "p1")
	if rec.ReservedQuantity != 0 {
		t.Fatalf("failed reservation must not hold stock, reserved=%d", rec.ReservedQuantity)
	}
}

// Two buyers racing for the last unit: exactly one reservation may succeed.
func TestReserve_ConcurrentLastUnit(t *testing.T) {
	repo := newMemoryLedger()
	svc := New(repo, nil)
	ctx := context.Background()

	if _, err := repo.Create(ctx, "p1", 1); err != nil {
		t.Fatalf("create: %v", err)
	}

	const buyers = 16
	var wg sync.WaitGroup
	results := make(chan bool, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, _, err := svc.Reserve(ctx, "p1", 1)
			if err != nil {
				t.Errorf("reserve: %v", err)
				return
			}
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for ok := range results {
		if ok {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 successful reservation, got %d", wins)
	}
}

func TestRelease_ClampsAndIgnoresNonPositive(t *testing.T) {
	repo := newMemoryLedger()
	svc := New(repo, nil)
	ctx := context.Background()

	if _, err := repo.Create(ctx, "p1", 5); err != nil {
		t.Fatalf("create: %v", err)
	}
	if ok, _, _ := svc.Reserve(ctx, "p1", 2); !ok {
		t.Fatal("reserve failed")
	}

	if err := svc.Release(ctx, "p1", 10); err != nil {
		t.Fatalf("release: %v", err)
	}
	rec, _ := svc.Get(ctx, "p1")
	if rec.ReservedQuantity != 0 {
		t.Fatalf("expected reserved clamped to 0, got %d", rec.ReservedQuantity)
	}

	if err := svc.Release(ctx, "p1", 0); err != nil {
		t.Fatalf("zero release must be a no-op, got %v", err)
	}
}

func TestSetQuantity_CreatesLazily(t *testing.T) {
	repo := newMemoryLedger()
	svc := New(repo, nil)
	ctx := context.Background()

	rec, err := svc.SetQuantity(ctx, "new-product", 7)
	if err != nil {
		t.Fatalf("set quantity: %v", err)
	}
	if rec.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", rec.Quantity)
	}

	rec, err = svc.SetQuantity(ctx, "new-product", 3)
	if err != nil {
		t.Fatalf("set quantity again: %v", err)
	}
	if rec.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", rec.Quantity)
	}
}

func TestEnsureRecord_Idempotent(t *testing.T) {
	repo := newMemoryLedger()
	svc := New(repo, nil)
	ctx := context.Background()

	first, err := svc.EnsureRecord(ctx, "p1")
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	second, err := svc.EnsureRecord(ctx, "p1")
	if err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected same record, got %s and %s", first.ID, second.ID)
	}
}
