package ledger

import (
	"context"
	"maps"
	"slices"
	"sync"
	"testing"

	"vendas/internal/core/apperror"
	"vendas/internal/core/id"
)

// fakeStore is an in-memory ledger.Repository.
type fakeStore struct {
	quantities map[id.ID]int64
	movements  []Movement
}

func newFakeStore() *fakeStore {
	return &fakeStore{quantities: make(map[id.ID]int64)}
}

func (f *fakeStore) GetQuantityForUpdate(ctx context.Context, productID id.ID) (int64, error) {
	qty, ok := f.quantities[productID]
	if !ok {
		return 0, apperror.NewNotFound("product", productID)
	}
	return qty, nil
}

func (f *fakeStore) SetQuantity(ctx context.Context, productID id.ID, quantity int64) error {
	if _, ok := f.quantities[productID]; !ok {
		return apperror.NewNotFound("product", productID)
	}
	f.quantities[productID] = quantity
	return nil
}

func (f *fakeStore) CreateMovement(ctx context.Context, m *Movement) error {
	f.movements = append(f.movements, *m)
	return nil
}

func (f *fakeStore) ListMovements(ctx context.Context, productID id.ID, filter MovementFilter) ([]Movement, error) {
	var out []Movement
	for _, m := range f.movements {
		if m.ProductID != productID {
			continue
		}
		if filter.Kind != nil && m.Kind != *filter.Kind {
			continue
		}
		out = append(out, m)
	}
	if !filter.Ascending {
		slices.Reverse(out)
	}
	return out, nil
}

// fakeTxManager emulates the storage transaction: a store-wide lock
// stands in for row locks (serializing writers), and a snapshot restore
// stands in for rollback.
type fakeTxManager struct {
	mu    sync.Mutex
	store *fakeStore
}

type txKey struct{}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		// Nested call reuses the outer transaction
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snapQty := maps.Clone(m.store.quantities)
	snapMov := slices.Clone(m.store.movements)

	err := fn(context.WithValue(ctx, txKey{}, struct{}{}))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		m.store.quantities = snapQty
		m.store.movements = snapMov
		return err
	}
	return nil
}

func newTestService() (*Service, *fakeStore) {
	store := newFakeStore()
	return NewService(store, &fakeTxManager{store: store}), store
}

func TestIncrease(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	productID := id.New()
	store.quantities[productID] = 10

	m, err := svc.Increase(ctx, productID, 5, "goods received", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.quantities[productID] != 15 {
		t.Errorf("expected quantity 15, got %d", store.quantities[productID])
	}
	if m.Kind != KindInbound || m.Quantity != 5 || m.QuantityBefore != 10 || m.QuantityAfter != 15 {
		t.Errorf("unexpected movement: %+v", m)
	}
	if len(store.movements) != 1 {
		t.Errorf("expected 1 movement, got %d", len(store.movements))
	}
}

func TestIncrease_InvalidAmount(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	productID := id.New()
	store.quantities[productID] = 10

	for _, amount := range []int64{0, -3} {
		if _, err := svc.Increase(ctx, productID, amount, "", nil); !apperror.IsCode(err, apperror.CodeValidation) {
			t.Errorf("amount %d: expected validation error, got %v", amount, err)
		}
	}

	if store.quantities[productID] != 10 || len(store.movements) != 0 {
		t.Errorf("store mutated on invalid input")
	}
}

func TestIncrease_ProductNotFound(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Increase(context.Background(), id.New(), 5, "", nil); !apperror.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDecrease(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	productID := id.New()
	store.quantities[productID] = 40

	m, err := svc.Decrease(ctx, productID, 30, "sale", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.quantities[productID] != 10 {
		t.Errorf("expected quantity 10, got %d", store.quantities[productID])
	}
	if m.Kind != KindOutbound || m.Quantity != 30 || m.QuantityBefore != 40 || m.QuantityAfter != 10 {
		t.Errorf("unexpected movement: %+v", m)
	}
}

func TestDecrease_InsufficientStock(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	productID := id.New()
	store.quantities[productID] = 40

	_, err := svc.Decrease(ctx, productID, 50, "sale", nil)
	if !apperror.IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	appErr, _ := apperror.AsAppError(err)
	if appErr.Details["available"] != int64(40) || appErr.Details["requested"] != int64(50) {
		t.Errorf("unexpected details: %v", appErr.Details)
	}

	// No partial mutation, no movement record
	if store.quantities[productID] != 40 {
		t.Errorf("quantity mutated: %d", store.quantities[productID])
	}
	if len(store.movements) != 0 {
		t.Errorf("movement recorded for aborted decrease")
	}
}

func TestAdjustTo(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	productID := id.New()
	store.quantities[productID] = 7

	m, err := svc.AdjustTo(ctx, productID, 0, "count correction", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if store.quantities[productID] != 0 {
		t.Errorf("expected quantity 0, got %d", store.quantities[productID])
	}
	if m.Kind != KindAdjustment || m.Quantity != 7 || m.QuantityBefore != 7 || m.QuantityAfter != 0 {
		t.Errorf("unexpected movement: %+v", m)
	}
}

func TestAdjustTo_RequiresNote(t *testing.T) {
	svc, store := newTestService()

	productID := id.New()
	store.quantities[productID] = 7

	if _, err := svc.AdjustTo(context.Background(), productID, 3, "", nil); !apperror.IsCode(err, apperror.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAdjustTo_NegativeTarget(t *testing.T) {
	svc, store := newTestService()

	productID := id.New()
	store.quantities[productID] = 7

	if _, err := svc.AdjustTo(context.Background(), productID, -1, "oops", nil); !apperror.IsCode(err, apperror.CodeValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestAdjustTo_NoChange(t *testing.T) {
	svc, store := newTestService()

	productID := id.New()
	store.quantities[productID] = 7

	m, err := svc.AdjustTo(context.Background(), productID, 7, "recount, no difference", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m != nil {
		t.Errorf("expected no movement for no-op adjustment, got %+v", m)
	}
	if len(store.movements) != 0 {
		t.Errorf("movement recorded for no-op adjustment")
	}
}

func TestMovementChain(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	productID := id.New()
	store.quantities[productID] = 100

	if _, err := svc.Decrease(ctx, productID, 20, "", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Increase(ctx, productID, 5, "", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AdjustTo(ctx, productID, 50, "count", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Decrease(ctx, productID, 50, "", nil); err != nil {
		t.Fatal(err)
	}

	history, err := svc.History(ctx, productID, MovementFilter{Ascending: true})
	if err != nil {
		t.Fatal(err)
	}

	// Replaying the chain from the initial quantity reproduces the
	// current quantity; every before matches the prior after.
	qty := int64(100)
	for i, m := range history {
		if m.QuantityBefore != qty {
			t.Errorf("movement %d: before=%d, expected %d", i, m.QuantityBefore, qty)
		}
		switch m.Kind {
		case KindInbound:
			qty += m.Quantity
		case KindOutbound:
			qty -= m.Quantity
		case KindAdjustment:
			qty = m.QuantityAfter
		}
		if m.QuantityAfter != qty {
			t.Errorf("movement %d: after=%d, expected %d", i, m.QuantityAfter, qty)
		}
	}
	if qty != store.quantities[productID] {
		t.Errorf("replayed quantity %d != stored %d", qty, store.quantities[productID])
	}
}

func TestConcurrentDecrease(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	productID := id.New()
	store.quantities[productID] = 40

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Decrease(ctx, productID, 30, "parallel sale", nil)
		}(i)
	}
	wg.Wait()

	var successes, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case apperror.IsInsufficientStock(err):
			insufficient++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if successes != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one success and one insufficient, got %d/%d", successes, insufficient)
	}
	if store.quantities[productID] != 10 {
		t.Errorf("expected final quantity 10, got %d", store.quantities[productID])
	}
	if len(store.movements) != 1 {
		t.Errorf("expected exactly one movement, got %d", len(store.movements))
	}
}

func TestHistory_NewestFirst(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	productID := id.New()
	store.quantities[productID] = 10

	if _, err := svc.Increase(ctx, productID, 1, "first", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Increase(ctx, productID, 1, "second", nil); err != nil {
		t.Fatal(err)
	}

	history, err := svc.History(ctx, productID, MovementFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 movements, got %d", len(history))
	}
	if history[0].Note != "second" || history[1].Note != "first" {
		t.Errorf("expected newest-first ordering, got %q then %q", history[0].Note, history[1].Note)
	}
}
