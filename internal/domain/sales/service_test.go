package sales

import (
	"context"
	"maps"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"vendas/internal/core/apperror"
	"vendas/internal/core/id"
	"vendas/internal/core/types"
	"vendas/internal/domain/ledger"
)

// fakeDB is one in-memory store backing the sales repository, the price
// reader and the ledger repository, so a shared fake transaction can
// snapshot and restore all of it at once.
type fakeDB struct {
	prices     map[id.ID]types.Money
	quantities map[id.ID]int64
	movements  []ledger.Movement
	sales      map[id.ID]Sale
	lines      map[id.ID][]Line
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		prices:     make(map[id.ID]types.Money),
		quantities: make(map[id.ID]int64),
		sales:      make(map[id.ID]Sale),
		lines:      make(map[id.ID][]Line),
	}
}

func (f *fakeDB) addProduct(price string, quantity int64) id.ID {
	productID := id.New()
	f.prices[productID] = types.MustMoney(price)
	f.quantities[productID] = quantity
	return productID
}

// --- sales.Repository ---

func (f *fakeDB) Create(ctx context.Context, sale *Sale) error {
	f.sales[sale.ID] = *sale
	return nil
}

func (f *fakeDB) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	sale, ok := f.sales[saleID]
	if !ok {
		return nil, apperror.NewNotFound("sale", saleID)
	}
	return &sale, nil
}

func (f *fakeDB) GetLines(ctx context.Context, saleID id.ID) ([]Line, error) {
	return slices.Clone(f.lines[saleID]), nil
}

func (f *fakeDB) CreateLine(ctx context.Context, line *Line) error {
	f.lines[line.SaleID] = append(f.lines[line.SaleID], *line)
	return nil
}

func (f *fakeDB) UpdateTotal(ctx context.Context, saleID id.ID, total types.Money) error {
	sale, ok := f.sales[saleID]
	if !ok {
		return apperror.NewNotFound("sale", saleID)
	}
	sale.Total = total
	f.sales[saleID] = sale
	return nil
}

func (f *fakeDB) Delete(ctx context.Context, saleID id.ID) error {
	if _, ok := f.sales[saleID]; !ok {
		return apperror.NewNotFound("sale", saleID)
	}
	delete(f.sales, saleID)
	delete(f.lines, saleID)
	return nil
}

func (f *fakeDB) List(ctx context.Context, filter ListFilter) ([]Sale, error) {
	var out []Sale
	for _, sale := range f.sales {
		out = append(out, sale)
	}
	return out, nil
}

func (f *fakeDB) TotalForPeriod(ctx context.Context, from, to time.Time) (types.Money, error) {
	total := types.ZeroMoney()
	for _, sale := range f.sales {
		if !sale.Date.Before(from) && !sale.Date.After(to) {
			total = total.Add(sale.Total)
		}
	}
	return total, nil
}

// --- sales.PriceReader ---

func (f *fakeDB) GetPrice(ctx context.Context, productID id.ID) (types.Money, error) {
	price, ok := f.prices[productID]
	if !ok {
		return types.ZeroMoney(), apperror.NewNotFound("product", productID)
	}
	return price, nil
}

// --- ledger.Repository ---

func (f *fakeDB) GetQuantityForUpdate(ctx context.Context, productID id.ID) (int64, error) {
	qty, ok := f.quantities[productID]
	if !ok {
		return 0, apperror.NewNotFound("product", productID)
	}
	return qty, nil
}

func (f *fakeDB) SetQuantity(ctx context.Context, productID id.ID, quantity int64) error {
	f.quantities[productID] = quantity
	return nil
}

func (f *fakeDB) CreateMovement(ctx context.Context, m *ledger.Movement) error {
	f.movements = append(f.movements, *m)
	return nil
}

func (f *fakeDB) ListMovements(ctx context.Context, productID id.ID, filter ledger.MovementFilter) ([]ledger.Movement, error) {
	var out []ledger.Movement
	for _, m := range f.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	if !filter.Ascending {
		slices.Reverse(out)
	}
	return out, nil
}

// fakeTxManager snapshots the whole fakeDB and restores it when the
// transactional function fails, emulating rollback. Nested calls reuse
// the outer transaction, exactly like the real TxManager.
type fakeTxManager struct {
	mu sync.Mutex
	db *fakeDB
}

type txKey struct{}

func (m *fakeTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	err := fn(context.WithValue(ctx, txKey{}, struct{}{}))
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *fakeTxManager) snapshot() *fakeDB {
	snap := &fakeDB{
		prices:     maps.Clone(m.db.prices),
		quantities: maps.Clone(m.db.quantities),
		movements:  slices.Clone(m.db.movements),
		sales:      maps.Clone(m.db.sales),
		lines:      make(map[id.ID][]Line, len(m.db.lines)),
	}
	for saleID, lines := range m.db.lines {
		snap.lines[saleID] = slices.Clone(lines)
	}
	return snap
}

func (m *fakeTxManager) restore(snap *fakeDB) {
	m.db.prices = snap.prices
	m.db.quantities = snap.quantities
	m.db.movements = snap.movements
	m.db.sales = snap.sales
	m.db.lines = snap.lines
}

func newTestService() (*Service, *fakeDB) {
	db := newFakeDB()
	txm := &fakeTxManager{db: db}
	stockLedger := ledger.NewService(db, txm)
	return NewService(db, db, stockLedger, txm), db
}

func TestCommit_RoundTrip(t *testing.T) {
	svc, db := newTestService()
	ctx := context.Background()

	customerID := id.New()
	productID := db.addProduct("10.00", 50)

	saleID, err := svc.Commit(ctx, CommitInput{
		CustomerID: customerID,
		Date:       time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		Lines:      []LineInput{{ProductID: productID, Quantity: 5}},
	})
	require.NoError(t, err)

	require.Equal(t, int64(45), db.quantities[productID])

	require.Len(t, db.movements, 1)
	m := db.movements[0]
	require.Equal(t, ledger.KindOutbound, m.Kind)
	require.Equal(t, int64(50), m.QuantityBefore)
	require.Equal(t, int64(45), m.QuantityAfter)
	require.Equal(t, int64(5), m.Quantity)

	sale, err := svc.GetByID(ctx, saleID)
	require.NoError(t, err)
	require.True(t, sale.Total.Equal(types.MustMoney("50.00")), "total = %s", sale.Total)
	require.Len(t, sale.Lines, 1)
	require.True(t, sale.Lines[0].Subtotal.Equal(types.MustMoney("50.00")))

	// Reversal restores stock and removes the sale
	require.NoError(t, svc.Reverse(ctx, saleID))

	require.Equal(t, int64(50), db.quantities[productID])
	require.Len(t, db.movements, 2)
	restore := db.movements[1]
	require.Equal(t, ledger.KindInbound, restore.Kind)
	require.Equal(t, int64(45), restore.QuantityBefore)
	require.Equal(t, int64(50), restore.QuantityAfter)

	_, err = svc.GetByID(ctx, saleID)
	require.True(t, apperror.IsNotFound(err))
	require.Empty(t, db.lines[saleID])
}

func TestCommit_InsufficientStockRollsBackEverything(t *testing.T) {
	svc, db := newTestService()
	ctx := context.Background()

	p1 := db.addProduct("5.00", 100)
	p2 := db.addProduct("7.50", 3) // not enough for the request below
	p3 := db.addProduct("2.00", 100)

	_, err := svc.Commit(ctx, CommitInput{
		CustomerID: id.New(),
		Date:       time.Now().UTC(),
		Lines: []LineInput{
			{ProductID: p1, Quantity: 10},
			{ProductID: p2, Quantity: 5},
			{ProductID: p3, Quantity: 1},
		},
	})
	require.True(t, apperror.IsInsufficientStock(err), "got %v", err)

	// Lines 1 and 3 completely unaffected, no movement rows at all
	require.Equal(t, int64(100), db.quantities[p1])
	require.Equal(t, int64(3), db.quantities[p2])
	require.Equal(t, int64(100), db.quantities[p3])
	require.Empty(t, db.movements)
	require.Empty(t, db.sales)
}

func TestCommit_RequiresLines(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Commit(context.Background(), CommitInput{
		CustomerID: id.New(),
		Date:       time.Now().UTC(),
	})
	require.True(t, apperror.IsCode(err, apperror.CodeValidation))
}

func TestCommit_RejectsInvalidLine(t *testing.T) {
	svc, db := newTestService()
	productID := db.addProduct("1.00", 10)

	for _, qty := range []int64{0, -2} {
		_, err := svc.Commit(context.Background(), CommitInput{
			CustomerID: id.New(),
			Date:       time.Now().UTC(),
			Lines:      []LineInput{{ProductID: productID, Quantity: qty}},
		})
		require.True(t, apperror.IsCode(err, apperror.CodeValidation), "qty %d: got %v", qty, err)
	}
}

func TestCommit_DuplicateProductLines(t *testing.T) {
	svc, db := newTestService()
	ctx := context.Background()

	productID := db.addProduct("3.00", 10)

	saleID, err := svc.Commit(ctx, CommitInput{
		CustomerID: id.New(),
		Date:       time.Now().UTC(),
		Lines: []LineInput{
			{ProductID: productID, Quantity: 4},
			{ProductID: productID, Quantity: 4},
		},
	})
	require.NoError(t, err)

	// Second line saw the quantity left by the first
	require.Equal(t, int64(2), db.quantities[productID])
	require.Len(t, db.movements, 2)
	require.Equal(t, int64(10), db.movements[0].QuantityBefore)
	require.Equal(t, int64(6), db.movements[0].QuantityAfter)
	require.Equal(t, int64(6), db.movements[1].QuantityBefore)
	require.Equal(t, int64(2), db.movements[1].QuantityAfter)

	sale, err := svc.GetByID(ctx, saleID)
	require.NoError(t, err)
	require.True(t, sale.Total.Equal(types.MustMoney("24.00")), "total = %s", sale.Total)
}

func TestCommit_DuplicateProductOversellRollsBack(t *testing.T) {
	svc, db := newTestService()

	productID := db.addProduct("3.00", 10)

	_, err := svc.Commit(context.Background(), CommitInput{
		CustomerID: id.New(),
		Date:       time.Now().UTC(),
		Lines: []LineInput{
			{ProductID: productID, Quantity: 7},
			{ProductID: productID, Quantity: 7},
		},
	})
	require.True(t, apperror.IsInsufficientStock(err), "got %v", err)

	require.Equal(t, int64(10), db.quantities[productID])
	require.Empty(t, db.movements)
	require.Empty(t, db.sales)
}

func TestCommit_UnknownProductRollsBack(t *testing.T) {
	svc, db := newTestService()

	known := db.addProduct("1.00", 10)

	_, err := svc.Commit(context.Background(), CommitInput{
		CustomerID: id.New(),
		Date:       time.Now().UTC(),
		Lines: []LineInput{
			{ProductID: known, Quantity: 2},
			{ProductID: id.New(), Quantity: 1},
		},
	})
	require.True(t, apperror.IsNotFound(err), "got %v", err)

	require.Equal(t, int64(10), db.quantities[known])
	require.Empty(t, db.movements)
	require.Empty(t, db.sales)
}

func TestCommit_SubtotalFrozenAtCommitPrice(t *testing.T) {
	svc, db := newTestService()
	ctx := context.Background()

	productID := db.addProduct("10.00", 50)

	saleID, err := svc.Commit(ctx, CommitInput{
		CustomerID: id.New(),
		Date:       time.Now().UTC(),
		Lines:      []LineInput{{ProductID: productID, Quantity: 2}},
	})
	require.NoError(t, err)

	// Later price change must not affect the committed subtotal
	db.prices[productID] = types.MustMoney("99.99")

	sale, err := svc.GetByID(ctx, saleID)
	require.NoError(t, err)
	require.True(t, sale.Lines[0].Subtotal.Equal(types.MustMoney("20.00")))
	require.True(t, sale.Total.Equal(types.MustMoney("20.00")))
}

func TestReverse_NotFound(t *testing.T) {
	svc, _ := newTestService()

	err := svc.Reverse(context.Background(), id.New())
	require.True(t, apperror.IsNotFound(err))
}

func TestTotalForPeriod(t *testing.T) {
	svc, db := newTestService()
	ctx := context.Background()

	productID := db.addProduct("10.00", 100)

	dates := []time.Time{
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		_, err := svc.Commit(ctx, CommitInput{
			CustomerID: id.New(),
			Date:       d,
			Lines:      []LineInput{{ProductID: productID, Quantity: 1}},
		})
		require.NoError(t, err)
	}

	total, err := svc.TotalForPeriod(ctx,
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	require.True(t, total.Equal(types.MustMoney("20.00")), "total = %s", total)
}
