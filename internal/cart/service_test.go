package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockStore keeps cart lines in memory with the same semantics as the
// Postgres store: accumulate on add, overwrite on set, no-op removes.
type mockStore struct {
	mu     sync.Mutex
	lines  map[uuid.UUID][]domain.CartLine
	prices map[uuid.UUID]float64

	writes   int
	deletes  int64
	storeErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		lines:  make(map[uuid.UUID][]domain.CartLine),
		prices: make(map[uuid.UUID]float64),
	}
}

func (m *mockStore) ListCartLines(_ context.Context, userID uuid.UUID) ([]domain.CartLine, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	return append([]domain.CartLine(nil), m.lines[userID]...), nil
}

func (m *mockStore) AddCartLine(_ context.Context, userID, productID uuid.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return m.storeErr
	}
	m.writes++
	for i := range m.lines[userID] {
		if m.lines[userID][i].ProductID == productID {
			m.lines[userID][i].Quantity += quantity
			return nil
		}
	}
	m.lines[userID] = append(m.lines[userID], domain.CartLine{
		ID:        uuid.New(),
		ProductID: productID,
		Price:     m.prices[productID],
		Quantity:  quantity,
	})
	return nil
}

func (m *mockStore) SetCartLineQuantity(_ context.Context, userID, productID uuid.UUID, quantity int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return m.storeErr
	}
	m.writes++
	for i := range m.lines[userID] {
		if m.lines[userID][i].ProductID == productID {
			m.lines[userID][i].Quantity = quantity
		}
	}
	return nil
}

func (m *mockStore) RemoveCartLine(_ context.Context, userID, productID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return m.storeErr
	}
	m.writes++
	lines := m.lines[userID]
	for i, l := range lines {
		if l.ProductID == productID {
			m.lines[userID] = append(lines[:i], lines[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockStore) ClearCartLines(_ context.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storeErr != nil {
		return 0, m.storeErr
	}
	m.writes++
	n := int64(len(m.lines[userID]))
	m.deletes += n
	delete(m.lines, userID)
	return n, nil
}

func TestLoad_Anonymous(t *testing.T) {
	store := newMockStore()
	store.storeErr = errors.New("must not be called")
	svc := NewService(store)

	c, err := svc.Load(context.Background(), uuid.Nil)
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
	assert.Zero(t, c.TotalItems())
}

func TestLoad_StoreFailureYieldsEmptyCart(t *testing.T) {
	store := newMockStore()
	store.storeErr = errors.New("store unreachable")
	svc := NewService(store)

	c, err := svc.Load(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Empty(t, c.Lines)
}

func TestAdd_AccumulatesQuantity(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	userID := uuid.New()
	productID := uuid.New()

	_, err := svc.Add(context.Background(), userID, productID, 2)
	require.NoError(t, err)

	c, err := svc.Add(context.Background(), userID, productID, 3)
	require.NoError(t, err)

	require.Len(t, c.Lines, 1)
	assert.Equal(t, 5, c.Lines[0].Quantity)
	assert.Equal(t, 5, c.TotalItems())
}

func TestAdd_DefaultQuantityIsOne(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)

	c, err := svc.Add(context.Background(), uuid.New(), uuid.New(), 0)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 1, c.Lines[0].Quantity)
}

func TestAdd_ReturnsStateConsistentWithStore(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	userID := uuid.New()
	p1, p2 := uuid.New(), uuid.New()
	store.prices[p1] = 19.99
	store.prices[p2] = 5.00

	_, err := svc.Add(context.Background(), userID, p1, 1)
	require.NoError(t, err)
	c, err := svc.Add(context.Background(), userID, p2, 2)
	require.NoError(t, err)

	fresh, err := svc.Load(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, fresh.Lines, c.Lines)
	assert.InDelta(t, 29.99, c.TotalPrice(), 0.001)
}

func TestUpdateQuantity_ZeroRemovesLine(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	userID := uuid.New()
	productID := uuid.New()

	_, err := svc.Add(context.Background(), userID, productID, 2)
	require.NoError(t, err)

	c, err := svc.UpdateQuantity(context.Background(), userID, productID, 0)
	require.NoError(t, err)
	assert.Empty(t, c.Lines)

	fresh, err := svc.Load(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, fresh.Lines)
}

func TestUpdateQuantity_NegativeRemovesLine(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	userID := uuid.New()
	productID := uuid.New()

	_, err := svc.Add(context.Background(), userID, productID, 2)
	require.NoError(t, err)

	c, err := svc.UpdateQuantity(context.Background(), userID, productID, -3)
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
}

func TestUpdateQuantity_Overwrites(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	userID := uuid.New()
	productID := uuid.New()

	_, err := svc.Add(context.Background(), userID, productID, 2)
	require.NoError(t, err)

	c, err := svc.UpdateQuantity(context.Background(), userID, productID, 7)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 7, c.Lines[0].Quantity)
}

func TestRemove_AbsentLineIsNoOp(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)

	c, err := svc.Remove(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
}

func TestClear_CountsDeletions(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := svc.Add(context.Background(), userID, uuid.New(), 1)
		require.NoError(t, err)
	}

	c, err := svc.Clear(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, c.Lines)
	assert.EqualValues(t, 3, store.deletes)
}

func TestMutations_AnonymousTouchNothing(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	ctx := context.Background()

	_, err := svc.Add(ctx, uuid.Nil, uuid.New(), 1)
	assert.ErrorIs(t, err, ErrAuthRequired)

	_, err = svc.Remove(ctx, uuid.Nil, uuid.New())
	assert.ErrorIs(t, err, ErrAuthRequired)

	_, err = svc.UpdateQuantity(ctx, uuid.Nil, uuid.New(), 5)
	assert.ErrorIs(t, err, ErrAuthRequired)

	_, err = svc.UpdateQuantity(ctx, uuid.Nil, uuid.New(), 0)
	assert.ErrorIs(t, err, ErrAuthRequired)

	_, err = svc.Clear(ctx, uuid.Nil)
	assert.ErrorIs(t, err, ErrAuthRequired)

	assert.Zero(t, store.writes)
}

func TestMutationFailure_LeavesStoreState(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	userID := uuid.New()
	productID := uuid.New()

	_, err := svc.Add(context.Background(), userID, productID, 2)
	require.NoError(t, err)

	store.storeErr = errors.New("store unreachable")
	_, err = svc.Add(context.Background(), userID, productID, 1)
	require.Error(t, err)

	store.storeErr = nil
	c, err := svc.Load(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, 2, c.Lines[0].Quantity)
}

// Rapid concurrent edits for one user must serialize: after N concurrent
// adds of one unit each the persisted quantity is exactly N.
func TestConcurrentAdds_Serialized(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	userID := uuid.New()
	productID := uuid.New()

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Add(context.Background(), userID, productID, 1)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := svc.Load(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, c.Lines, 1)
	assert.Equal(t, n, c.Lines[0].Quantity)
}

// Mutations for different users must not block each other's state.
func TestConcurrentUsers_Independent(t *testing.T) {
	store := newMockStore()
	svc := NewService(store)
	users := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u uuid.UUID) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				_, err := svc.Add(context.Background(), u, uuid.New(), 1)
				assert.NoError(t, err)
			}
		}(u)
	}
	wg.Wait()

	for _, u := range users {
		c, err := svc.Load(context.Background(), u)
		require.NoError(t, err)
		assert.Len(t, c.Lines, 10)
	}
}
