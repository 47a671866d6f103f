package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	lines     []domain.CartLine
	linesErr  error
	createErr error

	createdOrder *domain.Order
	cartCleared  bool
}

func (m *mockStore) ListCartLines(context.Context, uuid.UUID) ([]domain.CartLine, error) {
	if m.linesErr != nil {
		return nil, m.linesErr
	}
	if m.cartCleared {
		return nil, nil
	}
	return m.lines, nil
}

func (m *mockStore) CreateOrder(_ context.Context, order *domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.createdOrder = order
	m.cartCleared = true
	return nil
}

func (m *mockStore) ListOrders(context.Context, uuid.UUID) ([]*domain.Order, error) {
	if m.createdOrder == nil {
		return nil, nil
	}
	return []*domain.Order{m.createdOrder}, nil
}

func (m *mockStore) GetOrder(_ context.Context, _ uuid.UUID, orderID uuid.UUID) (*domain.Order, error) {
	if m.createdOrder != nil && m.createdOrder.ID == orderID {
		return m.createdOrder, nil
	}
	return nil, repository.ErrOrderNotFound
}

type mockGateway struct {
	err   error
	calls int
}

func (m *mockGateway) Authorize(_ context.Context, _ Card, _ float64) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	return uuid.NewString(), nil
}

var (
	testAddress = domain.ShippingAddress{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Address:   "12 Analytical Way",
		City:      "London",
		State:     "LD",
		ZipCode:   "12345",
	}
	testCard = Card{Number: "4242424242424242", Expiry: "12/30", CVV: "123"}
)

func twoLineCart() []domain.CartLine {
	return []domain.CartLine{
		{ID: uuid.New(), ProductID: uuid.New(), Name: "Walnut Desk", Price: 120.00, Quantity: 1},
		{ID: uuid.New(), ProductID: uuid.New(), Name: "Brass Lamp", Price: 30.00, Quantity: 2},
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	store := &mockStore{lines: twoLineCart()}
	svc := NewService(store, &mockGateway{}, time.Second)

	order, err := svc.PlaceOrder(context.Background(), uuid.New(), testAddress, testCard)
	require.NoError(t, err)

	// subtotal 180, free shipping, 8% tax
	assert.Equal(t, 194.40, order.Total)
	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	assert.Equal(t, domain.PaymentStatusPaid, order.PaymentStatus)
	assert.Equal(t, testAddress, order.ShippingAddress)

	require.Len(t, order.Lines, 2)
	assert.Equal(t, "Walnut Desk", order.Lines[0].ProductName)
	assert.Equal(t, 120.00, order.Lines[0].Price)
	assert.Equal(t, 2, order.Lines[1].Quantity)

	assert.True(t, store.cartCleared)
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	store := &mockStore{}
	gateway := &mockGateway{}
	svc := NewService(store, gateway, time.Second)

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), testAddress, testCard)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Zero(t, gateway.calls)
	assert.Nil(t, store.createdOrder)
}

func TestPlaceOrder_PaymentDeclined(t *testing.T) {
	store := &mockStore{lines: twoLineCart()}
	svc := NewService(store, &mockGateway{err: ErrPaymentDeclined}, time.Second)

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), testAddress, testCard)
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	// nothing persisted, cart untouched
	assert.Nil(t, store.createdOrder)
	assert.False(t, store.cartCleared)
}

func TestPlaceOrder_StoreFailureLeavesCartUntouched(t *testing.T) {
	store := &mockStore{lines: twoLineCart(), createErr: errors.New("connection reset")}
	svc := NewService(store, &mockGateway{}, time.Second)

	_, err := svc.PlaceOrder(context.Background(), uuid.New(), testAddress, testCard)
	require.Error(t, err)
	assert.False(t, store.cartCleared)
}

// A second submission without repopulating the cart has nothing to submit.
func TestPlaceOrder_NotRepeatableAfterSuccess(t *testing.T) {
	store := &mockStore{lines: twoLineCart()}
	svc := NewService(store, &mockGateway{}, time.Second)
	userID := uuid.New()

	_, err := svc.PlaceOrder(context.Background(), userID, testAddress, testCard)
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), userID, testAddress, testCard)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestSimulatedGateway(t *testing.T) {
	g := SimulatedGateway{}
	ctx := context.Background()

	id, err := g.Authorize(ctx, testCard, 42.00)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = g.Authorize(ctx, Card{Number: "1234", Expiry: "12/30", CVV: "123"}, 42.00)
	assert.ErrorIs(t, err, ErrPaymentDeclined)

	_, err = g.Authorize(ctx, testCard, 0)
	assert.ErrorIs(t, err, ErrPaymentDeclined)
}
