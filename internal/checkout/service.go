package checkout

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

// Store is the slice of the repository checkout needs. CreateOrder must
// persist the header, its lines and the cart clear atomically.
type Store interface {
	ListCartLines(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error)
	CreateOrder(ctx context.Context, order *domain.Order) error
	ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error)
}

type Service struct {
	store          Store
	gateway        PaymentGateway
	paymentTimeout time.Duration
}

func NewService(store Store, gateway PaymentGateway, paymentTimeout time.Duration) *Service {
	return &Service{
		store:          store,
		gateway:        gateway,
		paymentTimeout: paymentTimeout,
	}
}

// PlaceOrder runs the checkout sequence: authorize payment, then persist the
// order header, its line snapshots and the cart clear in one transaction.
// On any failure the cart is untouched and no partial order exists. After
// success the cart is empty, so resubmitting the same form yields
// ErrEmptyCart.
func (s *Service) PlaceOrder(ctx context.Context, userID uuid.UUID, address domain.ShippingAddress, card Card) (*domain.Order, error) {
	lines, err := s.store.ListCartLines(ctx, userID)
	if err != nil {
		log.Printf("checkout cart load error for user %s: %v", userID, err)
		return nil, err
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	totals := ComputeTotals(lines)

	payCtx, cancel := context.WithTimeout(ctx, s.paymentTimeout)
	defer cancel()
	paymentID, err := s.gateway.Authorize(payCtx, card, totals.GrandTotal)
	if err != nil {
		return nil, err
	}

	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          domain.OrderStatusConfirmed,
		PaymentStatus:   domain.PaymentStatusPaid,
		Total:           totals.GrandTotal,
		ShippingAddress: address,
	}
	for _, l := range lines {
		order.Lines = append(order.Lines, domain.OrderLine{
			ID:          uuid.New(),
			ProductID:   l.ProductID,
			ProductName: l.Name,
			Quantity:    l.Quantity,
			Price:       l.Price,
		})
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		log.Printf("checkout order persist error for user %s (payment %s): %v", userID, paymentID, err)
		return nil, err
	}

	return order, nil
}

// ListOrders returns the user's order history, newest first.
func (s *Service) ListOrders(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	return s.store.ListOrders(ctx, userID)
}

func (s *Service) GetOrder(ctx context.Context, userID, orderID uuid.UUID) (*domain.Order, error) {
	return s.store.GetOrder(ctx, userID, orderID)
}
