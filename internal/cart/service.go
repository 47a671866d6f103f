package cart

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

var (
	ErrAuthRequired = errors.New("sign in to modify the cart")
)

// Store is the slice of the repository the cart aggregate needs.
type Store interface {
	ListCartLines(ctx context.Context, userID uuid.UUID) ([]domain.CartLine, error)
	AddCartLine(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	SetCartLineQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	RemoveCartLine(ctx context.Context, userID, productID uuid.UUID) error
	ClearCartLines(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Service is the authoritative view of a user's cart. Every mutation writes
// through to the store and then reloads from it, so the returned snapshot is
// always consistent with persisted state (read-after-write, no local-only
// mutation to reconcile). Mutations are serialized per user so rapid repeated
// edits cannot interleave their write+reload pairs.
type Service struct {
	store Store
	sfg   singleflight.Group

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		locks: make(map[uuid.UUID]*sync.Mutex),
	}
}

// Load fetches the user's cart. An anonymous identity (uuid.Nil) yields an
// empty cart with no store call. Concurrent loads for the same user are
// collapsed into one.
func (s *Service) Load(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	if userID == uuid.Nil {
		return &domain.Cart{}, nil
	}

	v, err, _ := s.sfg.Do(userID.String(), func() (interface{}, error) {
		lines, err := s.store.ListCartLines(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &domain.Cart{UserID: userID, Lines: lines}, nil
	})
	if err != nil {
		log.Printf("cart load error for user %s: %v", userID, err)
		return &domain.Cart{UserID: userID}, err
	}

	return v.(*domain.Cart), nil
}

// Add puts quantity units of the product in the cart, accumulating into an
// existing line for the same product.
func (s *Service) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.Cart, error) {
	if userID == uuid.Nil {
		return nil, ErrAuthRequired
	}
	if quantity <= 0 {
		quantity = 1
	}

	unlock := s.lockUser(userID)
	defer unlock()

	if err := s.store.AddCartLine(ctx, userID, productID, quantity); err != nil {
		log.Printf("cart add error for user %s: %v", userID, err)
		return nil, err
	}
	return s.reload(ctx, userID)
}

// Remove deletes the product's line. A product not in the cart is a
// successful no-op.
func (s *Service) Remove(ctx context.Context, userID, productID uuid.UUID) (*domain.Cart, error) {
	if userID == uuid.Nil {
		return nil, ErrAuthRequired
	}

	unlock := s.lockUser(userID)
	defer unlock()

	if err := s.store.RemoveCartLine(ctx, userID, productID); err != nil {
		log.Printf("cart remove error for user %s: %v", userID, err)
		return nil, err
	}
	return s.reload(ctx, userID)
}

// UpdateQuantity overwrites the line's quantity. A quantity of zero or less
// removes the line instead of persisting a non-positive value.
func (s *Service) UpdateQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return s.Remove(ctx, userID, productID)
	}
	if userID == uuid.Nil {
		return nil, ErrAuthRequired
	}

	unlock := s.lockUser(userID)
	defer unlock()

	if err := s.store.SetCartLineQuantity(ctx, userID, productID, quantity); err != nil {
		log.Printf("cart update quantity error for user %s: %v", userID, err)
		return nil, err
	}
	return s.reload(ctx, userID)
}

// Clear deletes every line. The post-state is trivially known, so no reload
// round trip is made.
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	if userID == uuid.Nil {
		return nil, ErrAuthRequired
	}

	unlock := s.lockUser(userID)
	defer unlock()

	if _, err := s.store.ClearCartLines(ctx, userID); err != nil {
		log.Printf("cart clear error for user %s: %v", userID, err)
		return nil, err
	}
	return &domain.Cart{UserID: userID}, nil
}

func (s *Service) reload(ctx context.Context, userID uuid.UUID) (*domain.Cart, error) {
	lines, err := s.store.ListCartLines(ctx, userID)
	if err != nil {
		log.Printf("cart reload error for user %s: %v", userID, err)
		return nil, err
	}
	return &domain.Cart{UserID: userID, Lines: lines}, nil
}

// lockUser serializes mutations per user. Lock entries are kept for the
// process lifetime; the per-user footprint is one mutex.
func (s *Service) lockUser(userID uuid.UUID) func() {
	s.mu.Lock()
	l, ok := s.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}
