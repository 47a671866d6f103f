package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type OrdersHandler struct {
	checkouts CheckoutService
	timeout   time.Duration
}

func NewOrdersHandler(checkouts CheckoutService, timeout time.Duration) *OrdersHandler {
	return &OrdersHandler{
		checkouts: checkouts,
		timeout:   timeout,
	}
}

func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := requireUser(w, r)
	if user == nil {
		return
	}

	orders, err := h.checkouts.ListOrders(ctx, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if orders == nil {
		orders = []*domain.Order{}
	}

	respondJSON(w, http.StatusOK, orders)
}

func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	user := requireUser(w, r)
	if user == nil {
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order id must be a valid id")
		return
	}

	order, err := h.checkouts.GetOrder(ctx, user.ID, orderID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, order)
}
