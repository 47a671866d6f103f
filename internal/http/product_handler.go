package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/repository"
	"github.com/go-chi/chi/v5"
)

// Catalog is the read surface of the product store.
type Catalog interface {
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
}

type ProductHandler struct {
	catalog Catalog
	timeout time.Duration
}

func NewProductHandler(catalog Catalog, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	respondJSON(w, http.StatusOK, categories)
}

func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	filter := repository.ProductFilter{
		CategorySlug: r.URL.Query().Get("category"),
		FeaturedOnly: r.URL.Query().Get("featured") == "true",
		NameQuery:    r.URL.Query().Get("q"),
	}

	products, err := h.catalog.ListProducts(ctx, filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if products == nil {
		products = []*domain.Product{}
	}

	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	slug := chi.URLParam(r, "slug")
	if slug == "" {
		respondError(w, http.StatusBadRequest, "invalid_slug", "product slug required")
		return
	}

	product, err := h.catalog.GetProductBySlug(ctx, slug)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}
