package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/vostok-trade/backend/internal/models"
	"github.com/vostok-trade/backend/internal/respond"
)

// ProductStore defines the catalog persistence the handlers need.
type ProductStore interface {
	List(ctx context.Context) ([]models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	ReplaceAll(ctx context.Context, products []models.Product) (int, error)
}

// Handler holds product and price-list HTTP handlers.
type Handler struct {
	products      ProductStore
	priceListPath string
}

func NewHandler(products ProductStore, priceListPath string) *Handler {
	return &Handler{products: products, priceListPath: priceListPath}
}

// List returns the whole catalog.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list products", "error", err)
		respond.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	respond.JSON(w, http.StatusOK, products)
}

// Create stores a product from the request body.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ProductInput
	if err := respond.Decode(r, &in); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p := in.Product()
	if p.Title == "" {
		slog.WarnContext(r.Context(), "create product without title")
		respond.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	if err := h.products.Create(r.Context(), &p); err != nil {
		slog.ErrorContext(r.Context(), "create product", "error", err)
		respond.Error(w, http.StatusInternalServerError, "Server error")
		return
	}
	respond.JSON(w, http.StatusCreated, p)
}

// ImportPriceList replaces the catalog with the server-side spreadsheet.
func (h *Handler) ImportPriceList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	count, err := h.importFile(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "import price list", "path", h.priceListPath, "error", err)
		respond.Message(w, http.StatusInternalServerError, err.Error())
		return
	}
	slog.InfoContext(ctx, "price list imported", "path", h.priceListPath, "count", count)
	respond.JSON(w, http.StatusOK, map[string]interface{}{
		"message": "Price list updated",
		"count":   count,
	})
}

func (h *Handler) importFile(ctx context.Context) (int, error) {
	f, err := os.Open(h.priceListPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	products, err := ParsePriceList(f)
	if err != nil {
		return 0, err
	}
	return h.products.ReplaceAll(ctx, products)
}
