package cart

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/storefront-core/internal/domain"
	"github.com/joao-fontenele/storefront-core/internal/pricing"
)

type Handler struct {
	repo   Repository
	logger *slog.Logger
}

func NewHandler(repo Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: logger,
	}
}

// cartResponse is returned by every cart endpoint: the breakdown is
// recomputed on each read and mutation, never stored.
type cartResponse struct {
	Items      []domain.LineItem     `json:"items"`
	Breakdown  domain.PriceBreakdown `json:"breakdown"`
	PromoError string                `json:"promo_error,omitempty"`
}

func (h *Handler) respond(w http.ResponseWriter, status int, c *Cart, promoCode string) {
	resp := cartResponse{Items: c.Snapshot()}

	var promo *domain.PromoCode
	if promoCode != "" {
		var err error
		promo, err = pricing.LookupPromo(promoCode)
		if err != nil {
			resp.PromoError = "invalid promo code"
			promo = nil
		}
	}

	resp.Breakdown = pricing.ComputeBreakdown(resp.Items, promo).Rounded()
	h.writeJSON(w, status, resp)
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	customerID := customerFrom(r)
	if customerID == "" {
		h.writeError(w, http.StatusBadRequest, "missing customer id")
		return
	}

	c, err := h.repo.Load(r.Context(), customerID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.respond(w, http.StatusOK, c, r.URL.Query().Get("promo"))
}

type addItemRequest struct {
	Product  domain.Product `json:"product"`
	Quantity int            `json:"quantity"`
}

func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	customerID := customerFrom(r)
	if customerID == "" {
		h.writeError(w, http.StatusBadRequest, "missing customer id")
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Product.ProductID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}
	if req.Product.UnitPrice.IsNegative() {
		h.writeError(w, http.StatusBadRequest, "unit price must not be negative")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	c, err := h.repo.Load(r.Context(), customerID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	c.AddItem(req.Product, req.Quantity)

	if err := h.repo.Save(r.Context(), customerID, c); err != nil {
		h.logger.Error("failed to save cart", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("item added to cart", "customer_id", customerID, "product_id", req.Product.ProductID, "quantity", req.Quantity)
	h.respond(w, http.StatusOK, c, "")
}

type setQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) HandleSetQuantity(w http.ResponseWriter, r *http.Request) {
	customerID := customerFrom(r)
	if customerID == "" {
		h.writeError(w, http.StatusBadRequest, "missing customer id")
		return
	}

	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.repo.Load(r.Context(), customerID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := c.SetQuantity(productID, req.Quantity); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "product not in cart")
			return
		}
		h.logger.Error("failed to set quantity", "error", err, "customer_id", customerID, "product_id", productID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.repo.Save(r.Context(), customerID, c); err != nil {
		h.logger.Error("failed to save cart", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("cart quantity updated", "customer_id", customerID, "product_id", productID, "quantity", req.Quantity)
	h.respond(w, http.StatusOK, c, "")
}

func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	customerID := customerFrom(r)
	if customerID == "" {
		h.writeError(w, http.StatusBadRequest, "missing customer id")
		return
	}

	productID := r.PathValue("productId")
	if productID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	c, err := h.repo.Load(r.Context(), customerID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	c.RemoveItem(productID)

	if err := h.repo.Save(r.Context(), customerID, c); err != nil {
		h.logger.Error("failed to save cart", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("item removed from cart", "customer_id", customerID, "product_id", productID)
	h.respond(w, http.StatusOK, c, "")
}

func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	customerID := customerFrom(r)
	if customerID == "" {
		h.writeError(w, http.StatusBadRequest, "missing customer id")
		return
	}

	if err := h.repo.Clear(r.Context(), customerID); err != nil {
		h.logger.Error("failed to clear cart", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("cart cleared", "customer_id", customerID)
	h.respond(w, http.StatusOK, New(), "")
}

func customerFrom(r *http.Request) string {
	return r.Header.Get("X-Customer-ID")
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
