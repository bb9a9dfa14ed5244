package wishlist

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/storefront-core/internal/cart"
	"github.com/joao-fontenele/storefront-core/internal/domain"
)

type Handler struct {
	repo     Repository
	cartRepo cart.Repository
	logger   *slog.Logger
}

func NewHandler(repo Repository, cartRepo cart.Repository, logger *slog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		cartRepo: cartRepo,
		logger:   logger,
	}
}

type wishlistResponse struct {
	Entries []domain.WishlistEntry `json:"entries"`
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	customerID := customerFrom(r)
	if customerID == "" {
		h.writeError(w, http.StatusBadRequest, "missing customer id")
		return
	}

	wl, err := h.repo.Load(r.Context(), customerID)
	if err != nil {
		h.logger.Error("failed to load wishlist", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, wishlistResponse{Entries: wl.Entries()})
}

type toggleRequest struct {
	Product domain.Product `json:"product"`
}

type toggleResponse struct {
	InWishlist bool                   `json:"in_wishlist"`
	Entries    []domain.WishlistEntry `json:"entries"`
}

func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	customerID := customerFrom(r)
	if customerID == "" {
		h.writeError(w, http.StatusBadRequest, "missing customer id")
		return
	}

	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Product.ProductID == "" {
		h.writeError(w, http.StatusBadRequest, "missing product id")
		return
	}

	wl, err := h.repo.Load(r.Context(), customerID)
	if err != nil {
		h.logger.Error("failed to load wishlist", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	member := wl.Toggle(req.Product)

	if err := h.repo.Save(r.Context(), customerID, wl); err != nil {
		h.logger.Error("failed to save wishlist", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("wishlist toggled", "customer_id", customerID, "product_id", req.Product.ProductID, "in_wishlist", member)
	h.writeJSON(w, http.StatusOK, toggleResponse{InWishlist: member, Entries: wl.Entries()})
}

func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
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

	wl, err := h.repo.Load(r.Context(), customerID)
	if err != nil {
		h.logger.Error("failed to load wishlist", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	wl.Remove(productID)

	if err := h.repo.Save(r.Context(), customerID, wl); err != nil {
		h.logger.Error("failed to save wishlist", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("wishlist entry removed", "customer_id", customerID, "product_id", productID)
	h.writeJSON(w, http.StatusOK, wishlistResponse{Entries: wl.Entries()})
}

// HandleMoveToCart adds the wishlist entry to the cart with quantity 1 and
// leaves the wishlist untouched. Non-destructive by design.
func (h *Handler) HandleMoveToCart(w http.ResponseWriter, r *http.Request) {
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

	wl, err := h.repo.Load(r.Context(), customerID)
	if err != nil {
		h.logger.Error("failed to load wishlist", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	entry, ok := wl.Get(productID)
	if !ok {
		h.writeError(w, http.StatusNotFound, "product not in wishlist")
		return
	}

	c, err := h.cartRepo.Load(r.Context(), customerID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	c.AddItem(domain.Product{
		ProductID: entry.ProductID,
		Name:      entry.Name,
		UnitPrice: entry.UnitPrice,
		ImageRef:  entry.ImageRef,
	}, 1)

	if err := h.cartRepo.Save(r.Context(), customerID, c); err != nil {
		h.logger.Error("failed to save cart", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("wishlist entry moved to cart", "customer_id", customerID, "product_id", productID)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"entries":    wl.Entries(),
		"cart_items": c.Snapshot(),
	})
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
