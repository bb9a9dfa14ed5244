package checkout

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/joao-fontenele/storefront-core/internal/cart"
	"github.com/joao-fontenele/storefront-core/internal/domain"
	"github.com/joao-fontenele/storefront-core/internal/pricing"
)

var meter = otel.Meter("checkout")

type Handler struct {
	cartRepo  cart.Repository
	client    *Client
	dataStore DataStore
	logger    *slog.Logger
	submitted metric.Int64Counter
}

func NewHandler(cartRepo cart.Repository, client *Client, dataStore DataStore, logger *slog.Logger) *Handler {
	submitted, err := meter.Int64Counter("checkout.orders.submitted",
		metric.WithDescription("Orders submitted through checkout, by payment method and outcome"),
	)
	if err != nil {
		logger.Error("failed to create checkout counter", "error", err)
	}

	return &Handler{
		cartRepo:  cartRepo,
		client:    client,
		dataStore: dataStore,
		logger:    logger,
		submitted: submitted,
	}
}

type checkoutRequest struct {
	Customer        domain.Customer        `json:"customer"`
	ShippingAddress domain.ShippingAddress `json:"shipping_address"`
	PaymentMethod   string                 `json:"payment_method"`
	PromoCode       string                 `json:"promo_code,omitempty"`
}

type checkoutResponse struct {
	Success    bool          `json:"success"`
	Order      *domain.Order `json:"order,omitempty"`
	PromoError string        `json:"promo_error,omitempty"`
	Error      string        `json:"error,omitempty"`
}

// HandleSubmit runs the whole checkout: snapshot the cart, assemble the
// order, submit it to the orders service and clear the cart only after the
// gateway confirms. A failed submission leaves the cart exactly as it was.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	customerID := customerFrom(r)
	if customerID == "" {
		h.writeError(w, http.StatusBadRequest, "missing customer id")
		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	method, err := domain.NormalizePaymentMethod(req.PaymentMethod)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var promoError string
	var promo *domain.PromoCode
	if req.PromoCode != "" {
		promo, err = pricing.LookupPromo(req.PromoCode)
		if errors.Is(err, pricing.ErrInvalidPromoCode) {
			// Invalid codes are not fatal: checkout proceeds without the
			// promo and the caller is told why.
			promoError = "invalid promo code"
			promo = nil
		}
	}

	c, err := h.cartRepo.Load(r.Context(), customerID)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	order, err := Assemble(c.Snapshot(), req.Customer, req.ShippingAddress, method, promo)
	if err != nil {
		h.recordSubmission(r, method, "rejected")
		var validationErr *ValidationError
		switch {
		case errors.Is(err, ErrEmptyCart):
			h.writeError(w, http.StatusConflict, "cart is empty")
		case errors.As(err, &validationErr):
			h.writeError(w, http.StatusBadRequest, validationErr.Error())
		default:
			h.logger.Error("failed to assemble order", "error", err, "customer_id", customerID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	stored, err := h.client.Submit(r.Context(), order)
	if err != nil {
		// Cart intentionally untouched: the customer retries without
		// re-entering items.
		h.recordSubmission(r, method, "gateway_error")
		h.logger.Error("order submission failed", "error", err, "order_id", order.ID, "customer_id", customerID)
		h.writeJSON(w, http.StatusBadGateway, checkoutResponse{Error: err.Error(), PromoError: promoError})
		return
	}

	if err := h.dataStore.SaveBundle(r.Context(), customerID, Bundle{
		Customer:        req.Customer,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   method,
		SubmittedAt:     time.Now().UTC(),
	}); err != nil {
		h.logger.Error("failed to save checkout data", "error", err, "customer_id", customerID)
	}

	if err := h.cartRepo.Clear(r.Context(), customerID); err != nil {
		h.logger.Error("failed to clear cart after checkout", "error", err, "customer_id", customerID, "order_id", stored.ID)
	}

	h.recordSubmission(r, method, "success")
	h.logger.Info("order submitted", "order_id", stored.ID, "customer_id", customerID, "payment_method", method, "total", stored.Breakdown.Total)
	h.writeJSON(w, http.StatusCreated, checkoutResponse{Success: true, Order: stored, PromoError: promoError})
}

func (h *Handler) HandleGetData(w http.ResponseWriter, r *http.Request) {
	customerID := customerFrom(r)
	if customerID == "" {
		h.writeError(w, http.StatusBadRequest, "missing customer id")
		return
	}

	bundle, err := h.dataStore.LoadBundle(r.Context(), customerID)
	if errors.Is(err, ErrNoData) {
		h.writeError(w, http.StatusNotFound, "no checkout data")
		return
	}
	if err != nil {
		h.logger.Error("failed to load checkout data", "error", err, "customer_id", customerID)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.writeJSON(w, http.StatusOK, bundle)
}

func (h *Handler) recordSubmission(r *http.Request, method domain.PaymentMethod, outcome string) {
	if h.submitted == nil {
		return
	}
	h.submitted.Add(r.Context(), 1, metric.WithAttributes(
		attribute.String("payment.method", string(method)),
		attribute.String("outcome", outcome),
	))
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
