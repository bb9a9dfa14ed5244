package orders

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/joao-fontenele/storefront-core/internal/domain"
	"github.com/joao-fontenele/storefront-core/internal/messaging"
)

type Handler struct {
	repo     *OrderRepository
	producer *messaging.Producer
	logger   *slog.Logger
}

func NewHandler(repo *OrderRepository, producer *messaging.Producer, logger *slog.Logger) *Handler {
	return &Handler{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// orderEnvelope is the response shape for every orders endpoint.
type orderEnvelope struct {
	Success bool           `json:"success"`
	Order   *domain.Order  `json:"order,omitempty"`
	Orders  []domain.Order `json:"orders,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var order domain.Order
	if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(order.Items) == 0 {
		h.writeError(w, http.StatusBadRequest, "order has no items")
		return
	}
	if order.Customer.Email == "" {
		h.writeError(w, http.StatusBadRequest, "missing customer email")
		return
	}
	if order.ShippingAddress.Address == "" {
		h.writeError(w, http.StatusBadRequest, "missing shipping address")
		return
	}
	for _, item := range order.Items {
		if item.Quantity < 1 {
			h.writeError(w, http.StatusBadRequest, "item quantity must be at least 1")
			return
		}
	}

	if order.Status == "" {
		order.Status = domain.OrderStatusPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = domain.InitialPaymentStatus(order.PaymentMethod)
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}

	if err := h.repo.Create(r.Context(), &order); err != nil {
		h.logger.Error("failed to create order", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if h.producer != nil {
		event := domain.OrderCreatedEvent{
			OrderID:       order.ID,
			CustomerEmail: order.Customer.Email,
			Items:         order.Items,
			Total:         order.Breakdown.Total,
			Timestamp:     order.CreatedAt,
		}
		if err := h.producer.Publish(r.Context(), order.ID, event); err != nil {
			h.logger.Error("failed to publish order created event", "error", err, "order_id", order.ID)
		}
	}

	h.logger.Info("order created", "order_id", order.ID, "customer_email", order.Customer.Email, "total", order.Breakdown.Total)
	h.writeJSON(w, http.StatusCreated, orderEnvelope{Success: true, Order: &order})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	order, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get order", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.logger.Info("order retrieved", "order_id", order.ID)
	h.writeJSON(w, http.StatusOK, orderEnvelope{Success: true, Order: order})
}

type updateStatusRequest struct {
	Status domain.OrderStatus `json:"status"`
}

func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "missing order id")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Status {
	case domain.OrderStatusPending, domain.OrderStatusConfirmed, domain.OrderStatusCancelled:
	default:
		h.writeError(w, http.StatusBadRequest, "invalid order status")
		return
	}

	order, err := h.repo.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update order status", "error", err, "id", id)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if order == nil {
		h.writeError(w, http.StatusNotFound, "order not found")
		return
	}

	h.logger.Info("order status updated", "order_id", order.ID, "status", order.Status)
	h.writeJSON(w, http.StatusOK, orderEnvelope{Success: true, Order: order})
}

// HandleList returns all orders, or one customer's orders when the
// customer query parameter is present.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	customerEmail := r.URL.Query().Get("customer")

	orders, err := h.repo.List(r.Context(), customerEmail)
	if err != nil {
		h.logger.Error("failed to list orders", "error", err)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.Info("orders listed", "count", len(orders))
	h.writeJSON(w, http.StatusOK, orderEnvelope{Success: true, Orders: orders})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, orderEnvelope{Success: false, Error: message})
}
