package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

// FulfillmentHandler consumes order.created events and settles each order:
// reserve stock for every line item, then confirm and email the customer,
// or release whatever was reserved, cancel the order and email a
// cancellation. There is no retry policy; a handler error stops the
// consumer loop.
type FulfillmentHandler struct {
	emailServiceURL     string
	ordersServiceURL    string
	inventoryServiceURL string
	httpClient          *http.Client
	logger              *slog.Logger
}

func NewFulfillmentHandler(emailServiceURL, ordersServiceURL, inventoryServiceURL string, client *http.Client, logger *slog.Logger) *FulfillmentHandler {
	return &FulfillmentHandler{
		emailServiceURL:     emailServiceURL,
		ordersServiceURL:    ordersServiceURL,
		inventoryServiceURL: inventoryServiceURL,
		httpClient:          client,
		logger:              logger,
	}
}

type reservedLine struct {
	ProductID string
	Quantity  int
}

func (h *FulfillmentHandler) Handle(ctx context.Context, payload []byte) error {
	var event domain.OrderCreatedEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("unmarshal order created event: %w", err)
	}

	h.logger.Info("processing order created event", "order_id", event.OrderID, "customer_email", event.CustomerEmail)

	reserved, err := h.reserveStock(ctx, event)
	if err != nil {
		h.logger.Error("failed to reserve stock", "error", err, "order_id", event.OrderID)

		h.releaseStock(ctx, reserved)

		if err := h.updateOrderStatus(ctx, event.OrderID, domain.OrderStatusCancelled); err != nil {
			h.logger.Error("failed to cancel order", "error", err, "order_id", event.OrderID)
			return fmt.Errorf("cancel order after stock failure: %w", err)
		}

		if err := h.sendCancellationEmail(ctx, event); err != nil {
			h.logger.Error("failed to send cancellation email", "error", err, "order_id", event.OrderID)
			return fmt.Errorf("send cancellation email: %w", err)
		}

		h.logger.Info("order cancelled due to insufficient stock", "order_id", event.OrderID)
		return nil
	}

	if err := h.sendConfirmationEmail(ctx, event); err != nil {
		h.logger.Error("failed to send confirmation email", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("send confirmation email: %w", err)
	}

	if err := h.updateOrderStatus(ctx, event.OrderID, domain.OrderStatusConfirmed); err != nil {
		h.logger.Error("failed to update order status", "error", err, "order_id", event.OrderID)
		return fmt.Errorf("update order status: %w", err)
	}

	h.logger.Info("order fulfillment complete", "order_id", event.OrderID)
	return nil
}

func (h *FulfillmentHandler) reserveStock(ctx context.Context, event domain.OrderCreatedEvent) ([]reservedLine, error) {
	var reserved []reservedLine

	for _, item := range event.Items {
		body := map[string]int{"quantity": item.Quantity}
		data, err := json.Marshal(body)
		if err != nil {
			return reserved, fmt.Errorf("marshal reserve request: %w", err)
		}

		url := fmt.Sprintf("%s/stock/%s/reserve", h.inventoryServiceURL, item.ProductID)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return reserved, fmt.Errorf("create reserve request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.httpClient.Do(req)
		if err != nil {
			return reserved, fmt.Errorf("reserve stock for product %s: %w", item.ProductID, err)
		}
		_ = resp.Body.Close()

		// 404 means the product was never stocked; treated the same as a
		// conflict so the order is cancelled rather than left pending.
		if resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusNotFound {
			return reserved, fmt.Errorf("insufficient stock for product %s", item.ProductID)
		}

		if resp.StatusCode != http.StatusOK {
			return reserved, fmt.Errorf("inventory service returned status %d for product %s", resp.StatusCode, item.ProductID)
		}

		reserved = append(reserved, reservedLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	return reserved, nil
}

func (h *FulfillmentHandler) releaseStock(ctx context.Context, reserved []reservedLine) {
	for _, line := range reserved {
		body := map[string]int{"quantity": line.Quantity}
		data, err := json.Marshal(body)
		if err != nil {
			h.logger.Error("failed to marshal release request", "error", err, "product_id", line.ProductID)
			continue
		}

		url := fmt.Sprintf("%s/stock/%s/release", h.inventoryServiceURL, line.ProductID)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			h.logger.Error("failed to create release request", "error", err, "product_id", line.ProductID)
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.httpClient.Do(req)
		if err != nil {
			h.logger.Error("failed to release stock", "error", err, "product_id", line.ProductID)
			continue
		}
		_ = resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			h.logger.Error("failed to release stock", "status", resp.StatusCode, "product_id", line.ProductID)
		}
	}
}

func (h *FulfillmentHandler) sendConfirmationEmail(ctx context.Context, event domain.OrderCreatedEvent) error {
	body := map[string]string{
		"to":      event.CustomerEmail,
		"subject": "Order Confirmation: " + event.OrderID,
		"body":    fmt.Sprintf("Your order %s has been confirmed. %d items, total %s.", event.OrderID, len(event.Items), event.Total.StringFixed(2)),
	}

	return h.sendEmail(ctx, body)
}

func (h *FulfillmentHandler) sendCancellationEmail(ctx context.Context, event domain.OrderCreatedEvent) error {
	body := map[string]string{
		"to":      event.CustomerEmail,
		"subject": "Order Cancelled: " + event.OrderID,
		"body":    fmt.Sprintf("Your order %s has been cancelled because an item went out of stock. Any captured payment of %s will be refunded.", event.OrderID, event.Total.StringFixed(2)),
	}

	return h.sendEmail(ctx, body)
}

func (h *FulfillmentHandler) sendEmail(ctx context.Context, body map[string]string) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.emailServiceURL+"/send", bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("email service returned status %d", resp.StatusCode)
	}

	return nil
}

func (h *FulfillmentHandler) updateOrderStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	body := map[string]string{
		"status": string(status),
	}

	data, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/orders/%s/status", h.ordersServiceURL, orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("orders service returned status %d", resp.StatusCode)
	}

	return nil
}
