package email

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Handler delivers transactional email through SendGrid. Without an API
// key it runs in simulation mode, logging the send after a short random
// delay, which is what local compose and the integration tests use.
type Handler struct {
	client      *sendgrid.Client
	fromName    string
	fromAddress string
	logger      *slog.Logger
}

func NewHandler(apiKey, fromName, fromAddress string, logger *slog.Logger) *Handler {
	h := &Handler{
		fromName:    fromName,
		fromAddress: fromAddress,
		logger:      logger,
	}
	if apiKey != "" {
		h.client = sendgrid.NewSendClient(apiKey)
	}
	return h
}

type sendRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type sendResponse struct {
	Status string `json:"status"`
}

func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.To == "" {
		h.writeError(w, http.StatusBadRequest, "missing recipient")
		return
	}

	if err := h.deliver(req); err != nil {
		h.logger.Error("failed to send email", "error", err, "to", req.To)
		h.writeError(w, http.StatusBadGateway, "email delivery failed")
		return
	}

	h.logger.Info("email sent", "to", req.To, "subject", req.Subject)
	h.writeJSON(w, http.StatusOK, sendResponse{Status: "sent"})
}

func (h *Handler) deliver(req sendRequest) error {
	if h.client == nil {
		delay := time.Duration(50+rand.Intn(151)) * time.Millisecond
		time.Sleep(delay)
		return nil
	}

	from := mail.NewEmail(h.fromName, h.fromAddress)
	to := mail.NewEmail("", req.To)
	message := mail.NewSingleEmail(from, req.Subject, to, req.Body, "")

	resp, err := h.client.Send(message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
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
