package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

// Client submits assembled orders to the orders service. One non-cancelable
// request per submission, awaited to completion; failures surface as
// *GatewayError and are final from the storefront's point of view.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type submitResponse struct {
	Success bool          `json:"success"`
	Order   *domain.Order `json:"order,omitempty"`
	Error   string        `json:"error,omitempty"`
}

func (c *Client) Submit(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	data, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Message: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	var result submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &GatewayError{Message: fmt.Sprintf("orders service returned status %d", resp.StatusCode)}
	}

	if resp.StatusCode != http.StatusCreated || !result.Success || result.Order == nil {
		msg := result.Error
		if msg == "" {
			msg = fmt.Sprintf("orders service returned status %d", resp.StatusCode)
		}
		return nil, &GatewayError{Message: msg}
	}

	return result.Order, nil
}
