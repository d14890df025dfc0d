package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ShipmentPayload is posted to the marketplace platform to acknowledge that
// an order's picked items are on their way.
type ShipmentPayload struct {
	PlatformOrderID string `json:"platform_order_id"`
	RunNumber       int    `json:"run_number"`
	ShippedAt       string `json:"shipped_at"`
}

// ShipmentAck is the platform's reply.
type ShipmentAck struct {
	Accepted  bool   `json:"accepted"`
	Reference string `json:"reference"`
	Message   string `json:"message,omitempty"`
}

// MarketplaceClient talks to the marketplace platform's fulfillment API.
// Failures here never block a store visit — delivery is asynchronous through
// the worker pool behind the circuit breaker.
type MarketplaceClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewMarketplaceClient(baseURL, token string) *MarketplaceClient {
	return &MarketplaceClient{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// AcknowledgeShipment posts one shipment notice to the platform.
func (c *MarketplaceClient) AcknowledgeShipment(ctx context.Context, payload ShipmentPayload) (*ShipmentAck, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marketplace: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/shipments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("marketplace: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marketplace: platform unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("marketplace: platform returned %d", resp.StatusCode)
	}

	var ack ShipmentAck
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil {
		return nil, fmt.Errorf("marketplace: decode response: %w", err)
	}
	return &ack, nil
}
