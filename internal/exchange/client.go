// Package exchange talks to the external swap venue. The venue is an
// opaque asynchronous service: Dispatch hands it a request and returns
// without knowing the outcome; the venue later posts a resolution back
// to the service's callback endpoint.
package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/stellarnova/limitd/internal/domain"
)

// Dispatcher issues swap requests to the venue.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *domain.SwapRequest) error
}

// Client is the HTTP Dispatcher implementation.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client posting to baseURL with the given timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// swapRequestPayload is the wire form of a swap request. Amounts are
// decimal strings; they can exceed 64 bits.
type swapRequestPayload struct {
	RequestID    string `json:"request_id"`
	OrderID      uint64 `json:"order_id"`
	FromAsset    string `json:"from_asset"`
	FromAmount   string `json:"from_amount"`
	ToAsset      string `json:"to_asset"`
	MinAmountOut string `json:"min_amount_out"`
}

// Dispatch posts the swap request to the venue. A non-2xx response is
// an error; the caller decides whether to abort the attempt. A 2xx
// response only acknowledges receipt — the swap outcome arrives later
// through the resolution callback.
func (c *Client) Dispatch(ctx context.Context, req *domain.SwapRequest) error {
	payload := swapRequestPayload{
		RequestID:    req.RequestID,
		OrderID:      req.OrderID,
		FromAsset:    req.FromAsset,
		FromAmount:   req.FromAmount.String(),
		ToAsset:      req.ToAsset,
		MinAmountOut: req.MinAmountOut.String(),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode swap request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/swaps", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build swap request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Request-Id", req.RequestID)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("dispatch swap request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("venue rejected swap request: status %d", resp.StatusCode)
	}
	return nil
}
