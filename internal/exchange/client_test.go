package exchange

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stellarnova/limitd/internal/domain"
)

func testRequest() *domain.SwapRequest {
	return &domain.SwapRequest{
		RequestID:    "req-1",
		OrderID:      7,
		FromAsset:    "USDC",
		FromAmount:   big.NewInt(1000),
		ToAsset:      "WETH",
		MinAmountOut: big.NewInt(47500),
	}
}

func TestClient_Dispatch(t *testing.T) {
	var got swapRequestPayload
	var gotHeader string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/swaps" {
			t.Errorf("got %s %s, want POST /swaps", r.Method, r.URL.Path)
		}
		gotHeader = r.Header.Get("X-Request-Id")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.Dispatch(context.Background(), testRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotHeader != "req-1" {
		t.Errorf("X-Request-Id = %q, want req-1", gotHeader)
	}
	if got.OrderID != 7 {
		t.Errorf("order_id = %d, want 7", got.OrderID)
	}
	if got.FromAmount != "1000" {
		t.Errorf("from_amount = %q, want %q", got.FromAmount, "1000")
	}
	if got.MinAmountOut != "47500" {
		t.Errorf("min_amount_out = %q, want %q", got.MinAmountOut, "47500")
	}
}

func TestClient_Dispatch_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.Dispatch(context.Background(), testRequest()); err == nil {
		t.Fatal("expected error for non-2xx venue response")
	}
}

func TestClient_Dispatch_ConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, time.Second)
	if err := c.Dispatch(context.Background(), testRequest()); err == nil {
		t.Fatal("expected error for unreachable venue")
	}
}
