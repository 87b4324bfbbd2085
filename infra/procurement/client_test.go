package procurement

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func TestClientConfirmOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req orderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Qty != 5000 {
			t.Errorf("qty = %d, want 5000", req.Qty)
		}
		if req.IdempotencyKey == "" {
			t.Errorf("missing idempotency key")
		}
		_ = json.NewEncoder(w).Encode(orderResponse{POID: "PO-20260814-101530", Status: "confirmed"})
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	conf, err := c.ConfirmOrder(context.Background(), 5000)
	if err != nil {
		t.Fatalf("ConfirmOrder: %v", err)
	}
	if conf.POID != "PO-20260814-101530" || conf.Status != "confirmed" {
		t.Errorf("confirmation = %+v", conf)
	}
}

func TestClientConfirmOrder_RejectsNonPositiveQty(t *testing.T) {
	c, err := NewClient(Config{URL: "http://localhost:9/orders"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	for _, qty := range []int{0, -10} {
		if _, err := c.ConfirmOrder(context.Background(), qty); err == nil {
			t.Errorf("qty %d: expected error", qty)
		}
	}
}

func TestClientConfirmOrder_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "supplier closed", http.StatusConflict)
	}))
	defer srv.Close()

	c, err := NewClient(Config{URL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.ConfirmOrder(context.Background(), 100); err == nil {
		t.Fatalf("expected error for 409 response")
	}
}

func TestNewClient_RequiresURL(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatalf("expected error for missing url")
	}
}

func TestMockConfirmOrder(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 14, 10, 15, 30, 0, time.UTC))
	m := NewMock().WithClock(clock)

	conf, err := m.ConfirmOrder(context.Background(), 500)
	if err != nil {
		t.Fatalf("ConfirmOrder: %v", err)
	}
	if conf.POID != "PO-20260814-101530" {
		t.Errorf("po id = %q, want PO-20260814-101530", conf.POID)
	}
	if conf.Status != "confirmed" {
		t.Errorf("status = %q", conf.Status)
	}
}
