package rest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	headers := map[string]string{idempotencyKeyHeader: "key-1"}

	first := doRequest(t, router, http.MethodPost, "/api/orders", placeOrderBody(), headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("unexpected first status: got=%d body=%s", first.Code, first.Body.String())
	}
	placed := decodeOrder(t, first)

	second := doRequest(t, router, http.MethodPost, "/api/orders", placeOrderBody(), headers)
	if second.Code != http.StatusCreated {
		t.Fatalf("unexpected replay status: got=%d body=%s", second.Code, second.Body.String())
	}
	replayed := decodeOrder(t, second)
	if replayed.OrderID != placed.OrderID {
		t.Fatalf("expected replayed order %s, got %s", placed.OrderID, replayed.OrderID)
	}

	// Повтор не должен создать второй заказ.
	list := doRequest(t, router, http.MethodGet, "/api/orders", nil, nil)
	if body := list.Body.String(); len(body) == 0 {
		t.Fatal("expected non-empty list response")
	}
	var count int
	for _, order := range decodeOrders(t, list.Body.Bytes()) {
		if order.OrderID == placed.OrderID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one stored order, got %d", count)
	}
}

func TestIdempotencyMiddleware_HashMismatch(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	headers := map[string]string{idempotencyKeyHeader: "key-2"}

	first := doRequest(t, router, http.MethodPost, "/api/orders", placeOrderBody(), headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("unexpected first status: got=%d", first.Code)
	}

	other := placeOrderBody()
	other["customer_name"] = "Bob"

	second := doRequest(t, router, http.MethodPost, "/api/orders", other, headers)
	if second.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key with different payload, got %d", second.Code)
	}
}

func TestIdempotencyMiddleware_StoresFailedResponse(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)
	headers := map[string]string{idempotencyKeyHeader: "key-3"}

	body := placeOrderBody()
	body["customer_name"] = ""

	first := doRequest(t, router, http.MethodPost, "/api/orders", body, headers)
	if first.Code != http.StatusBadRequest {
		t.Fatalf("unexpected first status: got=%d", first.Code)
	}

	second := doRequest(t, router, http.MethodPost, "/api/orders", body, headers)
	if second.Code != http.StatusBadRequest {
		t.Fatalf("expected replayed 400, got %d", second.Code)
	}
}

func TestIdempotencyMiddleware_PassThroughWithoutKey(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t)

	first := doRequest(t, router, http.MethodPost, "/api/orders", placeOrderBody(), nil)
	second := doRequest(t, router, http.MethodPost, "/api/orders", placeOrderBody(), nil)
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("unexpected statuses: %d, %d", first.Code, second.Code)
	}

	firstOrder := decodeOrder(t, first)
	secondOrder := decodeOrder(t, second)
	if firstOrder.OrderID == secondOrder.OrderID {
		t.Fatal("expected two distinct orders without idempotency key")
	}
}

func TestHashRequest(t *testing.T) {
	t.Parallel()

	base := hashRequest(http.MethodPost, "/api/orders", []byte(`{"a":1}`))
	if base == "" {
		t.Fatal("expected non-empty hash")
	}
	if got := hashRequest(http.MethodPost, "/api/orders", []byte(`{"a":1}`)); got != base {
		t.Fatal("expected deterministic hash")
	}
	if got := hashRequest(http.MethodPost, "/api/orders", []byte(`{"a":2}`)); got == base {
		t.Fatal("expected different hash for different body")
	}
	if got := hashRequest(http.MethodPut, "/api/orders", []byte(`{"a":1}`)); got == base {
		t.Fatal("expected different hash for different method")
	}
}

func TestIdempotencyMiddleware_NilRepoPassesThrough(t *testing.T) {
	t.Parallel()

	calls := 0
	wrapped := NewIdempotencyMiddleware(nil, nil).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/orders", strings.NewReader("{}"))
	req.Header.Set(idempotencyKeyHeader, "key-4")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	if calls != 1 {
		t.Fatalf("expected handler to be called once, got %d", calls)
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("unexpected status: got=%d", rec.Code)
	}
}
