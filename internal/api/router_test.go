package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/tradesapi/internal/service"
	"github.com/guttosm/tradesapi/internal/storage"
)

func newTestRouter(rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := storage.NewStore(storage.NewMemoryBackend(), storage.WithErrorHook(func(string, string, error) {}))
	return NewRouter(NewHandler(service.NewTradeService(store)), rps, burst)
}

func TestNewRouter_WiringAndMiddlewares(t *testing.T) {
	r := newTestRouter(0, 0)

	w := do(r, http.MethodGet, "/trades", "")
	if w.Code != http.StatusOK || w.Body.String() != `{"trades":[]}` {
		t.Fatalf("unexpected list response %d %s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}

// Walks the acceptance flow end to end through the full middleware chain.
func TestNewRouter_TradeLifecycle(t *testing.T) {
	r := newTestRouter(0, 0)

	steps := []struct {
		method, path, body string
		status             int
		contains           string
	}{
		{http.MethodGet, "/trades/999", "", http.StatusNotFound, `"Trade not found"`},
		{http.MethodPost, "/trades", `{"type":"buy","user_id":1,"symbol":"ACME","shares":15,"price":10.5}`, http.StatusCreated, `"id":1`},
		{http.MethodPost, "/trades", `{"type":"sell","user_id":2,"symbol":"ACME","shares":20,"price":11}`, http.StatusCreated, `"id":2`},
		{http.MethodPatch, "/trades/1", `{"price":"abc"}`, http.StatusBadRequest, `"Invalid price data"`},
		{http.MethodPatch, "/trades/1", `{"price":12}`, http.StatusOK, `"price":12`},
		{http.MethodDelete, "/trades/2", "", http.StatusNoContent, ""},
		{http.MethodDelete, "/trades/2", "", http.StatusNoContent, ""},
		{http.MethodGet, "/trades/2", "", http.StatusNotFound, `"Trade not found"`},
		{http.MethodGet, "/trades", "", http.StatusOK, `"price":12`},
	}
	for i, s := range steps {
		w := do(r, s.method, s.path, s.body)
		if w.Code != s.status {
			t.Fatalf("step %d %s %s: expected %d, got %d body=%s", i, s.method, s.path, s.status, w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), s.contains) {
			t.Fatalf("step %d: body %s lacks %s", i, w.Body.String(), s.contains)
		}
	}
}

func TestNewRouter_RateLimited(t *testing.T) {
	r := newTestRouter(1, 2)
	var last int
	for i := 0; i < 4; i++ {
		last = do(r, http.MethodGet, "/trades", "").Code
	}
	if last != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", last)
	}
}
