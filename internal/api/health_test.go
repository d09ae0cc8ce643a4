package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		pingErr bool
		path    string
		want    int
		status  string
	}{
		{name: "healthz ok", pingErr: false, path: "/healthz", want: 200, status: "ok"},
		{name: "healthz ignores backend", pingErr: true, path: "/healthz", want: 200, status: "ok"},
		{name: "readyz ok", pingErr: false, path: "/readyz", want: 200, status: "ready"},
		{name: "readyz degraded", pingErr: true, path: "/readyz", want: 503, status: "degraded"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ping := func(context.Context) error { return nil }
			if tc.pingErr {
				ping = func(context.Context) error { return assertErr{} }
			}

			r := gin.New()
			NewHealthHandler(ping, "file").Register(r)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			r.ServeHTTP(w, req)
			if w.Code != tc.want {
				t.Fatalf("want %d got %d", tc.want, w.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if body["status"] != tc.status {
				t.Fatalf("status %q, want %q", body["status"], tc.status)
			}
		})
	}
}

func TestHealthHandler_NilPingIsReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHealthHandler(nil, "memory").Register(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("want 200 got %d", w.Code)
	}
}

type assertErr struct{}

func (assertErr) Error() string { return "err" }
