package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riskibarqy/clublocker/internal/platform/id"
)

func TestRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestIDFromContext(r.Context())
	})
	handler := RequestID(id.NewRandomGenerator(), next)

	t.Run("keeps caller id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/v1/summary", nil)
		req.Header.Set(requestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if seen != "abc-123" || rec.Header().Get(requestIDHeader) != "abc-123" {
			t.Fatalf("expected caller id to be kept, ctx=%q header=%q", seen, rec.Header().Get(requestIDHeader))
		}
	})

	t.Run("mints id when missing or oversized", func(t *testing.T) {
		for _, supplied := range []string{"", strings.Repeat("x", maxRequestIDLength+1)} {
			req := httptest.NewRequest(http.MethodGet, "/v1/summary", nil)
			req.Header.Set(requestIDHeader, supplied)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if len(seen) != 32 || rec.Header().Get(requestIDHeader) != seen {
				t.Fatalf("expected minted id, ctx=%q header=%q", seen, rec.Header().Get(requestIDHeader))
			}
		}
	})
}
