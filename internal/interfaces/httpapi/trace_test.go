package httpapi

import (
	"context"
	"testing"
)

func TestShouldCreateHTTPAPISpan(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "handler span", in: "httpapi.Handler.GetSummary", want: true},
		{name: "middleware span", in: "httpapi.RequestLogging", want: false},
		{name: "helper span", in: "httpapi.writeError", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := shouldCreateHTTPAPISpan(tt.in)
			if got != tt.want {
				t.Fatalf("shouldCreateHTTPAPISpan(%q)=%v want=%v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStartSpan_NoParentIsNoop(t *testing.T) {
	ctx := withRequestID(context.Background(), "req-1")
	got, span := startSpan(ctx, "httpapi.Handler.GetSummary")
	defer span.End()

	if span.SpanContext().IsValid() {
		t.Fatalf("expected no-op span without a parent")
	}
	if requestIDFromContext(got) != "req-1" {
		t.Fatalf("expected context to pass through unchanged")
	}
}
