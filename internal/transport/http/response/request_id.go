package response

import (
	"net/http"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/messaging"
)

// RequestIDFromRequest prefers the id the RequestID middleware put in context,
// then falls back to the inbound header.
func RequestIDFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if v := messaging.TraceIDFromContext(r.Context()); v != "" {
		return v
	}
	if v := r.Header.Get("X-Request-Id"); v != "" {
		return v
	}
	return r.Header.Get("X-Request-ID")
}
