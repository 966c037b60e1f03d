package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/application/messaging"
)

const HeaderXRequestID = "X-Request-Id"

// RequestID echoes or mints X-Request-Id and stores it in context, where outbox
// envelopes pick it up as their trace id.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(HeaderXRequestID)
		if reqID == "" || len(reqID) > 128 {
			reqID = uuid.NewString()
		}

		w.Header().Set(HeaderXRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(messaging.WithRequestID(r.Context(), reqID)))
	})
}
