package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/vendora/gatekeeper/pkg/contextkeys"
	"github.com/vendora/gatekeeper/pkg/observability"
)

// RequestIDHeader carries the request id on responses and is honored on
// requests so an upstream proxy's id survives.
const RequestIDHeader = "X-Request-ID"

// RequestID tags every request with an id and a request-scoped logger.
type RequestID struct {
	log *observability.Logger
}

// NewRequestID creates the request-id middleware.
func NewRequestID(log *observability.Logger) *RequestID {
	if log == nil {
		log = observability.NopLogger()
	}
	return &RequestID{log: log}
}

// Handler wraps an HTTP handler with request-id plumbing.
func (m *RequestID) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := contextkeys.WithRequestID(r.Context(), id)
		ctx = contextkeys.WithLogger(ctx, m.log.WithField("request_id", id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
