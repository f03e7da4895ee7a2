// Package requestid tags each request with an id for log correlation.
package requestid

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Header carries the id in both directions.
const Header = "X-Request-ID"

type ctxKey struct{}

// Middleware reuses a well-formed incoming X-Request-ID or mints a new one,
// stores it in the context, and echoes it on the response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// FromContext returns the request id, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Logger returns log annotated with the request id when one is present.
func Logger(ctx context.Context, log *zap.Logger) *zap.Logger {
	if id := FromContext(ctx); id != "" {
		return log.With(zap.String("request_id", id))
	}
	return log
}
