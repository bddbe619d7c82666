// Package requestid tags API requests and collector runs with an ID that
// appears in every log line they produce. For HTTP requests the ID is also
// echoed in the X-Request-ID response header.
package requestid

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

// RequestIDHeader is read from requests and written to responses.
const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

// validID limits client supplied IDs to what is safe to log and echo back.
var validID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,128}$`)

// New returns a fresh ID. UUIDv7 sorts by creation time, which keeps
// collector run IDs in chronological order in log searches.
func New() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Middleware keeps a well-formed incoming X-Request-ID and replaces anything
// else with New().
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validID.MatchString(id) {
			id = New()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}
