package httpmw

import (
	"context"
	"net/http"
)

type Toucher interface {
	Touch(ctx context.Context, userID string)
}

// Touch marks the caller as recently seen when the request carries a user id.
func Touch(t Toucher) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if userID := UserIDFromCtx(r.Context()); userID != "" {
				t.Touch(r.Context(), userID)
			}
			next.ServeHTTP(w, r)
		})
	}
}
