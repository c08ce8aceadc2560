package httpmw

import (
	"context"
	"net/http"
	"strings"
)

type ctxKey string

const (
	ctxKeyToken  ctxKey = "token"
	ctxKeyUserID ctxKey = "user_id"
)

const HeaderUserID = "X-User-ID"

// Identity picks up an optional Bearer token and X-User-ID. Nothing is
// validated; requests without them pass through anonymously.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") && len(auth) > 7 {
			ctx = context.WithValue(ctx, ctxKeyToken, strings.TrimSpace(auth[7:]))
		}
		if uid := strings.TrimSpace(r.Header.Get(HeaderUserID)); uid != "" {
			ctx = context.WithValue(ctx, ctxKeyUserID, uid)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func UserIDFromCtx(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyUserID).(string)
	return v
}

func TokenFromCtx(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyToken).(string)
	return v
}
