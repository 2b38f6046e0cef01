package httpapi

import (
	"context"
	"net/http"

	"huddle/auth"
)

type contextKey int

const userIDKey contextKey = iota

// userID returns the authenticated caller placed by requireAuth. The empty
// string never reaches a handler behind the middleware.
func userID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// requireAuth verifies the bearer credential before the handler runs.
// Handlers behind it read the caller from the request context and never
// touch the token themselves.
func requireAuth(verifier auth.Verifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := verifier.Verify(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	})
}
