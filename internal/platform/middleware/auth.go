package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
)

// Identity is the verified caller attached to the request context by
// RequireAuth. Services read it instead of trusting request bodies.
type Identity struct {
	UserID   int64
	Role     string
	Username string
}

// TokenVerifier validates a bearer credential and returns the identity it
// carries.
type TokenVerifier interface {
	Verify(token string) (*Identity, error)
}

type contextKeyIdentity struct{}

// ContextKeyIdentity is exported for use in handler tests.
var ContextKeyIdentity = contextKeyIdentity{}

// GetIdentity retrieves the authenticated identity from the context.
func GetIdentity(ctx context.Context) (Identity, bool) {
	ident, ok := ctx.Value(ContextKeyIdentity).(Identity)
	return ident, ok
}

// WithIdentity attaches an identity to the context. Used by RequireAuth and
// by tests that exercise handlers directly.
func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, ident)
}

// RequireAuth rejects requests without a verifiable bearer token before any
// handler logic runs. A missing credential is 401; a credential that is
// present but fails signature or expiry checks is 403.
func RequireAuth(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeAuthError(w, http.StatusUnauthorized, "Missing or invalid Authorization header")
				return
			}

			ident, err := verifier.Verify(token)
			if err != nil {
				logger.WarnContext(ctx, "forbidden access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeAuthError(w, http.StatusForbidden, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, *ident)))
		})
	}
}

func writeAuthError(w http.ResponseWriter, status int, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	code := "unauthorized"
	if status == http.StatusForbidden {
		code = "forbidden"
	}
	_, _ = w.Write([]byte(`{"error":"` + code + `","error_description":"` + description + `"}`))
}
