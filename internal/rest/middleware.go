package rest

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sanLimbu/taskboard-api/internal"
)

// CookieName is the cookie holding the token set after signing in.
const CookieName = "jwt"

type ctxKey int

const userKey ctxKey = 0

// Authenticator resolves the user behind a token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (internal.User, error)
}

// Authenticate rejects requests without a valid token, the token is read from the Authorization
// header and then from the cookie.
func Authenticate(svc Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromRequest(r)
			if token == "" {
				renderErrorResponse(r.Context(), w, logger, "missing token",
					internal.NewErrorf(internal.ErrorCodeUnauthenticated, "not authorized"))

				return
			}

			user, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				renderErrorResponse(r.Context(), w, logger, "authenticate failed", err)

				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
		})
	}
}

// UserFromContext returns the authenticated user.
func UserFromContext(ctx context.Context) (internal.User, bool) {
	user, ok := ctx.Value(userKey).(internal.User)

	return user, ok
}

func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}

	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}

	return ""
}
