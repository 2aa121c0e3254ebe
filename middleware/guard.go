package middleware

import (
	"context"
	"net/http"
	"strings"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/cookie"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the access claims Guard attached to ctx.
func ClaimsFromContext(ctx context.Context) (*goSession.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*goSession.AccessClaims)
	return claims, ok && claims != nil
}

// WithClaims attaches claims to ctx the way Guard does.
func WithClaims(ctx context.Context, claims *goSession.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey{}, claims)
}

// Guard rejects requests without a valid access token. The token is taken
// from the Authorization bearer header, or else from the access cookie.
func Guard(engine *goSession.Engine) func(http.Handler) http.Handler {
	accessCookie := ""
	if engine != nil {
		accessCookie = engine.Config().Cookie.AccessName
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				token, ok = cookie.Value(r, accessCookie)
			}
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := engine.ValidateAccess(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}
	return token, true
}
