package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sendico/apiserver/internal/auth"
)

// APITokenHeader carries a bare access token. It is checked before the
// Authorization header.
const APITokenHeader = "X-API-Token"

// TokenVerifier validates access tokens. *auth.TokenIssuer satisfies it.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, bool)
}

// RequireAuth rejects requests without a valid token and stores the caller
// identity in the request context.
func RequireAuth(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := credential(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, ok := tokens.Verify(tokenString)
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := withIdentity(r.Context(), auth.IdentityFromClaims(claims))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identityFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if !id.IsAdmin {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func credential(r *http.Request) (string, error) {
	if token := strings.TrimSpace(r.Header.Get(APITokenHeader)); token != "" {
		return token, nil
	}
	return bearerToken(r)
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
