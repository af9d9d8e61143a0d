package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"supplychainx.org/internal/apperr"
	"supplychainx.org/internal/auth"
	"supplychainx.org/internal/obs"
)

const (
	authHeader = "Authorization"
	bearer     = "Bearer "
)

// withAuth authenticates every non-public request and applies the role
// matrix. Paths the matrix does not cover only need a valid token.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || auth.IsPublic(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		token, err := extractBearerToken(r.Header.Get(authHeader))
		if err != nil {
			a.securityEvent(r, "authentication rejected", err)
			writeError(w, r, apperr.Unauthorizedf("%s", err.Error()))
			return
		}
		principal, err := a.auth.Authenticate(token)
		if err != nil {
			a.securityEvent(r, "authentication rejected", err)
			writeError(w, r, err)
			return
		}
		annotate(r, func(l *requestLog) {
			l.userID = principal.UserID
			l.role = string(principal.Role)
		})

		if auth.Authorize(principal.Role, r.Method, r.URL.Path) == auth.Deny {
			err := apperr.AccessDeniedf("access denied: role %s may not %s %s", principal.Role, r.Method, r.URL.Path)
			a.securityEvent(r, "authorization denied", err)
			writeError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithPrincipal(r.Context(), principal)))
	})
}

func (a *API) securityEvent(r *http.Request, msg string, err error) {
	obs.Logger().Warn(msg,
		zap.String("log_type", logTypeSecurity),
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("remote_ip", clientIP(r)),
		zap.Error(err),
	)
}

func extractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("missing bearer token")
	}
	if !strings.HasPrefix(strings.ToLower(header), strings.ToLower(bearer)) {
		return "", errors.New("invalid authorization scheme")
	}
	token := strings.TrimSpace(header[len(bearer):])
	if token == "" {
		return "", errors.New("missing bearer token")
	}
	return token, nil
}
