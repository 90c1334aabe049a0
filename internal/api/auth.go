package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/gray-logic-irclimate/internal/auth"
)

// tokenQueryParam carries the token on WebSocket upgrades, which browsers
// cannot send with an Authorization header.
const tokenQueryParam = "access_token"

// requireScope rejects requests that do not carry a valid bearer token
// granting scope.
func (s *Server) requireScope(scope auth.Scope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" && websocket.IsWebSocketUpgrade(r) {
				raw = r.URL.Query().Get(tokenQueryParam)
			}
			if raw == "" {
				writeUnauthorized(w, "bearer token required")
				return
			}

			claims, err := auth.ParseToken(raw, s.secCfg.JWT.Secret, s.secCfg.JWT.Issuer)
			if err != nil {
				s.logger.Debug("token rejected",
					"path", r.URL.Path,
					"error", err,
					"request_id", r.Context().Value(ctxKeyRequestID),
				)
				writeUnauthorized(w, "invalid or expired token")
				return
			}
			if !claims.Allows(scope) {
				writeForbidden(w, "token does not allow "+string(scope))
				return
			}

			s.logger.Debug("token accepted",
				"subject", claims.Subject,
				"scope", claims.Scope,
				"request_id", r.Context().Value(ctxKeyRequestID),
			)
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken returns the token from an "Authorization: Bearer" header.
func bearerToken(r *http.Request) string {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
