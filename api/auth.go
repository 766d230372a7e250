/*
auth.go - login endpoint and bearer-token middleware

PURPOSE:
  Single-operator authentication: one configured username/password pair
  exchanged for a short-lived HS256 token. When auth is disabled in the
  config every request passes through untouched.

SEE ALSO:
  - config/config.go: AuthConfig (credentials, secret, TTL)
  - server.go: which routes the middleware guards
*/
package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// Login checks the configured credentials and issues a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if req.Username != h.Auth.Username || req.Password != h.Auth.Password {
		h.log.Warn("login rejected", zap.String("username", req.Username))
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   req.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.Auth.TokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.Auth.Secret))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     signed,
		ExpiresAt: now.Add(h.Auth.TokenTTL).UTC().Format(time.RFC3339),
	})
}

// RequireAuth rejects requests without a valid bearer token. It is a
// no-op when auth is disabled.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.Auth.Enabled {
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			writeError(w, http.StatusUnauthorized, "Missing bearer token", nil)
			return
		}

		_, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(h.Auth.Secret), nil
		})
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token", err)
			return
		}

		next.ServeHTTP(w, r)
	})
}
