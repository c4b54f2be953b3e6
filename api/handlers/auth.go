package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/agoralive/agora/types"
)

// AuthMiddleware validates JWT bearer tokens. An empty secret disables
// authentication entirely.
type AuthMiddleware struct {
	secret []byte
	logger *zap.Logger
}

// NewAuthMiddleware creates the middleware.
func NewAuthMiddleware(secret string, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	var key []byte
	if secret != "" {
		key = []byte(secret)
	}
	return &AuthMiddleware{secret: key, logger: logger}
}

// Wrap enforces a valid bearer token on next when a secret is set.
func (m *AuthMiddleware) Wrap(next http.Handler) http.Handler {
	if m.secret == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			WriteError(w, types.NewError(types.ErrUnauthorized, "missing bearer token"), m.logger)
			return
		}
		if _, err := jwt.Parse(token, m.keyFunc, jwt.WithValidMethods([]string{"HS256"})); err != nil {
			m.logger.Warn("token rejected", zap.Error(err))
			WriteError(w, types.NewError(types.ErrUnauthorized, "invalid token"), m.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
	}
	return m.secret, nil
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	token := strings.TrimSpace(auth[len(prefix):])
	return token, token != ""
}
