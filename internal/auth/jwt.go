// Package auth provides single-user JWT authentication for the HTTP API.
// Credentials come from configuration; there is no user database.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/models"
)

var (
	jwtSecret    []byte
	tokenTTL     time.Duration
	username     string
	passwordHash string
)

// openPaths are reachable without a token.
var openPaths = map[string]bool{
	"/health":    true,
	"/api/login": true,
}

// Init stores the auth configuration. The JWT secret is mandatory; services
// that want an open API should not wrap their router in JWTMiddleware.
func Init(cfg models.AuthConfig) error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("auth: jwt_secret is required")
	}
	if cfg.Username == "" || cfg.PasswordHash == "" {
		return fmt.Errorf("auth: username and password_hash are required")
	}
	hours := cfg.TokenHours
	if hours <= 0 {
		hours = 24
	}
	jwtSecret = []byte(cfg.JWTSecret)
	tokenTTL = time.Duration(hours) * time.Hour
	username = cfg.Username
	passwordHash = cfg.PasswordHash
	return nil
}

// Claims is the JWT payload issued at login.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateToken signs a token for an authenticated user.
func GenerateToken(user string) (string, error) {
	now := time.Now()
	claims := Claims{
		Username: user,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

type contextKey struct{}

// JWTMiddleware rejects requests without a valid Bearer token, except on the
// login and health endpoints.
func JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if openPaths[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, claims)))
	})
}

// GetClaims returns the claims JWTMiddleware attached to the request.
func GetClaims(r *http.Request) (*Claims, bool) {
	claims, ok := r.Context().Value(contextKey{}).(*Claims)
	return claims, ok
}
