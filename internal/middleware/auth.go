package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"photo-vault-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const viewerKey contextKey = "viewer"

// TokenVerifier resolves a bearer credential into the viewer identity.
// Identity lives with an external provider; this only verifies the
// signed claims it handed out.
type TokenVerifier struct {
	secret string
}

// NewTokenVerifier creates a verifier for HS256 tokens signed with secret.
func NewTokenVerifier(secret string) *TokenVerifier {
	return &TokenVerifier{secret: secret}
}

// Verify validates a token and returns the viewer it identifies.
func (v *TokenVerifier) Verify(tokenString string) (models.Viewer, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.secret), nil
	})
	if err != nil {
		return models.Viewer{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return models.Viewer{}, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Viewer{}, fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return models.Viewer{}, fmt.Errorf("user_id not found in token")
	}
	email, _ := claims["email"].(string)

	return models.Viewer{ID: userID, Email: email}, nil
}

// AuthMiddleware creates a middleware that requires a valid bearer token
// and places the resolved viewer in the request context.
func AuthMiddleware(verifier *TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			viewer, err := verifier.Verify(parts[1])
			if err != nil {
				respondError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), viewerKey, viewer)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetViewer extracts the authenticated viewer from the request context.
func GetViewer(ctx context.Context) models.Viewer {
	viewer, ok := ctx.Value(viewerKey).(models.Viewer)
	if !ok {
		return models.Viewer{}
	}
	return viewer
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
