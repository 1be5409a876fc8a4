package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"foodlink-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const actorKey contextKey = "actor"

// AuthMiddleware verifies the bearer token and attaches the
// authenticated actor to the request context. Token issuance happens
// in the identity service; the claims of a token that verifies against
// the shared secret are trusted verbatim.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
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

			actor, err := ParseActorToken(parts[1], secret)
			if err != nil {
				respondError(w, "Invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole rejects requests whose actor does not carry the given
// role. Must run after AuthMiddleware.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := GetActor(r.Context())
			if actor.Role != role {
				respondError(w, "Access denied", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetActor extracts the authenticated actor from context.
func GetActor(ctx context.Context) models.Actor {
	actor, ok := ctx.Value(actorKey).(models.Actor)
	if !ok {
		return models.Actor{}
	}
	return actor
}

// ParseActorToken validates an HS256 token and reads the actor id and
// role claims.
func ParseActorToken(tokenString, secret string) (models.Actor, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return models.Actor{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return models.Actor{}, fmt.Errorf("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return models.Actor{}, fmt.Errorf("invalid token claims")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return models.Actor{}, fmt.Errorf("sub not found in token")
	}

	roleClaim, ok := claims["role"].(string)
	if !ok {
		return models.Actor{}, fmt.Errorf("role not found in token")
	}
	role := models.Role(roleClaim)
	if role != models.RoleDonor && role != models.RoleVolunteer {
		return models.Actor{}, fmt.Errorf("unknown role %q", roleClaim)
	}

	return models.Actor{ID: sub, Role: role}, nil
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
