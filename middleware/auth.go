package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/Vecinus/vecinus/config"
	"github.com/Vecinus/vecinus/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the JWT claims
type Claims struct {
	Username  string `json:"username"`
	Name      string `json:"name"`
	Community string `json:"community"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken generates a new JWT token for a user
func GenerateToken(user *config.User, cfg *config.AuthConfig) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(cfg.TokenExpireHours) * time.Hour)

	claims := Claims{
		Username:  user.Username,
		Name:      user.Name,
		Community: user.Community,
		Role:      user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// AuthMiddleware validates JWT token and extracts user info
func AuthMiddleware(cfg *config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		tokenString := parts[1]

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		// Store user info in context
		c.Set("username", claims.Username)
		c.Set("name", claims.Name)
		c.Set("community", claims.Community)
		c.Set("role", claims.Role)

		// Propagate identity to the request context so log lines carry it
		ctx := context.WithValue(c.Request.Context(), logger.CommunityKey, claims.Community)
		ctx = context.WithValue(ctx, logger.UsernameKey, claims.Username)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetUsername gets the username from context
func GetUsername(c *gin.Context) string {
	if username, exists := c.Get("username"); exists {
		return username.(string)
	}
	return ""
}

// GetName gets the user's display name from context
func GetName(c *gin.Context) string {
	if name, exists := c.Get("name"); exists {
		return name.(string)
	}
	return ""
}

// GetCommunity gets the community from context
func GetCommunity(c *gin.Context) string {
	if community, exists := c.Get("community"); exists {
		return community.(string)
	}
	return ""
}

// GetRole gets the user role from context
func GetRole(c *gin.Context) string {
	if role, exists := c.Get("role"); exists {
		return role.(string)
	}
	return ""
}

// RequirePresidente aborts with 403 unless the authenticated user holds the
// presidente role. Generating and signing actas is presidente-only.
func RequirePresidente() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != "presidente" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Presidente role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
