package middleware

import (
	"fmt"
	"strings"
	"time"

	"github.com/dreamshare/dreamshare/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userIDKey   = "user_id"
	usernameKey = "username"
)

type JWTConfig struct {
	Secret string
}

type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func GenerateToken(userID, username, secret string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func parseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// NewJWTAuth rejects requests without a valid bearer token.
func NewJWTAuth(cfg *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			apperrors.Respond(c, apperrors.New(apperrors.CodeUnauthenticated, "authentication required"))
			c.Abort()
			return
		}

		claims, err := parseToken(tokenString, cfg.Secret)
		if err != nil {
			apperrors.Respond(c, apperrors.Wrap(apperrors.CodeUnauthenticated, "invalid or expired token", err))
			c.Abort()
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(usernameKey, claims.Username)
		c.Next()
	}
}

// OptionalJWTAuth sets the caller identity when a valid token is present
// but lets anonymous requests through. Owner-only reads of private
// content need this on otherwise public routes.
func OptionalJWTAuth(cfg *JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if claims, err := parseToken(tokenString, cfg.Secret); err == nil {
				c.Set(userIDKey, claims.UserID)
				c.Set(usernameKey, claims.Username)
			}
		}
		c.Next()
	}
}

func GetUserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func GetUsername(c *gin.Context) string {
	return c.GetString(usernameKey)
}
