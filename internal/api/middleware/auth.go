package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"wconnect-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
	}
}

// RequireAuth validates the bearer token and sets user_id on the context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "authorization header is required",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		am.authenticate(c, tokenString)
	}
}

// RequireAuthQuery validates a token passed as ?token=. Browsers cannot set
// headers on a WebSocket upgrade request, so the socket route uses this.
func (am *AuthMiddleware) RequireAuthQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "token query parameter is required",
			})
			c.Abort()
			return
		}
		am.authenticate(c, tokenString)
	}
}

func (am *AuthMiddleware) authenticate(c *gin.Context, tokenString string) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(am.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Code:    http.StatusUnauthorized,
			Message: "invalid token",
		})
		c.Abort()
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Code:    http.StatusUnauthorized,
			Message: "invalid token claims",
		})
		c.Abort()
		return
	}

	userID, ok := claims["user_id"].(float64)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Code:    http.StatusUnauthorized,
			Message: "invalid user id in token",
		})
		c.Abort()
		return
	}

	c.Set("user_id", uint(userID))
	if email, ok := claims["email"].(string); ok {
		c.Set("email", email)
	}
	c.Next()
}

// SignToken issues a token for the given user. Used by the seed tooling; a
// production deployment gets its tokens from the auth collaborator.
func SignToken(jwtSecret string, userID uint, email string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": float64(userID),
		"email":   email,
		"exp":     time.Now().Add(ttl).Unix(),
		"iat":     time.Now().Unix(),
	})
	return token.SignedString([]byte(jwtSecret))
}

// UserID reads the authenticated user id set by RequireAuth.
func UserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
