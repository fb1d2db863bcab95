package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"calendar-service/internal/user"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// Auth middleware supporting static tokens or JWT. JWTs carry the caller's
// identity in "sub" and their role in "role"; static tokens are trusted
// administrator service tokens, which name the acting user in X-User-ID.
func AuthMiddleware(jwtSecret, staticTokens string) gin.HandlerFunc {
	tokens := strings.Split(strings.TrimSpace(staticTokens), ",")
	secret := strings.TrimSpace(jwtSecret)

	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization"})
			return
		}
		parts := strings.Fields(auth)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		tokenStr := parts[1]

		// JWT path
		if secret != "" {
			token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrTokenMalformed
				}
				return []byte(secret), nil
			}, jwt.WithLeeway(5*time.Second))
			if err == nil {
				claims, ok := token.Claims.(jwt.MapClaims)
				if !ok {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
					return
				}
				sub, _ := claims["sub"].(string)
				roleStr, _ := claims["role"].(string)
				role, okRole := user.ParseRole(roleStr)
				if sub == "" || !okRole {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token missing sub or role"})
					return
				}
				c.Set(ctxUserID, sub)
				c.Set(ctxRole, role)
				c.Next()
				return
			}
		}

		// static tokens
		for _, t := range tokens {
			if t != "" && tokenStr == strings.TrimSpace(t) {
				actingUser := c.GetHeader("X-User-ID")
				if actingUser == "" {
					c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "X-User-ID required with service token"})
					return
				}
				c.Set(ctxUserID, actingUser)
				c.Set(ctxRole, user.RoleAdministrator)
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	}
}

// identity returns the authenticated user id and role set by the middleware.
func identity(c *gin.Context) (string, user.Role) {
	id, _ := c.Get(ctxUserID)
	role, _ := c.Get(ctxRole)
	uid, _ := id.(string)
	r, _ := role.(user.Role)
	return uid, r
}
