package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"

	"github.com/cascadehq/cascade/internal/models"
	"github.com/cascadehq/cascade/internal/role"
)

const actorKey = "actor"

// authMiddleware verifies the bearer token and loads the acting user into
// the request context. Token issuance belongs to the platform's auth
// service; Cascade only verifies.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.JWTSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			c.Abort()
			return
		}
		userID, ok := claims["user_id"].(float64)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token claims"})
			c.Abort()
			return
		}

		var actor models.User
		if err := s.DB.First(&actor, uint(userID)).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
			}
			c.Abort()
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// requireAction gates a route on the capability table. Ownership checks
// stay in the ledgers; this only answers "may this role ever do this."
func requireAction(action role.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := currentActor(c)
		if !role.Can(role.Role(actor.Role), action) {
			c.JSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentActor returns the authenticated user set by authMiddleware.
func currentActor(c *gin.Context) models.User {
	v, _ := c.Get(actorKey)
	actor, _ := v.(models.User)
	return actor
}
