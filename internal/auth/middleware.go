package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Bu1gur/challenger-crm/internal/api"

	"github.com/gin-gonic/gin"
)

const (
	ctxStaffID = "staff_id"
	ctxEmail   = "staff_email"
	ctxRole    = "staff_role"
)

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: msg})
}

func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) != "Bearer" {
			abort(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			abort(c, http.StatusUnauthorized, "Token is empty")
			return
		}

		claims, err := ValidateToken(tokenString, secret)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				abort(c, http.StatusUnauthorized, "Token expired")
			} else {
				abort(c, http.StatusUnauthorized, "Invalid or malformed token")
			}
			return
		}

		if claims.TokenType != tokenAccess {
			abort(c, http.StatusUnauthorized, "Access token required")
			return
		}

		c.Set(ctxStaffID, claims.StaffID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// RequireRole lets the request through when the caller holds any of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		if role == "" {
			abort(c, http.StatusUnauthorized, "Staff role not found")
			return
		}

		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}

		abort(c, http.StatusForbidden, "Insufficient permissions")
	}
}

func GetStaffID(c *gin.Context) (int64, bool) {
	v, exists := c.Get(ctxStaffID)
	if !exists {
		return 0, false
	}

	id, ok := v.(int64)
	return id, ok
}

func GetRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}
