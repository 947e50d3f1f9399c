package middleware

import (
	"net/http"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/response"
	"github.com/gin-gonic/gin"
)

// RequireRole checks that the JWT carries one of the listed roles.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		for _, role := range roles {
			if claims.Role == role {
				c.Next()
				return
			}
		}

		response.AbortFail(c, http.StatusForbidden, response.ErrPermissionDenied)
	}
}

// RequireStaff restricts a route to admins and teachers.
func RequireStaff() gin.HandlerFunc {
	return RequireRole(model.RoleAdmin, model.RoleTeacher)
}
