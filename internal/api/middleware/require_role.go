package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yoockh/mockmate/internal/models"
	"github.com/yoockh/mockmate/internal/utils"
)

func RequireRole(allowed ...models.UserRole) gin.HandlerFunc {
	allow := map[string]struct{}{}
	for _, a := range allowed {
		r := strings.TrimSpace(strings.ToLower(string(a)))
		if r != "" {
			allow[r] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		role := strings.ToLower(strings.TrimSpace(c.GetString(CtxRole)))
		if role == "" {
			abort(c, http.StatusForbidden, utils.CodeForbidden, "forbidden")
			return
		}
		if _, ok := allow[role]; !ok {
			abort(c, http.StatusForbidden, utils.CodeForbidden, "forbidden")
			return
		}
		c.Next()
	}
}

func RequireInterviewee() gin.HandlerFunc { return RequireRole(models.RoleInterviewee) }

// RequireAppRole admits any caller whose token carries one of the two
// application roles.
func RequireAppRole() gin.HandlerFunc {
	return RequireRole(models.RoleInterviewer, models.RoleInterviewee)
}
