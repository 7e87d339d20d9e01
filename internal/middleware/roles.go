package middleware

import (
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/telecare-api/internal/apperror"
	"github.com/harentsoaR/telecare-api/internal/models"
)

// RequireRoles must run after AuthMiddleware.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := CurrentAccount(c)
		if !ok {
			apperror.Abort(c, apperror.Unauthenticated("Authentication required"))
			return
		}
		if !slices.Contains(roles, account.AccountRole()) {
			apperror.Abort(c, apperror.Forbidden("You do not have access to this resource"))
			return
		}
		c.Next()
	}
}
