package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/telecare-api/internal/apperror"
	"github.com/harentsoaR/telecare-api/internal/models"
	"github.com/harentsoaR/telecare-api/internal/services"
	"github.com/harentsoaR/telecare-api/internal/utils"
)

// AccountKey is the gin context key holding the authenticated models.Account.
const AccountKey = "account"

// AuthMiddleware authenticates the bearer access token and loads its account.
func AuthMiddleware(codec *utils.TokenCodec, resolver *services.AccountResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apperror.Abort(c, apperror.Unauthenticated("Authorization header required"))
			return
		}

		claims, err := codec.Decode(tokenString)
		if err != nil {
			if errors.Is(err, utils.ErrExpiredToken) {
				apperror.Abort(c, apperror.Unauthenticated("Token has expired"))
				return
			}
			apperror.Abort(c, apperror.Unauthenticated("Invalid token"))
			return
		}
		if claims.Type != utils.TokenAccess {
			apperror.Abort(c, apperror.Unauthenticated("Invalid token type"))
			return
		}

		id, err := claims.AccountID()
		if err != nil {
			apperror.Abort(c, apperror.Unauthenticated("Invalid token"))
			return
		}
		account, err := resolver.ResolveByRoleAndID(c.Request.Context(), claims.AccountRole(), id)
		if err != nil {
			if errors.Is(err, services.ErrAccountNotFound) {
				apperror.Abort(c, apperror.Unauthenticated("Account not found"))
				return
			}
			apperror.Abort(c, apperror.Internal("Internal server error", err))
			return
		}
		if account.AccountTokenVersion() != claims.Version {
			apperror.Abort(c, apperror.Unauthenticated("Token has been revoked"))
			return
		}

		c.Set(AccountKey, account)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CurrentAccount returns the account set by AuthMiddleware.
func CurrentAccount(c *gin.Context) (models.Account, bool) {
	v, ok := c.Get(AccountKey)
	if !ok {
		return nil, false
	}
	account, ok := v.(models.Account)
	return account, ok
}
