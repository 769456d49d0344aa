package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"shopfront/api/internal/repository"
	"shopfront/api/internal/security"
)

// AccessTokenCookie is where browser clients carry the short-lived token;
// API clients may use a bearer header instead. Both carry the same JWT.
const AccessTokenCookie = "access_token"

// Auth verifies the access token and loads the current account. Access
// tokens are stateless: no session row is consulted, the signature and
// expiry alone decide.
func Auth(signer *security.TokenSigner, accounts repository.AccountStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
				tokenStr = cookie
			}
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_token"})
			return
		}

		claims, err := signer.Verify(tokenStr, security.PurposeAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			return
		}

		account, err := accounts.GetByID(c.Request.Context(), claims.AccountID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account_not_found"})
			return
		}

		c.Set("access_claims", *claims)
		c.Set("current_account", account)

		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
