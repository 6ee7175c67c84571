package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/projboard/projboard/pkg/helpers"
	"github.com/projboard/projboard/pkg/response"
)

// Auth validates the access token cookie and ensures an active session
// exists in Redis. It sets accountID, accountName, and accountEmail in
// the Gin context on success.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.AbortError(c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.AbortError(c, http.StatusUnauthorized, "invalid access token", err.Error())
			return
		}

		// Session is the source of truth: a valid token with no
		// session (logged out elsewhere) is rejected.
		key := "account:session:" + claims.UserID
		data, err := rdb.HGetAll(c.Request.Context(), key).Result()
		if err != nil || len(data) == 0 {
			response.AbortError(c, http.StatusUnauthorized, "session not found", nil)
			return
		}

		c.Set("accountID", data["account_id"])
		c.Set("accountName", data["name"])
		c.Set("accountEmail", data["email"])
		c.Next()
	}
}
