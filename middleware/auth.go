package middleware

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"warehouse-app/auth"
	"warehouse-app/config"
	"warehouse-app/models"
)

const authContextKey = "authContext"

// RequireAuth resolves the session cookie into an AuthContext and
// aborts with 401 when there is none. Expired sessions are deleted on
// touch.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.SessionCookie)
		if err != nil || token == "" {
			abortUnauthorized(c)
			return
		}

		var (
			ctx       models.AuthContext
			expiresAt string
		)
		row := config.DB.QueryRow(`
			SELECT s.token, s.user_id, s.org_id, s.expires_at,
			       u.name, u.email,
			       o.name, COALESCE(o.join_code, ''),
			       m.role
			FROM sessions s
			JOIN users u ON u.id = s.user_id
			JOIN organizations o ON o.id = s.org_id
			JOIN memberships m ON m.user_id = s.user_id AND m.org_id = s.org_id
			WHERE s.token = ?
		`, token)
		err = row.Scan(
			&ctx.Token, &ctx.UserID, &ctx.OrgID, &expiresAt,
			&ctx.Name, &ctx.Email,
			&ctx.OrgName, &ctx.OrgJoinCode,
			&ctx.Role,
		)
		if err == sql.ErrNoRows {
			abortUnauthorized(c)
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		expiry, err := config.ParseTime(expiresAt)
		if err != nil || !expiry.After(time.Now()) {
			config.DB.Exec("DELETE FROM sessions WHERE token = ?", token)
			abortUnauthorized(c)
			return
		}

		c.Set(authContextKey, ctx)
		c.Next()
	}
}

// RequireRole gates a route group to the given roles. Must run after
// RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := CurrentAuth(c)
		for _, role := range roles {
			if ctx.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Недостаточно прав"})
	}
}

// CurrentAuth returns the AuthContext stored by RequireAuth.
func CurrentAuth(c *gin.Context) models.AuthContext {
	value, _ := c.Get(authContextKey)
	ctx, _ := value.(models.AuthContext)
	return ctx
}

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Требуется авторизация"})
}
