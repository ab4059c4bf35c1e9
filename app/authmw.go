package app

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"Gin_postgres_redis_library/lending"

	"github.com/gin-gonic/gin"
)

const AppSessionCookie = "app_session"

// Keys set on the gin context by AuthRequired.
const (
	CtxUserID   = "userID"
	CtxUsername = "username"
	CtxIsAdmin  = "isAdmin"
	CtxToken    = "sessionToken"
)

// SessionToken returns the cookie value, or the bearer token when no cookie is sent.
func SessionToken(r *http.Request) string {
	if ck, err := r.Cookie(AppSessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func AuthRequired(sessions SessionStore, users UserDirectory, cfg Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token := SessionToken(c.Request)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"detail": "Authentication credentials were not provided."})
			return
		}
		as, err := sessions.Get(ctx, token)
		if err != nil || as.Expired(time.Now()) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"detail": "Invalid or expired session."})
			return
		}

		// the user must still exist; isAdmin is resolved once per request
		u, err := users.FindUserByID(ctx, as.UserID)
		if errors.Is(err, lending.ErrNotFound) {
			_ = sessions.Delete(ctx, token)
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"detail": "Invalid or expired session."})
			return
		}
		if err != nil {
			slog.Warn("auth user lookup failed", "user_id", as.UserID, "error", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, H{"detail": "Temporarily unavailable, please retry."})
			return
		}
		c.Set(CtxUserID, u.ID)
		c.Set(CtxUsername, u.Username)
		c.Set(CtxIsAdmin, u.IsAdmin || cfg.IsAdminName(u.Username))
		c.Set(CtxToken, token)

		c.Next()
	}
}

// AdminOnly must run after AuthRequired.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxUserID) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"detail": "Authentication credentials were not provided."})
			return
		}
		if !c.GetBool(CtxIsAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"detail": "You do not have permission to perform this action."})
			return
		}
		c.Next()
	}
}
