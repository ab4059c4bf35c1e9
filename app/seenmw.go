// app/seenmw.go
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// SeenGate is the slice of the redis client TouchLastSeen needs.
type SeenGate interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// TouchLastSeen records activity at most once per throttle window per user.
func TouchLastSeen(users UserDirectory, gate SeenGate, throttle time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(CtxUserID)
		if uid == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "library:lastseen:" + uid
		if ok, _ := gate.SetNX(ctx, key, "1", throttle).Result(); ok {
			// never blocks the request
			if err := users.TouchUserSeen(ctx, uid); err != nil {
				slog.Debug("touch last seen failed", "user_id", uid, "error", err)
			}
		}
		c.Next()
	}
}
