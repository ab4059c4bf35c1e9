// controllers/srv.go
package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"Gin_postgres_redis_library/app"
	"Gin_postgres_redis_library/lending"

	"github.com/gin-gonic/gin"
)

type Srv struct {
	Manager  *lending.Manager
	Catalog  *lending.Catalog
	Users    app.UserDirectory
	Sessions app.SessionStore
	Cfg      app.Config
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Manager:  a.Manager,
		Catalog:  a.Catalog,
		Users:    a.Users,
		Sessions: a.Sessions,
		Cfg:      a.Config,
	}
}

// --- helpers ---

// requesterFrom turns what AuthRequired put on the context into a lending.Requester.
func requesterFrom(c *gin.Context) (lending.Requester, bool) {
	uid := c.GetString(app.CtxUserID)
	if uid == "" {
		return lending.Requester{}, false
	}
	role := lending.RoleRegular
	if c.GetBool(app.CtxIsAdmin) {
		role = lending.RolePrivileged
	}
	return lending.Requester{ID: uid, Name: c.GetString(app.CtxUsername), Role: role}, true
}

func mustRequester(c *gin.Context) (lending.Requester, bool) {
	r, ok := requesterFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"detail": "Authentication credentials were not provided."})
	}
	return r, ok
}

// idParam parses a numeric path id; anything else is a 404 like an unknown id.
func idParam(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || n == 0 {
		c.JSON(http.StatusNotFound, app.H{"detail": "Not found."})
		return 0, false
	}
	return uint(n), true
}

// parseDate accepts YYYY-MM-DD and returns UTC midnight.
func parseDate(field, v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(v))
	if err != nil {
		return time.Time{}, &lending.FieldError{
			Field:   field,
			Message: "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.",
			Err:     lending.ErrInvalidInput,
		}
	}
	return t, nil
}

// setAppCookie sets (maxAge > 0) or clears (maxAge < 0) the session cookie.
func (s *Srv) setAppCookie(w http.ResponseWriter, sessionID string, maxAge time.Duration) {
	secure := strings.HasPrefix(s.Cfg.WebOrigin, "https://")
	age := int(maxAge / time.Second)
	if maxAge < 0 {
		age = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     app.AppSessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   secure,
		MaxAge:   age,
	})
}
