package controllers

import (
	"net/http"
	"strings"

	"Gin_postgres_redis_library/app"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SessionController struct{ *Srv }

func NewSessionController(s *Srv) *SessionController { return &SessionController{Srv: s} }

// POST /admin/sessions {"username": "...", "is_admin": false}
// Issues a session for username, creating the user on first use.
func (sc *SessionController) Issue(c *gin.Context) {
	var in struct {
		Username string `json:"username" binding:"required"`
		IsAdmin  *bool  `json:"is_admin"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		writeBindError(c, err)
		return
	}
	username := strings.TrimSpace(in.Username)
	if username == "" {
		c.JSON(http.StatusBadRequest, app.H{"errors": app.H{"username": []string{"This field may not be blank."}}})
		return
	}

	ctx := c.Request.Context()
	u, err := sc.Users.FindOrCreateUser(ctx, username, uuid.NewString())
	if err != nil {
		writeError(c, err)
		return
	}
	if in.IsAdmin != nil && *in.IsAdmin != u.IsAdmin {
		if err := sc.Users.SetUserAdmin(ctx, u.ID, *in.IsAdmin); err != nil {
			writeError(c, err)
			return
		}
		u.IsAdmin = *in.IsAdmin
	}

	token, err := sc.Sessions.Create(ctx, u.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.H{
		"token":      token,
		"user_id":    u.ID,
		"username":   u.Username,
		"is_admin":   u.IsAdmin,
		"expires_in": int(sc.Sessions.TTL().Seconds()),
	})
}

// GET /api/whoami
func (sc *SessionController) WhoAmI(c *gin.Context) {
	c.JSON(http.StatusOK, app.H{
		"userID":   c.GetString(app.CtxUserID),
		"username": c.GetString(app.CtxUsername),
		"isAdmin":  c.GetBool(app.CtxIsAdmin),
	})
}

// POST /api/logout: drop the session in redis and clear the cookie.
func (sc *SessionController) Logout(c *gin.Context) {
	if tok := c.GetString(app.CtxToken); tok != "" {
		_ = sc.Sessions.Delete(c.Request.Context(), tok)
	}
	sc.setAppCookie(c.Writer, "", -1)
	c.JSON(http.StatusOK, app.H{"ok": true})
}
