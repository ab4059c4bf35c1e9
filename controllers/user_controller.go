package controllers

import (
	"net/http"

	"Gin_postgres_redis_library/app"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserController struct{ *Srv }

func NewUserController(s *Srv) *UserController { return &UserController{Srv: s} }

func (uc *UserController) userID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"detail": "invalid uuid"})
		return "", false
	}
	return id, true
}

// GET /api/users/:id
func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := uc.userID(c)
	if !ok {
		return
	}
	user, err := uc.Users.FindUserByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"user": user})
}

// PATCH /api/users/:id/admin {"is_admin": true}
func (uc *UserController) SetAdmin(c *gin.Context) {
	id, ok := uc.userID(c)
	if !ok {
		return
	}
	var in struct {
		IsAdmin *bool `json:"is_admin" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		writeBindError(c, err)
		return
	}
	// don't let an admin lock themselves out
	if id == c.GetString(app.CtxUserID) && !*in.IsAdmin {
		c.JSON(http.StatusBadRequest, app.H{"detail": "cannot revoke your own admin flag"})
		return
	}
	if err := uc.Users.SetUserAdmin(c.Request.Context(), id, *in.IsAdmin); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true, "is_admin": *in.IsAdmin})
}

// DELETE /api/users/:id/sessions
func (uc *UserController) RevokeSessions(c *gin.Context) {
	id, ok := uc.userID(c)
	if !ok {
		return
	}
	if err := uc.Sessions.RevokeAllForUser(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
