package routes

import (
	"net/http"
	"time"

	"Gin_postgres_redis_library/app"
	"Gin_postgres_redis_library/controllers"

	"github.com/gin-gonic/gin"
)

// Middleware groups the request guards; RegisterRoutes takes them so tests can swap identity in.
type Middleware struct {
	Auth  gin.HandlerFunc
	Admin gin.HandlerFunc
	Seen  gin.HandlerFunc
}

func AppMiddleware(a *app.App) Middleware {
	throttle := a.Config.SeenThrottle
	if throttle <= 0 {
		throttle = 5 * time.Minute
	}
	return Middleware{
		Auth:  app.AuthRequired(a.Sessions, a.Users, a.Config),
		Admin: app.AdminOnly(),
		Seen:  app.TouchLastSeen(a.Users, a.RDB, throttle),
	}
}

func RegisterRoutes(r *gin.Engine, s *controllers.Srv, mw Middleware) {
	loanCtl := controllers.NewLoanController(s)
	bookCtl := controllers.NewBookController(s)
	sessCtl := controllers.NewSessionController(s)
	userCtl := controllers.NewUserController(s)

	r.GET("/healthz", func(c *app.Ctx) { c.JSON(http.StatusOK, app.H{"ok": true}) })

	// ------------------------------
	// Catalog: public reads, admin writes
	// ------------------------------
	books := r.Group("/api/books")
	{
		books.GET("", bookCtl.List)
		books.GET("/:id", bookCtl.Retrieve)
	}
	booksAdmin := r.Group("/api/books", mw.Auth, mw.Admin)
	{
		booksAdmin.POST("", bookCtl.Create)
		booksAdmin.PATCH("/:id", bookCtl.Update)
	}

	// ------------------------------
	// Loans
	// ------------------------------
	loans := r.Group("/api/loans", mw.Auth, mw.Seen)
	{
		loans.POST("", loanCtl.Create)
		loans.GET("", loanCtl.List) // ?is_active=true|false&user_id=
		loans.GET("/:id", loanCtl.Retrieve)
		loans.POST("/:id/return", loanCtl.Return)
	}

	// ------------------------------
	// Sessions
	// ------------------------------
	me := r.Group("/api", mw.Auth, mw.Seen)
	{
		me.GET("/whoami", sessCtl.WhoAmI)
		me.POST("/logout", sessCtl.Logout)
	}

	admin := r.Group("/admin", mw.Auth, mw.Admin)
	{
		admin.POST("/sessions", sessCtl.Issue)
	}

	users := r.Group("/api/users", mw.Auth, mw.Admin)
	{
		users.GET("/:id", userCtl.GetUser)
		users.PATCH("/:id/admin", userCtl.SetAdmin)
		users.DELETE("/:id/sessions", userCtl.RevokeSessions)
	}
}
