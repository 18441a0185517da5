package httpapi

import (
	"eventmis/internal/auth"
	"eventmis/internal/rbac"

	"github.com/gin-gonic/gin"
)

// Routes mounts the JSON API on api. Public form posts are rate limited;
// everything else outside /public and /auth needs a valid access token.
func Routes(api *gin.RouterGroup, h *Handlers) {
	InstallValidator()
	if h.Revoker == nil {
		h.Revoker = auth.NewMemoryRevoker()
	}
	if h.PublicLimiter == nil {
		h.PublicLimiter = NewIPRateLimiter(10)
	}

	authed := auth.RequireAccessToken(h.Tokens, h.Revoker)
	staff := rbac.RequireAnyRole(rbac.AnyStaff...)
	admin := rbac.RequireAdmin()

	public := api.Group("/public")
	{
		public.GET("/events", h.PublicEvents)
		public.GET("/settings", h.PublicSettings)
		public.GET("/quote", h.PublicQuote)
		public.POST("/bookings", h.PublicLimiter.Middleware(), h.SubmitBooking)
		public.POST("/contact", h.PublicLimiter.Middleware(), h.SubmitContact)
	}

	session := api.Group("/auth")
	{
		session.POST("/login", h.Login)
		session.POST("/refresh", h.Refresh)
		session.POST("/logout", authed, h.Logout)
		session.GET("/me", authed, h.Me)
		session.PUT("/profile", authed, staff, h.UpdateProfile)
	}

	back := api.Group("")
	back.Use(authed, staff)
	{
		back.GET("/events", h.ListEvents)
		back.POST("/events", h.CreateEvent)
		back.PUT("/events", h.UpdateEvent)
		back.DELETE("/events", h.DeleteEvent)
		back.GET("/events/options", h.EventOptions)
		back.GET("/events/:id", h.GetEvent)

		back.GET("/archive", h.ListArchive)
		back.POST("/archive", h.ArchiveEvent)
		back.POST("/archive/restore", h.RestoreEvent)
		back.DELETE("/archive", admin, h.DeleteArchived)

		back.GET("/audit-trail", h.ListAudit)
		back.POST("/audit-trail", admin, h.AppendAudit)

		back.GET("/reports", h.Report)
		back.GET("/reports/transactions", h.ReportTransactions)
		back.GET("/reports/export", h.ExportReport)
		back.GET("/dashboard", h.Dashboard)

		back.GET("/messages", h.ListMessages)
		back.POST("/messages", h.SendMessage)
		back.PUT("/messages", h.UpdateMessage)
		back.DELETE("/messages", h.DeleteMessage)
		back.POST("/messages/:id/reply", h.ReplyMessage)
		back.POST("/messages/:id/read", h.MarkMessageRead)

		back.GET("/financial", h.ListFinancial)
		back.GET("/financial/totals", h.FinancialTotals)
		back.POST("/financial", h.CreateFinancial)
		back.PUT("/financial", h.UpdateFinancial)
		back.DELETE("/financial", h.DeleteFinancial)

		back.GET("/settings", h.GetSettings)
		back.POST("/settings", admin, h.SaveSettings)
	}

	people := back.Group("/users")
	people.Use(admin)
	{
		people.GET("", h.ListUsers)
		people.POST("", h.CreateUser)
		people.PUT("", h.UpdateUser)
		people.DELETE("", h.DeleteUser)
	}
}
