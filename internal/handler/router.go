package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"eventtix/registrar/internal/config"
	"eventtix/registrar/internal/handler/middleware"
)

// Handlers groups the HTTP handlers mounted by SetupRouter.
type Handlers struct {
	Registration *RegistrationHandler
	Auth         *AuthHandler
	Review       *ReviewHandler
	Ticket       *TicketHandler
	Audit        *AuditHandler
	Admin        *AdminHandler
}

func SetupRouter(cfg *config.Config, logger *zap.Logger, auth middleware.Authenticator, h Handlers) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Locally stored screenshots and QR codes
	if cfg.Storage.Backend == "local" {
		r.Static("/uploads", cfg.Storage.Local.Dir)
	}

	// Public registration
	public := r.Group("/api")
	{
		public.POST("/register", h.Registration.Submit)
		public.GET("/registration/status/:email", h.Registration.Status)
		public.GET("/settings", h.Registration.PublicSettings)
		public.POST("/admin/auth/login", h.Auth.Login)
	}

	requireAdmin := middleware.JWTAuth(auth)

	// Gate scanner
	scanner := r.Group("/", requireAdmin)
	{
		scanner.GET("/verify-ticket/:serial", h.Ticket.Verify)
		scanner.POST("/mark-used/:serial", h.Ticket.CheckIn)
		scanner.POST("/check-out/:serial", h.Ticket.CheckOut)
	}

	admin := r.Group("/api/admin", requireAdmin)
	{
		admin.POST("/auth/logout", h.Auth.Logout)
		admin.GET("/me", h.Auth.Me)

		admin.GET("/registrations", h.Review.List)
		admin.GET("/registrations/:id", h.Review.Detail)
		admin.POST("/registrations/:id/approve", h.Review.Approve)
		admin.POST("/registrations/:id/reject", h.Review.Reject)
		admin.GET("/stats", h.Review.Stats)

		admin.GET("/audit/logs", h.Audit.List)
		admin.GET("/audit/stats", h.Audit.Stats)
	}

	super := admin.Group("", middleware.RequireSuperadmin())
	{
		super.DELETE("/registrations/:id", h.Review.Purge)

		super.PUT("/tickets/:serial/active", h.Ticket.SetActive)
		super.POST("/tickets/:serial/reset", h.Ticket.ResetAttendance)

		super.GET("/admins", h.Admin.ListAdmins)
		super.POST("/admins", h.Admin.CreateAdmin)
		super.GET("/admins/:id", h.Admin.GetAdmin)
		super.PUT("/admins/:id", h.Admin.UpdateAdmin)
		super.DELETE("/admins/:id", h.Admin.DeleteAdmin)

		super.GET("/settings", h.Admin.GetSettings)
		super.PUT("/settings", h.Admin.UpdateSettings)
	}

	return r
}
