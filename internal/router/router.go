package router

import (
	"net/http"

	"boundless-travel/internal/handlers"
	"boundless-travel/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Handlers everything the router mounts
type Handlers struct {
	Health     *handlers.HealthHandler
	Chains     *handlers.ChainHandler
	Navigation *handlers.NavigationHandler
	Auth       *handlers.AuthHandler
	Admin      *handlers.AdminAuthHandler
	Onboarding *handlers.OnboardingHandler
	VPass      *handlers.VPassHandler
	Mint       *handlers.MintHandler
	WebSocket  *handlers.WebSocketHandler
}

// Options middleware wiring of the router
type Options struct {
	Logger         *logrus.Logger
	Auth           *middleware.AuthMiddleware
	AdminAuth      *middleware.AdminAuthMiddleware
	LocalhostOnly  *middleware.LocalhostOnly
	CORS           gin.HandlerFunc
	TrustedProxies []string
}

// SetupRouter builds the gin engine serving the travel API
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		opts.Logger.WithError(err).Warn("Invalid trusted proxies, trusting none")
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.Recovery())
	r.Use(middleware.RequestMetrics(opts.Logger))
	if opts.CORS != nil {
		r.Use(opts.CORS)
	}

	// ============ Health & Metrics ============
	r.GET("/health", h.Health.HealthCheckHandler)
	r.GET("/metrics", opts.LocalhostOnly.Restrict(), gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// ============ Chains ============
	api.GET("/chains", h.Chains.ListChainsHandler)
	api.GET("/chains/:name", h.Chains.GetChainHandler)

	// ============ Navigation ============
	api.GET("/navigation", opts.Auth.OptionalAuth(), h.Navigation.HeaderHandler)

	// ============ Wallet Session ============
	auth := api.Group("/auth")
	{
		auth.GET("/nonce", h.Auth.NonceHandler)
		auth.POST("/connect", h.Auth.ConnectHandler)
		auth.POST("/logout", opts.Auth.RequireAuth(), h.Auth.LogoutHandler)
		auth.GET("/session", opts.Auth.RequireAuth(), h.Auth.SessionHandler)
	}

	// ============ Operator Login ============
	api.POST("/admin/login", opts.LocalhostOnly.Restrict(), h.Admin.AdminLoginHandler)

	// ============ Onboarding ============
	onboarding := api.Group("/onboarding", opts.Auth.RequireAuth())
	{
		onboarding.GET("", h.Onboarding.GetHandler)
		onboarding.POST("/next", h.Onboarding.NextHandler)
		onboarding.POST("/previous", h.Onboarding.PreviousHandler)
		onboarding.POST("/invite-code", h.Onboarding.InviteCodeHandler)
	}

	// ============ VPass ============
	vpass := api.Group("/vpass")
	{
		vpass.GET("", opts.Auth.RequireAuth(), h.VPass.PageHandler)
		vpass.GET("/balances", opts.Auth.RequireAuth(), h.VPass.BalancesHandler)

		// operator wallet: localhost or admin IPs, plus an admin token
		mint := vpass.Group("/mint", opts.LocalhostOnly.Restrict(), opts.AdminAuth.RequireAdminAuth())
		mint.POST("", h.Mint.StartHandler)
		mint.GET("", h.Mint.HistoryHandler)
		mint.GET("/:id", h.Mint.GetHandler)
		mint.POST("/:id/cancel", h.Mint.CancelHandler)
	}

	// ============ Notifications ============
	r.GET("/ws", opts.Auth.RequireAuth(), h.WebSocket.HandleWebSocket)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"message":    "API endpoint not found",
			"path":       c.Request.URL.Path,
			"suggestion": "Check /api endpoints for available APIs",
		})
	})

	return r
}
