package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/firstrun/firstrun-gate/internal/config"
	"github.com/firstrun/firstrun-gate/internal/http/handler"
	httpmiddleware "github.com/firstrun/firstrun-gate/internal/http/middleware"
	"github.com/firstrun/firstrun-gate/internal/middleware"
)

// NewRouter wires gin routes and middleware. The three guarded areas mirror
// the application layout: a guest-only entry area, the onboarding flow, and
// the protected application behind completed onboarding.
func NewRouter(
	cfg config.Config,
	authHandler *handler.AuthHandler,
	onboardingHandler *handler.OnboardingHandler,
	appHandler *handler.AppHandler,
	sessionMiddleware *httpmiddleware.Session,
	guards *httpmiddleware.Guards,
	rateLimiter *middleware.RateLimiter,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.RequestLogger(nil))
	if rateLimiter != nil {
		r.Use(rateLimiter.Handler())
	}
	r.Use(middleware.CORS(cfg))
	r.Use(otelgin.Middleware(cfg.ServiceName))
	r.Use(sessionMiddleware.Attach)

	auth := r.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/me", authHandler.Me)
	}

	guest := r.Group("/", guards.GuestOnly())
	{
		guest.GET(cfg.LoginPath, appHandler.Landing)
		guest.GET("/signup", appHandler.Landing)
	}

	flow := r.Group(cfg.OnboardingPath)
	{
		flow.GET("", guards.Onboarding(), onboardingHandler.Enter)
		flow.GET("/state", onboardingHandler.State)
		flow.POST("/start", onboardingHandler.Start)
		flow.POST("/complete", onboardingHandler.Complete)
		flow.POST("/skip", onboardingHandler.Skip)
	}

	app := r.Group(cfg.AppPath, guards.Protected())
	{
		app.GET("", appHandler.Home)
		app.GET("/home", appHandler.Home)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return r
}
