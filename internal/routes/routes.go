package routes

import (
	"github.com/gin-gonic/gin"

	"artemis/internal/handlers"
	"artemis/internal/middleware"
)

// SetupRoutes registers the API. authHandler is nil when accounts live in an external
// identity provider; signup and login are then not served here.
func SetupRoutes(
	r *gin.Engine,
	tokens middleware.TokenParser,
	limiter *middleware.IPRateLimiter,
	healthHandler *handlers.HealthHandler,
	resetHandler *handlers.PasswordResetHandler,
	authHandler *handlers.AuthHandler,
	formHandler *handlers.FormHandler,
	nitHandler *handlers.NITHandler,
) *gin.Engine {

	// ---- public
	r.GET("/healthz", healthHandler.Healthz)

	auth := r.Group("/auth", limiter.Middleware())
	{
		auth.POST("/forgot-password", resetHandler.ForgotPassword)
		auth.POST("/verify-reset-code", resetHandler.VerifyResetCode)
		auth.POST("/reset-password", resetHandler.ResetPassword)
		if authHandler != nil {
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
		}
	}

	nit := r.Group("/nit", limiter.Middleware())
	{
		nit.POST("/search", nitHandler.Search)
	}

	// ---- protected
	forms := r.Group("/forms", middleware.AuthMiddleware(tokens))
	{
		forms.GET("/me", formHandler.GetMine)
		forms.PUT("/me", formHandler.SaveMine)
		forms.GET("/me/pdf", formHandler.ExportPDF)
	}

	return r
}
