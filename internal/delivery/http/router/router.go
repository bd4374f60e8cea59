// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"passport/internal/delivery/http/middleware"
	"passport/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler      *handler.AuthHandler
	AccountHandler   *handler.AccountHandler
	TwoFactorHandler *handler.TwoFactorHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler      *handler.AuthHandler
	accountHandler   *handler.AccountHandler
	twoFactorHandler *handler.TwoFactorHandler
	authMiddleware   *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:      params.AuthHandler,
		accountHandler:   params.AccountHandler,
		twoFactorHandler: params.TwoFactorHandler,
		authMiddleware:   params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	authGroup := e.Group("/api/auth")
	{
		authGroup.POST("/register", r.accountHandler.Register)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.POST("/logout", r.authHandler.Logout)
		authGroup.GET("/confirm-email", r.accountHandler.ConfirmEmail)
		authGroup.POST("/resend-confirmation", r.accountHandler.ResendConfirmation)
		authGroup.POST("/forgot-password", r.accountHandler.ForgotPassword)
		authGroup.POST("/reset-password", r.accountHandler.ResetPassword)

		// External provider flow, driven by browser redirects.
		authGroup.GET("/login-external", r.authHandler.LoginExternal)
		authGroup.GET("/external-callback", r.authHandler.ExternalCallback)
	}

	// Routes that require a live session cookie.
	sessionGroup := e.Group("/api/auth")
	sessionGroup.Use(r.authMiddleware.RequireSession)
	{
		sessionGroup.GET("/me", r.accountHandler.Me)

		sessionGroup.GET("/2fa", r.twoFactorHandler.Status)
		sessionGroup.POST("/2fa", r.twoFactorHandler.Update)
		sessionGroup.GET("/2fa/qrcode", r.twoFactorHandler.ProvisioningQR)
	}
}
