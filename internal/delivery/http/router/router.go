// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"whisper/internal/delivery/http/middleware"
	"whisper/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler       *handler.AuthHandler
	OAuthHandler      *handler.OAuthHandler
	SecretHandler     *handler.SecretHandler
	SessionMiddleware *middleware.SessionMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler       *handler.AuthHandler
	oauthHandler      *handler.OAuthHandler
	secretHandler     *handler.SecretHandler
	sessionMiddleware *middleware.SessionMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:       params.AuthHandler,
		oauthHandler:      params.OAuthHandler,
		secretHandler:     params.SecretHandler,
		sessionMiddleware: params.SessionMiddleware,
	}
}

// RegisterRoutes sets up all the routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Public surfaces
	e.GET("/", r.secretHandler.Home)
	e.GET("/login", r.authHandler.LoginPage)
	e.POST("/login", r.authHandler.Login)
	e.GET("/register", r.authHandler.RegisterPage)
	e.POST("/register", r.authHandler.Register)
	e.GET("/logout", r.authHandler.Logout)

	// Federated login flows
	authGroup := e.Group("/auth")
	{
		authGroup.GET("/google", r.oauthHandler.GoogleLogin)
		authGroup.GET("/google/callback", r.oauthHandler.GoogleCallback)
		authGroup.GET("/facebook", r.oauthHandler.FacebookLogin)
		authGroup.GET("/facebook/callback", r.oauthHandler.FacebookCallback)
	}

	// Guarded surfaces: a missing session redirects to /login
	e.GET("/secrets", r.secretHandler.ListSecrets, r.sessionMiddleware.Authenticate)
	e.GET("/submit", r.secretHandler.SubmitPage, r.sessionMiddleware.Authenticate)
	e.POST("/submit", r.secretHandler.Submit, r.sessionMiddleware.Authenticate)
}
