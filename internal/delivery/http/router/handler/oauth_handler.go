package handler

import (
	"log/slog"
	"net/http"

	"whisper/config"
	"whisper/internal/domain/service"
	"whisper/internal/infra/auth/oauthstate"
	"whisper/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// OAuthHandler drives the federated login flows. Every provider follows
// the same shape: issue state, redirect out, then on callback validate
// state, exchange the code, resolve the account, bind a session.
type OAuthHandler struct {
	accounts   usecase.AccountUsecase
	sessions   usecase.SessionUsecase
	states     *oauthstate.Store
	google     service.OAuthService
	facebook   service.OAuthService
	cookieName string
	logger     *slog.Logger
}

// OAuthHandlerParams holds dependencies for OAuthHandler, injected by Fx.
type OAuthHandlerParams struct {
	fx.In

	Accounts usecase.AccountUsecase
	Sessions usecase.SessionUsecase
	States   *oauthstate.Store
	Google   service.OAuthService `name:"google"`
	Facebook service.OAuthService `name:"facebook"`
	Config   *config.Config
	Logger   *slog.Logger
}

// NewOAuthHandler is the constructor for OAuthHandler.
func NewOAuthHandler(params OAuthHandlerParams) *OAuthHandler {
	return &OAuthHandler{
		accounts:   params.Accounts,
		sessions:   params.Sessions,
		states:     params.States,
		google:     params.Google,
		facebook:   params.Facebook,
		cookieName: params.Config.Session.CookieName,
		logger:     params.Logger,
	}
}

// GoogleLogin redirects to Google's authorization page.
func (h *OAuthHandler) GoogleLogin(c echo.Context) error {
	return h.beginFlow(c, h.google)
}

// GoogleCallback completes the Google login flow.
func (h *OAuthHandler) GoogleCallback(c echo.Context) error {
	return h.completeFlow(c, h.google)
}

// FacebookLogin redirects to Facebook's authorization page.
func (h *OAuthHandler) FacebookLogin(c echo.Context) error {
	return h.beginFlow(c, h.facebook)
}

// FacebookCallback completes the Facebook login flow.
func (h *OAuthHandler) FacebookCallback(c echo.Context) error {
	return h.completeFlow(c, h.facebook)
}

func (h *OAuthHandler) beginFlow(c echo.Context, svc service.OAuthService) error {
	state := h.states.Issue()

	return c.Redirect(http.StatusTemporaryRedirect, svc.BuildAuthorizationURL(state))
}

// completeFlow handles the provider callback. Any failure, from a stale
// state to an upstream exchange error, lands back on the login surface.
func (h *OAuthHandler) completeFlow(c echo.Context, svc service.OAuthService) error {
	provider := svc.Provider()

	if !h.states.Consume(c.QueryParam("state")) {
		h.logger.Warn("OAuth callback with invalid state", slog.String("provider", provider.String()))

		return c.Redirect(http.StatusFound, "/login")
	}

	code := c.QueryParam("code")
	if code == "" {
		return c.Redirect(http.StatusFound, "/login")
	}

	profile, err := svc.Exchange(c.Request().Context(), code)
	if err != nil {
		h.logger.Warn("OAuth code exchange failed", slog.String("provider", provider.String()), slog.Any("error", err))

		return c.Redirect(http.StatusFound, "/login")
	}

	output, err := h.accounts.ResolveFederated(c.Request().Context(), profile)
	if err != nil {
		h.logger.Error("Failed to resolve federated account", slog.String("provider", provider.String()), slog.Any("error", err))

		return c.Redirect(http.StatusFound, "/login")
	}

	bound, err := h.sessions.Bind(c.Request().Context(), &usecase.BindInput{
		AccountID: output.Account.ID,
		Provider:  provider,
	})
	if err != nil {
		h.logger.Error("Failed to bind session after federated login", slog.Any("error", err))

		return c.Redirect(http.StatusFound, "/login")
	}

	setSessionCookie(c, h.cookieName, bound.Token, bound.ExpiresAt)

	return c.Redirect(http.StatusFound, "/secrets")
}
