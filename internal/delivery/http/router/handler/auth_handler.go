// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"whisper/config"
	"whisper/internal/delivery/http/response"
	"whisper/internal/domain/entity"
	"whisper/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// credentialsInput is the form/JSON body shared by registration and login.
type credentialsInput struct {
	Username string `json:"username" form:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" form:"password" validate:"required,min=1"`
}

// AuthHandler holds dependencies for the local credential handlers.
type AuthHandler struct {
	accounts   usecase.AccountUsecase
	sessions   usecase.SessionUsecase
	cookieName string
	logger     *slog.Logger
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(accounts usecase.AccountUsecase, sessions usecase.SessionUsecase, cfg *config.Config, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:   accounts,
		sessions:   sessions,
		cookieName: cfg.Session.CookieName,
		logger:     logger,
	}
}

// LoginPage describes the login surface.
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]any{
		"surface": "login",
		"fields":  []string{"username", "password"},
		"action":  "/login",
	}, "Login")
}

// RegisterPage describes the registration surface.
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]any{
		"surface": "register",
		"fields":  []string{"username", "password"},
		"action":  "/register",
	}, "Register")
}

// Register handles local registration. Success binds a session and lands
// on /secrets; any failure returns to the registration surface.
func (h *AuthHandler) Register(c echo.Context) error {
	var input credentialsInput
	if err := c.Bind(&input); err != nil {
		return c.Redirect(http.StatusFound, "/register")
	}
	if err := c.Validate(&input); err != nil {
		return c.Redirect(http.StatusFound, "/register")
	}

	output, err := h.accounts.Register(c.Request().Context(), &usecase.RegisterInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		h.logger.Warn("Registration rejected", slog.String("username", input.Username), slog.Any("error", err))

		return c.Redirect(http.StatusFound, "/register")
	}

	if err := h.bindSession(c, output.Account.ID, entity.ProviderLocal); err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	return c.Redirect(http.StatusFound, "/secrets")
}

// Login handles local login. Unknown users and bad passwords take the same
// path back to the login surface.
func (h *AuthHandler) Login(c echo.Context) error {
	var input credentialsInput
	if err := c.Bind(&input); err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}
	if err := c.Validate(&input); err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	output, err := h.accounts.Login(c.Request().Context(), &usecase.LoginInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	if err := h.bindSession(c, output.Account.ID, entity.ProviderLocal); err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	return c.Redirect(http.StatusFound, "/secrets")
}

// Logout unbinds the session, clears the cookie, and lands on the home
// surface. Logging out without a session is fine.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(h.cookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Unbind(c.Request().Context(), cookie.Value); err != nil {
			h.logger.Warn("Failed to unbind session on logout", slog.Any("error", err))
		}
	}

	clearSessionCookie(c, h.cookieName)

	return c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) bindSession(c echo.Context, accountID uuid.UUID, provider entity.Provider) error {
	bound, err := h.sessions.Bind(c.Request().Context(), &usecase.BindInput{
		AccountID: accountID,
		Provider:  provider,
	})
	if err != nil {
		h.logger.Error("Failed to bind session", slog.Any("accountID", accountID), slog.Any("error", err))

		return err
	}

	setSessionCookie(c, h.cookieName, bound.Token, bound.ExpiresAt)

	return nil
}

// setSessionCookie hands the raw session token to the client. HttpOnly
// keeps it away from scripts; the server-side record is revoked on logout
// regardless of what the client retains.
func setSessionCookie(c echo.Context, name, token string, expiresAt time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(c echo.Context, name string) {
	c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
