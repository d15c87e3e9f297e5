// Package middleware contains HTTP middleware for the echo server.
package middleware

import (
	"net/http"

	"whisper/config"
	"whisper/internal/usecase"

	"github.com/labstack/echo/v4"
)

// ContextKeyAccount is the echo context key the authenticated account is
// stored under after a successful session restore.
const ContextKeyAccount = "account"

// SessionMiddleware guards page routes behind a restorable session. The
// page surface never answers with an error status for a missing session;
// it redirects to the login surface instead.
type SessionMiddleware struct {
	sessions   usecase.SessionUsecase
	cookieName string
}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware(sessions usecase.SessionUsecase, cfg *config.Config) *SessionMiddleware {
	return &SessionMiddleware{
		sessions:   sessions,
		cookieName: cfg.Session.CookieName,
	}
}

// Authenticate restores the session from the cookie and stores the account
// on the context. Restore failures of any kind redirect to /login.
func (m *SessionMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(m.cookieName)
		if err != nil || cookie.Value == "" {
			return c.Redirect(http.StatusFound, "/login")
		}

		account, err := m.sessions.Restore(c.Request().Context(), cookie.Value)
		if err != nil {
			return c.Redirect(http.StatusFound, "/login")
		}

		c.Set(ContextKeyAccount, account)

		return next(c)
	}
}
