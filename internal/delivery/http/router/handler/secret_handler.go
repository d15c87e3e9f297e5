package handler

import (
	"log/slog"
	"net/http"

	"whisper/config"
	"whisper/internal/delivery/http/response"
	"whisper/internal/domain/entity"
	"whisper/internal/usecase"

	"github.com/labstack/echo/v4"
)

// secretInput is the form/JSON body for submitting a secret.
type secretInput struct {
	Secret string `json:"secret" form:"secret" validate:"required,min=1"`
}

// SecretHandler holds dependencies for the secret surfaces.
type SecretHandler struct {
	secrets    usecase.SecretUsecase
	sessions   usecase.SessionUsecase
	cookieName string
	logger     *slog.Logger
}

// NewSecretHandler is the constructor for SecretHandler, injected by Fx.
func NewSecretHandler(secrets usecase.SecretUsecase, sessions usecase.SessionUsecase, cfg *config.Config, logger *slog.Logger) *SecretHandler {
	return &SecretHandler{
		secrets:    secrets,
		sessions:   sessions,
		cookieName: cfg.Session.CookieName,
		logger:     logger,
	}
}

// Home describes the landing surface.
func (h *SecretHandler) Home(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]any{
		"surface": "home",
		"links":   []string{"/login", "/register", "/secrets"},
	}, "Welcome")
}

// ListSecrets returns every shared secret. The route is behind the session
// guard, so the account is already on the context.
func (h *SecretHandler) ListSecrets(c echo.Context) error {
	shared, err := h.secrets.ListShared(c.Request().Context())
	if err != nil {
		return err
	}

	entries := make([]map[string]string, 0, len(shared))
	for _, s := range shared {
		entries = append(entries, map[string]string{
			"username": s.Username,
			"secret":   s.Secret,
		})
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"surface": "secrets",
		"secrets": entries,
	}, "Shared secrets")
}

// SubmitPage describes the submit surface.
func (h *SecretHandler) SubmitPage(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]any{
		"surface": "submit",
		"fields":  []string{"secret"},
		"action":  "/submit",
	}, "Submit a secret")
}

// Submit stores the caller's secret. The write path restores the session
// itself instead of trusting the guard middleware's earlier read, so a
// session revoked mid-request cannot mutate anything.
func (h *SecretHandler) Submit(c echo.Context) error {
	account, err := h.restoreOwner(c)
	if err != nil {
		return c.Redirect(http.StatusFound, "/login")
	}

	var input secretInput
	if err := c.Bind(&input); err != nil {
		return c.Redirect(http.StatusFound, "/submit")
	}
	if err := c.Validate(&input); err != nil {
		return c.Redirect(http.StatusFound, "/submit")
	}

	if err := h.secrets.Submit(c.Request().Context(), account.ID, input.Secret); err != nil {
		return err
	}

	return c.Redirect(http.StatusFound, "/secrets")
}

// restoreOwner re-authenticates the request from the cookie. The guard
// middleware's earlier restore is deliberately not reused here.
func (h *SecretHandler) restoreOwner(c echo.Context) (*entity.Account, error) {
	cookie, err := c.Cookie(h.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, echo.ErrUnauthorized
	}

	return h.sessions.Restore(c.Request().Context(), cookie.Value)
}
