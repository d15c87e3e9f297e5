package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"whisper/config"
	"whisper/internal/delivery/http/middleware"
	"whisper/internal/delivery/http/validator"
	"whisper/internal/domain/entity"
	domainerrors "whisper/internal/domain/errors"
	"whisper/internal/domain/service"
	"whisper/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookieName = "whisper_session"

// fakeAccountUC is a map-backed stand-in for the account usecase.
type fakeAccountUC struct {
	mu       sync.Mutex
	accounts map[string]*entity.Account
	password map[string]string
}

func newFakeAccountUC() *fakeAccountUC {
	return &fakeAccountUC{
		accounts: make(map[string]*entity.Account),
		password: make(map[string]string),
	}
}

func (f *fakeAccountUC) Register(_ context.Context, input *usecase.RegisterInput) (*usecase.AccountOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.accounts[input.Username]; exists {
		return nil, domainerrors.ErrDuplicateUsername
	}
	account := &entity.Account{ID: uuid.New(), Username: input.Username}
	f.accounts[input.Username] = account
	f.password[input.Username] = input.Password

	return &usecase.AccountOutput{Account: account}, nil
}

func (f *fakeAccountUC) Login(_ context.Context, input *usecase.LoginInput) (*usecase.AccountOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, exists := f.accounts[input.Username]
	if !exists {
		return nil, domainerrors.ErrUnknownUser
	}
	if f.password[input.Username] != input.Password {
		return nil, domainerrors.ErrInvalidCredentials
	}

	return &usecase.AccountOutput{Account: account}, nil
}

func (f *fakeAccountUC) ResolveFederated(_ context.Context, _ *service.OAuthProfile) (*usecase.AccountOutput, error) {
	return nil, domainerrors.ErrInternalError
}

// fakeSessionUC is a map-backed stand-in for the session usecase.
type fakeSessionUC struct {
	mu       sync.Mutex
	counter  int
	sessions map[string]*entity.Account
}

func newFakeSessionUC() *fakeSessionUC {
	return &fakeSessionUC{sessions: make(map[string]*entity.Account)}
}

func (f *fakeSessionUC) Bind(_ context.Context, input *usecase.BindInput) (*usecase.BindOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter++
	token := "session-token-" + uuid.NewString()
	f.sessions[token] = &entity.Account{ID: input.AccountID}

	return &usecase.BindOutput{Token: token}, nil
}

func (f *fakeSessionUC) Restore(_ context.Context, token string) (*entity.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.sessions[token]
	if !ok {
		return nil, domainerrors.ErrUnauthenticated
	}

	return account, nil
}

func (f *fakeSessionUC) Unbind(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)

	return nil
}

// fakeSecretUC records submissions.
type fakeSecretUC struct {
	mu          sync.Mutex
	submissions map[uuid.UUID]string
}

func newFakeSecretUC() *fakeSecretUC {
	return &fakeSecretUC{submissions: make(map[uuid.UUID]string)}
}

func (f *fakeSecretUC) Submit(_ context.Context, accountID uuid.UUID, secret string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submissions[accountID] = secret

	return nil
}

func (f *fakeSecretUC) ListShared(_ context.Context) ([]*usecase.SharedSecret, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*usecase.SharedSecret
	for _, secret := range f.submissions {
		out = append(out, &usecase.SharedSecret{Username: "someone", Secret: secret})
	}

	return out, nil
}

type fixture struct {
	e        *echo.Echo
	accounts *fakeAccountUC
	sessions *fakeSessionUC
	secrets  *fakeSecretUC
}

func newFixture() *fixture {
	cfg := &config.Config{Session: &config.SessionConfig{CookieName: testCookieName}}
	accounts := newFakeAccountUC()
	sessions := newFakeSessionUC()
	secrets := newFakeSecretUC()

	authHandler := NewAuthHandler(accounts, sessions, cfg, slog.Default())
	secretHandler := NewSecretHandler(secrets, sessions, cfg, slog.Default())
	guard := middleware.NewSessionMiddleware(sessions, cfg)

	e := echo.New()
	e.Validator = validator.New()
	e.POST("/register", authHandler.Register)
	e.POST("/login", authHandler.Login)
	e.GET("/logout", authHandler.Logout)
	e.GET("/secrets", secretHandler.ListSecrets, guard.Authenticate)
	e.POST("/submit", secretHandler.Submit, guard.Authenticate)

	return &fixture{e: e, accounts: accounts, sessions: sessions, secrets: secrets}
}

func postForm(e *echo.Echo, path string, form url.Values, cookie *http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == testCookieName {
			return cookie
		}
	}
	t.Fatal("session cookie not set")

	return nil
}

func TestRegisterBindsSessionAndRedirects(t *testing.T) {
	t.Parallel()

	env := newFixture()

	rec := postForm(env.e, "/register", url.Values{"username": {"alice"}, "password": {"hunter2"}}, nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/secrets", rec.Header().Get(echo.HeaderLocation))

	cookie := sessionCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.NotEmpty(t, cookie.Value)
}

func TestLoginFailureRedirectsToLogin(t *testing.T) {
	t.Parallel()

	env := newFixture()

	_ = postForm(env.e, "/register", url.Values{"username": {"alice"}, "password": {"hunter2"}}, nil)

	for _, form := range []url.Values{
		{"username": {"alice"}, "password": {"wrong"}},
		{"username": {"ghost"}, "password": {"hunter2"}},
		{"username": {"alice"}},
	} {
		rec := postForm(env.e, "/login", form, nil)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation), "failed logins land on the login surface")
	}
}

func TestLoginSuccessRedirectsToSecrets(t *testing.T) {
	t.Parallel()

	env := newFixture()

	_ = postForm(env.e, "/register", url.Values{"username": {"alice"}, "password": {"hunter2"}}, nil)

	rec := postForm(env.e, "/login", url.Values{"username": {"alice"}, "password": {"hunter2"}}, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/secrets", rec.Header().Get(echo.HeaderLocation))
	sessionCookie(t, rec)
}

func TestSecretsRequiresSession(t *testing.T) {
	t.Parallel()

	env := newFixture()

	req := httptest.NewRequest(http.MethodGet, "/secrets", nil)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestSecretsVisibleWithSession(t *testing.T) {
	t.Parallel()

	env := newFixture()

	reg := postForm(env.e, "/register", url.Values{"username": {"alice"}, "password": {"hunter2"}}, nil)
	cookie := sessionCookie(t, reg)

	sub := postForm(env.e, "/submit", url.Values{"secret": {"my deep secret"}}, cookie)
	require.Equal(t, http.StatusFound, sub.Code)
	require.Equal(t, "/secrets", sub.Header().Get(echo.HeaderLocation))

	req := httptest.NewRequest(http.MethodGet, "/secrets", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "my deep secret")
}

func TestSubmitWithoutSessionMutatesNothing(t *testing.T) {
	t.Parallel()

	env := newFixture()

	rec := postForm(env.e, "/submit", url.Values{"secret": {"stolen write"}}, nil)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.Empty(t, env.secrets.submissions)
}

func TestSubmitWithRevokedSessionMutatesNothing(t *testing.T) {
	t.Parallel()

	env := newFixture()

	reg := postForm(env.e, "/register", url.Values{"username": {"alice"}, "password": {"hunter2"}}, nil)
	cookie := sessionCookie(t, reg)

	// Revoke server-side; the client still holds the cookie.
	require.NoError(t, env.sessions.Unbind(context.Background(), cookie.Value))

	rec := postForm(env.e, "/submit", url.Values{"secret": {"stale write"}}, cookie)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
	assert.Empty(t, env.secrets.submissions)
}

func TestLogoutClearsCookieAndSession(t *testing.T) {
	t.Parallel()

	env := newFixture()

	reg := postForm(env.e, "/register", url.Values{"username": {"alice"}, "password": {"hunter2"}}, nil)
	cookie := sessionCookie(t, reg)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get(echo.HeaderLocation))

	cleared := sessionCookie(t, rec)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// The old token no longer restores.
	req = httptest.NewRequest(http.MethodGet, "/secrets", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}
