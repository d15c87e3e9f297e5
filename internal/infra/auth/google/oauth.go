// Package google implements the federated login adapter for Google.
package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"whisper/config"
	"whisper/internal/domain/entity"
	domainerrors "whisper/internal/domain/errors"
	"whisper/internal/domain/service"

	"github.com/pkg/errors"
	"google.golang.org/api/idtoken"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"
)

// OAuthService exchanges Google authorization codes for verified profiles.
// The subject identity comes from the signed ID token, not the userinfo
// endpoint, so a compromised access token cannot forge an identity.
type OAuthService struct {
	clientID     string
	clientSecret string
	redirectURI  string
	scopes       string

	httpClient *http.Client
	// validate is swappable in tests; defaults to idtoken.Validate.
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// NewOAuthService creates a Google OAuth service from static client
// registration config.
func NewOAuthService(cfg *config.Config) service.OAuthService {
	return &OAuthService{
		clientID:     cfg.GoogleOAuth.ClientID,
		clientSecret: cfg.GoogleOAuth.ClientSecret,
		redirectURI:  cfg.GoogleOAuth.RedirectURI,
		scopes:       cfg.GoogleOAuth.Scopes,
		httpClient:   &http.Client{},
		validate:     idtoken.Validate,
	}
}

// Provider returns the identity provider this service talks to.
func (s *OAuthService) Provider() entity.Provider {
	return entity.ProviderGoogle
}

// BuildAuthorizationURL constructs the Google authorization URL carrying the
// given CSRF state.
func (s *OAuthService) BuildAuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("redirect_uri", s.redirectURI)
	params.Set("scope", s.scopes)
	params.Set("response_type", "code")
	params.Set("state", state)

	return googleAuthURL + "?" + params.Encode()
}

// Exchange trades an authorization code for a verified profile. The ID token
// returned by the token endpoint is validated against our client ID before
// any claim is trusted.
func (s *OAuthService) Exchange(ctx context.Context, code string) (*service.OAuthProfile, error) {
	idToken, err := s.exchangeCode(ctx, code)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrUpstreamAuth, err.Error())
	}

	payload, err := s.validate(ctx, idToken, s.clientID)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrUpstreamAuth, "validate google id token: "+err.Error())
	}

	return profileFromClaims(payload.Claims), nil
}

func (s *OAuthService) exchangeCode(ctx context.Context, code string) (string, error) {
	data := url.Values{}
	data.Set("client_id", s.clientID)
	data.Set("client_secret", s.clientSecret)
	data.Set("code", code)
	data.Set("grant_type", "authorization_code")
	data.Set("redirect_uri", s.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleTokenURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", errors.Wrap(err, "create google token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "exchange google authorization code")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return "", errors.Errorf("google token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		IDToken     string `json:"id_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", errors.Wrap(err, "decode google token response")
	}
	if tokenResponse.IDToken == "" {
		return "", errors.New("google token response missing id_token")
	}

	return tokenResponse.IDToken, nil
}

func profileFromClaims(claims map[string]any) *service.OAuthProfile {
	profile := &service.OAuthProfile{
		Provider: entity.ProviderGoogle,
	}

	if sub, ok := claims["sub"].(string); ok {
		profile.SubjectID = sub
	}
	if email, ok := claims["email"].(string); ok {
		profile.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		profile.Name = name
	}
	if picture, ok := claims["picture"].(string); ok {
		profile.AvatarURL = picture
	}
	if verified, ok := claims["email_verified"].(bool); ok {
		profile.EmailVerified = verified
	}

	return profile
}
