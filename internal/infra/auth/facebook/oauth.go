// Package facebook implements the federated login adapter for Facebook.
package facebook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"whisper/config"
	"whisper/internal/domain/entity"
	domainerrors "whisper/internal/domain/errors"
	"whisper/internal/domain/service"

	"github.com/pkg/errors"
)

const (
	facebookAuthURL  = "https://www.facebook.com/v18.0/dialog/oauth"
	facebookTokenURL = "https://graph.facebook.com/v18.0/oauth/access_token"
	facebookMeURL    = "https://graph.facebook.com/v18.0/me"
)

// OAuthService exchanges Facebook authorization codes for verified profiles
// through the Graph API.
type OAuthService struct {
	clientID     string
	clientSecret string
	redirectURI  string
	scopes       string

	httpClient *http.Client
	// baseURLs are swappable in tests.
	tokenURL string
	meURL    string
}

// NewOAuthService creates a Facebook OAuth service from static client
// registration config.
func NewOAuthService(cfg *config.Config) service.OAuthService {
	return &OAuthService{
		clientID:     cfg.FacebookOAuth.ClientID,
		clientSecret: cfg.FacebookOAuth.ClientSecret,
		redirectURI:  cfg.FacebookOAuth.RedirectURI,
		scopes:       cfg.FacebookOAuth.Scopes,
		httpClient:   &http.Client{},
		tokenURL:     facebookTokenURL,
		meURL:        facebookMeURL,
	}
}

// Provider returns the identity provider this service talks to.
func (s *OAuthService) Provider() entity.Provider {
	return entity.ProviderFacebook
}

// BuildAuthorizationURL constructs the Facebook authorization URL carrying
// the given CSRF state.
func (s *OAuthService) BuildAuthorizationURL(state string) string {
	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("redirect_uri", s.redirectURI)
	params.Set("scope", s.scopes)
	params.Set("response_type", "code")
	params.Set("state", state)

	return facebookAuthURL + "?" + params.Encode()
}

// Exchange trades an authorization code for a verified profile. The profile
// is fetched from the Graph API with the freshly issued access token, so the
// subject id is the one Facebook vouches for.
func (s *OAuthService) Exchange(ctx context.Context, code string) (*service.OAuthProfile, error) {
	accessToken, err := s.exchangeCode(ctx, code)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrUpstreamAuth, err.Error())
	}

	profile, err := s.fetchProfile(ctx, accessToken)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrUpstreamAuth, err.Error())
	}

	return profile, nil
}

func (s *OAuthService) exchangeCode(ctx context.Context, code string) (string, error) {
	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("client_secret", s.clientSecret)
	params.Set("code", code)
	params.Set("redirect_uri", s.redirectURI)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.tokenURL+"?"+params.Encode(), nil)
	if err != nil {
		return "", errors.Wrap(err, "create facebook token request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "exchange facebook authorization code")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return "", errors.Errorf("facebook token exchange failed with status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResponse struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResponse); err != nil {
		return "", errors.Wrap(err, "decode facebook token response")
	}
	if tokenResponse.AccessToken == "" {
		return "", errors.New("facebook token response missing access_token")
	}

	return tokenResponse.AccessToken, nil
}

func (s *OAuthService) fetchProfile(ctx context.Context, accessToken string) (*service.OAuthProfile, error) {
	params := url.Values{}
	params.Set("fields", "id,name,email,picture")
	params.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.meURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "create facebook profile request")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch facebook profile")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		return nil, errors.Errorf("facebook profile request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var fbUser struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Picture struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fbUser); err != nil {
		return nil, errors.Wrap(err, "decode facebook profile response")
	}
	if fbUser.ID == "" {
		return nil, errors.New("facebook profile response missing id")
	}

	return &service.OAuthProfile{
		SubjectID: fbUser.ID,
		Email:     fbUser.Email,
		Name:      fbUser.Name,
		Provider:  entity.ProviderFacebook,
		AvatarURL: fbUser.Picture.Data.URL,
		// Facebook only returns email when the account has a confirmed one.
		EmailVerified: fbUser.Email != "",
	}, nil
}
