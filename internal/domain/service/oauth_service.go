package service

import (
	"context"

	"whisper/internal/domain/entity"
)

// OAuthProfile is the verified identity a provider vouches for after a
// successful code exchange. SubjectID is the only field the resolver
// needs; the rest is optional profile metadata.
type OAuthProfile struct {
	SubjectID     string          // Provider-specific stable user ID (e.g., Google's 'sub' claim).
	Email         string          // Email address, when the provider shares it.
	Name          string          // Display name.
	Provider      entity.Provider // Which provider vouched for this profile.
	AvatarURL     string          // URL to the profile picture, if any.
	EmailVerified bool            // Whether the provider verified the email.
}

// OAuthService is the single capability all federated strategies share:
// turn an authorization callback into a verified (provider, subject id)
// pair. The network exchange with the provider lives behind this interface.
type OAuthService interface {
	// Provider returns the identity provider this service talks to.
	Provider() entity.Provider

	// BuildAuthorizationURL constructs the provider's authorization URL
	// carrying the given CSRF state.
	BuildAuthorizationURL(state string) string

	// Exchange trades an authorization code for a verified profile.
	// Any failure in the exchange or profile fetch is an upstream auth failure.
	Exchange(ctx context.Context, code string) (*OAuthProfile, error)
}
