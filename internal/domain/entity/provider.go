// Package entity contains the core business objects of the project.
package entity

// Provider identifies the credential path that produced a proof of identity.
type Provider string

const (
	// ProviderLocal is the username/password strategy.
	ProviderLocal Provider = "local"
	// ProviderGoogle is the Google OAuth2 strategy.
	ProviderGoogle Provider = "google"
	// ProviderFacebook is the Facebook OAuth2 strategy.
	ProviderFacebook Provider = "facebook"
)

// String returns the string representation of the Provider.
func (p Provider) String() string {
	return string(p)
}

// IsValid checks if the Provider is a known value.
func (p Provider) IsValid() bool {
	switch p {
	case ProviderLocal, ProviderGoogle, ProviderFacebook:
		return true
	default:
		return false
	}
}

// Federated reports whether the provider is an external identity source,
// as opposed to the local credential strategy.
func (p Provider) Federated() bool {
	return p == ProviderGoogle || p == ProviderFacebook
}
