package oauth

import "context"

// Identity is the provider-agnostic profile the auth service consumes. Each
// provider implementation is responsible for mapping its raw profile payload
// into this shape; nothing downstream knows provider specifics.
type Identity struct {
	Provider          string
	ProviderAccountID string
	Email             string
	Name              string
	AvatarURL         string
	// RefreshToken is the provider-issued refresh token, stored opaquely on
	// the link row when present.
	RefreshToken string
}

// Provider drives an authorization-code sign-in flow.
type Provider interface {
	Name() string
	// AuthCodeURL builds the redirect URL for the provider's consent screen.
	// The state value is round-tripped and must be checked on return.
	AuthCodeURL(state string) string
	// Exchange trades the authorization code for the provider's tokens and
	// resolves the external identity.
	Exchange(ctx context.Context, code string) (Identity, error)
}
