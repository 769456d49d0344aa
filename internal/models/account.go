package models

import "time"

type AccountRole string

const (
	AccountRoleAdmin    AccountRole = "ADMIN"
	AccountRoleCustomer AccountRole = "CUSTOMER"
)

// Account is the identity record. PasswordHash is nil for accounts created
// through an OAuth provider. RefreshTokenHash holds the argon2id digest of
// the single active refresh token, or nil when no session is live; every
// login, OAuth validation, and refresh rotation replaces it whole.
type Account struct {
	ID               string
	Email            string
	PasswordHash     []byte
	RefreshTokenHash []byte
	Role             AccountRole
	DisplayName      string
	AvatarURL        *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// OAuthLink ties a provider identity to an account. Created once on the
// first successful external sign-in, read thereafter, never rewritten.
// (Provider, ProviderAccountID) is unique.
type OAuthLink struct {
	ID                   string
	AccountID            string
	Provider             string
	ProviderAccountID    string
	ProviderRefreshToken *string
	CreatedAt            time.Time
}
