package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"shopfront/api/internal/ids"
	"shopfront/api/internal/models"
	"shopfront/api/internal/oauth"
	"shopfront/api/internal/repository"
	"shopfront/api/internal/security"
)

// AuthService orchestrates credential and session flows. It holds no state
// of its own; the single-active-session invariant lives in the accounts
// store as one nullable refresh-token hash per row.
type AuthService struct {
	accounts repository.AccountStore
	links    repository.OAuthLinkStore
	signer   *security.TokenSigner
	cipher   *security.TokenCipher
	log      zerolog.Logger
}

func NewAuthService(
	accounts repository.AccountStore,
	links repository.OAuthLinkStore,
	signer *security.TokenSigner,
	cipher *security.TokenCipher,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		links:    links,
		signer:   signer,
		cipher:   cipher,
		log:      log,
	}
}

type RegisterInput struct {
	DisplayName string
	Email       string
	Password    string
}

// AuthResult carries what the HTTP boundary needs for cookie placement.
// RefreshToken is already encrypted for transport; the raw token never
// leaves this package.
type AuthResult struct {
	Account      models.Account
	AccessToken  string
	RefreshToken string
}

// Register creates a customer account. It authenticates nothing: no tokens
// are issued and no session starts.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (models.Account, error) {
	input.Email = normalizeEmail(input.Email)
	if input.Email == "" || input.Password == "" || input.DisplayName == "" {
		return models.Account{}, ErrValidation
	}

	if _, err := s.accounts.FindByEmail(ctx, input.Email); err == nil {
		return models.Account{}, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return models.Account{}, fmt.Errorf("find account: %w", err)
	}

	passwordHash, err := security.HashSecret(input.Password)
	if err != nil {
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account := models.Account{
		ID:           ids.New(),
		Email:        input.Email,
		PasswordHash: passwordHash,
		Role:         models.AccountRoleCustomer,
		DisplayName:  input.DisplayName,
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return models.Account{}, ErrDuplicateEmail
		}
		return models.Account{}, fmt.Errorf("create account: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Msg("account registered")
	return account, nil
}

// Login verifies credentials and starts the account's single session. The
// absent-account and wrong-password cases are indistinguishable to the
// caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	account, err := s.accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, fmt.Errorf("find account: %w", err)
	}

	if len(account.PasswordHash) == 0 {
		// OAuth-only account; it has no password to check.
		return AuthResult{}, ErrInvalidCredentials
	}

	ok, err := security.VerifySecret(password, account.PasswordHash)
	if err != nil || !ok {
		return AuthResult{}, ErrInvalidCredentials
	}

	return s.startSession(ctx, account)
}

// ValidateOAuth resolves an external identity to an account, creating the
// account and its link on first sign-in. Repeat calls with the same
// provider identity always land on the same account; an existing
// credential-based account with the same email is never silently taken
// over — the email check runs before any account creation.
func (s *AuthService) ValidateOAuth(ctx context.Context, identity oauth.Identity) (AuthResult, error) {
	if identity.Provider == "" || identity.ProviderAccountID == "" || identity.Email == "" {
		return AuthResult{}, ErrValidation
	}
	identity.Email = normalizeEmail(identity.Email)

	link, err := s.links.Find(ctx, identity.Provider, identity.ProviderAccountID)
	switch {
	case err == nil:
		account, err := s.accounts.GetByID(ctx, link.AccountID)
		if err != nil {
			return AuthResult{}, fmt.Errorf("load linked account: %w", err)
		}
		return s.startSession(ctx, account)

	case errors.Is(err, repository.ErrOAuthLinkNotFound):
		// fall through to first sign-in

	default:
		return AuthResult{}, fmt.Errorf("find oauth link: %w", err)
	}

	if _, err := s.accounts.FindByEmail(ctx, identity.Email); err == nil {
		return AuthResult{}, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrAccountNotFound) {
		return AuthResult{}, fmt.Errorf("find account: %w", err)
	}

	account := models.Account{
		ID:          ids.New(),
		Email:       identity.Email,
		Role:        models.AccountRoleCustomer,
		DisplayName: identity.Name,
	}
	if identity.AvatarURL != "" {
		account.AvatarURL = &identity.AvatarURL
	}

	newLink := models.OAuthLink{
		ID:                ids.New(),
		AccountID:         account.ID,
		Provider:          identity.Provider,
		ProviderAccountID: identity.ProviderAccountID,
	}
	if identity.RefreshToken != "" {
		newLink.ProviderRefreshToken = &identity.RefreshToken
	}

	if err := s.links.CreateWithAccount(ctx, account, newLink); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return AuthResult{}, ErrDuplicateEmail
		}
		return AuthResult{}, fmt.Errorf("create account with link: %w", err)
	}

	s.log.Info().
		Str("account_id", account.ID).
		Str("provider", identity.Provider).
		Msg("oauth account linked")

	return s.startSession(ctx, account)
}

// Refresh validates a presented (encrypted) refresh token and rotates it:
// a new refresh token replaces the stored hash atomically, so the presented
// one is single-use. Every check fails closed.
func (s *AuthService) Refresh(ctx context.Context, encryptedToken string) (AuthResult, error) {
	if encryptedToken == "" {
		return AuthResult{}, ErrMissingToken
	}

	rawToken, err := s.cipher.Decrypt(encryptedToken)
	if err != nil {
		return AuthResult{}, ErrInvalidToken
	}

	claims, err := s.signer.Verify(rawToken, security.PurposeRefresh)
	if err != nil {
		return AuthResult{}, ErrInvalidOrExpired
	}

	account, err := s.accounts.GetByID(ctx, claims.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return AuthResult{}, ErrAccountNotFound
		}
		return AuthResult{}, fmt.Errorf("load account: %w", err)
	}

	if len(account.RefreshTokenHash) == 0 {
		return AuthResult{}, ErrNoActiveSession
	}

	ok, err := security.VerifySecret(rawToken, account.RefreshTokenHash)
	if err != nil {
		return AuthResult{}, fmt.Errorf("verify refresh hash: %w", err)
	}
	if !ok {
		return AuthResult{}, ErrRefreshTokenMismatch
	}

	accessToken, err := s.signer.Sign(account.ID, account.Email, string(account.Role), security.PurposeAccess)
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign access token: %w", err)
	}
	nextToken, err := s.signer.Sign(account.ID, account.Email, string(account.Role), security.PurposeRefresh)
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign refresh token: %w", err)
	}
	nextHash, err := security.HashSecret(nextToken)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash refresh token: %w", err)
	}

	// Compare-and-swap against the hash just verified. If a concurrent
	// refresh or login rotated first, the presented token is already dead.
	if err := s.accounts.SwapRefreshHash(ctx, account.ID, account.RefreshTokenHash, nextHash); err != nil {
		if errors.Is(err, repository.ErrStaleRefreshHash) {
			return AuthResult{}, ErrRefreshTokenMismatch
		}
		return AuthResult{}, fmt.Errorf("rotate refresh hash: %w", err)
	}

	encrypted, err := s.cipher.Encrypt(nextToken)
	if err != nil {
		return AuthResult{}, fmt.Errorf("encrypt refresh token: %w", err)
	}

	return AuthResult{
		Account:      account,
		AccessToken:  accessToken,
		RefreshToken: encrypted,
	}, nil
}

// Logout drops the stored refresh-token hash. Calling it with no active
// session is a no-op.
func (s *AuthService) Logout(ctx context.Context, accountID string) error {
	if err := s.accounts.SetRefreshHash(ctx, accountID, nil); err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil
		}
		return fmt.Errorf("clear refresh hash: %w", err)
	}
	return nil
}

// startSession mints the access/refresh pair for the account and replaces
// whatever refresh hash was stored before. This is the rotation point for
// login and OAuth validation.
func (s *AuthService) startSession(ctx context.Context, account models.Account) (AuthResult, error) {
	accessToken, err := s.signer.Sign(account.ID, account.Email, string(account.Role), security.PurposeAccess)
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign access token: %w", err)
	}

	refreshToken, err := s.signer.Sign(account.ID, account.Email, string(account.Role), security.PurposeRefresh)
	if err != nil {
		return AuthResult{}, fmt.Errorf("sign refresh token: %w", err)
	}

	refreshHash, err := security.HashSecret(refreshToken)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hash refresh token: %w", err)
	}

	if err := s.accounts.SetRefreshHash(ctx, account.ID, refreshHash); err != nil {
		return AuthResult{}, fmt.Errorf("store refresh hash: %w", err)
	}

	encrypted, err := s.cipher.Encrypt(refreshToken)
	if err != nil {
		return AuthResult{}, fmt.Errorf("encrypt refresh token: %w", err)
	}

	return AuthResult{
		Account:      account,
		AccessToken:  accessToken,
		RefreshToken: encrypted,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
