package service_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/api/internal/models"
	"shopfront/api/internal/oauth"
	"shopfront/api/internal/repository"
	"shopfront/api/internal/security"
	"shopfront/api/internal/service"
)

const testCipherKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

type fakeAccountStore struct {
	mu       sync.Mutex
	accounts map[string]models.Account
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[string]models.Account)}
}

func (f *fakeAccountStore) Create(_ context.Context, account models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Email == account.Email {
			return repository.ErrDuplicateEmail
		}
	}
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeAccountStore) FindByEmail(_ context.Context, email string) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, account := range f.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return models.Account{}, repository.ErrAccountNotFound
}

func (f *fakeAccountStore) GetByID(_ context.Context, id string) (models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[id]
	if !ok {
		return models.Account{}, repository.ErrAccountNotFound
	}
	return account, nil
}

func (f *fakeAccountStore) SetRefreshHash(_ context.Context, accountID string, hash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return repository.ErrAccountNotFound
	}
	account.RefreshTokenHash = hash
	f.accounts[accountID] = account
	return nil
}

func (f *fakeAccountStore) SwapRefreshHash(_ context.Context, accountID string, oldHash, newHash []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account, ok := f.accounts[accountID]
	if !ok {
		return repository.ErrAccountNotFound
	}
	if !bytes.Equal(account.RefreshTokenHash, oldHash) {
		return repository.ErrStaleRefreshHash
	}
	account.RefreshTokenHash = newHash
	f.accounts[accountID] = account
	return nil
}

type fakeOAuthLinkStore struct {
	mu       sync.Mutex
	links    map[string]models.OAuthLink
	accounts *fakeAccountStore
}

func newFakeOAuthLinkStore(accounts *fakeAccountStore) *fakeOAuthLinkStore {
	return &fakeOAuthLinkStore{links: make(map[string]models.OAuthLink), accounts: accounts}
}

func linkKey(provider, providerAccountID string) string {
	return provider + "/" + providerAccountID
}

func (f *fakeOAuthLinkStore) Find(_ context.Context, provider, providerAccountID string) (models.OAuthLink, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	link, ok := f.links[linkKey(provider, providerAccountID)]
	if !ok {
		return models.OAuthLink{}, repository.ErrOAuthLinkNotFound
	}
	return link, nil
}

func (f *fakeOAuthLinkStore) CreateWithAccount(ctx context.Context, account models.Account, link models.OAuthLink) error {
	if err := f.accounts.Create(ctx, account); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.links[linkKey(link.Provider, link.ProviderAccountID)] = link
	return nil
}

type authFixture struct {
	accounts *fakeAccountStore
	links    *fakeOAuthLinkStore
	signer   *security.TokenSigner
	cipher   *security.TokenCipher
	auth     *service.AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	accounts := newFakeAccountStore()
	links := newFakeOAuthLinkStore(accounts)
	signer := security.NewTokenSigner("access-secret", "refresh-secret", 15*time.Minute, 720*time.Hour)
	cipher, err := security.NewTokenCipher(testCipherKey)
	require.NoError(t, err)

	return &authFixture{
		accounts: accounts,
		links:    links,
		signer:   signer,
		cipher:   cipher,
		auth:     service.NewAuthService(accounts, links, signer, cipher, zerolog.Nop()),
	}
}

func (fx *authFixture) register(t *testing.T, email, password string) models.Account {
	t.Helper()
	account, err := fx.auth.Register(context.Background(), service.RegisterInput{
		DisplayName: "Test User",
		Email:       email,
		Password:    password,
	})
	require.NoError(t, err)
	return account
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		input   service.RegisterInput
		setup   func(fx *authFixture)
		wantErr error
	}{
		{
			name: "successful registration",
			input: service.RegisterInput{
				DisplayName: "New User",
				Email:       "new@example.com",
				Password:    "password123",
			},
		},
		{
			name: "email normalized before uniqueness check",
			input: service.RegisterInput{
				DisplayName: "Shouting User",
				Email:       "  Taken@Example.COM ",
				Password:    "password123",
			},
			setup: func(fx *authFixture) {
				fx.register(t, "taken@example.com", "password123")
			},
			wantErr: service.ErrDuplicateEmail,
		},
		{
			name: "missing password",
			input: service.RegisterInput{
				DisplayName: "No Password",
				Email:       "np@example.com",
			},
			wantErr: service.ErrValidation,
		},
		{
			name: "missing email",
			input: service.RegisterInput{
				DisplayName: "No Email",
				Password:    "password123",
			},
			wantErr: service.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newAuthFixture(t)
			if tt.setup != nil {
				tt.setup(fx)
			}

			account, err := fx.auth.Register(ctx, tt.input)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, account.ID)
			assert.Equal(t, "new@example.com", account.Email)
			assert.Equal(t, models.AccountRoleCustomer, account.Role)
			assert.NotEmpty(t, account.PasswordHash)
			assert.NotEqual(t, tt.input.Password, string(account.PasswordHash))

			// Registration authenticates nothing.
			stored, err := fx.accounts.GetByID(ctx, account.ID)
			require.NoError(t, err)
			assert.Empty(t, stored.RefreshTokenHash)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("successful login starts session", func(t *testing.T) {
		fx := newAuthFixture(t)
		account := fx.register(t, "user@example.com", "password123")

		result, err := fx.auth.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, account.ID, result.Account.ID)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)

		claims, err := fx.signer.Verify(result.AccessToken, security.PurposeAccess)
		require.NoError(t, err)
		assert.Equal(t, account.ID, claims.AccountID)

		// The refresh token in the result is transport-encrypted; its raw
		// form is a verifiable refresh JWT.
		raw, err := fx.cipher.Decrypt(result.RefreshToken)
		require.NoError(t, err)
		_, err = fx.signer.Verify(raw, security.PurposeRefresh)
		require.NoError(t, err)

		stored, err := fx.accounts.GetByID(ctx, account.ID)
		require.NoError(t, err)
		require.NotEmpty(t, stored.RefreshTokenHash)
		ok, err := security.VerifySecret(raw, stored.RefreshTokenHash)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		fx := newAuthFixture(t)
		fx.register(t, "user@example.com", "password123")

		_, errWrongPass := fx.auth.Login(ctx, "user@example.com", "wrong")
		_, errNoAccount := fx.auth.Login(ctx, "ghost@example.com", "password123")

		assert.ErrorIs(t, errWrongPass, service.ErrInvalidCredentials)
		assert.ErrorIs(t, errNoAccount, service.ErrInvalidCredentials)
		assert.Equal(t, errWrongPass.Error(), errNoAccount.Error())
	})

	t.Run("oauth-only account cannot password login", func(t *testing.T) {
		fx := newAuthFixture(t)
		_, err := fx.auth.ValidateOAuth(ctx, oauth.Identity{
			Provider:          "google",
			ProviderAccountID: "sub-1",
			Email:             "social@example.com",
			Name:              "Social User",
		})
		require.NoError(t, err)

		_, err = fx.auth.Login(ctx, "social@example.com", "")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("login replaces previous session", func(t *testing.T) {
		fx := newAuthFixture(t)
		fx.register(t, "user@example.com", "password123")

		first, err := fx.auth.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)
		_, err = fx.auth.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)

		// The first session's refresh token no longer matches the stored hash.
		_, err = fx.auth.Refresh(ctx, first.RefreshToken)
		assert.ErrorIs(t, err, service.ErrRefreshTokenMismatch)
	})
}

func TestAuthService_ValidateOAuth(t *testing.T) {
	ctx := context.Background()

	identity := oauth.Identity{
		Provider:          "google",
		ProviderAccountID: "sub-123",
		Email:             "social@example.com",
		Name:              "Social User",
		AvatarURL:         "https://lh3.example.com/photo.png",
	}

	t.Run("first sign-in creates account and link", func(t *testing.T) {
		fx := newAuthFixture(t)

		result, err := fx.auth.ValidateOAuth(ctx, identity)
		require.NoError(t, err)
		assert.Equal(t, "social@example.com", result.Account.Email)
		assert.Equal(t, models.AccountRoleCustomer, result.Account.Role)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)

		link, err := fx.links.Find(ctx, "google", "sub-123")
		require.NoError(t, err)
		assert.Equal(t, result.Account.ID, link.AccountID)
	})

	t.Run("repeat sign-in reuses the account", func(t *testing.T) {
		fx := newAuthFixture(t)

		first, err := fx.auth.ValidateOAuth(ctx, identity)
		require.NoError(t, err)
		second, err := fx.auth.ValidateOAuth(ctx, identity)
		require.NoError(t, err)

		assert.Equal(t, first.Account.ID, second.Account.ID)
		assert.Len(t, fx.accounts.accounts, 1)
		assert.Len(t, fx.links.links, 1)
	})

	t.Run("existing credential account with same email is not taken over", func(t *testing.T) {
		fx := newAuthFixture(t)
		fx.register(t, "social@example.com", "password123")

		_, err := fx.auth.ValidateOAuth(ctx, identity)
		assert.ErrorIs(t, err, service.ErrDuplicateEmail)

		// No link was created and no account was added.
		_, err = fx.links.Find(ctx, "google", "sub-123")
		assert.ErrorIs(t, err, repository.ErrOAuthLinkNotFound)
		assert.Len(t, fx.accounts.accounts, 1)
	})

	t.Run("incomplete identity rejected", func(t *testing.T) {
		fx := newAuthFixture(t)

		for _, broken := range []oauth.Identity{
			{Provider: "", ProviderAccountID: "sub", Email: "a@b.com"},
			{Provider: "google", ProviderAccountID: "", Email: "a@b.com"},
			{Provider: "google", ProviderAccountID: "sub", Email: ""},
		} {
			_, err := fx.auth.ValidateOAuth(ctx, broken)
			assert.ErrorIs(t, err, service.ErrValidation)
		}
	})
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("valid refresh rotates the token", func(t *testing.T) {
		fx := newAuthFixture(t)
		account := fx.register(t, "user@example.com", "password123")

		session, err := fx.auth.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)

		rotated, err := fx.auth.Refresh(ctx, session.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, account.ID, rotated.Account.ID)
		assert.NotEmpty(t, rotated.AccessToken)
		assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)

		// The presented token is single-use.
		_, err = fx.auth.Refresh(ctx, session.RefreshToken)
		assert.ErrorIs(t, err, service.ErrRefreshTokenMismatch)

		// The rotated token works.
		_, err = fx.auth.Refresh(ctx, rotated.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("missing token", func(t *testing.T) {
		fx := newAuthFixture(t)
		_, err := fx.auth.Refresh(ctx, "")
		assert.ErrorIs(t, err, service.ErrMissingToken)
	})

	t.Run("undecryptable token", func(t *testing.T) {
		fx := newAuthFixture(t)
		_, err := fx.auth.Refresh(ctx, "not-an-encrypted-token")
		assert.ErrorIs(t, err, service.ErrInvalidToken)
	})

	t.Run("decryptable but not a refresh jwt", func(t *testing.T) {
		fx := newAuthFixture(t)
		sealed, err := fx.cipher.Encrypt("garbage")
		require.NoError(t, err)

		_, err = fx.auth.Refresh(ctx, sealed)
		assert.ErrorIs(t, err, service.ErrInvalidOrExpired)
	})

	t.Run("access token wrapped as refresh rejected", func(t *testing.T) {
		fx := newAuthFixture(t)
		fx.register(t, "user@example.com", "password123")
		session, err := fx.auth.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)

		sealed, err := fx.cipher.Encrypt(session.AccessToken)
		require.NoError(t, err)

		_, err = fx.auth.Refresh(ctx, sealed)
		assert.ErrorIs(t, err, service.ErrInvalidOrExpired)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		fx := newAuthFixture(t)
		expiredSigner := security.NewTokenSigner("access-secret", "refresh-secret", 15*time.Minute, -time.Minute)
		token, err := expiredSigner.Sign("acct_1", "user@example.com", "CUSTOMER", security.PurposeRefresh)
		require.NoError(t, err)
		sealed, err := fx.cipher.Encrypt(token)
		require.NoError(t, err)

		_, err = fx.auth.Refresh(ctx, sealed)
		assert.ErrorIs(t, err, service.ErrInvalidOrExpired)
	})

	t.Run("account deleted after token issued", func(t *testing.T) {
		fx := newAuthFixture(t)
		token, err := fx.signer.Sign("gone", "gone@example.com", "CUSTOMER", security.PurposeRefresh)
		require.NoError(t, err)
		sealed, err := fx.cipher.Encrypt(token)
		require.NoError(t, err)

		_, err = fx.auth.Refresh(ctx, sealed)
		assert.ErrorIs(t, err, service.ErrAccountNotFound)
	})

	t.Run("no active session", func(t *testing.T) {
		fx := newAuthFixture(t)
		account := fx.register(t, "user@example.com", "password123")
		session, err := fx.auth.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)

		require.NoError(t, fx.auth.Logout(ctx, account.ID))

		_, err = fx.auth.Refresh(ctx, session.RefreshToken)
		assert.ErrorIs(t, err, service.ErrNoActiveSession)
	})

	t.Run("valid jwt but session belongs to a different token", func(t *testing.T) {
		fx := newAuthFixture(t)
		account := fx.register(t, "user@example.com", "password123")
		_, err := fx.auth.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)

		// Signed with the real secret, but never the one whose hash is stored.
		stray, err := fx.signer.Sign(account.ID, account.Email, string(account.Role), security.PurposeRefresh)
		require.NoError(t, err)
		sealed, err := fx.cipher.Encrypt(stray)
		require.NoError(t, err)

		_, err = fx.auth.Refresh(ctx, sealed)
		assert.ErrorIs(t, err, service.ErrRefreshTokenMismatch)
	})
}

func TestAuthService_RefreshScenario(t *testing.T) {
	// End to end: register, login, refresh, then confirm the old refresh
	// token is dead while the new session keeps working.
	ctx := context.Background()
	fx := newAuthFixture(t)

	account := fx.register(t, "flow@example.com", "password123")

	login, err := fx.auth.Login(ctx, "flow@example.com", "password123")
	require.NoError(t, err)

	refreshed, err := fx.auth.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, login.AccessToken, refreshed.AccessToken)

	claims, err := fx.signer.Verify(refreshed.AccessToken, security.PurposeAccess)
	require.NoError(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
	assert.Equal(t, "flow@example.com", claims.Email)

	_, err = fx.auth.Refresh(ctx, login.RefreshToken)
	assert.ErrorIs(t, err, service.ErrRefreshTokenMismatch)

	_, err = fx.auth.Refresh(ctx, refreshed.RefreshToken)
	require.NoError(t, err)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("clears the session", func(t *testing.T) {
		fx := newAuthFixture(t)
		account := fx.register(t, "user@example.com", "password123")
		_, err := fx.auth.Login(ctx, "user@example.com", "password123")
		require.NoError(t, err)

		require.NoError(t, fx.auth.Logout(ctx, account.ID))

		stored, err := fx.accounts.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.RefreshTokenHash)
	})

	t.Run("idempotent", func(t *testing.T) {
		fx := newAuthFixture(t)
		account := fx.register(t, "user@example.com", "password123")

		require.NoError(t, fx.auth.Logout(ctx, account.ID))
		require.NoError(t, fx.auth.Logout(ctx, account.ID))
		require.NoError(t, fx.auth.Logout(ctx, "never-existed"))
	})
}

func TestIsAuthFailure(t *testing.T) {
	assert.True(t, service.IsAuthFailure(service.ErrInvalidCredentials))
	assert.True(t, service.IsAuthFailure(service.ErrRefreshTokenMismatch))
	assert.False(t, service.IsAuthFailure(context.DeadlineExceeded))
	assert.False(t, service.IsAuthFailure(errors.New("something else")))
}
