package security_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/api/internal/security"
)

func newTestSigner() *security.TokenSigner {
	return security.NewTokenSigner("access-secret", "refresh-secret", 15*time.Minute, 720*time.Hour)
}

func TestTokenSigner_RoundTrip(t *testing.T) {
	signer := newTestSigner()

	for _, purpose := range []security.TokenPurpose{security.PurposeAccess, security.PurposeRefresh} {
		t.Run(string(purpose), func(t *testing.T) {
			token, err := signer.Sign("acct_1", "user@example.com", "CUSTOMER", purpose)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			claims, err := signer.Verify(token, purpose)
			require.NoError(t, err)
			assert.Equal(t, "acct_1", claims.AccountID)
			assert.Equal(t, "user@example.com", claims.Email)
			assert.Equal(t, "CUSTOMER", claims.Role)
			assert.Equal(t, "acct_1", claims.Subject)
			assert.NotEmpty(t, claims.ID)
		})
	}
}

func TestTokenSigner_PurposeConfusion(t *testing.T) {
	signer := newTestSigner()

	access, err := signer.Sign("acct_1", "user@example.com", "CUSTOMER", security.PurposeAccess)
	require.NoError(t, err)
	refresh, err := signer.Sign("acct_1", "user@example.com", "CUSTOMER", security.PurposeRefresh)
	require.NoError(t, err)

	_, err = signer.Verify(access, security.PurposeRefresh)
	assert.ErrorIs(t, err, security.ErrInvalidToken)

	_, err = signer.Verify(refresh, security.PurposeAccess)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestTokenSigner_Expiry(t *testing.T) {
	signer := security.NewTokenSigner("access-secret", "refresh-secret", -time.Minute, -time.Minute)

	token, err := signer.Sign("acct_1", "user@example.com", "CUSTOMER", security.PurposeAccess)
	require.NoError(t, err)

	_, err = signer.Verify(token, security.PurposeAccess)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestTokenSigner_Tampered(t *testing.T) {
	signer := newTestSigner()

	token, err := signer.Sign("acct_1", "user@example.com", "CUSTOMER", security.PurposeAccess)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = signer.Verify(tampered, security.PurposeAccess)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestTokenSigner_ForeignSecret(t *testing.T) {
	signer := newTestSigner()
	other := security.NewTokenSigner("different", "different", 15*time.Minute, 720*time.Hour)

	token, err := other.Sign("acct_1", "user@example.com", "CUSTOMER", security.PurposeAccess)
	require.NoError(t, err)

	_, err = signer.Verify(token, security.PurposeAccess)
	assert.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestTokenSigner_Garbage(t *testing.T) {
	signer := newTestSigner()

	for _, input := range []string{"", "not.a.jwt", "a.b"} {
		_, err := signer.Verify(input, security.PurposeAccess)
		assert.ErrorIs(t, err, security.ErrInvalidToken)
	}
}

func TestTokenSigner_UniquePerMint(t *testing.T) {
	signer := newTestSigner()

	// Rotation depends on a fresh refresh token replacing the old bytes even
	// when both are minted within the same second.
	first, err := signer.Sign("acct_1", "user@example.com", "CUSTOMER", security.PurposeRefresh)
	require.NoError(t, err)
	second, err := signer.Sign("acct_1", "user@example.com", "CUSTOMER", security.PurposeRefresh)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
