package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/api/internal/security"
)

func TestHashSecret_RoundTrip(t *testing.T) {
	digest, err := security.HashSecret("correct horse battery staple")
	require.NoError(t, err)
	assert.Contains(t, string(digest), "$argon2id$v=19$")

	ok, err := security.VerifySecret("correct horse battery staple", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHashSecret_SaltedPerCall(t *testing.T) {
	first, err := security.HashSecret("same secret")
	require.NoError(t, err)
	second, err := security.HashSecret("same secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	for _, digest := range [][]byte{first, second} {
		ok, err := security.VerifySecret("same secret", digest)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestVerifySecret_WrongSecret(t *testing.T) {
	digest, err := security.HashSecret("the real one")
	require.NoError(t, err)

	ok, err := security.VerifySecret("a wrong guess", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySecret_LongInput(t *testing.T) {
	// Refresh tokens are hashed with the same code path as passwords, and a
	// serialized JWT is far longer than any password.
	long := make([]byte, 600)
	for i := range long {
		long[i] = byte('a' + i%26)
	}

	digest, err := security.HashSecret(string(long))
	require.NoError(t, err)

	ok, err := security.VerifySecret(string(long), digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = security.VerifySecret(string(long[:599]), digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifySecret_MalformedDigest(t *testing.T) {
	tests := []struct {
		name   string
		digest string
	}{
		{name: "empty", digest: ""},
		{name: "not argon2id", digest: "$bcrypt$whatever"},
		{name: "missing sections", digest: "$argon2id$v=19$t=3,m=65536,p=2"},
		{name: "bad base64 salt", digest: "$argon2id$v=19$t=3,m=65536,p=2$!!!$aGFzaA=="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := security.VerifySecret("anything", []byte(tt.digest))
			assert.Error(t, err)
			assert.False(t, ok)
		})
	}
}
