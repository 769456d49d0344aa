package security_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"shopfront/api/internal/security"
)

func TestResourceURL_Signature(t *testing.T) {
	expires := time.Now().Add(time.Hour)
	sig := security.SignResourceURL("url-secret", "media/acct/photo.png", expires)

	assert.True(t, security.VerifyResourceURL("url-secret", "media/acct/photo.png", expires, sig))
	assert.False(t, security.VerifyResourceURL("url-secret", "media/acct/other.png", expires, sig))
	assert.False(t, security.VerifyResourceURL("wrong-secret", "media/acct/photo.png", expires, sig))
	assert.False(t, security.VerifyResourceURL("url-secret", "media/acct/photo.png", expires.Add(time.Minute), sig))
}

func TestResourceURL_Expired(t *testing.T) {
	expires := time.Now().Add(-time.Minute)
	sig := security.SignResourceURL("url-secret", "media/acct/photo.png", expires)

	assert.False(t, security.VerifyResourceURL("url-secret", "media/acct/photo.png", expires, sig))
}
