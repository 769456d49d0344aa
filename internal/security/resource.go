package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// SignResourceURL produces an expiring HMAC signature over a media object
// key, used to build tamper-proof delivery URLs.
func SignResourceURL(secret string, objectKey string, expiresAt time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join([]string{objectKey, strconv.FormatInt(expiresAt.Unix(), 10)}, ":")))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func VerifyResourceURL(secret string, objectKey string, expiresAt time.Time, signature string) bool {
	if time.Now().After(expiresAt) {
		return false
	}
	expected := SignResourceURL(secret, objectKey, expiresAt)
	return hmac.Equal([]byte(signature), []byte(expected))
}
