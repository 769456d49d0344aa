package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrDecryptFailed covers every decryption failure: malformed framing,
// truncated ciphertext, or a ciphertext produced under a different key.
// Callers get no more detail than that.
var ErrDecryptFailed = errors.New("refresh token decryption failed")

// TokenCipher wraps refresh tokens for cookie transport. AES-256-GCM with a
// fresh random nonce per call; the nonce travels with the ciphertext as
// hex(nonce):hex(sealed), so decryption needs no out-of-band state.
type TokenCipher struct {
	aead cipher.AEAD
}

// NewTokenCipher takes a hex-encoded 32-byte key. The key is dedicated to
// transport encryption and independent of the JWT signing secrets.
func NewTokenCipher(keyHex string) (*TokenCipher, error) {
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("decode cipher key: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("cipher key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("init gcm: %w", err)
	}

	return &TokenCipher{aead: aead}, nil
}

func (c *TokenCipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	sealed := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(sealed), nil
}

func (c *TokenCipher) Decrypt(ciphertext string) (string, error) {
	nonceHex, sealedHex, found := strings.Cut(ciphertext, ":")
	if !found {
		return "", ErrDecryptFailed
	}

	nonce, err := hex.DecodeString(nonceHex)
	if err != nil || len(nonce) != c.aead.NonceSize() {
		return "", ErrDecryptFailed
	}
	sealed, err := hex.DecodeString(sealedHex)
	if err != nil {
		return "", ErrDecryptFailed
	}

	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}
	return string(plaintext), nil
}
