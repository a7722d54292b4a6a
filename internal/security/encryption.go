package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// sealedPrefix marks a stored value as sealed by a TokenSealer
const sealedPrefix = "sealed:v1:"

// ErrWrongKey is returned when a sealed value cannot be opened with the configured key
var ErrWrongKey = errors.New("stored value was sealed with a different key")

// TokenSealer protects credentials persisted in the local session store with AES-256-GCM
type TokenSealer struct {
	gcm cipher.AEAD
}

// NewTokenSealer derives a 32-byte AES-256 key from the configured passphrase
func NewTokenSealer(passphrase string) (*TokenSealer, error) {
	if strings.TrimSpace(passphrase) == "" {
		return nil, fmt.Errorf("passphrase must not be empty")
	}

	key := sha256.Sum256([]byte(passphrase))

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &TokenSealer{gcm: gcm}, nil
}

// IsSealed reports whether a stored value carries the sealed marker
func IsSealed(value string) bool {
	return strings.HasPrefix(value, sealedPrefix)
}

// Seal encrypts a value for storage. Empty values stay empty.
func (s *TokenSealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	nonce := make([]byte, s.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	ciphertext := s.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return sealedPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open decrypts a stored value. Values without the sealed marker were written before
// sealing was enabled and are returned unchanged.
func (s *TokenSealer) Open(stored string) (string, error) {
	if !IsSealed(stored) {
		return stored, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, sealedPrefix))
	if err != nil {
		return "", fmt.Errorf("failed to decode base64: %w", err)
	}

	nonceSize := s.gcm.NonceSize()
	if len(data) < nonceSize {
		return "", fmt.Errorf("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrWrongKey
	}

	return string(plaintext), nil
}
