package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
)

// Config holds the master key used to protect secrets at rest.
type Config struct {
	MasterKey string `env:"TWOFACTOR_MASTER_KEY,required"` // Base64 encoded 32-byte key
}

// Sealer encrypts values with AES-256-GCM under keys derived per scope
// (typically a user ID) from a single master key. The scope is also bound as
// additional authenticated data, so a ciphertext copied to another user's
// row fails to open.
type Sealer struct {
	master []byte
}

// NewSealer creates a Sealer. The key is copied.
func NewSealer(masterKey []byte) (*Sealer, error) {
	if len(masterKey) != KeySize {
		return nil, ErrInvalidMasterKey
	}
	return &Sealer{master: append([]byte(nil), masterKey...)}, nil
}

// NewSealerFromConfig decodes the configured master key.
func NewSealerFromConfig(cfg Config) (*Sealer, error) {
	key, err := DecodeKey(cfg.MasterKey)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)
	return NewSealer(key)
}

// Seal encrypts plaintext for scope. Output format: nonce || ciphertext || tag.
func (s *Sealer) Seal(scope string, plaintext []byte) ([]byte, error) {
	aead, err := s.aead(scope)
	if err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrEncryptionFailed, err)
	}

	return aead.Seal(nonce, nonce, plaintext, []byte(scope)), nil
}

// Open reverses Seal. The returned slice should be cleared by the caller
// once used.
func (s *Sealer) Open(scope string, ciphertext []byte) ([]byte, error) {
	aead, err := s.aead(scope)
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}

	nonceSize := aead.NonceSize()
	if len(ciphertext) < nonceSize+aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}
	nonce, body := ciphertext[:nonceSize], ciphertext[nonceSize:]

	plaintext, err := aead.Open(nil, nonce, body, []byte(scope))
	if err != nil {
		return nil, errors.Join(ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

// Digest returns a hex HMAC-SHA256 of value under a scope-derived key.
// Equal inputs give equal digests, which makes it usable as a lookup key for
// low-entropy values such as backup codes.
func (s *Sealer) Digest(scope, value string) (string, error) {
	if scope == "" {
		return "", ErrMissingScope
	}
	key, err := deriveKey(s.master, scope, infoDigest)
	if err != nil {
		return "", err
	}
	defer clearBytes(key)

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil)), nil
}

func (s *Sealer) aead(scope string) (cipher.AEAD, error) {
	if scope == "" {
		return nil, ErrMissingScope
	}
	key, err := deriveKey(s.master, scope, infoSeal)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
