package secrets

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// KeySize is the required master key size (256 bits for AES-256).
	KeySize = 32

	// Domain separation labels for HKDF.
	infoSeal   = "twofactor-seal-v1"
	infoDigest = "twofactor-digest-v1"
)

// GenerateKey returns a new random 32-byte master key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, errors.Join(ErrKeyGenerationFailed, err)
	}
	return key, nil
}

// GenerateEncodedKey returns a new master key as standard Base64, suitable
// for the TWOFACTOR_MASTER_KEY environment variable.
func GenerateEncodedKey() (string, error) {
	key, err := GenerateKey()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(key), nil
}

// DecodeKey parses a Base64 master key and checks its length.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, errors.Join(ErrInvalidMasterKey, err)
	}
	if len(key) != KeySize {
		clearBytes(key)
		return nil, ErrInvalidMasterKey
	}
	return key, nil
}

// deriveKey expands the master key into a scope-bound subkey.
// The caller is responsible for clearing the returned key.
func deriveKey(master []byte, scope, info string) ([]byte, error) {
	r := hkdf.New(sha256.New, master, []byte(scope), []byte(info))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, errors.Join(ErrKeyDerivationFailed, err)
	}
	return key, nil
}

// clearBytes zeros out a byte slice holding key material.
func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
