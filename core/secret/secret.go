// Package secret seals profile API keys with age so they never rest in plaintext
// in the version store.
package secret

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// Sealer encrypts and decrypts credentials with one X25519 identity.
type Sealer struct {
	identity *age.X25519Identity
}

// NewSealer wraps an existing identity.
func NewSealer(identity *age.X25519Identity) *Sealer {
	return &Sealer{identity: identity}
}

// Generate creates a sealer with a fresh identity.
func Generate() (*Sealer, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("failed to generate identity: %w", err)
	}
	return NewSealer(identity), nil
}

// LoadOrCreate reads the identity at path, generating and writing one if the file
// does not exist.
func LoadOrCreate(path string) (*Sealer, error) {
	s, err := Load(path)
	if err == nil {
		return s, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	s, err = Generate()
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create identity directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(s.identity.String()+"\n"), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write identity: %w", err)
	}
	return s, nil
}

// Load reads the identity file at path.
func Load(path string) (*Sealer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read identity: %w", err)
	}
	identities, err := age.ParseIdentities(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse identity: %w", err)
	}
	for _, id := range identities {
		if x, ok := id.(*age.X25519Identity); ok {
			return NewSealer(x), nil
		}
	}
	return nil, fmt.Errorf("no X25519 identity in %s", path)
}

// Recipient returns the public recipient string.
func (s *Sealer) Recipient() string {
	return s.identity.Recipient().String()
}

// Seal encrypts plaintext and returns ASCII-armored ciphertext.
func (s *Sealer) Seal(plaintext string) (string, error) {
	var buf bytes.Buffer
	aw := armor.NewWriter(&buf)

	w, err := age.Encrypt(aw, s.identity.Recipient())
	if err != nil {
		return "", fmt.Errorf("failed to create encrypted writer: %w", err)
	}
	if _, err := io.WriteString(w, plaintext); err != nil {
		return "", fmt.Errorf("failed to encrypt credential: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize encryption: %w", err)
	}
	if err := aw.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize armor: %w", err)
	}
	return buf.String(), nil
}

// Open decrypts armored ciphertext produced by Seal.
func (s *Sealer) Open(sealed string) (string, error) {
	if strings.TrimSpace(sealed) == "" {
		return "", errors.New("empty credential")
	}
	r, err := age.Decrypt(armor.NewReader(strings.NewReader(sealed)), s.identity)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt credential: %w", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read decrypted credential: %w", err)
	}
	return string(out), nil
}
