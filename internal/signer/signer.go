// Package signer implements the Ed25519 key generation, loading,
// signing, and verification primitives (spec §4.1, component C1).
package signer

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"os"
	"strings"

	"github.com/LinusChen-yf/adeploy/internal/apperrors"
)

// Signer wraps a loaded Ed25519 private key.
type Signer struct {
	priv ed25519.PrivateKey
}

// Generate samples a fresh Ed25519 key pair and writes 32 raw private-key
// bytes to privPath and the base64 of the 32 public-key bytes to pubPath.
func Generate(pubPath, privPath string) error {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return apperrors.WrapAuth(err, "failed to generate ed25519 key pair")
	}

	seed := priv.Seed() // 32 raw bytes
	if err := os.WriteFile(privPath, seed, 0600); err != nil {
		return apperrors.WrapFileSystem(err, "failed to write private key to '%s'", privPath)
	}

	encodedPub := []byte(base64.StdEncoding.EncodeToString(pub))
	if err := os.WriteFile(pubPath, encodedPub, 0644); err != nil {
		return apperrors.WrapFileSystem(err, "failed to write public key to '%s'", pubPath)
	}
	return nil
}

// LoadSigner reads exactly 32 raw private-key-seed bytes from privPath.
func LoadSigner(privPath string) (*Signer, error) {
	raw, err := os.ReadFile(privPath)
	if err != nil {
		return nil, apperrors.WrapFileSystem(err, "failed to read private key file '%s'", privPath)
	}
	if len(raw) != ed25519.SeedSize {
		return nil, apperrors.NewAuth("invalid private key length: expected %d bytes, got %d", ed25519.SeedSize, len(raw))
	}
	return &Signer{priv: ed25519.NewKeyFromSeed(raw)}, nil
}

// LoadPublicKey reads a whitespace-trimmed base64 public key string
// suitable for transport and allow-list comparison.
func LoadPublicKey(pubPath string) (string, error) {
	raw, err := os.ReadFile(pubPath)
	if err != nil {
		return "", apperrors.WrapFileSystem(err, "failed to read public key file '%s'", pubPath)
	}
	return strings.TrimSpace(string(raw)), nil
}

// PublicKeyBase64 returns the base64-encoded public key for this signer.
func (s *Signer) PublicKeyBase64() string {
	pub := s.priv.Public().(ed25519.PublicKey)
	return base64.StdEncoding.EncodeToString(pub)
}

// Sign produces a 64-byte Ed25519 signature over data.
func (s *Signer) Sign(data []byte) []byte {
	return ed25519.Sign(s.priv, data)
}

// Verify decodes the base64 public key and checks sig over data.
// A malformed key is an AuthError; a mismatched signature returns false,
// not an error.
func Verify(pubKeyB64 string, data, sig []byte) (bool, error) {
	pub, err := base64.StdEncoding.DecodeString(strings.TrimSpace(pubKeyB64))
	if err != nil {
		return false, apperrors.WrapAuth(err, "malformed public key")
	}
	if len(pub) != ed25519.PublicKeySize {
		return false, apperrors.NewAuth("invalid public key length: expected %d bytes, got %d", ed25519.PublicKeySize, len(pub))
	}
	return ed25519.Verify(ed25519.PublicKey(pub), data, sig), nil
}
