// Package keys implements core.KeyProvider with ed25519 key pairs encoded as
// checksummed base58 strings.
package keys

import (
	"bytes"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"

	"github.com/aretw0/custody/pkg/core"
)

// Text prefixes. They make public and private keys visibly different and
// are covered by the checksum.
const (
	publicPrefix  byte = 0x30
	privatePrefix byte = 0x90
)

const checksumLength = 4

var (
	ErrChecksumMismatch = errors.New("key checksum mismatch")
	ErrInvalidKey       = errors.New("key is invalid")
)

// Provider generates ed25519 key pairs.
type Provider struct {
	random io.Reader
}

// New returns a Provider reading entropy from crypto/rand.
func New() *Provider {
	return &Provider{random: rand.Reader}
}

// NewWithReader returns a Provider reading entropy from r. Intended for tests.
func NewWithReader(r io.Reader) *Provider {
	return &Provider{random: r}
}

// GenerateKeypair implements core.KeyProvider.
func (p *Provider) GenerateKeypair() (core.KeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(p.random)
	if err != nil {
		return core.KeyPair{}, fmt.Errorf("ed25519: %w", err)
	}
	return core.KeyPair{
		PublicKey:  encode(publicPrefix, pub),
		PrivateKey: encode(privatePrefix, priv.Seed()),
	}, nil
}

// DecodePublicKey parses a public key produced by GenerateKeypair.
func DecodePublicKey(s string) (ed25519.PublicKey, error) {
	raw, err := decode(publicPrefix, s)
	if err != nil {
		return nil, err
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, ErrInvalidKey
	}
	return ed25519.PublicKey(raw), nil
}

// DecodePrivateKey parses a private key produced by GenerateKeypair.
func DecodePrivateKey(s string) (ed25519.PrivateKey, error) {
	raw, err := decode(privatePrefix, s)
	if err != nil {
		return nil, err
	}
	if len(raw) != ed25519.SeedSize {
		return nil, ErrInvalidKey
	}
	return ed25519.NewKeyFromSeed(raw), nil
}

// Matches reports whether the two encoded keys belong to the same pair.
func Matches(publicKey, privateKey string) bool {
	pub, err := DecodePublicKey(publicKey)
	if err != nil {
		return false
	}
	priv, err := DecodePrivateKey(privateKey)
	if err != nil {
		return false
	}
	return bytes.Equal(pub, priv.Public().(ed25519.PublicKey))
}

func encode(prefix byte, key []byte) string {
	packed := append([]byte{prefix}, key...)
	checksum := sha3.Sum256(packed)
	packed = append(packed, checksum[:checksumLength]...)
	return base58.Encode(packed)
}

func decode(prefix byte, s string) ([]byte, error) {
	packed, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	if len(packed) < 1+checksumLength || packed[0] != prefix {
		return nil, ErrInvalidKey
	}
	body := packed[:len(packed)-checksumLength]
	checksum := sha3.Sum256(body)
	if !bytes.Equal(checksum[:checksumLength], packed[len(body):]) {
		return nil, ErrChecksumMismatch
	}
	return body[1:], nil
}

var _ core.KeyProvider = (*Provider)(nil)
