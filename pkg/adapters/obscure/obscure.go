// Package obscure provides core.ObscureCodec implementations.
//
// HexCodec is the demo masking: the plaintext is hex encoded and wrapped in
// random padding, so it looks encrypted without being so. SecretboxCodec
// seals the plaintext with NaCl secretbox under a session key, for callers
// that want a real cipher behind the same port.
package obscure

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/nacl/secretbox"

	"github.com/aretw0/custody/pkg/core"
)

// Codec names accepted by ByName.
const (
	NameHex       = "hex"
	NameSecretbox = "secretbox"
)

var (
	ErrMalformedToken = errors.New("malformed obscured token")
	ErrUnknownCodec   = errors.New("unknown codec")
)

// Revealer is implemented by codecs that can undo their own masking.
type Revealer interface {
	Reveal(token string) (string, error)
}

// ByName builds a codec from its configuration name.
func ByName(name string) (core.ObscureCodec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameHex:
		return NewHex(), nil
	case NameSecretbox:
		return NewSecretbox()
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
}

const padLength = 4 // bytes, 8 hex characters

// HexCodec hex encodes with random padding on both sides.
type HexCodec struct {
	random io.Reader
}

// NewHex returns a HexCodec padding with crypto/rand.
func NewHex() *HexCodec {
	return &HexCodec{random: rand.Reader}
}

// Obscure implements core.ObscureCodec. The output starts with "0x" and is
// never equal to its input.
func (c *HexCodec) Obscure(plaintext string) string {
	pad := make([]byte, padLength)
	if _, err := io.ReadFull(c.random, pad); err != nil {
		// Padding is cosmetic; a fixed pad still hides the plaintext.
		pad = []byte{0xde, 0xad, 0xbe, 0xef}
	}
	p := hex.EncodeToString(pad)
	return "0x" + p + hex.EncodeToString([]byte(plaintext)) + p
}

// Reveal implements Revealer.
func (c *HexCodec) Reveal(token string) (string, error) {
	body, ok := strings.CutPrefix(token, "0x")
	if !ok || len(body) < 4*padLength {
		return "", ErrMalformedToken
	}
	body = body[2*padLength : len(body)-2*padLength]
	raw, err := hex.DecodeString(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return string(raw), nil
}

const (
	secretboxPrefix = "sb:"
	nonceLength     = 24
)

// SecretboxCodec seals plaintexts under a 32 byte session key.
type SecretboxCodec struct {
	key    [32]byte
	random io.Reader
}

// NewSecretbox returns a codec with a freshly generated session key.
func NewSecretbox() (*SecretboxCodec, error) {
	var key [32]byte
	if _, err := io.ReadFull(rand.Reader, key[:]); err != nil {
		return nil, fmt.Errorf("secretbox key: %w", err)
	}
	return NewSecretboxWithKey(key), nil
}

// NewSecretboxWithKey returns a codec sealing under key.
func NewSecretboxWithKey(key [32]byte) *SecretboxCodec {
	return &SecretboxCodec{key: key, random: rand.Reader}
}

// Obscure implements core.ObscureCodec.
func (c *SecretboxCodec) Obscure(plaintext string) string {
	var nonce [nonceLength]byte
	if _, err := io.ReadFull(c.random, nonce[:]); err != nil {
		// Without a fresh nonce nothing may be sealed; fall back to masking.
		return NewHex().Obscure(plaintext)
	}
	sealed := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &c.key)
	return secretboxPrefix + base58.Encode(sealed)
}

// Reveal implements Revealer.
func (c *SecretboxCodec) Reveal(token string) (string, error) {
	body, ok := strings.CutPrefix(token, secretboxPrefix)
	if !ok {
		return "", ErrMalformedToken
	}
	raw, err := base58.Decode(body)
	if err != nil || len(raw) < nonceLength+secretbox.Overhead {
		return "", ErrMalformedToken
	}
	var nonce [nonceLength]byte
	copy(nonce[:], raw[:nonceLength])
	opened, ok := secretbox.Open(nil, raw[nonceLength:], &nonce, &c.key)
	if !ok {
		return "", ErrMalformedToken
	}
	return string(opened), nil
}

var (
	_ core.ObscureCodec = (*HexCodec)(nil)
	_ core.ObscureCodec = (*SecretboxCodec)(nil)
	_ Revealer          = (*HexCodec)(nil)
	_ Revealer          = (*SecretboxCodec)(nil)
)
