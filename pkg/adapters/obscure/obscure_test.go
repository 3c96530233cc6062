package obscure

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexCodec(t *testing.T) {
	c := NewHex()

	for _, plaintext := range []string{"", "Doc A", "ção ✓", strings.Repeat("x", 500)} {
		token := c.Obscure(plaintext)
		assert.NotEqual(t, plaintext, token)
		assert.True(t, strings.HasPrefix(token, "0x"), token)

		back, err := c.Reveal(token)
		require.NoError(t, err)
		assert.Equal(t, plaintext, back)
	}
}

func TestHexCodec_Layout(t *testing.T) {
	c := &HexCodec{random: bytes.NewReader([]byte{0x01, 0x02, 0x03, 0x04})}
	assert.Equal(t, "0x01020304"+"4869"+"01020304", c.Obscure("Hi"))
}

func TestHexCodec_FailingEntropyStillMasks(t *testing.T) {
	c := &HexCodec{random: bytes.NewReader(nil)}
	assert.Equal(t, "0xdeadbeef4869deadbeef", c.Obscure("Hi"))
}

func TestHexCodec_RevealMalformed(t *testing.T) {
	c := NewHex()
	for _, token := range []string{"plain", "0x1234", "0x01020304zz01020304"} {
		_, err := c.Reveal(token)
		assert.ErrorIs(t, err, ErrMalformedToken, token)
	}
}

func TestSecretboxCodec(t *testing.T) {
	c, err := NewSecretbox()
	require.NoError(t, err)

	a := c.Obscure("Doc A")
	b := c.Obscure("Doc A")
	assert.NotEqual(t, a, b, "nonces must differ")
	assert.True(t, strings.HasPrefix(a, "sb:"))
	assert.NotContains(t, a, "Doc A")

	back, err := c.Reveal(a)
	require.NoError(t, err)
	assert.Equal(t, "Doc A", back)

	other, err := NewSecretbox()
	require.NoError(t, err)
	_, err = other.Reveal(a)
	assert.ErrorIs(t, err, ErrMalformedToken)

	_, err = c.Reveal("sb:short")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestByName(t *testing.T) {
	c, err := ByName("")
	require.NoError(t, err)
	assert.IsType(t, &HexCodec{}, c)

	c, err = ByName(" SecretBox ")
	require.NoError(t, err)
	assert.IsType(t, &SecretboxCodec{}, c)

	_, err = ByName("rot13")
	assert.ErrorIs(t, err, ErrUnknownCodec)
}
