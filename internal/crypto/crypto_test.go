package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundTrip(t *testing.T) {
	c := NewCipher("defaultEncryptionKey123")

	numbers := []string{
		"4111111111111111",
		"5500000000000004",
		"0000000000000000",
		"9999999999999999",
	}
	for _, number := range numbers {
		encrypted, err := c.Encrypt(number)
		require.NoError(t, err)
		require.NotEqual(t, number, encrypted)

		decrypted, err := c.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, number, decrypted)
	}
}

func TestEncryptIsDeterministic(t *testing.T) {
	c := NewCipher("defaultEncryptionKey123")

	first, err := c.Encrypt("4111111111111111")
	require.NoError(t, err)
	second, err := c.Encrypt("4111111111111111")
	require.NoError(t, err)

	// The store's uniqueness constraint depends on this.
	assert.Equal(t, first, second)
}

func TestEncryptEmptyInput(t *testing.T) {
	c := NewCipher("key")
	_, err := c.Encrypt("")
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	c := NewCipher("defaultEncryptionKey123")

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"not base64", "!!!not-base64!!!"},
		{"wrong block length", "YWJj"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decrypt(tt.input)
			assert.Error(t, err)
		})
	}
}

func TestDecryptWrongKey(t *testing.T) {
	encrypted, err := NewCipher("key-one").Encrypt("4111111111111111")
	require.NoError(t, err)

	// Either the padding check trips or the plaintext comes out mangled;
	// the round trip must not survive a key change.
	decrypted, err := NewCipher("key-two").Decrypt(encrypted)
	if err == nil {
		assert.NotEqual(t, "4111111111111111", decrypted)
	}
}

func TestIsEncrypted(t *testing.T) {
	c := NewCipher("defaultEncryptionKey123")

	encrypted, err := c.Encrypt("4111111111111111")
	require.NoError(t, err)

	assert.True(t, c.IsEncrypted(encrypted))
	assert.False(t, c.IsEncrypted("4111111111111111"))
	assert.False(t, c.IsEncrypted("not even base64 !"))
	assert.False(t, c.IsEncrypted(""))
}

func TestMaskPlaintext(t *testing.T) {
	c := NewCipher("defaultEncryptionKey123")
	assert.Equal(t, "**** **** **** 1111", c.Mask("4111111111111111"))
}

func TestMaskCiphertext(t *testing.T) {
	c := NewCipher("defaultEncryptionKey123")

	encrypted, err := c.Encrypt("5500000000000004")
	require.NoError(t, err)

	assert.Equal(t, "**** **** **** 0004", c.Mask(encrypted))
}

func TestMaskNeverFails(t *testing.T) {
	c := NewCipher("defaultEncryptionKey123")

	// Undecodable input falls back to the full mask instead of an error.
	assert.Equal(t, FullMask, c.Mask("corrupted-ciphertext"))
	assert.Equal(t, FullMask, c.Mask(""))
	assert.Equal(t, FullMask, c.Mask("123"))
}
