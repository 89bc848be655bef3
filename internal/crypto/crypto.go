// Package crypto implements the card-number codec: reversible encryption for
// storage and deterministic masking for display.
package crypto

import (
	"crypto/aes"
	"encoding/base64"
	"regexp"

	"bankcards/internal/apperr"
)

const (
	maskPrefix = "**** **** **** "
	// FullMask is the display fallback when the number cannot be decoded.
	FullMask = maskPrefix + "****"
)

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// Cipher encrypts and decrypts card numbers with a single process-wide key.
// Encryption is AES-ECB with PKCS#5 padding, base64-encoded. ECB is used
// deliberately: equal numbers must produce equal ciphertexts because the
// store enforces uniqueness and duplicate checks on the ciphertext column.
type Cipher struct {
	key [16]byte
}

// NewCipher derives the AES key from the configured key string: the first 16
// bytes are used, shorter keys are zero-padded.
func NewCipher(key string) *Cipher {
	c := &Cipher{}
	copy(c.key[:], key)
	return c
}

// Encrypt encrypts a card number for storage.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", apperr.Encodingf("input is empty")
	}

	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return "", apperr.Encodingf("cipher init: %v", err)
	}

	// PKCS#5 padding
	data := []byte(plaintext)
	padding := aes.BlockSize - len(data)%aes.BlockSize
	for i := 0; i < padding; i++ {
		data = append(data, byte(padding))
	}

	ciphertext := make([]byte, len(data))
	for i := 0; i < len(data); i += aes.BlockSize {
		block.Encrypt(ciphertext[i:i+aes.BlockSize], data[i:i+aes.BlockSize])
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. It fails with an encoding error on anything that
// is not a product of Encrypt under the current key.
func (c *Cipher) Decrypt(encrypted string) (string, error) {
	if encrypted == "" {
		return "", apperr.Encodingf("input is empty")
	}

	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", apperr.Encodingf("invalid base64: %v", err)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return "", apperr.Encodingf("invalid ciphertext length: %d bytes", len(data))
	}

	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return "", apperr.Encodingf("cipher init: %v", err)
	}

	plaintext := make([]byte, len(data))
	for i := 0; i < len(data); i += aes.BlockSize {
		block.Decrypt(plaintext[i:i+aes.BlockSize], data[i:i+aes.BlockSize])
	}

	padding := int(plaintext[len(plaintext)-1])
	if padding == 0 || padding > aes.BlockSize || padding > len(plaintext) {
		return "", apperr.Encodingf("invalid padding value: %d", padding)
	}
	for i := len(plaintext) - padding; i < len(plaintext); i++ {
		if int(plaintext[i]) != padding {
			return "", apperr.Encodingf("invalid padding bytes")
		}
	}

	return string(plaintext[:len(plaintext)-padding]), nil
}

// IsEncrypted reports whether the value looks like a product of Encrypt:
// valid base64 that decrypts to digits. Best effort only — it exists so the
// seeder and migrations can avoid double-encoding, and it must never gate a
// security decision.
func (c *Cipher) IsEncrypted(value string) bool {
	decrypted, err := c.Decrypt(value)
	if err != nil {
		return false
	}
	return digitsOnly.MatchString(decrypted)
}

// Mask renders a card number for display: the last four digits of the
// plaintext behind a fixed pattern. The input may be plaintext or a
// ciphertext, which is decrypted first. Display never fails: anything
// undecodable comes back fully masked.
func (c *Cipher) Mask(value string) string {
	number := value
	if !digitsOnly.MatchString(number) {
		decrypted, err := c.Decrypt(value)
		if err != nil {
			return FullMask
		}
		number = decrypted
	}
	if len(number) < 4 {
		return FullMask
	}
	return maskPrefix + number[len(number)-4:]
}
