package secrets

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	kerrors "github.com/PolarWolf314/gitenc/internal/errors"
	"golang.org/x/crypto/blake2b"
)

const (
	// KeySize is the decoded key length (AES-256).
	KeySize = 32

	// IVSize is the decoded IV length, one AES block.
	IVSize = aes.BlockSize
)

// GenerateKey returns a new random 256-bit key, base64 encoded.
func GenerateKey() (string, error) {
	return randomBase64(KeySize)
}

// GenerateIV returns a new random 128-bit IV, base64 encoded.
func GenerateIV() (string, error) {
	return randomBase64(IVSize)
}

func randomBase64(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// ValidateKey checks that key is base64 for exactly 32 bytes.
func ValidateKey(key string) error {
	_, err := decodeKey(key)
	return err
}

// ValidateIV checks that iv is base64 for exactly 16 bytes.
func ValidateIV(iv string) error {
	_, err := decodeIV(iv)
	return err
}

// KeyFingerprint returns a short BLAKE2b digest of the key so it can be
// referenced in logs and the audit trail without revealing it.
func KeyFingerprint(key string) string {
	sum := blake2b.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func decodeKey(key string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(key)
	if err != nil || len(raw) != KeySize {
		return nil, kerrors.ErrInvalidKeyLength
	}
	return raw, nil
}

func decodeIV(iv string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(iv)
	if err != nil || len(raw) != IVSize {
		return nil, kerrors.ErrInvalidIVLength
	}
	return raw, nil
}

// Encrypt encrypts plaintext with AES-256-CBC and PKCS#7 padding and returns
// the base64 ciphertext. The same key, iv and plaintext always give the same output.
func Encrypt(plaintext []byte, key, iv string) (string, error) {
	rawKey, err := decodeKey(key)
	if err != nil {
		return "", err
	}
	rawIV, err := decodeIV(iv)
	if err != nil {
		return "", err
	}

	block, err := aes.NewCipher(rawKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrEncryptFailed, err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, rawIV).CryptBlocks(ciphertext, padded)

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt reverses Encrypt. Any failure caused by the ciphertext itself
// (bad encoding, bad length, bad padding) is reported as ErrDecryptFailed,
// which callers treat as a wrong key.
func Decrypt(ciphertext, key, iv string) ([]byte, error) {
	rawKey, err := decodeKey(key)
	if err != nil {
		return nil, err
	}
	rawIV, err := decodeIV(iv)
	if err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext is not valid base64", kerrors.ErrDecryptFailed)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not a multiple of the block size", kerrors.ErrDecryptFailed)
	}

	block, err := aes.NewCipher(rawKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrDecryptFailed, err)
	}

	plaintext := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, rawIV).CryptBlocks(plaintext, data)

	plaintext, err = pkcs7Unpad(plaintext, aes.BlockSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrDecryptFailed, err)
	}
	return plaintext, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(bytes.Clone(data), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty input")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}
