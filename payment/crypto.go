package payment

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrDecryptFailed marks ciphertext that could not be decrypted. Callers must
// reject such payloads outright; they are never downgraded to plaintext.
var ErrDecryptFailed = errors.New("decryption failed")

// AESCodec encrypts and decrypts gateway payloads with AES-256-CBC.
// The IV is fixed by configuration because the counterparty decrypts with the
// same key/IV pair; it is part of the gateway protocol, not a free choice.
type AESCodec struct {
	key []byte
	iv  []byte
}

// NewAESCodec builds a codec from the configured key and IV. The key must be
// 32 bytes and the IV 16 bytes, both taken as raw UTF-8.
func NewAESCodec(key, iv string) (*AESCodec, error) {
	if len(key) != 32 {
		return nil, fmt.Errorf("encryption key must be 32 bytes, got %d", len(key))
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("encryption IV must be %d bytes, got %d", aes.BlockSize, len(iv))
	}
	return &AESCodec{key: []byte(key), iv: []byte(iv)}, nil
}

// Encrypt returns the base64-encoded AES-256-CBC ciphertext of plaintext.
func (c *AESCodec) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	padded := pkcs7Pad([]byte(plaintext), aes.BlockSize)
	encrypted := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, c.iv).CryptBlocks(encrypted, padded)

	return base64.StdEncoding.EncodeToString(encrypted), nil
}

// Decrypt reverses Encrypt. Any malformed input (bad base64, wrong length,
// invalid padding) is reported as ErrDecryptFailed.
func (c *AESCodec) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: invalid base64: %v", ErrDecryptFailed, err)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: ciphertext length %d is not a multiple of the block size", ErrDecryptFailed, len(raw))
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	decrypted := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, c.iv).CryptBlocks(decrypted, raw)

	unpadded, err := pkcs7Unpad(decrypted, aes.BlockSize)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptFailed, err)
	}
	return string(unpadded), nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padding)}, padding)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty input")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, errors.New("invalid padding")
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, errors.New("invalid padding")
		}
	}
	return data[:len(data)-padding], nil
}
