package payment

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey = "0123456789abcdef0123456789abcdef"
	testIV  = "0123456789abcdef"
)

func newTestCodec(t *testing.T) *AESCodec {
	t.Helper()
	codec, err := NewAESCodec(testKey, testIV)
	require.NoError(t, err)
	return codec
}

func TestNewAESCodecValidatesSizes(t *testing.T) {
	_, err := NewAESCodec("short", testIV)
	assert.Error(t, err)

	_, err = NewAESCodec(testKey, "short")
	assert.Error(t, err)

	_, err = NewAESCodec(testKey, testIV)
	assert.NoError(t, err)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	cases := []string{
		"",
		"a",
		"exactly sixteen!",
		`{"client_secret":"secret","requestid":"REQ1","timestamp":"1700000000"}`,
		"multi-byte ₹ रुपये content",
		strings.Repeat("x", 1000),
	}
	for _, plaintext := range cases {
		encrypted, err := codec.Encrypt(plaintext)
		require.NoError(t, err)
		assert.NotEqual(t, plaintext, encrypted)

		decrypted, err := codec.Decrypt(encrypted)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	}
}

func TestEncryptProducesBase64(t *testing.T) {
	codec := newTestCodec(t)

	encrypted, err := codec.Encrypt("hello")
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encrypted)
	require.NoError(t, err)
	assert.Equal(t, 0, len(raw)%16)
}

func TestDecryptRejectsMalformedInput(t *testing.T) {
	codec := newTestCodec(t)

	cases := []string{
		"not base64 !!!",
		base64.StdEncoding.EncodeToString([]byte("wrong length")),
		"",
		base64.StdEncoding.EncodeToString(make([]byte, 32)),
	}
	for _, input := range cases {
		_, err := codec.Decrypt(input)
		assert.ErrorIs(t, err, ErrDecryptFailed, "input %q", input)
	}
}

func TestDecryptWithWrongKeyFails(t *testing.T) {
	codec := newTestCodec(t)
	other, err := NewAESCodec("ffffffffffffffffffffffffffffffff", testIV)
	require.NoError(t, err)

	encrypted, err := codec.Encrypt(`{"txnStatus":1}`)
	require.NoError(t, err)

	decrypted, err := other.Decrypt(encrypted)
	if err == nil {
		// Random-looking padding can accidentally validate; the payload must
		// still be garbage.
		assert.NotEqual(t, `{"txnStatus":1}`, decrypted)
	} else {
		assert.ErrorIs(t, err, ErrDecryptFailed)
	}
}
