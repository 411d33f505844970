package crypt_test

import (
	"testing"

	"github.com/ajudi46/expense-tracker-server/internal/adapters/cloud/crypt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := crypt.NewCodec("server-secret")
	plaintext := []byte(`{"transactionID":42,"amount":"19.99"}`)

	payload, err := codec.Seal("user-1", plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, string(plaintext), payload)

	opened, err := codec.Open("user-1", payload)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestCodecNonDeterministicPayloads(t *testing.T) {
	codec := crypt.NewCodec("server-secret")

	a, err := codec.Seal("user-1", []byte("same input"))
	require.NoError(t, err)
	b, err := codec.Seal("user-1", []byte("same input"))
	require.NoError(t, err)

	// Fresh nonce every call; identical plaintext never repeats on the wire.
	assert.NotEqual(t, a, b)
}

func TestCodecRejectsForeignUser(t *testing.T) {
	codec := crypt.NewCodec("server-secret")

	payload, err := codec.Seal("user-1", []byte("private"))
	require.NoError(t, err)

	_, err = codec.Open("user-2", payload)
	assert.Error(t, err)
}

func TestCodecRejectsTamperedPayload(t *testing.T) {
	codec := crypt.NewCodec("server-secret")

	payload, err := codec.Seal("user-1", []byte("private"))
	require.NoError(t, err)

	tampered := "A" + payload[1:]
	if tampered == payload {
		tampered = "B" + payload[1:]
	}
	_, err = codec.Open("user-1", tampered)
	assert.Error(t, err)
}

func TestCodecRejectsGarbage(t *testing.T) {
	codec := crypt.NewCodec("server-secret")

	_, err := codec.Open("user-1", "not base64 at all!!!")
	assert.Error(t, err)

	_, err = codec.Open("user-1", "c2hvcnQ=") // valid base64, shorter than a nonce
	assert.Error(t, err)
}
