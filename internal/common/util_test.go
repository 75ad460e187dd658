package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	t.Parallel()

	s, err := MakeRandHexString(16)
	require.NoError(t, err)
	assert.Len(t, s, 32)
	_, err = hex.DecodeString(s)
	assert.NoError(t, err)

	empty, err := MakeRandHexString(0)
	require.NoError(t, err)
	assert.Equal(t, "", empty)
}

func TestGenerateRandByteArray(t *testing.T) {
	t.Parallel()

	a := GenerateRandByteArray(24)
	b := GenerateRandByteArray(24)
	assert.Len(t, a, 24)
	assert.Len(t, b, 24)
	if string(a) == string(b) {
		t.Logf("two random buffers are identical; extremely unlikely")
	}
}

func TestWipeByteArray(t *testing.T) {
	t.Parallel()

	buf := []byte("secret")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, 6), buf)

	WipeByteArray(nil)
}

func TestErrorsWrap(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("%w: email is required", ErrorValidation)
	assert.True(t, errors.Is(err, ErrorValidation))
	assert.False(t, errors.Is(err, ErrorInternal))
	assert.Equal(t, "validation error: email is required", err.Error())
}
