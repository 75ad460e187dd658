package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns size random bytes encoded as hex (2*size chars).
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateRandByteArray returns size random bytes. crypto/rand never fails on
// supported platforms, so the error is dropped.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	_, _ = rand.Read(b)
	return b
}

// WipeByteArray zeroes buf in place.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
