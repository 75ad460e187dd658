package auth

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Small parameters keep the tests fast.
func testHasher() *Argon2Hasher {
	return NewArgon2Hasher(Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32})
}

func TestArgon2Hasher_HashAndVerify(t *testing.T) {
	t.Parallel()
	h := testHasher()

	encoded, err := h.Hash("p1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := h.Verify("p1", encoded)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong", encoded)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher_SaltsDiffer(t *testing.T) {
	t.Parallel()
	h := testHasher()

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestArgon2Hasher_VerifyMalformed(t *testing.T) {
	t.Parallel()
	h := testHasher()

	for _, encoded := range []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$garbage$c2FsdA$a2V5",
		"$argon2id$v=19$m=1,t=1,p=1$!!!$a2V5",
	} {
		_, err := h.Verify("p", encoded)
		assert.True(t, errors.Is(err, ErrMalformedHash), "input %q: got %v", encoded, err)
	}
}
