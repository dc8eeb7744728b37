package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher()

	digest, err := h.Hash("hunter2!")
	require.NoError(t, err)
	require.NotEqual(t, "hunter2!", digest)

	assert.True(t, h.Verify("hunter2!", digest))
	assert.False(t, h.Verify("hunter3!", digest))
}

func TestBcryptHasherZeroCostDefaults(t *testing.T) {
	h := &BcryptHasher{}
	digest, err := h.Hash("pw")
	require.NoError(t, err)
	assert.True(t, h.Verify("pw", digest))
}

func TestDummyDigestIsWellFormed(t *testing.T) {
	h := NewBcryptHasher()
	// A comparison against the dummy digest must be a normal bcrypt compare,
	// not an early error on a malformed hash.
	assert.False(t, h.Verify("definitely-not-the-preimage", DummyDigest))
}
