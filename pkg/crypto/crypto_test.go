package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)

	assert.True(t, CheckPassword("hunter22", hash))
	assert.False(t, CheckPassword("hunter23", hash))
}

func TestGeneratePassword(t *testing.T) {
	a, err := GeneratePassword()
	require.NoError(t, err)
	b, err := GeneratePassword()
	require.NoError(t, err)

	assert.Len(t, a, 24)
	assert.NotEqual(t, a, b)
}

func TestSignVerify(t *testing.T) {
	key := []byte("k")
	sig := Sign(key, "EVT25-000001|Alice")

	assert.True(t, Verify(key, "EVT25-000001|Alice", sig))
	assert.False(t, Verify(key, "EVT25-000002|Alice", sig))
	assert.False(t, Verify([]byte("other"), "EVT25-000001|Alice", sig))
}
