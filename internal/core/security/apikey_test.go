package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAPIKey(t *testing.T) {
	realKey, keyHash, err := GenerateAPIKey()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(realKey, KeyPrefix))
	assert.Len(t, keyHash, 64)
	assert.Equal(t, keyHash, HashKey(realKey))

	otherKey, otherHash, err := GenerateAPIKey()
	require.NoError(t, err)
	assert.NotEqual(t, realKey, otherKey)
	assert.NotEqual(t, keyHash, otherHash)
}
