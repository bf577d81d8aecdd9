package oauth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateState(t *testing.T) {
	state, err := GenerateState()
	require.NoError(t, err)

	raw, err := base64.URLEncoding.DecodeString(state)
	require.NoError(t, err)
	assert.Len(t, raw, 32)

	other, err := GenerateState()
	require.NoError(t, err)
	assert.NotEqual(t, state, other)
}
