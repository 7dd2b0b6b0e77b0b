package tgbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}

func TestShortPasswordRejected(t *testing.T) {
	_, err := HashPassword("abc")
	assert.Error(t, err)
}

func TestValidUsername(t *testing.T) {
	assert.True(t, ValidUsername("trader_1"))
	assert.False(t, ValidUsername("ab"))
	assert.False(t, ValidUsername("has space"))
	assert.False(t, ValidUsername("emoji🙂"))
}
