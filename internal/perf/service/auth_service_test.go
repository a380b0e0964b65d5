package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	passwordCost = bcrypt.MinCost
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)

	ok, legacy := verifyPassword(hash, "secret1")
	assert.True(t, ok)
	assert.False(t, legacy)

	ok, _ = verifyPassword(hash, "wrong")
	assert.False(t, ok)

	ok, legacy = verifyPassword("plain", "plain")
	assert.True(t, ok)
	assert.True(t, legacy, "plain-text rows are rehashed")

	ok, legacy = verifyPassword("plain", "other")
	assert.False(t, ok)
	assert.False(t, legacy)
}
