package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rapid-reservation/rapid-api/internal/utils"
)

// The digest compared on the unknown-username path must parse as real
// bcrypt output, so the comparison costs the same work as checking a
// stored hash, and it must never verify an actual password.
func TestAnonymousHashIsWellFormedAndNeverMatches(t *testing.T) {
	cost, err := bcrypt.Cost([]byte(anonymousHash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)

	assert.False(t, utils.VerifyPassword(anonymousHash, "not-the-password"))
	assert.False(t, utils.VerifyPassword(anonymousHash, ""))
}
