package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/escaperoom/internal/auth"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := auth.NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)

	assert.True(t, h.Verify("correct horse", hash))
	assert.False(t, h.Verify("wrong horse", hash))
	assert.False(t, h.Verify("correct horse", "not-a-hash"))
}

func TestBcryptHasher_EmptyPassword(t *testing.T) {
	_, err := auth.NewBcryptHasher(bcrypt.MinCost).Hash("")
	assert.Error(t, err)
}

func TestBcryptHasher_CostOutOfRange(t *testing.T) {
	h := auth.NewBcryptHasher(99)

	hash, err := h.Hash("secret")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
