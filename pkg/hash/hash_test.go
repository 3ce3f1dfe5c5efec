package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	h, err := HashPasswordWithCost("admin123", bcrypt.MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "admin123", h)
	assert.True(t, CheckPassword(h, "admin123"))
	assert.False(t, CheckPassword(h, "admin124"))
	assert.False(t, CheckPassword("not-a-hash", "admin123"))
}

func TestHashIsSalted(t *testing.T) {
	a, err := HashPasswordWithCost("same", bcrypt.MinCost)
	require.NoError(t, err)
	b, err := HashPasswordWithCost("same", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_DefaultCost(t *testing.T) {
	h, err := HashPassword("user123")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(h))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}

func TestBurnCompare_DoesNotPanic(t *testing.T) {
	BurnCompare("anything")
	BurnCompare("")
}
