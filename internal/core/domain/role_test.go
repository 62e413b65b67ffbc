package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleFromInt(t *testing.T) {
	for v, want := range map[int64]Role{0: RoleGuest, 1: RoleUser, 2: RoleAdmin} {
		got, err := RoleFromInt(v)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	for _, v := range []int64{-1, 3, 255, 1 << 40} {
		_, err := RoleFromInt(v)
		assert.Truef(t, errors.Is(err, ErrInvalidRole), "value %d must be rejected, got %v", v, err)
	}
}

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleUser))
	assert.True(t, RoleUser.AtLeast(RoleGuest))
	assert.True(t, RoleUser.AtLeast(RoleUser))
	assert.False(t, RoleGuest.AtLeast(RoleUser))
	assert.Equal(t, "admin", RoleAdmin.String())
	assert.Equal(t, "role(7)", Role(7).String())
}
