package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRolesAreStrictlyOrdered(t *testing.T) {
	roles := Roles()
	require.Len(t, roles, 3)

	for i := 1; i < len(roles); i++ {
		prev, ok := roles[i-1].Rank()
		require.True(t, ok)
		cur, ok := roles[i].Rank()
		require.True(t, ok)
		assert.Less(t, prev, cur, "%s should rank below %s", roles[i-1], roles[i])
	}

	assert.Equal(t, roles[len(roles)-1], TopRole())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"readonly", RoleReadOnly, false},
		{"Editor", RoleEditor, false},
		{" ADMIN ", RoleAdmin, false},
		{"owner", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRole(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidRole)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestUnknownRoleHasNoRank(t *testing.T) {
	_, ok := Role("guest").Rank()
	assert.False(t, ok)
	assert.False(t, Role("guest").Valid())
}
