package models

import (
	"testing"

	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/common"
	"github.com/stretchr/testify/require"
)

func TestParseRole_Normalizes(t *testing.T) {
	for in, want := range map[string]Role{
		"admin":    RoleAdmin,
		" Teacher": RoleTeacher,
		"STUDENT ": RoleStudent,
	} {
		got, err := ParseRole(in)
		require.NoError(t, err, "input %q", in)
		require.Equal(t, want, got)
	}
}

func TestParseRole_Unknown(t *testing.T) {
	for _, in := range []string{"", "root", "admins"} {
		_, err := ParseRole(in)
		require.ErrorIs(t, err, common.ErrInvalidRole, "input %q", in)
	}
}

func TestRole_UsesOTP(t *testing.T) {
	require.False(t, RoleAdmin.UsesOTP())
	require.True(t, RoleTeacher.UsesOTP())
	require.True(t, RoleStudent.UsesOTP())
}

func TestDecodeUserSummary_MalformedIsNil(t *testing.T) {
	require.Nil(t, DecodeUserSummary(nil))
	require.Nil(t, DecodeUserSummary([]byte("")))
	require.Nil(t, DecodeUserSummary([]byte("{not json")))
}

func TestUserSummary_EncodeDecode(t *testing.T) {
	u := UserSummary{Email: "a@b.com", Role: RoleTeacher, DisplayName: "Alice"}

	b, err := u.Encode()
	require.NoError(t, err)

	got := DecodeUserSummary(b)
	require.NotNil(t, got)
	require.Equal(t, u, *got)
}
