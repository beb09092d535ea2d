package flagx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterArgs_SeparateValue(t *testing.T) {
	got := FilterArgs([]string{"-a", "http://host", "-x", "junk"}, []string{"-a"})
	require.Equal(t, []string{"-a", "http://host"}, got)
}

func TestFilterArgs_EqualsForm(t *testing.T) {
	got := FilterArgs([]string{"--addr=http://host", "--other=1"}, []string{"--addr"})
	require.Equal(t, []string{"--addr=http://host"}, got)
}

func TestFilterArgs_FlagFollowedByFlag(t *testing.T) {
	// -v is boolean-like; the next flag must not be swallowed as its value.
	got := FilterArgs([]string{"-v", "-a", "http://host"}, []string{"-v", "-a"})
	require.Equal(t, []string{"-v", "-a", "http://host"}, got)
}

func TestFilterArgs_NothingAllowed(t *testing.T) {
	got := FilterArgs([]string{"-a", "1", "-b", "2"}, nil)
	require.Empty(t, got)
}

func TestFilterArgs_Empty(t *testing.T) {
	require.Empty(t, FilterArgs(nil, []string{"-a"}))
}
