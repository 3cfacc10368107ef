package helpers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret")
	require.NoError(t, err)
	require.NotEqual(t, "Sup3rSecret", hash)

	require.True(t, CompareHashAndPassword(hash, "Sup3rSecret"))
	require.False(t, CompareHashAndPassword(hash, "sup3rsecret"))
	require.False(t, CompareHashAndPassword(hash, ""))
}

func TestCheckPasswordPolicy(t *testing.T) {
	cases := []struct {
		pwd string
		ok  bool
	}{
		{"Abcdef12", true},
		{"LongEnough9", true},
		{"short1A", false},     // too short
		{"alllower1", false},   // no uppercase
		{"ALLUPPER1", false},   // no lowercase
		{"NoDigitsHere", false},
		{"", false},
	}
	for _, tc := range cases {
		err := CheckPasswordPolicy(tc.pwd)
		if tc.ok {
			require.NoError(t, err, "password %q", tc.pwd)
		} else {
			require.ErrorIs(t, err, ErrWeakPassword, "password %q", tc.pwd)
		}
	}
}

func TestGenSecretToken(t *testing.T) {
	a, err := GenSecretToken()
	require.NoError(t, err)
	require.Len(t, a, 64) // 32 bytes hex-encoded

	b, err := GenSecretToken()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
