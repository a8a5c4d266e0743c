package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secr3t!", MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, "Secr3t!", hash)
	assert.True(t, CheckPassword("Secr3t!", hash))
	assert.False(t, CheckPassword("secr3t!", hash))
	assert.False(t, CheckPassword("Secr3t!", "not-a-hash"))
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"meets every rule", "Abcde1!", false},
		{"exactly six characters", "Ab1$cd", false},
		{"too short", "Ab1!", true},
		{"no upper case", "abcde1!", true},
		{"no lower case", "ABCDE1!", true},
		{"no digit", "Abcdef!", true},
		{"no special character", "Abcdef1", true},
		{"empty", "", true},
		{"five characters in seven bytes", "Äb1!é", true},
		{"six multi-byte characters", "Äb1!éx", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrWeakPassword)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePasswordStrengthUpperBound(t *testing.T) {
	atLimit := "Abcdef1!" + strings.Repeat("x", MaxPasswordBytes-8)
	assert.NoError(t, ValidatePasswordStrength(atLimit))

	_, err := HashPassword(atLimit, MinCost)
	assert.NoError(t, err, "anything the policy accepts can be hashed")

	assert.ErrorIs(t, ValidatePasswordStrength(atLimit+"x"), ErrPasswordTooLong)
	assert.ErrorIs(t, ValidatePasswordStrength("Abcdef1!"+strings.Repeat("é", 40)), ErrPasswordTooLong, "the bound counts bytes")
}

func TestUnusablePasswordIsRandom(t *testing.T) {
	a, err := UnusablePassword()
	require.NoError(t, err)
	b, err := UnusablePassword()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}
