package validation

import (
	"strings"
	"testing"

	"github.com/farukx11/server-10/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestValidateRegister(t *testing.T) {
	p := &RegisterPayload{Name: " Alice ", Email: " a@x.com ", Password: "Abcdef1!"}
	require.NoError(t, ValidateRegister(p))
	assert.Equal(t, "Alice", p.Name)
	assert.Equal(t, "a@x.com", p.Email)
}

func TestValidateRegisterFailures(t *testing.T) {
	tests := []struct {
		name    string
		payload RegisterPayload
		want    []string
	}{
		{
			name:    "everything missing",
			payload: RegisterPayload{},
			want:    []string{"Name is required", "Email is required", "Password is required"},
		},
		{
			name:    "bad email and weak password",
			payload: RegisterPayload{Name: "Alice", Email: "not-an-email", Password: "abc"},
			want:    []string{"Email must be a valid email address", auth.PasswordPolicy},
		},
		{
			name:    "bad photo url",
			payload: RegisterPayload{Name: "Alice", Email: "a@x.com", Password: "Abcdef1!", PhotoURL: "nope"},
			want:    []string{"Photo URL must be a valid URL"},
		},
		{
			name:    "password without special character",
			payload: RegisterPayload{Name: "Alice", Email: "a@x.com", Password: "Abcdef1"},
			want:    []string{auth.PasswordPolicy},
		},
		{
			name:    "password longer than bcrypt accepts",
			payload: RegisterPayload{Name: "Alice", Email: "a@x.com", Password: "Abcdef1!" + strings.Repeat("x", 70)},
			want:    []string{auth.PasswordTooLong},
		},
		{
			name:    "password five characters long in seven bytes",
			payload: RegisterPayload{Name: "Alice", Email: "a@x.com", Password: "Äb1!é"},
			want:    []string{auth.PasswordPolicy},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, messagesOf(t, ValidateRegister(&tt.payload)))
		})
	}
}

func TestValidateLogin(t *testing.T) {
	require.NoError(t, ValidateLogin(&LoginPayload{Email: "a@x.com", Password: "whatever"}))

	err := ValidateLogin(&LoginPayload{Email: "  "})
	assert.Equal(t, []string{"Email is required", "Password is required"}, messagesOf(t, err))
}

func TestValidateFederatedClaims(t *testing.T) {
	require.NoError(t, ValidateFederatedClaims(&FederatedPayload{Email: "a@x.com"}))

	err := ValidateFederatedClaims(&FederatedPayload{Name: "Alice"})
	assert.Equal(t, []string{"Email is required"}, messagesOf(t, err))
}

func TestValidateProfile(t *testing.T) {
	require.NoError(t, ValidateProfile(&ProfilePayload{Name: ptr("Alice")}))
	require.NoError(t, ValidateProfile(&ProfilePayload{Password: ptr("Xyz123$")}))
	require.NoError(t, ValidateProfile(&ProfilePayload{PhotoURL: ptr("https://example.com/a.png")}))

	err := ValidateProfile(&ProfilePayload{})
	assert.Equal(t, []string{NoProfileFields}, messagesOf(t, err))

	err = ValidateProfile(&ProfilePayload{Name: ptr("   ")})
	assert.Equal(t, []string{NoProfileFields}, messagesOf(t, err))

	err = ValidateProfile(&ProfilePayload{Name: ptr(""), Password: ptr("short")})
	assert.Equal(t, []string{"Name must not be empty", auth.PasswordPolicy}, messagesOf(t, err))

	err = ValidateProfile(&ProfilePayload{Password: ptr("Abcdef1!" + strings.Repeat("x", 70))})
	assert.Equal(t, []string{auth.PasswordTooLong}, messagesOf(t, err))

	err = ValidateProfile(&ProfilePayload{PhotoURL: ptr("::bad")})
	assert.Equal(t, []string{"Photo URL must be a valid URL"}, messagesOf(t, err))
}
