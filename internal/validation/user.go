package validation

import (
	"errors"
	"strings"

	"github.com/farukx11/server-10/internal/auth"

	"github.com/go-playground/validator/v10"
)

// NoProfileFields is reported when a profile update carries nothing to change.
const NoProfileFields = "At least one field must be provided for update."

// RegisterPayload is the body of a registration request.
type RegisterPayload struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	PhotoURL string `json:"photoURL" validate:"omitempty,url"`
}

// LoginPayload is the body of a login request.
type LoginPayload struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// FederatedPayload is the body of a federated login request. IDToken is
// used when the provider can be verified; otherwise the asserted claims are.
type FederatedPayload struct {
	IDToken  string `json:"idToken"`
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoURL" validate:"omitempty,url"`
}

// ProfilePayload is the body of a profile update. Nil fields are left alone.
type ProfilePayload struct {
	Name     *string `json:"name" validate:"omitempty,min=1"`
	PhotoURL *string `json:"photoURL" validate:"omitempty,url"`
	Password *string `json:"password"`
}

func userMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "name":
		if fe.Tag() == "required" {
			return "Name is required"
		}
		return "Name must not be empty"
	case "email":
		if fe.Tag() == "required" {
			return "Email is required"
		}
		return "Email must be a valid email address"
	case "password":
		return "Password is required"
	case "photoURL":
		return "Photo URL must be a valid URL"
	}
	return fe.Error()
}

func checkPassword(messages []string, password string) []string {
	if password == "" {
		return messages
	}
	err := auth.ValidatePasswordStrength(password)
	switch {
	case errors.Is(err, auth.ErrPasswordTooLong):
		return append(messages, auth.PasswordTooLong)
	case err != nil:
		return append(messages, auth.PasswordPolicy)
	}
	return messages
}

// ValidateRegister trims p in place and checks it, including the password policy.
func ValidateRegister(p *RegisterPayload) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Email = strings.TrimSpace(p.Email)
	p.PhotoURL = strings.TrimSpace(p.PhotoURL)

	messages := check(p, userMessage)
	return asError(checkPassword(messages, p.Password))
}

// ValidateLogin checks that both credentials are present.
func ValidateLogin(p *LoginPayload) error {
	p.Email = strings.TrimSpace(p.Email)
	return asError(check(p, userMessage))
}

// ValidateFederatedClaims checks client-asserted identity claims.
func ValidateFederatedClaims(p *FederatedPayload) error {
	p.Email = strings.TrimSpace(p.Email)
	p.Name = strings.TrimSpace(p.Name)
	p.PhotoURL = strings.TrimSpace(p.PhotoURL)
	return asError(check(p, userMessage))
}

// ValidateProfile checks a profile update. At least one field must be set.
func ValidateProfile(p *ProfilePayload) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if p.PhotoURL != nil {
		photo := strings.TrimSpace(*p.PhotoURL)
		p.PhotoURL = &photo
	}
	if isBlank(p.Name) && isBlank(p.PhotoURL) && isBlank(p.Password) {
		return &Error{Messages: []string{NoProfileFields}}
	}

	messages := check(p, userMessage)
	if p.Password != nil {
		if *p.Password == "" {
			messages = append(messages, auth.PasswordPolicy)
		} else {
			messages = checkPassword(messages, *p.Password)
		}
	}
	return asError(messages)
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}
