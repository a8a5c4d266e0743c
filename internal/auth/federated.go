package auth

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// ErrFederatedDisabled is returned when no federated verifier is configured
// and unverified identities are not allowed.
var ErrFederatedDisabled = errors.New("federated login is not configured")

// FederatedIdentity is the identity asserted by an external provider.
type FederatedIdentity struct {
	Email    string
	Name     string
	PhotoURL string
}

// FederatedVerifier checks a provider-issued ID token.
type FederatedVerifier interface {
	Verify(ctx context.Context, idToken string) (*FederatedIdentity, error)
}

// GoogleVerifier validates Google ID tokens for one OAuth client ID.
type GoogleVerifier struct {
	audience string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// NewGoogleVerifier creates a verifier for tokens issued to clientID.
func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{audience: clientID, validate: idtoken.Validate}
}

// Verify validates the token signature, audience and expiry, and extracts
// the identity claims. Unverified email addresses are rejected.
func (g *GoogleVerifier) Verify(ctx context.Context, token string) (*FederatedIdentity, error) {
	payload, err := g.validate(ctx, token, g.audience)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: token has no email claim", ErrInvalidToken)
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, fmt.Errorf("%w: email not verified", ErrInvalidToken)
	}

	name, _ := payload.Claims["name"].(string)
	picture, _ := payload.Claims["picture"].(string)
	return &FederatedIdentity{Email: email, Name: name, PhotoURL: picture}, nil
}
