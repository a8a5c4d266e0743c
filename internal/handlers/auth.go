package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/farukx11/server-10/internal/auth"
	"github.com/farukx11/server-10/internal/logging"
	"github.com/farukx11/server-10/internal/models"
	"github.com/farukx11/server-10/internal/storage"
	"github.com/farukx11/server-10/internal/validation"
)

// defaultFederatedName names federated users whose provider sent no name.
const defaultFederatedName = "Google User"

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type userResponse struct {
	User *models.User `json:"user"`
}

// Register creates a local account and signs the user in.
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var p validation.RegisterPayload
	if !h.decodeJSON(w, r, &p) {
		return
	}
	if err := validation.ValidateRegister(&p); err != nil {
		h.invalid(w, r, err)
		return
	}

	hash, err := auth.HashPassword(p.Password, h.opts.BcryptCost)
	if err != nil {
		h.internalError(w, r, err, "Error creating account")
		return
	}

	user := &models.User{
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: hash,
		PhotoURL:     p.PhotoURL,
		Provider:     models.ProviderLocal,
	}
	err = h.store.CreateUser(r.Context(), user)
	if errors.Is(err, storage.ErrDuplicateEmail) {
		h.fail(w, r, http.StatusConflict, "Email already registered")
		return
	}
	if err != nil {
		h.internalError(w, r, err, "Error creating account")
		return
	}

	slog.InfoContext(r.Context(), "User registered", logging.FieldUserID, user.ID)
	h.signIn(w, r, http.StatusCreated, user)
}

// Login checks email and password. Unknown emails and wrong passwords get
// the same answer.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var p validation.LoginPayload
	if !h.decodeJSON(w, r, &p) {
		return
	}
	if err := validation.ValidateLogin(&p); err != nil {
		h.invalid(w, r, err)
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), p.Email)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		h.internalError(w, r, err, "Error signing in")
		return
	}
	if user == nil || !auth.CheckPassword(p.Password, user.PasswordHash) {
		h.fail(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.signIn(w, r, http.StatusOK, user)
}

// Google signs a user in through Google, creating the account on first use.
// With a configured verifier the identity comes from the verified ID token
// only; otherwise client-asserted claims are accepted when explicitly allowed.
func (h *Handlers) Google(w http.ResponseWriter, r *http.Request) {
	var p validation.FederatedPayload
	if !h.decodeJSON(w, r, &p) {
		return
	}

	identity, err := h.federatedIdentity(r, &p)
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		h.invalid(w, r, err)
		return
	case errors.Is(err, auth.ErrFederatedDisabled):
		h.fail(w, r, http.StatusNotImplemented, "Federated login is not configured")
		return
	case err != nil:
		slog.WarnContext(r.Context(), "Rejected federated token", logging.FieldError, err)
		h.fail(w, r, http.StatusUnauthorized, "Invalid or expired token")
		return
	}

	user, err := h.findOrCreateFederated(r, identity)
	if err != nil {
		h.internalError(w, r, err, "Error signing in")
		return
	}
	h.signIn(w, r, http.StatusOK, user)
}

// federatedIdentity resolves who is signing in: from the verified ID token
// when a verifier is configured, from the asserted claims when allowed.
func (h *Handlers) federatedIdentity(r *http.Request, p *validation.FederatedPayload) (*auth.FederatedIdentity, error) {
	switch {
	case h.federated != nil:
		if p.IDToken == "" {
			return nil, &validation.Error{Messages: []string{"idToken is required"}}
		}
		return h.federated.Verify(r.Context(), p.IDToken)
	case h.opts.AllowUnverifiedFederated:
		if err := validation.ValidateFederatedClaims(p); err != nil {
			return nil, err
		}
		return &auth.FederatedIdentity{Email: p.Email, Name: p.Name, PhotoURL: p.PhotoURL}, nil
	default:
		return nil, auth.ErrFederatedDisabled
	}
}

func (h *Handlers) findOrCreateFederated(r *http.Request, id *auth.FederatedIdentity) (*models.User, error) {
	ctx := r.Context()

	user, err := h.store.GetUserByEmail(ctx, id.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	secret, err := auth.UnusablePassword()
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(secret, h.opts.BcryptCost)
	if err != nil {
		return nil, err
	}

	name := id.Name
	if name == "" {
		name = defaultFederatedName
	}
	user = &models.User{
		Name:         name,
		Email:        id.Email,
		PasswordHash: hash,
		PhotoURL:     id.PhotoURL,
		Provider:     models.ProviderGoogle,
	}
	err = h.store.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrDuplicateEmail) {
		// Created concurrently by another request.
		return h.store.GetUserByEmail(ctx, id.Email)
	}
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Federated user created", logging.FieldUserID, user.ID, "provider", user.Provider)
	return user, nil
}

func (h *Handlers) signIn(w http.ResponseWriter, r *http.Request, status int, user *models.User) {
	token, err := h.tokens.Issue(user)
	if err != nil {
		h.internalError(w, r, err, "Error issuing token")
		return
	}
	writeJSON(w, status, authResponse{Token: token, User: user})
}
