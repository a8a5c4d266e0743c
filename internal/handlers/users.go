package handlers

import (
	"net/http"

	"github.com/farukx11/server-10/internal/auth"
	"github.com/farukx11/server-10/internal/validation"
)

// GetProfile returns the authenticated user.
func (h *Handlers) GetProfile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userResponse{User: GetUserFromContext(r)})
}

// UpdateProfile changes the name, photo or password of the authenticated user.
func (h *Handlers) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p validation.ProfilePayload
	if !h.decodeJSON(w, r, &p) {
		return
	}
	if err := validation.ValidateProfile(&p); err != nil {
		h.invalid(w, r, err)
		return
	}

	user := *GetUserFromContext(r)
	if p.Name != nil && *p.Name != "" {
		user.Name = *p.Name
	}
	if p.PhotoURL != nil && *p.PhotoURL != "" {
		user.PhotoURL = *p.PhotoURL
	}
	if p.Password != nil && *p.Password != "" {
		hash, err := auth.HashPassword(*p.Password, h.opts.BcryptCost)
		if err != nil {
			h.internalError(w, r, err, "Error updating profile")
			return
		}
		user.PasswordHash = hash
	}

	if err := h.store.UpdateUser(r.Context(), &user); err != nil {
		h.internalError(w, r, err, "Error updating profile")
		return
	}
	writeJSON(w, http.StatusOK, userResponse{User: &user})
}
