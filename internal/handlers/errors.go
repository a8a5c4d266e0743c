package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/farukx11/server-10/internal/logging"
	"github.com/farukx11/server-10/internal/validation"

	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

// errorResponse is the body of every failed request.
type errorResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Detail  string   `json:"detail,omitempty"`
	Stack   string   `json:"stack,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", logging.FieldError, err)
	}
}

// fail writes a client error.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, status int, message string) {
	writeJSON(w, status, errorResponse{Message: message})
}

// invalid writes a 400 for a validation failure, listing every violation.
func (h *Handlers) invalid(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: verr.Error(), Errors: verr.Messages})
		return
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
}

// internalError logs err and writes a 500. Outside production the response
// also carries the error and a stack trace.
func (h *Handlers) internalError(w http.ResponseWriter, r *http.Request, err error, message string) {
	slog.ErrorContext(r.Context(), message,
		logging.FieldError, err,
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path)

	resp := errorResponse{Message: message}
	if !h.opts.Production {
		resp.Detail = err.Error()
		resp.Stack = string(debug.Stack())
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

// decodeJSON reads a JSON request body into v. On failure it writes a 400
// and returns false.
func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		h.fail(w, r, http.StatusBadRequest, "Request body is required")
	case errors.As(err, &maxErr):
		h.fail(w, r, http.StatusRequestEntityTooLarge, "Request body is too large")
	default:
		h.fail(w, r, http.StatusBadRequest, "Invalid JSON body")
	}
	return false
}

// Recoverer turns panics into the same 500 response as other internal errors.
func (h *Handlers) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			h.internalError(w, r, fmt.Errorf("panic: %v", rvr), "Internal Server Error")
		}()
		next.ServeHTTP(w, r)
	})
}

// NotFound answers unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.fail(w, r, http.StatusNotFound, "Not Found")
}

// MethodNotAllowed answers known routes with the wrong method.
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.fail(w, r, http.StatusMethodNotAllowed, "Method Not Allowed")
}
