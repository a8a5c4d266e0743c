package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/farukx11/server-10/internal/auth"
	"github.com/farukx11/server-10/internal/events"
	"github.com/farukx11/server-10/internal/logging"
	"github.com/farukx11/server-10/internal/models"
	"github.com/farukx11/server-10/internal/storage"
)

// Context key type to avoid collisions.
type contextKey string

// UserContextKey is the context key for the authenticated user.
const UserContextKey contextKey = "user"

// Store is the data access the handlers need. Every transaction method is
// scoped to the owning user.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error

	CreateTransaction(ctx context.Context, t *models.Transaction) error
	GetTransaction(ctx context.Context, userID, id string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, userID string, f storage.ListFilter) ([]models.Transaction, error)
	UpdateTransaction(ctx context.Context, t *models.Transaction) error
	DeleteTransaction(ctx context.Context, userID, id string) error

	Ping(ctx context.Context) error
}

// Options tune handler behaviour.
type Options struct {
	// BcryptCost is the cost used for new password hashes.
	BcryptCost int
	// Production hides error details and stacks from clients.
	Production bool
	// AllowUnverifiedFederated accepts client-asserted identities on the
	// federated login route when no verifier is configured.
	AllowUnverifiedFederated bool
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	store     Store
	tokens    *auth.TokenManager
	federated auth.FederatedVerifier
	events    events.Publisher
	opts      Options
}

// NewHandlers creates a new Handlers instance. federated may be nil, in which
// case the federated route follows opts.AllowUnverifiedFederated. A nil
// publisher drops events.
func NewHandlers(store Store, tokens *auth.TokenManager, federated auth.FederatedVerifier, publisher events.Publisher, opts Options) *Handlers {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = auth.DefaultCost
	}
	return &Handlers{
		store:     store,
		tokens:    tokens,
		federated: federated,
		events:    publisher,
		opts:      opts,
	}
}

// GetUserFromContext retrieves the authenticated user from request context.
func GetUserFromContext(r *http.Request) *models.User {
	if user, ok := r.Context().Value(UserContextKey).(*models.User); ok {
		return user
	}
	return nil
}

// AuthMiddleware wraps handlers to require a valid bearer token. The user is
// re-read from the store so deleted or unknown subjects are rejected.
func (h *Handlers) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			h.fail(w, r, http.StatusUnauthorized, "No token provided")
			return
		}

		claims, err := h.tokens.Parse(token)
		if err != nil {
			slog.WarnContext(r.Context(), "Rejected token", logging.FieldError, err)
			h.fail(w, r, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := h.store.GetUserByID(r.Context(), claims.Subject)
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(r.Context(), "Token subject not found", logging.FieldUserID, claims.Subject)
			h.fail(w, r, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if err != nil {
			h.internalError(w, r, err, "Error loading user")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the database is reachable.
func (h *Handlers) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Readiness check failed", logging.FieldError, err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// publish sends an event without failing the request.
func (h *Handlers) publish(ctx context.Context, e events.Event) {
	if err := h.events.Publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish event", "kind", e.Kind, logging.FieldTxID, e.TransactionID, logging.FieldError, err)
	}
}
