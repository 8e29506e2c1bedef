package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-tasks-api/internal/httputil"
	"github.com/redmonkez12/go-tasks-api/internal/logging"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	UserIDContextKey    ContextKey = "user_id"
	UserEmailContextKey ContextKey = "user_email"
)

const (
	msgTokenRequired = "Authorization token required"
	msgTokenInvalid  = "Invalid or expired token"
)

// AccessVerifier verifies access tokens.
type AccessVerifier interface {
	VerifyAccess(token string) (*TokenClaims, error)
}

// Middleware handles authentication for protected routes
type Middleware struct {
	verifier AccessVerifier
}

func NewMiddleware(verifier AccessVerifier) *Middleware {
	return &Middleware{verifier: verifier}
}

// RequireAuth rejects requests without a valid bearer access token and
// otherwise attaches the caller identity to the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		token, ok := httputil.BearerToken(r.Header.Get("Authorization"))
		if !ok {
			logger.Warn("authorization rejected", "reason", "missing or malformed bearer header")
			httputil.RespondErrorWithCode(w, msgTokenRequired, httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		claims, err := m.verifier.VerifyAccess(token)
		if err != nil {
			logger.Warn("authorization rejected", "reason", err.Error())
			httputil.RespondErrorWithCode(w, msgTokenInvalid, httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			logger.Warn("authorization rejected", "reason", "user id claim is not a uuid")
			httputil.RespondErrorWithCode(w, msgTokenInvalid, httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		ctx := WithIdentity(r.Context(), userID, claims.Email)
		ctx = logging.WithLogger(ctx, logger.WithFields(map[string]any{"user_id": userID}))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return userID, ok
}

// GetUserEmailFromContext extracts the user email from the request context
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailContextKey).(string)
	return email, ok
}

// WithIdentity returns a copy of ctx carrying the given caller identity.
func WithIdentity(ctx context.Context, userID uuid.UUID, email string) context.Context {
	ctx = context.WithValue(ctx, UserIDContextKey, userID)
	return context.WithValue(ctx, UserEmailContextKey, email)
}
