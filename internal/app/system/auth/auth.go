// Package auth resolves the caller from an identity-provider token and
// carries the local user in the request context.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/vetmentor/internal/app/system/respond"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the local account behind a verified token, injected into
// r.Context() by Manager.LoadUser.
type SessionUser struct {
	ID              string // local users._id (hex)
	ExternalID      string // identity-provider subject
	Name            string
	Email           string
	IsMentor        bool
	IsMentee        bool
	ProfileComplete bool
}

// UserFetcher loads fresh user data for a verified identity-provider subject.
// It returns nil when the account does not exist locally or was deleted.
type UserFetcher interface {
	FetchUser(ctx context.Context, externalID string) *SessionUser
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context, bypassing token checks.
// Intended for handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// Manager verifies bearer tokens (or the provider's session cookie) and
// loads the matching local user on each request.
type Manager struct {
	verifier   *Verifier
	fetcher    UserFetcher
	cookieName string
	log        *zap.Logger
}

// NewManager builds a Manager. cookieName may be empty to accept bearer
// tokens only.
func NewManager(v *Verifier, cookieName string, logger *zap.Logger) *Manager {
	return &Manager{verifier: v, cookieName: cookieName, log: logger}
}

// SetUserFetcher sets the lookup used to resolve token subjects.
func (m *Manager) SetUserFetcher(f UserFetcher) {
	m.fetcher = f
}

// LoadUser injects the user into context when a valid token is present.
// Requests without a token, or with an invalid one, continue anonymously.
func (m *Manager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := m.tokenFrom(r)
		if raw == "" || m.verifier == nil || m.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.verifier.Verify(raw)
		if err != nil {
			m.log.Debug("token rejected", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if u := m.fetcher.FetchUser(r.Context(), claims.Subject); u != nil {
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadUser).
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			respond.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Manager) tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if m.cookieName != "" {
		if c, err := r.Cookie(m.cookieName); err == nil {
			return c.Value
		}
	}
	return ""
}
