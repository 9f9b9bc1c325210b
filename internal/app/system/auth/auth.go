// Package auth carries the authenticated identity through a request.
//
// Session issuance itself (login, token exchange) lives in the
// platform's auth service; this package only reads the session cookie
// it sets and exposes the resulting user to handlers. Handlers trust
// the identity found in context and never re-validate it.
package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	isAuthKey    = "is_authenticated"
	userIDKey    = "user_id"
	userNameKey  = "user_name"
	userEmailKey = "user_email"
)

// SessionUser is the identity resolved from the session cookie.
// ID is the hex form of the user's ObjectID in the users collection.
type SessionUser struct {
	ID    string
	Name  string
	Email string
}

type ctxKey struct{}

// SessionManager wraps the cookie store. One instance is built at
// startup and shared by all routes.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds the cookie session store. An empty key is
// replaced with a random one, which invalidates sessions on restart;
// acceptable for dev, logged loudly so it is never shipped that way.
func NewSessionManager(sessionKey, sessionName, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionName == "" {
		return nil, fmt.Errorf("session cookie name is empty")
	}
	key := []byte(sessionKey)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
		logger.Warn("no session key configured; generated a volatile one (sessions reset on restart)")
	} else if len(key) < 32 {
		logger.Warn("session key is short; 32+ chars recommended", zap.Int("length", len(key)))
	}

	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if secure {
		store.Options.SameSite = http.SameSiteNoneMode
	}

	return &SessionManager{store: store, name: sessionName, log: logger}, nil
}

// CurrentUser returns the identity placed in context by LoadSessionUser
// (or by WithTestUser in tests).
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(ctxKey{}).(*SessionUser)
	return u, ok
}

// LoadSessionUser injects the session identity into the request context
// when the caller is signed in. Unauthenticated requests pass through
// untouched; the public directory endpoints work either way.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, _ := m.store.Get(r, m.name)
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			r = withUser(r, &SessionUser{
				ID:    getString(sess, userIDKey),
				Name:  getString(sess, userNameKey),
				Email: getString(sess, userEmailKey),
			})
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn rejects requests with no identity in context. This is
// a JSON API, so the response is a plain 401 body, never a redirect.
func RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"authentication required"}`)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithTestUser injects an identity directly, bypassing the cookie
// store. For handler tests only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, u))
}

func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
