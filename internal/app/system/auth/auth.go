// internal/app/system/auth/auth.go
// Package auth resolves the authenticated member id for a request.
//
// Credential issuance (signup, login, token minting) is not this
// service's job; it only verifies what an upstream identity provider
// issued. Two presentations are accepted:
//
//   - Authorization: Bearer <jwt>  (HS256, subject = member id hex)
//   - a signed cookie session carrying the member id
//
// Handlers never look at tokens or cookies directly; they call
// CurrentMember(r).
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	sessionMemberIDKey = "member_id"
	sessionMemberName  = "member_name"
)

// SessionMember is what LoadMember injects into r.Context().
type SessionMember struct {
	ID   string // member id hex, the opaque identity the core operates on
	Name string // display name when known, "" otherwise
}

type ctxKey string

const currentMemberKey ctxKey = "currentMember"

// CurrentMember returns the authenticated member and a found flag.
func CurrentMember(r *http.Request) (*SessionMember, bool) {
	m, ok := r.Context().Value(currentMemberKey).(*SessionMember)
	return m, ok
}

func withMember(r *http.Request, m *SessionMember) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentMemberKey, m))
}

// Manager verifies bearer tokens and cookie sessions.
type Manager struct {
	tokenKey []byte
	store    *sessions.CookieStore
	cookie   string
	log      *zap.Logger
}

// NewManager builds a Manager. tokenKey signs/verifies bearer JWTs;
// sessionKey signs the cookie session. An empty sessionKey generates a
// random one, which is fine for dev but logs a warning because sessions
// will not survive a restart.
func NewManager(tokenKey, sessionKey, cookieName string, secure bool, logger *zap.Logger) (*Manager, error) {
	if tokenKey == "" {
		return nil, fmt.Errorf("auth: token key must not be empty")
	}
	if sessionKey == "" {
		sessionKey = string(securecookie.GenerateRandomKey(32))
		logger.Warn("auth: no session key configured; generated an ephemeral one")
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}

	return &Manager{
		tokenKey: []byte(tokenKey),
		store:    store,
		cookie:   cookieName,
		log:      logger,
	}, nil
}

// LoadMember injects the member into context when the request carries a
// valid credential. It never rejects; RequireMember does that.
func (m *Manager) LoadMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sm := m.resolve(r); sm != nil {
			r = withMember(r, sm)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireMember rejects requests without an authenticated member with a
// plain 401. It must be mounted after LoadMember.
func RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentMember(r); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Manager) resolve(r *http.Request) *SessionMember {
	if sm := m.fromBearer(r); sm != nil {
		return sm
	}
	return m.fromCookie(r)
}

func (m *Manager) fromBearer(r *http.Request) *SessionMember {
	raw := r.Header.Get("Authorization")
	if raw == "" {
		return nil
	}
	tokenStr, ok := strings.CutPrefix(raw, "Bearer ")
	if !ok {
		return nil
	}

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.tokenKey, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		m.log.Debug("bearer token rejected", zap.Error(err))
		return nil
	}

	// Display name is not carried in the token; handlers that need it
	// consult the directory.
	return &SessionMember{ID: claims.Subject}
}

func (m *Manager) fromCookie(r *http.Request) *SessionMember {
	sess, err := m.store.Get(r, m.cookie)
	if err != nil {
		return nil
	}
	id, _ := sess.Values[sessionMemberIDKey].(string)
	if id == "" {
		return nil
	}
	name, _ := sess.Values[sessionMemberName].(string)
	return &SessionMember{ID: id, Name: name}
}

// MintToken issues a bearer JWT for memberID. Exposed for tooling and
// tests; the production identity provider issues its own.
func (m *Manager) MintToken(memberID string, claims jwt.RegisteredClaims) (string, error) {
	claims.Subject = memberID
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.tokenKey)
}

// WithTestMember injects a member directly into the request context,
// bypassing credential checks. Test helper only.
func WithTestMember(r *http.Request, m *SessionMember) *http.Request {
	return withMember(r, m)
}
