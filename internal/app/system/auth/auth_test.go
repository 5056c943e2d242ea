package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/skillswaphq/skillswap/internal/app/system/auth"
)

func newManager(t *testing.T) *auth.Manager {
	t.Helper()
	m, err := auth.NewManager("test-token-key", "test-session-key-0123456789abcdef", "skillswap-session", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestNewManager_RequiresTokenKey(t *testing.T) {
	if _, err := auth.NewManager("", "sk", "c", false, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty token key")
	}
}

func TestLoadMember_Bearer(t *testing.T) {
	m := newManager(t)

	token, err := m.MintToken("member-1", jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("MintToken failed: %v", err)
	}

	var got *auth.SessionMember
	h := m.LoadMember(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentMember(r)
	}))

	req := httptest.NewRequest("GET", "/exchanges/incoming", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil || got.ID != "member-1" {
		t.Fatalf("expected member-1 in context, got %+v", got)
	}
}

func TestLoadMember_BadToken(t *testing.T) {
	m := newManager(t)

	var found bool
	h := m.LoadMember(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentMember(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	h.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Fatal("garbage token should not authenticate")
	}
}

func TestLoadMember_WrongKey(t *testing.T) {
	m := newManager(t)
	other, err := auth.NewManager("different-key", "sk-0123456789abcdef0123456789abcdef", "skillswap-session", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	token, err := other.MintToken("member-1", jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	if err != nil {
		t.Fatalf("MintToken failed: %v", err)
	}

	var found bool
	h := m.LoadMember(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentMember(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Fatal("token signed with a different key should not authenticate")
	}
}

func TestLoadMember_ExpiredToken(t *testing.T) {
	m := newManager(t)
	token, err := m.MintToken("member-1", jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	if err != nil {
		t.Fatalf("MintToken failed: %v", err)
	}

	var found bool
	h := m.LoadMember(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, found = auth.CurrentMember(r)
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), req)

	if found {
		t.Fatal("expired token should not authenticate")
	}
}

func TestRequireMember(t *testing.T) {
	called := false
	h := auth.RequireMember(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	// No member in context: 401, inner handler untouched.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated: got %d, want 401", rec.Code)
	}
	if called {
		t.Error("inner handler should not run without a member")
	}

	// Member injected: passes through.
	req := auth.WithTestMember(httptest.NewRequest("GET", "/", nil), &auth.SessionMember{ID: "m1"})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if !called || rec.Code != http.StatusOK {
		t.Errorf("authenticated: called=%v code=%d", called, rec.Code)
	}
}
