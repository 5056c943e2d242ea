package exchange_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/skillswaphq/skillswap/internal/app/features/exchange"
	memberstore "github.com/skillswaphq/skillswap/internal/app/store/members"
	requeststore "github.com/skillswaphq/skillswap/internal/app/store/requests"
	sessionstore "github.com/skillswaphq/skillswap/internal/app/store/sessions"
	"github.com/skillswaphq/skillswap/internal/domain/models"
	"github.com/skillswaphq/skillswap/internal/testutil"
)

func newHandler(t *testing.T) (*exchange.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	members := memberstore.New(db)
	sessions := sessionstore.New(db)
	requests := requeststore.New(db, members, sessions, zap.NewNop())
	return exchange.NewHandler(requests, sessions, zap.NewNop()), testutil.NewFixtures(t, db)
}

func TestServeCreate(t *testing.T) {
	h, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMember(ctx, "Alice", []string{"Go"}, nil)
	bob := fixtures.CreateMember(ctx, "Bob", []string{"Python"}, nil)

	body := `{"to_member_id":"` + bob.ID.Hex() + `","requested_skill":"Python","offered_skill":"Go"}`
	req := testutil.WithMember(testutil.NewJSONRequest("POST", "/exchanges", body), alice.ID, alice.FullName)
	rec := httptest.NewRecorder()
	h.ServeCreate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var created models.ExchangeRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if created.Status != models.RequestPending {
		t.Errorf("status: got %q, want pending", created.Status)
	}
	if created.FromName != "Alice" || created.ToName != "Bob" {
		t.Errorf("name snapshots: got %q/%q", created.FromName, created.ToName)
	}
}

func TestServeCreate_BadRecipient(t *testing.T) {
	h, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMember(ctx, "Alice", []string{"Go"}, nil)

	body := `{"to_member_id":"notanid","requested_skill":"Python","offered_skill":"Go"}`
	req := testutil.WithMember(testutil.NewJSONRequest("POST", "/exchanges", body), alice.ID, alice.FullName)
	rec := httptest.NewRecorder()
	h.ServeCreate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestServeAccept_ReturnsSession(t *testing.T) {
	h, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMember(ctx, "Alice", []string{"Go"}, nil)
	bob := fixtures.CreateMember(ctx, "Bob", []string{"Python"}, nil)
	pending := fixtures.CreateRequest(ctx, alice, bob, "Python", "Go", models.RequestPending)

	req := testutil.WithMember(testutil.NewJSONRequest("POST", "/exchanges/"+pending.ID.Hex()+"/accept", ""), bob.ID, bob.FullName)
	req = testutil.WithChiURLParam(req, "id", pending.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeAccept(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body.String())
	}
	var sess models.ExchangeSession
	if err := json.Unmarshal(rec.Body.Bytes(), &sess); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if sess.SkillLearning != "Python" || sess.SkillTeaching != "Go" {
		t.Errorf("session skills: got %q/%q", sess.SkillLearning, sess.SkillTeaching)
	}
	if sess.RequestID != pending.ID {
		t.Errorf("session request link: got %s", sess.RequestID.Hex())
	}
}

func TestServeAccept_WrongActor(t *testing.T) {
	h, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMember(ctx, "Alice", []string{"Go"}, nil)
	bob := fixtures.CreateMember(ctx, "Bob", []string{"Python"}, nil)
	pending := fixtures.CreateRequest(ctx, alice, bob, "Python", "Go", models.RequestPending)

	// The requester may not accept their own request.
	req := testutil.WithMember(testutil.NewJSONRequest("POST", "/exchanges/"+pending.ID.Hex()+"/accept", ""), alice.ID, alice.FullName)
	req = testutil.WithChiURLParam(req, "id", pending.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeAccept(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestServeReject_ThenAcceptConflicts(t *testing.T) {
	h, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMember(ctx, "Alice", []string{"Go"}, nil)
	bob := fixtures.CreateMember(ctx, "Bob", []string{"Python"}, nil)
	pending := fixtures.CreateRequest(ctx, alice, bob, "Python", "Go", models.RequestPending)

	reject := testutil.WithMember(testutil.NewJSONRequest("POST", "/exchanges/"+pending.ID.Hex()+"/reject", ""), bob.ID, bob.FullName)
	reject = testutil.WithChiURLParam(reject, "id", pending.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeReject(rec, reject)
	if rec.Code != http.StatusOK {
		t.Fatalf("reject status: got %d, body %s", rec.Code, rec.Body.String())
	}

	accept := testutil.WithMember(testutil.NewJSONRequest("POST", "/exchanges/"+pending.ID.Hex()+"/accept", ""), bob.ID, bob.FullName)
	accept = testutil.WithChiURLParam(accept, "id", pending.ID.Hex())
	rec = httptest.NewRecorder()
	h.ServeAccept(rec, accept)

	if rec.Code != http.StatusConflict {
		t.Errorf("accept after reject: got %d, want %d", rec.Code, http.StatusConflict)
	}
}

func TestServeIncomingAndSent(t *testing.T) {
	h, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMember(ctx, "Alice", []string{"Go"}, nil)
	bob := fixtures.CreateMember(ctx, "Bob", []string{"Python"}, nil)
	fixtures.CreateRequest(ctx, alice, bob, "Python", "Go", models.RequestPending)
	fixtures.CreateRequest(ctx, alice, bob, "Python", "Go", models.RequestRejected)

	req := testutil.WithMember(httptest.NewRequest("GET", "/exchanges/incoming", nil), bob.ID, bob.FullName)
	rec := httptest.NewRecorder()
	h.ServeIncoming(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("incoming status: got %d", rec.Code)
	}
	var incoming []models.ExchangeRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &incoming); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(incoming) != 1 {
		t.Errorf("incoming: got %d, want only the pending one", len(incoming))
	}

	req = testutil.WithMember(httptest.NewRequest("GET", "/exchanges/sent", nil), alice.ID, alice.FullName)
	rec = httptest.NewRecorder()
	h.ServeSent(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("sent status: got %d", rec.Code)
	}
	var sent []models.ExchangeRequest
	if err := json.Unmarshal(rec.Body.Bytes(), &sent); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(sent) != 2 {
		t.Errorf("sent: got %d, want both statuses", len(sent))
	}
}

func TestServeSessions(t *testing.T) {
	h, fixtures := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateMember(ctx, "Alice", []string{"Go"}, nil)
	bob := fixtures.CreateMember(ctx, "Bob", []string{"Python"}, nil)
	pending := fixtures.CreateRequest(ctx, alice, bob, "Python", "Go", models.RequestPending)

	accept := testutil.WithMember(testutil.NewJSONRequest("POST", "/exchanges/"+pending.ID.Hex()+"/accept", ""), bob.ID, bob.FullName)
	accept = testutil.WithChiURLParam(accept, "id", pending.ID.Hex())
	rec := httptest.NewRecorder()
	h.ServeAccept(rec, accept)
	if rec.Code != http.StatusOK {
		t.Fatalf("accept status: got %d, body %s", rec.Code, rec.Body.String())
	}

	// Both parties see the session.
	for _, m := range []models.Member{alice, bob} {
		req := testutil.WithMember(httptest.NewRequest("GET", "/sessions", nil), m.ID, m.FullName)
		rec = httptest.NewRecorder()
		h.ServeSessions(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("sessions status for %s: got %d", m.FullName, rec.Code)
		}
		var sessions []models.ExchangeSession
		if err := json.Unmarshal(rec.Body.Bytes(), &sessions); err != nil {
			t.Fatalf("failed to parse response: %v", err)
		}
		if len(sessions) != 1 {
			t.Errorf("sessions for %s: got %d, want 1", m.FullName, len(sessions))
		}
	}
}
