package sessionstore_test

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	sessionstore "github.com/skillswaphq/skillswap/internal/app/store/sessions"
	"github.com/skillswaphq/skillswap/internal/app/system/apperr"
	"github.com/skillswaphq/skillswap/internal/domain/models"
	"github.com/skillswaphq/skillswap/internal/testutil"
)

func acceptedRequest() models.ExchangeRequest {
	return models.ExchangeRequest{
		ID:             primitive.NewObjectID(),
		FromMemberID:   primitive.NewObjectID(),
		ToMemberID:     primitive.NewObjectID(),
		RequestedSkill: "Python",
		OfferedSkill:   "Go",
		Status:         models.RequestAccepted,
	}
}

func TestOpen_MirrorsRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := acceptedRequest()
	sess, err := store.Open(ctx, req)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if sess.InitiatorMemberID != req.FromMemberID || sess.CounterpartMemberID != req.ToMemberID {
		t.Errorf("parties: got %s/%s", sess.InitiatorMemberID.Hex(), sess.CounterpartMemberID.Hex())
	}
	if sess.SkillLearning != "Python" || sess.SkillTeaching != "Go" {
		t.Errorf("skills: got %q/%q", sess.SkillLearning, sess.SkillTeaching)
	}
	if sess.Status != models.SessionActive {
		t.Errorf("status: got %q, want active", sess.Status)
	}
}

func TestOpen_IdempotentPerRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := acceptedRequest()
	first, err := store.Open(ctx, req)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}
	second, err := store.Open(ctx, req)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second Open created a new session: %s vs %s", second.ID.Hex(), first.ID.Hex())
	}
}

func TestGetByRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	req := acceptedRequest()
	sess, err := store.Open(ctx, req)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	got, err := store.GetByRequest(ctx, req.ID)
	if err != nil {
		t.Fatalf("GetByRequest failed: %v", err)
	}
	if got.ID != sess.ID {
		t.Errorf("GetByRequest: got %s, want %s", got.ID.Hex(), sess.ID.Hex())
	}

	if _, err := store.GetByRequest(ctx, primitive.NewObjectID()); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("unknown request: got %v, want NotFound", err)
	}
}

func TestListForMember_BothSides(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	me := primitive.NewObjectID()

	asInitiator := acceptedRequest()
	asInitiator.FromMemberID = me
	asCounterpart := acceptedRequest()
	asCounterpart.ToMemberID = me
	unrelated := acceptedRequest()

	for _, req := range []models.ExchangeRequest{asInitiator, asCounterpart, unrelated} {
		if _, err := store.Open(ctx, req); err != nil {
			t.Fatalf("Open failed: %v", err)
		}
	}

	mine, err := store.ListForMember(ctx, me)
	if err != nil {
		t.Fatalf("ListForMember failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(mine))
	}
	for _, s := range mine {
		if s.InitiatorMemberID != me && s.CounterpartMemberID != me {
			t.Errorf("stray session in list: %+v", s)
		}
	}
}

func TestClose(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sessionstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	sess, err := store.Open(ctx, acceptedRequest())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := store.Close(ctx, sess.ID); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	got, err := store.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Status != models.SessionClosed {
		t.Errorf("status: got %q, want closed", got.Status)
	}

	// Link fields stay intact across the transition.
	if got.RequestID != sess.RequestID || got.SkillLearning != sess.SkillLearning {
		t.Error("Close must not touch link fields")
	}

	if err := store.Close(ctx, sess.ID); !apperr.IsKind(err, apperr.InvalidState) {
		t.Errorf("double close: got %v, want InvalidState", err)
	}
	if err := store.Close(ctx, primitive.NewObjectID()); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("unknown session: got %v, want NotFound", err)
	}
}
