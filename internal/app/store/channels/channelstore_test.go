package channelstore_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	channelstore "github.com/skillswaphq/skillswap/internal/app/store/channels"
	"github.com/skillswaphq/skillswap/internal/app/system/apperr"
	"github.com/skillswaphq/skillswap/internal/testutil"
)

func TestKey_OrderIndependent(t *testing.T) {
	if channelstore.Key("u1", "u2") != channelstore.Key("u2", "u1") {
		t.Error("Key must be identical for both orderings of the pair")
	}
	if channelstore.Key("u1", "u2") != "u1_u2" {
		t.Errorf("Key: got %q, want %q", channelstore.Key("u1", "u2"), "u1_u2")
	}
}

func TestKey_DistinctPairs(t *testing.T) {
	if channelstore.Key("u1", "u2") == channelstore.Key("u1", "u3") {
		t.Error("distinct pairs must not collide")
	}
}

func TestSplitKey(t *testing.T) {
	a, b, ok := channelstore.SplitKey("u1_u2")
	if !ok || a != "u1" || b != "u2" {
		t.Errorf("SplitKey: got (%q, %q, %v)", a, b, ok)
	}

	for _, bad := range []string{"", "u1", "_u2", "u1_", "u2_u1", "u1_u1"} {
		if _, _, ok := channelstore.SplitKey(bad); ok {
			t.Errorf("SplitKey(%q) should not be ok", bad)
		}
	}
}

func TestEnsure_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := channelstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var key string
	for i := 0; i < 5; i++ {
		// Alternate argument order; the canonical key must not care.
		var k string
		var err error
		if i%2 == 0 {
			k, err = store.Ensure(ctx, "aaa", "bbb")
		} else {
			k, err = store.Ensure(ctx, "bbb", "aaa")
		}
		if err != nil {
			t.Fatalf("Ensure %d failed: %v", i, err)
		}
		if key == "" {
			key = k
		} else if k != key {
			t.Fatalf("Ensure returned different keys: %q then %q", key, k)
		}
	}

	count, err := db.Collection("channels").CountDocuments(ctx, bson.M{"key": key})
	if err != nil {
		t.Fatalf("CountDocuments failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 channel, got %d", count)
	}
}

func TestEnsure_RejectsSelfPair(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := channelstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Ensure(ctx, "aaa", "aaa"); !apperr.IsKind(err, apperr.InvalidArgument) {
		t.Errorf("self pair: got %v, want InvalidArgument", err)
	}
}

func TestGet_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := channelstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Get(ctx, "nope_nothere"); !apperr.IsKind(err, apperr.NotFound) {
		t.Errorf("missing channel: got %v, want NotFound", err)
	}
}

func TestTouch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := channelstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	key, err := store.Ensure(ctx, "aaa", "bbb")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	at := time.Now().UTC().Truncate(time.Millisecond)
	if err := store.Touch(ctx, key, "hi", at); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}

	ch, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ch.LastMessagePreview != "hi" {
		t.Errorf("LastMessagePreview: got %q, want %q", ch.LastMessagePreview, "hi")
	}
	if !ch.LastMessageAt.Equal(at) {
		t.Errorf("LastMessageAt: got %v, want %v", ch.LastMessageAt, at)
	}
}

func TestNextSeq_Monotonic(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := channelstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	key, err := store.Ensure(ctx, "aaa", "bbb")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	for want := int64(1); want <= 5; want++ {
		seq, err := store.NextSeq(ctx, key)
		if err != nil {
			t.Fatalf("NextSeq failed: %v", err)
		}
		if seq != want {
			t.Errorf("NextSeq: got %d, want %d", seq, want)
		}
	}
}

func TestListForMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := channelstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	k1, err := store.Ensure(ctx, "aaa", "bbb")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	k2, err := store.Ensure(ctx, "aaa", "ccc")
	if err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}
	if _, err := store.Ensure(ctx, "ddd", "eee"); err != nil {
		t.Fatalf("Ensure failed: %v", err)
	}

	// Make k1 the most recently active.
	if err := store.Touch(ctx, k2, "older", time.Now().UTC().Add(-time.Hour)); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	if err := store.Touch(ctx, k1, "newer", time.Now().UTC()); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}

	channels, err := store.ListForMember(ctx, "aaa")
	if err != nil {
		t.Fatalf("ListForMember failed: %v", err)
	}
	if len(channels) != 2 {
		t.Fatalf("expected 2 channels for aaa, got %d", len(channels))
	}
	if channels[0].Key != k1 || channels[1].Key != k2 {
		t.Errorf("expected most recent first: got %q then %q", channels[0].Key, channels[1].Key)
	}
}
