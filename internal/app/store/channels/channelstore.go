// internal/app/store/channels/channelstore.go
package channelstore

// Terminology: Channel Identity
//   - Key / channel key: the canonical id for the conversation between an
//     unordered pair of members, "<lowID>_<highID>" with the two member id
//     hex strings in lexicographic order. Member ids are ObjectID hex, so
//     "_" can never appear inside a component.

import (
	"context"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skillswaphq/skillswap/internal/app/system/apperr"
	"github.com/skillswaphq/skillswap/internal/domain/models"
)

const keySeparator = "_"

// Store owns channel metadata (preview, last activity, append counter).
type Store struct {
	c *mongo.Collection
}

// New creates a channel Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("channels")}
}

// Key returns the canonical channel key for the unordered pair {a, b}.
// Pure: Key(a,b) == Key(b,a), and distinct unordered pairs never collide.
func Key(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + keySeparator + b
}

// SplitKey returns the two member ids of a channel key in key order,
// or ok=false when key is not a well-formed pair.
func SplitKey(key string) (a, b string, ok bool) {
	parts := strings.Split(key, keySeparator)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" || parts[0] >= parts[1] {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Ensure creates the channel for {a, b} if it does not exist and returns
// its key. Creation is atomic create-if-absent (upsert against the
// unique key index), so concurrent first messages from both members
// still yield exactly one channel document. Re-ensuring is a no-op.
func (s *Store) Ensure(ctx context.Context, a, b string) (string, error) {
	key := Key(a, b)
	lo, hi, ok := SplitKey(key)
	if !ok {
		return "", apperr.New(apperr.InvalidArgument, "invalid member pair (%q, %q)", a, b)
	}

	now := time.Now().UTC()
	_, err := s.c.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$setOnInsert": bson.M{
			"key":                  key,
			"member_a":             lo,
			"member_b":             hi,
			"last_message_preview": "",
			"last_message_at":      now,
			"seq":                  int64(0),
			"created_at":           now,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// A duplicate here means the other member's upsert won the race,
		// which is exactly the state we wanted.
		if wafflemongo.IsDup(err) {
			return key, nil
		}
		return "", apperr.Storage(err)
	}
	return key, nil
}

// Get returns the channel for key.
func (s *Store) Get(ctx context.Context, key string) (models.Channel, error) {
	var ch models.Channel
	err := s.c.FindOne(ctx, bson.M{"key": key}).Decode(&ch)
	if err == mongo.ErrNoDocuments {
		return models.Channel{}, apperr.New(apperr.NotFound, "channel %q does not exist", key)
	}
	if err != nil {
		return models.Channel{}, apperr.Storage(err)
	}
	return ch, nil
}

// Touch updates the channel's preview and last-activity timestamp.
// Concurrent touches are last-write-wins; the message log's append order
// remains the authoritative order regardless.
func (s *Store) Touch(ctx context.Context, key, preview string, at time.Time) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$set": bson.M{
			"last_message_preview": preview,
			"last_message_at":      at,
		}},
	)
	return apperr.Storage(err)
}

// NextSeq atomically increments and returns the channel's append
// counter. The returned value is unique and monotonic per channel.
func (s *Store) NextSeq(ctx context.Context, key string) (int64, error) {
	var ch models.Channel
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"key": key},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&ch)
	if err == mongo.ErrNoDocuments {
		return 0, apperr.New(apperr.NotFound, "channel %q does not exist", key)
	}
	if err != nil {
		return 0, apperr.Storage(err)
	}
	return ch.Seq, nil
}

// ListForMember returns the member's channels, most recently active
// first (the chat sidebar ordering).
func (s *Store) ListForMember(ctx context.Context, memberID string) ([]models.Channel, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"$or": bson.A{
			bson.M{"member_a": memberID},
			bson.M{"member_b": memberID},
		}},
		options.Find().SetSort(bson.D{{Key: "last_message_at", Value: -1}}),
	)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer cur.Close(ctx)

	var channels []models.Channel
	if err := cur.All(ctx, &channels); err != nil {
		return nil, apperr.Storage(err)
	}
	return channels, nil
}
