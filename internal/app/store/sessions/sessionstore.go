// internal/app/store/sessions/sessionstore.go
package sessionstore

import (
	"context"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skillswaphq/skillswap/internal/app/system/apperr"
	"github.com/skillswaphq/skillswap/internal/domain/models"
)

// Store owns exchange session records. Sessions are created only
// through the request ledger's accept path, never by external callers.
type Store struct {
	c *mongo.Collection
}

// New creates a session Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("exchange_sessions")}
}

// Open derives the session for an accepted request: the requester is the
// initiator, the recipient the counterpart, and the skill pair mirrors
// the request. The unique index on request_id makes Open idempotent: a
// second call for the same request (recovery after a crash between the
// status flip and the session insert) returns the existing session.
func (s *Store) Open(ctx context.Context, req models.ExchangeRequest) (models.ExchangeSession, error) {
	sess := models.ExchangeSession{
		ID:                  primitive.NewObjectID(),
		RequestID:           req.ID,
		InitiatorMemberID:   req.FromMemberID,
		CounterpartMemberID: req.ToMemberID,
		SkillLearning:       req.RequestedSkill,
		SkillTeaching:       req.OfferedSkill,
		Status:              models.SessionActive,
		CreatedAt:           time.Now().UTC(),
	}

	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		if wafflemongo.IsDup(err) {
			return s.GetByRequest(ctx, req.ID)
		}
		return models.ExchangeSession{}, apperr.Storage(err)
	}
	return sess, nil
}

// Get returns the session by id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.ExchangeSession, error) {
	var sess models.ExchangeSession
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sess)
	if err == mongo.ErrNoDocuments {
		return models.ExchangeSession{}, apperr.New(apperr.NotFound, "session %s does not exist", id.Hex())
	}
	if err != nil {
		return models.ExchangeSession{}, apperr.Storage(err)
	}
	return sess, nil
}

// GetByRequest returns the session derived from the given request.
func (s *Store) GetByRequest(ctx context.Context, requestID primitive.ObjectID) (models.ExchangeSession, error) {
	var sess models.ExchangeSession
	err := s.c.FindOne(ctx, bson.M{"request_id": requestID}).Decode(&sess)
	if err == mongo.ErrNoDocuments {
		return models.ExchangeSession{}, apperr.New(apperr.NotFound, "no session for request %s", requestID.Hex())
	}
	if err != nil {
		return models.ExchangeSession{}, apperr.Storage(err)
	}
	return sess, nil
}

// ListForMember returns the member's sessions (either side), newest
// first.
func (s *Store) ListForMember(ctx context.Context, memberID primitive.ObjectID) ([]models.ExchangeSession, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"$or": bson.A{
			bson.M{"initiator_member_id": memberID},
			bson.M{"counterpart_member_id": memberID},
		}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer cur.Close(ctx)

	var sessions []models.ExchangeSession
	if err := cur.All(ctx, &sessions); err != nil {
		return nil, apperr.Storage(err)
	}
	return sessions, nil
}

// Close moves a session active→closed. The trigger is an external
// lifecycle event; the link fields stay immutable.
func (s *Store) Close(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.SessionActive},
		bson.M{"$set": bson.M{"status": models.SessionClosed}},
	)
	if err != nil {
		return apperr.Storage(err)
	}
	if res.MatchedCount == 0 {
		// Either unknown or already closed; distinguish for the caller.
		if _, gerr := s.Get(ctx, id); gerr != nil {
			return gerr
		}
		return apperr.New(apperr.InvalidState, "session %s is not active", id.Hex())
	}
	return nil
}
