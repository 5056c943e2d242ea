// internal/app/store/requests/requeststore.go
package requeststore

// Terminology: Request Parties
//   - FromMemberID / requester: the member proposing the exchange
//   - ToMemberID / recipient: the member who alone may accept or reject

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	memberstore "github.com/skillswaphq/skillswap/internal/app/store/members"
	sessionstore "github.com/skillswaphq/skillswap/internal/app/store/sessions"
	"github.com/skillswaphq/skillswap/internal/app/system/apperr"
	"github.com/skillswaphq/skillswap/internal/app/system/skills"
	"github.com/skillswaphq/skillswap/internal/app/system/txn"
	"github.com/skillswaphq/skillswap/internal/domain/models"
)

// Store owns the exchange request ledger and its lifecycle state
// machine. Requests are append-only history: they are created pending,
// transition exactly once to accepted or rejected, and are never
// deleted.
type Store struct {
	c        *mongo.Collection
	client   *mongo.Client
	members  *memberstore.Store
	sessions *sessionstore.Store
	log      *zap.Logger
}

// New creates a request Store. The session store is wired in because
// accepting a request and opening its session are one logical effect.
func New(db *mongo.Database, members *memberstore.Store, sessions *sessionstore.Store, logger *zap.Logger) *Store {
	return &Store{
		c:        db.Collection("exchange_requests"),
		client:   db.Client(),
		members:  members,
		sessions: sessions,
		log:      logger,
	}
}

// Create appends a new pending request from fromID to toID.
//
// Preconditions: the two members differ, offeredSkill is in the
// taxonomy, requestedSkill is non-empty and currently among the
// recipient's offered skills. Display names of both parties are
// snapshotted onto the record so history stays readable after profile
// edits or member deletion.
func (s *Store) Create(ctx context.Context, fromID, toID primitive.ObjectID, requestedSkill, offeredSkill string) (primitive.ObjectID, error) {
	if fromID == toID {
		return primitive.NilObjectID, apperr.New(apperr.InvalidArgument, "cannot request an exchange with yourself")
	}
	requestedSkill = strings.TrimSpace(requestedSkill)
	if requestedSkill == "" {
		return primitive.NilObjectID, apperr.New(apperr.InvalidArgument, "requested skill must not be empty")
	}
	offeredSkill = strings.TrimSpace(offeredSkill)
	if !skills.IsValid(offeredSkill) {
		return primitive.NilObjectID, apperr.New(apperr.InvalidArgument, "unknown offered skill %q", offeredSkill)
	}

	to, found, err := s.members.Get(ctx, toID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if !found {
		return primitive.NilObjectID, apperr.New(apperr.NotFound, "recipient %s does not exist", toID.Hex())
	}
	if !to.Offers(requestedSkill) {
		return primitive.NilObjectID, apperr.New(apperr.InvalidArgument, "recipient does not offer %q", requestedSkill)
	}

	req := models.ExchangeRequest{
		ID:             primitive.NewObjectID(),
		FromMemberID:   fromID,
		ToMemberID:     toID,
		FromName:       s.nameSnapshot(ctx, fromID),
		ToName:         to.FullName,
		RequestedSkill: requestedSkill,
		OfferedSkill:   offeredSkill,
		Status:         models.RequestPending,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, req); err != nil {
		return primitive.NilObjectID, apperr.Storage(err)
	}

	s.log.Info("exchange request created",
		zap.String("request_id", req.ID.Hex()),
		zap.String("from", fromID.Hex()),
		zap.String("to", toID.Hex()),
		zap.String("requested_skill", requestedSkill),
		zap.String("offered_skill", offeredSkill))
	return req.ID, nil
}

// nameSnapshot resolves a display name for the record; an absent member
// degrades to "Unknown" rather than failing the write.
func (s *Store) nameSnapshot(ctx context.Context, id primitive.ObjectID) string {
	m, found, err := s.members.Get(ctx, id)
	if err != nil || !found {
		return "Unknown"
	}
	return m.FullName
}

// Get returns the request by id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.ExchangeRequest, error) {
	var req models.ExchangeRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return models.ExchangeRequest{}, apperr.New(apperr.NotFound, "request %s does not exist", id.Hex())
	}
	if err != nil {
		return models.ExchangeRequest{}, apperr.Storage(err)
	}
	return req, nil
}

// ListIncoming returns the member's pending incoming requests, most
// recent first. A finite, re-queryable snapshot, not a subscription.
func (s *Store) ListIncoming(ctx context.Context, memberID primitive.ObjectID) ([]models.ExchangeRequest, error) {
	return s.list(ctx, bson.M{"to_member_id": memberID, "status": models.RequestPending})
}

// ListSent returns every request the member has sent, any status, most
// recent first.
func (s *Store) ListSent(ctx context.Context, memberID primitive.ObjectID) ([]models.ExchangeRequest, error) {
	return s.list(ctx, bson.M{"from_member_id": memberID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.ExchangeRequest, error) {
	cur, err := s.c.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer cur.Close(ctx)

	var reqs []models.ExchangeRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, apperr.Storage(err)
	}
	return reqs, nil
}

// Accept transitions the request pending→accepted and opens its session.
//
// The status flip is a compare-and-swap on status=="pending", so under
// an accept/reject race at most one transition ever succeeds; the loser
// gets InvalidState. The flip and the session insert run in one Mongo
// transaction where supported; on deployments without transactions the
// unique request_id index plus RecoverSessions keeps the "accepted ⇒
// session exists" invariant, because Open is idempotent.
func (s *Store) Accept(ctx context.Context, requestID, actingMemberID primitive.ObjectID) (primitive.ObjectID, error) {
	req, err := s.authorize(ctx, requestID, actingMemberID)
	if err != nil {
		return primitive.NilObjectID, err
	}

	var sess models.ExchangeSession
	err = txn.WithTransaction(ctx, s.client, s.log, func(ctx context.Context) error {
		updated, terr := s.transition(ctx, requestID, models.RequestAccepted)
		if terr != nil {
			return terr
		}
		sess, terr = s.sessions.Open(ctx, updated)
		return terr
	})
	if err != nil {
		return primitive.NilObjectID, err
	}

	s.log.Info("exchange request accepted",
		zap.String("request_id", requestID.Hex()),
		zap.String("session_id", sess.ID.Hex()),
		zap.String("skill_learning", req.RequestedSkill),
		zap.String("skill_teaching", req.OfferedSkill))
	return sess.ID, nil
}

// Reject transitions the request pending→rejected. Same authorization
// and state guards as Accept; no session is created.
func (s *Store) Reject(ctx context.Context, requestID, actingMemberID primitive.ObjectID) error {
	if _, err := s.authorize(ctx, requestID, actingMemberID); err != nil {
		return err
	}
	if _, err := s.transition(ctx, requestID, models.RequestRejected); err != nil {
		return err
	}

	s.log.Info("exchange request rejected", zap.String("request_id", requestID.Hex()))
	return nil
}

// authorize loads the request and checks the actor is its recipient.
// The pending check happens later, atomically, in transition.
func (s *Store) authorize(ctx context.Context, requestID, actingMemberID primitive.ObjectID) (models.ExchangeRequest, error) {
	req, err := s.Get(ctx, requestID)
	if err != nil {
		return models.ExchangeRequest{}, err
	}
	if req.ToMemberID != actingMemberID {
		return models.ExchangeRequest{}, apperr.New(apperr.Unauthorized, "only the recipient may act on this request")
	}
	return req, nil
}

// transition is the atomic check-and-set on status. Filtering on
// status=="pending" inside FindOneAndUpdate is what makes a second
// accept/reject attempt fail instead of silently overwriting.
func (s *Store) transition(ctx context.Context, requestID primitive.ObjectID, to string) (models.ExchangeRequest, error) {
	var updated models.ExchangeRequest
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": requestID, "status": models.RequestPending},
		bson.M{"$set": bson.M{"status": to}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == mongo.ErrNoDocuments {
		// The request exists (authorize found it); it is just no longer
		// pending.
		return models.ExchangeRequest{}, apperr.New(apperr.InvalidState, "request already handled")
	}
	if err != nil {
		return models.ExchangeRequest{}, apperr.Storage(err)
	}
	return updated, nil
}

// RecoverSessions opens the session for any accepted request that lacks
// one. It backstops a crash between the status flip and the session
// insert on deployments without multi-document transactions; Open's
// unique request_id index makes re-running it harmless. Called at
// startup.
func (s *Store) RecoverSessions(ctx context.Context) error {
	cur, err := s.c.Find(ctx, bson.M{"status": models.RequestAccepted})
	if err != nil {
		return apperr.Storage(err)
	}
	defer cur.Close(ctx)

	recovered := 0
	for cur.Next(ctx) {
		var req models.ExchangeRequest
		if err := cur.Decode(&req); err != nil {
			return apperr.Storage(err)
		}
		if _, err := s.sessions.GetByRequest(ctx, req.ID); err == nil {
			continue
		} else if !apperr.IsKind(err, apperr.NotFound) {
			return err
		}
		if _, err := s.sessions.Open(ctx, req); err != nil {
			return err
		}
		recovered++
	}
	if err := cur.Err(); err != nil {
		return apperr.Storage(err)
	}

	if recovered > 0 {
		s.log.Warn("recovered sessions for accepted requests", zap.Int("count", recovered))
	}
	return nil
}
