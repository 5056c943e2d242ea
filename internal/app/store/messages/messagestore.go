// internal/app/store/messages/messagestore.go
package messagestore

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	channelstore "github.com/skillswaphq/skillswap/internal/app/store/channels"
	"github.com/skillswaphq/skillswap/internal/app/system/apperr"
	"github.com/skillswaphq/skillswap/internal/app/system/htmlsanitize"
	"github.com/skillswaphq/skillswap/internal/app/system/hub"
	"github.com/skillswaphq/skillswap/internal/domain/models"
)

const (
	// DefaultRecentLimit bounds the replay window handed to clients.
	// Full history is deliberately sacrificed for predictable loads.
	DefaultRecentLimit = 50

	previewMax = 80
	textMax    = 4096
)

// Store owns the append-only message log, one log per channel.
//
// Appends to the same channel are serialized through a per-key mutex so
// the counter increment, the insert, and the hub publish happen in the
// same relative order for every message; that order is what subscribers
// and Recent observe.
type Store struct {
	c        *mongo.Collection
	channels *channelstore.Store
	hub      *hub.Hub

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a message Store publishing live appends to h.
func New(db *mongo.Database, channels *channelstore.Store, h *hub.Hub) *Store {
	return &Store{
		c:        db.Collection("messages"),
		channels: channels,
		hub:      h,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *Store) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// Append validates, stores, and fans out one message.
//
// The sender must be one of the key's two components (membership is in
// the key itself, no extra lookup). The channel is created idempotently
// on first use, so a first message between two members never fails on a
// missing channel. Text is trimmed and stripped of markup; empty text
// after trimming is InvalidArgument.
func (s *Store) Append(ctx context.Context, key, fromMemberID, text string) (models.Message, error) {
	a, b, ok := channelstore.SplitKey(key)
	if !ok {
		return models.Message{}, apperr.New(apperr.InvalidArgument, "malformed channel key %q", key)
	}
	if fromMemberID != a && fromMemberID != b {
		return models.Message{}, apperr.New(apperr.Unauthorized, "sender is not a member of this channel")
	}

	text = strings.TrimSpace(htmlsanitize.PlainText(text))
	if text == "" {
		return models.Message{}, apperr.New(apperr.InvalidArgument, "message text must not be empty")
	}
	if len(text) > textMax {
		return models.Message{}, apperr.New(apperr.InvalidArgument, "message text too long (max %d bytes)", textMax)
	}

	if _, err := s.channels.Ensure(ctx, a, b); err != nil {
		return models.Message{}, err
	}

	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	seq, err := s.channels.NextSeq(ctx, key)
	if err != nil {
		return models.Message{}, err
	}

	msg := models.Message{
		ID:           primitive.NewObjectID(),
		ChannelKey:   key,
		Seq:          seq,
		FromMemberID: fromMemberID,
		Text:         text,
		SentAt:       time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, msg); err != nil {
		return models.Message{}, apperr.Storage(err)
	}

	// Preview metadata is advisory; a failed touch self-heals on the
	// next append.
	_ = s.channels.Touch(ctx, key, preview(text), msg.SentAt)

	s.hub.Publish(msg)
	return msg, nil
}

// Recent returns at most limit messages from the tail of the channel's
// log, oldest-first within the returned window. limit falls back to
// DefaultRecentLimit when zero or negative and is capped at it.
func (s *Store) Recent(ctx context.Context, key string, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > DefaultRecentLimit {
		limit = DefaultRecentLimit
	}

	cur, err := s.c.Find(ctx,
		bson.M{"channel_key": key},
		options.Find().
			SetSort(bson.D{{Key: "seq", Value: -1}}).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer cur.Close(ctx)

	var msgs []models.Message
	if err := cur.All(ctx, &msgs); err != nil {
		return nil, apperr.Storage(err)
	}

	// The query walks the tail newest-first; callers want oldest-first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Subscribe registers fn for live delivery of messages appended to key,
// in append order. The returned subscription's Cancel stops delivery
// promptly; it never replays messages appended before the call.
func (s *Store) Subscribe(key string, fn func(models.Message)) *hub.Subscription {
	return s.hub.Subscribe(key, fn)
}

// MarkDelivered flags the counterpart's messages up to and including
// seq as delivered for readerID. Best-effort bookkeeping only; failures
// and races here never affect the log's contents or order.
func (s *Store) MarkDelivered(ctx context.Context, key, readerID string, seq int64) error {
	_, err := s.c.UpdateMany(ctx,
		bson.M{
			"channel_key":    key,
			"from_member_id": bson.M{"$ne": readerID},
			"seq":            bson.M{"$lte": seq},
			"delivered":      false,
		},
		bson.M{"$set": bson.M{"delivered": true}},
	)
	return apperr.Storage(err)
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= previewMax {
		return text
	}
	return string(r[:previewMax-1]) + "…"
}
