// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
Problems are aggregated so every broken collection is visible at once
and startup can fail fast.

The unique indexes are load-bearing, not advisory:
  - channels.key makes Ensure an atomic create-if-absent, so a racing
    first message from each member still yields one channel
  - exchange_sessions.request_id makes session creation idempotent,
    which is what the crash-recovery pass relies on
  - messages (channel_key, seq) guarantees one message per slot in a
    channel's append order
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	var problems []string

	if err := ensureMembers(ctx, db); err != nil {
		problems = append(problems, "members: "+err.Error())
	}
	if err := ensureExchangeRequests(ctx, db); err != nil {
		problems = append(problems, "exchange_requests: "+err.Error())
	}
	if err := ensureExchangeSessions(ctx, db); err != nil {
		problems = append(problems, "exchange_sessions: "+err.Error())
	}
	if err := ensureChannels(ctx, db); err != nil {
		problems = append(problems, "channels: "+err.Error())
	}
	if err := ensureMessages(ctx, db); err != nil {
		problems = append(problems, "messages: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureMembers(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("members").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "full_name_ci", Value: 1}},
			Options: options.Index().SetName("idx_members_name"),
		},
	})
	return err
}

func ensureExchangeRequests(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("exchange_requests").Indexes().CreateMany(ctx, []mongo.IndexModel{
		// Incoming pane: pending requests for a recipient, newest first.
		{
			Keys:    bson.D{{Key: "to_member_id", Value: 1}, {Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_requests_incoming"),
		},
		// Sent pane: everything a requester has sent, newest first.
		{
			Keys:    bson.D{{Key: "from_member_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_requests_sent"),
		},
	})
	return err
}

func ensureExchangeSessions(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("exchange_sessions").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}},
			Options: options.Index().SetName("uniq_sessions_request").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "initiator_member_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_initiator"),
		},
		{
			Keys:    bson.D{{Key: "counterpart_member_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_sessions_counterpart"),
		},
	})
	return err
}

func ensureChannels(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("channels").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetName("uniq_channels_key").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "member_a", Value: 1}, {Key: "last_message_at", Value: -1}},
			Options: options.Index().SetName("idx_channels_member_a"),
		},
		{
			Keys:    bson.D{{Key: "member_b", Value: 1}, {Key: "last_message_at", Value: -1}},
			Options: options.Index().SetName("idx_channels_member_b"),
		},
	})
	return err
}

func ensureMessages(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("messages").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "channel_key", Value: 1}, {Key: "seq", Value: -1}},
			Options: options.Index().SetName("uniq_messages_channel_seq").SetUnique(true),
		},
	})
	return err
}
