// internal/domain/models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is one entry in a channel's append-only log.
//
// Seq is the authoritative order within the channel (assigned from the
// channel's atomic counter); SentAt is advisory. Delivered is best-effort
// client bookkeeping, never a correctness guarantee.
type Message struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ChannelKey   string             `bson:"channel_key" json:"channel_key"`
	Seq          int64              `bson:"seq" json:"seq"`
	FromMemberID string             `bson:"from_member_id" json:"from_member_id"`
	Text         string             `bson:"text" json:"text"`
	SentAt       time.Time          `bson:"sent_at" json:"sent_at"`
	Delivered    bool               `bson:"delivered" json:"delivered"`
}
