// internal/domain/models/channel.go
package models

import (
	"time"
)

// Channel is the conversation between exactly two members, addressed by
// the canonical key derived from the unordered member pair.
//
// MemberA/MemberB hold the pair in key order (MemberA < MemberB), so
// membership checks need only the document itself. Seq is the append
// counter for the channel's message log; it only ever increases.
type Channel struct {
	Key                string    `bson:"key" json:"key"`
	MemberA            string    `bson:"member_a" json:"member_a"`
	MemberB            string    `bson:"member_b" json:"member_b"`
	LastMessagePreview string    `bson:"last_message_preview" json:"last_message_preview"`
	LastMessageAt      time.Time `bson:"last_message_at" json:"last_message_at"`
	Seq                int64     `bson:"seq" json:"-"`
	CreatedAt          time.Time `bson:"created_at" json:"created_at"`
}

// Has reports whether memberID is one of the channel's two members.
func (c Channel) Has(memberID string) bool {
	return c.MemberA == memberID || c.MemberB == memberID
}

// Other returns the counterpart of memberID in this channel, or "" when
// memberID is not a member.
func (c Channel) Other(memberID string) string {
	switch memberID {
	case c.MemberA:
		return c.MemberB
	case c.MemberB:
		return c.MemberA
	}
	return ""
}
