// internal/domain/models/exchangesession.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session lifecycle states.
const (
	SessionActive = "active"
	SessionClosed = "closed"
)

// ExchangeSession is the durable record of an accepted exchange.
//
// Created exactly once, atomically with the owning request's transition
// to accepted; RequestID carries a unique index so a recovery pass can
// re-derive a missing session without ever producing two. Link fields
// are immutable; only Status may later move active→closed.
type ExchangeSession struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID           primitive.ObjectID `bson:"request_id" json:"request_id"`
	InitiatorMemberID   primitive.ObjectID `bson:"initiator_member_id" json:"initiator_member_id"`
	CounterpartMemberID primitive.ObjectID `bson:"counterpart_member_id" json:"counterpart_member_id"`
	SkillLearning       string             `bson:"skill_learning" json:"skill_learning"`
	SkillTeaching       string             `bson:"skill_teaching" json:"skill_teaching"`
	Status              string             `bson:"status" json:"status"`
	CreatedAt           time.Time          `bson:"created_at" json:"created_at"`
}
