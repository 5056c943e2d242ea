// internal/domain/models/exchangerequest.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request lifecycle states. A request moves pending→accepted or
// pending→rejected exactly once and is never deleted.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// ExchangeRequest is a proposal from one member to swap a taught skill
// for a learned skill with another member.
//
// FromName/ToName are display-name snapshots taken at creation time so
// request history stays readable even after a profile edit or a member
// deletion. Only the recipient (ToMemberID) may transition the status.
type ExchangeRequest struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FromMemberID   primitive.ObjectID `bson:"from_member_id" json:"from_member_id"`
	ToMemberID     primitive.ObjectID `bson:"to_member_id" json:"to_member_id"`
	FromName       string             `bson:"from_name" json:"from_name"`
	ToName         string             `bson:"to_name" json:"to_name"`
	RequestedSkill string             `bson:"requested_skill" json:"requested_skill"`
	OfferedSkill   string             `bson:"offered_skill" json:"offered_skill"`
	Status         string             `bson:"status" json:"status"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}
