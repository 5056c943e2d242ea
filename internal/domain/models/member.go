// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is a registered participant in the skill exchange.
//
// The exchange core treats members as a read-only directory: profile
// editing and credential handling live outside it. Skill fields hold
// names from the fixed taxonomy (see system/skills).
type Member struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName      string             `bson:"full_name" json:"full_name"`
	FullNameCI    string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Bio           string             `bson:"bio,omitempty" json:"bio,omitempty"`
	OfferedSkills []string           `bson:"offered_skills" json:"offered_skills"`
	LearnedSkills []string           `bson:"learned_skills" json:"learned_skills"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Offers reports whether the member advertises the given skill.
func (m Member) Offers(skill string) bool {
	for _, s := range m.OfferedSkills {
		if s == skill {
			return true
		}
	}
	return false
}
