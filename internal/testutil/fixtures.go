// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/skillswaphq/skillswap/internal/domain/models"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateMember inserts a member offering and learning the given skills.
func (f *Fixtures) CreateMember(ctx context.Context, name string, offered, learned []string) models.Member {
	f.t.Helper()

	now := time.Now().UTC()
	m := models.Member{
		ID:            primitive.NewObjectID(),
		FullName:      name,
		FullNameCI:    text.Fold(name),
		OfferedSkills: offered,
		LearnedSkills: learned,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test member: %v", err)
	}
	return m
}

// CreateRequest inserts an exchange request in the given status.
func (f *Fixtures) CreateRequest(ctx context.Context, from, to models.Member, requested, offered, status string) models.ExchangeRequest {
	f.t.Helper()

	req := models.ExchangeRequest{
		ID:             primitive.NewObjectID(),
		FromMemberID:   from.ID,
		ToMemberID:     to.ID,
		FromName:       from.FullName,
		ToName:         to.FullName,
		RequestedSkill: requested,
		OfferedSkill:   offered,
		Status:         status,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := f.db.Collection("exchange_requests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("failed to create test request: %v", err)
	}
	return req
}
