// internal/app/store/members/memberstore.go
package memberstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/skillswaphq/skillswap/internal/app/system/apperr"
	"github.com/skillswaphq/skillswap/internal/app/system/htmlsanitize"
	"github.com/skillswaphq/skillswap/internal/app/system/skills"
	"github.com/skillswaphq/skillswap/internal/domain/models"
)

// Store is the member directory. The exchange core reads it; the only
// write surface is the member's own profile (bio and skill sets).
// Identity and credential management live outside this service.
type Store struct {
	c *mongo.Collection
}

// New creates a member Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("members")}
}

// Get looks up a member by id. A missing member is a valid outcome
// (deleted account), reported via found=false rather than an error.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.Member, bool, error) {
	var m models.Member
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&m)
	if err == mongo.ErrNoDocuments {
		return models.Member{}, false, nil
	}
	if err != nil {
		return models.Member{}, false, apperr.Storage(err)
	}
	return m, true, nil
}

// Browse returns every member except exceptID, ordered by folded name.
// This backs the discovery page; it is a snapshot, not a subscription.
func (s *Store) Browse(ctx context.Context, exceptID primitive.ObjectID) ([]models.Member, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"_id": bson.M{"$ne": exceptID}},
		options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}}),
	)
	if err != nil {
		return nil, apperr.Storage(err)
	}
	defer cur.Close(ctx)

	var members []models.Member
	if err := cur.All(ctx, &members); err != nil {
		return nil, apperr.Storage(err)
	}
	return members, nil
}

// ProfileUpdate carries the editable profile fields. Nil slices mean
// "leave unchanged"; empty non-nil slices clear the set.
type ProfileUpdate struct {
	FullName      *string
	Bio           *string
	OfferedSkills []string
	LearnedSkills []string
}

// UpdateProfile applies a member's own profile edit. Skill names must
// come from the fixed taxonomy. Edits never rewrite history: requests
// keep their name snapshots from creation time.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{"updated_at": time.Now().UTC()}

	if upd.FullName != nil {
		name := strings.TrimSpace(htmlsanitize.PlainText(*upd.FullName))
		if name == "" {
			return apperr.New(apperr.InvalidArgument, "name must not be empty")
		}
		set["full_name"] = name
		set["full_name_ci"] = text.Fold(name)
	}
	if upd.Bio != nil {
		set["bio"] = strings.TrimSpace(htmlsanitize.PlainText(*upd.Bio))
	}
	if upd.OfferedSkills != nil {
		cleaned, err := validateSkills(upd.OfferedSkills)
		if err != nil {
			return err
		}
		set["offered_skills"] = cleaned
	}
	if upd.LearnedSkills != nil {
		cleaned, err := validateSkills(upd.LearnedSkills)
		if err != nil {
			return err
		}
		set["learned_skills"] = cleaned
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return apperr.Storage(err)
	}
	if res.MatchedCount == 0 {
		return apperr.New(apperr.NotFound, "member %s does not exist", id.Hex())
	}
	return nil
}

func validateSkills(in []string) ([]string, error) {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		name := strings.TrimSpace(raw)
		if !skills.IsValid(name) {
			return nil, apperr.New(apperr.InvalidArgument, "unknown skill %q", raw)
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out, nil
}
