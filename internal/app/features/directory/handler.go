// internal/app/features/directory/handler.go
package directory

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/skillswaphq/skillswap/internal/app/features/respond"
	memberstore "github.com/skillswaphq/skillswap/internal/app/store/members"
	"github.com/skillswaphq/skillswap/internal/app/system/apperr"
	"github.com/skillswaphq/skillswap/internal/app/system/skills"
	"github.com/skillswaphq/skillswap/internal/app/system/timeouts"
)

// Handler serves the member directory: browsing other members and
// editing the caller's own profile.
type Handler struct {
	Members *memberstore.Store
	Log     *zap.Logger
}

// NewHandler constructs a directory Handler.
func NewHandler(members *memberstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Members: members, Log: logger}
}

// ServeBrowse handles GET /members. It returns every member except the
// caller, ordered by name, for the discovery page.
func (h *Handler) ServeBrowse(w http.ResponseWriter, r *http.Request) {
	meID, ok := respond.MemberID(w, r, h.Log)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	members, err := h.Members.Browse(ctx, meID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, members)
}

// ServeMember handles GET /members/{id}.
func (h *Handler) ServeMember(w http.ResponseWriter, r *http.Request) {
	oid, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "invalid member id"))
		return
	}
	h.serveMemberByID(w, r, oid)
}

// ServeMe handles GET /members/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	meID, ok := respond.MemberID(w, r, h.Log)
	if !ok {
		return
	}
	h.serveMemberByID(w, r, meID)
}

func (h *Handler) serveMemberByID(w http.ResponseWriter, r *http.Request, oid primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	member, found, err := h.Members.Get(ctx, oid)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	if !found {
		respond.Error(w, h.Log, apperr.New(apperr.NotFound, "member %s does not exist", oid.Hex()))
		return
	}
	respond.JSON(w, http.StatusOK, member)
}

// profileRequest is the JSON body for profile edits. Absent fields are
// left unchanged; empty arrays clear the skill set.
type profileRequest struct {
	FullName      *string  `json:"full_name"`
	Bio           *string  `json:"bio"`
	OfferedSkills []string `json:"offered_skills"`
	LearnedSkills []string `json:"learned_skills"`
}

// ServeUpdateMe handles PUT /members/me. It responds with the updated
// profile.
func (h *Handler) ServeUpdateMe(w http.ResponseWriter, r *http.Request) {
	meID, ok := respond.MemberID(w, r, h.Log)
	if !ok {
		return
	}

	var body profileRequest
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Members.UpdateProfile(ctx, meID, memberstore.ProfileUpdate{
		FullName:      body.FullName,
		Bio:           body.Bio,
		OfferedSkills: body.OfferedSkills,
		LearnedSkills: body.LearnedSkills,
	})
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	h.serveMemberByID(w, r, meID)
}

// ServeSkills handles GET /skills: the fixed taxonomy, in presentation
// order, for skill pickers.
func (h *Handler) ServeSkills(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, http.StatusOK, map[string][]string{"skills": skills.All()})
}
