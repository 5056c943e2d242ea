// internal/app/features/exchange/handler.go
package exchange

// Terminology: Request Parties
//   - requester: the member proposing the exchange (from side)
//   - recipient: the member who alone may accept or reject (to side)

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/skillswaphq/skillswap/internal/app/features/respond"
	requeststore "github.com/skillswaphq/skillswap/internal/app/store/requests"
	sessionstore "github.com/skillswaphq/skillswap/internal/app/store/sessions"
	"github.com/skillswaphq/skillswap/internal/app/system/apperr"
	"github.com/skillswaphq/skillswap/internal/app/system/timeouts"
)

// Handler serves the exchange request lifecycle and the sessions it
// produces.
type Handler struct {
	Requests *requeststore.Store
	Sessions *sessionstore.Store
	Log      *zap.Logger
}

// NewHandler constructs an exchange Handler.
func NewHandler(requests *requeststore.Store, sessions *sessionstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Requests: requests, Sessions: sessions, Log: logger}
}

// createRequest is the JSON body for POST /exchanges.
type createRequest struct {
	ToMemberID     string `json:"to_member_id"`
	RequestedSkill string `json:"requested_skill"`
	OfferedSkill   string `json:"offered_skill"`
}

// ServeCreate handles POST /exchanges. The caller is the requester.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	meID, ok := respond.MemberID(w, r, h.Log)
	if !ok {
		return
	}

	var body createRequest
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	toID, err := primitive.ObjectIDFromHex(body.ToMemberID)
	if err != nil {
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "invalid recipient id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	id, err := h.Requests.Create(ctx, meID, toID, body.RequestedSkill, body.OfferedSkill)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	req, err := h.Requests.Get(ctx, id)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, req)
}

// ServeIncoming handles GET /exchanges/incoming: the caller's pending
// incoming requests, most recent first.
func (h *Handler) ServeIncoming(w http.ResponseWriter, r *http.Request) {
	meID, ok := respond.MemberID(w, r, h.Log)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	reqs, err := h.Requests.ListIncoming(ctx, meID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, reqs)
}

// ServeSent handles GET /exchanges/sent: everything the caller has
// requested, any status.
func (h *Handler) ServeSent(w http.ResponseWriter, r *http.Request) {
	meID, ok := respond.MemberID(w, r, h.Log)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	reqs, err := h.Requests.ListSent(ctx, meID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, reqs)
}

// ServeAccept handles POST /exchanges/{id}/accept. On success it
// returns the session opened by the acceptance.
func (h *Handler) ServeAccept(w http.ResponseWriter, r *http.Request) {
	meID, ok := respond.MemberID(w, r, h.Log)
	if !ok {
		return
	}
	reqID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "invalid request id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	sessID, err := h.Requests.Accept(ctx, reqID, meID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	sess, err := h.Sessions.Get(ctx, sessID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, sess)
}

// ServeReject handles POST /exchanges/{id}/reject.
func (h *Handler) ServeReject(w http.ResponseWriter, r *http.Request) {
	meID, ok := respond.MemberID(w, r, h.Log)
	if !ok {
		return
	}
	reqID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "invalid request id"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Requests.Reject(ctx, reqID, meID); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// ServeSessions handles GET /sessions: the caller's exchange sessions,
// both sides, newest first.
func (h *Handler) ServeSessions(w http.ResponseWriter, r *http.Request) {
	meID, ok := respond.MemberID(w, r, h.Log)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	sessions, err := h.Sessions.ListForMember(ctx, meID)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, sessions)
}
