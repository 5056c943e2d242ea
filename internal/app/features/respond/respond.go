// internal/app/features/respond/respond.go
// Package respond centralizes JSON encoding and error rendering for the
// API handlers. Handlers hand it domain errors; it maps the error kind
// onto an HTTP status and a stable JSON shape.
package respond

import (
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/skillswaphq/skillswap/internal/app/system/apperr"
	"github.com/skillswaphq/skillswap/internal/app/system/auth"
)

const maxBodyBytes = 1 << 20

// errorBody is the JSON structure for every error response.
type errorBody struct {
	Error string `json:"error"`
}

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error renders err as JSON. Domain errors carry their own status via
// the error kind; anything else is a 500. Server-side failures are
// logged and replaced with the bare status text so storage details
// never leak to clients.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperr.KindOf(err).HTTPStatus()
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		log.Error("request failed", zap.Error(err))
		msg = http.StatusText(status)
	}
	JSON(w, status, errorBody{Error: msg})
}

// Decode reads a JSON request body into v. The body is size-capped;
// malformed input comes back as InvalidArgument so it renders as a 400.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return apperr.New(apperr.InvalidArgument, "invalid request body")
	}
	return nil
}

// MemberID resolves the authenticated member's ObjectID, rendering the
// failure itself when the request carries no usable identity. The auth
// middleware normally guarantees a member is present; a non-hex id
// means a stale or foreign credential.
func MemberID(w http.ResponseWriter, r *http.Request, log *zap.Logger) (primitive.ObjectID, bool) {
	me, ok := auth.CurrentMember(r)
	if !ok {
		Error(w, log, apperr.New(apperr.Unauthorized, "not signed in"))
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(me.ID)
	if err != nil {
		Error(w, log, apperr.New(apperr.Unauthorized, "invalid member credential"))
		return primitive.NilObjectID, false
	}
	return oid, true
}
