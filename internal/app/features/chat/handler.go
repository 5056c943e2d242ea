// internal/app/features/chat/handler.go
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/skillswaphq/skillswap/internal/app/features/respond"
	channelstore "github.com/skillswaphq/skillswap/internal/app/store/channels"
	messagestore "github.com/skillswaphq/skillswap/internal/app/store/messages"
	"github.com/skillswaphq/skillswap/internal/app/system/apperr"
	"github.com/skillswaphq/skillswap/internal/app/system/timeouts"
	"github.com/skillswaphq/skillswap/internal/domain/models"
)

const heartbeatInterval = 25 * time.Second

// Handler serves the chat surface: the caller's conversation list, the
// message log of one channel, and a live stream of appends.
type Handler struct {
	Channels *channelstore.Store
	Messages *messagestore.Store
	Log      *zap.Logger
}

// NewHandler constructs a chat Handler.
func NewHandler(channels *channelstore.Store, messages *messagestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Channels: channels, Messages: messages, Log: logger}
}

// ServeChannels handles GET /chat: the caller's channels, most recent
// activity first, with preview metadata for the conversation list.
func (h *Handler) ServeChannels(w http.ResponseWriter, r *http.Request) {
	meID, ok := respond.MemberID(w, r, h.Log)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	channels, err := h.Channels.ListForMember(ctx, meID.Hex())
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, channels)
}

// postMessage is the JSON body for POST /chat/{key}/messages.
type postMessage struct {
	Text string `json:"text"`
}

// ServePost handles POST /chat/{key}/messages.
func (h *Handler) ServePost(w http.ResponseWriter, r *http.Request) {
	meID, key, ok := h.channelAccess(w, r)
	if !ok {
		return
	}

	var body postMessage
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	msg, err := h.Messages.Append(ctx, key, meID, body.Text)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusCreated, msg)
}

// ServeRecent handles GET /chat/{key}/messages?limit=N: the bounded
// tail of the channel's log, oldest-first.
func (h *Handler) ServeRecent(w http.ResponseWriter, r *http.Request) {
	_, key, ok := h.channelAccess(w, r)
	if !ok {
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	msgs, err := h.Messages.Recent(ctx, key, limit)
	if err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, msgs)
}

// readReceipt is the JSON body for POST /chat/{key}/read.
type readReceipt struct {
	Seq int64 `json:"seq"`
}

// ServeRead handles POST /chat/{key}/read: the caller acknowledges the
// counterpart's messages up to the given sequence number.
func (h *Handler) ServeRead(w http.ResponseWriter, r *http.Request) {
	meID, key, ok := h.channelAccess(w, r)
	if !ok {
		return
	}

	var body readReceipt
	if err := respond.Decode(r, &body); err != nil {
		respond.Error(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Messages.MarkDelivered(ctx, key, meID, body.Seq); err != nil {
		respond.Error(w, h.Log, err)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ServeStream handles GET /chat/{key}/stream via Server-Sent Events.
//
// Each message appended after the subscription is delivered as one
// `data:` event, in append order. The stream never replays history;
// clients load the tail via ServeRecent first and join the live edge
// here. Heartbeat comments keep intermediaries from closing the
// connection.
func (h *Handler) ServeStream(w http.ResponseWriter, r *http.Request) {
	_, key, ok := h.channelAccess(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		respond.Error(w, h.Log, apperr.New(apperr.Unavailable, "streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	// The hub drains each subscriber sequentially, so a modest buffer
	// here is enough to keep append order intact.
	events := make(chan models.Message, 32)
	sub := h.Messages.Subscribe(key, func(m models.Message) {
		select {
		case events <- m:
		case <-r.Context().Done():
		}
	})
	defer sub.Cancel()

	h.Log.Debug("chat stream opened", zap.String("channel_key", key))

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.Log.Debug("chat stream closed", zap.String("channel_key", key))
			return
		case <-ticker.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case msg := <-events:
			data, err := json.Marshal(msg)
			if err != nil {
				h.Log.Error("chat stream encode failed", zap.Error(err))
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// channelAccess resolves the caller and the {key} URL parameter and
// verifies the caller is one of the key's two members. Key validity
// beyond that is the message store's concern.
func (h *Handler) channelAccess(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	meID, ok := respond.MemberID(w, r, h.Log)
	if !ok {
		return "", "", false
	}
	me := meID.Hex()

	key := chi.URLParam(r, "key")
	a, b, valid := channelstore.SplitKey(key)
	if !valid {
		respond.Error(w, h.Log, apperr.New(apperr.InvalidArgument, "malformed channel key %q", key))
		return "", "", false
	}
	if me != a && me != b {
		respond.Error(w, h.Log, apperr.New(apperr.Unauthorized, "not a member of this channel"))
		return "", "", false
	}
	return me, key, true
}
