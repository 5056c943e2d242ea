// internal/app/system/hub/hub.go
// Package hub is the in-process fan-out for live chat delivery.
//
// Publishing never blocks on a slow subscriber: each subscription owns a
// FIFO queue drained by a single goroutine, so every live subscriber
// observes messages for a channel in exactly the order they were
// published. Delivery is per-live-subscriber only; there is no replay.
package hub

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/skillswaphq/skillswap/internal/domain/models"
)

// Hub routes appended messages to active subscriptions keyed by channel.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[uuid.UUID]*Subscription
	log  *zap.Logger
}

// New creates an empty Hub.
func New(logger *zap.Logger) *Hub {
	return &Hub{
		subs: make(map[string]map[uuid.UUID]*Subscription),
		log:  logger,
	}
}

// Subscription is a live feed of one channel's messages.
type Subscription struct {
	id  uuid.UUID
	key string
	hub *Hub
	fn  func(models.Message)

	mu       sync.Mutex
	cond     *sync.Cond
	queue    []models.Message
	canceled bool
	done     chan struct{}
}

// Subscribe registers fn to be invoked once per message subsequently
// published to key, in publish order. The callback runs on the
// subscription's own goroutine; it must not be assumed to run on the
// publisher's.
func (h *Hub) Subscribe(key string, fn func(models.Message)) *Subscription {
	s := &Subscription{
		id:   uuid.New(),
		key:  key,
		hub:  h,
		fn:   fn,
		done: make(chan struct{}),
	}
	s.cond = sync.NewCond(&s.mu)

	h.mu.Lock()
	byID := h.subs[key]
	if byID == nil {
		byID = make(map[uuid.UUID]*Subscription)
		h.subs[key] = byID
	}
	byID[s.id] = s
	h.mu.Unlock()

	h.log.Debug("chat subscription opened",
		zap.String("channel_key", key),
		zap.String("subscription_id", s.id.String()))

	go s.run()
	return s
}

// Publish enqueues msg for every live subscription on msg.ChannelKey.
// It never blocks on subscriber progress.
func (h *Hub) Publish(msg models.Message) {
	h.mu.Lock()
	targets := make([]*Subscription, 0, len(h.subs[msg.ChannelKey]))
	for _, s := range h.subs[msg.ChannelKey] {
		targets = append(targets, s)
	}
	h.mu.Unlock()

	for _, s := range targets {
		s.enqueue(msg)
	}
}

// Cancel tears the subscription down. After Cancel returns the callback
// is not invoked again; messages already handed to the callback stay
// delivered. Cancel is idempotent.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return
	}
	s.canceled = true
	s.queue = nil
	s.cond.Signal()
	s.mu.Unlock()

	s.hub.remove(s)
	s.hub.log.Debug("chat subscription canceled",
		zap.String("channel_key", s.key),
		zap.String("subscription_id", s.id.String()))

	// Wait for the drain goroutine to finish any in-flight callback so
	// no delivery happens after Cancel returns.
	<-s.done
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	if byID, ok := h.subs[s.key]; ok {
		delete(byID, s.id)
		if len(byID) == 0 {
			delete(h.subs, s.key)
		}
	}
	h.mu.Unlock()
}

func (s *Subscription) enqueue(msg models.Message) {
	s.mu.Lock()
	if !s.canceled {
		s.queue = append(s.queue, msg)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

func (s *Subscription) run() {
	defer close(s.done)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.canceled {
			s.cond.Wait()
		}
		if s.canceled {
			s.mu.Unlock()
			return
		}
		msg := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.fn(msg)
	}
}
