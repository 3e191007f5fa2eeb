package socket

import (
	"sync"

	"gitalong_server/models"
)

// Hub fans newly appended messages out to the live subscribers of each
// conversation. Delivery through the hub is best effort: a subscriber
// that cannot keep up is closed and expected to re-subscribe from its
// last-seen cursor, replaying whatever it missed from the store.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscription]struct{}
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Subscription]struct{})}
}

// Subscription is one live listener on a conversation.
type Subscription struct {
	hub            *Hub
	conversationID string
	ch             chan models.Message

	mu     sync.Mutex
	closed bool
	lagged bool
}

// Subscribe registers a listener for the conversation. buffer bounds
// how far the listener may fall behind before it is cut off.
func (h *Hub) Subscribe(conversationID string, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 64
	}
	sub := &Subscription{
		hub:            h,
		conversationID: conversationID,
		ch:             make(chan models.Message, buffer),
	}

	h.mu.Lock()
	room, ok := h.rooms[conversationID]
	if !ok {
		room = make(map[*Subscription]struct{})
		h.rooms[conversationID] = room
	}
	room[sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

// Publish delivers msg to every live subscriber of the conversation.
// A full subscriber buffer closes that subscription; the others are
// unaffected.
func (h *Hub) Publish(conversationID string, msg models.Message) {
	h.mu.RLock()
	subs := make([]*Subscription, 0, len(h.rooms[conversationID]))
	for sub := range h.rooms[conversationID] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		sub.deliver(msg)
	}
}

// C is the channel live messages arrive on. It is closed when the
// subscription ends.
func (s *Subscription) C() <-chan models.Message {
	return s.ch
}

// Lagged reports whether the subscription was cut off for falling
// behind.
func (s *Subscription) Lagged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lagged
}

// Close removes the subscription from its room. Safe to call more than
// once.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.hub.mu.Lock()
	if room, ok := s.hub.rooms[s.conversationID]; ok {
		delete(room, s)
		if len(room) == 0 {
			delete(s.hub.rooms, s.conversationID)
		}
	}
	s.hub.mu.Unlock()

	close(s.ch)
}

func (s *Subscription) deliver(msg models.Message) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	select {
	case s.ch <- msg:
		s.mu.Unlock()
	default:
		s.lagged = true
		s.mu.Unlock()
		s.Close()
	}
}
