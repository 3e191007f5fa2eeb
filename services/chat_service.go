package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"gitalong_server/models"
	"gitalong_server/socket"
)

const (
	subscribeBuffer = 64
	replayPageSize  = 200
)

// ChatService delivers conversation messages as an ordered live
// sequence. The store is the source of truth; the in-process hub is
// only a best-effort push on top of it, and every gap is recoverable
// by re-subscribing from the last-seen cursor.
type ChatService struct {
	Messages MessageStore
	Matches  MatchRecordStore
	Hub      *socket.Hub
	Log      *zap.Logger

	now func() time.Time

	mu        sync.Mutex
	convLocks map[string]*sync.Mutex
}

// NewChatService wires the stream service over its stores and hub.
// The hub is required.
func NewChatService(messages MessageStore, matches MatchRecordStore, hub *socket.Hub, log *zap.Logger) *ChatService {
	return &ChatService{
		Messages:  messages,
		Matches:   matches,
		Hub:       hub,
		Log:       log,
		now:       time.Now,
		convLocks: make(map[string]*sync.Mutex),
	}
}

func (s *ChatService) conversationLock(conversationID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.convLocks[conversationID]
	if !ok {
		lock = &sync.Mutex{}
		s.convLocks[conversationID] = lock
	}
	return lock
}

// SendInput is the caller-supplied part of a message.
type SendInput struct {
	ConversationID string             `json:"conversationId"`
	Content        string             `json:"content"`
	Kind           models.MessageKind `json:"kind"`
}

// Send appends a message to the conversation and pushes it to live
// subscribers. The sender must be a participant of the match backing
// the conversation; the other participant is the receiver.
func (s *ChatService) Send(ctx context.Context, session models.Session, input SendInput) (models.Message, error) {
	if input.ConversationID == "" || input.Content == "" {
		return models.Message{}, ErrInvalidArgument
	}
	if input.Kind == "" {
		input.Kind = models.MessageKindText
	}
	if !models.ValidMessageKind(input.Kind) {
		return models.Message{}, ErrInvalidArgument
	}
	if session.ActorID == "" {
		return models.Message{}, ErrUnauthenticated
	}

	match, err := s.Matches.GetByID(ctx, input.ConversationID)
	if err != nil {
		return models.Message{}, err
	}
	if match == nil {
		return models.Message{}, ErrNotFound
	}
	if !match.HasParticipant(session.ActorID) {
		return models.Message{}, ErrForbidden
	}

	receiver := match.ActorA
	if receiver == session.ActorID {
		receiver = match.ActorB
	}

	// Timestamp draw, append and publish must not interleave between
	// concurrent sends to the same conversation: a later-stamped message
	// published first reaches live subscribers out of key order, and a
	// subscriber resuming from the later key would skip the earlier
	// message forever.
	lock := s.conversationLock(input.ConversationID)
	lock.Lock()
	defer lock.Unlock()

	now := s.clock()()
	messageID := uuid.New().String()
	msg := models.Message{
		ConversationID: input.ConversationID,
		MessageKey:     models.MessageSortKey(now, messageID),
		MessageID:      messageID,
		SenderID:       session.ActorID,
		ReceiverID:     receiver,
		Content:        input.Content,
		Kind:           input.Kind,
		Read:           false,
		Timestamp:      models.FormatTimestamp(now),
	}

	if err := s.Messages.Append(ctx, msg); err != nil {
		return models.Message{}, err
	}

	s.Hub.Publish(msg.ConversationID, msg)
	return msg, nil
}

// Subscribe returns an ordered live sequence of the conversation's
// messages: everything after the `after` cursor is replayed from the
// store, then new arrivals are tailed. Empty cursor replays the full
// history. Cancelling ctx ends the stream without touching other
// subscribers; the channel is closed when the stream ends, including
// when the subscriber falls too far behind and must reconnect.
func (s *ChatService) Subscribe(ctx context.Context, session models.Session, conversationID, after string) (<-chan models.Message, error) {
	if conversationID == "" {
		return nil, ErrInvalidArgument
	}
	if session.ActorID == "" {
		return nil, ErrUnauthenticated
	}

	match, err := s.Matches.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, ErrNotFound
	}
	if !match.HasParticipant(session.ActorID) {
		return nil, ErrForbidden
	}

	// Join the live room before replaying so nothing sent during the
	// replay can be missed; anything seen twice is dropped by key.
	sub := s.Hub.Subscribe(conversationID, subscribeBuffer)
	out := make(chan models.Message, subscribeBuffer)

	go s.stream(ctx, sub, out, conversationID, after)
	return out, nil
}

func (s *ChatService) stream(ctx context.Context, sub *socket.Subscription, out chan<- models.Message, conversationID, after string) {
	defer sub.Close()
	defer close(out)

	seen := make(map[string]struct{})
	cursor := after
	for {
		page, err := s.Messages.ListAfter(ctx, conversationID, cursor, replayPageSize)
		if err != nil {
			if s.Log != nil {
				s.Log.Warn("message replay failed",
					zap.String("conversationId", conversationID),
					zap.Error(err))
			}
			return
		}
		for _, msg := range page {
			seen[msg.MessageKey] = struct{}{}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
		if len(page) < replayPageSize {
			break
		}
		cursor = page[len(page)-1].MessageKey
	}

	for {
		select {
		case msg, ok := <-sub.C():
			if !ok {
				// Cut off for lagging; the client reconnects from its
				// last-seen cursor and replays the difference.
				if sub.Lagged() && s.Log != nil {
					s.Log.Warn("subscriber lagged, closing stream",
						zap.String("conversationId", conversationID))
				}
				return
			}
			if _, dup := seen[msg.MessageKey]; dup {
				continue
			}
			seen[msg.MessageKey] = struct{}{}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// MarkRead flips the read flag on the conversation's messages
// addressed to the session's actor. Only the receiver of a message may
// mark it read.
func (s *ChatService) MarkRead(ctx context.Context, session models.Session, conversationID string) (int, error) {
	if conversationID == "" {
		return 0, ErrInvalidArgument
	}
	if session.ActorID == "" {
		return 0, ErrUnauthenticated
	}

	match, err := s.Matches.GetByID(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if match == nil {
		return 0, ErrNotFound
	}
	if !match.HasParticipant(session.ActorID) {
		return 0, ErrForbidden
	}

	return s.Messages.MarkRead(ctx, conversationID, session.ActorID)
}

func (s *ChatService) clock() func() time.Time {
	if s.now != nil {
		return s.now
	}
	return time.Now
}
