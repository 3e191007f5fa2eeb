package models

import "time"

// MessageKind is the payload kind of a conversation message.
type MessageKind string

const (
	MessageKindText  MessageKind = "text"
	MessageKindImage MessageKind = "image"
	MessageKindFile  MessageKind = "file"
)

// ValidMessageKind reports whether k is a supported kind.
func ValidMessageKind(k MessageKind) bool {
	switch k {
	case MessageKindText, MessageKindImage, MessageKindFile:
		return true
	}
	return false
}

// Message is one append-only entry in a conversation. Only the `read`
// flag is mutable after creation, and only by the receiver.
type Message struct {
	ConversationID string      `dynamodbav:"conversationId" json:"conversationId"`
	MessageKey     string      `dynamodbav:"messageKey" json:"messageKey"`
	MessageID      string      `dynamodbav:"messageId" json:"messageId"`
	SenderID       string      `dynamodbav:"senderId" json:"senderId"`
	ReceiverID     string      `dynamodbav:"receiverId" json:"receiverId"`
	Content        string      `dynamodbav:"content" json:"content"`
	Kind           MessageKind `dynamodbav:"kind" json:"kind"`
	Read           bool        `dynamodbav:"read" json:"read"`
	Timestamp      string      `dynamodbav:"timestamp" json:"timestamp"`
}

// messageKeyTimeLayout is fixed width, unlike RFC3339Nano, so the keys
// compare lexicographically in timestamp order across sub-second
// boundaries.
const messageKeyTimeLayout = "2006-01-02T15:04:05.000000000Z"

// MessageSortKey builds the range key a message is stored under. The
// timestamp comes first so a lexicographic range scan yields messages
// in non-decreasing timestamp order; the message id breaks ties so two
// messages written in the same instant both survive.
func MessageSortKey(t time.Time, messageID string) string {
	return t.UTC().Format(messageKeyTimeLayout) + "#" + messageID
}

// MessagesTable is the DynamoDB table name for conversation messages.
const MessagesTable = "Messages"
