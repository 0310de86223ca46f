package messaging

import (
	"time"

	"tsunagu/backend/internal/store"
)

// Message is a direct message between two users
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"sender_id"`
	SenderName  string    `json:"sender_name,omitempty"`
	RecipientID string    `json:"recipient_id,omitempty"`
	Content     string    `json:"content"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// Thread summarizes a conversation with one counterpart: the latest
// message plus the count of their messages not yet read
type Thread struct {
	UserID        string    `json:"user_id"`
	Username      string    `json:"username"`
	Avatar        string    `json:"avatar,omitempty"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int64     `json:"unread_count"`
}

func messageFromProps(props map[string]any, senderID, senderName, recipientID string) *Message {
	if props == nil {
		return nil
	}
	return &Message{
		ID:          store.StringValue(props, "id"),
		SenderID:    senderID,
		SenderName:  senderName,
		RecipientID: recipientID,
		Content:     store.StringValue(props, "content"),
		Read:        store.BoolValue(props, "read"),
		CreatedAt:   store.TimeValue(props, "createdAt"),
	}
}
