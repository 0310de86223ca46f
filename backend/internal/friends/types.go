package friends

import (
	"time"

	"tsunagu/backend/internal/directory"
	"tsunagu/backend/internal/store"
)

// RequestStatus is the lifecycle state of a friend request.
// Transitions are one-way: pending -> accepted or pending -> rejected.
type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusAccepted RequestStatus = "accepted"
	StatusRejected RequestStatus = "rejected"
)

// Valid reports whether the status is one of the enumerated values
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// FriendRequest is a directed proposal from sender to recipient
type FriendRequest struct {
	ID          string        `json:"id"`
	SenderID    string        `json:"sender_id"`
	RecipientID string        `json:"recipient_id"`
	Status      RequestStatus `json:"status"`
	Message     string        `json:"message,omitempty"`
	RequestedAt time.Time     `json:"requested_at"`
	RespondedAt *time.Time    `json:"responded_at,omitempty"`
}

// ReceivedRequest is a request as seen by its recipient
type ReceivedRequest struct {
	FriendRequest
	Sender *directory.User `json:"sender"`
}

// SentRequest is a request as seen by its sender
type SentRequest struct {
	FriendRequest
	Recipient *directory.User `json:"recipient"`
}

// Friend is a user together with the time the friendship was added
type Friend struct {
	User    *directory.User `json:"user"`
	AddedAt time.Time       `json:"added_at"`
}

// BlockedUser is a user together with the time the block was placed
type BlockedUser struct {
	User      *directory.User `json:"user"`
	BlockedAt time.Time       `json:"blocked_at"`
}

// MapNode is one user in the connection map
type MapNode struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Avatar string `json:"avatar,omitempty"`
}

// MapEdge is one friendship link in the connection map
type MapEdge struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	AddedAt string `json:"added_at,omitempty"`
}

// ConnectionMap is the ephemeral ego-network read model built for
// visualization. It is never persisted.
type ConnectionMap struct {
	Nodes []MapNode `json:"nodes"`
	Edges []MapEdge `json:"edges"`
}

func requestFromProps(props map[string]any, senderID, recipientID string) *FriendRequest {
	if props == nil {
		return nil
	}

	req := &FriendRequest{
		ID:          store.StringValue(props, "id"),
		SenderID:    senderID,
		RecipientID: recipientID,
		Status:      RequestStatus(store.StringValue(props, "status")),
		Message:     store.StringValue(props, "message"),
		RequestedAt: store.TimeValue(props, "requestedAt"),
	}

	if respondedAt := store.TimeValue(props, "respondedAt"); !respondedAt.IsZero() {
		req.RespondedAt = &respondedAt
	}

	return req
}
