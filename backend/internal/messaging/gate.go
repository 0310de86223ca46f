package messaging

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tsunagu/backend/internal/store"
	"tsunagu/backend/pkg/apperrors"
	"tsunagu/backend/pkg/logger"
)

// DefaultMessageLimit is the page size used when the caller gives none
const DefaultMessageLimit = 50

// Gate stores message threads and enforces the recipient's acceptance
// policy and block state on every send
type Gate struct {
	store  store.Store
	logger *zap.Logger
}

// NewGate creates a messaging gate backed by the given store
func NewGate(st store.Store) *Gate {
	return &Gate{
		store:  st,
		logger: logger.Get(),
	}
}

// sendMessageQuery gates the write on the recipient's acceptance policy
// and block state. The friendship and block checks are bare pattern
// predicates, not the exists() function, which Neo4j 5 removed.
const sendMessageQuery = `
	MATCH (sender:User {id: $senderId})
	MATCH (recipient:User {id: $recipientId})
	WHERE (recipient.messageSettingsAcceptFrom = 'all'
		OR (recipient.messageSettingsAcceptFrom = 'friends_only'
			AND (sender)-[:ADDED_AS_FRIEND]->(recipient)))
		AND NOT (recipient)-[:BLOCKED]->(sender)
	CREATE (message:Message {
		id: $id,
		content: $content,
		read: false,
		createdAt: datetime($now)
	})
	CREATE (sender)-[:SENT]->(message)-[:SENT_TO]->(recipient)
	RETURN message, sender.username AS senderName
`

// SendMessage delivers a message from sender to recipient. The permission
// predicate runs inside the same statement as the write: the message is
// created only when the recipient accepts messages from the sender
// (policy 'all', or 'friends_only' with a friendship edge) and has not
// blocked them. A policy of 'none' matches neither branch and denies
// everything. Zero rows means the predicate failed and nothing was
// written; there is no window between check and write.
func (g *Gate) SendMessage(ctx context.Context, senderID, recipientID, content string) (*Message, error) {
	if recipientID == "" {
		return nil, apperrors.NewValidation("recipient id is required")
	}
	if senderID == recipientID {
		return nil, apperrors.NewValidation("cannot send a message to yourself")
	}
	if content == "" {
		return nil, apperrors.NewValidation("message content is required")
	}

	id := uuid.New().String()
	now := time.Now().UTC().Format(time.RFC3339)

	result, err := g.store.ExecuteWrite(ctx, func(ctx context.Context, tx store.Tx) (any, error) {
		rows, err := tx.Run(ctx, sendMessageQuery, map[string]any{
			"id":          id,
			"senderId":    senderID,
			"recipientId": recipientID,
			"content":     content,
			"now":         now,
		})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, nil
		}
		senderName := store.StringValue(rows[0], "senderName")
		return messageFromProps(store.MapValue(rows[0], "message"), senderID, senderName, recipientID), nil
	})
	if err != nil {
		return nil, apperrors.NewDatabase("failed to send message", err)
	}

	message, _ := result.(*Message)
	if message == nil {
		return nil, apperrors.NewForbidden("cannot send message: blocked or not accepted by recipient settings")
	}

	g.logger.Info("Message sent",
		zap.String("message_id", message.ID),
		zap.String("sender_id", senderID),
		zap.String("recipient_id", recipientID),
	)
	return message, nil
}

// GetConversations lists one thread per counterpart the user has
// exchanged messages with, most recent first
func (g *Gate) GetConversations(ctx context.Context, userID string) ([]*Thread, error) {
	rows, err := g.store.ExecuteQuery(ctx, `
		MATCH (sender:User)-[:SENT]->(message:Message)-[:SENT_TO]->(recipient:User)
		WHERE sender.id = $userId OR recipient.id = $userId
		WITH message, sender,
			CASE WHEN sender.id = $userId THEN recipient ELSE sender END AS other
		WITH other, message, sender
		ORDER BY message.createdAt DESC
		WITH other,
			collect({content: message.content, createdAt: message.createdAt})[0] AS lastMessage,
			count(CASE WHEN message.read = false AND sender.id = other.id THEN 1 END) AS unreadCount
		RETURN other, lastMessage, unreadCount
		ORDER BY lastMessage.createdAt DESC
	`, map[string]any{"userId": userID})
	if err != nil {
		return nil, apperrors.NewDatabase("failed to list conversations", err)
	}

	threads := make([]*Thread, 0, len(rows))
	for _, row := range rows {
		other := store.MapValue(row, "other")
		if other == nil {
			continue
		}
		lastMessage := store.MapValue(row, "lastMessage")
		threads = append(threads, &Thread{
			UserID:        store.StringValue(other, "id"),
			Username:      store.StringValue(other, "username"),
			Avatar:        store.StringValue(other, "profileAvatar"),
			LastMessage:   store.StringValue(lastMessage, "content"),
			LastMessageAt: store.TimeValue(lastMessage, "createdAt"),
			UnreadCount:   store.Int64Value(row, "unreadCount"),
		})
	}
	return threads, nil
}

// GetMessages returns up to limit messages between the user and the
// counterpart, oldest first for display. Viewing is a read receipt:
// fetched messages sent by the counterpart are marked read in the same
// transaction.
func (g *Gate) GetMessages(ctx context.Context, userID, otherUserID string, limit int) ([]*Message, error) {
	if otherUserID == "" {
		return nil, apperrors.NewValidation("other user id is required")
	}
	if limit <= 0 {
		limit = DefaultMessageLimit
	}

	query := `
		MATCH (sender:User)-[:SENT]->(message:Message)-[:SENT_TO]->(recipient:User)
		WHERE (sender.id = $userId AND recipient.id = $otherUserId)
			OR (sender.id = $otherUserId AND recipient.id = $userId)
		WITH message, sender
		ORDER BY message.createdAt DESC
		LIMIT $limit
		FOREACH (ignored IN CASE WHEN message.read = false AND sender.id = $otherUserId THEN [1] ELSE [] END |
			SET message.read = true
		)
		RETURN message, sender.id AS senderId, sender.username AS senderName
		ORDER BY message.createdAt ASC
	`

	result, err := g.store.ExecuteWrite(ctx, func(ctx context.Context, tx store.Tx) (any, error) {
		rows, err := tx.Run(ctx, query, map[string]any{
			"userId":      userID,
			"otherUserId": otherUserID,
			"limit":       limit,
		})
		if err != nil {
			return nil, err
		}

		messages := make([]*Message, 0, len(rows))
		for _, row := range rows {
			msg := messageFromProps(
				store.MapValue(row, "message"),
				store.StringValue(row, "senderId"),
				store.StringValue(row, "senderName"),
				"",
			)
			if msg == nil {
				continue
			}
			messages = append(messages, msg)
		}
		return messages, nil
	})
	if err != nil {
		return nil, apperrors.NewDatabase("failed to fetch messages", err)
	}

	messages, _ := result.([]*Message)
	return messages, nil
}

// MarkAsRead marks a single message as read by its recipient. Returns
// false when the message does not exist or was not sent to this user.
func (g *Gate) MarkAsRead(ctx context.Context, messageID, recipientID string) (bool, error) {
	if messageID == "" {
		return false, apperrors.NewValidation("message id is required")
	}

	result, err := g.store.ExecuteWrite(ctx, func(ctx context.Context, tx store.Tx) (any, error) {
		rows, err := tx.Run(ctx, `
			MATCH (message:Message {id: $messageId})-[:SENT_TO]->(recipient:User {id: $recipientId})
			SET message.read = true
			RETURN message.id AS id
		`, map[string]any{
			"messageId":   messageID,
			"recipientId": recipientID,
		})
		if err != nil {
			return nil, err
		}
		return len(rows) > 0, nil
	})
	if err != nil {
		return false, apperrors.NewDatabase("failed to mark message as read", err)
	}

	marked, _ := result.(bool)
	return marked, nil
}
