package friends

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tsunagu/backend/internal/directory"
	"tsunagu/backend/internal/store"
	"tsunagu/backend/pkg/apperrors"
)

// CreateFriendRequest creates a pending request from sender to recipient.
// If a pending request already exists for the pair, that request is
// returned unchanged: the MERGE locks both user nodes, so concurrent
// creates for the same pair serialize and at most one pending request
// survives. Fails when the two users are already friends.
func (e *Engine) CreateFriendRequest(ctx context.Context, senderID, recipientID, message string) (*FriendRequest, error) {
	if senderID == "" || recipientID == "" {
		return nil, apperrors.NewValidation("sender and recipient ids are required")
	}
	if senderID == recipientID {
		return nil, apperrors.NewValidation("cannot send a friend request to yourself")
	}
	if len(message) > MaxRequestMessageLength {
		return nil, apperrors.NewValidation("request message must be 500 characters or fewer")
	}

	isFriend, err := e.IsFriend(ctx, senderID, recipientID)
	if err != nil {
		return nil, err
	}
	if isFriend {
		return nil, apperrors.NewValidation("users are already friends")
	}

	id := uuid.New().String()
	requestedAt := time.Now().UTC().Format(time.RFC3339)

	query := `
		MATCH (sender:User {id: $senderId}), (recipient:User {id: $recipientId})
		MERGE (sender)-[:SENT_REQUEST]->(fr:FriendRequest {status: 'pending'})-[:SENT_TO]->(recipient)
		ON CREATE SET fr.id = $id,
			fr.message = $message,
			fr.requestedAt = datetime($requestedAt)
		RETURN fr
	`

	result, err := e.store.ExecuteWrite(ctx, func(ctx context.Context, tx store.Tx) (any, error) {
		rows, err := tx.Run(ctx, query, map[string]any{
			"id":          id,
			"senderId":    senderID,
			"recipientId": recipientID,
			"message":     message,
			"requestedAt": requestedAt,
		})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return nil, nil
		}
		return requestFromProps(store.MapValue(rows[0], "fr"), senderID, recipientID), nil
	})
	if err != nil {
		return nil, apperrors.NewDatabase("failed to create friend request", err)
	}

	request, _ := result.(*FriendRequest)
	if request == nil {
		return nil, apperrors.NewNotFound("sender or recipient not found")
	}

	e.logger.Info("Friend request created",
		zap.String("request_id", request.ID),
		zap.String("sender_id", senderID),
		zap.String("recipient_id", recipientID),
	)
	return request, nil
}

// AcceptFriendRequest transitions a pending request to accepted and
// creates the friendship edges in both directions. The status flip and
// edge creation happen in one statement inside one transaction, so
// concurrent accepts of the same request race safely: only one caller
// matches the pending state, the other returns false.
func (e *Engine) AcceptFriendRequest(ctx context.Context, requestID string) (bool, error) {
	if requestID == "" {
		return false, apperrors.NewValidation("request id is required")
	}

	respondedAt := time.Now().UTC().Format(time.RFC3339)

	query := `
		MATCH (sender:User)-[:SENT_REQUEST]->(fr:FriendRequest {id: $requestId, status: 'pending'})-[:SENT_TO]->(recipient:User)
		SET fr.status = 'accepted', fr.respondedAt = datetime($respondedAt)
		CREATE (recipient)-[:ADDED_AS_FRIEND {addedAt: datetime($respondedAt)}]->(sender)
		CREATE (sender)-[:ADDED_AS_FRIEND {addedAt: datetime($respondedAt)}]->(recipient)
		RETURN sender.id AS senderId, recipient.id AS recipientId
	`

	result, err := e.store.ExecuteWrite(ctx, func(ctx context.Context, tx store.Tx) (any, error) {
		rows, err := tx.Run(ctx, query, map[string]any{
			"requestId":   requestID,
			"respondedAt": respondedAt,
		})
		if err != nil {
			return nil, err
		}
		return len(rows) > 0, nil
	})
	if err != nil {
		return false, apperrors.NewDatabase("failed to accept friend request", err)
	}

	accepted, _ := result.(bool)
	if accepted {
		e.logger.Info("Friend request accepted", zap.String("request_id", requestID))
	}
	return accepted, nil
}

// RejectFriendRequest transitions a pending request to rejected. No
// friendship edge is created. Returns false when the request does not
// exist or is already resolved.
func (e *Engine) RejectFriendRequest(ctx context.Context, requestID string) (bool, error) {
	if requestID == "" {
		return false, apperrors.NewValidation("request id is required")
	}

	respondedAt := time.Now().UTC().Format(time.RFC3339)

	query := `
		MATCH (fr:FriendRequest {id: $requestId, status: 'pending'})
		SET fr.status = 'rejected', fr.respondedAt = datetime($respondedAt)
		RETURN fr.id AS id
	`

	result, err := e.store.ExecuteWrite(ctx, func(ctx context.Context, tx store.Tx) (any, error) {
		rows, err := tx.Run(ctx, query, map[string]any{
			"requestId":   requestID,
			"respondedAt": respondedAt,
		})
		if err != nil {
			return nil, err
		}
		return len(rows) > 0, nil
	})
	if err != nil {
		return false, apperrors.NewDatabase("failed to reject friend request", err)
	}

	rejected, _ := result.(bool)
	if rejected {
		e.logger.Info("Friend request rejected", zap.String("request_id", requestID))
	}
	return rejected, nil
}

// GetPendingRequest returns the pending request for the ordered
// (sender, recipient) pair, or nil when none exists
func (e *Engine) GetPendingRequest(ctx context.Context, senderID, recipientID string) (*FriendRequest, error) {
	rows, err := e.store.ExecuteQuery(ctx, `
		MATCH (sender:User {id: $senderId})-[:SENT_REQUEST]->(fr:FriendRequest {status: 'pending'})-[:SENT_TO]->(recipient:User {id: $recipientId})
		RETURN fr
	`, map[string]any{
		"senderId":    senderID,
		"recipientId": recipientID,
	})
	if err != nil {
		return nil, apperrors.NewDatabase("failed to look up pending request", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return requestFromProps(store.MapValue(rows[0], "fr"), senderID, recipientID), nil
}

// GetReceivedRequests lists requests addressed to the user, newest first,
// optionally filtered by status
func (e *Engine) GetReceivedRequests(ctx context.Context, userID string, status RequestStatus) ([]*ReceivedRequest, error) {
	query := `
		MATCH (sender:User)-[:SENT_REQUEST]->(fr:FriendRequest)-[:SENT_TO]->(recipient:User {id: $userId})
		RETURN fr, sender
		ORDER BY fr.requestedAt DESC
	`
	params := map[string]any{"userId": userID}
	if status != "" {
		if !status.Valid() {
			return nil, apperrors.NewValidation("status must be one of: pending, accepted, rejected")
		}
		query = `
			MATCH (sender:User)-[:SENT_REQUEST]->(fr:FriendRequest {status: $status})-[:SENT_TO]->(recipient:User {id: $userId})
			RETURN fr, sender
			ORDER BY fr.requestedAt DESC
		`
		params["status"] = string(status)
	}

	rows, err := e.store.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewDatabase("failed to list received requests", err)
	}

	requests := make([]*ReceivedRequest, 0, len(rows))
	for _, row := range rows {
		sender := directory.UserFromProps(store.MapValue(row, "sender"))
		if sender == nil {
			continue
		}
		request := requestFromProps(store.MapValue(row, "fr"), sender.ID, userID)
		if request == nil {
			continue
		}
		requests = append(requests, &ReceivedRequest{FriendRequest: *request, Sender: sender})
	}
	return requests, nil
}

// GetSentRequests lists requests sent by the user, newest first,
// optionally filtered by status
func (e *Engine) GetSentRequests(ctx context.Context, userID string, status RequestStatus) ([]*SentRequest, error) {
	query := `
		MATCH (sender:User {id: $userId})-[:SENT_REQUEST]->(fr:FriendRequest)-[:SENT_TO]->(recipient:User)
		RETURN fr, recipient
		ORDER BY fr.requestedAt DESC
	`
	params := map[string]any{"userId": userID}
	if status != "" {
		if !status.Valid() {
			return nil, apperrors.NewValidation("status must be one of: pending, accepted, rejected")
		}
		query = `
			MATCH (sender:User {id: $userId})-[:SENT_REQUEST]->(fr:FriendRequest {status: $status})-[:SENT_TO]->(recipient:User)
			RETURN fr, recipient
			ORDER BY fr.requestedAt DESC
		`
		params["status"] = string(status)
	}

	rows, err := e.store.ExecuteQuery(ctx, query, params)
	if err != nil {
		return nil, apperrors.NewDatabase("failed to list sent requests", err)
	}

	requests := make([]*SentRequest, 0, len(rows))
	for _, row := range rows {
		recipient := directory.UserFromProps(store.MapValue(row, "recipient"))
		if recipient == nil {
			continue
		}
		request := requestFromProps(store.MapValue(row, "fr"), userID, recipient.ID)
		if request == nil {
			continue
		}
		requests = append(requests, &SentRequest{FriendRequest: *request, Recipient: recipient})
	}
	return requests, nil
}
