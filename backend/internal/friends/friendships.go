package friends

import (
	"context"

	"go.uber.org/zap"

	"tsunagu/backend/internal/directory"
	"tsunagu/backend/internal/store"
	"tsunagu/backend/pkg/apperrors"
)

// IsFriend reports whether a friendship edge exists from userID to otherID.
// Edges are stored symmetrically, so a single outbound check suffices.
func (e *Engine) IsFriend(ctx context.Context, userID, otherID string) (bool, error) {
	rows, err := e.store.ExecuteQuery(ctx, `
		MATCH (user:User {id: $userId})-[:ADDED_AS_FRIEND]->(friend:User {id: $otherId})
		RETURN count(*) > 0 AS exists
	`, map[string]any{
		"userId":  userID,
		"otherId": otherID,
	})
	if err != nil {
		return false, apperrors.NewDatabase("failed to check friendship", err)
	}
	if len(rows) == 0 {
		return false, nil
	}
	return store.BoolValue(rows[0], "exists"), nil
}

// RemoveFriend deletes the friendship between the two users in both
// directions. Returns false when no friendship existed.
func (e *Engine) RemoveFriend(ctx context.Context, userID, friendID string) (bool, error) {
	if userID == "" || friendID == "" {
		return false, apperrors.NewValidation("user and friend ids are required")
	}

	result, err := e.store.ExecuteWrite(ctx, func(ctx context.Context, tx store.Tx) (any, error) {
		rows, err := tx.Run(ctx, `
			MATCH (user:User {id: $userId})-[r:ADDED_AS_FRIEND]-(friend:User {id: $friendId})
			DELETE r
			RETURN count(r) AS deleted
		`, map[string]any{
			"userId":   userID,
			"friendId": friendID,
		})
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			return false, nil
		}
		return store.Int64Value(rows[0], "deleted") > 0, nil
	})
	if err != nil {
		return false, apperrors.NewDatabase("failed to remove friend", err)
	}

	removed, _ := result.(bool)
	if removed {
		e.logger.Info("Friendship removed",
			zap.String("user_id", userID),
			zap.String("friend_id", friendID),
		)
	}
	return removed, nil
}

// GetFriends lists the user's friends, most recently added first
func (e *Engine) GetFriends(ctx context.Context, userID string) ([]*Friend, error) {
	rows, err := e.store.ExecuteQuery(ctx, `
		MATCH (user:User {id: $userId})-[r:ADDED_AS_FRIEND]->(friend:User)
		RETURN friend, r.addedAt AS addedAt
		ORDER BY r.addedAt DESC
	`, map[string]any{"userId": userID})
	if err != nil {
		return nil, apperrors.NewDatabase("failed to list friends", err)
	}

	friends := make([]*Friend, 0, len(rows))
	for _, row := range rows {
		user := directory.UserFromProps(store.MapValue(row, "friend"))
		if user == nil {
			continue
		}
		friends = append(friends, &Friend{
			User:    user,
			AddedAt: store.TimeValue(row, "addedAt"),
		})
	}
	return friends, nil
}

// GetMutualFriends returns the users that are friends of both userID and
// targetID
func (e *Engine) GetMutualFriends(ctx context.Context, userID, targetID string) ([]*directory.User, error) {
	if targetID == "" {
		return nil, apperrors.NewValidation("target user id is required")
	}

	rows, err := e.store.ExecuteQuery(ctx, `
		MATCH (user:User {id: $userId})-[:ADDED_AS_FRIEND]->(mutual:User)<-[:ADDED_AS_FRIEND]-(target:User {id: $targetId})
		RETURN DISTINCT mutual
		ORDER BY mutual.username
	`, map[string]any{
		"userId":   userID,
		"targetId": targetID,
	})
	if err != nil {
		return nil, apperrors.NewDatabase("failed to list mutual friends", err)
	}

	users := make([]*directory.User, 0, len(rows))
	for _, row := range rows {
		if user := directory.UserFromProps(store.MapValue(row, "mutual")); user != nil {
			users = append(users, user)
		}
	}
	return users, nil
}
