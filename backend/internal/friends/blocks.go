package friends

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tsunagu/backend/internal/directory"
	"tsunagu/backend/internal/store"
	"tsunagu/backend/pkg/apperrors"
)

// BlockUser places a full block from userID to blockedID. Blocking an
// already-blocked user is a no-op; the original block timestamp is kept.
func (e *Engine) BlockUser(ctx context.Context, userID, blockedID string) error {
	if userID == "" || blockedID == "" {
		return apperrors.NewValidation("user and blocked ids are required")
	}
	if userID == blockedID {
		return apperrors.NewValidation("cannot block yourself")
	}

	now := time.Now().UTC().Format(time.RFC3339)

	result, err := e.store.ExecuteWrite(ctx, func(ctx context.Context, tx store.Tx) (any, error) {
		rows, err := tx.Run(ctx, `
			MATCH (user:User {id: $userId})
			MATCH (blocked:User {id: $blockedId})
			MERGE (user)-[r:BLOCKED]->(blocked)
			ON CREATE SET r.level = 'full', r.blockedAt = datetime($now)
			RETURN r
		`, map[string]any{
			"userId":    userID,
			"blockedId": blockedID,
			"now":       now,
		})
		if err != nil {
			return nil, err
		}
		return len(rows) > 0, nil
	})
	if err != nil {
		return apperrors.NewDatabase("failed to block user", err)
	}

	blocked, _ := result.(bool)
	if !blocked {
		return apperrors.NewNotFound("user not found")
	}

	e.logger.Info("User blocked",
		zap.String("user_id", userID),
		zap.String("blocked_id", blockedID),
	)
	return nil
}

// UnblockUser removes the block from userID to blockedID. Removing an
// absent block is a no-op.
func (e *Engine) UnblockUser(ctx context.Context, userID, blockedID string) error {
	if userID == "" || blockedID == "" {
		return apperrors.NewValidation("user and blocked ids are required")
	}

	_, err := e.store.ExecuteWrite(ctx, func(ctx context.Context, tx store.Tx) (any, error) {
		return tx.Run(ctx, `
			OPTIONAL MATCH (user:User {id: $userId})-[r:BLOCKED]->(blocked:User {id: $blockedId})
			DELETE r
		`, map[string]any{
			"userId":    userID,
			"blockedId": blockedID,
		})
	})
	if err != nil {
		return apperrors.NewDatabase("failed to unblock user", err)
	}

	e.logger.Info("User unblocked",
		zap.String("user_id", userID),
		zap.String("blocked_id", blockedID),
	)
	return nil
}

// GetBlockedUsers lists the users blocked by userID, most recent first
func (e *Engine) GetBlockedUsers(ctx context.Context, userID string) ([]*BlockedUser, error) {
	rows, err := e.store.ExecuteQuery(ctx, `
		MATCH (user:User {id: $userId})-[r:BLOCKED]->(blocked:User)
		RETURN blocked, r.blockedAt AS blockedAt
		ORDER BY r.blockedAt DESC
	`, map[string]any{"userId": userID})
	if err != nil {
		return nil, apperrors.NewDatabase("failed to list blocked users", err)
	}

	blocked := make([]*BlockedUser, 0, len(rows))
	for _, row := range rows {
		user := directory.UserFromProps(store.MapValue(row, "blocked"))
		if user == nil {
			continue
		}
		blocked = append(blocked, &BlockedUser{
			User:      user,
			BlockedAt: store.TimeValue(row, "blockedAt"),
		})
	}
	return blocked, nil
}
