package friends

import (
	"context"

	"go.uber.org/zap"

	"tsunagu/backend/internal/directory"
	"tsunagu/backend/internal/store"
)

// GetFriendConnectionMap builds the ego network of the user out to the
// given depth. Depth 1 is the user plus direct friends; depth 2 adds
// edges between direct friends but introduces no new nodes. The call
// never fails: on any error it logs and returns what it has, so the
// visualization degrades to a partial or empty graph.
func (e *Engine) GetFriendConnectionMap(ctx context.Context, userID string, depth int) *ConnectionMap {
	empty := &ConnectionMap{Nodes: []MapNode{}, Edges: []MapEdge{}}

	userRows, err := e.store.ExecuteQuery(ctx,
		`MATCH (user:User {id: $userId}) RETURN user`,
		map[string]any{"userId": userID})
	if err != nil {
		e.logger.Error("Connection map user lookup failed", zap.String("user_id", userID), zap.Error(err))
		return empty
	}
	if len(userRows) == 0 {
		return empty
	}

	root := directory.UserFromProps(store.MapValue(userRows[0], "user"))
	if root == nil || root.ID == "" {
		return empty
	}

	neighborRows, err := e.store.ExecuteQuery(ctx, `
		MATCH (user:User {id: $userId})-[r:ADDED_AS_FRIEND]-(friend:User)
		RETURN friend, r.addedAt AS addedAt
	`, map[string]any{"userId": userID})
	if err != nil {
		e.logger.Error("Connection map neighbor query failed", zap.String("user_id", userID), zap.Error(err))
		neighborRows = nil
	}

	cm, friendIDs := assembleEgoNetwork(root, neighborRows)

	if depth > 1 && len(friendIDs) > 0 {
		secondRows, err := e.store.ExecuteQuery(ctx, `
			MATCH (user:User {id: $userId})-[:ADDED_AS_FRIEND]-(f1:User)-[r:ADDED_AS_FRIEND]-(f2:User)
			WHERE f2.id <> $userId AND f2.id IN $friendIds
			RETURN f1.id AS sourceId, f2.id AS targetId, r.addedAt AS addedAt
		`, map[string]any{
			"userId":    userID,
			"friendIds": friendIDs,
		})
		if err != nil {
			e.logger.Error("Connection map second-degree query failed", zap.String("user_id", userID), zap.Error(err))
		} else {
			addNeighborEdges(cm, secondRows)
		}
	}

	return cm
}

// assembleEgoNetwork builds the root node, the deduplicated direct-friend
// nodes and one edge per friendship. Symmetric storage yields each
// friendship twice in the adjacency rows, so edges are keyed by
// unordered pair.
func assembleEgoNetwork(root *directory.User, neighborRows []store.Row) (*ConnectionMap, []any) {
	cm := &ConnectionMap{
		Nodes: []MapNode{{ID: root.ID, Label: root.Username, Avatar: root.Profile.Avatar}},
		Edges: []MapEdge{},
	}

	seen := map[string]bool{root.ID: true}
	friendIDs := []any{}

	for _, row := range neighborRows {
		friend := directory.UserFromProps(store.MapValue(row, "friend"))
		if friend == nil || friend.ID == "" || seen[friend.ID] {
			continue
		}
		seen[friend.ID] = true
		friendIDs = append(friendIDs, friend.ID)

		cm.Nodes = append(cm.Nodes, MapNode{
			ID:     friend.ID,
			Label:  friend.Username,
			Avatar: friend.Profile.Avatar,
		})
		cm.Edges = append(cm.Edges, MapEdge{
			Source:  root.ID,
			Target:  friend.ID,
			AddedAt: store.StringValue(row, "addedAt"),
		})
	}

	return cm, friendIDs
}

// addNeighborEdges appends edges between direct friends, deduplicated by
// unordered pair and against edges already present
func addNeighborEdges(cm *ConnectionMap, secondRows []store.Row) {
	seenPairs := map[string]bool{}
	for _, edge := range cm.Edges {
		seenPairs[pairKey(edge.Source, edge.Target)] = true
	}

	for _, row := range secondRows {
		sourceID := store.StringValue(row, "sourceId")
		targetID := store.StringValue(row, "targetId")
		if sourceID == "" || targetID == "" || sourceID == targetID {
			continue
		}

		key := pairKey(sourceID, targetID)
		if seenPairs[key] {
			continue
		}
		seenPairs[key] = true

		cm.Edges = append(cm.Edges, MapEdge{
			Source:  sourceID,
			Target:  targetID,
			AddedAt: store.StringValue(row, "addedAt"),
		})
	}
}

func pairKey(a, b string) string {
	if a < b {
		return a + "|" + b
	}
	return b + "|" + a
}
