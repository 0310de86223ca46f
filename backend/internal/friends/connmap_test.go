package friends

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsunagu/backend/internal/directory"
	"tsunagu/backend/internal/store"
)

func friendRow(id, username, avatar, addedAt string) store.Row {
	return store.Row{
		"friend": map[string]any{
			"id":            id,
			"username":      username,
			"profileAvatar": avatar,
		},
		"addedAt": addedAt,
	}
}

func TestAssembleEgoNetwork(t *testing.T) {
	root := &directory.User{ID: "u1", Username: "alice", Profile: directory.Profile{Avatar: "a.png"}}

	cm, friendIDs := assembleEgoNetwork(root, []store.Row{
		friendRow("u2", "bob", "b.png", "2024-01-01T00:00:00Z"),
		friendRow("u3", "carol", "", "2024-02-01T00:00:00Z"),
	})

	require.Len(t, cm.Nodes, 3)
	assert.Equal(t, MapNode{ID: "u1", Label: "alice", Avatar: "a.png"}, cm.Nodes[0])
	assert.Equal(t, MapNode{ID: "u2", Label: "bob", Avatar: "b.png"}, cm.Nodes[1])
	assert.Equal(t, MapNode{ID: "u3", Label: "carol"}, cm.Nodes[2])

	require.Len(t, cm.Edges, 2)
	assert.Equal(t, MapEdge{Source: "u1", Target: "u2", AddedAt: "2024-01-01T00:00:00Z"}, cm.Edges[0])
	assert.Equal(t, MapEdge{Source: "u1", Target: "u3", AddedAt: "2024-02-01T00:00:00Z"}, cm.Edges[1])

	assert.Equal(t, []any{"u2", "u3"}, friendIDs)
}

func TestAssembleEgoNetwork_DeduplicatesFriends(t *testing.T) {
	root := &directory.User{ID: "u1", Username: "alice"}

	// Symmetric storage returns each friendship once per direction
	cm, friendIDs := assembleEgoNetwork(root, []store.Row{
		friendRow("u2", "bob", "", "2024-01-01T00:00:00Z"),
		friendRow("u2", "bob", "", "2024-01-01T00:00:00Z"),
	})

	assert.Len(t, cm.Nodes, 2)
	assert.Len(t, cm.Edges, 1)
	assert.Equal(t, []any{"u2"}, friendIDs)
}

func TestAssembleEgoNetwork_SkipsMalformedRows(t *testing.T) {
	root := &directory.User{ID: "u1", Username: "alice"}

	cm, friendIDs := assembleEgoNetwork(root, []store.Row{
		{"friend": nil},
		{"friend": map[string]any{"username": "ghost"}},
		friendRow("u2", "bob", "", "2024-01-01T00:00:00Z"),
	})

	assert.Len(t, cm.Nodes, 2)
	assert.Len(t, cm.Edges, 1)
	assert.Equal(t, []any{"u2"}, friendIDs)
}

func TestAssembleEgoNetwork_NoFriends(t *testing.T) {
	root := &directory.User{ID: "u1", Username: "alice"}

	cm, friendIDs := assembleEgoNetwork(root, nil)

	require.Len(t, cm.Nodes, 1)
	assert.Equal(t, "u1", cm.Nodes[0].ID)
	assert.Empty(t, cm.Edges)
	assert.Empty(t, friendIDs)
}

func TestAddNeighborEdges(t *testing.T) {
	cm := &ConnectionMap{
		Nodes: []MapNode{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}},
		Edges: []MapEdge{
			{Source: "u1", Target: "u2"},
			{Source: "u1", Target: "u3"},
		},
	}

	addNeighborEdges(cm, []store.Row{
		{"sourceId": "u2", "targetId": "u3", "addedAt": "2024-03-01T00:00:00Z"},
	})

	require.Len(t, cm.Edges, 3)
	assert.Equal(t, MapEdge{Source: "u2", Target: "u3", AddedAt: "2024-03-01T00:00:00Z"}, cm.Edges[2])
}

func TestAddNeighborEdges_DeduplicatesUnorderedPairs(t *testing.T) {
	cm := &ConnectionMap{
		Edges: []MapEdge{{Source: "u1", Target: "u2"}},
	}

	addNeighborEdges(cm, []store.Row{
		// Already present as a direct edge, in the opposite direction
		{"sourceId": "u2", "targetId": "u1", "addedAt": "2024-03-01T00:00:00Z"},
		// The same friendship seen from both endpoints
		{"sourceId": "u2", "targetId": "u3", "addedAt": "2024-03-01T00:00:00Z"},
		{"sourceId": "u3", "targetId": "u2", "addedAt": "2024-03-01T00:00:00Z"},
		// Self-loops and incomplete rows are dropped
		{"sourceId": "u2", "targetId": "u2"},
		{"sourceId": "", "targetId": "u3"},
	})

	assert.Len(t, cm.Edges, 2)
}

func TestPairKey(t *testing.T) {
	assert.Equal(t, pairKey("a", "b"), pairKey("b", "a"))
	assert.NotEqual(t, pairKey("a", "b"), pairKey("a", "c"))
}
