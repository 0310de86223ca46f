package friends

import (
	"go.uber.org/zap"

	"tsunagu/backend/internal/store"
	"tsunagu/backend/pkg/logger"
)

// MaxRequestMessageLength bounds the optional message on a friend request
const MaxRequestMessageLength = 500

// Engine owns every FriendRequest, ADDED_AS_FRIEND and BLOCKED edge in the
// graph. Friendships are stored symmetrically: accepting a request creates
// both directed edges in one transaction, and removal deletes both.
type Engine struct {
	store  store.Store
	logger *zap.Logger
}

// NewEngine creates a friend relationship engine backed by the given store
func NewEngine(st store.Store) *Engine {
	return &Engine{
		store:  st,
		logger: logger.Get(),
	}
}
