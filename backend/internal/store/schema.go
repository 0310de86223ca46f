package store

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

var schemaConstraints = []string{
	"CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE",
	"CREATE CONSTRAINT user_email_unique IF NOT EXISTS FOR (u:User) REQUIRE u.email IS UNIQUE",
	"CREATE CONSTRAINT user_username_unique IF NOT EXISTS FOR (u:User) REQUIRE u.username IS UNIQUE",
	"CREATE CONSTRAINT friend_request_id_unique IF NOT EXISTS FOR (fr:FriendRequest) REQUIRE fr.id IS UNIQUE",
	"CREATE CONSTRAINT message_id_unique IF NOT EXISTS FOR (m:Message) REQUIRE m.id IS UNIQUE",
}

var schemaIndexes = []string{
	"CREATE INDEX user_email IF NOT EXISTS FOR (u:User) ON (u.email)",
	"CREATE INDEX user_username IF NOT EXISTS FOR (u:User) ON (u.username)",
	"CREATE INDEX friend_request_status IF NOT EXISTS FOR (fr:FriendRequest) ON (fr.status)",
	"CREATE INDEX message_read IF NOT EXISTS FOR (m:Message) ON (m.read)",
}

// EnsureSchema creates the uniqueness constraints and indexes the domain
// relies on. Statements are idempotent; individual failures are logged
// and skipped so a partially initialized database can still be repaired.
func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	for _, stmt := range append(append([]string{}, schemaConstraints...), schemaIndexes...) {
		if _, err := session.Run(ctx, stmt, nil); err != nil {
			s.logger.Warn("Schema statement failed",
				zap.String("statement", stmt),
				zap.Error(err),
			)
		}
	}

	return nil
}
