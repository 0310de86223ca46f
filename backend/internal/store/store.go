package store

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"tsunagu/backend/pkg/logger"
)

// Row is a single query result record, keyed by column name. Graph nodes
// and relationships are flattened to their properties, and all temporal
// values are normalized to RFC 3339 strings before reaching domain code.
type Row = map[string]any

// Tx runs statements inside one managed transaction
type Tx interface {
	Run(ctx context.Context, query string, params map[string]any) ([]Row, error)
}

// UnitOfWork is a multi-statement operation executed atomically
type UnitOfWork func(ctx context.Context, tx Tx) (any, error)

// Store is the query execution interface consumed by the domain layers.
// Each call acquires one session and releases it unconditionally.
type Store interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]any) ([]Row, error)
	ExecuteRead(ctx context.Context, work UnitOfWork) (any, error)
	ExecuteWrite(ctx context.Context, work UnitOfWork) (any, error)
}

// Neo4jStore executes queries against a Neo4j database
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// Open connects to Neo4j and verifies connectivity
func Open(ctx context.Context, uri, user, password string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}

	return NewNeo4jStore(driver), nil
}

// NewNeo4jStore wraps an existing driver
func NewNeo4jStore(driver neo4j.DriverWithContext) *Neo4jStore {
	return &Neo4jStore{
		driver: driver,
		logger: logger.Get(),
	}
}

// Close closes the underlying driver connection
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// ExecuteQuery runs a single read statement in an auto-commit transaction
func (s *Neo4jStore) ExecuteQuery(ctx context.Context, query string, params map[string]any) ([]Row, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect records: %w", err)
	}

	return normalizeRecords(records), nil
}

// ExecuteRead runs a unit of work inside one managed read transaction
func (s *Neo4jStore) ExecuteRead(ctx context.Context, work UnitOfWork) (any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	return session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(ctx, &managedTx{tx: tx})
	})
}

// ExecuteWrite runs a unit of work inside one managed write transaction.
// Either every statement commits or none do.
func (s *Neo4jStore) ExecuteWrite(ctx context.Context, work UnitOfWork) (any, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	return session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return work(ctx, &managedTx{tx: tx})
	})
}

type managedTx struct {
	tx neo4j.ManagedTransaction
}

func (t *managedTx) Run(ctx context.Context, query string, params map[string]any) ([]Row, error) {
	result, err := t.tx.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("failed to run statement: %w", err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect records: %w", err)
	}

	return normalizeRecords(records), nil
}
