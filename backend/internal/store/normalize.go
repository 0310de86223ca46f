package store

import (
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
)

func normalizeRecords(records []*neo4j.Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row := make(Row, len(record.Keys))
		for _, key := range record.Keys {
			value, _ := record.Get(key)
			row[key] = normalizeValue(value)
		}
		rows = append(rows, row)
	}
	return rows
}

// normalizeValue flattens graph entities to property maps and converts
// Neo4j temporal values to RFC 3339 strings. Domain code never sees the
// driver's native date/time representation.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case dbtype.Node:
		return normalizeProps(v.Props)
	case dbtype.Relationship:
		return normalizeProps(v.Props)
	case time.Time:
		return v.UTC().Format(time.RFC3339)
	case dbtype.Date:
		return v.Time().UTC().Format(time.RFC3339)
	case dbtype.LocalDateTime:
		return v.Time().UTC().Format(time.RFC3339)
	case []any:
		normalized := make([]any, 0, len(v))
		for _, item := range v {
			normalized = append(normalized, normalizeValue(item))
		}
		return normalized
	case map[string]any:
		return normalizeProps(v)
	default:
		return value
	}
}

func normalizeProps(props map[string]any) map[string]any {
	normalized := make(map[string]any, len(props))
	for key, value := range props {
		normalized[key] = normalizeValue(value)
	}
	return normalized
}
