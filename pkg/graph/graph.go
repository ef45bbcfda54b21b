// Package graph abstracts the typed relationship store holding the
// vendor → product → document graph and implements its Neo4j adapter.
// Every read the search path performs goes through a Querier, which layers
// caching and per-call timeouts on top of the raw Store.
package graph

import (
	"context"
	"errors"
)

// Store is the minimal contract a graph backend must satisfy: run a
// declarative query with parameters and return rows as column-name → value
// maps.
type Store interface {
	Run(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
	Close(ctx context.Context) error
}

// ErrUnavailable wraps any backend failure so callers can branch on
// upstream-unavailable without inspecting driver-specific errors.
var ErrUnavailable = errors.New("graph store unavailable")

// row helpers; drivers hand back loosely-typed values.

func rowString(row map[string]any, key string) string {
	if v, ok := row[key].(string); ok {
		return v
	}
	return ""
}

func rowInt64(row map[string]any, key string) int64 {
	switch v := row[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}
