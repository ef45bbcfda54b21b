package graph

import (
	"context"

	"github.com/terasky/vendorgraph/pkg/cache"
)

// LazyStore defers dialing until the first query. The underlying
// connection is a process-lifetime singleton; a failed dial is retried on
// the next call rather than poisoning the process.
type LazyStore struct {
	conn *cache.Conn[Store]
}

var _ Store = (*LazyStore)(nil)

// NewLazyStore wraps a dial function in a lazily-connected store.
func NewLazyStore(dial func() (Store, error)) *LazyStore {
	return &LazyStore{conn: cache.NewConn(dial)}
}

// Run dials on first use and forwards the query.
func (l *LazyStore) Run(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	store, err := l.conn.Get()
	if err != nil {
		return nil, err
	}
	return store.Run(ctx, query, params)
}

// Close tears down the connection if one was ever established.
func (l *LazyStore) Close(ctx context.Context) error {
	return l.conn.Close(func(s Store) error {
		return s.Close(ctx)
	})
}
