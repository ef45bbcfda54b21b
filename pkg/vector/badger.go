package vector

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/terasky/vendorgraph/pkg/types"
	"github.com/terasky/vendorgraph/pkg/utils"
)

const docPrefix = "doc:"

// BadgerStore is an embedded vector store over BadgerDB. Chunks are stored
// as JSON values under a common prefix and queries do a filtered scan with
// brute-force cosine scoring, which holds up well into the tens of
// thousands of chunks this corpus stays within.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ Store = (*BadgerStore)(nil)

// badgerLoggerAdapter routes badger's internal logging through slog.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBadgerStore opens (or creates) a store at path. An empty path opens
// an in-memory store, used by tests.
func OpenBadgerStore(path string, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, fmt.Errorf("open vector store: %w", err)
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = &badgerLoggerAdapter{logger: logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}
	return &BadgerStore{db: db, logger: logger}, nil
}

func docKey(id string) []byte {
	return []byte(docPrefix + id)
}

// Add indexes the documents, replacing chunks that share an id.
func (s *BadgerStore) Add(ctx context.Context, docs []types.Document) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i := range docs {
		if err := docs[i].Validate(); err != nil {
			return fmt.Errorf("add chunk %d: %w", i, err)
		}
		raw, err := json.Marshal(&docs[i])
		if err != nil {
			return fmt.Errorf("encode chunk %q: %w", docs[i].ID, err)
		}
		if err := wb.Set(docKey(docs[i].ID), raw); err != nil {
			return fmt.Errorf("write chunk %q: %w", docs[i].ID, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush chunks: %w", err)
	}
	return nil
}

// Query scans all chunks matching the filters and keeps the topK highest
// cosine similarities. Range filters are not expressible over the scan
// encoding and are rejected with ErrUnsupportedFilter.
func (s *BadgerStore) Query(ctx context.Context, embedding []float32, topK int, filters types.FilterSet) (*types.SearchResult, error) {
	for _, f := range filters {
		if f.Op == types.OpRange {
			return nil, fmt.Errorf("%w: %s on %q", ErrUnsupportedFilter, f.Op, f.Field)
		}
	}
	if topK <= 0 {
		return types.EmptySearchResult(), nil
	}

	var scored []utils.ScoredItem[types.Document]
	err := s.scan(ctx, func(doc types.Document) error {
		if !matches(doc, filters) {
			return nil
		}
		score := utils.CosineSimilarity(embedding, doc.Embedding)
		scored = append(scored, utils.ScoredItem[types.Document]{Item: doc, Score: score})
		return nil
	})
	if err != nil {
		return nil, err
	}

	top := utils.TopKByScore(scored, topK)
	result := types.EmptySearchResult()
	for _, item := range top {
		appendDoc(result, item.Item, item.Score)
	}
	return result, nil
}

// GetBySourceIDs hydrates every chunk belonging to the given sources,
// preserving the id order and ordering chunks within a source.
func (s *BadgerStore) GetBySourceIDs(ctx context.Context, sourceIDs []string) (*types.SearchResult, error) {
	result := types.EmptySearchResult()
	if len(sourceIDs) == 0 {
		return result, nil
	}

	bySource := make(map[string][]types.Document, len(sourceIDs))
	err := s.scan(ctx, func(doc types.Document) error {
		bySource[doc.SourceID] = append(bySource[doc.SourceID], doc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, sourceID := range sourceIDs {
		chunks := bySource[sourceID]
		for i := 0; i < len(chunks); i++ {
			min := i
			for j := i + 1; j < len(chunks); j++ {
				if chunks[j].Chunk < chunks[min].Chunk {
					min = j
				}
			}
			chunks[i], chunks[min] = chunks[min], chunks[i]
			appendDoc(result, chunks[i], 1.0)
		}
	}
	return result, nil
}

// All streams every stored document to fn.
func (s *BadgerStore) All(ctx context.Context, fn func(types.Document) error) error {
	return s.scan(ctx, fn)
}

// Count reports the number of stored chunks.
func (s *BadgerStore) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(docPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return count, nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) scan(ctx context.Context, fn func(types.Document) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(docPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(raw []byte) error {
				var doc types.Document
				if err := json.Unmarshal(raw, &doc); err != nil {
					return fmt.Errorf("decode chunk %q: %w", it.Item().Key(), err)
				}
				return fn(doc)
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func matches(doc types.Document, filters types.FilterSet) bool {
	for _, f := range filters {
		if !matchField(doc, f) {
			return false
		}
	}
	return true
}

func matchField(doc types.Document, f types.Filter) bool {
	value := fieldValue(doc, f.Field)
	want := types.NormalizeName(f.Value)
	switch f.Op {
	case types.OpEquals:
		for _, v := range value {
			if types.NormalizeName(v) == want {
				return true
			}
		}
	case types.OpContains:
		for _, v := range value {
			if strings.Contains(types.NormalizeName(v), want) {
				return true
			}
		}
	}
	return false
}

func fieldValue(doc types.Document, field string) []string {
	switch field {
	case "vendor":
		return []string{doc.Vendor}
	case "product":
		return doc.Products
	case "type":
		return doc.Types
	case "source_id":
		return []string{doc.SourceID}
	default:
		return nil
	}
}

func appendDoc(r *types.SearchResult, doc types.Document, score float64) {
	r.Documents = append(r.Documents, doc.Text)
	r.Metadatas = append(r.Metadatas, types.ChunkMeta{
		SourceID: doc.SourceID,
		Vendor:   doc.Vendor,
		Product:  strings.Join(doc.Products, ","),
		Type:     strings.Join(doc.Types, ","),
		Date:     doc.Date.Format("2006-01-02"),
		Chunk:    doc.Chunk,
	})
	r.Distances = append(r.Distances, score)
	r.IDs = append(r.IDs, doc.ID)
}
