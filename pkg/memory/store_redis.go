package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisDocumentKey = "anima:memory:document"

// RedisStore persists the document under a single Redis key.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore wraps a Redis client. Close closes the client.
func NewRedisStore(client redis.UniversalClient) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("memory: redis client cannot be nil")
	}
	return &RedisStore{client: client}, nil
}

// Load reads and decodes the document. A missing key yields an empty
// document.
func (s *RedisStore) Load(ctx context.Context) (*Document, error) {
	data, err := s.client.Get(ctx, redisDocumentKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &Document{Version: DocumentVersion}, nil
		}
		return nil, fmt.Errorf("memory: read document: %w", err)
	}
	return decodeDocument(data)
}

// Save writes the encoded document under the document key.
func (s *RedisStore) Save(ctx context.Context, doc *Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, redisDocumentKey, data, 0).Err(); err != nil {
		return fmt.Errorf("memory: write document: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
