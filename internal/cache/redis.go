package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"github.com/sopworks/sopflow/internal/compress"
	"github.com/sopworks/sopflow/internal/model"
)

const documentTTL = time.Hour

func documentKey(id string) string {
	return "document:" + id
}

var _ DocumentCache = (*RedisDocumentCache)(nil)

// RedisDocumentCache stores compressed document payloads in redis with a
// sliding one-hour expiry.
type RedisDocumentCache struct {
	client  *redis.Client
	encoder compress.Compress
}

func NewRedisDocumentCache(client *redis.Client, encoder compress.Compress) *RedisDocumentCache {
	return &RedisDocumentCache{client: client, encoder: encoder}
}

func (r *RedisDocumentCache) GetDocument(ctx context.Context, id uuid.UUID) (*model.Document, error) {
	res := r.client.Get(ctx, documentKey(id.String()))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, nil
		}

		return nil, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, err
	}

	data, err := r.encoder.Decode(buf)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func (r *RedisDocumentCache) SetDocument(ctx context.Context, id uuid.UUID, doc *model.Document) error {
	marshal, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	data, err := r.encoder.Encode(marshal)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, documentKey(id.String()), data, documentTTL).Err()
}

func (r *RedisDocumentCache) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, documentKey(id.String())).Err()
}
