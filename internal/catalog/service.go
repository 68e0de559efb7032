package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/myshop/affinity/internal/embedder"
	"github.com/myshop/affinity/internal/engine"
	"github.com/myshop/affinity/internal/repositories/embeddingstore"
	"github.com/myshop/affinity/internal/repositories/vector"
	"github.com/myshop/affinity/pkg/metric"
)

var (
	ErrEmbedderDisabled = errors.New("no embedding provider configured")
	ErrConflict         = errors.New("embedding version conflict, retries exhausted")
)

// Service keeps product embeddings in step with catalog mutations. The
// store row is written first; the similarity index follows.
type Service interface {
	CreateEmbedding(ctx context.Context, productId int64, text string) error
	UpdateEmbedding(ctx context.Context, productId int64, text string) error
	DeleteEmbedding(ctx context.Context, productId int64) error
}

type service struct {
	embedder   embedder.Embedder
	store      embeddingstore.Store
	index      vector.Database
	maxRetries int
}

func NewService(provider embedder.Embedder, store embeddingstore.Store, index vector.Database, maxRetries int) Service {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &service{
		embedder:   provider,
		store:      store,
		index:      index,
		maxRetries: maxRetries,
	}
}

func (s *service) CreateEmbedding(ctx context.Context, productId int64, text string) error {
	return s.upsert(ctx, productId, text, "create")
}

func (s *service) UpdateEmbedding(ctx context.Context, productId int64, text string) error {
	return s.upsert(ctx, productId, text, "update")
}

func (s *service) upsert(ctx context.Context, productId int64, text string, operation string) error {
	if s.embedder == nil {
		return ErrEmbedderDisabled
	}
	startTime := time.Now()
	productVector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return err
	}
	entityId := embeddingstore.ProductEntityId(productId)
	var embedding *engine.EntityEmbedding
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		current, err := s.store.Find(entityId)
		if err != nil {
			return err
		}
		embedding = &engine.EntityEmbedding{
			EntityId:      entityId,
			Vector:        productVector,
			EventCount:    1,
			LastUpdatedAt: time.Now().UTC(),
		}
		if current != nil {
			embedding.EventCount = current.EventCount
			embedding.Version = current.Version
		}
		saved, err := s.store.Save(embedding)
		if err != nil {
			return err
		}
		if saved {
			break
		}
		if attempt == s.maxRetries-1 {
			metric.Incr("catalog_conflict_exhausted_count", nil)
			return ErrConflict
		}
	}
	if err := s.index.Upsert(vector.ProductSpace, embedding); err != nil {
		// The store row is the record of truth. The index catches up on
		// the next write or sweep.
		metric.Incr("catalog_index_failure_count", nil)
		log.Error().Msgf("Error indexing product %d: %v", productId, err)
	}
	metric.Incr("catalog_sync_count", []string{"operation:" + operation})
	metric.Timing("catalog_sync_latency", time.Since(startTime), nil)
	return nil
}

func (s *service) DeleteEmbedding(ctx context.Context, productId int64) error {
	entityId := embeddingstore.ProductEntityId(productId)
	if err := s.store.Delete(entityId); err != nil {
		return err
	}
	if err := s.index.Delete(vector.ProductSpace, entityId); err != nil {
		metric.Incr("catalog_index_failure_count", nil)
		log.Error().Msgf("Error removing product %d from index: %v", productId, err)
		return err
	}
	metric.Incr("catalog_sync_count", []string{"operation:delete"})
	return nil
}
