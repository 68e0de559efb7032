package recommend

import (
	"sync"

	"github.com/myshop/affinity/internal/config/structs"
	"github.com/myshop/affinity/internal/repositories/embeddingstore"
	"github.com/myshop/affinity/internal/repositories/vector"
	"github.com/myshop/affinity/pkg/inmemorycache"
)

var (
	once      sync.Once
	handlerV1 *HandlerV1
)

func GetHandler(version int) *HandlerV1 {
	switch version {
	case 1:
		return InitV1()
	default:
		return nil
	}
}

func InitV1() *HandlerV1 {
	if handlerV1 == nil {
		once.Do(func() {
			configs := structs.GetAppConfig().Configs
			handlerV1 = &HandlerV1{
				embeddingStore: embeddingstore.NewRepository(embeddingstore.DefaultVersion),
				index:          vector.NewRepository(vector.DefaultVersion),
				resultCache:    inmemorycache.Instance(),
				defaultLimit:   configs.SimilarityDefaultLimit,
				dimension:      configs.EmbeddingDimension,
			}
		})
	}
	return handlerV1
}

// SetMockRecommendHandler creates the handler with specific database
// instances, for tests.
func SetMockRecommendHandler(store embeddingstore.Store, index vector.Database, cache inmemorycache.InMemoryCache, defaultLimit int, dimension int) *HandlerV1 {
	once.Do(func() {})
	handlerV1 = &HandlerV1{
		embeddingStore: store,
		index:          index,
		resultCache:    cache,
		defaultLimit:   defaultLimit,
		dimension:      dimension,
	}
	return handlerV1
}
