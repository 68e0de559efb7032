package recommend

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/myshop/affinity/internal/repositories/embeddingstore"
	"github.com/myshop/affinity/internal/repositories/vector"
	"github.com/myshop/affinity/pkg/inmemorycache"
	"github.com/myshop/affinity/pkg/metric"
)

const (
	maxLimit             = 100
	resultCacheTtlInSec  = 60
	recommendCachePrefix = "rec|"
)

var ErrInvalidRequest = errors.New("invalid request")

type HandlerV1 struct {
	embeddingStore embeddingstore.Store
	index          vector.Database
	resultCache    inmemorycache.InMemoryCache
	defaultLimit   int
	dimension      int
}

// Recommend ranks products against the user's interest vector. A user
// without an embedding gets an empty result, not an error.
func (h *HandlerV1) Recommend(userId string, limit int) (*Response, error) {
	startTime := time.Now()
	limit = h.normalizeLimit(limit)
	metric.Incr("recommend_request", nil)

	if cached := h.fromCache(userId, limit); cached != nil {
		metric.Incr("recommend_cache_hit", nil)
		return cached, nil
	}

	user, err := h.embeddingStore.Find(embeddingstore.UserEntityId(userId))
	if err != nil {
		metric.Incr("recommend_request_5xx", nil)
		log.Error().Msgf("Recommend failed: error loading embedding for user %s: %v", userId, err)
		return nil, err
	}
	if user == nil {
		metric.Incr("recommend_cold_user", nil)
		return &Response{Results: []Result{}}, nil
	}

	matches, err := h.index.FindSimilar(vector.ProductSpace, user.Vector, limit)
	if err != nil {
		metric.Incr("recommend_request_5xx", nil)
		log.Error().Msgf("Recommend failed: error querying index for user %s: %v", userId, err)
		return nil, err
	}
	response := &Response{Results: adaptMatches(matches)}
	h.toCache(userId, limit, response)
	metric.Timing("recommend_latency", time.Since(startTime), nil)
	return response, nil
}

// FindSimilar ranks entities in the given space against a caller-supplied
// vector.
func (h *HandlerV1) FindSimilar(request *FindSimilarRequest) (*Response, error) {
	startTime := time.Now()
	metric.Incr("find_similar_request", []string{"space:" + request.Space})

	if valid, msg := validateFindSimilarRequest(request, h.dimension); !valid {
		metric.Incr("find_similar_request_4xx", nil)
		return nil, errors.Join(ErrInvalidRequest, errors.New(msg))
	}
	request.Limit = h.normalizeLimit(request.Limit)

	matches, err := h.index.FindSimilar(request.Space, request.Vector, request.Limit)
	if err != nil {
		metric.Incr("find_similar_request_5xx", nil)
		log.Error().Msgf("FindSimilar failed: error querying index: %v", err)
		return nil, err
	}
	metric.Timing("find_similar_latency", time.Since(startTime), nil)
	return &Response{Results: adaptMatches(matches)}, nil
}

func (h *HandlerV1) normalizeLimit(limit int) int {
	if limit <= 0 {
		limit = h.defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return limit
}

func (h *HandlerV1) cacheKey(userId string, limit int) []byte {
	return []byte(recommendCachePrefix + userId + "|" + strconv.Itoa(limit))
}

func (h *HandlerV1) fromCache(userId string, limit int) *Response {
	if h.resultCache == nil {
		return nil
	}
	raw, err := h.resultCache.Get(h.cacheKey(userId, limit))
	if err != nil || len(raw) == 0 {
		return nil
	}
	var cached cachedResponse
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil
	}
	return &Response{Results: cached.Results}
}

func (h *HandlerV1) toCache(userId string, limit int, response *Response) {
	if h.resultCache == nil {
		return
	}
	raw, err := json.Marshal(cachedResponse{Results: response.Results, CachedAt: time.Now().UTC()})
	if err != nil {
		return
	}
	if err := h.resultCache.SetEx(h.cacheKey(userId, limit), raw, resultCacheTtlInSec); err != nil {
		log.Debug().Msgf("Error caching recommend response for user %s: %v", userId, err)
	}
}
