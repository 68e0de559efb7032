package embeddingstore

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gocql/gocql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/myshop/affinity/internal/engine"
	"github.com/myshop/affinity/pkg/ds"
	"github.com/myshop/affinity/pkg/metric"
	"github.com/myshop/affinity/pkg/scylla"
)

const (
	envPrefix = "STORAGE_EMBEDDING_STORE"
	tableName = "entity_embeddings"
)

// ScyllaStore shards entity embeddings across one or more scylla clusters.
// Conditional writes use lightweight transactions so concurrent consumers
// never overwrite each other's updates.
type ScyllaStore struct {
	shards map[int]shardData
	count  int
}

type shardData struct {
	session  *gocql.Session
	keyspace string
}

func initScyllaStore() Store {
	if embeddingStore == nil {
		once.Do(func() {
			queryCache = ds.NewSyncMap[string, string]()
			shards := initShards()
			if len(shards) == 0 {
				log.Panic().Msgf("no embedding store shards configured, set STORAGE_EMBEDDING_STORE_COUNT")
			}
			embeddingStore = &ScyllaStore{
				shards: shards,
				count:  len(shards),
			}
		})
	}
	return embeddingStore
}

func initShards() map[int]shardData {
	shards := make(map[int]shardData)
	count := appConfig.StorageEmbeddingStoreCount
	for configId := 1; configId <= count; configId++ {
		configPrefix := fmt.Sprintf("%s_%d", envPrefix, configId)
		clusterConfig, err := scylla.BuildClusterConfigFromEnv(configPrefix)
		if err != nil {
			log.Panic().Msgf("error building scylla db cluster for configPrefix - %v with error %v", configPrefix, err)
		}
		session, err := clusterConfig.CreateSession()
		if err != nil {
			log.Panic().Msgf("Error connecting scylla db.Error - %#v", err)
		}
		shards[configId] = shardData{
			session:  session,
			keyspace: viper.GetString(configPrefix + "_KEYSPACE"),
		}
	}
	return shards
}

// shardFor routes an entity to a shard by hash, stable across restarts.
func (s *ScyllaStore) shardFor(entityId string) shardData {
	idx := int(xxhash.Sum64String(entityId)%uint64(s.count)) + 1
	return s.shards[idx]
}

func (s *ScyllaStore) Find(entityId string) (*engine.EntityEmbedding, error) {
	startTime := time.Now()
	metric.Incr("embedding_store_db_retrieve_count", nil)
	shard := s.shardFor(entityId)
	query := s.preparedQuery(shard, RetrieveQuery, "retrieve")
	embedding := &engine.EntityEmbedding{}
	err := query.Bind(entityId).Consistency(gocql.Quorum).
		Scan(&embedding.EntityId, &embedding.Vector, &embedding.EventCount, &embedding.LastUpdatedAt, &embedding.Version)
	if err == gocql.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		metric.Incr("embedding_store_db_retrieve_failure", []string{"db:scylla"})
		log.Error().Msgf("Error retrieving embedding for entity %s: %v", entityId, err)
		return nil, err
	}
	metric.Timing("embedding_store_db_retrieve_latency", time.Since(startTime), nil)
	return embedding, nil
}

// Save commits the computed embedding if and only if the stored version is
// still the one the caller read. A first write (version 0) inserts with
// IF NOT EXISTS; later writes bump version through a conditional update.
func (s *ScyllaStore) Save(embedding *engine.EntityEmbedding) (bool, error) {
	startTime := time.Now()
	metric.Incr("embedding_store_db_persist_count", nil)
	shard := s.shardFor(embedding.EntityId)

	var applied bool
	var err error
	if embedding.Version == 0 {
		query := s.preparedQuery(shard, InsertQuery, "insert")
		applied, err = query.Bind(embedding.EntityId, embedding.Vector, embedding.EventCount, embedding.LastUpdatedAt, int64(1)).
			Consistency(gocql.Quorum).MapScanCAS(map[string]interface{}{})
	} else {
		query := s.preparedQuery(shard, CasUpdateQuery, "cas_update")
		applied, err = query.Bind(embedding.Vector, embedding.EventCount, embedding.LastUpdatedAt, embedding.Version+1, embedding.EntityId, embedding.Version).
			Consistency(gocql.Quorum).MapScanCAS(map[string]interface{}{})
	}
	if err != nil {
		metric.Incr("embedding_store_db_persist_failure_count", []string{"db:scylla"})
		log.Error().Msgf("Error persisting embedding for entity %s: %v", embedding.EntityId, err)
		return false, err
	}
	if !applied {
		metric.Incr("embedding_store_version_conflict_count", nil)
		return false, nil
	}
	metric.Timing("embedding_store_db_persist_latency", time.Since(startTime), nil)
	return true, nil
}

func (s *ScyllaStore) Delete(entityId string) error {
	shard := s.shardFor(entityId)
	query := s.preparedQuery(shard, DeleteQuery, "delete")
	if err := query.Bind(entityId).Consistency(gocql.Quorum).Exec(); err != nil {
		log.Error().Msgf("Error deleting embedding for entity %s: %v", entityId, err)
		return err
	}
	return nil
}

// FindStale scans every shard for embeddings untouched for maxAgeDays.
// Maintenance path only, not correctness-critical.
func (s *ScyllaStore) FindStale(maxAgeDays int, limit int) ([]*engine.EntityEmbedding, error) {
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)
	stale := make([]*engine.EntityEmbedding, 0)
	for configId := 1; configId <= s.count; configId++ {
		shard := s.shards[configId]
		query := s.preparedQuery(shard, StaleScanQuery, "stale_scan")
		iter := query.Bind(cutoff, limit).Consistency(gocql.One).Iter()
		for {
			embedding := &engine.EntityEmbedding{}
			if !iter.Scan(&embedding.EntityId, &embedding.Vector, &embedding.EventCount, &embedding.LastUpdatedAt, &embedding.Version) {
				break
			}
			stale = append(stale, embedding)
			if len(stale) >= limit {
				break
			}
		}
		if err := iter.Close(); err != nil {
			log.Error().Msgf("Error scanning stale embeddings on shard %d: %v", configId, err)
			return nil, err
		}
		if len(stale) >= limit {
			break
		}
	}
	return stale, nil
}

func (s *ScyllaStore) preparedQuery(shard shardData, template string, queryType string) *gocql.Query {
	cacheKey := shard.keyspace + "_" + tableName + "_" + queryType
	cachedQuery, found := queryCache.Get(cacheKey)
	if !found {
		cachedQuery = fmt.Sprintf(template, shard.keyspace, tableName)
		queryCache.Set(cacheKey, cachedQuery)
	}
	return shard.session.Query(cachedQuery)
}

// UserEntityId builds the store key for a user's embedding.
func UserEntityId(userId string) string {
	return "user:" + userId
}

// ProductEntityId builds the store key for a product's embedding.
func ProductEntityId(productId int64) string {
	return "product:" + strconv.FormatInt(productId, 10)
}
