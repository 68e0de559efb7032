package ledger

import (
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/myshop/affinity/internal/config/structs"
	"github.com/myshop/affinity/pkg/ds"
	"github.com/myshop/affinity/pkg/inmemorycache"
	"github.com/myshop/affinity/pkg/metric"
	"github.com/myshop/affinity/pkg/scylla"
)

const (
	envPrefix = "STORAGE_DEDUPE_LEDGER"
	tableName = "applied_messages"

	appliedMarker = "1"
)

// ScyllaLedger fronts the durable ledger with the process-local cache.
// A cache hit answers most redeliveries without a db round trip; the db
// row is the source of truth across restarts and instances.
type ScyllaLedger struct {
	session  *gocql.Session
	keyspace string
	cache    inmemorycache.InMemoryCache
	ttlInSec int
}

func initScyllaLedger() Ledger {
	if dedupeLedger == nil {
		once.Do(func() {
			queryCache = ds.NewSyncMap[string, string]()
			clusterConfig, err := scylla.BuildClusterConfigFromEnv(envPrefix)
			if err != nil {
				log.Panic().Msgf("error building scylla db cluster for configPrefix - %v with error %v", envPrefix, err)
			}
			session, err := clusterConfig.CreateSession()
			if err != nil {
				log.Panic().Msgf("Error connecting scylla db.Error - %#v", err)
			}
			dedupeLedger = &ScyllaLedger{
				session:  session,
				keyspace: viper.GetString(envPrefix + "_KEYSPACE"),
				cache:    inmemorycache.Instance(),
				ttlInSec: structs.GetAppConfig().Configs.DedupeLedgerTtlInSec,
			}
		})
	}
	return dedupeLedger
}

func (s *ScyllaLedger) IsApplied(messageId string) (bool, error) {
	if cached, err := s.cache.Get([]byte(messageId)); err == nil && len(cached) > 0 {
		metric.Incr("dedupe_ledger_cache_hit_count", nil)
		return true, nil
	}
	startTime := time.Now()
	query := s.preparedQuery(ExistsQuery, "exists")
	var found string
	err := query.Bind(messageId).Consistency(gocql.Quorum).Scan(&found)
	if err == gocql.ErrNotFound {
		return false, nil
	}
	if err != nil {
		metric.Incr("dedupe_ledger_db_read_failure_count", []string{"db:scylla"})
		log.Error().Msgf("Error reading ledger for message %s: %v", messageId, err)
		return false, err
	}
	metric.Timing("dedupe_ledger_db_read_latency", time.Since(startTime), nil)
	if cacheErr := s.cache.SetEx([]byte(messageId), []byte(appliedMarker), s.ttlInSec); cacheErr != nil {
		log.Error().Msgf("Error caching ledger entry for message %s: %v", messageId, cacheErr)
	}
	return true, nil
}

func (s *ScyllaLedger) MarkApplied(messageId string) error {
	startTime := time.Now()
	query := s.preparedQuery(InsertQuery, "insert")
	if err := query.Bind(messageId, time.Now().UTC(), s.ttlInSec).Consistency(gocql.Quorum).Exec(); err != nil {
		metric.Incr("dedupe_ledger_db_write_failure_count", []string{"db:scylla"})
		log.Error().Msgf("Error recording ledger entry for message %s: %v", messageId, err)
		return err
	}
	metric.Timing("dedupe_ledger_db_write_latency", time.Since(startTime), nil)
	if cacheErr := s.cache.SetEx([]byte(messageId), []byte(appliedMarker), s.ttlInSec); cacheErr != nil {
		log.Error().Msgf("Error caching ledger entry for message %s: %v", messageId, cacheErr)
	}
	return nil
}

func (s *ScyllaLedger) preparedQuery(template string, queryType string) *gocql.Query {
	cacheKey := s.keyspace + "_" + tableName + "_" + queryType
	cachedQuery, found := queryCache.Get(cacheKey)
	if !found {
		cachedQuery = fmt.Sprintf(template, s.keyspace, tableName)
		queryCache.Set(cacheKey, cachedQuery)
	}
	return s.session.Query(cachedQuery)
}
