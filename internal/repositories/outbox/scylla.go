package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/myshop/affinity/internal/events"
	"github.com/myshop/affinity/pkg/ds"
	"github.com/myshop/affinity/pkg/metric"
	"github.com/myshop/affinity/pkg/scylla"
)

const (
	envPrefix = "STORAGE_EVENT_LOG"
	tableName = "interaction_events"
)

type ScyllaLog struct {
	session  *gocql.Session
	keyspace string
}

func initScyllaLog() Repository {
	if eventLog == nil {
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
			eventLog = &ScyllaLog{
				session:  session,
				keyspace: viper.GetString(envPrefix + "_KEYSPACE"),
			}
		})
	}
	return eventLog
}

// Append persists the event before any publish attempt. The insert is
// conditional on message_id, so re-capturing the same logical event never
// resets an already processed row.
func (s *ScyllaLog) Append(event *events.InteractionEvent, processedToQueue bool) error {
	startTime := time.Now()
	metric.Incr("event_log_db_append_count", nil)
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	query := s.preparedQuery(InsertQuery, "insert")
	_, err = query.Bind(event.MessageId, event.UserId, event.EventType.String(), payload, processedToQueue, event.OccurredAt).
		Consistency(gocql.Quorum).MapScanCAS(map[string]interface{}{})
	if err != nil {
		metric.Incr("event_log_db_append_failure_count", []string{"db:scylla"})
		log.Error().Msgf("Error appending event %s: %v", event.MessageId, err)
		return err
	}
	metric.Timing("event_log_db_append_latency", time.Since(startTime), nil)
	return nil
}

func (s *ScyllaLog) MarkProcessed(messageId string) error {
	query := s.preparedQuery(MarkProcessedQuery, "mark_processed")
	if err := query.Bind(messageId).Consistency(gocql.Quorum).Exec(); err != nil {
		metric.Incr("event_log_db_mark_failure_count", []string{"db:scylla"})
		log.Error().Msgf("Error marking event %s processed: %v", messageId, err)
		return err
	}
	return nil
}

func (s *ScyllaLog) FindUnprocessed(limit int) ([]*events.InteractionEvent, error) {
	startTime := time.Now()
	query := s.preparedQuery(UnprocessedQuery, "unprocessed")
	iter := query.Bind(limit).Consistency(gocql.One).Iter()
	unprocessed := make([]*events.InteractionEvent, 0)
	var payload []byte
	for iter.Scan(&payload) {
		event := &events.InteractionEvent{}
		if err := json.Unmarshal(payload, event); err != nil {
			log.Error().Msgf("Error decoding stored event payload: %v", err)
			continue
		}
		unprocessed = append(unprocessed, event)
	}
	if err := iter.Close(); err != nil {
		metric.Incr("event_log_db_scan_failure_count", []string{"db:scylla"})
		log.Error().Msgf("Error scanning unprocessed events: %v", err)
		return nil, err
	}
	metric.Timing("event_log_db_scan_latency", time.Since(startTime), nil)
	return unprocessed, nil
}

func (s *ScyllaLog) preparedQuery(template string, queryType string) *gocql.Query {
	cacheKey := s.keyspace + "_" + tableName + "_" + queryType
	cachedQuery, found := queryCache.Get(cacheKey)
	if !found {
		cachedQuery = fmt.Sprintf(template, s.keyspace, tableName)
		queryCache.Set(cacheKey, cachedQuery)
	}
	return s.session.Query(cachedQuery)
}
