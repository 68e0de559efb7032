package vector

import (
	"context"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/qdrant/go-client/qdrant"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/resolver"

	"github.com/myshop/affinity/internal/engine"
	"github.com/myshop/affinity/pkg/metric"
)

const (
	vectorDbHost          = "VECTOR_DB_HOST"
	vectorDbPort          = "VECTOR_DB_PORT"
	vectorDbDeadline      = "VECTOR_DB_DEADLINE_IN_MS"
	vectorDbWriteDeadline = "VECTOR_DB_WRITE_DEADLINE_IN_MS"

	defaultDeadlineInMs = 2000
)

type Qdrant struct {
	client        *qdrant.Client
	deadline      time.Duration
	writeDeadline time.Duration
}

// initQdrantInstance initializes and returns a Database instance for Qdrant.
func initQdrantInstance() Database {
	if vectorDb == nil {
		syncOnce.Do(func() {
			vectorDb = createQdrantInstance()
		})
	}
	return vectorDb
}

func createQdrantInstance() *Qdrant {
	resolver.SetDefaultScheme("dns")
	if !viper.IsSet(vectorDbHost) {
		log.Panic().Msgf("env::%s is not set !!", vectorDbHost)
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: viper.GetString(vectorDbHost),
		Port: viper.GetInt(vectorDbPort),
		GrpcOptions: []grpc.DialOption{
			grpc.WithTransportCredentials(insecure.NewCredentials()),
			grpc.WithDefaultServiceConfig(`{"loadBalancingPolicy":"round_robin"}`),
		},
	})
	if err != nil {
		log.Panic().Msgf("Could not create qdrant client: %v", err)
	}
	healthCheck(client)
	deadline := viper.GetInt(vectorDbDeadline)
	if deadline == 0 {
		deadline = defaultDeadlineInMs
	}
	writeDeadline := viper.GetInt(vectorDbWriteDeadline)
	if writeDeadline == 0 {
		writeDeadline = deadline
	}
	return &Qdrant{
		client:        client,
		deadline:      time.Duration(deadline) * time.Millisecond,
		writeDeadline: time.Duration(writeDeadline) * time.Millisecond,
	}
}

func healthCheck(client *qdrant.Client) {
	healthCheckResult, err := client.HealthCheck(context.Background())
	if err != nil {
		log.Info().Msgf("Could not get qdrant health: %v", err)
		return
	}
	log.Info().Msgf("Qdrant version: %s", healthCheckResult.GetVersion())
}

// EnsureSpace creates the collection for an entity space if it does not
// exist yet. Cosine distance matches the ranking contract of FindSimilar.
func (q *Qdrant) EnsureSpace(space string, dimension int) error {
	ctx, cancel := context.WithTimeout(context.Background(), q.writeDeadline)
	defer cancel()
	collectionsClient := qdrant.NewCollectionsClient(q.client.GetConnection())
	response, err := collectionsClient.CollectionExists(ctx, &qdrant.CollectionExistsRequest{CollectionName: space})
	if err != nil {
		log.Error().Msgf("Could not check collection %s: %v", space, err)
		return err
	}
	if response.GetResult().GetExists() {
		return nil
	}
	_, err = collectionsClient.Create(ctx, &qdrant.CreateCollection{
		CollectionName: space,
		VectorsConfig: &qdrant.VectorsConfig{Config: &qdrant.VectorsConfig_Params{
			Params: &qdrant.VectorParams{
				Size:     uint64(dimension),
				Distance: qdrant.Distance_Cosine,
			},
		}},
	})
	if err != nil {
		log.Error().Msgf("Could not create collection %s: %v", space, err)
		return err
	}
	log.Info().Msgf("Collection created: %v", space)
	return nil
}

// Upsert writes the embedding into the similarity index. The point id is the
// entity id hashed to u64; the raw entity id travels in the payload.
func (q *Qdrant) Upsert(space string, embedding *engine.EntityEmbedding) error {
	startTime := time.Now()
	metric.Incr("vector_db_upsert", getMetricTags(space))
	ctx, cancel := context.WithTimeout(context.Background(), q.writeDeadline)
	defer cancel()
	waitUpsert := true
	pointsClient := qdrant.NewPointsClient(q.client.GetConnection())
	_, err := pointsClient.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: space,
		Wait:           &waitUpsert,
		Points: []*qdrant.PointStruct{
			{
				Id: &qdrant.PointId{
					PointIdOptions: &qdrant.PointId_Num{Num: pointId(embedding.EntityId)},
				},
				Payload: map[string]*qdrant.Value{
					PayloadEntityId:      {Kind: &qdrant.Value_StringValue{StringValue: embedding.EntityId}},
					PayloadLastUpdatedAt: {Kind: &qdrant.Value_IntegerValue{IntegerValue: embedding.LastUpdatedAt.UnixMilli()}},
				},
				Vectors: &qdrant.Vectors{VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: embedding.Vector}}},
			},
		},
	})
	if err != nil {
		metric.Incr("vector_db_upsert_error", getMetricTags(space))
		log.Error().Msgf("Could not upsert point for entity %s: %v", embedding.EntityId, err)
		return err
	}
	metric.Timing("vector_db_upsert_latency", time.Since(startTime), getMetricTags(space))
	return nil
}

func (q *Qdrant) Delete(space string, entityId string) error {
	startTime := time.Now()
	metric.Incr("vector_db_delete", getMetricTags(space))
	ctx, cancel := context.WithTimeout(context.Background(), q.writeDeadline)
	defer cancel()
	waitDelete := true
	pointsClient := qdrant.NewPointsClient(q.client.GetConnection())
	_, err := pointsClient.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: space,
		Wait:           &waitDelete,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Points{
				Points: &qdrant.PointsIdsList{
					Ids: []*qdrant.PointId{{PointIdOptions: &qdrant.PointId_Num{Num: pointId(entityId)}}},
				},
			},
		},
	})
	if err != nil {
		metric.Incr("vector_db_delete_error", getMetricTags(space))
		log.Error().Msgf("Could not delete point for entity %s: %v", entityId, err)
		return err
	}
	metric.Timing("vector_db_delete_latency", time.Since(startTime), getMetricTags(space))
	return nil
}

// FindSimilar returns the top matches by cosine similarity, descending.
// Equal scores rank the more recently updated entity first.
func (q *Qdrant) FindSimilar(space string, queryVector []float32, limit int) ([]Match, error) {
	startTime := time.Now()
	metric.Incr("vector_db_query", getMetricTags(space))
	ctx, cancel := context.WithTimeout(context.Background(), q.deadline)
	defer cancel()
	pointsClient := qdrant.NewPointsClient(q.client.GetConnection())
	response, err := pointsClient.Search(ctx, &qdrant.SearchPoints{
		CollectionName: space,
		Vector:         queryVector,
		Limit:          uint64(limit),
		WithPayload:    qdrant.NewWithPayloadInclude(PayloadEntityId, PayloadLastUpdatedAt),
	})
	if err != nil {
		metric.Incr("vector_db_query_failure", getMetricTags(space))
		log.Error().Msgf("Error fetching similar candidates from %s: %v", space, err)
		return nil, err
	}
	matches := make([]Match, 0, len(response.GetResult()))
	for _, point := range response.GetResult() {
		payload := point.GetPayload()
		matches = append(matches, Match{
			EntityId:      payload[PayloadEntityId].GetStringValue(),
			Score:         float64(point.GetScore()),
			LastUpdatedAt: time.UnixMilli(payload[PayloadLastUpdatedAt].GetIntegerValue()),
		})
	}
	SortMatches(matches)
	metric.Timing("vector_db_query_latency", time.Since(startTime), getMetricTags(space))
	return matches, nil
}

// SortMatches orders by descending score, recency breaking ties.
func SortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].LastUpdatedAt.After(matches[j].LastUpdatedAt)
	})
}

func pointId(entityId string) uint64 {
	return xxhash.Sum64String(entityId)
}

func getMetricTags(space string) []string {
	return []string{"vector_db_type:qdrant", "space:" + space}
}
