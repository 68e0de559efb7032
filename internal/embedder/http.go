package embedder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/myshop/affinity/internal/engine"
	httpHelper "github.com/myshop/affinity/pkg/api/http"
	"github.com/myshop/affinity/pkg/httpclient"
	"github.com/myshop/affinity/pkg/metric"
)

const (
	envPrefix        = "EMBEDDER"
	embedPathEnvKey  = "EMBEDDER_EMBED_PATH"
	defaultEmbedPath = "/v1/embed"
)

var ErrEmptyText = errors.New("text to embed is empty")

type embedRequest struct {
	Text string `json:"text"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// HTTPEmbedder calls the external inference service. The underlying client
// carries the circuit breaker when EMBEDDER_CB_ENABLED is set.
type HTTPEmbedder struct {
	client    *httpclient.HTTPClient
	host      string
	port      int
	path      string
	dimension int
}

func NewHTTPEmbedder(dimension int) *HTTPEmbedder {
	path := viper.GetString(embedPathEnvKey)
	if path == "" {
		path = defaultEmbedPath
	}
	return &HTTPEmbedder{
		client:    httpclient.NewConn(envPrefix),
		host:      viper.GetString(envPrefix + httpHelper.Host),
		port:      viper.GetInt(envPrefix + httpHelper.Port),
		path:      path,
		dimension: dimension,
	}
}

func (e *HTTPEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, ErrEmptyText
	}
	startTime := time.Now()
	request, err := httpclient.NewHttpRequestBuilder().
		WithContext(ctx).
		WithHost(e.host).
		WithPort(e.port).
		WithPath(e.path).
		WithMethod(http.MethodPost).
		WithBody(embedRequest{Text: text}).
		BuildContentTypeJson()
	if err != nil {
		return nil, err
	}
	response, err := e.client.Do(request)
	if err != nil {
		metric.Incr("embedder_request_failure_count", nil)
		log.Error().Msgf("Error calling embedder: %v", err)
		return nil, err
	}
	defer response.Body.Close()
	if response.StatusCode != http.StatusOK {
		metric.Incr("embedder_request_failure_count", nil)
		return nil, fmt.Errorf("embedder returned status %d", response.StatusCode)
	}
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	var decoded embedResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, err
	}
	if len(decoded.Embedding) != e.dimension {
		return nil, &engine.DimensionMismatchError{Expected: e.dimension, Got: len(decoded.Embedding)}
	}
	metric.Timing("embedder_request_latency", time.Since(startTime), nil)
	return decoded.Embedding, nil
}
