package recommend

import (
	"time"
)

type FindSimilarRequest struct {
	Space  string    `json:"space"`
	Vector []float32 `json:"vector"`
	Limit  int       `json:"limit"`
}

type Response struct {
	Results []Result `json:"results"`
}

type Result struct {
	Id    string  `json:"id"`
	Score float64 `json:"score"`
}

type cachedResponse struct {
	Results  []Result  `json:"results"`
	CachedAt time.Time `json:"cachedAt"`
}
